package config

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey indicates no API key could be found for the configured provider.
var ErrMissingAPIKey = errors.New("api key not configured")

// ConfigurationError reports a setting that prevents a run from starting.
// Commands exit with status 1 when they see one.
type ConfigurationError struct {
	Field string
	Err   error
}

// Error returns the field and the underlying reason.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error on %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
