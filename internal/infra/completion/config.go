// Package completion provides chat completion clients for the summarization run.
// It includes adapters for the OpenAI and Claude (Anthropic) APIs wrapped with
// request pacing, retry with backoff and a circuit breaker, plus a dry-run
// client that never touches the network.
package completion

import (
	"fmt"
	"time"

	"transcript-summarizer/internal/resilience/retry"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderClaude = "claude"
	ProviderDryRun = "dry-run"
)

// Config holds configuration shared by the completion clients.
type Config struct {
	// Timeout bounds one Complete call, retries included.
	Timeout time.Duration

	// RequestsPerMinute paces API calls. 0 disables pacing.
	RequestsPerMinute int

	// BaseURL overrides the provider endpoint (proxies, tests). Empty uses the SDK default.
	BaseURL string

	// Retry overrides the retry policy. The zero value uses retry.AIAPIConfig().
	Retry retry.Config
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:           120 * time.Second,
		RequestsPerMinute: 60,
		Retry:             retry.AIAPIConfig(),
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests per minute must not be negative, got %d", c.RequestsPerMinute)
	}
	return nil
}

func (c Config) retryConfig() retry.Config {
	if c.Retry.MaxAttempts == 0 {
		return retry.AIAPIConfig()
	}
	return c.Retry
}
