package config

import (
	"fmt"
	"os"
	"strings"

	"transcript-summarizer/internal/infra/completion"
)

// apiKeyEnv maps providers to the environment variable holding their key.
var apiKeyEnv = map[string]string{
	completion.ProviderOpenAI: "OPENAI_API_KEY",
	completion.ProviderClaude: "ANTHROPIC_API_KEY",
}

// LoadAPIKey returns the credential for the configured provider.
// The environment variable wins; otherwise the first line of KeyFile is used.
// The dry-run provider needs no key and gets "".
func LoadAPIKey(cfg *SummarizeConfig) (string, error) {
	envKey, ok := apiKeyEnv[cfg.Provider]
	if !ok {
		return "", nil
	}

	if key := strings.TrimSpace(os.Getenv(envKey)); key != "" {
		return key, nil
	}

	if cfg.KeyFile == "" {
		return "", &ConfigurationError{Field: envKey, Err: ErrMissingAPIKey}
	}

	data, err := os.ReadFile(cfg.KeyFile) // #nosec G304 -- operator-supplied key path
	if err != nil {
		return "", &ConfigurationError{
			Field: "key_file",
			Err:   fmt.Errorf("%w: %s not set and %s unreadable: %v", ErrMissingAPIKey, envKey, cfg.KeyFile, err),
		}
	}

	key, _, _ := strings.Cut(string(data), "\n")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", &ConfigurationError{
			Field: "key_file",
			Err:   fmt.Errorf("%w: %s is empty", ErrMissingAPIKey, cfg.KeyFile),
		}
	}
	return key, nil
}
