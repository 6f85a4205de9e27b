package completion

import (
	"fmt"

	"transcript-summarizer/internal/usecase/summarize"
)

// New creates the completion client for provider.
// apiKey is ignored for the dry-run provider.
func New(provider, apiKey string, cfg Config) (summarize.ChatCompleter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid completion configuration: %w", err)
	}

	switch provider {
	case ProviderOpenAI:
		return NewOpenAI(apiKey, cfg), nil
	case ProviderClaude:
		return NewClaude(apiKey, cfg), nil
	case ProviderDryRun:
		return DryRun{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}
