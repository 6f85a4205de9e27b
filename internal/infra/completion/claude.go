package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/resilience/circuitbreaker"
	"transcript-summarizer/internal/resilience/retry"
)

// DefaultClaudeModel is used when the provider is claude and no model is configured.
const DefaultClaudeModel = string(anthropic.ModelClaudeSonnet4_5_20250929)

// Claude implements summarize.ChatCompleter using Anthropic's Messages API.
// The system message of a request is sent as the Messages API system prompt.
type Claude struct {
	client anthropic.Client
	guard  *guard
}

// NewClaude creates a new Claude client with the given API key.
// SDK-level retries are disabled; the shared retry policy applies instead.
func NewClaude(apiKey string, cfg Config) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("initialized Claude completion client",
		slog.Int("requests_per_minute", cfg.RequestsPerMinute),
		slog.Duration("timeout", cfg.Timeout))

	return &Claude{
		client: anthropic.NewClient(opts...),
		guard:  newGuard(circuitbreaker.CompletionConfig(ProviderClaude), cfg),
	}
}

// Complete sends one Messages API request and returns the concatenated text blocks.
func (c *Claude) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	return c.guard.call(ctx, func(ctx context.Context) (string, error) {
		return c.doComplete(ctx, req)
	})
}

// doComplete performs the actual API call without retry or circuit breaker.
func (c *Claude) doComplete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	// Generate unique request ID for tracing
	requestID := uuid.New().String()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if system := req.SystemPrompt(); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range req.Messages {
		if m.Role == entity.RoleUser {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "claude completion failed",
			slog.String("request_id", requestID),
			slog.String("model", req.Model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", classifyClaudeError(err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if textBlock, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(textBlock.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	slog.DebugContext(ctx, "claude completion succeeded",
		slog.String("request_id", requestID),
		slog.Int64("input_tokens", message.Usage.InputTokens),
		slog.Int64("output_tokens", message.Usage.OutputTokens),
		slog.Duration("duration", duration))

	return sb.String(), nil
}

// classifyClaudeError exposes the HTTP status of SDK errors to the retry policy.
func classifyClaudeError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error(), Err: err}
	}
	return fmt.Errorf("claude api error: %w", err)
}
