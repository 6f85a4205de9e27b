package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/resilience/circuitbreaker"
	"transcript-summarizer/internal/resilience/retry"
)

// OpenAI implements summarize.ChatCompleter using OpenAI's chat completion API.
type OpenAI struct {
	client *openai.Client
	guard  *guard
}

// NewOpenAI creates a new OpenAI client with the given API key.
// It automatically configures circuit breaker, retry logic and request pacing.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	slog.Info("initialized OpenAI completion client",
		slog.Int("requests_per_minute", cfg.RequestsPerMinute),
		slog.Duration("timeout", cfg.Timeout))

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		guard:  newGuard(circuitbreaker.CompletionConfig(ProviderOpenAI), cfg),
	}
}

// Complete sends one chat completion request and returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	return o.guard.call(ctx, func(ctx context.Context) (string, error) {
		return o.doComplete(ctx, req)
	})
}

// doComplete performs the actual API call without retry or circuit breaker.
func (o *OpenAI) doComplete(ctx context.Context, req entity.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "openai completion failed",
			slog.String("model", req.Model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	slog.DebugContext(ctx, "openai completion succeeded",
		slog.String("model", resp.Model),
		slog.Int("prompt_tokens", resp.Usage.PromptTokens),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.Duration("duration", duration))

	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError exposes the HTTP status of SDK errors to the retry policy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}
	return fmt.Errorf("openai api error: %w", err)
}
