package completion_test

import (
	"errors"
	"time"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/infra/completion"
	"transcript-summarizer/internal/resilience/retry"
)

// testConfig keeps retries fast and pacing off.
func testConfig(baseURL string) completion.Config {
	return completion.Config{
		Timeout:           5 * time.Second,
		RequestsPerMinute: 0,
		BaseURL:           baseURL,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2.0,
		},
	}
}

func testRequest() entity.CompletionRequest {
	return entity.CompletionRequest{
		Model: "test-model",
		Messages: []entity.ChatMessage{
			{Role: entity.RoleSystem, Content: "You are a summarizer."},
			{Role: entity.RoleUser, Content: "Summarize: hello world"},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}
}

func statusOf(err error) int {
	var httpErr *retry.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

