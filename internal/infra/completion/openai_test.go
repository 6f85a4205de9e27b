package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-summarizer/internal/infra/completion"
	"transcript-summarizer/internal/observability/metrics"
)

const openAISuccessBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "a short summary"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`

type openAIRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestOpenAI_Complete_Success(t *testing.T) {
	var got openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openAISuccessBody))
	}))
	defer server.Close()

	client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	out, err := client.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "a short summary", out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are a summarizer.", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Summarize: hello world", got.Messages[1].Content)
}

func TestOpenAI_Complete_RetriesServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"message": "Internal server error", "type": "server_error"}}`))
			return
		}
		_, _ = w.Write([]byte(openAISuccessBody))
	}))
	defer server.Close()

	client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	out, err := client.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "a short summary", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAI_Complete_ErrorHandling(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantCalls  int32
	}{
		{
			name:       "400 bad request is not retried",
			statusCode: http.StatusBadRequest,
			body:       `{"error": {"message": "Invalid request", "type": "invalid_request_error"}}`,
			wantCalls:  1,
		},
		{
			name:       "401 unauthorized is not retried",
			statusCode: http.StatusUnauthorized,
			body:       `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`,
			wantCalls:  1,
		},
		{
			name:       "429 rate limit exhausts retries",
			statusCode: http.StatusTooManyRequests,
			body:       `{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`,
			wantCalls:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
			_, err := client.Complete(context.Background(), testRequest())

			require.Error(t, err)
			assert.Equal(t, tt.statusCode, statusOf(err))
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestOpenAI_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "chatcmpl-2", "object": "chat.completion", "model": "test-model", "choices": []}`))
	}))
	defer server.Close()

	client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	_, err := client.Complete(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestOpenAI_Complete_CircuitBreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid request", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	for i := 0; i < 5; i++ {
		_, err := client.Complete(context.Background(), testRequest())
		require.Error(t, err)
	}

	_, err := client.Complete(context.Background(), testRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
	assert.Equal(t, float64(gobreaker.StateOpen),
		testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("openai-api")))
}

func TestOpenAI_Complete_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(openAISuccessBody))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := completion.NewOpenAI("test-key", testConfig(server.URL+"/v1"))
	_, err := client.Complete(ctx, testRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
