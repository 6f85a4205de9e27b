package completion_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-summarizer/internal/infra/completion"
)

const claudeSuccessBody = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "test-model",
	"content": [{"type": "text", "text": "a short "}, {"type": "text", "text": "summary"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 12, "output_tokens": 4}
}`

type claudeRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func TestClaude_Complete_Success(t *testing.T) {
	var got claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(claudeSuccessBody))
	}))
	defer server.Close()

	client := completion.NewClaude("test-key", testConfig(server.URL))
	out, err := client.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "a short summary", out)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	require.Len(t, got.System, 1)
	assert.Equal(t, "You are a summarizer.", got.System[0].Text)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, "Summarize: hello world", got.Messages[0].Content[0].Text)
}

func TestClaude_Complete_RetriesOverloaded(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(529)
			_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "overloaded_error", "message": "Overloaded"}}`))
			return
		}
		_, _ = w.Write([]byte(claudeSuccessBody))
	}))
	defer server.Close()

	client := completion.NewClaude("test-key", testConfig(server.URL))
	out, err := client.Complete(context.Background(), testRequest())

	require.NoError(t, err)
	assert.Equal(t, "a short summary", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClaude_Complete_BadRequestNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "max_tokens too large"}}`))
	}))
	defer server.Close()

	client := completion.NewClaude("test-key", testConfig(server.URL))
	_, err := client.Complete(context.Background(), testRequest())

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClaude_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "msg_02", "type": "message", "role": "assistant", "model": "test-model", "content": [], "stop_reason": "end_turn", "usage": {"input_tokens": 1, "output_tokens": 0}}`))
	}))
	defer server.Close()

	client := completion.NewClaude("test-key", testConfig(server.URL))
	_, err := client.Complete(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
