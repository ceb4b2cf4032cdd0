package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/invoice-scanner/internal/llm"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int64   `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	c, _ := json.Marshal(content)
	return fmt.Sprintf(`{
  "id": "chatcmpl-test",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{"index": 0, "finish_reason": "stop", "logprobs": null,
    "message": {"role": "assistant", "content": %s, "refusal": null}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`, c)
}

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Complete(t *testing.T) {
	var got chatRequest
	var auth string
	srv, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"total": 10}`)))
	})

	client := NewClient(Config{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/v1",
		Temperature: 0.1,
	}, nil)

	content, err := client.Complete(context.Background(), llm.Request{System: "sys", User: "factura"})
	require.NoError(t, err)

	assert.Equal(t, `{"total": 10}`, content)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-9)
	assert.Equal(t, int64(2000), got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "factura", got.Messages[1].Content)
}

func TestClient_CompleteWithoutSystemMessage(t *testing.T) {
	var got chatRequest
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("{}")))
	})

	client := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "custom-model", MaxTokens: 50}, nil)
	_, err := client.Complete(context.Background(), llm.Request{User: "hola"})
	require.NoError(t, err)

	assert.Equal(t, "custom-model", got.Model)
	assert.Equal(t, int64(50), got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestClient_CompleteErrorsAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`},
		{"quota", http.StatusTooManyRequests, `{"error": {"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"}}`},
		{"server error", http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			client := NewClient(Config{APIKey: "sk-bad", BaseURL: srv.URL + "/v1"}, nil)
			content, err := client.Complete(context.Background(), llm.Request{User: "factura"})

			assert.Error(t, err)
			assert.Empty(t, content)
			assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		})
	}
}

func TestClient_CompleteNoChoices(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "created": 1, "model": "m", "choices": []}`))
	})

	client := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, nil)
	_, err := client.Complete(context.Background(), llm.Request{User: "factura"})
	assert.ErrorContains(t, err, "no choices")
}

func TestClient_CompleteUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(Config{APIKey: "sk-test", BaseURL: url + "/v1"}, nil)
	_, err := client.Complete(context.Background(), llm.Request{User: "factura"})
	assert.Error(t, err)
}
