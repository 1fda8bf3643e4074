package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeAnthropicServer mimics the messages endpoint. The first failWith429
// requests are rejected with a rate limit error.
func fakeAnthropicServer(t *testing.T, counter *atomic.Int64, failWith429 int64, captured *anthropicRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := counter.Add(1)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NotEmpty(t, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if captured != nil {
			*captured = req
		}

		if n <= failWith429 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{"type": "error", "message": "rate limited"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(anthropicResponse{
			ID:         "msg-test",
			Type:       "message",
			Role:       "assistant",
			Content:    []anthropicBlock{{Type: "text", Text: `{"title":`}, {Type: "text", Text: `"Test"}`}},
			Model:      req.Model,
			StopReason: "end_turn",
			Usage:      anthropicUsage{InputTokens: 12, OutputTokens: 6},
		})
	}))
}

func testAnthropic(srv *httptest.Server, maxRetries int) *AnthropicProvider {
	return NewAnthropicProviderFromConfig(AnthropicConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Model:        "test-model",
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
	})
}

func TestAnthropicProvider_ChatCompletion(t *testing.T) {
	var counter atomic.Int64
	var captured anthropicRequest
	srv := fakeAnthropicServer(t, &counter, 0, &captured)
	defer srv.Close()

	req := NewChatCompletionRequest([]Message{
		SystemMessage("You generate form schemas."),
		UserMessage("an internship application form"),
	})

	resp, err := testAnthropic(srv, 1).ChatCompletion(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, `{"title":"Test"}`, resp.Content(), "text blocks must be concatenated")
	require.Equal(t, "end_turn", resp.FinishReason())
	require.Equal(t, 18, resp.Usage().TotalTokens())

	// The system prompt rides in the top-level field, not the message list.
	require.Equal(t, "You generate form schemas.", captured.System)
	require.Len(t, captured.Messages, 1)
	require.Equal(t, "user", captured.Messages[0].Role)
	require.Equal(t, 4096, captured.MaxTokens, "default max tokens")
}

func TestAnthropicProvider_RetriesRateLimit(t *testing.T) {
	var counter atomic.Int64
	srv := fakeAnthropicServer(t, &counter, 2, nil)
	defer srv.Close()

	req := NewChatCompletionRequest([]Message{UserMessage("hello")})
	resp, err := testAnthropic(srv, 3).ChatCompletion(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, int64(3), counter.Load(), "two rate limits then success")
	require.NotEmpty(t, resp.Content())
}

func TestAnthropicProvider_SurfacesAPIError(t *testing.T) {
	var counter atomic.Int64
	srv := fakeAnthropicServer(t, &counter, 999, nil)
	defer srv.Close()

	req := NewChatCompletionRequest([]Message{UserMessage("hello")})
	_, err := testAnthropic(srv, 0).ChatCompletion(context.Background(), req)
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	require.True(t, provErr.IsRateLimited())
}

func TestAnthropicProvider_RejectsEmptyMessages(t *testing.T) {
	p := NewAnthropicProvider("test-key")
	_, err := p.ChatCompletion(context.Background(), NewChatCompletionRequest(nil))
	require.Error(t, err)
}

func TestAnthropicProvider_Capabilities(t *testing.T) {
	p := NewAnthropicProvider("test-key")
	require.True(t, p.SupportsTextGeneration())
	require.False(t, p.SupportsEmbedding())
	require.NoError(t, p.Close())
}
