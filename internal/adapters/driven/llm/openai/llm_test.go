package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rfqx/internal/adapters/driven/llm"
	"github.com/custodia-labs/rfqx/internal/core/domain"
	"github.com/custodia-labs/rfqx/internal/core/ports/driven"
)

const okCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-test",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"items\": []}"}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-test"})
	require.NoError(t, err)
	return s
}

func TestNewLLMService(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.Error(t, err)

	s, err := NewLLMService(LLMConfig{APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, s.ModelName())
}

func TestChat(t *testing.T) {
	var body map[string]any
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okCompletion))
	})

	got, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: "system prompt"},
		{Role: driven.RoleUser, Content: "text"},
	}, driven.ChatOptions{MaxTokens: 100, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, got)

	assert.Equal(t, "gpt-test", body["model"])
	assert.EqualValues(t, 100, body["max_tokens"])
	assert.EqualValues(t, 0, body["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "text", messages[1].(map[string]any)["content"])
}

func TestChat_Images(t *testing.T) {
	var body map[string]any
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okCompletion))
	})

	_, err := s.Chat(context.Background(), []driven.ChatMessage{
		{Role: driven.RoleUser, Content: "transcribe", Images: []driven.Image{{MIMEType: "image/png", Data: []byte{1, 2, 3}}}},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	_, hasFormat := body["response_format"]
	assert.False(t, hasFormat)

	content := body["messages"].([]any)[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	image := content[0].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	assert.Equal(t, "data:image/png;base64,AQID", image["image_url"].(map[string]any)["url"])
	assert.Equal(t, "transcribe", content[1].(map[string]any)["text"])
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		sentinel  error
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited, true},
		{"unavailable", http.StatusServiceUnavailable, domain.ErrServiceUnavailable, true},
		{"bad request", http.StatusBadRequest, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "x"}}`))
			})

			_, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}}, driven.ChatOptions{})

			var se *llm.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.transient, llm.IsTransient(err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, err, tt.sentinel)
			}
		})
	}
}

func TestChat_NoChoices(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	})

	_, err := s.Chat(context.Background(), []driven.ChatMessage{{Role: driven.RoleUser, Content: "x"}}, driven.ChatOptions{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
	})

	assert.NoError(t, s.Ping(context.Background()))
}
