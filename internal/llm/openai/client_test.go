package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairalyzer-backend/internal/llm"
)

func newTestClient(t *testing.T, url string, timeout time.Duration) *Client {
	t.Helper()
	c, err := NewClient(Config{APIKey: "test-key", BaseURL: url, VisionModel: "gpt-4o", ChatModel: "gpt-4o-mini", Timeout: timeout})
	require.NoError(t, err)
	return c
}

func TestAnalyzeHairSendsAllPhotosInOneRequest(t *testing.T) {
	var calls atomic.Int32
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"**AI Description**\nHealthy hair."},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Second)
	text, err := c.AnalyzeHair(context.Background(), llm.HairInput{
		PhotoURLs:   []string{"https://img/1.jpg", "https://img/2.jpg", "https://img/3.jpg"},
		HairProblem: "frizz",
	})
	require.NoError(t, err)
	assert.Equal(t, "**AI Description**\nHealthy hair.", text)
	assert.Equal(t, int32(1), calls.Load())

	assert.Equal(t, "gpt-4o", payload["model"])
	messages := payload["messages"].([]any)
	require.Len(t, messages, 1)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 4)
	assert.Equal(t, "text", parts[0].(map[string]any)["type"])
	for i, url := range []string{"https://img/1.jpg", "https://img/2.jpg", "https://img/3.jpg"} {
		part := parts[i+1].(map[string]any)
		assert.Equal(t, "image_url", part["type"])
		assert.Equal(t, url, part["image_url"].(map[string]any)["url"])
	}
}

func TestAnalyzeHairRequiresPhotos(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:0", time.Second)
	_, err := c.AnalyzeHair(context.Background(), llm.HairInput{})
	require.Error(t, err)
}

func TestChatUsesChatModel(t *testing.T) {
	var payload chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		payload.Model, _ = raw["model"].(string)
		msgs := raw["messages"].([]any)
		for _, m := range msgs {
			mm := m.(map[string]any)
			payload.Messages = append(payload.Messages, chatMessage{Role: mm["role"].(string), Content: mm["content"]})
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":" Use a silk pillowcase. "}}]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, time.Second)
	reply, err := c.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "context"},
		{Role: llm.RoleUser, Content: "How do I reduce frizz overnight?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Use a silk pillowcase.", reply)
	assert.Equal(t, "gpt-4o-mini", payload.Model)
	require.Len(t, payload.Messages, 2)
	assert.Equal(t, "How do I reduce frizz overnight?", payload.Messages[1].Content)
}

func TestCompleteSurfacesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "api error body", status: http.StatusTooManyRequests, body: `{"error":{"message":"Rate limit reached","type":"requests"}}`, wantMsg: "Rate limit reached"},
		{name: "plain status", status: http.StatusBadGateway, body: `upstream failure`, wantMsg: "openai status 502"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantMsg: "missing choices"},
		{name: "empty content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"  "}}]}`, wantMsg: "empty content"},
		{name: "malformed json", status: http.StatusOK, body: `{`, wantMsg: "parse"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, time.Second)
			_, err := c.Chat(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "hi"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestTimeoutIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, 50*time.Millisecond)
	_, err := c.AnalyzeHair(context.Background(), llm.HairInput{PhotoURLs: []string{"https://img/1.jpg"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrTimeout), "got %v", err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{VisionModel: "gpt-4o"})
	require.Error(t, err)
	_, err = NewClient(Config{APIKey: "k"})
	require.Error(t, err)

	c, err := NewClient(Config{APIKey: "k", VisionModel: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", c.chatModel)
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}
