package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/support-chat/internal/llm"
)

func TestProvider_Complete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"content":[{"type":"text","text":"hi "},{"type":"text","text":"there"}],"usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer srv.Close()

	p := NewProvider("key", "").WithBaseURL(srv.URL)

	resp, err := p.Complete(context.Background(), llm.Request{
		System: "sys",
		Messages: []llm.Message{
			{Role: llm.RoleAssistant, Content: "earlier reply"},
			{Role: llm.RoleUser, Content: "hello"},
		},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, 5, resp.TokensUsed)
	assert.Equal(t, "sys", got.System)
	assert.Equal(t, []anthropicMessage{{Role: "user", Content: "hello"}}, got.Messages)
}

func TestProvider_CompleteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewProvider("key", "").WithBaseURL(srv.URL).Complete(context.Background(), llm.Request{}, "")
	assert.Error(t, err)
}
