package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatgate/internal/core"
)

// mockProvider implements core.Provider for testing
type mockProvider struct {
	resp    *core.ChatResponse
	err     error
	calls   int
	lastKey string
	lastReq *core.ChatRequest
}

func (m *mockProvider) ChatCompletion(ctx context.Context, apiKey string, req *core.ChatRequest) (*core.ChatResponse, error) {
	m.calls++
	m.lastKey = apiKey
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func strptr(s string) *string { return &s }

func echoResponse(text string) *core.ChatResponse {
	return &core.ChatResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-3.5-turbo",
		Choices: []core.Choice{
			{Index: 0, Message: core.ResponseMessage{Role: "assistant", Content: strptr(text)}, FinishReason: "stop"},
		},
	}
}

func postChat(t *testing.T, srv *Server, body string) (*httptest.ResponseRecorder, core.Envelope) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var env core.Envelope
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestChatRoundTrip(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("hi there")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, env := postChat(t, srv, `{"max_tokens":50,"contents":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.Envelope{Message: "hi there", Code: 200}, env)
	assert.Equal(t, 1, mock.calls)
	assert.Equal(t, "sk-fallback", mock.lastKey)

	require.NotNil(t, mock.lastReq)
	assert.Equal(t, 50, mock.lastReq.MaxTokens)
	require.Len(t, mock.lastReq.Messages, 1)
	assert.Equal(t, core.Message{Role: "user", Content: "hello"}, mock.lastReq.Messages[0])
}

func TestChatNoCredential(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("unused")}
	srv := New(mock, &Config{}) // no fallback configured

	rec, env := postChat(t, srv, `{"max_tokens":50,"contents":[{"role":"user","content":"hello"}]}`)

	// Transport status stays 200; the failure lives in the envelope.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.Envelope{Message: "api_key is empty", Code: 500}, env)
	assert.Equal(t, 0, mock.calls, "no upstream call may be attempted without a credential")
}

func TestChatBodyKeyBeatsFallback(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("ok")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	_, env := postChat(t, srv, `{"api_key":"sk-request","max_tokens":10,"contents":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, 200, env.Code)
	assert.Equal(t, "sk-request", mock.lastKey)
}

func TestChatRoleNormalization(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("ok")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	_, env := postChat(t, srv, `{"max_tokens":10,"contents":[
		{"role":"moderator","content":"a"},
		{"role":"system","content":"b"},
		{"role":"assistant","content":"c"}
	]}`)

	assert.Equal(t, 200, env.Code)
	require.Len(t, mock.lastReq.Messages, 3)
	assert.Equal(t, "user", mock.lastReq.Messages[0].Role)
	assert.Equal(t, "system", mock.lastReq.Messages[1].Role)
	assert.Equal(t, "assistant", mock.lastReq.Messages[2].Role)
}

func TestChatNoChoices(t *testing.T) {
	mock := &mockProvider{resp: &core.ChatResponse{ID: "chatcmpl-123"}}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, env := postChat(t, srv, `{"max_tokens":10,"contents":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.Envelope{Message: "no choices", Code: 500}, env)
}

func TestChatNoContent(t *testing.T) {
	mock := &mockProvider{resp: &core.ChatResponse{
		Choices: []core.Choice{{Message: core.ResponseMessage{Role: "assistant"}}},
	}}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	_, env := postChat(t, srv, `{"max_tokens":10,"contents":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, core.Envelope{Message: "no content", Code: 500}, env)
}

func TestChatUpstreamErrorMessageVerbatim(t *testing.T) {
	mock := &mockProvider{err: core.NewUpstreamError("openai", "Incorrect API key provided", nil)}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, env := postChat(t, srv, `{"max_tokens":10,"contents":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core.Envelope{Message: "Incorrect API key provided", Code: 500}, env)
}

func TestChatEmptyContentsForwarded(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("ok")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	_, env := postChat(t, srv, `{"max_tokens":10,"contents":[]}`)

	assert.Equal(t, 200, env.Code)
	assert.Equal(t, 1, mock.calls)
	assert.Empty(t, mock.lastReq.Messages)
}

func TestChatMalformedJSON(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("unused")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, _ := postChat(t, srv, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, mock.calls)
}

func TestChatMissingMaxTokens(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("unused")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, _ := postChat(t, srv, `{"contents":[{"role":"user","content":"hi"}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, mock.calls, "binding failure must not reach credential resolution")
}

func TestChatMissingContents(t *testing.T) {
	mock := &mockProvider{resp: echoResponse("unused")}
	srv := New(mock, &Config{FallbackAPIKey: "sk-fallback"})

	rec, _ := postChat(t, srv, `{"max_tokens":10}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, mock.calls)
}

func TestHealth(t *testing.T) {
	srv := New(&mockProvider{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
