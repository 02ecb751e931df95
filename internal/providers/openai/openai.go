// Package openai implements the upstream provider for OpenAI-compatible
// chat-completion APIs.
package openai

import (
	"context"
	"net/http"

	"chatgate/internal/core"
	"chatgate/internal/pkg/llmclient"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Provider implements core.Provider against an OpenAI-compatible API.
// It carries no credential; the key arrives per call.
type Provider struct {
	client *llmclient.Client
	model  string
}

// New creates a new provider. An empty baseURL falls back to the public
// OpenAI endpoint. model is the fixed model identifier stamped onto requests
// that carry none.
func New(baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client: llmclient.New(llmclient.Config{
			ProviderName: "openai",
			BaseURL:      baseURL,
		}),
		model: model,
	}
}

// NewWithHTTPClient creates a provider with a custom HTTP client.
// If httpClient is nil, the default shared transport is used.
func NewWithHTTPClient(httpClient *http.Client, baseURL, model string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		client: llmclient.NewWithHTTPClient(httpClient, llmclient.Config{
			ProviderName: "openai",
			BaseURL:      baseURL,
		}),
		model: model,
	}
}

// SetBaseURL allows configuring a custom base URL for the provider
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

// ChatCompletion sends one chat completion request to the upstream API using
// the per-request credential.
func (p *Provider) ChatCompletion(ctx context.Context, apiKey string, req *core.ChatRequest) (*core.ChatResponse, error) {
	if req.Model == "" {
		req.Model = p.model
	}

	headers := map[string]string{
		"Authorization": "Bearer " + apiKey,
	}
	// Forward the request ID using OpenAI's X-Client-Request-Id header.
	// OpenAI requires ASCII-only characters and max 512 bytes, otherwise returns 400.
	if requestID := core.RequestID(ctx); requestID != "" && isValidClientRequestID(requestID) {
		headers["X-Client-Request-Id"] = requestID
	}

	var resp core.ChatResponse
	err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     req,
		Headers:  headers,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Model == "" {
		resp.Model = req.Model
	}
	return &resp, nil
}

// isValidClientRequestID checks if the request ID is valid for OpenAI's
// X-Client-Request-Id header: ASCII characters only, max 512 characters.
func isValidClientRequestID(id string) bool {
	if len(id) > 512 {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] > 127 {
			return false
		}
	}
	return true
}
