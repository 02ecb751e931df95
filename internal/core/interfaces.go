package core

import "context"

// Provider executes chat completions against an upstream LLM API.
//
// The credential travels as an argument because it is resolved per request
// (body key first, then the process-wide fallback); the provider itself holds
// no key.
type Provider interface {
	// ChatCompletion executes one chat completion request. It is called at
	// most once per inbound request; there is no retry layer above or below.
	ChatCompletion(ctx context.Context, apiKey string, req *ChatRequest) (*ChatResponse, error)
}
