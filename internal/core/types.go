package core

import "net/http"

// Role values accepted from clients. Anything else normalizes to user.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one role-tagged unit of conversational text from a client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NormalizeRole maps unrecognized role values to user. This is not an error:
// a client sending "moderator" gets user semantics silently.
func NormalizeRole(role string) string {
	switch role {
	case RoleUser, RoleAssistant, RoleSystem:
		return role
	default:
		return RoleUser
	}
}

// Message is a single message in an upstream chat-completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body sent upstream.
type ChatRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

// ResponseMessage is a message inside an upstream choice. Content is a
// pointer so an absent field is distinguishable from an empty string.
type ResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

// Choice is a single completion choice in the upstream response.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

// Usage is the token usage block of the upstream response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the upstream chat-completion response.
type ChatResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
	Created int64    `json:"created"`
}

// Envelope is the fixed response shape returned for every /chat outcome,
// success or failure. The transport status is always 200; Code carries the
// logical outcome (200 or 500). This is the wire contract, not a bug.
type Envelope struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Fixed failure messages on the wire.
const (
	MsgAPIKeyEmpty = "api_key is empty"
	MsgNoChoices   = "no choices"
	MsgNoContent   = "no content"
)

// OK wraps a successful response text in an envelope.
func OK(message string) Envelope {
	return Envelope{Message: message, Code: http.StatusOK}
}

// Fail wraps a failure message in an envelope.
func Fail(message string) Envelope {
	return Envelope{Message: message, Code: http.StatusInternalServerError}
}
