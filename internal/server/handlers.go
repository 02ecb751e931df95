// Package server provides HTTP handlers and server setup for the gateway.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"chatgate/internal/core"
)

// Handler holds the HTTP handlers and their dependencies. The fallback
// credential is fixed at construction time and never written afterwards, so
// concurrent reads from in-flight requests need no locking.
type Handler struct {
	provider       core.Provider
	fallbackAPIKey string
}

// NewHandler creates a new handler with the given provider and fallback credential
func NewHandler(provider core.Provider, fallbackAPIKey string) *Handler {
	return &Handler{
		provider:       provider,
		fallbackAPIKey: fallbackAPIKey,
	}
}

// chatInput is the inbound request body for POST /chat. MaxTokens and
// Contents are pointers/slices so missing fields are detectable after binding.
type chatInput struct {
	APIKey    string      `json:"api_key"`
	MaxTokens *uint16     `json:"max_tokens"`
	Contents  []core.Turn `json:"contents"`
}

// Chat handles POST /chat.
//
// Wire contract: every handler outcome is returned with transport status 200
// and the logical outcome in the envelope's code field. Only binding-stage
// failures (malformed JSON, missing max_tokens or contents) respond with a
// real 4xx, before credential resolution is reached.
func (h *Handler) Chat(c echo.Context) error {
	var in chatInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	if in.MaxTokens == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "max_tokens is required")
	}
	if in.Contents == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "contents is required")
	}

	// Exactly one credential source per request: the body key wins, then the
	// process-wide fallback, then fail without any upstream call.
	apiKey := in.APIKey
	if apiKey == "" {
		apiKey = h.fallbackAPIKey
	}
	if apiKey == "" {
		return c.JSON(http.StatusOK, core.Fail(core.MsgAPIKeyEmpty))
	}

	// An empty contents list is forwarded as-is; the upstream rejection comes
	// back through the normal envelope path.
	messages := make([]core.Message, 0, len(in.Contents))
	for _, turn := range in.Contents {
		messages = append(messages, core.Message{
			Role:    core.NormalizeRole(turn.Role),
			Content: turn.Content,
		})
	}

	req := &core.ChatRequest{
		MaxTokens: int(*in.MaxTokens),
		Messages:  messages,
	}

	start := time.Now()
	resp, err := h.provider.ChatCompletion(c.Request().Context(), apiKey, req)
	if err != nil {
		return c.JSON(http.StatusOK, core.Fail(errMessage(err)))
	}
	slog.Debug("upstream call completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", core.RequestID(c.Request().Context()),
	)

	if len(resp.Choices) == 0 {
		return c.JSON(http.StatusOK, core.Fail(core.MsgNoChoices))
	}
	content := resp.Choices[0].Message.Content
	if content == nil {
		return c.JSON(http.StatusOK, core.Fail(core.MsgNoContent))
	}

	return c.JSON(http.StatusOK, core.OK(*content))
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// errMessage returns the text that goes in the envelope: the upstream error
// message verbatim for gateway errors, err.Error() for anything else.
func errMessage(err error) string {
	var gatewayErr *core.GatewayError
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Message
	}
	return err.Error()
}
