// Package core provides core types and interfaces for the gateway.
package core

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeUpstream indicates a transport or API failure reaching the upstream
	ErrorTypeUpstream ErrorType = "upstream_error"
	// ErrorTypeInvalidRequest indicates a request that could not be built or sent
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
)

// GatewayError is the error type for all upstream-call failures. Message is
// what ends up verbatim in the response envelope.
type GatewayError struct {
	Type     ErrorType
	Message  string
	Provider string
	// Original error for debugging (not exposed to clients)
	Err error
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error
func NewUpstreamError(provider string, message string, err error) *GatewayError {
	return &GatewayError{
		Type:     ErrorTypeUpstream,
		Message:  message,
		Provider: provider,
		Err:      err,
	}
}

// NewInvalidRequestError creates a new invalid request error
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeInvalidRequest,
		Message: message,
		Err:     err,
	}
}

// ParseUpstreamError turns a non-200 upstream response body into a
// GatewayError, preferring the error.message field OpenAI-compatible APIs
// embed and falling back to the raw body text.
func ParseUpstreamError(provider string, statusCode int, body []byte, originalErr error) *GatewayError {
	message := strings.TrimSpace(string(body))
	if m := gjson.GetBytes(body, "error.message"); m.Exists() && m.String() != "" {
		message = m.String()
	}
	if message == "" {
		message = fmt.Sprintf("upstream returned status %d", statusCode)
	}
	return NewUpstreamError(provider, message, originalErr)
}
