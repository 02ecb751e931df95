// Package llmclient provides the base HTTP client for upstream LLM calls:
// request marshaling, response unmarshaling, and standardized error parsing.
// Every call goes out exactly once; there is no retry layer.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"chatgate/internal/core"
	"chatgate/internal/pkg/httpclient"
)

// Config holds configuration for the client.
type Config struct {
	// ProviderName identifies the upstream in error messages
	ProviderName string

	// BaseURL is the API base URL
	BaseURL string
}

// Client is a thin JSON client over the shared HTTP transport.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a client using the default shared transport.
func New(config Config) *Client {
	return &Client{
		httpClient: httpclient.NewDefault(),
		config:     config,
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// If httpClient is nil, the default shared transport is used.
func NewWithHTTPClient(httpClient *http.Client, config Config) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewDefault()
	}
	return &Client{
		httpClient: httpClient,
		config:     config,
	}
}

// SetBaseURL updates the base URL
func (c *Client) SetBaseURL(url string) {
	c.config.BaseURL = url
}

// BaseURL returns the current base URL
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Request represents one HTTP request to the upstream
type Request struct {
	Method   string
	Endpoint string
	Body     interface{} // Will be JSON marshaled if not nil
	Headers  map[string]string
}

// Do executes the request once and unmarshals the response body into result.
// Non-200 responses come back as a *core.GatewayError carrying the upstream's
// error message.
func (c *Client) Do(ctx context.Context, req Request, result interface{}) error {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return core.NewUpstreamError(c.config.ProviderName, err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.NewUpstreamError(c.config.ProviderName, "failed to read response: "+err.Error(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return core.ParseUpstreamError(c.config.ProviderName, resp.StatusCode, body, nil)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return core.NewUpstreamError(c.config.ProviderName, "failed to unmarshal response: "+err.Error(), err)
		}
	}

	return nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := c.config.BaseURL + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewInvalidRequestError("failed to marshal request: "+err.Error(), err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create request: "+err.Error(), err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}
