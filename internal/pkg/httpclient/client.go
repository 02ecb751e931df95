// Package httpclient builds the shared HTTP client used for upstream calls.
package httpclient

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Config holds transport tuning for the upstream HTTP client.
type Config struct {
	// MaxIdleConns controls the maximum number of idle (keep-alive) connections across all hosts
	MaxIdleConns int

	// MaxIdleConnsPerHost controls the maximum idle (keep-alive) connections to keep per-host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration

	// DialTimeout is the maximum amount of time a dial will wait for a connect to complete
	DialTimeout time.Duration

	// TLSHandshakeTimeout bounds the TLS handshake
	TLSHandshakeTimeout time.Duration

	// Timeout bounds the whole request. The gateway enforces no deadline of
	// its own beyond this client default.
	Timeout time.Duration
}

// DefaultConfig returns transport defaults sized for long-running LLM calls.
// HTTP_TIMEOUT (plain seconds or a Go duration string) overrides the request
// timeout.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		Timeout:             envDuration("HTTP_TIMEOUT", 600*time.Second),
	}
}

// New creates an HTTP client from the given configuration.
func New(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}

// NewDefault creates an HTTP client with default configuration.
func NewDefault() *http.Client {
	return New(DefaultConfig())
}

// envDuration reads a duration from an environment variable, returning the
// default if not set or invalid. Accepts plain integers (seconds) or Go
// duration strings (e.g. "10m").
func envDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	return defaultVal
}
