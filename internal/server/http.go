package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"chatgate/config"
	"chatgate/internal/core"
)

// Server wraps the Echo server
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// Config holds server configuration options
type Config struct {
	// FallbackAPIKey is the process-wide credential consulted when a request
	// carries no api_key of its own. Empty means no fallback is configured.
	FallbackAPIKey string

	// BodyLimit caps inbound request bodies (echo body-limit syntax, e.g. "1M")
	BodyLimit string
}

// New creates a new HTTP server
func New(provider core.Provider, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true

	if cfg == nil {
		cfg = &Config{}
	}

	handler := NewHandler(provider, cfg.FallbackAPIKey)

	// Global middleware stack (order matters)
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(core.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", core.RequestID(c.Request().Context()),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	bodyLimit := cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = config.DefaultBodyLimit
	}
	e.Use(middleware.BodyLimit(bodyLimit))

	// Public routes
	e.GET("/health", handler.Health)

	// API routes
	e.POST("/chat", handler.Chat)

	return &Server{
		echo:    e,
		handler: handler,
	}
}

// Start starts the HTTP server on the given address
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface, allowing Server to be used with httptest
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
