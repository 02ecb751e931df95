// Package cli wires the command surface and lifecycle for the gateway binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatgate/config"
	"chatgate/internal/logging"
	"chatgate/internal/providers/openai"
	"chatgate/internal/server"
	"chatgate/internal/version"
)

const shutdownTimeout = 10 * time.Second

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chatgate",
	Short: "HTTP gateway that relays simplified chat requests to an OpenAI-compatible API",
	Long: `chatgate accepts a simplified chat-completion request on POST /chat,
forwards it to an OpenAI-compatible chat-completion API, and relays the
first choice's text back in a fixed {message, code} JSON envelope.

The API key may be supplied per request in the body, or once at startup
with --api-key as a process-wide fallback.`,
	Version:      version.Info(),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringP("api-key", "a", "", "process-wide fallback API key for upstream calls")
	rootCmd.Flags().Uint16P("port", "p", config.DefaultPort, "port to listen on")

	// Flags override env vars and .env values read in config.Load
	_ = viper.BindPFlag("api_key", rootCmd.Flags().Lookup("api-key"))
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
}

func run() error {
	logging.Setup(os.Stdout)

	slog.Info("starting chatgate", "version", version.Version)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Upstream.APIKey == "" {
		slog.Warn("no fallback api key configured; requests must carry their own")
	}

	provider := openai.New(cfg.Upstream.BaseURL, cfg.Upstream.Model)
	srv := server.New(provider, &server.Config{
		FallbackAPIKey: cfg.Upstream.APIKey,
		BodyLimit:      cfg.Server.BodyLimit,
	})

	// Handle graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("starting server", "address", addr)

	// Serving in the foreground keeps bind and serve failures on the process
	// exit path instead of losing them in a background task.
	if err := srv.Start(addr); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			slog.Info("server stopped gracefully")
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
