// Package config provides configuration management for the gateway.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// DefaultPort is the port the gateway listens on when none is given.
	DefaultPort uint16 = 10802

	// DefaultModel is the fixed upstream model every request is sent to.
	DefaultModel = "gpt-3.5-turbo"

	// DefaultBaseURL is the upstream chat-completion API.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultBodyLimit caps inbound request bodies (echo body-limit syntax).
	DefaultBodyLimit = "1M"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      uint16
	BodyLimit string
}

// UpstreamConfig holds the upstream chat-completion API configuration
type UpstreamConfig struct {
	// APIKey is the optional process-wide fallback credential. It is read
	// once at startup and never written again; request-supplied keys take
	// priority over it.
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads configuration from the environment (and an optional .env file)
// on top of defaults. CLI flags are bound into viper by the cli package and
// take precedence over everything read here.
func Load() (*Config, error) {
	// Load .env file if present; real env vars still win
	_ = godotenv.Load()

	viper.SetEnvPrefix("CHATGATE")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("port", int(DefaultPort))
	viper.SetDefault("api_key", "")
	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("model", DefaultModel)
	viper.SetDefault("body_limit", DefaultBodyLimit)

	port := viper.GetInt("port")
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be in 1..65535", port)
	}

	return &Config{
		Server: ServerConfig{
			Port:      uint16(port),
			BodyLimit: viper.GetString("body_limit"),
		},
		Upstream: UpstreamConfig{
			APIKey:  viper.GetString("api_key"),
			BaseURL: viper.GetString("base_url"),
			Model:   viper.GetString("model"),
		},
	}, nil
}
