// Package config loads client configuration from the environment, with an
// optional .env file for development.
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the CodeMate client.
type Config struct {
	// BaseURL is the REST API base path. Defaults to the reverse-proxied
	// /api prefix the production deployment uses.
	BaseURL string

	// SocketURL is the live channel endpoint. When empty it is derived
	// from BaseURL by swapping the scheme to ws(s) and appending /socket.
	SocketURL string

	// HTTPTimeout bounds every REST call.
	HTTPTimeout time.Duration

	// AckTimeout bounds how long a sendMessage waits for its delivery
	// acknowledgement.
	AckTimeout time.Duration

	// TypingIdle is the keystroke idle window after which stopTyping is
	// emitted.
	TypingIdle time.Duration

	// DataDir is where durable local state (theme preference, last route)
	// is kept.
	DataDir string

	// MetricsAddr, when non-empty, exposes the Prometheus handler.
	MetricsAddr string
}

// Default returns the configuration used when no environment overrides are
// present.
func Default() Config {
	return Config{
		BaseURL:     "http://localhost:3000",
		HTTPTimeout: 15 * time.Second,
		AckTimeout:  5 * time.Second,
		TypingIdle:  1200 * time.Millisecond,
		DataDir:     ".codemate",
	}
}

// ResolveSocketURL returns SocketURL, deriving it from BaseURL when unset:
// the scheme flips to ws(s) and /socket is appended.
func (c Config) ResolveSocketURL() string {
	if c.SocketURL != "" {
		return c.SocketURL
	}
	u := c.BaseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return strings.TrimSuffix(u, "/") + "/socket"
}

// Load builds a Config from Default overlaid with environment variables.
// A .env file in the working directory is honored when present.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, relying on environment variables")
	}

	cfg := Default()

	if v := os.Getenv("CODEMATE_API_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("CODEMATE_SOCKET_URL"); v != "" {
		cfg.SocketURL = v
	}
	if v := os.Getenv("CODEMATE_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("CODEMATE_ACK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.AckTimeout = d
		}
	}
	if v := os.Getenv("CODEMATE_TYPING_IDLE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TypingIdle = d
		}
	}
	if v := os.Getenv("CODEMATE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}

	return cfg
}
