package config

import (
	"testing"
	"time"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CODEMATE_API_URL", "https://api.example.com")
	t.Setenv("CODEMATE_HTTP_TIMEOUT", "7s")
	t.Setenv("CODEMATE_TYPING_IDLE", "900ms")
	t.Setenv("METRICS_ADDR", ":9100")

	cfg := Load()
	if cfg.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.TypingIdle != 900*time.Millisecond {
		t.Errorf("TypingIdle = %s", cfg.TypingIdle)
	}
	if cfg.MetricsAddr != ":9100" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
}

func TestLoadIgnoresBadDurations(t *testing.T) {
	t.Setenv("CODEMATE_ACK_TIMEOUT", "soon")
	cfg := Load()
	if cfg.AckTimeout != Default().AckTimeout {
		t.Errorf("AckTimeout = %s, want default", cfg.AckTimeout)
	}
}

func TestResolveSocketURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{BaseURL: "http://x", SocketURL: "ws://custom/socket"}, "ws://custom/socket"},
		{"derived http", Config{BaseURL: "http://localhost:3000"}, "ws://localhost:3000/socket"},
		{"derived https", Config{BaseURL: "https://api.example.com/"}, "wss://api.example.com/socket"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.ResolveSocketURL(); got != tc.want {
				t.Errorf("ResolveSocketURL() = %q, want %q", got, tc.want)
			}
		})
	}
}
