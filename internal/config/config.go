package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Serve mode
	Port   string
	APIKey string

	// Request limits
	MaxRequestBytes int64

	// Streaming read loop
	BufferSize int

	// Error rendering: "auto", "always", or "never"
	Color string
}

func Load() Config {
	cfg := Config{
		Port:   envOr("PORT", "8091"),
		APIKey: os.Getenv("MDVALIDATE_API_KEY"),

		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 10485760), // 10MB

		BufferSize: envInt("MDVALIDATE_BUFFER_SIZE", 2048),

		Color: envOr("MDVALIDATE_COLOR", "auto"),
	}

	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 10485760
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 2048
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("MDVALIDATE_COLOR must be auto, always, or never, got %q", c.Color)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
