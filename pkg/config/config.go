// Package config handles ariadne configuration via environment variables.
//
// Configuration is loaded with Load() and checked with Validate() before
// use. All variables are optional; zero values fall back to built-in
// defaults.
//
// Environment Variables:
//   - ARIADNE_SCHEMA_PATH: path to a schema file (structured YAML/JSON or
//     free text with (:Src)-[:Edge]->(:Dst) declarations). Empty uses the
//     built-in Kubernetes schema.
//   - ARIADNE_CACHE_SIZE: validation result cache capacity. 0 disables the
//     cache.
//   - ARIADNE_CACHE_TTL: cache entry lifetime, Go duration syntax ("5m").
//   - ARIADNE_LOG_LEVEL: debug | info | warn | error (default info).
//   - ARIADNE_LOG_FORMAT: text | json (default text).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all ariadne settings loaded from the environment.
type Config struct {
	SchemaPath string
	CacheSize  int
	CacheTTL   time.Duration
	LogLevel   string
	LogFormat  string
}

// Load reads configuration from environment variables. Unparsable numeric or
// duration values fall back to defaults; Validate reports the rest.
func Load() *Config {
	cfg := &Config{
		SchemaPath: os.Getenv("ARIADNE_SCHEMA_PATH"),
		CacheTTL:   5 * time.Minute,
		LogLevel:   "info",
		LogFormat:  "text",
	}
	if v := os.Getenv("ARIADNE_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.CacheSize = n
		}
	}
	if v := os.Getenv("ARIADNE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("ARIADNE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ARIADNE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	return cfg
}

// Validate checks settings for consistency.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid ARIADNE_LOG_LEVEL %q (want debug, info, warn, or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid ARIADNE_LOG_FORMAT %q (want text or json)", c.LogFormat)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid ARIADNE_CACHE_SIZE %d", c.CacheSize)
	}
	return nil
}

// Logger builds a slog.Logger on stderr per the configured level and format.
func (c *Config) Logger() *slog.Logger {
	level := slog.LevelInfo
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
