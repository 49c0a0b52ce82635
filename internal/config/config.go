// Package config loads server settings from GOMOKU_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config holds the server settings
type Config struct {
	HTTPPort int    `env:"GOMOKU_HTTP_PORT" envDefault:"8080"`
	LogLevel string `env:"GOMOKU_LOG_LEVEL" envDefault:"info"`

	// Storage selects the backend: memory, redis or sqlite
	Storage    string `env:"GOMOKU_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"GOMOKU_REDIS_URL" envDefault:"redis://localhost:6379"`
	SQLitePath string `env:"GOMOKU_SQLITE_PATH" envDefault:"gomoku.db"`

	// TurnTimeout is how long a player has to act before forfeiting
	TurnTimeout time.Duration `env:"GOMOKU_TURN_TIMEOUT" envDefault:"5m"`

	// Optional integrations, disabled when empty
	NATSURL      string `env:"GOMOKU_NATS_URL"`
	OTELEndpoint string `env:"GOMOKU_OTEL_ENDPOINT"`
}

// Load parses and validates the environment
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the type system cannot
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageSQLite:
	default:
		return fmt.Errorf("GOMOKU_STORAGE must be memory, redis or sqlite, got %q", c.Storage)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("GOMOKU_HTTP_PORT out of range: %d", c.HTTPPort)
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("GOMOKU_TURN_TIMEOUT must be positive, got %s", c.TurnTimeout)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
