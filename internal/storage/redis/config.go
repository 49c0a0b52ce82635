package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// MatchedEntryTTL bounds how long a matched entry stays readable
	MatchedEntryTTL time.Duration

	// MaxTxAttempts caps optimistic retries for queue operations
	MaxTxAttempts int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		MatchedEntryTTL: 24 * time.Hour,
		MaxTxAttempts:   32,
	}
}
