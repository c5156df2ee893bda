package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers request keys of non-idempotent operations
// (payments, quantity adjustments, reservations).
type IdempotencyStore interface {
	// MarkProcessed marks a key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been marked
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a mark so a failed operation can be retried with the
	// same key.
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key blocks a repeat. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
