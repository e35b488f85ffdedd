// Package idempotency remembers Idempotency-Key values so a replayed command is rejected.
package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is how long a key is remembered when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Store records which command keys have been seen.
type Store interface {
	// MarkProcessed records key for ttl.
	// Returns true if the key was newly recorded, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently recorded.
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets key so the command may be retried.
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
