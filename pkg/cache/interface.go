package cache

import (
	"context"
	"time"
)

// Provider is the raw key/value store behind the read-through cache. Every
// single-key operation is atomic; failures are reported as *CacheError.
type Provider interface {
	// Get returns the value under key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores val under key. A zero ttl means no automatic expiry.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error

	// Delete removes keys. Absent keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
	Close() error
}

// PatternDeleter is implemented by providers that can remove every key
// matching a glob pattern, e.g. a whole stale namespace generation.
type PatternDeleter interface {
	DeletePattern(ctx context.Context, pattern string) (int64, error)
}
