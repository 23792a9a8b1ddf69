package ratelimit

import (
	"context"
	"time"
)

// Limiter bounds the request rate for a caller-supplied key. Allow
// consumes one slot and reports the remaining quota derived from the
// same atomic update, so callers never read the counter back and race
// with concurrent increments. A false return means the caller is over
// its quota for the current window. A non-nil error means the backing
// store failed and the request must be rejected, not admitted.
type Limiter interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)

	Limit() int

	Window() time.Duration

	Reset(ctx context.Context, key string) (time.Time, error)
}

// CounterStore is the slice of the key-value store the fixed-window
// limiter uses. Incr must be atomic across concurrent callers of the
// same key.
type CounterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// SortedSetStore is the slice used by the sliding-window limiter.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZCard(ctx context.Context, key string) (int64, error)
	ZRemRangeByScore(ctx context.Context, key, min, max string) error
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Store is what the factory requires; *storage.RedisClient satisfies it.
type Store interface {
	CounterStore
	SortedSetStore
}
