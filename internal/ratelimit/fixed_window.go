package ratelimit

import (
	"context"
	"time"
)

// FixedWindowLimiter counts requests against a single per-key counter
// whose TTL is armed on the first increment of the window. The window
// is anchored at the first request, so bursts straddling a boundary can
// admit up to twice the limit; that approximation is intentional.
type FixedWindowLimiter struct {
	store  CounterStore
	limit  int
	window time.Duration
}

func NewFixedWindow(store CounterStore, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (f *FixedWindowLimiter) key(key string) string {
	return "ratelimit:" + key
}

func (f *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := f.key(key)

	count, err := f.store.Incr(ctx, redisKey)
	if err != nil {
		return false, 0, err
	}

	// First increment of the window owns setting the expiry. Incr is
	// atomic, so exactly one concurrent caller observes count == 1.
	if count == 1 {
		if err := f.store.Expire(ctx, redisKey, f.window); err != nil {
			return false, 0, err
		}
	}

	remaining := f.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	// Over-limit increments are not rolled back; the counter keeps
	// recording pressure until the TTL clears it.
	return count <= int64(f.limit), remaining, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}

// Reset returns when the current window's counter expires. With no
// live counter the window resets immediately.
func (f *FixedWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	ttl, err := f.store.TTL(ctx, f.key(key))
	if err != nil {
		return time.Time{}, err
	}

	if ttl <= 0 {
		return time.Now(), nil
	}

	return time.Now().Add(ttl), nil
}
