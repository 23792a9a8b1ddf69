package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// SlidingWindowLimiter tracks request timestamps in a sorted set so the
// window slides continuously instead of resetting at fixed boundaries.
// Selectable via config for deployments that cannot tolerate the
// fixed-window boundary burst.
type SlidingWindowLimiter struct {
	store  SortedSetStore
	limit  int
	window time.Duration
}

func NewSlidingWindow(store SortedSetStore, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		store:  store,
		limit:  limit,
		window: window,
	}
}

func (s *SlidingWindowLimiter) key(key string) string {
	return "ratelimit:sliding:" + key
}

func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := s.key(key)
	now := time.Now()
	windowStart := now.Add(-s.window)

	// Drop entries that slid out of the window, then count the rest.
	if err := s.store.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano())); err != nil {
		return false, 0, err
	}

	count, err := s.store.ZCard(ctx, redisKey)
	if err != nil {
		return false, 0, err
	}

	if count >= int64(s.limit) {
		return false, 0, nil
	}

	if err := s.store.ZAdd(ctx, redisKey, float64(now.UnixNano()), fmt.Sprintf("%d", now.UnixNano())); err != nil {
		return false, 0, err
	}

	if err := s.store.Expire(ctx, redisKey, s.window); err != nil {
		return false, 0, err
	}

	remaining := s.limit - int(count) - 1
	if remaining < 0 {
		remaining = 0
	}

	return true, remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// Reset is when the oldest tracked request ages out of the window.
func (s *SlidingWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	oldest, err := s.store.ZRange(ctx, s.key(key), 0, 0)
	if err != nil || len(oldest) == 0 {
		return time.Now(), nil
	}

	oldestNano, err := strconv.ParseInt(oldest[0], 10, 64)
	if err != nil {
		// Corrupt member; assume a full window remains.
		return time.Now().Add(s.window), nil
	}

	return time.Unix(0, oldestNano).Add(s.window), nil
}
