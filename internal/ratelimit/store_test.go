package ratelimit

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unavailable")

type zentry struct {
	score  float64
	member string
}

// fakeStore is an in-memory Store for limiter tests. TTLs are recorded,
// not enforced; expireNow simulates the window elapsing.
type fakeStore struct {
	mu          sync.Mutex
	counts      map[string]int64
	ttls        map[string]time.Duration
	zsets       map[string][]zentry
	expireCalls int
	failing     bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: make(map[string]int64),
		ttls:   make(map[string]time.Duration),
		zsets:  make(map[string][]zentry),
	}
}

func (s *fakeStore) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return 0, errStoreDown
	}

	s.counts[key]++
	return s.counts[key], nil
}

func (s *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return errStoreDown
	}

	s.ttls[key] = ttl
	s.expireCalls++
	return nil
}

func (s *fakeStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return 0, errStoreDown
	}

	return s.ttls[key], nil
}

func (s *fakeStore) expireNow(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counts, key)
	delete(s.ttls, key)
	delete(s.zsets, key)
}

func (s *fakeStore) count(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counts[key]
}

func (s *fakeStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return errStoreDown
	}

	s.zsets[key] = append(s.zsets[key], zentry{score: score, member: member})
	return nil
}

func (s *fakeStore) ZCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return 0, errStoreDown
	}

	return int64(len(s.zsets[key])), nil
}

func (s *fakeStore) ZRemRangeByScore(ctx context.Context, key, min, max string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return errStoreDown
	}

	lo, _ := strconv.ParseFloat(min, 64)
	hi, _ := strconv.ParseFloat(max, 64)

	kept := s.zsets[key][:0]
	for _, e := range s.zsets[key] {
		if e.score < lo || e.score > hi {
			kept = append(kept, e)
		}
	}
	s.zsets[key] = kept
	return nil
}

func (s *fakeStore) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return nil, errStoreDown
	}

	entries := append([]zentry(nil), s.zsets[key]...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].score < entries[j].score })

	members := make([]string, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.member)
	}

	if start >= int64(len(members)) {
		return nil, nil
	}
	if stop < 0 || stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}
	return members[start : stop+1], nil
}
