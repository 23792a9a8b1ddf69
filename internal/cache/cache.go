package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the slice of the key-value store the cache needs;
// *storage.RedisClient satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Cache memoizes expensive aggregation responses as JSON under a fixed
// TTL. It is strictly an optimization: a broken store degrades every
// read to a miss and every write to a no-op, never failing the request.
type Cache struct {
	store Store
	ttl   time.Duration
}

func New(store Store, ttl time.Duration) *Cache {
	return &Cache{
		store: store,
		ttl:   ttl,
	}
}

// Get unmarshals the cached value into dest and reports whether there
// was a hit. Store failures are logged and read as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return false
	}

	if err != nil {
		log.Printf("cache: error fetching %s: %v", key, err)
		return false
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		log.Printf("cache: corrupt entry for %s: %v", key, err)
		return false
	}

	return true
}

// Set stores value best-effort; failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: error marshaling %s: %v", key, err)
		return
	}

	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		log.Printf("cache: error caching %s: %v", key, err)
	}
}

// Key builders. Two logically identical queries must map to the same
// key, so every parameter that affects the result is part of it.

func EventSummaryKey(event, startDate, endDate, appID string) string {
	return fmt.Sprintf("event-summary:%s:%s:%s:%s", event, startDate, endDate, appID)
}

func UserStatsKey(userID, appID string) string {
	return fmt.Sprintf("user-stats:%s:%s", userID, appID)
}
