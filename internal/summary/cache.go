package summary

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"attendance-tracker/internal/stats"
)

// Cache stores computed summaries by key.
type Cache interface {
	Get(ctx context.Context, key string) (stats.Summary, bool, error)
	Set(ctx context.Context, key string, s stats.Summary, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RedisCache keeps summaries as JSON strings with a TTL.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache stores summaries as JSON strings in Redis.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (stats.Summary, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return stats.Summary{}, false, nil
	}
	if err != nil {
		return stats.Summary{}, false, err
	}
	var s stats.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return stats.Summary{}, false, err
	}
	return s, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, s stats.Summary, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// MemoryCache is a process-local cache for dev and tests.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	summary stats.Summary
	expires time.Time
}

// NewMemoryCache keeps summaries in this process only.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (stats.Summary, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return stats.Summary{}, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return stats.Summary{}, false, nil
	}
	return e.summary, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, s stats.Summary, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{summary: s}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
