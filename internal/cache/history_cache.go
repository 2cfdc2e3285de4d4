// Package cache provides a read-through cache for normalized price series.
// Runs are independent, so the cache only saves provider round-trips; the
// server works unchanged without it.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stockdash/internal/models"
)

// HistoryCache stores normalized price series keyed by ticker symbol.
type HistoryCache interface {
	// Get returns the cached series and whether it was present and fresh.
	Get(ctx context.Context, symbol string) (models.TimeSeries, bool)
	// Set stores a series snapshot.
	Set(ctx context.Context, symbol string, series models.TimeSeries)
	// Stats returns hit/miss counters.
	Stats() CacheStats
}

// CacheStats tracks cache performance counters.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

type statsCounter struct {
	mu    sync.Mutex
	stats CacheStats
}

func (s *statsCounter) hit()  { s.mu.Lock(); s.stats.Hits++; s.mu.Unlock() }
func (s *statsCounter) miss() { s.mu.Lock(); s.stats.Misses++; s.mu.Unlock() }
func (s *statsCounter) set()  { s.mu.Lock(); s.stats.Sets++; s.mu.Unlock() }

func (s *statsCounter) snapshot() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// RedisHistoryCache implements HistoryCache on Redis.
type RedisHistoryCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	stats  statsCounter
}

// NewRedisHistoryCache creates a Redis-backed history cache with the given
// snapshot TTL.
func NewRedisHistoryCache(client *redis.Client, ttl time.Duration) *RedisHistoryCache {
	return &RedisHistoryCache{
		redis:  client,
		ttl:    ttl,
		prefix: "history:",
	}
}

// Get retrieves a cached series. Any Redis or decode error counts as a miss;
// the caller just refetches.
func (c *RedisHistoryCache) Get(ctx context.Context, symbol string) (models.TimeSeries, bool) {
	data, err := c.redis.Get(ctx, c.prefix+symbol).Result()
	if err != nil {
		c.stats.miss()
		return models.TimeSeries{}, false
	}

	var series models.TimeSeries
	if err := json.Unmarshal([]byte(data), &series); err != nil {
		c.stats.miss()
		return models.TimeSeries{}, false
	}

	c.stats.hit()
	return series, true
}

// Set stores a series snapshot with the configured TTL. Failures are
// ignored; caching is best-effort.
func (c *RedisHistoryCache) Set(ctx context.Context, symbol string, series models.TimeSeries) {
	data, err := json.Marshal(series)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.prefix+symbol, data, c.ttl).Err(); err != nil {
		return
	}
	c.stats.set()
}

// Stats returns hit/miss counters.
func (c *RedisHistoryCache) Stats() CacheStats {
	return c.stats.snapshot()
}

type memEntry struct {
	series    models.TimeSeries
	expiresAt time.Time
}

// InMemoryHistoryCache is the fallback used when Redis is unavailable.
type InMemoryHistoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	ttl     time.Duration
	stats   statsCounter
}

// NewInMemoryHistoryCache creates an in-process history cache.
func NewInMemoryHistoryCache(ttl time.Duration) *InMemoryHistoryCache {
	return &InMemoryHistoryCache{
		entries: make(map[string]memEntry),
		ttl:     ttl,
	}
}

// Get retrieves a cached series if present and not expired.
func (c *InMemoryHistoryCache) Get(_ context.Context, symbol string) (models.TimeSeries, bool) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		c.stats.miss()
		return models.TimeSeries{}, false
	}
	c.stats.hit()
	return entry.series.Copy(), true
}

// Set stores a series snapshot.
func (c *InMemoryHistoryCache) Set(_ context.Context, symbol string, series models.TimeSeries) {
	c.mu.Lock()
	c.entries[symbol] = memEntry{
		series:    series.Copy(),
		expiresAt: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
	c.stats.set()
}

// Stats returns hit/miss counters.
func (c *InMemoryHistoryCache) Stats() CacheStats {
	return c.stats.snapshot()
}
