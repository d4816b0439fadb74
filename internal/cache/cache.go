package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	fetchedAt time.Time
	expiresAt time.Time
}

// Stats is a snapshot of cache effectiveness.
type Stats struct {
	Entries int     `json:"entries"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

// Cache memoizes values for a fixed time-to-live. A non-positive TTL disables
// storage, so every Get misses.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	maxSize int
	now     Clock

	hits   int64
	misses int64

	// OnHit and OnMiss are optional observers, called outside the lock.
	OnHit  func()
	OnMiss func()
}

// New creates a cache. maxSize <= 0 means unbounded.
func New[K comparable, V any](ttl time.Duration, maxSize int) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// WithClock replaces the time source.
func (c *Cache[K, V]) WithClock(now Clock) *Cache[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the value for key if it has not expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		ok = false
	}
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()

	if !ok {
		log.Debug().Str("key", fmt.Sprint(key)).Msg("Cache miss")
		if c.OnMiss != nil {
			c.OnMiss()
		}
		var zero V
		return zero, false
	}
	log.Debug().Str("key", fmt.Sprint(key)).Msg("Cache hit")
	if c.OnHit != nil {
		c.OnHit()
	}
	return e.value, true
}

// Set stores value under key, evicting the oldest entry when full.
func (c *Cache[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	now := c.now()
	c.entries[key] = entry[V]{value: value, fetchedAt: now, expiresAt: now.Add(c.ttl)}
	log.Debug().Str("key", fmt.Sprint(key)).Dur("ttl", c.ttl).Msg("Added to cache")
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are never cached.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Invalidate removes key.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every expired entry and returns how many were removed.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Stats returns hit/miss counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *Cache[K, V]) evictOldest() {
	var oldestKey K
	var oldest time.Time
	found := false
	for k, e := range c.entries {
		if !found || e.fetchedAt.Before(oldest) {
			oldestKey, oldest, found = k, e.fetchedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
