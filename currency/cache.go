package currency

import (
	"sync"
	"time"
)

// IsStale reports whether a value fetched at fetchedAt has outlived ttl at now.
// A zero fetchedAt is always stale.
func IsStale(fetchedAt time.Time, ttl time.Duration, now time.Time) bool {
	if fetchedAt.IsZero() {
		return true
	}
	return !now.Before(fetchedAt.Add(ttl))
}

// RateCache holds the last fetched rate table. Safe for concurrent use.
type RateCache struct {
	mu        sync.RWMutex
	value     RateTable
	fetchedAt time.Time
	ttl       time.Duration
}

func NewRateCache(ttl time.Duration) *RateCache {
	return &RateCache{ttl: ttl}
}

// Get returns the cached table and whether it is still fresh at now.
// A stale table is still returned so callers can prefer it over static rates.
func (c *RateCache) Get(now time.Time) (RateTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil {
		return nil, false
	}
	return c.value, !IsStale(c.fetchedAt, c.ttl, now)
}

func (c *RateCache) Store(table RateTable, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = table
	c.fetchedAt = now
}

func (c *RateCache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}
