package cachemem

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-memory notary-key cache keyed by canonical notary URL.
type Cache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	pem       string
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return NewWithClock(nil)
}

func NewWithClock(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, url string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[url]
	if !ok {
		return "", false, nil
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, url)
		return "", false, nil
	}
	return entry.pem, true, nil
}

func (c *Cache) Put(ctx context.Context, url, pem string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{pem: pem}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[url] = entry
	return nil
}
