// Package memory provides process-local response caches for development
// and tests.
package memory

import (
	"context"
	"sync"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
)

// Cache is an in-memory ResponseCache. Like the other backends it never
// expires entries on its own: a stale entry stays until the next Put for the
// same identity replaces it, and freshness is judged by the caller.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]calendar.CacheEntry
}

// New creates an empty in-memory cache.
func New() *Cache {
	return &Cache{entries: make(map[string]calendar.CacheEntry)}
}

// Get retrieves the entry for identity
func (c *Cache) Get(_ context.Context, identity string) (calendar.CacheEntry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[calendar.CacheKey(identity)]
	return entry, exists, nil
}

// Put stores entry for identity
func (c *Cache) Put(_ context.Context, identity string, entry calendar.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[calendar.CacheKey(identity)] = entry
	return nil
}

// Len returns the number of stored entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Disabled is a ResponseCache that stores nothing.
type Disabled struct{}

// Get always misses.
func (Disabled) Get(context.Context, string) (calendar.CacheEntry, bool, error) {
	return calendar.CacheEntry{}, false, nil
}

// Put drops the entry.
func (Disabled) Put(context.Context, string, calendar.CacheEntry) error {
	return nil
}
