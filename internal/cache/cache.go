// Package cache implements the in-memory response cache backing the HTTP
// client's GET path. Entries are raw response bodies stamped with their
// storage time; freshness is deliberately a caller concern, so Retrieve
// returns stale entries and the client decides what "too old" means.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultCapacity is the default maximum number of cached responses.
const DefaultCapacity = 100

// Entry is a cached response body with its storage timestamp. Entries are
// replaced, never mutated.
type Entry struct {
	Body     []byte
	StoredAt time.Time
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// ResponseCache is a bounded, mutex-guarded map from request fingerprints
// to cached response bodies. When an insert pushes the entry count past
// capacity, the least-recently-inserted entries are evicted.
type ResponseCache struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	order    []string // fingerprints in insertion order, oldest first
	capacity int
	logger   *logrus.Logger
}

// New creates a ResponseCache holding at most capacity entries. A
// non-positive capacity selects DefaultCapacity.
func New(capacity int, logger *logrus.Logger) *ResponseCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ResponseCache{
		entries:  make(map[string]*Entry),
		capacity: capacity,
		logger:   logger,
	}
}

// Contains reports whether an entry exists for the key, regardless of age.
func (c *ResponseCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Store inserts or replaces the entry for key, stamped with the current
// time. Inserting beyond capacity evicts the oldest-inserted entries.
func (c *ResponseCache) Store(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.dropFromOrder(key)
	}

	c.entries[key] = &Entry{Body: body, StoredAt: time.Now()}
	c.order = append(c.order, key)

	for len(c.entries) > c.capacity {
		victim := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, victim)
		c.logger.WithField("key", victim).Debug("Evicted cache entry over capacity")
	}

	c.logger.WithField("key", key).Debug("Stored response in cache")
}

// Retrieve returns the entry for key regardless of freshness. Callers are
// responsible for TTL checks.
func (c *ResponseCache) Retrieve(key string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Remove deletes the entry for key, if present.
func (c *ResponseCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return
	}
	delete(c.entries, key)
	c.dropFromOrder(key)
	c.logger.WithField("key", key).Debug("Removed cache entry")
}

// RemovePrefix deletes all entries whose key starts with prefix and
// returns how many were removed. Fingerprints start with the endpoint URL,
// so this clears every cached variant of one endpoint.
func (c *ResponseCache) RemovePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept

	if removed > 0 {
		c.logger.WithFields(logrus.Fields{
			"prefix":  prefix,
			"removed": removed,
		}).Debug("Removed cache entries by prefix")
	}
	return removed
}

// RemoveAll clears the cache.
func (c *ResponseCache) RemoveAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.order = nil
	c.logger.Debug("Cleared response cache")
}

// RemoveExpired deletes all entries older than maxAge and returns how many
// were removed.
func (c *ResponseCache) RemoveExpired(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	kept := c.order[:0]
	for _, key := range c.order {
		entry, ok := c.entries[key]
		if ok && entry.Age(now) > maxAge {
			delete(c.entries, key)
			removed++
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept

	if removed > 0 {
		c.logger.WithField("removed", removed).Debug("Removed expired cache entries")
	}
	return removed
}

// Len returns the current number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// dropFromOrder removes key from the insertion-order slice. Caller holds
// the lock.
func (c *ResponseCache) dropFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
