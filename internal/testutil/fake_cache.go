// Package testutil provides configurable test fakes for the proxy's collaborators.
package testutil

import (
	"context"
	"sync"
	"time"
)

type fakeEntry struct {
	val       []byte
	expiresAt time.Time
}

// FakeCache is a map-backed cache.Cache with a controllable clock.
// It records every Set so tests can assert on write-backs.
type FakeCache struct {
	mu      sync.Mutex
	entries map[string]fakeEntry
	now     time.Time
	sets    []string
}

// NewFakeCache returns an empty FakeCache whose clock starts at the current time.
func NewFakeCache() *FakeCache {
	return &FakeCache{entries: make(map[string]fakeEntry), now: time.Now()}
}

// Advance moves the cache clock forward by d.
func (c *FakeCache) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Get returns the value for key if it has not expired.
func (c *FakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !c.now.Before(e.expiresAt) {
		return nil, false
	}
	return e.val, true
}

// Set stores val for ttl.
func (c *FakeCache) Set(_ context.Context, key string, val []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = fakeEntry{val: val, expiresAt: c.now.Add(ttl)}
	c.sets = append(c.sets, key)
	c.mu.Unlock()
}

// Delete removes key.
func (c *FakeCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes every entry.
func (c *FakeCache) Purge(context.Context) {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Has reports whether key holds a fresh entry.
func (c *FakeCache) Has(key string) bool {
	_, ok := c.Get(context.Background(), key)
	return ok
}

// Sets returns the keys written so far, in order.
func (c *FakeCache) Sets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sets...)
}

// TTL returns the remaining lifetime of key, or 0 when absent.
func (c *FakeCache) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return 0
	}
	return e.expiresAt.Sub(c.now)
}
