package data

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache is an in-memory map whose entries expire after a fixed TTL.
// Expired entries are invisible to Get and removed by a background sweep.
type TTLCache[V any] struct {
	mu    sync.RWMutex
	store map[string]cacheEntry[V]
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewTTLCache starts a cache that sweeps expired entries every sweep interval
// (no sweeping when sweep <= 0). Call Close to stop the sweeper.
func NewTTLCache[V any](ttl, sweep time.Duration) *TTLCache[V] {
	c := &TTLCache[V]{
		store: make(map[string]cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if sweep > 0 {
		go c.cleanup(sweep)
	}
	return c
}

// Get retrieves a value if available and not expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.store[key]
	if !ok || c.now().After(entry.expiresAt) {
		return zero, false
	}
	return entry.value, true
}

func (c *TTLCache[V]) Set(key string, value V) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Len counts entries, including expired ones not yet swept.
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry[V])
}

func (c *TTLCache[V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
		}
	}
}

func (c *TTLCache[V]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

// CacheKey hashes an arbitrary string into a fixed-size key.
func CacheKey(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
