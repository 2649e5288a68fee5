// cache.go: the bounded, TTL-aware LRU cache
//
// The recency structure is delegated to hashicorp/golang-lru, the same
// ordered-map-plus-eviction-callback primitive used elsewhere in this
// module's sibling projects for an L1 cache tier; qkernel layers
// per-entry TTL, hit/miss/eviction counters and capacity resize on top
// of it rather than hand-rolling a doubly linked list.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheEntry wraps a cached value with its absolute expiry. expiresAt
// is zero when the entry never expires.
type cacheEntry[V any] struct {
	value     V
	expiresAt int64
}

// TTLCache is a capacity-bounded, strict-LRU cache with an optional
// per-entry TTL override. Every method is safe for
// concurrent use.
type TTLCache[V any] struct {
	mu  sync.Mutex
	lru *lru.Cache[string, *cacheEntry[V]]

	name       string
	capacity   int
	defaultTTL time.Duration

	clock   TimeProvider
	logger  Logger
	metrics MetricsCollector

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewTTLCache constructs a named TTLCache. capacity must be positive;
// defaultTTL of zero means entries never expire unless Set is called
// with an explicit per-entry TTL.
func NewTTLCache[V any](name string, capacity int, defaultTTL time.Duration, clock TimeProvider, logger Logger, metrics MetricsCollector) *TTLCache[V] {
	if capacity <= 0 {
		capacity = 1
	}
	if clock == nil {
		clock = &systemTimeProvider{}
	}
	if logger == nil {
		logger = NoOpLogger{}
	}
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}

	c := &TTLCache[V]{
		name:       name,
		capacity:   capacity,
		defaultTTL: defaultTTL,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
	}

	// A plain (non-evicting-callback) cache is used deliberately:
	// golang-lru/v2's OnEvict fires on every removal from the
	// underlying structure, including explicit Remove and Purge, not
	// just capacity eviction. Counting evictions from Add's and
	// Resize's own return values instead keeps "eviction" meaning a
	// capacity- or staleness-driven removal, never a deliberate Delete
	// or Clear.
	inner, err := lru.New[string, *cacheEntry[V]](capacity)
	if err != nil {
		// capacity is always >= 1 above, so this cannot happen in
		// practice; fall back to the smallest legal cache rather than
		// propagate an error from a constructor.
		inner, _ = lru.New[string, *cacheEntry[V]](1)
	}
	c.lru = inner
	return c
}

func (c *TTLCache[V]) isExpired(e *cacheEntry[V], now int64) bool {
	return e.expiresAt != 0 && now >= e.expiresAt
}

// Get looks up key. A live hit promotes the entry to most-recently-used;
// an expired entry is evicted on read and counted as both a miss and an
// eviction.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		c.misses++
		c.metrics.RecordCacheMiss(c.name)
		var zero V
		return zero, false
	}

	if c.isExpired(entry, c.clock.Now()) {
		c.lru.Remove(key)
		c.misses++
		c.evictions++
		c.metrics.RecordCacheMiss(c.name)
		c.metrics.RecordEviction(c.name)
		var zero V
		return zero, false
	}

	c.hits++
	c.metrics.RecordCacheHit(c.name)
	return entry.value, true
}

// Has reports whether key is present and unexpired, without updating
// recency order. A pure membership check.
func (c *TTLCache[V]) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Peek(key)
	if !ok {
		return false
	}
	return !c.isExpired(entry, c.clock.Now())
}

// Set inserts or replaces key. If ttl is non-zero it overrides the
// cache's defaultTTL for this entry only; a zero ttl with a non-zero
// defaultTTL still expires on the default schedule. Set evicts an
// already-expired LRU-end entry before adding, then relies on the
// underlying LRU to evict by recency if still over capacity.
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	now := c.clock.Now()

	// Evict an expired LRU-end entry first so that stale content never
	// displaces a fresh one purely by eviction order.
	if c.lru.Len() >= c.capacity {
		if oldestKey, oldestEntry, ok := c.lru.GetOldest(); ok {
			if c.isExpired(oldestEntry, now) {
				c.lru.Remove(oldestKey)
				c.evictions++
				c.metrics.RecordEviction(c.name)
			}
		}
	}

	entry := &cacheEntry[V]{value: value}
	if ttl > 0 {
		entry.expiresAt = now + ttl.Nanoseconds()
	}
	if evicted := c.lru.Add(key, entry); evicted {
		c.evictions++
		c.metrics.RecordEviction(c.name)
	}
}

// Delete removes key unconditionally. It does not count as an eviction.
func (c *TTLCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Remove(key)
}

// Clear empties the cache without resetting hit/miss/eviction counters.
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Size returns the number of resident entries, including any
// not-yet-swept expired entries still held by the underlying LRU.
func (c *TTLCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// ResizeCapacity changes the cache's maximum entry count, truncating
// from the LRU end immediately if the new capacity is smaller.
func (c *TTLCache[V]) ResizeCapacity(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := c.lru.Resize(capacity)
	c.capacity = capacity
	if evicted > 0 {
		c.evictions += uint64(evicted)
		for i := 0; i < evicted; i++ {
			c.metrics.RecordEviction(c.name)
		}
	}
}

// SetDefaultTTL changes the TTL applied to future Set calls made
// without an explicit per-entry override. It does not retroactively
// change entries already stored.
func (c *TTLCache[V]) SetDefaultTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultTTL = ttl
}

// Stats returns a snapshot of this cache's counters.
func (c *TTLCache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Name:      c.name,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.lru.Len(),
		Capacity:  c.capacity,
		TTL:       c.defaultTTL.Nanoseconds(),
	}
}
