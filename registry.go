// registry.go: the named cache registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"sync"
	"time"
)

// Names of the default caches a CacheRegistry registers on
// construction, plus the caches NewEngine creates.
const (
	CacheSearchResults = "searchResults"
	CacheFileContent   = "fileContent"
	CacheHighlight     = "highlight"
	CacheUIState       = "uiState"

	CacheFuzzyFuse               = "fuzzySearchFuse"
	CacheFuzzyResults            = "fuzzySearchResults"
	CacheNearTermIndices         = "nearOperatorTermIndices"
	CacheNearProximity           = "nearOperatorProximity"
	CacheNearContentFingerprints = "nearOperatorContentFingerprints"
)

// CacheConfig describes the size and TTL of one registry-managed cache.
type CacheConfig struct {
	Capacity int
	TTL      time.Duration
}

// registeredCache is the registry's type-erased handle to one
// TTLCache[any]; info() and clearAll() operate through this handle
// without knowing the concrete value type of the cache it wraps.
type registeredCache struct {
	cache *TTLCache[any]
}

// CacheRegistry owns every named cache used by an Engine. It is the
// sole place capacity, TTL, and aggregate stats are computed.
type CacheRegistry struct {
	mu     sync.Mutex
	caches map[string]*registeredCache

	clock   TimeProvider
	logger  Logger
	metrics MetricsCollector
}

// NewCacheRegistry constructs a registry with the four documented
// default caches already registered.
func NewCacheRegistry(clock TimeProvider, logger Logger, metrics MetricsCollector) *CacheRegistry {
	if clock == nil {
		clock = &systemTimeProvider{}
	}
	if logger == nil {
		logger = NoOpLogger{}
	}
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}

	r := &CacheRegistry{
		caches:  make(map[string]*registeredCache),
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}

	// Documented default caches. Sizes/TTLs here are implementation
	// defaults for host-facing caches outside the NEAR/fuzzy pipeline;
	// the engine's own five caches are created by NewEngine via
	// GetOrCreate with the EngineConfig-derived sizes in engine.go.
	r.GetOrCreate(CacheSearchResults, CacheConfig{Capacity: 500, TTL: 15 * time.Minute})
	r.GetOrCreate(CacheFileContent, CacheConfig{Capacity: 200, TTL: 30 * time.Minute})
	r.GetOrCreate(CacheHighlight, CacheConfig{Capacity: 300, TTL: 10 * time.Minute})
	r.GetOrCreate(CacheUIState, CacheConfig{Capacity: 50, TTL: 0})

	return r
}

// GetOrCreate returns the named cache, creating it with cfg if absent.
// If the cache already exists, cfg is ignored.
func (r *CacheRegistry) GetOrCreate(id string, cfg CacheConfig) *TTLCache[any] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.caches[id]; ok {
		return existing.cache
	}

	cap := cfg.Capacity
	if cap <= 0 {
		cap = 1
	}
	c := NewTTLCache[any](id, cap, cfg.TTL, r.clock, r.logger, r.metrics)
	r.caches[id] = &registeredCache{cache: c}
	return c
}

// Get returns the named cache, or nil if it has not been created.
func (r *CacheRegistry) Get(id string) *TTLCache[any] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.caches[id]; ok {
		return existing.cache
	}
	return nil
}

// Remove deletes the named cache entirely, discarding its contents and
// statistics. Reports whether a cache was present to remove.
func (r *CacheRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.caches[id]; !ok {
		return false
	}
	delete(r.caches, id)
	return true
}

// ClearAll empties every registered cache without removing them from
// the registry or resetting their statistics.
func (r *CacheRegistry) ClearAll() {
	r.mu.Lock()
	names := make([]string, 0, len(r.caches))
	for name, c := range r.caches {
		c.cache.Clear()
		names = append(names, name)
	}
	r.mu.Unlock()
	r.logger.Info("cache registry cleared", "caches", names)
}

// Info returns a stats snapshot for the named cache, or for every
// registered cache when id is empty.
func (r *CacheRegistry) Info(id string) []CacheStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		existing, ok := r.caches[id]
		if !ok {
			return nil
		}
		return []CacheStats{existing.cache.Stats()}
	}

	out := make([]CacheStats, 0, len(r.caches))
	for _, c := range r.caches {
		out = append(out, c.cache.Stats())
	}
	return out
}

// Names returns the identifiers of every registered cache.
func (r *CacheRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.caches))
	for name := range r.caches {
		out = append(out, name)
	}
	return out
}
