// engine.go: the construction-time Engine aggregate
//
// Engine owns the fuzzy matcher, NEAR evaluator, word-boundary
// indexer, and cache registry as one construction-time value the
// caller holds and injects dependencies into. No package-level
// singletons, no hidden initialization order.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "time"

// Engine is the query-evaluation kernel. Construct one with NewEngine
// and reuse it across every file in a walking pipeline; it is safe for
// concurrent use by many worker goroutines evaluating different files.
type Engine struct {
	cfg EngineConfig

	registry  *CacheRegistry
	fp        *fingerprinter
	wordIndex *wordBoundaryIndexer
	fuzzy     *fuzzyMatcher
	near      *nearEvaluator
	pool      *arrayPool
	breaker   *circuitBreaker
	regexes   *regexCompileCache
	phase     *PhaseMetrics

	// tuning is the single shared home for the subset of cfg a
	// TuningWatcher may change on a live Engine (MatchThreshold,
	// MaxExecutionTime, CircuitBreakerThreshold). fuzzy and near hold
	// this same pointer rather than their own copy of cfg, so a reload
	// is visible to every evaluation path at once.
	tuning *tuningState
}

// NewEngine constructs an Engine from cfg, normalizing zero-valued
// tunables to their documented defaults and wiring every cache the
// evaluation pipeline memoizes into.
func NewEngine(cfg EngineConfig) *Engine {
	_ = cfg.Validate()

	registry := NewCacheRegistry(cfg.TimeProvider, cfg.Logger, cfg.MetricsCollector)

	fingerprintCache := registry.GetOrCreate(CacheNearContentFingerprints, CacheConfig{
		Capacity: cfg.FingerprintCacheSize, TTL: cfg.FingerprintCacheTTL,
	})
	fuzzyFuseCache := registry.GetOrCreate(CacheFuzzyFuse, CacheConfig{
		Capacity: cfg.FuzzyFuseCacheSize, TTL: cfg.FuzzyFuseCacheTTL,
	})
	fuzzyResultsCache := registry.GetOrCreate(CacheFuzzyResults, CacheConfig{
		Capacity: cfg.FuzzyResultsCacheSize, TTL: cfg.FuzzyResultsCacheTTL,
	})
	termIndicesCache := registry.GetOrCreate(CacheNearTermIndices, CacheConfig{
		Capacity: cfg.TermIndicesCacheSize, TTL: cfg.TermIndicesCacheTTL,
	})
	proximityCache := registry.GetOrCreate(CacheNearProximity, CacheConfig{
		Capacity: cfg.ProximityCacheSize, TTL: cfg.ProximityCacheTTL,
	})

	tuning := newTuningState(Tuning{
		MatchThreshold:          cfg.MatchThreshold,
		MaxExecutionTime:        cfg.MaxExecutionTime,
		CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
	})

	fp := newFingerprinter(fingerprintCache)
	// Boundary span lists share the term-indices cache under a
	// "boundaries:"-prefixed key space: both are per-content offset
	// structures with the same lifetime.
	wordIndex := newWordBoundaryIndexer(fp, termIndicesCache)
	phase := newPhaseMetrics()
	fuzzy := newFuzzyMatcher(cfg, tuning, fp, fuzzyResultsCache, fuzzyFuseCache, phase)
	pool := newArrayPool(cfg.ArrayPoolSize, cfg.MaxPooledArraySize)
	breaker := newCircuitBreaker(cfg.CircuitBreakerThreshold, cfg.Logger, cfg.MetricsCollector)

	near := newNearEvaluator(cfg, tuning, fp, wordIndex, fuzzy, pool, breaker, termIndicesCache, proximityCache, phase)

	return &Engine{
		cfg:       cfg,
		registry:  registry,
		fp:        fp,
		wordIndex: wordIndex,
		fuzzy:     fuzzy,
		near:      near,
		pool:      pool,
		breaker:   breaker,
		regexes:   newRegexCompileCache(),
		phase:     phase,
		tuning:    tuning,
	}
}

// CompileTerm compiles source/flags into a Pattern-arm Term, reusing
// this engine's regex compilation cache.
func (e *Engine) CompileTerm(source, flags string) (Term, error) {
	return CompileTerm(source, flags, e.regexes)
}

// EvaluateNear reports whether term1 and term2 co-occur in content
// within distance words of each other.
func (e *Engine) EvaluateNear(content string, term1, term2 Term, distance int, opts NearOptions, path string) bool {
	return e.near.evaluateNear(content, term1, term2, distance, opts, path)
}

// Search reports whether term approximately occurs in content.
func (e *Engine) Search(content string, term Term, opts FuzzyOptions) FuzzyResult {
	return e.fuzzy.search(content, term, opts)
}

// Boundaries returns content's word spans in increasing start order.
func (e *Engine) Boundaries(content string) []Span {
	return e.wordIndex.boundaries(content)
}

// WordIndexOf resolves a character offset to the index of the word
// span that owns it, or NoWordIndex.
func (e *Engine) WordIndexOf(offset int, content string) int {
	return e.wordIndex.wordIndexOf(offset, content)
}

// Fingerprint returns content's deterministic identity key.
func (e *Engine) Fingerprint(content string) string {
	return e.fp.fingerprint(content)
}

// ShouldSkip reports whether path has been marked problematic by the
// circuit breaker.
func (e *Engine) ShouldSkip(path string) bool {
	return e.breaker.shouldSkip(path)
}

// RecordTimeout manually records a timeout against path, for hosts
// that detect pathological content outside a direct EvaluateNear call.
func (e *Engine) RecordTimeout(path string) {
	e.breaker.recordTimeout(path)
	e.phase.recordTimeout()
}

// ResetCircuit clears every tracked path's timeout count and
// problematic marking.
func (e *Engine) ResetCircuit() {
	e.breaker.reset()
}

// ClearCaches empties every registered cache without resetting their
// hit/miss/eviction counters.
func (e *Engine) ClearCaches() {
	e.registry.ClearAll()
}

// ClearForMemoryPressure atomically clears the three evaluator-owned
// caches (term indices, proximity, fingerprints) and logs the counts
// cleared. Safe to call from a host's low-memory handler at any time.
func (e *Engine) ClearForMemoryPressure() {
	cleared := 0
	for _, name := range []string{CacheNearTermIndices, CacheNearProximity, CacheNearContentFingerprints} {
		if c := e.registry.Get(name); c != nil {
			cleared += c.Size()
			c.Clear()
		}
	}
	e.cfg.Logger.Info("cleared caches under memory pressure", "entriesCleared", cleared)
}

// ClearMetrics resets every phase-metrics counter to zero.
func (e *Engine) ClearMetrics() {
	e.phase.reset()
}

// EngineStats is the snapshot returned by Stats.
type EngineStats struct {
	Caches       []CacheStats
	PhaseMetrics PhaseMetricsSnapshot
	PoolSize     int
	Circuit      CircuitStats
	CapturedAt   time.Time
}

// Stats returns a snapshot of every counter the engine exposes.
func (e *Engine) Stats() EngineStats {
	return EngineStats{
		Caches:       e.registry.Info(""),
		PhaseMetrics: e.phase.Snapshot(),
		PoolSize:     e.pool.size(),
		Circuit:      e.breaker.stats(),
		CapturedAt:   timeFromProvider(e.cfg.TimeProvider),
	}
}

// timeFromProvider renders a TimeProvider's Now() as a time.Time,
// using the richer NowTime() method when the provider implements it
// (systemTimeProvider does, to avoid a redundant conversion).
func timeFromProvider(tp TimeProvider) time.Time {
	if richer, ok := tp.(interface{ NowTime() time.Time }); ok {
		return richer.NowTime()
	}
	return time.Unix(0, tp.Now())
}
