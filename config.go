// config.go: configuration for the qkernel query-evaluation engine
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Default tuning constants, applied by EngineConfig.Validate when the
// corresponding field is left at its zero value.
const (
	// DefaultMinTermLength is the shortest term fuzzy matching will
	// attempt before degrading to an exact substring search.
	DefaultMinTermLength = 3

	// DefaultMatchThreshold is the fuzzy acceptance score cap.
	DefaultMatchThreshold = 0.4

	// DefaultMaxFullLength bounds content length for the single-pass
	// envelope fuzzy matcher; beyond it the chunked word-based fallback
	// is used instead.
	DefaultMaxFullLength = 10_000

	// DefaultMaxFullContentSize is the NEAR evaluator's full-scan cutover
	// to chunked evaluation, approximately 2 MiB.
	DefaultMaxFullContentSize = 2 * 1024 * 1024

	// DefaultChunkSize and DefaultChunkOverlap govern both the fuzzy
	// matcher's chunked fallback and the NEAR evaluator's sliding window.
	DefaultChunkSize    = 64 * 1024
	DefaultChunkOverlap = 1024

	// DefaultMaxExecutionTime bounds a single evaluateNear call.
	DefaultMaxExecutionTime = 8 * time.Second

	// DefaultArrayPoolSize is the free-list length per size bucket.
	DefaultArrayPoolSize = 50

	// DefaultMaxPooledArraySize is the largest array the pool will hold;
	// bigger requests bypass pooling entirely.
	DefaultMaxPooledArraySize = 1000

	// DefaultCircuitBreakerThreshold is the number of timeouts on a path
	// before it is marked problematic.
	DefaultCircuitBreakerThreshold = 3

	// Default cache sizes and TTLs, one pair per engine-owned cache.
	DefaultTermIndicesCacheSize  = 1000
	DefaultTermIndicesCacheTTL   = 15 * time.Minute
	DefaultProximityCacheSize    = 2000
	DefaultProximityCacheTTL     = 20 * time.Minute
	DefaultFingerprintCacheSize  = 500
	DefaultFingerprintCacheTTL   = 30 * time.Minute
	DefaultFuzzyFuseCacheSize    = 100
	DefaultFuzzyFuseCacheTTL     = 10 * time.Minute
	DefaultFuzzyResultsCacheSize = 500
	DefaultFuzzyResultsCacheTTL  = 15 * time.Minute
)

// fuzzyAcceptanceScore is the similarity threshold a fuzzy candidate
// must beat (strictly below) in the bounded-content pass to be accepted
// as a match. Deliberately not a tunable: it gates candidate admission
// inside the matcher, independent of the caller-facing MatchThreshold.
const fuzzyAcceptanceScore = 0.6

// EngineConfig holds every engine tunable. Zero-valued
// fields are normalized to the Default* constants by Validate, which
// NewEngine calls automatically.
type EngineConfig struct {
	// MinTermLength is the shortest term fuzzy search attempts before
	// degrading to exact substring matching.
	MinTermLength int

	// MatchThreshold is the caller-facing fuzzy acceptance score cap
	// (FuzzyOptions.Threshold defaults to this when unset).
	MatchThreshold float64

	// MaxFullLength bounds content length for the bounded-content fuzzy
	// pass; longer content uses the chunked word-based fallback.
	MaxFullLength int

	// MaxFullContentSize is the NEAR evaluator's cutover to chunked
	// sliding-window evaluation.
	MaxFullContentSize int

	// ChunkSize and ChunkOverlap size the sliding windows used by both
	// the fuzzy matcher's fallback and the NEAR evaluator.
	ChunkSize    int
	ChunkOverlap int

	// MaxExecutionTime bounds a single evaluateNear call; on overrun the
	// call returns false and records a timeout.
	MaxExecutionTime time.Duration

	// ArrayPoolSize is the per-bucket free-list length for the memory
	// pool.
	ArrayPoolSize int

	// MaxPooledArraySize is the largest array the pool manages; larger
	// requests allocate directly.
	MaxPooledArraySize int

	// CircuitBreakerThreshold is the timeout count at which a path is
	// marked problematic.
	CircuitBreakerThreshold int

	// Per-cache sizes and TTLs, one pair per engine-owned cache.
	TermIndicesCacheSize  int
	TermIndicesCacheTTL   time.Duration
	ProximityCacheSize    int
	ProximityCacheTTL     time.Duration
	FingerprintCacheSize  int
	FingerprintCacheTTL   time.Duration
	FuzzyFuseCacheSize    int
	FuzzyFuseCacheTTL     time.Duration
	FuzzyResultsCacheSize int
	FuzzyResultsCacheTTL  time.Duration

	// Logger receives diagnostic and internal-failure messages. If nil,
	// NoOpLogger is used.
	Logger Logger

	// TimeProvider supplies wall-clock time for TTL and deadline checks.
	// If nil, a go-timecache-backed provider is used.
	TimeProvider TimeProvider

	// MetricsCollector receives phase latency and counter events. If
	// nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector
}

// Validate normalizes zero-valued fields to their documented defaults.
// It never returns a non-nil error today — validation failures in this
// engine are always normalized rather than rejected — but returns error
// to leave room for future stricter checks without an API break.
func (c *EngineConfig) Validate() error {
	if c.MinTermLength <= 0 {
		c.MinTermLength = DefaultMinTermLength
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		c.MatchThreshold = DefaultMatchThreshold
	}
	if c.MaxFullLength <= 0 {
		c.MaxFullLength = DefaultMaxFullLength
	}
	if c.MaxFullContentSize <= 0 {
		c.MaxFullContentSize = DefaultMaxFullContentSize
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if c.ArrayPoolSize <= 0 {
		c.ArrayPoolSize = DefaultArrayPoolSize
	}
	if c.MaxPooledArraySize <= 0 {
		c.MaxPooledArraySize = DefaultMaxPooledArraySize
	}
	if c.CircuitBreakerThreshold <= 0 {
		c.CircuitBreakerThreshold = DefaultCircuitBreakerThreshold
	}

	if c.TermIndicesCacheSize <= 0 {
		c.TermIndicesCacheSize = DefaultTermIndicesCacheSize
	}
	if c.TermIndicesCacheTTL <= 0 {
		c.TermIndicesCacheTTL = DefaultTermIndicesCacheTTL
	}
	if c.ProximityCacheSize <= 0 {
		c.ProximityCacheSize = DefaultProximityCacheSize
	}
	if c.ProximityCacheTTL <= 0 {
		c.ProximityCacheTTL = DefaultProximityCacheTTL
	}
	if c.FingerprintCacheSize <= 0 {
		c.FingerprintCacheSize = DefaultFingerprintCacheSize
	}
	if c.FingerprintCacheTTL <= 0 {
		c.FingerprintCacheTTL = DefaultFingerprintCacheTTL
	}
	if c.FuzzyFuseCacheSize <= 0 {
		c.FuzzyFuseCacheSize = DefaultFuzzyFuseCacheSize
	}
	if c.FuzzyFuseCacheTTL <= 0 {
		c.FuzzyFuseCacheTTL = DefaultFuzzyFuseCacheTTL
	}
	if c.FuzzyResultsCacheSize <= 0 {
		c.FuzzyResultsCacheSize = DefaultFuzzyResultsCacheSize
	}
	if c.FuzzyResultsCacheTTL <= 0 {
		c.FuzzyResultsCacheTTL = DefaultFuzzyResultsCacheTTL
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultEngineConfig returns a configuration with every tunable set to
// its documented default.
func DefaultEngineConfig() EngineConfig {
	cfg := EngineConfig{}
	_ = cfg.Validate()
	return cfg
}

// systemTimeProvider is the default time provider, backed by
// go-timecache's periodically-refreshed clock so the hot path (TTL and
// deadline checks inside the two-pointer scan) avoids a syscall.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}

func (t *systemTimeProvider) NowTime() time.Time {
	return time.Unix(0, timecache.CachedTimeNano())
}
