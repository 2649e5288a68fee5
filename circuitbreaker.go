// circuitbreaker.go: the per-engine circuit breaker for pathological paths
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "sync"

// circuitBreaker tracks per-path timeout counts and the set of paths
// deemed problematic once the threshold is reached. Safe for
// concurrent use.
type circuitBreaker struct {
	mu           sync.Mutex
	timeoutCount map[string]int
	problematic  map[string]struct{}
	threshold    int
	logger       Logger
	metrics      MetricsCollector
}

func newCircuitBreaker(threshold int, logger Logger, metrics MetricsCollector) *circuitBreaker {
	if threshold <= 0 {
		threshold = DefaultCircuitBreakerThreshold
	}
	if logger == nil {
		logger = NoOpLogger{}
	}
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}
	return &circuitBreaker{
		timeoutCount: make(map[string]int),
		problematic:  make(map[string]struct{}),
		threshold:    threshold,
		logger:       logger,
		metrics:      metrics,
	}
}

// recordTimeout increments path's timeout count and, on reaching the
// threshold, marks it problematic. A blank path is a no-op: the
// circuit breaker only tracks paths the caller identifies.
func (cb *circuitBreaker) recordTimeout(path string) {
	if path == "" {
		return
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.timeoutCount[path]++
	cb.metrics.RecordTimeout(path)
	if cb.timeoutCount[path] >= cb.threshold {
		if _, already := cb.problematic[path]; !already {
			cb.problematic[path] = struct{}{}
			cb.logger.Warn("path marked problematic by circuit breaker", "path", path, "timeouts", cb.timeoutCount[path])
		}
	}
}

// setThreshold changes the timeout count at which a path is marked
// problematic. Safe for concurrent use with recordTimeout/shouldSkip.
func (cb *circuitBreaker) setThreshold(threshold int) {
	if threshold <= 0 {
		threshold = DefaultCircuitBreakerThreshold
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.threshold = threshold
}

// shouldSkip reports whether path has been marked problematic.
func (cb *circuitBreaker) shouldSkip(path string) bool {
	if path == "" {
		return false
	}
	cb.mu.Lock()
	defer cb.mu.Unlock()
	_, ok := cb.problematic[path]
	return ok
}

// CircuitStats is a point-in-time view of the circuit breaker.
type CircuitStats struct {
	// TrackedPaths is the number of paths with at least one recorded
	// timeout.
	TrackedPaths int

	// ProblematicPaths is the number of paths at or past the threshold.
	ProblematicPaths int

	// Threshold is the timeout count at which a path is marked
	// problematic.
	Threshold int
}

// stats returns a snapshot of the breaker's counters.
func (cb *circuitBreaker) stats() CircuitStats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return CircuitStats{
		TrackedPaths:     len(cb.timeoutCount),
		ProblematicPaths: len(cb.problematic),
		Threshold:        cb.threshold,
	}
}

// reset clears every tracked path's timeout count and problematic
// marking. This is the only way timeoutCount/problematic ever shrink.
func (cb *circuitBreaker) reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.timeoutCount = make(map[string]int)
	cb.problematic = make(map[string]struct{})
}
