// metrics.go: the typed phase-metrics record
//
// A fixed struct of atomic counters rather than a mutable nested map:
// updates are lock-free and a Snapshot method serves observers.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "sync/atomic"

// PhaseMetrics holds atomic counters for the query evaluator facade's
// lifetime, one per observable evaluation phase.
type PhaseMetrics struct {
	totalEvaluations    atomic.Uint64
	cacheHits           atomic.Uint64
	cacheMisses         atomic.Uint64
	earlyTerminations   atomic.Uint64
	timeouts            atomic.Uint64
	fuzzySearches       atomic.Uint64
	fuzzySearchHits     atomic.Uint64
	nearEvaluations     atomic.Uint64
	nearEvaluationsTrue atomic.Uint64
}

// PhaseMetricsSnapshot is a point-in-time copy of PhaseMetrics,
// suitable for inclusion in the diagnostics artifact or for direct
// inspection by a caller.
type PhaseMetricsSnapshot struct {
	TotalEvaluations    uint64
	CacheHits           uint64
	CacheMisses         uint64
	EarlyTerminations   uint64
	Timeouts            uint64
	FuzzySearches       uint64
	FuzzySearchHits     uint64
	NearEvaluations     uint64
	NearEvaluationsTrue uint64
}

func newPhaseMetrics() *PhaseMetrics {
	return &PhaseMetrics{}
}

func (m *PhaseMetrics) recordEvaluation(hit bool, result bool) {
	m.totalEvaluations.Add(1)
	if hit {
		m.cacheHits.Add(1)
	} else {
		m.cacheMisses.Add(1)
	}
	m.nearEvaluations.Add(1)
	if result {
		m.nearEvaluationsTrue.Add(1)
	}
}

func (m *PhaseMetrics) recordEarlyTermination() {
	m.earlyTerminations.Add(1)
}

func (m *PhaseMetrics) recordTimeout() {
	m.timeouts.Add(1)
}

func (m *PhaseMetrics) recordFuzzySearch(hit bool) {
	m.fuzzySearches.Add(1)
	if hit {
		m.fuzzySearchHits.Add(1)
	}
}

// Snapshot returns a consistent-enough point-in-time copy; individual
// fields are each read atomically but not as a single transaction,
// matching the "typed record ... update atomically" guidance rather
// than promising cross-field consistency.
func (m *PhaseMetrics) Snapshot() PhaseMetricsSnapshot {
	return PhaseMetricsSnapshot{
		TotalEvaluations:    m.totalEvaluations.Load(),
		CacheHits:           m.cacheHits.Load(),
		CacheMisses:         m.cacheMisses.Load(),
		EarlyTerminations:   m.earlyTerminations.Load(),
		Timeouts:            m.timeouts.Load(),
		FuzzySearches:       m.fuzzySearches.Load(),
		FuzzySearchHits:     m.fuzzySearchHits.Load(),
		NearEvaluations:     m.nearEvaluations.Load(),
		NearEvaluationsTrue: m.nearEvaluationsTrue.Load(),
	}
}

// reset zeroes every counter. Used by Engine.ClearMetrics.
func (m *PhaseMetrics) reset() {
	m.totalEvaluations.Store(0)
	m.cacheHits.Store(0)
	m.cacheMisses.Store(0)
	m.earlyTerminations.Store(0)
	m.timeouts.Store(0)
	m.fuzzySearches.Store(0)
	m.fuzzySearchHits.Store(0)
	m.nearEvaluations.Store(0)
	m.nearEvaluationsTrue.Store(0)
}
