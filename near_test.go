// near_test.go: tests for the NEAR proximity evaluator
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"strings"
	"testing"
)

func newTestNearEvaluator() (*nearEvaluator, *fakeClock) {
	cfg := DefaultEngineConfig()
	clock := &fakeClock{now: 1}
	cfg.TimeProvider = clock

	fp := newFingerprinter(nil)
	wordIndex := newWordBoundaryIndexer(fp, nil)
	fuzzy := newFuzzyMatcher(cfg, nil, fp, nil, nil, nil)
	pool := newArrayPool(cfg.ArrayPoolSize, cfg.MaxPooledArraySize)
	breaker := newCircuitBreaker(cfg.CircuitBreakerThreshold, NoOpLogger{}, NoOpMetricsCollector{})

	termCache := NewTTLCache[any]("termIndices", cfg.TermIndicesCacheSize, cfg.TermIndicesCacheTTL, clock, NoOpLogger{}, NoOpMetricsCollector{})
	proxCache := NewTTLCache[any]("proximity", cfg.ProximityCacheSize, cfg.ProximityCacheTTL, clock, NoOpLogger{}, NoOpMetricsCollector{})

	e := newNearEvaluator(cfg, nil, fp, wordIndex, fuzzy, pool, breaker, termCache, proxCache, newPhaseMetrics())
	return e, clock
}

func TestEvaluateNear_Scenario1(t *testing.T) {
	e, _ := newTestNearEvaluator()
	content := "the quick brown fox jumps over the lazy dog"
	quick, _ := CompileLiteral("quick", TermOptions{})
	fox, _ := CompileLiteral("fox", TermOptions{})

	if !e.evaluateNear(content, quick, fox, 3, NearOptions{}, "") {
		t.Error("distance 3 should find quick near fox")
	}
	if e.evaluateNear(content, quick, fox, 1, NearOptions{}, "") {
		t.Error("distance 1 should not find quick near fox")
	}
}

func TestEvaluateNear_Scenario2_FuzzyGatesTheMatch(t *testing.T) {
	e, _ := newTestNearEvaluator()
	content := "alpha beta gamma delta epsilon"
	alph, _ := CompileLiteral("alph", TermOptions{})
	gamma, _ := CompileLiteral("gamma", TermOptions{})

	if e.evaluateNear(content, alph, gamma, 10, NearOptions{}, "") {
		t.Error("fuzzy disabled: 'alph' should not resolve to any offset")
	}
	if !e.evaluateNear(content, alph, gamma, 10, NearOptions{FuzzyEnabled: true}, "") {
		t.Error("fuzzy enabled: 'alph' should fuzzy-match 'alpha'")
	}
}

func TestEvaluateNear_TermMustEndAtWordEdge(t *testing.T) {
	e, _ := newTestNearEvaluator()

	// A mid-word prefix does not claim the word's index, but a term
	// reaching the tail of a longer run does.
	content := strings.Repeat("a", 50) + " needle " + strings.Repeat("b", 50)
	needle, _ := CompileLiteral("needle", TermOptions{})
	a, _ := CompileLiteral("a", TermOptions{})

	if !e.evaluateNear(content, needle, a, 1, NearOptions{}, "") {
		t.Error("'a' should match the tail of the a-run one word away from needle")
	}
}

func TestEvaluateNear_SelfDistanceZero(t *testing.T) {
	e, _ := newTestNearEvaluator()
	content := "the quick brown fox"
	quick, _ := CompileLiteral("quick", TermOptions{})

	if !e.evaluateNear(content, quick, quick, 0, NearOptions{}, "") {
		t.Error("a term should be at distance 0 from itself when present")
	}

	absent, _ := CompileLiteral("absent", TermOptions{})
	if e.evaluateNear(content, absent, absent, 0, NearOptions{}, "") {
		t.Error("a term absent from content should not match itself")
	}
}

func TestEvaluateNear_RejectsInvalidInputs(t *testing.T) {
	e, _ := newTestNearEvaluator()
	a, _ := CompileLiteral("a", TermOptions{})
	b, _ := CompileLiteral("b", TermOptions{})

	if e.evaluateNear("", a, b, 1, NearOptions{}, "") {
		t.Error("empty content should return false")
	}
	if e.evaluateNear("some valid content here", a, b, -1, NearOptions{}, "") {
		t.Error("negative distance should return false")
	}
	if e.evaluateNear("short", a, b, 1, NearOptions{}, "") {
		t.Error("content shorter than the proximity floor should return false")
	}
}

func TestEvaluateNear_Idempotent(t *testing.T) {
	e, _ := newTestNearEvaluator()
	content := "the quick brown fox jumps over the lazy dog"
	quick, _ := CompileLiteral("quick", TermOptions{})
	fox, _ := CompileLiteral("fox", TermOptions{})

	first := e.evaluateNear(content, quick, fox, 3, NearOptions{}, "")
	before := e.phaseMetrics.Snapshot()
	second := e.evaluateNear(content, quick, fox, 3, NearOptions{}, "")
	after := e.phaseMetrics.Snapshot()

	if first != second {
		t.Fatalf("idempotence violated: %v != %v", first, second)
	}
	if after.CacheHits != before.CacheHits+1 {
		t.Errorf("CacheHits = %d, want %d", after.CacheHits, before.CacheHits+1)
	}
	if after.CacheMisses != before.CacheMisses {
		t.Errorf("CacheMisses changed: %d -> %d", before.CacheMisses, after.CacheMisses)
	}
}

func TestEvaluateNear_ChunkedPathOnLargeContent(t *testing.T) {
	e, _ := newTestNearEvaluator()
	e.cfg.MaxFullContentSize = 1000 // force the chunked path on modest content
	e.cfg.ChunkSize = 500
	e.cfg.ChunkOverlap = 50

	content := strings.Repeat("a", 2000) + " needle nearby word " + strings.Repeat("b", 2000)
	needle, _ := CompileLiteral("needle", TermOptions{})
	nearby, _ := CompileLiteral("nearby", TermOptions{})

	if !e.evaluateNear(content, needle, nearby, 2, NearOptions{}, "") {
		t.Error("expected chunked evaluation to find adjacent terms")
	}
}

func TestEvaluateNear_WordBoundaryOption(t *testing.T) {
	e, _ := newTestNearEvaluator()
	content := "foobar foo bar"
	foo, _ := CompileLiteral("foo", TermOptions{})
	bar, _ := CompileLiteral("bar", TermOptions{})

	if !e.evaluateNear(content, foo, bar, 1, NearOptions{WholeWord: true}, "") {
		t.Error("whole-word foo and bar should be adjacent")
	}
}

func TestEvaluateNear_CircuitBreakerTripsAfterThreeTimeouts(t *testing.T) {
	e, clock := newTestNearEvaluator()
	tuning := e.tuning.load()
	tuning.MaxExecutionTime = 0 // every call immediately exceeds the budget
	e.tuning.store(tuning)
	clock.now = 1

	a, _ := CompileLiteral("a", TermOptions{})
	b, _ := CompileLiteral("b", TermOptions{})
	content := "this content is long enough to pass validation"
	path := "/tmp/pathological.txt"

	for i := 0; i < 3; i++ {
		e.evaluateNear(content, a, b, 1, NearOptions{}, path)
	}
	if !e.breaker.shouldSkip(path) {
		t.Error("shouldSkip should be true after three timeouts on the same path")
	}
}

func TestTwoPointerWithinDistance(t *testing.T) {
	if !twoPointerWithinDistance([]int{1, 10, 20}, []int{12}, 3) {
		t.Error("expected a pair within distance 3")
	}
	if twoPointerWithinDistance([]int{1, 10, 20}, []int{100}, 3) {
		t.Error("expected no pair within distance 3")
	}
}
