// circuitbreaker_test.go: tests for the circuit breaker
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"sync"
	"testing"
)

func TestCircuitBreaker_TripsAtThreshold(t *testing.T) {
	cb := newCircuitBreaker(3, NoOpLogger{}, NoOpMetricsCollector{})
	path := "/tmp/big.txt"

	if cb.shouldSkip(path) {
		t.Fatal("shouldSkip should be false before any timeouts")
	}
	cb.recordTimeout(path)
	cb.recordTimeout(path)
	if cb.shouldSkip(path) {
		t.Fatal("shouldSkip should be false before the threshold is reached")
	}
	cb.recordTimeout(path)
	if !cb.shouldSkip(path) {
		t.Fatal("shouldSkip should be true once the threshold is reached")
	}
}

func TestCircuitBreaker_PathsAreIndependent(t *testing.T) {
	cb := newCircuitBreaker(3, NoOpLogger{}, NoOpMetricsCollector{})
	cb.recordTimeout("/a")
	cb.recordTimeout("/a")
	cb.recordTimeout("/a")
	if cb.shouldSkip("/b") {
		t.Error("unrelated path should not be affected")
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := newCircuitBreaker(3, NoOpLogger{}, NoOpMetricsCollector{})
	path := "/tmp/x"
	cb.recordTimeout(path)
	cb.recordTimeout(path)
	cb.recordTimeout(path)
	if !cb.shouldSkip(path) {
		t.Fatal("precondition: path should be problematic before reset")
	}
	cb.reset()
	if cb.shouldSkip(path) {
		t.Error("shouldSkip should be false after reset")
	}
}

func TestCircuitBreaker_BlankPathIsNoop(t *testing.T) {
	cb := newCircuitBreaker(1, NoOpLogger{}, NoOpMetricsCollector{})
	cb.recordTimeout("")
	if cb.shouldSkip("") {
		t.Error("blank path should never be marked problematic")
	}
}

func TestCircuitBreaker_ConcurrentRecordTimeout(t *testing.T) {
	cb := newCircuitBreaker(50, NoOpLogger{}, NoOpMetricsCollector{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb.recordTimeout("/shared")
		}()
	}
	wg.Wait()
	if !cb.shouldSkip("/shared") {
		t.Error("50 concurrent timeouts should reach a threshold of 50")
	}
	if got := cb.timeoutCount["/shared"]; got != 50 {
		t.Errorf("timeoutCount = %d, want 50 (no lost increments under concurrency)", got)
	}
}
