// pool_test.go: tests for the size-bucketed array pool
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"sync"
	"testing"
)

func TestArrayPool_AcquireReturnsClearedArray(t *testing.T) {
	p := newArrayPool(10, 1000)
	arr := p.acquire(5)
	if len(arr) != 5 {
		t.Fatalf("len(arr) = %d, want 5", len(arr))
	}
	for i, v := range arr {
		if v != 0 {
			t.Errorf("arr[%d] = %d, want 0", i, v)
		}
	}
}

func TestArrayPool_ReleaseThenAcquireReuses(t *testing.T) {
	p := newArrayPool(10, 1000)
	arr := p.acquire(8)
	arr[0], arr[1] = 42, 99
	p.release(arr)

	if p.size() != 1 {
		t.Fatalf("pool size after release = %d, want 1", p.size())
	}

	reused := p.acquire(8)
	for i, v := range reused {
		if v != 0 {
			t.Errorf("reused arr[%d] = %d, want cleared 0", i, v)
		}
	}
	if p.size() != 0 {
		t.Errorf("pool size after re-acquire = %d, want 0", p.size())
	}
}

func TestArrayPool_BypassesPoolAboveMaxArrayLen(t *testing.T) {
	p := newArrayPool(10, 100)
	arr := p.acquire(5000)
	if len(arr) != 5000 {
		t.Fatalf("len(arr) = %d, want 5000", len(arr))
	}
	p.release(arr)
	if p.size() != 0 {
		t.Error("oversized array should not be retained by the pool")
	}
}

func TestArrayPool_FreeListBounded(t *testing.T) {
	p := newArrayPool(2, 1000)
	for i := 0; i < 5; i++ {
		p.release(p.acquire(10))
	}
	if p.size() > 2 {
		t.Errorf("pool size = %d, want <= 2 (maxFreeLen)", p.size())
	}
}

func TestArrayPool_SizeInvariantAcrossConcurrentUse(t *testing.T) {
	p := newArrayPool(50, 1000)
	before := p.size()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			arr := p.acquire(n%100 + 1)
			arr[0] = n
			p.release(arr)
		}(i)
	}
	wg.Wait()

	after := p.size()
	if after < before {
		t.Errorf("pool size decreased from %d to %d", before, after)
	}
}

func TestArrayPool_BucketForSelectsSmallestFit(t *testing.T) {
	p := newArrayPool(10, 1000)
	if b := p.bucketFor(3); b != 10 {
		t.Errorf("bucketFor(3) = %d, want 10", b)
	}
	if b := p.bucketFor(10); b != 10 {
		t.Errorf("bucketFor(10) = %d, want 10", b)
	}
	if b := p.bucketFor(11); b != 50 {
		t.Errorf("bucketFor(11) = %d, want 50", b)
	}
	if b := p.bucketFor(500); b != 500 {
		t.Errorf("bucketFor(500) = %d, want 500", b)
	}
	if b := p.bucketFor(501); b != 0 {
		t.Errorf("bucketFor(501) = %d, want 0 (no bucket)", b)
	}
}
