// registry_test.go: tests for the named cache registry
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"testing"
	"time"
)

func newTestRegistry() *CacheRegistry {
	return NewCacheRegistry(&fakeClock{now: 1}, NoOpLogger{}, NoOpMetricsCollector{})
}

func TestCacheRegistry_DefaultCachesRegistered(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{CacheSearchResults, CacheFileContent, CacheHighlight, CacheUIState} {
		if r.Get(name) == nil {
			t.Errorf("default cache %q not registered", name)
		}
	}
}

func TestCacheRegistry_GetOrCreateIsIdempotent(t *testing.T) {
	r := newTestRegistry()
	a := r.GetOrCreate("custom", CacheConfig{Capacity: 10, TTL: time.Minute})
	b := r.GetOrCreate("custom", CacheConfig{Capacity: 999, TTL: time.Hour})
	if a != b {
		t.Fatal("GetOrCreate returned a different cache on the second call")
	}
	if a.Stats().Capacity != 10 {
		t.Errorf("capacity = %d, want the first-registration value of 10", a.Stats().Capacity)
	}
}

func TestCacheRegistry_Remove(t *testing.T) {
	r := newTestRegistry()
	r.GetOrCreate("temp", CacheConfig{Capacity: 5})
	if !r.Remove("temp") {
		t.Fatal("Remove(temp) = false, want true")
	}
	if r.Get("temp") != nil {
		t.Error("removed cache should no longer be retrievable")
	}
	if r.Remove("temp") {
		t.Error("Remove should be false the second time")
	}
}

func TestCacheRegistry_ClearAll(t *testing.T) {
	r := newTestRegistry()
	c := r.GetOrCreate("custom", CacheConfig{Capacity: 5})
	c.Set("a", 1, 0)
	r.ClearAll()
	if c.Size() != 0 {
		t.Errorf("Size() after ClearAll = %d, want 0", c.Size())
	}
}

func TestCacheRegistry_InfoSingleAndAll(t *testing.T) {
	r := newTestRegistry()
	r.GetOrCreate("custom", CacheConfig{Capacity: 5})

	single := r.Info("custom")
	if len(single) != 1 || single[0].Name != "custom" {
		t.Fatalf("Info(custom) = %+v", single)
	}

	all := r.Info("")
	if len(all) != len(r.Names()) {
		t.Fatalf("Info(\"\") returned %d entries, want %d", len(all), len(r.Names()))
	}

	if r.Info("missing") != nil {
		t.Error("Info(missing) should be nil")
	}
}
