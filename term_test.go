// term_test.go: tests for the Term tagged variant
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "testing"

func TestCompileLiteral(t *testing.T) {
	term, err := CompileLiteral("quick", TermOptions{CaseSensitive: true})
	if err != nil {
		t.Fatalf("CompileLiteral returned error: %v", err)
	}
	if term.IsRegex() {
		t.Error("literal term reports IsRegex() = true")
	}
	if term.Text() != "quick" {
		t.Errorf("Text() = %q, want quick", term.Text())
	}
	if term.Len() != 5 {
		t.Errorf("Len() = %d, want 5", term.Len())
	}
}

func TestCompileTerm_Valid(t *testing.T) {
	cache := newRegexCompileCache()
	term, err := CompileTerm(`\bfoo\w*`, "", cache)
	if err != nil {
		t.Fatalf("CompileTerm returned error: %v", err)
	}
	if !term.IsRegex() {
		t.Error("pattern term reports IsRegex() = false")
	}
	if term.Text() != `\bfoo\w*` {
		t.Errorf("Text() = %q", term.Text())
	}
}

func TestCompileTerm_InvalidRegexReturnsTypedError(t *testing.T) {
	_, err := CompileTerm("a(b", "", nil)
	if err == nil {
		t.Fatal("expected an error for an invalid regex")
	}
	if !IsInvalidRegex(err) {
		t.Errorf("error kind = %v, want InvalidRegex", GetErrorCode(err))
	}
}

func TestCompileTerm_CachesBySourceAndFlags(t *testing.T) {
	cache := newRegexCompileCache()
	a, err := CompileTerm("foo", "i", cache)
	if err != nil {
		t.Fatalf("first compile failed: %v", err)
	}
	b, err := CompileTerm("foo", "i", cache)
	if err != nil {
		t.Fatalf("second compile failed: %v", err)
	}
	if a.regex != b.regex {
		t.Error("identical (source, flags) should share the same compiled *regexp.Regexp")
	}

	c, err := CompileTerm("foo", "", cache)
	if err != nil {
		t.Fatalf("third compile failed: %v", err)
	}
	if c.regex == a.regex {
		t.Error("different flags should not share the cached regexp")
	}
}
