// fuzz_test.go: native Go fuzz targets for qkernel's core algorithms
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "testing"

func FuzzEvaluateNear(f *testing.F) {
	f.Add("the quick brown fox jumps over the lazy dog", "quick", "fox", 3)
	f.Add("alpha beta gamma delta epsilon", "alph", "gamma", 10)
	f.Add("", "a", "b", 0)
	f.Add("short", "x", "y", -1)

	e := NewEngine(DefaultEngineConfig())

	f.Fuzz(func(t *testing.T, content, text1, text2 string, distance int) {
		term1, err := CompileLiteral(text1, TermOptions{})
		if err != nil {
			t.Fatalf("CompileLiteral should never fail: %v", err)
		}
		term2, err := CompileLiteral(text2, TermOptions{})
		if err != nil {
			t.Fatalf("CompileLiteral should never fail: %v", err)
		}

		// evaluateNear must never panic, and must be deterministic
		// given identical (content, term, options).
		first := e.EvaluateNear(content, term1, term2, distance, NearOptions{FuzzyEnabled: true}, "")
		second := e.EvaluateNear(content, term1, term2, distance, NearOptions{FuzzyEnabled: true}, "")
		if first != second {
			t.Fatalf("evaluateNear not deterministic: %v != %v", first, second)
		}
	})
}

func FuzzWordBoundaries(f *testing.F) {
	f.Add("the quick brown fox")
	f.Add("")
	f.Add("foo_bar123 baz")
	f.Add("   leading and trailing whitespace   ")

	w := newWordBoundaryIndexer(newFingerprinter(nil), nil)

	f.Fuzz(func(t *testing.T, content string) {
		spans := w.boundaries(content)
		for i, s := range spans {
			if s.Start < 0 || s.End < s.Start || s.End >= len(content) {
				t.Fatalf("span %d out of bounds: %+v (len=%d)", i, s, len(content))
			}
			if content[s.Start:s.End+1] != s.Word {
				t.Fatalf("span %d substring mismatch: %q vs %q", i, content[s.Start:s.End+1], s.Word)
			}
			if i > 0 && s.Start <= spans[i-1].Start {
				t.Fatalf("spans not strictly increasing at %d", i)
			}
			if idx := w.wordIndexOf(s.Start, content); idx != i {
				t.Fatalf("wordIndexOf(start) = %d, want %d", idx, i)
			}
			if idx := w.wordIndexOf(s.End, content); idx != i {
				t.Fatalf("wordIndexOf(end) = %d, want %d", idx, i)
			}
		}
	})
}
