// query_test.go: tests for the query evaluator facade
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package qkernel

import "testing"

func TestEngine_Evaluate_TermNode(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	quick, _ := CompileLiteral("quick", TermOptions{})
	content := "the quick brown fox"

	if !e.Evaluate(content, TermNode(quick), QueryOptions{}) {
		t.Error("expected TermNode(quick) to match")
	}

	absent, _ := CompileLiteral("absent", TermOptions{})
	if e.Evaluate(content, TermNode(absent), QueryOptions{}) {
		t.Error("expected TermNode(absent) not to match")
	}
}

func TestEngine_Evaluate_AndShortCircuits(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	quick, _ := CompileLiteral("quick", TermOptions{})
	absent, _ := CompileLiteral("absent", TermOptions{})
	content := "the quick brown fox"

	query := AndNode(TermNode(quick), TermNode(absent))
	if e.Evaluate(content, query, QueryOptions{}) {
		t.Error("AND should fail when one child fails")
	}
}

func TestEngine_Evaluate_OrMatchesAnyChild(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	absent, _ := CompileLiteral("absent", TermOptions{})
	quick, _ := CompileLiteral("quick", TermOptions{})
	content := "the quick brown fox"

	query := OrNode(TermNode(absent), TermNode(quick))
	if !e.Evaluate(content, query, QueryOptions{}) {
		t.Error("OR should succeed when any child succeeds")
	}
}

func TestEngine_Evaluate_Not(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	absent, _ := CompileLiteral("absent", TermOptions{})
	content := "the quick brown fox"

	if !e.Evaluate(content, NotNode(TermNode(absent)), QueryOptions{}) {
		t.Error("NOT(absent term) should be true")
	}
}

func TestEngine_Evaluate_Near(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	quick, _ := CompileLiteral("quick", TermOptions{})
	fox, _ := CompileLiteral("fox", TermOptions{})
	content := "the quick brown fox jumps over the lazy dog"

	if !e.Evaluate(content, NearNode(quick, fox, 3), QueryOptions{}) {
		t.Error("NEAR(quick, fox, 3) should be true")
	}
	if e.Evaluate(content, NearNode(quick, fox, 1), QueryOptions{}) {
		t.Error("NEAR(quick, fox, 1) should be false")
	}
}

func TestEngine_Evaluate_TermNodeHonorsFuzzyEnabled(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	alph, _ := CompileLiteral("alph", TermOptions{})
	content := "alpha beta gamma delta epsilon"

	if e.Evaluate(content, TermNode(alph), QueryOptions{}) {
		t.Error("fuzzy disabled: 'alph' should not match exactly")
	}
	if !e.Evaluate(content, TermNode(alph), QueryOptions{FuzzyEnabled: true}) {
		t.Error("fuzzy enabled: 'alph' should fuzzy-match 'alpha'")
	}
}

func TestEngine_Evaluate_NilNodeIsFalse(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	if e.Evaluate("anything", nil, QueryOptions{}) {
		t.Error("a nil query node should evaluate to false")
	}
}

func TestEngine_Evaluate_NestedCompoundQuery(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	quick, _ := CompileLiteral("quick", TermOptions{})
	fox, _ := CompileLiteral("fox", TermOptions{})
	absent, _ := CompileLiteral("absent", TermOptions{})
	content := "the quick brown fox jumps over the lazy dog"

	query := AndNode(
		NearNode(quick, fox, 3),
		NotNode(TermNode(absent)),
	)
	if !e.Evaluate(content, query, QueryOptions{}) {
		t.Error("nested AND(NEAR, NOT(term)) should evaluate true")
	}
}
