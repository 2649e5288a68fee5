// Package qkernel implements the core query-evaluation kernel of a
// local file-content search tool: fuzzy matching, a word-boundary
// index, a word-distance NEAR operator, and the multi-tier TTL caches
// that memoize intermediate and final results across repeated
// evaluations of the same content.
//
// # Overview
//
// qkernel is designed to be embedded in a file-walking pipeline, with
// focus on:
//   - Determinism: evaluateNear is a pure function of (content, query,
//     options) regardless of cache state.
//   - Concurrency: every cache and the circuit breaker are safe for
//     concurrent use across many worker goroutines evaluating
//     different files in parallel.
//   - Bounded cost: an execution-time budget, a memory pool for
//     word-index projections, and a circuit breaker for pathological
//     content keep a single evaluation from degrading the whole walk.
//   - Observability: a MetricsCollector interface for phase latencies
//     and cache counters (OpenTelemetry integration lives in the
//     separate otel/ module so consumers who don't use OTEL don't pull
//     its dependency graph).
//
// # Quick start
//
//	import "github.com/filegrove/qkernel"
//
//	engine := qkernel.NewEngine(qkernel.DefaultEngineConfig())
//
//	content := "the quick brown fox jumps over the lazy dog"
//	term1, _ := qkernel.CompileLiteral("quick", qkernel.TermOptions{})
//	term2, _ := qkernel.CompileLiteral("fox", qkernel.TermOptions{})
//
//	ok := engine.EvaluateNear(content, term1, term2, 3, qkernel.NearOptions{}, "")
//	// ok == true: "quick" and "fox" are within 3 words of each other.
//
// # Caching
//
// Every level of the evaluation is memoized in a named, capacity- and
// TTL-bounded cache owned by a CacheRegistry: content fingerprints,
// per-term offset lists, fuzzy-search results, and final NEAR booleans.
// Caches never leak mutable aliases and are safe to clear at any time
// via Engine.ClearCaches or Engine.ClearForMemoryPressure.
//
// # Circuit breaker
//
// When an evaluation against a given path repeatedly exceeds the
// execution-time budget, qkernel marks that path "problematic" after a
// configurable number of timeouts. Callers should check
// Engine.ShouldSkip(path) before re-evaluating a path known to be
// pathological (very large, pathologically repetitive content).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package qkernel
