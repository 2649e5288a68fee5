// persist.go: the optional diagnostics artifact
//
// An optional JSON object {timestamp, metrics, cacheStats} a host may
// write for post-hoc analysis. Not required for correctness and never
// loaded back.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"encoding/json"
	"io"
)

// DiagnosticsArtifact is the persisted JSON layout.
type DiagnosticsArtifact struct {
	Timestamp  int64                `json:"timestamp"`
	Metrics    PhaseMetricsSnapshot `json:"metrics"`
	CacheStats []CacheStats         `json:"cacheStats"`
}

// WriteDiagnostics serializes the engine's current stats as a
// DiagnosticsArtifact to w. It is a host-facing convenience: the core
// never reads this artifact back.
func (e *Engine) WriteDiagnostics(w io.Writer) error {
	stats := e.Stats()
	artifact := DiagnosticsArtifact{
		Timestamp:  e.cfg.TimeProvider.Now(),
		Metrics:    stats.PhaseMetrics,
		CacheStats: stats.Caches,
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(artifact); err != nil {
		return NewErrDiagnosticsWriteFailed(err)
	}
	return nil
}
