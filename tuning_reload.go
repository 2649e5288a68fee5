// tuning_reload.go: dynamic tuning reload via Argus
//
// Watches a configuration file and applies the subset of EngineConfig
// that can change safely on a live Engine without rebuilding its
// caches: MatchThreshold, MaxExecutionTime, and
// CircuitBreakerThreshold.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package qkernel

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// Tuning holds the engine parameters this watcher can change on a live
// Engine without reconstructing any cache.
type Tuning struct {
	MatchThreshold          float64
	MaxExecutionTime        time.Duration
	CircuitBreakerThreshold int
}

// tuningState is the single, atomically-swappable home for an
// Engine's live-reloadable tuning values. Engine, nearEvaluator, and
// fuzzyMatcher all hold the same *tuningState rather than their own
// value copies of EngineConfig, so a reload is visible to every
// evaluation path the instant it's applied instead of being trapped in
// whichever copy happened to read the old values at construction.
type tuningState struct {
	v atomic.Pointer[Tuning]
}

func newTuningState(initial Tuning) *tuningState {
	ts := &tuningState{}
	ts.v.Store(&initial)
	return ts
}

func (ts *tuningState) load() Tuning {
	return *ts.v.Load()
}

func (ts *tuningState) store(t Tuning) {
	ts.v.Store(&t)
}

// TuningWatcher watches a configuration file and applies live tuning
// changes to an Engine's execution-time budget, fuzzy acceptance
// threshold, and circuit-breaker threshold. Cache sizes and TTLs are
// deliberately not reloadable here: changing them would require
// rebuilding the registry's caches, discarding their memoized state.
type TuningWatcher struct {
	engine  *Engine
	watcher *argus.Watcher

	// OnReload is called after tuning is successfully reloaded. Must be
	// fast and non-blocking.
	OnReload func(old, new Tuning)

	logger Logger
}

// TuningWatcherOptions configures a TuningWatcher.
type TuningWatcherOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats (argus).
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default 1s, minimum 100ms.
	PollInterval time.Duration

	OnReload func(old, new Tuning)

	// Logger receives reload diagnostics. If nil, the engine's
	// configured Logger is used.
	Logger Logger
}

// NewTuningWatcher constructs a watcher bound to engine and starts
// watching opts.ConfigPath immediately.
//
// Supported configuration keys, under a top-level "tuning" section:
//   - tuning.match_threshold (float, (0,1))
//   - tuning.max_execution_time (duration string, e.g. "8s")
//   - tuning.circuit_breaker_threshold (int, 1-100)
func NewTuningWatcher(engine *Engine, opts TuningWatcherOptions) (*TuningWatcher, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = engine.cfg.Logger
	}

	tw := &TuningWatcher{
		engine:   engine,
		OnReload: opts.OnReload,
		logger:   opts.Logger,
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, tw.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	tw.watcher = watcher
	return tw, nil
}

// Start begins watching the configuration file for changes.
func (tw *TuningWatcher) Start() error {
	if tw.watcher.IsRunning() {
		return nil
	}
	return tw.watcher.Start()
}

// Stop stops watching the configuration file.
func (tw *TuningWatcher) Stop() error {
	return tw.watcher.Stop()
}

// Current returns the tuning values currently applied.
func (tw *TuningWatcher) Current() Tuning {
	return tw.engine.tuning.load()
}

func (tw *TuningWatcher) handleConfigChange(configData map[string]interface{}) {
	old := tw.engine.tuning.load()
	next := tw.parseTuning(configData, old)

	tw.engine.tuning.store(next)
	tw.engine.breaker.setThreshold(next.CircuitBreakerThreshold)

	tw.logger.Info("tuning reloaded",
		"matchThreshold", next.MatchThreshold,
		"maxExecutionTime", next.MaxExecutionTime,
		"circuitBreakerThreshold", next.CircuitBreakerThreshold)

	if tw.OnReload != nil {
		tw.OnReload(old, next)
	}
}

func (tw *TuningWatcher) parseTuning(data map[string]interface{}, fallback Tuning) Tuning {
	next := fallback

	section, ok := data["tuning"].(map[string]interface{})
	if !ok {
		if _, hasThreshold := data["match_threshold"]; hasThreshold {
			section = data
		} else {
			return next
		}
	}

	if v, ok := parseFloatInRange(section["match_threshold"], 0, 1); ok {
		next.MatchThreshold = v
	}
	if v, ok := parseDuration(section["max_execution_time"]); ok {
		next.MaxExecutionTime = v
	}
	if v, ok := parseIntInRange(section["circuit_breaker_threshold"], 1, 100); ok {
		next.CircuitBreakerThreshold = v
	}

	return next
}

// parseIntInRange extracts an integer within [min, max], supporting
// both int and float64 (YAML/JSON may decode either).
func parseIntInRange(value interface{}, min, max int) (int, bool) {
	switch v := value.(type) {
	case int:
		if v >= min && v <= max {
			return v, true
		}
	case float64:
		if v >= float64(min) && v <= float64(max) {
			return int(v), true
		}
	}
	return 0, false
}

// parseDuration extracts a time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil {
			return d, true
		}
	}
	return 0, false
}

// parseFloatInRange extracts a float64 within the open interval (min, max).
func parseFloatInRange(value interface{}, min, max float64) (float64, bool) {
	if v, ok := value.(float64); ok {
		if v > min && v < max {
			return v, true
		}
	}
	return 0, false
}
