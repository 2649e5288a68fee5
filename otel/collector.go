// Package otel provides OpenTelemetry integration for qkernel's engine
// metrics.
//
// This package implements the qkernel.MetricsCollector interface using
// OpenTelemetry, enabling percentile calculation (p50, p95, p99) for
// fuzzy search and NEAR evaluation latencies and multi-backend export
// (Prometheus, Jaeger, DataDog, Grafana).
//
// # Usage
//
//	import (
//	    "github.com/filegrove/qkernel"
//	    qkernelotel "github.com/filegrove/qkernel/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//
//	metricsCollector, _ := qkernelotel.NewOTelMetricsCollector(provider)
//
//	cfg := qkernel.DefaultEngineConfig()
//	cfg.MetricsCollector = metricsCollector
//	engine := qkernel.NewEngine(cfg)
//
// # Metrics Exposed
//
//   - qkernel_fuzzy_search_latency_ns: Histogram of Search() latencies
//   - qkernel_near_evaluation_latency_ns: Histogram of EvaluateNear() latencies
//   - qkernel_fuzzy_search_hits_total / qkernel_fuzzy_search_misses_total
//   - qkernel_near_evaluations_true_total / qkernel_near_evaluations_false_total
//   - qkernel_cache_hits_total / qkernel_cache_misses_total (labeled by cache name)
//   - qkernel_cache_evictions_total (labeled by cache name)
//   - qkernel_timeouts_total (labeled by path)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel

import (
	"context"
	"errors"

	"github.com/filegrove/qkernel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements qkernel.MetricsCollector using
// OpenTelemetry.
//
// Thread-safety: safe for concurrent use; the underlying OTEL
// instruments are themselves thread-safe and lock-free.
type OTelMetricsCollector struct {
	fuzzySearchLatency metric.Int64Histogram
	nearEvalLatency    metric.Int64Histogram

	fuzzySearchHits   metric.Int64Counter
	fuzzySearchMisses metric.Int64Counter

	nearEvalsTrue  metric.Int64Counter
	nearEvalsFalse metric.Int64Counter

	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter

	timeouts metric.Int64Counter
}

// Options configures OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/filegrove/qkernel"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name, useful for distinguishing
// metrics from multiple Engine instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a qkernel.MetricsCollector backed by
// OpenTelemetry instruments registered against provider.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{MeterName: "github.com/filegrove/qkernel"}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	if c.fuzzySearchLatency, err = meter.Int64Histogram(
		"qkernel_fuzzy_search_latency_ns",
		metric.WithDescription("Latency of fuzzy Search() calls in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.nearEvalLatency, err = meter.Int64Histogram(
		"qkernel_near_evaluation_latency_ns",
		metric.WithDescription("Latency of EvaluateNear() calls in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, err
	}
	if c.fuzzySearchHits, err = meter.Int64Counter(
		"qkernel_fuzzy_search_hits_total",
		metric.WithDescription("Total number of fuzzy search calls that matched"),
	); err != nil {
		return nil, err
	}
	if c.fuzzySearchMisses, err = meter.Int64Counter(
		"qkernel_fuzzy_search_misses_total",
		metric.WithDescription("Total number of fuzzy search calls that did not match"),
	); err != nil {
		return nil, err
	}
	if c.nearEvalsTrue, err = meter.Int64Counter(
		"qkernel_near_evaluations_true_total",
		metric.WithDescription("Total number of EvaluateNear calls that returned true"),
	); err != nil {
		return nil, err
	}
	if c.nearEvalsFalse, err = meter.Int64Counter(
		"qkernel_near_evaluations_false_total",
		metric.WithDescription("Total number of EvaluateNear calls that returned false"),
	); err != nil {
		return nil, err
	}
	if c.cacheHits, err = meter.Int64Counter(
		"qkernel_cache_hits_total",
		metric.WithDescription("Total number of cache lookups that hit, labeled by cache name"),
	); err != nil {
		return nil, err
	}
	if c.cacheMisses, err = meter.Int64Counter(
		"qkernel_cache_misses_total",
		metric.WithDescription("Total number of cache lookups that missed, labeled by cache name"),
	); err != nil {
		return nil, err
	}
	if c.cacheEvictions, err = meter.Int64Counter(
		"qkernel_cache_evictions_total",
		metric.WithDescription("Total number of cache evictions, labeled by cache name"),
	); err != nil {
		return nil, err
	}
	if c.timeouts, err = meter.Int64Counter(
		"qkernel_timeouts_total",
		metric.WithDescription("Total number of execution-budget timeouts, labeled by path"),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RecordFuzzySearch records one fuzzy Search() call.
func (c *OTelMetricsCollector) RecordFuzzySearch(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.fuzzySearchLatency.Record(ctx, latencyNs)
	if hit {
		c.fuzzySearchHits.Add(ctx, 1)
	} else {
		c.fuzzySearchMisses.Add(ctx, 1)
	}
}

// RecordNearEvaluation records one EvaluateNear() call.
func (c *OTelMetricsCollector) RecordNearEvaluation(latencyNs int64, result bool) {
	ctx := context.Background()
	c.nearEvalLatency.Record(ctx, latencyNs)
	if result {
		c.nearEvalsTrue.Add(ctx, 1)
	} else {
		c.nearEvalsFalse.Add(ctx, 1)
	}
}

// RecordCacheHit records a hit against the named cache.
func (c *OTelMetricsCollector) RecordCacheHit(cacheName string) {
	c.cacheHits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache", cacheName)))
}

// RecordCacheMiss records a miss against the named cache.
func (c *OTelMetricsCollector) RecordCacheMiss(cacheName string) {
	c.cacheMisses.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache", cacheName)))
}

// RecordEviction records an eviction from the named cache.
func (c *OTelMetricsCollector) RecordEviction(cacheName string) {
	c.cacheEvictions.Add(context.Background(), 1, metric.WithAttributes(attribute.String("cache", cacheName)))
}

// RecordTimeout records an execution-budget overrun against path. An
// empty path is recorded under the "unknown" attribute value.
func (c *OTelMetricsCollector) RecordTimeout(path string) {
	if path == "" {
		path = "unknown"
	}
	c.timeouts.Add(context.Background(), 1, metric.WithAttributes(attribute.String("path", path)))
}

// Compile-time interface check.
var _ qkernel.MetricsCollector = (*OTelMetricsCollector)(nil)
