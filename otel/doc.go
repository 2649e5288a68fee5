// Package otel provides OpenTelemetry integration for qkernel engine
// metrics.
//
// # Overview
//
// This package implements the qkernel.MetricsCollector interface using
// OpenTelemetry, enabling percentile calculation and multi-backend
// export (Prometheus, Jaeger, DataDog, Grafana) for the engine's fuzzy
// search and NEAR evaluation latencies, cache hit/miss/eviction
// counts, and circuit-breaker timeouts.
//
// The package is a separate module to keep the qkernel core
// lightweight: applications that don't need metrics collection don't
// pay for the OTEL dependencies.
//
// # Quick Start
//
//	import (
//	    "github.com/filegrove/qkernel"
//	    qkernelotel "github.com/filegrove/qkernel/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	metricsCollector, err := qkernelotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := qkernel.DefaultEngineConfig()
//	cfg.MetricsCollector = metricsCollector
//	engine := qkernel.NewEngine(cfg)
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Metrics Exposed
//
// Histograms (with automatic percentiles):
//   - qkernel_fuzzy_search_latency_ns
//   - qkernel_near_evaluation_latency_ns
//
// Counters:
//   - qkernel_fuzzy_search_hits_total / qkernel_fuzzy_search_misses_total
//   - qkernel_near_evaluations_true_total / qkernel_near_evaluations_false_total
//   - qkernel_cache_hits_total / qkernel_cache_misses_total (labeled "cache")
//   - qkernel_cache_evictions_total (labeled "cache")
//   - qkernel_timeouts_total (labeled "path")
//
// # Prometheus Queries
//
// P95 NEAR evaluation latency (5 minutes):
//
//	histogram_quantile(0.95, rate(qkernel_near_evaluation_latency_ns_bucket[5m]))
//
// Fuzzy search hit ratio:
//
//	rate(qkernel_fuzzy_search_hits_total[5m]) /
//	(rate(qkernel_fuzzy_search_hits_total[5m]) + rate(qkernel_fuzzy_search_misses_total[5m]))
//
// Timeout rate by path:
//
//	rate(qkernel_timeouts_total[5m])
//
// # Thread Safety
//
// All methods are safe for concurrent use; the underlying OTEL
// instruments are lock-free.
//
// # Architecture
//
//	┌──────────────────────────────────────┐
//	│        qkernel Engine (core)          │
//	│  • no OTEL dependency                 │
//	│  • MetricsCollector interface         │
//	│  • NoOpMetricsCollector (default)     │
//	└───────────────┬────────────────────────┘
//	                │ implements
//	                ▼
//	┌──────────────────────────────────────┐
//	│      qkernel/otel (this package)      │
//	│  • OTelMetricsCollector               │
//	│  • histograms + labeled counters      │
//	└───────────────┬────────────────────────┘
//	                │ exports to
//	                ▼
//	        Prometheus / Jaeger / DataDog
package otel
