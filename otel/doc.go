// Package otel provides OpenTelemetry integration for bivium cache metrics.
//
// # Overview
//
// This package implements the bivium.MetricsCollector interface using
// OpenTelemetry. Latencies are recorded as histograms so any OTEL backend can
// derive percentiles; cache events are recorded as counters.
//
// # Quick Start
//
// Basic setup with Prometheus exporter:
//
//	import (
//	    "github.com/agilira/bivium"
//	    biviumotel "github.com/agilira/bivium/otel"
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
//	collector, err := biviumotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, err := bivium.New[string, Session](bivium.Config{
//	    Capacity:         10_000,
//	    ArchivePath:      "/var/lib/app/sessions.archive",
//	    MetricsCollector: collector,
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Metrics Exposed
//
// Histograms:
//   - bivium_get_latency_ns: Get() latency in nanoseconds
//   - bivium_insert_latency_ns: Insert() latency in nanoseconds
//
// Counters:
//   - bivium_get_hits_total: Get calls answered from memory or the archive
//   - bivium_get_misses_total: Get calls that found nothing
//   - bivium_evictions_total{store}: entries pushed out of a full LRU or MRU store
//   - bivium_archive_writes_total{result}: archive appends, result ok or failed
//   - bivium_restores_total{result}: archive lookups, result restored or not_found
//   - bivium_policy_switches_total{policy}: changes of the active policy
//
// # Prometheus Queries
//
// P95 Get latency over the last 5 minutes:
//
//	histogram_quantile(0.95, rate(bivium_get_latency_ns_bucket[5m]))
//
// Hit ratio:
//
//	rate(bivium_get_hits_total[5m]) /
//	(rate(bivium_get_hits_total[5m]) + rate(bivium_get_misses_total[5m]))
//
// Share of evictions that reach the archive:
//
//	rate(bivium_archive_writes_total{result="ok"}[5m]) / rate(bivium_evictions_total[5m])
//
// # Configuration
//
// Custom meter name, useful for multiple cache instances:
//
//	collector, err := biviumotel.NewOTelMetricsCollector(
//	    provider,
//	    biviumotel.WithMeterName("myapp_session_cache"),
//	)
//
// See examples/otel-prometheus for a runnable server.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package otel
