// collector.go: OpenTelemetry implementation of bivium.MetricsCollector
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package otel

import (
	"context"

	"github.com/agilira/bivium"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements bivium.MetricsCollector using OpenTelemetry.
//
// Evictions carry a "store" attribute and policy switches a "policy"
// attribute, both LRU or MRU. Archive writes and restores carry a "result"
// attribute.
//
// Thread-safety: Safe for concurrent use by multiple goroutines.
type OTelMetricsCollector struct {
	getLatency     metric.Int64Histogram
	insertLatency  metric.Int64Histogram
	hits           metric.Int64Counter
	misses         metric.Int64Counter
	evictions      metric.Int64Counter
	archiveWrites  metric.Int64Counter
	restores       metric.Int64Counter
	policySwitches metric.Int64Counter

	// Attribute sets are built once so recording stays allocation-free.
	lruStore, mruStore   metric.MeasurementOption
	toLRU, toMRU         metric.MeasurementOption
	archiveOK, archiveKO metric.MeasurementOption
	restored, notFound   metric.MeasurementOption
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/bivium"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a new OpenTelemetry metrics collector.
//
// Returns a BIVIUM_INVALID_CONFIG error if provider is nil, or a
// BIVIUM_INTERNAL_ERROR wrapping any instrument creation failure.
//
// Example:
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	collector, err := NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, bivium.NewErrInvalidConfig("meter_provider", "nil")
	}

	options := Options{
		MeterName: "github.com/agilira/bivium",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{
		lruStore:  metric.WithAttributeSet(attribute.NewSet(attribute.String("store", bivium.PolicyLRU.String()))),
		mruStore:  metric.WithAttributeSet(attribute.NewSet(attribute.String("store", bivium.PolicyMRU.String()))),
		toLRU:     metric.WithAttributeSet(attribute.NewSet(attribute.String("policy", bivium.PolicyLRU.String()))),
		toMRU:     metric.WithAttributeSet(attribute.NewSet(attribute.String("policy", bivium.PolicyMRU.String()))),
		archiveOK: metric.WithAttributeSet(attribute.NewSet(attribute.String("result", "ok"))),
		archiveKO: metric.WithAttributeSet(attribute.NewSet(attribute.String("result", "failed"))),
		restored:  metric.WithAttributeSet(attribute.NewSet(attribute.String("result", "restored"))),
		notFound:  metric.WithAttributeSet(attribute.NewSet(attribute.String("result", "not_found"))),
	}

	var err error
	if c.getLatency, err = meter.Int64Histogram(
		"bivium_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, bivium.NewErrInternal("NewOTelMetricsCollector", err)
	}

	if c.insertLatency, err = meter.Int64Histogram(
		"bivium_insert_latency_ns",
		metric.WithDescription("Latency of Insert operations in nanoseconds"),
		metric.WithUnit("ns"),
	); err != nil {
		return nil, bivium.NewErrInternal("NewOTelMetricsCollector", err)
	}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&c.hits, "bivium_get_hits_total", "Total number of Get calls answered from memory or the archive"},
		{&c.misses, "bivium_get_misses_total", "Total number of Get calls that found nothing"},
		{&c.evictions, "bivium_evictions_total", "Total number of entries pushed out of a full store"},
		{&c.archiveWrites, "bivium_archive_writes_total", "Total number of archive append attempts"},
		{&c.restores, "bivium_restores_total", "Total number of archive lookups"},
		{&c.policySwitches, "bivium_policy_switches_total", "Total number of active policy changes"},
	}
	for _, ctr := range counters {
		if *ctr.dst, err = meter.Int64Counter(ctr.name, metric.WithDescription(ctr.desc)); err != nil {
			return nil, bivium.NewErrInternal("NewOTelMetricsCollector", err)
		}
	}

	return c, nil
}

// RecordGet records a Get operation latency and its outcome.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, hit bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if hit {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordInsert records an Insert operation latency.
func (c *OTelMetricsCollector) RecordInsert(latencyNs int64) {
	c.insertLatency.Record(context.Background(), latencyNs)
}

// RecordEviction counts an entry pushed out of store.
func (c *OTelMetricsCollector) RecordEviction(store bivium.Policy) {
	opt := c.mruStore
	if store == bivium.PolicyLRU {
		opt = c.lruStore
	}
	c.evictions.Add(context.Background(), 1, opt)
}

// RecordArchive counts an archive append attempt.
func (c *OTelMetricsCollector) RecordArchive(ok bool) {
	opt := c.archiveKO
	if ok {
		opt = c.archiveOK
	}
	c.archiveWrites.Add(context.Background(), 1, opt)
}

// RecordRestore counts an archive lookup.
func (c *OTelMetricsCollector) RecordRestore(found bool) {
	opt := c.notFound
	if found {
		opt = c.restored
	}
	c.restores.Add(context.Background(), 1, opt)
}

// RecordPolicySwitch counts a change of the active policy.
func (c *OTelMetricsCollector) RecordPolicySwitch(to bivium.Policy) {
	opt := c.toMRU
	if to == bivium.PolicyLRU {
		opt = c.toLRU
	}
	c.policySwitches.Add(context.Background(), 1, opt)
}

// Compile-time interface check
var _ bivium.MetricsCollector = (*OTelMetricsCollector)(nil)
