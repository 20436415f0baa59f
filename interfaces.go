// interfaces.go: public interfaces for Bivium
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

// Stats provides a snapshot of cache activity and state.
type Stats struct {
	// Hits is the number of Get calls answered from a resident store
	Hits uint64

	// Misses is the number of Get calls that found nothing, archive included
	Misses uint64

	// Inserts is the number of Insert calls
	Inserts uint64

	// Evictions is the number of entries pushed out of a full store
	Evictions uint64

	// Archived is the number of records appended to the archive log
	Archived uint64

	// ArchiveFailures is the number of records that could not be appended
	ArchiveFailures uint64

	// Restores is the number of misses answered from the archive
	Restores uint64

	// ChecksumMismatches is the number of archived records rejected on restore
	ChecksumMismatches uint64

	// PolicySwitches is the number of times the active policy changed
	PolicySwitches uint64

	// LRUSize and MRUSize are the current number of resident keys per store
	LRUSize int
	MRUSize int

	// LRUCapacity and MRUCapacity are the configured bounds per store
	LRUCapacity int
	MRUCapacity int

	// ActivePolicy is the policy chosen for the last write
	ActivePolicy Policy

	// Dispersion is the current frequency variance per store
	Dispersion Dispersion
}

// HitRatio returns the cache hit ratio as a percentage (0-100).
// Returns 0.0 if no Get operations have been performed yet.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Size returns the number of resident keys across both stores.
func (s Stats) Size() int {
	return s.LRUSize + s.MRUSize
}

// Logger defines a minimal logging interface with zero overhead.
// Implementations should use structured logging and be allocation-free.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keyvals ...interface{})

	// Info logs an info message with optional key-value pairs.
	Info(msg string, keyvals ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keyvals ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger is a logger that does nothing. Used as default to avoid nil checks.
type NoOpLogger struct{}

// Debug does nothing (no-op implementation).
func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}

// Info does nothing (no-op implementation).
func (NoOpLogger) Info(msg string, keyvals ...interface{}) {}

// Warn does nothing (no-op implementation).
func (NoOpLogger) Warn(msg string, keyvals ...interface{}) {}

// Error does nothing (no-op implementation).
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider provides current time with caching for performance.
// Insertion stamps and key ages are measured with it.
type TimeProvider interface {
	// Now returns the current time in nanoseconds since epoch.
	Now() int64
}

// MetricsCollector defines an interface for collecting cache operation metrics.
// Implementations can send metrics to Prometheus, OpenTelemetry, StatsD, or
// other monitoring systems.
//
// All methods are called while the cache holds its lock and must be fast.
type MetricsCollector interface {
	// RecordGet records a Get operation with its latency and hit/miss result.
	// A miss answered from the archive counts as a hit.
	RecordGet(latencyNs int64, hit bool)

	// RecordInsert records an Insert operation with its latency.
	RecordInsert(latencyNs int64)

	// RecordEviction records an entry pushed out of the store with the given policy.
	RecordEviction(store Policy)

	// RecordArchive records an archive append attempt and whether it succeeded.
	RecordArchive(ok bool)

	// RecordRestore records a restore attempt and whether a verified record was found.
	RecordRestore(found bool)

	// RecordPolicySwitch records a change of the active policy.
	RecordPolicySwitch(to Policy)
}

// NoOpMetricsCollector is a metrics collector that does nothing.
// Used as default to avoid nil checks.
type NoOpMetricsCollector struct{}

// RecordGet does nothing.
func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}

// RecordInsert does nothing.
func (NoOpMetricsCollector) RecordInsert(latencyNs int64) {}

// RecordEviction does nothing.
func (NoOpMetricsCollector) RecordEviction(store Policy) {}

// RecordArchive does nothing.
func (NoOpMetricsCollector) RecordArchive(ok bool) {}

// RecordRestore does nothing.
func (NoOpMetricsCollector) RecordRestore(found bool) {}

// RecordPolicySwitch does nothing.
func (NoOpMetricsCollector) RecordPolicySwitch(to Policy) {}
