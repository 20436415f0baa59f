// config.go: configuration for Bivium
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Config holds configuration parameters for the cache.
type Config struct {
	// Capacity is the capacity of each store when LRUCapacity or
	// MRUCapacity are not set. Default: DefaultCapacity.
	Capacity int

	// LRUCapacity and MRUCapacity override Capacity per store.
	// Must be >= 0; 0 means "use Capacity".
	LRUCapacity int
	MRUCapacity int

	// FrequencyStep is added to a key's frequency on every access after
	// the first. Default: DefaultFrequencyStep.
	FrequencyStep float64

	// FrequencyThreshold marks resident keys accessed less often than this
	// as archivable. Default: DefaultFrequencyThreshold when 0. Use
	// Cache.Reconfigure with 0 to turn the frequency rule off.
	FrequencyThreshold float64

	// AgeThreshold marks resident keys inserted longer ago than this as
	// archivable. Default: DefaultAgeThreshold.
	AgeThreshold time.Duration

	// ArchivePath is the append-only archive log.
	// If empty, archiving and restoring are disabled.
	ArchivePath string

	// ArchiveAllEvictions archives every evicted entry, not only those
	// that satisfy the archivable rule. Default: false.
	ArchiveAllEvictions bool

	// SweepInterval is how often a background janitor archives stale keys.
	// If 0, stale keys are only checked during Insert and Get.
	SweepInterval time.Duration

	// Logger is used for debugging and monitoring.
	// If nil, NoOpLogger is used. Default: NoOpLogger.
	Logger Logger

	// TimeProvider provides current time for insertion stamps and ages.
	// If nil, a go-timecache backed implementation is used.
	TimeProvider TimeProvider

	// MetricsCollector is used for collecting operation metrics.
	// If nil, NoOpMetricsCollector is used (zero overhead).
	MetricsCollector MetricsCollector

	// OnEvict is called when an entry is pushed out of a full store,
	// before it is offered to the archive.
	// This callback must be fast and non-blocking.
	OnEvict func(key interface{}, store Policy)

	// OnArchive is called after a record has been appended to the archive.
	// This callback must be fast and non-blocking.
	OnArchive func(key interface{})
}

// Validate checks configuration parameters and applies sensible defaults.
//
// Returns BIVIUM_INVALID_CAPACITY for negative capacities and
// BIVIUM_INVALID_CONFIG for negative thresholds or intervals.
//
// Default values applied:
//   - Capacity: DefaultCapacity if 0
//   - LRUCapacity, MRUCapacity: Capacity if 0
//   - FrequencyStep: DefaultFrequencyStep if <= 0
//   - FrequencyThreshold: DefaultFrequencyThreshold if 0
//   - AgeThreshold: DefaultAgeThreshold if 0
//   - Logger: NoOpLogger{} if nil
//   - TimeProvider: systemTimeProvider{} if nil
//   - MetricsCollector: NoOpMetricsCollector{} if nil
func (c *Config) Validate() error {
	if c.Capacity < 0 {
		return NewErrInvalidCapacity("cache", c.Capacity)
	}
	if c.LRUCapacity < 0 {
		return NewErrInvalidCapacity(PolicyLRU.String(), c.LRUCapacity)
	}
	if c.MRUCapacity < 0 {
		return NewErrInvalidCapacity(PolicyMRU.String(), c.MRUCapacity)
	}
	if c.FrequencyThreshold < 0 {
		return NewErrInvalidConfig("frequency_threshold", c.FrequencyThreshold)
	}
	if c.AgeThreshold < 0 {
		return NewErrInvalidConfig("age_threshold", c.AgeThreshold)
	}
	if c.SweepInterval < 0 {
		return NewErrInvalidConfig("sweep_interval", c.SweepInterval)
	}

	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.LRUCapacity == 0 {
		c.LRUCapacity = c.Capacity
	}
	if c.MRUCapacity == 0 {
		c.MRUCapacity = c.Capacity
	}

	if c.FrequencyStep <= 0 {
		c.FrequencyStep = DefaultFrequencyStep
	}
	if c.FrequencyThreshold == 0 {
		c.FrequencyThreshold = DefaultFrequencyThreshold
	}
	if c.AgeThreshold == 0 {
		c.AgeThreshold = DefaultAgeThreshold
	}

	if c.Logger == nil {
		c.Logger = NoOpLogger{}
	}
	if c.TimeProvider == nil {
		c.TimeProvider = &systemTimeProvider{}
	}
	if c.MetricsCollector == nil {
		c.MetricsCollector = NoOpMetricsCollector{}
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
// Archiving is disabled until ArchivePath is set.
func DefaultConfig() Config {
	return Config{
		Capacity:           DefaultCapacity,
		LRUCapacity:        DefaultCapacity,
		MRUCapacity:        DefaultCapacity,
		FrequencyStep:      DefaultFrequencyStep,
		FrequencyThreshold: DefaultFrequencyThreshold,
		AgeThreshold:       DefaultAgeThreshold,
		Logger:             NoOpLogger{},
		TimeProvider:       &systemTimeProvider{},
		MetricsCollector:   NoOpMetricsCollector{},
	}
}

// Tuning holds the parameters that can change while a cache is running.
type Tuning struct {
	FrequencyThreshold  float64
	AgeThreshold        time.Duration
	ArchiveAllEvictions bool
}

// Tuning returns the runtime-adjustable part of the configuration.
func (c Config) Tuning() Tuning {
	return Tuning{
		FrequencyThreshold:  c.FrequencyThreshold,
		AgeThreshold:        c.AgeThreshold,
		ArchiveAllEvictions: c.ArchiveAllEvictions,
	}
}

// systemTimeProvider is the default time provider using go-timecache.
type systemTimeProvider struct{}

func (t *systemTimeProvider) Now() int64 {
	return timecache.CachedTimeNano()
}
