// hot-reload.go: dynamic archive tuning with Argus integration
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"sync"
	"time"

	"github.com/agilira/argus"
)

// Reconfigurable is implemented by caches whose tuning can change at runtime.
// *Cache[K, V] implements it for every K and V.
type Reconfigurable interface {
	Reconfigure(t Tuning) error
	Tuning() Tuning
}

// HotConfig watches a configuration file with Argus and applies the
// runtime-adjustable parameters to a cache when the file changes.
type HotConfig struct {
	target  Reconfigurable
	watcher *argus.Watcher
	logger  Logger
	mu      sync.RWMutex
	tuning  Tuning

	// OnReload is called after tuning has been applied.
	// This callback is optional and must be fast and non-blocking.
	OnReload func(oldTuning, newTuning Tuning)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the path to the configuration file to watch.
	// Supports JSON, YAML, TOML, HCL, INI, Properties formats.
	ConfigPath string

	// PollInterval is how often to check for configuration changes.
	// Default: 1 second. Minimum: 100ms.
	PollInterval time.Duration

	// OnReload is called after tuning has been applied.
	OnReload func(oldTuning, newTuning Tuning)

	// Logger for hot reload operations.
	// If nil, uses the cache's logger.
	Logger Logger
}

// NewHotConfig creates a hot-reloadable configuration for a cache.
// The Argus watcher starts polling immediately.
//
// Example configuration file (YAML):
//
//	cache:
//	  frequency_threshold: 3
//	  age_threshold: "10m"
//	  archive_all_evictions: true
//
// Supported configuration keys:
//   - cache.frequency_threshold (float): archive keys accessed fewer times
//   - cache.age_threshold (duration string): archive keys older than this
//   - cache.archive_all_evictions (bool): archive every evicted entry
//   - cache.capacity (int): reported only, store sizes are fixed at construction
func NewHotConfig(target Reconfigurable, opts HotConfigOptions) (*HotConfig, error) {
	if target == nil {
		return nil, NewErrInvalidConfig("target", "nil")
	}
	if opts.ConfigPath == "" {
		return nil, NewErrInvalidConfig("config_path", "")
	}

	if opts.PollInterval == 0 {
		opts.PollInterval = 1 * time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}

	if opts.Logger == nil {
		if lg, ok := target.(interface{ Logger() Logger }); ok {
			opts.Logger = lg.Logger()
		} else {
			opts.Logger = NoOpLogger{}
		}
	}

	hc := &HotConfig{
		target:   target,
		logger:   opts.Logger,
		tuning:   target.Tuning(),
		OnReload: opts.OnReload,
	}

	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argus.Config{
		PollInterval: opts.PollInterval,
	})
	if err != nil {
		return nil, NewErrInternal("NewHotConfig", err)
	}
	hc.watcher = watcher

	return hc, nil
}

// Start begins watching the configuration file for changes.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetTuning returns the last applied tuning (thread-safe).
func (hc *HotConfig) GetTuning() Tuning {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.tuning
}

// handleConfigChange is called by Argus when configuration changes.
func (hc *HotConfig) handleConfigChange(configData map[string]interface{}) {
	hc.mu.Lock()
	oldTuning := hc.tuning
	newTuning := hc.parseTuning(configData, oldTuning)
	if err := hc.target.Reconfigure(newTuning); err != nil {
		hc.mu.Unlock()
		hc.logger.Warn("hot reload rejected", "error", err)
		return
	}
	hc.tuning = hc.target.Tuning()
	newTuning = hc.tuning
	hc.mu.Unlock()

	if hc.OnReload != nil {
		hc.OnReload(oldTuning, newTuning)
	}
}

// parseTuning extracts tuning from Argus config data. Missing or invalid
// keys keep their current value.
func (hc *HotConfig) parseTuning(data map[string]interface{}, current Tuning) Tuning {
	section, ok := data["cache"].(map[string]interface{})
	if !ok {
		section = data
	}

	t := current
	if f, ok := parseNonNegativeFloat(section["frequency_threshold"]); ok {
		t.FrequencyThreshold = f
	}
	if d, ok := parseDuration(section["age_threshold"]); ok {
		t.AgeThreshold = d
	}
	if b, ok := section["archive_all_evictions"].(bool); ok {
		t.ArchiveAllEvictions = b
	}
	if capacity, ok := parsePositiveInt(section["capacity"]); ok {
		hc.logger.Info("capacity change requires a new cache", "capacity", capacity)
	}
	return t
}

// parsePositiveInt extracts a positive integer from interface{} value.
// Supports both int and float64 types (YAML/JSON may vary).
func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}

// parseNonNegativeFloat extracts a float64 >= 0 from an int or float64 value.
func parseNonNegativeFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		if v >= 0 {
			return float64(v), true
		}
	case float64:
		if v >= 0 {
			return v, true
		}
	}
	return 0, false
}

// parseDuration extracts a positive time.Duration from a string value.
func parseDuration(value interface{}) (time.Duration, bool) {
	if str, ok := value.(string); ok {
		if d, err := time.ParseDuration(str); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}
