// helpers_test.go: shared test doubles
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock is a manually advanced TimeProvider.
type fakeClock struct {
	now atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.now.Store(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() int64 { return c.now.Load() }

func (c *fakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

// recordingLogger keeps every message for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) log(level, msg string, keyvals ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, keyvals))
}

func (l *recordingLogger) Debug(msg string, keyvals ...interface{}) { l.log("DEBUG", msg, keyvals...) }
func (l *recordingLogger) Info(msg string, keyvals ...interface{})  { l.log("INFO", msg, keyvals...) }
func (l *recordingLogger) Warn(msg string, keyvals ...interface{})  { l.log("WARN", msg, keyvals...) }
func (l *recordingLogger) Error(msg string, keyvals ...interface{}) { l.log("ERROR", msg, keyvals...) }

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// countingMetrics counts every MetricsCollector call.
type countingMetrics struct {
	gets, hits, inserts, evictions atomic.Int64
	archives, archiveFailures      atomic.Int64
	restores, restoreMisses        atomic.Int64
	switches                       atomic.Int64
}

func (m *countingMetrics) RecordGet(latencyNs int64, hit bool) {
	m.gets.Add(1)
	if hit {
		m.hits.Add(1)
	}
}

func (m *countingMetrics) RecordInsert(latencyNs int64) { m.inserts.Add(1) }

func (m *countingMetrics) RecordEviction(store Policy) { m.evictions.Add(1) }

func (m *countingMetrics) RecordArchive(ok bool) {
	if ok {
		m.archives.Add(1)
	} else {
		m.archiveFailures.Add(1)
	}
}

func (m *countingMetrics) RecordRestore(found bool) {
	if found {
		m.restores.Add(1)
	} else {
		m.restoreMisses.Add(1)
	}
}

func (m *countingMetrics) RecordPolicySwitch(to Policy) { m.switches.Add(1) }

// newTestCache builds an int cache archiving into a temporary directory.
func newTestCache(t *testing.T, cfg Config) (*Cache[int, int], *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	if cfg.TimeProvider == nil {
		cfg.TimeProvider = clock
	}
	if cfg.ArchivePath == "" {
		cfg.ArchivePath = filepath.Join(t.TempDir(), "bivium.archive")
	}
	c, err := New[int, int](cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

// assertExclusive fails if any key is resident in both stores.
func assertExclusive[K comparable, V any](t *testing.T, c *Cache[K, V]) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range c.selector.lru.Keys() {
		if c.selector.mru.Contains(key) {
			t.Fatalf("key %v resident in both stores", key)
		}
	}
	if c.stats.len() != c.selector.lru.Len()+c.selector.mru.Len() {
		t.Fatalf("tracking %d keys for %d resident", c.stats.len(), c.selector.lru.Len()+c.selector.mru.Len())
	}
}

// archiveRecords returns every parsable record of a in log order and the
// number of skipped lines.
func archiveRecords(t *testing.T, a *archiveLog) ([]archiveRecord, int) {
	t.Helper()
	a.mu.Lock()
	defer a.mu.Unlock()

	var recs []archiveRecord
	skipped, err := a.scan(func(rec archiveRecord) {
		recs = append(recs, rec)
	})
	if err != nil {
		t.Fatalf("scan archive: %v", err)
	}
	return recs, skipped
}
