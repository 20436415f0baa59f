// cache.go: adaptive LRU/MRU cache orchestrating stores, statistics and archive
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Cache is an adaptive key-value cache built from an LRU store and an MRU store.
//
// Writes go to the store whose resident keys have the lower variance of access
// frequency (MRU on ties). Reads probe LRU first, then MRU, then the archive.
// A key is never resident in both stores.
//
// All methods are safe for concurrent use; a single lock serialises them so
// the dispersion is always computed from a consistent snapshot.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	selector *policySelector[K, V]
	stats    *accessStats[K]
	archive  *archiveLog // nil when archiving is disabled
	keys     Codec[K]
	values   Codec[V]
	tuning   Tuning

	logger    Logger
	metrics   MetricsCollector
	timed     bool
	onEvict   func(key interface{}, store Policy)
	onArchive func(key interface{})

	hits               uint64
	misses             uint64
	inserts            uint64
	evictions          uint64
	archived           uint64
	archiveFailures    uint64
	restores           uint64
	checksumMismatches uint64
	lastArchiveErr     error

	janitor *janitor
	closed  bool
}

// New creates an adaptive cache. Keys and values are written to the archive
// with the codecs returned by NewCodec.
func New[K comparable, V any](cfg Config) (*Cache[K, V], error) {
	return NewWithCodecs(cfg, NewCodec[K](), NewCodec[V]())
}

// NewWithCodecs creates an adaptive cache that archives keys and values with
// the given codecs.
func NewWithCodecs[K comparable, V any](cfg Config, keys Codec[K], values Codec[V]) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if keys == nil || values == nil {
		return nil, NewErrInvalidConfig("codec", "nil")
	}

	selector, err := newPolicySelector[K, V](cfg.LRUCapacity, cfg.MRUCapacity)
	if err != nil {
		return nil, err
	}

	_, noMetrics := cfg.MetricsCollector.(NoOpMetricsCollector)
	c := &Cache[K, V]{
		selector:  selector,
		stats:     newAccessStats[K](cfg.FrequencyStep, cfg.TimeProvider),
		keys:      keys,
		values:    values,
		tuning:    cfg.Tuning(),
		logger:    cfg.Logger,
		metrics:   cfg.MetricsCollector,
		timed:     !noMetrics,
		onEvict:   cfg.OnEvict,
		onArchive: cfg.OnArchive,
	}
	if cfg.ArchivePath != "" {
		c.archive = newArchiveLog(cfg.ArchivePath)
	}
	if cfg.SweepInterval > 0 {
		c.janitor = startJanitor(cfg.SweepInterval, func() { c.ArchiveStale() })
	}
	return c, nil
}

// Insert stores value under key in the store selected by the current
// dispersion. A key resident in the other store is moved. An entry evicted to
// make room is offered to the archive.
// Returns false only after Close.
func (c *Cache[K, V]) Insert(key K, value V) bool {
	var start time.Time
	if c.timed {
		start = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	c.insertLocked(key, value)
	c.archiveStaleLocked(key)

	if c.timed {
		c.metrics.RecordInsert(time.Since(start).Nanoseconds())
	}
	return true
}

// Get returns the value for key. A resident key is looked up in LRU first,
// then MRU; the hit counts as an access but never moves the key between
// stores. A key resident in neither store is restored from the archive when
// a verified record exists.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var start time.Time
	if c.timed {
		start = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	value, found := c.getLocked(key)
	if c.timed {
		c.metrics.RecordGet(time.Since(start).Nanoseconds(), found)
	}
	return value, found
}

func (c *Cache[K, V]) getLocked(key K) (V, bool) {
	if c.closed {
		var zero V
		return zero, false
	}

	if store, ok := c.selector.locate(key); ok {
		value, _ := store.Get(key)
		c.stats.record(key)
		c.hits++
		c.archiveStaleLocked(key)
		return value, true
	}

	if value, ok := c.restoreLocked(key); ok {
		c.hits++
		return value, true
	}

	c.misses++
	var zero V
	return zero, false
}

// Contains reports whether key is resident in either store.
// It does not count as an access and never consults the archive.
func (c *Cache[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.selector.locate(key)
	return ok
}

// Delete removes key from memory without archiving it.
// Returns true if the key was resident.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	store, ok := c.selector.locate(key)
	if !ok {
		return false
	}
	store.Remove(key)
	c.stats.forget(key)
	return true
}

// Filter returns every resident key satisfying predicate, LRU keys first.
func (c *Cache[K, V]) Filter(predicate func(K) bool) []K {
	c.mu.Lock()
	keys := c.selector.residentKeys()
	c.mu.Unlock()

	return slices.DeleteFunc(keys, func(key K) bool { return !predicate(key) })
}

// Sort returns every resident key ordered by cmp, which follows the
// slices.SortFunc convention. Keys that compare equal keep LRU-then-MRU order.
func (c *Cache[K, V]) Sort(cmp func(a, b K) int) []K {
	c.mu.Lock()
	keys := c.selector.residentKeys()
	c.mu.Unlock()

	slices.SortStableFunc(keys, cmp)
	return keys
}

// ShouldArchive reports whether a resident key is of low value: accessed
// fewer times than FrequencyThreshold or inserted longer ago than AgeThreshold.
func (c *Cache[K, V]) ShouldArchive(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldArchiveLocked(key)
}

// Archive offloads a resident low-value key: it appends a record to the
// archive, removes the key from its store and drops its statistics.
// Returns true if the key left memory. A failed append is logged and
// counted but does not keep the key resident.
func (c *Cache[K, V]) Archive(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.archive == nil || !c.shouldArchiveLocked(key) {
		return false
	}
	return c.offloadLocked(key)
}

// ArchiveStale offloads every key inserted longer ago than AgeThreshold,
// oldest first. Returns the number of keys that left memory.
func (c *Cache[K, V]) ArchiveStale() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.archive == nil {
		return 0
	}
	n := 0
	for {
		key, ok := c.stats.oldest()
		if !ok || !c.isStaleLocked(key) {
			return n
		}
		if !c.offloadLocked(key) {
			// Not resident: statistics without a store would stall the loop.
			c.stats.forget(key)
			continue
		}
		n++
	}
}

// Restore looks key up in the archive and, if the last record for it has a
// valid checksum, inserts the archived value into the active store.
// A resident key is returned as is without reading the archive.
func (c *Cache[K, V]) Restore(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		var zero V
		return zero, false
	}
	if store, ok := c.selector.locate(key); ok {
		return store.Peek(key)
	}
	return c.restoreLocked(key)
}

// Compact rewrites the archive keeping only the last record of each key.
// Returns the number of records kept.
func (c *Cache[K, V]) Compact() (int, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return 0, NewErrCacheClosed("Compact")
	}
	if c.archive == nil {
		return 0, NewErrArchiveDisabled("Compact")
	}
	kept, err := c.archive.compact()
	if err != nil {
		c.logger.Warn("archive compaction failed", "path", c.archive.path, "error", err)
		return 0, err
	}
	c.logger.Debug("archive compacted", "path", c.archive.path, "records", kept)
	return kept, nil
}

// Reconfigure replaces the runtime-adjustable parameters.
//
// Unlike Config, a FrequencyThreshold of 0 is applied as is: every key is
// accessed at least once, so the frequency rule never matches and only age
// makes a key archivable. An AgeThreshold of 0 selects DefaultAgeThreshold.
// Returns BIVIUM_CACHE_CLOSED after Close.
func (c *Cache[K, V]) Reconfigure(t Tuning) error {
	if t.FrequencyThreshold < 0 {
		return NewErrInvalidConfig("frequency_threshold", t.FrequencyThreshold)
	}
	if t.AgeThreshold < 0 {
		return NewErrInvalidConfig("age_threshold", t.AgeThreshold)
	}
	if t.AgeThreshold == 0 {
		t.AgeThreshold = DefaultAgeThreshold
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewErrCacheClosed("Reconfigure")
	}
	old := c.tuning
	c.tuning = t
	c.mu.Unlock()

	c.logger.Info("cache tuning updated",
		"frequency_threshold", t.FrequencyThreshold, "previous_frequency_threshold", old.FrequencyThreshold,
		"age_threshold", t.AgeThreshold, "previous_age_threshold", old.AgeThreshold,
		"archive_all_evictions", t.ArchiveAllEvictions)
	return nil
}

// Tuning returns the runtime-adjustable parameters in effect.
func (c *Cache[K, V]) Tuning() Tuning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning
}

// Dispersion returns the current frequency variance of each store.
func (c *Cache[K, V]) Dispersion() Dispersion {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.dispersion()
}

// ActivePolicy returns the policy chosen for the last write.
func (c *Cache[K, V]) ActivePolicy() Policy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.active
}

// Len returns the number of resident keys across both stores.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selector.lru.Len() + c.selector.mru.Len()
}

// Stats returns a snapshot of cache counters and state.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:               c.hits,
		Misses:             c.misses,
		Inserts:            c.inserts,
		Evictions:          c.evictions,
		Archived:           c.archived,
		ArchiveFailures:    c.archiveFailures,
		Restores:           c.restores,
		ChecksumMismatches: c.checksumMismatches,
		PolicySwitches:     c.selector.switches,
		LRUSize:            c.selector.lru.Len(),
		MRUSize:            c.selector.mru.Len(),
		LRUCapacity:        c.selector.lru.Capacity(),
		MRUCapacity:        c.selector.mru.Capacity(),
		ActivePolicy:       c.selector.active,
		Dispersion:         c.stats.dispersion(),
	}
}

// Status returns a human-readable snapshot of both stores, the active
// policy, the dispersion and the archive state.
func (c *Cache[K, V]) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	b.WriteString("Cache Status:\n")
	for _, store := range []*Store[K, V]{c.selector.lru, c.selector.mru} {
		fmt.Fprintf(&b, "%s Cache (%d/%d):", store.Policy(), store.Len(), store.Capacity())
		for key, value := range store.All() {
			fmt.Fprintf(&b, " %v=%v", key, value)
		}
		b.WriteByte('\n')
	}

	d := c.stats.dispersion()
	fmt.Fprintf(&b, "Active policy: %s (switches: %d)\n", c.selector.active, c.selector.switches)
	fmt.Fprintf(&b, "Dispersion: LRU=%.4f MRU=%.4f\n", d.LRU, d.MRU)

	if c.archive == nil {
		b.WriteString("Archive: disabled\n")
		return b.String()
	}
	lastErr := "none"
	if c.lastArchiveErr != nil {
		lastErr = c.lastArchiveErr.Error()
	}
	fmt.Fprintf(&b, "Archive: %s (archived: %d, failures: %d, restored: %d, rejected: %d, last error: %s)\n",
		c.archive.path, c.archived, c.archiveFailures, c.restores, c.checksumMismatches, lastErr)
	return b.String()
}

// Logger returns the configured logger.
func (c *Cache[K, V]) Logger() Logger {
	return c.logger
}

// Close stops the background janitor and releases resident entries.
// The archive file is left in place. Close is idempotent.
func (c *Cache[K, V]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.selector.lru.Clear()
	c.selector.mru.Clear()
	c.stats.reset()
	j := c.janitor
	c.mu.Unlock()

	// The janitor takes c.mu, so it is stopped outside the lock.
	if j != nil {
		j.stop()
	}
	return nil
}

// insertLocked performs the write path: statistics, policy selection,
// relocation, insertion and eviction handling.
func (c *Cache[K, V]) insertLocked(key K, value V) {
	c.inserts++
	c.stats.record(key)

	target, switched := c.selector.selectForWrite(c.stats.dispersion())
	if switched {
		c.logger.Debug("active policy switched", "policy", target.Policy().String())
		c.metrics.RecordPolicySwitch(target.Policy())
	}

	if current, ok := c.selector.locate(key); ok && current != target {
		current.Remove(key)
	}

	evicted, ok := target.Insert(key, value)
	c.stats.place(key, target.Policy())
	if ok {
		c.evictLocked(evicted, target.Policy())
	}
}

// evictLocked offers an entry pushed out of a full store to the archive and
// drops its statistics.
func (c *Cache[K, V]) evictLocked(e Entry[K, V], from Policy) {
	c.evictions++
	c.metrics.RecordEviction(from)
	if c.onEvict != nil {
		c.onEvict(e.Key, from)
	}

	if c.archive != nil && (c.tuning.ArchiveAllEvictions || c.shouldArchiveLocked(e.Key)) {
		c.appendLocked(e.Key, e.Value)
	} else {
		c.logger.Debug("evicted entry dropped", "key", e.Key, "store", from.String())
	}
	c.stats.forget(e.Key)
}

// offloadLocked archives a resident key and removes it from memory.
func (c *Cache[K, V]) offloadLocked(key K) bool {
	store, ok := c.selector.locate(key)
	if !ok {
		return false
	}
	value, _ := store.Remove(key)
	c.appendLocked(key, value)
	c.stats.forget(key)
	return true
}

// appendLocked writes one archive record. Failures are logged and counted;
// callers proceed with the in-memory removal either way.
func (c *Cache[K, V]) appendLocked(key K, value V) bool {
	keyText, err := c.keys.Encode(key)
	if err == nil {
		var valueText string
		if valueText, err = c.values.Encode(value); err == nil {
			err = c.archive.append(newArchiveRecord(keyText, valueText))
		}
	}

	c.metrics.RecordArchive(err == nil)
	if err != nil {
		c.archiveFailures++
		c.lastArchiveErr = err
		c.logger.Warn("archive append failed, entry is not recoverable", "key", key, "error", err)
		return false
	}

	c.archived++
	if c.onArchive != nil {
		c.onArchive(key)
	}
	return true
}

// restoreLocked reinserts key from the archive when its last record verifies.
func (c *Cache[K, V]) restoreLocked(key K) (V, bool) {
	var zero V
	if c.archive == nil {
		return zero, false
	}

	keyText, err := c.keys.Encode(key)
	if err != nil {
		c.logger.Warn("archive key encoding failed", "key", key, "error", err)
		c.metrics.RecordRestore(false)
		return zero, false
	}

	rec, found, err := c.archive.lookup(keyText)
	switch {
	case err != nil:
		c.logger.Warn("archive lookup failed", "key", key, "error", err)
	case !found:
		c.logger.Debug("key not archived", "key", key)
	case !rec.valid():
		c.checksumMismatches++
		c.logger.Debug("archived record rejected", "key", key,
			"error", NewErrChecksumMismatch(keyText, rec.checksum, Checksum(keyText)))
	default:
		value, err := c.values.Decode(rec.payload())
		if err != nil {
			c.logger.Warn("archived value decoding failed", "key", key, "error", err)
			break
		}
		c.insertLocked(key, value)
		c.restores++
		c.metrics.RecordRestore(true)
		return value, true
	}

	c.metrics.RecordRestore(false)
	return zero, false
}

func (c *Cache[K, V]) shouldArchiveLocked(key K) bool {
	frequency, ok := c.stats.frequency(key)
	if !ok {
		return false
	}
	return frequency < c.tuning.FrequencyThreshold || c.isStaleLocked(key)
}

func (c *Cache[K, V]) isStaleLocked(key K) bool {
	age, ok := c.stats.age(key)
	return ok && age > c.tuning.AgeThreshold
}

// archiveStaleLocked offloads the oldest tracked key other than touched when
// it has outlived AgeThreshold. One key per operation keeps the write path O(1).
func (c *Cache[K, V]) archiveStaleLocked(touched K) {
	if c.archive == nil {
		return
	}
	candidate, ok := c.stats.oldest()
	if ok && candidate == touched {
		candidate, ok = c.stats.secondOldest()
	}
	if ok && c.isStaleLocked(candidate) {
		c.offloadLocked(candidate)
	}
}
