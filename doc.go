// Package bivium provides a thread-safe, in-memory key-value cache that adapts
// its eviction policy to the observed access pattern and spills low-value
// entries to an append-only archive log.
//
// # Overview
//
// A Cache owns two bounded stores:
//   - LRU: evicts the least recently used entry
//   - MRU: evicts the most recently used entry
//
// Every access increments the key's frequency. Before each write the cache
// computes the population variance of the frequencies of the keys resident in
// each store and writes into the store with the lower variance. Ties, including
// the empty cache, go to MRU. A key is never resident in both stores: a write
// for a key living in the other store moves it.
//
// Reads probe LRU first, then MRU. A hit refreshes recency inside its store
// but never moves the key to the other store.
//
// # Archive
//
// When Config.ArchivePath is set, entries leaving memory are appended to a
// text log, one record per line:
//
//	Key: 42, Checksum: 3483, Value: "4200"
//
// The checksum is derived from the SHA-256 digest of the encoded key. On a
// miss the cache scans the log, takes the last record for the key, verifies
// the checksum and, if it matches, decodes the value and inserts it into the
// active store. Records with a bad checksum are rejected and counted.
//
// Entries are archived when:
//   - they are evicted from a full store and are of low value, or always when
//     Config.ArchiveAllEvictions is set
//   - Archive is called for a low-value key
//   - they are older than Config.AgeThreshold, either on the next Insert or Get
//     or during a periodic sweep (Config.SweepInterval)
//
// A key is of low value when its frequency is below Config.FrequencyThreshold
// or it was inserted longer ago than Config.AgeThreshold. Archive write
// failures are logged and counted; the cache keeps working and the entry is
// lost. Compact rewrites the log keeping only the last record per key.
//
// # Quick Start
//
//	cache, err := bivium.New[string, User](bivium.Config{
//	    Capacity:    10_000,
//	    ArchivePath: "/var/lib/app/users.archive",
//	})
//	if err != nil {
//	    return err
//	}
//	defer cache.Close()
//
//	cache.Insert("user:123", user)
//	if u, found := cache.Get("user:123"); found {
//	    fmt.Println(u.Name)
//	}
//
// # Codecs
//
// Keys and values are written to the archive as text. New uses NewCodec,
// which formats integers, floats, booleans and strings with strconv and
// everything else as JSON. NewWithCodecs accepts custom codecs.
//
// # Hot Reload
//
// HotConfig watches a YAML, JSON or TOML file through Argus and applies the
// runtime tuning (frequency and age thresholds, archive-all-evictions) to a
// running cache. Store capacities are fixed at construction.
//
// # Observability
//
// Config.Logger receives structured debug, info and warning messages.
// Config.MetricsCollector receives latencies and cache events;
// github.com/agilira/bivium/otel implements it with OpenTelemetry.
//
// # Errors
//
// Errors are github.com/agilira/go-errors values with BIVIUM_* codes and
// structured context. Use GetErrorCode, GetErrorContext, IsConfigError,
// IsArchiveError and IsRetryable to inspect them.
//
// # Thread Safety
//
// All Cache methods are safe for concurrent use. A single mutex serialises
// operations so that store contents, statistics and dispersion always agree.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0
package bivium
