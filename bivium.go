// Package bivium provides an adaptive in-memory cache that moves between
// LRU and MRU eviction based on the dispersion of access frequency.
//
// Bivium keeps two bounded stores, one evicting the least recently used entry
// and one evicting the most recently used entry. Every write lands in the store
// whose resident keys currently show the lower frequency variance. Evicted and
// low-value entries can be archived to an append-only log and are restored
// transparently on a later miss after checksum verification.
//
// Example usage:
//
//	cache, err := bivium.New[int, string](bivium.Config{
//		Capacity:    1_000,
//		ArchivePath: "bivium.archive",
//	})
//
//	cache.Insert(42, "answer")
//	value, found := cache.Get(42)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package bivium

import "time"

const (
	// Version of Bivium cache library
	Version = "v0.1.0-dev"

	// DefaultCapacity is the default capacity of each of the two stores
	DefaultCapacity = 1_000

	// DefaultFrequencyStep is added to a key's frequency on every access after the first
	DefaultFrequencyStep = 1.0

	// DefaultFrequencyThreshold marks keys accessed less often than this as archivable
	DefaultFrequencyThreshold = 2.0

	// DefaultAgeThreshold marks keys older than this as archivable
	DefaultAgeThreshold = 300 * time.Second

	// initialFrequency is the frequency of a key on its first recorded access
	initialFrequency = 1.0
)
