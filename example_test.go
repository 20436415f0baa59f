// example_test.go: godoc examples for the Bivium cache
//
// These examples appear in the generated documentation on pkg.go.dev
// and are executed as part of the test suite to ensure they remain valid.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium_test

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agilira/bivium"
)

// ExampleNew demonstrates basic cache creation and usage.
func ExampleNew() {
	cache, err := bivium.New[int, int](bivium.Config{Capacity: 100})
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	cache.Insert(1, 10)
	cache.Insert(2, 20)
	cache.Insert(3, 30)

	if v, found := cache.Get(2); found {
		fmt.Println("value for 2:", v)
	}

	fmt.Println("keys > 1:", len(cache.Filter(func(k int) bool { return k > 1 })))
	fmt.Println("sorted:", cache.Sort(cmp.Compare[int]))

	// Output:
	// value for 2: 20
	// keys > 1: 2
	// sorted: [1 2 3]
}

// ExampleCache_Status prints the state of both stores.
func ExampleCache_Status() {
	cache, _ := bivium.New[int, int](bivium.Config{Capacity: 4})
	defer cache.Close()

	cache.Insert(1, 10)
	cache.Insert(2, 20)
	cache.Insert(3, 30)
	cache.Get(2)

	fmt.Print(cache.Status())

	// Output:
	// Cache Status:
	// LRU Cache (0/4):
	// MRU Cache (3/4): 2=20 3=30 1=10
	// Active policy: MRU (switches: 0)
	// Dispersion: LRU=0.0000 MRU=0.2222
	// Archive: disabled
}

// ExampleCache_Archive offloads a rarely used entry and restores it on read.
func ExampleCache_Archive() {
	dir, err := os.MkdirTemp("", "bivium-example")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	cache, _ := bivium.New[string, string](bivium.Config{
		Capacity:    16,
		ArchivePath: filepath.Join(dir, "bivium.archive"),
	})
	defer cache.Close()

	cache.Insert("session:42", "alice")
	fmt.Println("archivable:", cache.ShouldArchive("session:42"))
	fmt.Println("archived:", cache.Archive("session:42"))
	fmt.Println("resident:", cache.Contains("session:42"))

	v, found := cache.Get("session:42")
	fmt.Println("restored:", v, found)

	// Output:
	// archivable: true
	// archived: true
	// resident: false
	// restored: alice true
}

// ExampleCache_Stats shows the counters returned by Stats.
func ExampleCache_Stats() {
	cache, _ := bivium.New[string, int](bivium.Config{Capacity: 8})
	defer cache.Close()

	cache.Insert("a", 1)
	cache.Get("a")
	cache.Get("missing")

	stats := cache.Stats()
	fmt.Printf("hits=%d misses=%d ratio=%.1f size=%d\n", stats.Hits, stats.Misses, stats.HitRatio(), stats.Size())

	// Output: hits=1 misses=1 ratio=50.0 size=1
}
