// stats.go: access statistics and incremental frequency dispersion
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"container/list"
	"math/bits"
	"time"
)

// Dispersion is the population variance of access frequency among the keys
// resident in each store. An empty store has a dispersion of 0.
type Dispersion struct {
	LRU float64
	MRU float64
}

// Active returns the policy whose store receives the next write.
// Ties resolve to MRU.
func (d Dispersion) Active() Policy {
	if d.LRU < d.MRU {
		return PolicyLRU
	}
	return PolicyMRU
}

// moments holds running aggregates of the resident keys of one store.
// A frequency is 1 + c*step for an integral step count c, so the aggregates
// are kept over c and stay exact for any step.
type moments struct {
	n     uint64
	sum   uint64
	sumSq uint64
}

func (m *moments) add(c uint64) {
	m.n++
	m.sum += c
	m.sumSq += c * c
}

func (m *moments) remove(c uint64) {
	m.n--
	m.sum -= c
	m.sumSq -= c * c
}

// variance returns step^2 * (n*sumSq - sum^2) / n^2, which equals
// mean((f - mean)^2) over the frequencies. The numerator is computed in
// 128 bits, so equal frequencies yield exactly 0.
func (m *moments) variance(step float64) float64 {
	if m.n == 0 {
		return 0
	}
	aHi, aLo := bits.Mul64(m.n, m.sumSq)
	bHi, bLo := bits.Mul64(m.sum, m.sum)
	lo, borrow := bits.Sub64(aLo, bLo, 0)
	hi, _ := bits.Sub64(aHi, bHi, borrow)
	if hi == 0 && lo == 0 {
		return 0
	}
	numerator := float64(hi)*(1<<64) + float64(lo)
	n := float64(m.n)
	return step * step * numerator / (n * n)
}

// keyStats is the tracked state of one key.
type keyStats struct {
	steps      uint64 // accesses after the first
	insertedAt int64  // nanoseconds from the TimeProvider
	queued     *list.Element
	store      Policy
	resident   bool
}

// accessStats tracks per-key access frequency and insertion time, and the
// per-store moments the dispersion is derived from.
// Concurrent access must be guarded by the caller.
type accessStats[K comparable] struct {
	step  float64
	clock TimeProvider
	keys  map[K]*keyStats
	queue *list.List // keys in insertion order, oldest first
	lru   moments
	mru   moments
}

func newAccessStats[K comparable](step float64, clock TimeProvider) *accessStats[K] {
	return &accessStats[K]{
		step:  step,
		clock: clock,
		keys:  make(map[K]*keyStats),
		queue: list.New(),
	}
}

// record counts one access to key. The first access sets the frequency to 1
// and stamps the insertion time; later accesses add the configured step.
func (s *accessStats[K]) record(key K) (frequency float64, fresh bool) {
	ks, found := s.keys[key]
	if !found {
		s.keys[key] = &keyStats{
			insertedAt: s.clock.Now(),
			queued:     s.queue.PushBack(key),
		}
		return initialFrequency, true
	}

	if ks.resident {
		m := s.momentsOf(ks.store)
		m.remove(ks.steps)
		ks.steps++
		m.add(ks.steps)
	} else {
		ks.steps++
	}
	return s.frequencyOf(ks), false
}

// place marks key as resident in the store with the given policy.
func (s *accessStats[K]) place(key K, store Policy) {
	ks, found := s.keys[key]
	if !found {
		return
	}
	if ks.resident {
		if ks.store == store {
			return
		}
		s.momentsOf(ks.store).remove(ks.steps)
	}
	ks.store, ks.resident = store, true
	s.momentsOf(store).add(ks.steps)
}

// forget drops every trace of key.
func (s *accessStats[K]) forget(key K) {
	ks, found := s.keys[key]
	if !found {
		return
	}
	if ks.resident {
		s.momentsOf(ks.store).remove(ks.steps)
	}
	s.queue.Remove(ks.queued)
	delete(s.keys, key)
}

func (s *accessStats[K]) frequency(key K) (float64, bool) {
	ks, found := s.keys[key]
	if !found {
		return 0, false
	}
	return s.frequencyOf(ks), true
}

func (s *accessStats[K]) frequencyOf(ks *keyStats) float64 {
	return initialFrequency + float64(ks.steps)*s.step
}

func (s *accessStats[K]) age(key K) (time.Duration, bool) {
	ks, found := s.keys[key]
	if !found {
		return 0, false
	}
	return time.Duration(s.clock.Now() - ks.insertedAt), true
}

// oldest returns the tracked key with the earliest insertion time.
func (s *accessStats[K]) oldest() (K, bool) {
	if front := s.queue.Front(); front != nil {
		return front.Value.(K), true
	}
	var zero K
	return zero, false
}

// secondOldest returns the key inserted right after the oldest one.
func (s *accessStats[K]) secondOldest() (K, bool) {
	if front := s.queue.Front(); front != nil {
		if next := front.Next(); next != nil {
			return next.Value.(K), true
		}
	}
	var zero K
	return zero, false
}

func (s *accessStats[K]) dispersion() Dispersion {
	return Dispersion{LRU: s.lru.variance(s.step), MRU: s.mru.variance(s.step)}
}

func (s *accessStats[K]) len() int {
	return len(s.keys)
}

func (s *accessStats[K]) reset() {
	clear(s.keys)
	s.queue.Init()
	s.lru, s.mru = moments{}, moments{}
}

func (s *accessStats[K]) momentsOf(store Policy) *moments {
	if store == PolicyLRU {
		return &s.lru
	}
	return &s.mru
}
