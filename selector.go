// selector.go: choice of the store receiving writes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

// policySelector owns the two stores and remembers the last active policy.
// The active policy is derived from the dispersion on every write and is
// never persisted.
type policySelector[K comparable, V any] struct {
	lru      *Store[K, V]
	mru      *Store[K, V]
	active   Policy
	switches uint64
}

func newPolicySelector[K comparable, V any](lruCapacity, mruCapacity int) (*policySelector[K, V], error) {
	lru, err := NewStore[K, V](lruCapacity, PolicyLRU)
	if err != nil {
		return nil, err
	}
	mru, err := NewStore[K, V](mruCapacity, PolicyMRU)
	if err != nil {
		return nil, err
	}
	// An empty cache has equal dispersions, so writes start in MRU.
	return &policySelector[K, V]{lru: lru, mru: mru, active: PolicyMRU}, nil
}

// selectForWrite re-evaluates the active policy and returns its store.
// switched reports whether the policy differs from the previous write.
func (p *policySelector[K, V]) selectForWrite(d Dispersion) (store *Store[K, V], switched bool) {
	next := d.Active()
	if next != p.active {
		p.active = next
		p.switches++
		switched = true
	}
	return p.storeFor(next), switched
}

func (p *policySelector[K, V]) storeFor(policy Policy) *Store[K, V] {
	if policy == PolicyLRU {
		return p.lru
	}
	return p.mru
}

// locate returns the store holding key, probing LRU before MRU.
func (p *policySelector[K, V]) locate(key K) (*Store[K, V], bool) {
	if p.lru.Contains(key) {
		return p.lru, true
	}
	if p.mru.Contains(key) {
		return p.mru, true
	}
	return nil, false
}

// residentKeys returns LRU keys followed by MRU keys.
func (p *policySelector[K, V]) residentKeys() []K {
	keys := make([]K, 0, p.lru.Len()+p.mru.Len())
	keys = append(keys, p.lru.Keys()...)
	return append(keys, p.mru.Keys()...)
}
