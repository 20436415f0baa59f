// store.go: bounded key-value store with an explicit recency order
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import (
	"container/list"
	"iter"
)

// Entry is a key-value pair held by a Store.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Store is a bounded key-value store that keeps its keys in recency order.
// The front of the order is the most recently inserted or accessed key.
// Overflow evicts one entry chosen by the store's Policy.
//
// All operations are O(1) except Keys and All.
// Concurrent access must be guarded by the caller.
type Store[K comparable, V any] struct {
	capacity int
	policy   Policy
	order    *list.List // of *Entry[K, V]
	index    map[K]*list.Element
}

// NewStore creates a store holding at most capacity entries.
// Returns BIVIUM_INVALID_CAPACITY if capacity <= 0 and
// BIVIUM_INVALID_CONFIG if policy is not a defined Policy.
func NewStore[K comparable, V any](capacity int, policy Policy) (*Store[K, V], error) {
	if capacity <= 0 {
		return nil, NewErrInvalidCapacity(policy.String(), capacity)
	}
	if !policy.Valid() {
		return nil, NewErrInvalidConfig("policy", policy)
	}
	return &Store[K, V]{
		capacity: capacity,
		policy:   policy,
		order:    list.New(),
		index:    make(map[K]*list.Element, capacity),
	}, nil
}

// Insert stores value under key and moves key to the front.
// If key is absent and the store is full, one entry is evicted first and
// returned with ok set to true.
func (s *Store[K, V]) Insert(key K, value V) (evicted Entry[K, V], ok bool) {
	if elem, found := s.index[key]; found {
		elem.Value.(*Entry[K, V]).Value = value
		s.order.MoveToFront(elem)
		return evicted, false
	}

	if s.order.Len() >= s.capacity {
		if victim := s.policy.victim(s.order); victim != nil {
			evicted, ok = *s.removeElement(victim), true
		}
	}

	s.index[key] = s.order.PushFront(&Entry[K, V]{Key: key, Value: value})
	return evicted, ok
}

// Get returns the value for key and marks it as most recently used.
func (s *Store[K, V]) Get(key K) (V, bool) {
	elem, found := s.index[key]
	if !found {
		var zero V
		return zero, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*Entry[K, V]).Value, true
}

// Peek returns the value for key without changing the recency order.
func (s *Store[K, V]) Peek(key K) (V, bool) {
	elem, found := s.index[key]
	if !found {
		var zero V
		return zero, false
	}
	return elem.Value.(*Entry[K, V]).Value, true
}

// Contains reports whether key is resident. It has no side effects.
func (s *Store[K, V]) Contains(key K) bool {
	_, found := s.index[key]
	return found
}

// Remove deletes key and returns its value. Removing an absent key is a no-op.
func (s *Store[K, V]) Remove(key K) (V, bool) {
	elem, found := s.index[key]
	if !found {
		var zero V
		return zero, false
	}
	return s.removeElement(elem).Value, true
}

// Victim returns the key the next overflowing Insert would evict.
func (s *Store[K, V]) Victim() (K, bool) {
	if elem := s.policy.victim(s.order); elem != nil {
		return elem.Value.(*Entry[K, V]).Key, true
	}
	var zero K
	return zero, false
}

// Keys returns a snapshot of the resident keys, most recent first.
func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*Entry[K, V]).Key)
	}
	return keys
}

// All yields the resident entries, most recent first.
// The store must not be modified during iteration.
func (s *Store[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for elem := s.order.Front(); elem != nil; elem = elem.Next() {
			entry := elem.Value.(*Entry[K, V])
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}
}

// Len returns the number of resident keys.
func (s *Store[K, V]) Len() int {
	return s.order.Len()
}

// Capacity returns the maximum number of resident keys.
func (s *Store[K, V]) Capacity() int {
	return s.capacity
}

// Policy returns the store's eviction policy.
func (s *Store[K, V]) Policy() Policy {
	return s.policy
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	s.order.Init()
	clear(s.index)
}

func (s *Store[K, V]) removeElement(elem *list.Element) *Entry[K, V] {
	entry := s.order.Remove(elem).(*Entry[K, V])
	delete(s.index, entry.Key)
	return entry
}
