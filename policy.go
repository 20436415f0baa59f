// policy.go: eviction policies for the ordered stores
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package bivium

import "container/list"

// Policy selects which end of a store's recency list is evicted on overflow.
// Both policies move inserted and accessed keys to the front of the list.
type Policy uint8

const (
	// PolicyLRU evicts the least recently used entry (the back of the list).
	PolicyLRU Policy = iota

	// PolicyMRU evicts the most recently used entry (the front of the list).
	PolicyMRU
)

// String returns "LRU" or "MRU".
func (p Policy) String() string {
	switch p {
	case PolicyLRU:
		return "LRU"
	case PolicyMRU:
		return "MRU"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether p is one of the defined policies.
func (p Policy) Valid() bool {
	return p == PolicyLRU || p == PolicyMRU
}

// victim returns the element the policy evicts from order, or nil if order is empty.
func (p Policy) victim(order *list.List) *list.Element {
	if p == PolicyMRU {
		return order.Front()
	}
	return order.Back()
}
