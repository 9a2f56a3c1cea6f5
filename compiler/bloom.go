// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package compiler

// FNV-1a constants, inlined to hash strings without allocating.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

// hashString returns the 64-bit FNV-1a hash of s.
func hashString(s string) uint64 {
	h := uint64(fnvOffset64)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime64
	}

	return h
}

// BloomFilter is a probabilistic set of strings. A lookup answers either
// "definitely absent" or "possibly present"; it never reports a false
// negative, and false positives only cost a map lookup.
//
// The Matcher puts one in front of its static route map so that most paths
// with no literal route are rejected before hashing into the map.
//
// How it works:
//  1. The filter is a bit array of size bits, packed 64 per word.
//  2. Each string is hashed once with FNV-1a.
//  3. The hash is XOR-ed with each of the k seeds and reduced modulo size,
//     giving k bit positions.
//  4. Add sets all k bits.
//  5. MayContain reports present only when all k bits are set.
type BloomFilter struct {
	bits  []uint64 // bit array, 64 bits per word
	size  uint64   // number of usable bits
	seeds []uint64 // one seed per hash function
}

// NewBloomFilter returns a filter with size bits and k hash functions.
// Non-positive arguments are raised to 1.
func NewBloomFilter(size uint64, k int) *BloomFilter {
	if size == 0 {
		size = 1
	}
	if k < 1 {
		k = 1
	}

	bf := &BloomFilter{
		bits:  make([]uint64, (size+63)/64),
		size:  size,
		seeds: make([]uint64, k),
	}
	for i := range bf.seeds {
		//nolint:gosec // G115: k is tiny
		bf.seeds[i] = uint64(i+1) * 0x9e3779b97f4a7c15
	}

	return bf
}

// position maps one seeded hash to a bit index in [0, size).
func (bf *BloomFilter) position(hash, seed uint64) uint64 {
	return (hash ^ seed) % bf.size
}

// Add records s in the filter.
func (bf *BloomFilter) Add(s string) {
	hash := hashString(s)
	for _, seed := range bf.seeds {
		pos := bf.position(hash, seed)
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
}

// MayContain reports whether s may have been added.
// A false result is always correct.
func (bf *BloomFilter) MayContain(s string) bool {
	hash := hashString(s)
	for _, seed := range bf.seeds {
		pos := bf.position(hash, seed)
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}

	return true
}
