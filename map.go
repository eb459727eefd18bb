// Copyright 2024 The Cockroach Authors
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

// Package hopscotch is a Go implementation of hopscotch hashing, an
// open-addressed probing scheme in which every key, once inserted, is
// guaranteed to reside within a small fixed-size neighborhood of its ideal
// ("home") bucket, or else in an overflow list reserved for the rare key
// that could not be seated there even after displacement. See Herlihy,
// Shavit & Tzafrir, "Hopscotch Hashing" (2008).
//
// # Hopscotch hashing
//
// Like Swiss tables, hopscotch hashing is an open-addressing scheme, but
// where a Swiss table bounds probe length by scanning groups of control
// bytes, hopscotch hashing bounds it structurally: a per-bucket bitmap
// records, for each bucket, which of the next H buckets hold a key that
// hashes home to it. A lookup therefore inspects at most one bucket (to
// read its neighborhood bitmap) plus up to H candidate buckets, all within
// a single cache-friendly contiguous run — there is no probe-sequence walk
// across the whole table the way chaining or plain linear probing needs.
//
// The price for that bound is paid at insertion time: when the bucket
// nearest an empty slot is farther than H buckets from a key's home, the
// engine must walk backward through candidate "anchor" buckets and swap the
// empty slot progressively closer until it lands in range, or else give up
// and place the key in a fallback overflow list. This file and placement.go
// implement exactly that: bucket.go is the per-slot storage and
// neighborhood-bitmap encoding, placement.go is the displacement engine,
// overflow.go is the fallback list and its bookkeeping, and this file ties
// them together into the public Map type.
//
// # Performance
//
// Hopscotch hashing trades some of a Swiss table's extreme density for a
// hard cap on worst-case lookup cost: a lookup is always O(H) candidate
// comparisons plus, rarely, an O(overflow-length) list scan, regardless of
// load factor (up to the point a rehash is triggered). It is well suited to
// workloads that care about tail latency on Get as much as throughput.
package hopscotch

import (
	"container/list"
	"math"
	"math/bits"
)

// Map is an unordered associative container mapping keys of type K to
// values of type V using hopscotch hashing. The zero value is not usable;
// construct one with New or a NewStringMap/NewBytesMap/NewIntMap
// convenience constructor.
//
// A Map is NOT goroutine-safe: it has no internal synchronization, and
// concurrent readers are safe only while no writer is active and the
// supplied HashFunc/EqualFunc never mutate the map.
type Map[K any, V any] struct {
	// buckets is the physical bucket array (C1), N + H - 1 buckets long:
	// N logical buckets plus H-1 trailing buckets so the last logical
	// bucket's neighborhood never needs a bounds check.
	buckets []bucket[K, V]
	// overflow holds the key/value pairs that could not be seated in any
	// neighborhood without a rehash (C4).
	overflow *list.List

	count int // number of live elements: occupied buckets + overflow length
	n     int // logical bucket count N (what BucketCount reports)
	h     int // neighborhood size H, 1 <= h <= 62

	growthNum, growthDen int // growth ratio as a rational number >= 1.1
	pow2Mod              bool

	maxLoadFactor float64
	loadThreshold int

	hash      HashFunc[K]
	equal     EqualFunc[K]
	allocator Allocator[K, V]

	// requestedBuckets is only consulted during New; it has no further
	// effect once the bucket array has been allocated.
	requestedBuckets int
}

// New constructs a Map with the given options. A HashFunc and EqualFunc
// must be supplied via WithHash/WithEqual (or use a NewStringMap/
// NewBytesMap/NewIntMap convenience constructor), since there is no usable
// default for an arbitrary K; New panics if either is missing.
func New[K any, V any](opts ...Option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		h:                defaultNeighborhood,
		growthNum:        2,
		growthDen:        1,
		maxLoadFactor:    defaultMaxLoadFactor,
		requestedBuckets: defaultInitialBuckets,
		allocator:        defaultAllocator[K, V]{},
	}
	for _, opt := range opts {
		opt.apply(m)
	}
	if m.hash == nil {
		panic("hopscotch: no hash function supplied; use WithHash or a NewStringMap/NewBytesMap/NewIntMap constructor")
	}
	if m.equal == nil {
		panic("hopscotch: no equality predicate supplied; use WithEqual or a NewStringMap/NewBytesMap/NewIntMap constructor")
	}

	m.pow2Mod = isPowerOfTwo(m.growthNum) && isPowerOfTwo(m.growthDen) && m.growthNum%m.growthDen == 0

	n := m.requestedBuckets
	if n < 1 {
		n = 1
	}
	if m.pow2Mod {
		n = roundUpPow2(n)
	}
	m.n = n
	m.buckets = m.allocator.AllocBuckets(n + m.h - 1)
	m.overflow = list.New()
	m.updateLoadThreshold()
	return m
}

func (m *Map[K, V]) updateLoadThreshold() {
	m.loadThreshold = int(float64(m.n) * m.maxLoadFactor)
}

// homeFor computes the home bucket index for a raw hash value against a
// hypothetical logical bucket count n, per §4.2: mask-based modulo when the
// growth ratio permits power-of-two sizing, plain modulo otherwise. Both
// paths must agree for the same input when n is itself a power of two,
// which holds by construction whenever pow2Mod is true.
func (m *Map[K, V]) homeFor(hash uint64, n int) int {
	if m.pow2Mod {
		return int(hash & uint64(n-1))
	}
	return int(hash % uint64(n))
}

func (m *Map[K, V]) homeOf(key K) int {
	return m.homeFor(m.hash(key), m.n)
}

// nextSize computes the raw growth-ratio target for the current bucket
// count, before any count-driven or power-of-two rounding (§4.6 Step 1-2,
// applied in Rehash).
func (m *Map[K, V]) nextSize(n int) int {
	target := int(math.Ceil(float64(n) * float64(m.growthNum) / float64(m.growthDen)))
	if target <= n {
		target = n + 1
	}
	return target
}

// find implements §4.3: walk h's neighborhood bitmap, then fall back to the
// overflow list if h's overflow bit is set.
func (m *Map[K, V]) find(key K) (Iterator[K, V], bool) {
	h := m.homeOf(key)
	home := &m.buckets[h]
	for bitset := home.neighborhoodBits(); bitset != 0; bitset &= bitset - 1 {
		off := bits.TrailingZeros64(bitset)
		if m.equal(key, m.buckets[h+off].key) {
			return bucketIterator(m, h+off), true
		}
	}
	if !home.hasOverflow() {
		return m.End(), false
	}
	return m.findOverflow(key)
}

// Find looks up key, returning an Iterator to its position and true, or
// End() and false if absent. Find never mutates the map.
func (m *Map[K, V]) Find(key K) (Iterator[K, V], bool) {
	return m.find(key)
}

// At returns the value for key, or ErrKeyNotFound if key is absent. The map
// is unchanged either way.
func (m *Map[K, V]) At(key K) (V, error) {
	it, ok := m.find(key)
	if !ok {
		var zero V
		return zero, ErrKeyNotFound
	}
	return it.Value(), nil
}

// Count returns 1 if key is present, 0 otherwise.
func (m *Map[K, V]) Count(key K) int {
	if _, ok := m.find(key); ok {
		return 1
	}
	return 0
}

// GetOrInsert returns a pointer to the value for key, default-constructing
// and inserting a zero value first if key is absent. This is the Go
// rendering of the source's operator[]: Go has no operator overloading, so
// the caller dereferences and assigns (*m.GetOrInsert(k) = v) in place of
// m[k] = v.
func (m *Map[K, V]) GetOrInsert(key K) *V {
	var zero V
	it, _ := m.insert(key, zero)
	if it.inOverflow() {
		return &it.overflowElem.Value.(*overflowEntry[K, V]).value
	}
	return &m.buckets[it.bucketIdx].value
}

// Insert inserts key/value, returning (iterator-to-existing, false) if key
// is already present (the existing value is left untouched), or
// (iterator-to-new, true) otherwise.
func (m *Map[K, V]) Insert(key K, value V) (Iterator[K, V], bool) {
	return m.insert(key, value)
}

// TryEmplace constructs value in place for key only if key is absent,
// behaving identically to Insert (Go's value semantics give no separate
// piecewise-construction path the way the source's variadic-args overload
// does).
func (m *Map[K, V]) TryEmplace(key K, value V) (Iterator[K, V], bool) {
	return m.insert(key, value)
}

// Erase removes the element at it and returns an iterator to the element
// that followed it, per §4.5. Erasing invalidates only the iterator to the
// erased element (§3 Lifecycle).
func (m *Map[K, V]) Erase(it Iterator[K, V]) Iterator[K, V] {
	next := it.Next()
	if it.inOverflow() {
		entry := it.overflowElem.Value.(*overflowEntry[K, V])
		m.eraseOverflow(it.overflowElem, entry.home)
	} else {
		b := &m.buckets[it.bucketIdx]
		h := m.homeOf(b.key)
		b.remove()
		m.buckets[h].toggleNeighbor(it.bucketIdx - h)
		m.count--
	}
	m.checkInvariants()
	return next
}

// EraseKey composes Find with Erase, returning true if key was present (and
// removed). It is a no-op if key is absent.
func (m *Map[K, V]) EraseKey(key K) bool {
	it, ok := m.find(key)
	if !ok {
		return false
	}
	m.Erase(it)
	return true
}

// EraseRange erases every element in [first, last), returning last (or
// whatever iterator first has advanced to, which for a well-formed range is
// last).
func (m *Map[K, V]) EraseRange(first, last Iterator[K, V]) Iterator[K, V] {
	for first != last {
		first = m.Erase(first)
	}
	return first
}

// Clear removes every element. It invalidates every iterator and does not
// shrink the bucket array (§3 Lifecycle, §4.5).
func (m *Map[K, V]) Clear() {
	for i := range m.buckets {
		m.buckets[i] = bucket[K, V]{}
	}
	m.overflow.Init()
	m.count = 0
	m.checkInvariants()
}

// Swap exchanges the entire contents (bucket array, overflow list, hash/
// equality/allocator, size parameters) of m and other in O(1).
func (m *Map[K, V]) Swap(other *Map[K, V]) {
	*m, *other = *other, *m
}

// Len returns the number of elements currently stored.
func (m *Map[K, V]) Len() int { return m.count }

// IsEmpty reports whether Len() == 0.
func (m *Map[K, V]) IsEmpty() bool { return m.count == 0 }

// MaxSize returns the largest logical bucket count the N+H-1 array-length
// arithmetic can represent without integer overflow.
func (m *Map[K, V]) MaxSize() int { return math.MaxInt - m.h }

// BucketCount returns N, the logical bucket count.
func (m *Map[K, V]) BucketCount() int { return m.n }

// LoadFactor returns size/N.
func (m *Map[K, V]) LoadFactor() float64 {
	if m.n == 0 {
		return 0
	}
	return float64(m.count) / float64(m.n)
}

// MaxLoadFactor returns the load factor above which Insert triggers a
// rehash (default 0.9).
func (m *Map[K, V]) MaxLoadFactor() float64 { return m.maxLoadFactor }

// SetMaxLoadFactor changes the max load factor and recomputes the load
// threshold. It does not itself trigger a rehash, even if the new factor is
// already exceeded; the next Insert will.
func (m *Map[K, V]) SetMaxLoadFactor(factor float64) {
	if factor <= 0 || factor > 1 {
		panic("hopscotch: max load factor must be in (0,1]")
	}
	m.maxLoadFactor = factor
	m.updateLoadThreshold()
}

// HashFunc returns the hash function this Map was constructed with.
func (m *Map[K, V]) HashFunc() HashFunc[K] { return m.hash }

// KeyEqual returns the equality predicate this Map was constructed with.
func (m *Map[K, V]) KeyEqual() EqualFunc[K] { return m.equal }

// GetAllocator returns the Allocator this Map was constructed with.
func (m *Map[K, V]) GetAllocator() Allocator[K, V] { return m.allocator }

// Reserve grows the bucket array, if needed, so that n elements can be
// inserted without a further rehash.
func (m *Map[K, V]) Reserve(n int) {
	if n <= 0 {
		return
	}
	needed := int(math.Ceil(float64(n) / m.maxLoadFactor))
	if needed > m.n {
		m.Rehash(needed)
	}
}

// All calls yield once for every (key, value) pair currently stored, in
// unspecified order, stopping early if yield returns false. The map must
// not be mutated from within yield.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.buckets {
		if m.buckets[i].isOccupied() {
			if !yield(m.buckets[i].key, m.buckets[i].value) {
				return
			}
		}
	}
	for e := m.overflow.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*overflowEntry[K, V])
		if !yield(entry.key, entry.value) {
			return
		}
	}
}

func isPowerOfTwo(x int) bool { return x > 0 && x&(x-1) == 0 }

func roundUpPow2(n int) int {
	if n < 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
