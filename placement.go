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

package hopscotch

import (
	"container/list"
	"math/bits"
)

// findEmptyBucket linear-probes forward from from (inclusive) for the first
// empty bucket, stopping after maxProbe buckets or at the end of the
// physical array, whichever comes first (§4.4 Step C). It returns (-1,
// false) if none was found within that bound.
func (m *Map[K, V]) findEmptyBucket(from int) (int, bool) {
	limit := from + maxProbe
	if limit > len(m.buckets) {
		limit = len(m.buckets)
	}
	for i := from; i < limit; i++ {
		if !m.buckets[i].isOccupied() {
			return i, true
		}
	}
	return -1, false
}

// hopscotchMove performs one step of Step E: find a bucket occupied by a key
// whose home is within H-1 buckets before e and whose lowest-offset neighbor
// is still behind e, swap that key into e, and return the now-empty bucket
// (which sits closer to home than e did). It returns (0, false) if no anchor
// bucket in range can give up a neighbor that lands at or before e.
func (m *Map[K, V]) hopscotchMove(e int) (int, bool) {
	start := e - m.h + 1
	if start < 0 {
		start = 0
	}
	for c := start; c < e; c++ {
		bitset := m.buckets[c].neighborhoodBits()
		if bitset == 0 {
			continue
		}
		j := bits.TrailingZeros64(bitset)
		src := c + j
		if src >= e {
			// The lowest-offset neighbor of c is already at or beyond e;
			// no neighbor of c can be closer to e than e itself.
			continue
		}
		m.buckets[src].swapIntoEmpty(&m.buckets[e])
		m.buckets[c].toggleNeighbor(j)
		m.buckets[c].toggleNeighbor(e - c)
		return src, true
	}
	return 0, false
}

// tryPlace attempts Steps C/D/E: find an empty bucket anywhere reachable by
// linear probing, then walk it back toward h's neighborhood via repeated
// hopscotch moves. It returns (iterator, true) on success, or the zero
// iterator and false if no empty bucket could be brought within H of h
// (either none was found at all, or the chain of moves got stuck).
func (m *Map[K, V]) tryPlace(h int, key K, value V) (Iterator[K, V], bool) {
	e, ok := m.findEmptyBucket(h)
	if !ok {
		return Iterator[K, V]{}, false
	}
	for e-h >= m.h {
		next, ok := m.hopscotchMove(e)
		if !ok {
			return Iterator[K, V]{}, false
		}
		e = next
	}
	m.buckets[e].install(key, value)
	m.buckets[h].toggleNeighbor(e - h)
	m.count++
	return bucketIterator(m, e), true
}

// willNeighborhoodChangeOnRehash reports whether any occupant of h's
// physical neighborhood (buckets h..h+H-1) would hash to a different home
// bucket under the next rehash size, per §4.4 Step F. By the time Step F is
// reached, every bucket in that range is occupied (Steps C/D would have
// trivially used any empty one), so this only needs to check homes, not
// occupancy.
func (m *Map[K, V]) willNeighborhoodChangeOnRehash(h int) bool {
	nextN := m.nextSize(m.n)
	if m.pow2Mod {
		nextN = roundUpPow2(nextN)
	}
	limit := h + m.h
	if limit > len(m.buckets) {
		limit = len(m.buckets)
	}
	for i := h; i < limit; i++ {
		if !m.buckets[i].isOccupied() {
			continue
		}
		if m.homeFor(m.hash(m.buckets[i].key), m.n) != m.homeFor(m.hash(m.buckets[i].key), nextN) {
			return true
		}
	}
	return false
}

// insert implements §4.4 end to end: Step A dedupes against an existing
// key, Step B preemptively grows the table if the load threshold would be
// exceeded, then Steps C-F place the new pair, retrying against a freshly
// grown table if Step F decides a rehash would actually help.
func (m *Map[K, V]) insert(key K, value V) (Iterator[K, V], bool) {
	if it, ok := m.find(key); ok {
		return it, false
	}

	if m.count+1 > m.loadThreshold {
		m.Rehash(m.nextSize(m.n))
	}

	for {
		h := m.homeOf(key)
		if it, ok := m.tryPlace(h, key, value); ok {
			m.checkInvariants()
			return it, true
		}
		if !m.willNeighborhoodChangeOnRehash(h) {
			it := m.pushOverflow(key, value, h)
			m.checkInvariants()
			return it, true
		}
		m.Rehash(m.nextSize(m.n))
	}
}

// Rehash grows (or reshapes) the bucket array so that its logical bucket
// count is at least requested, moving every element — both from the old
// bucket array and from the overflow list — into the new one (§4.6).
//
// Every bucket move goes through tryPlace, which is guaranteed not to
// recurse into Rehash itself: the new array is sized so that every
// previously-seated element (and the load factor permits) can be placed
// without triggering Step F again. Overflow elements move without going
// through tryPlace's home computation twice; they are simply re-inserted
// by key since their prior placement gives no information about the new
// array's neighborhoods.
func (m *Map[K, V]) Rehash(requested int) {
	target := requested
	minForLoad := int(float64(m.count)/m.maxLoadFactor) + 1
	if minForLoad > target {
		target = minForLoad
	}
	if target < 1 {
		target = 1
	}
	if m.pow2Mod {
		target = roundUpPow2(target)
	}

	oldBuckets := m.buckets
	oldOverflow := m.overflow

	m.buckets = m.allocator.AllocBuckets(target + m.h - 1)
	m.overflow = list.New()
	m.n = target
	m.count = 0
	m.updateLoadThreshold()

	for i := range oldBuckets {
		if !oldBuckets[i].isOccupied() {
			continue
		}
		key, value := oldBuckets[i].key, oldBuckets[i].value
		h := m.homeOf(key)
		if _, ok := m.tryPlace(h, key, value); ok {
			continue
		}
		// The new array was sized to avoid this, but an adversarial hash
		// function could still force it; fall back to overflow rather than
		// recursing into another Rehash.
		m.pushOverflow(key, value, h)
	}

	for e := oldOverflow.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*overflowEntry[K, V])
		h := m.homeOf(entry.key)
		if _, ok := m.tryPlace(h, entry.key, entry.value); ok {
			continue
		}
		m.pushOverflow(entry.key, entry.value, h)
	}

	m.allocator.FreeBuckets(oldBuckets)
	m.checkInvariants()
}
