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

import "container/list"

// overflowEntry is a single element of the overflow list (C4): a key/value
// pair whose home bucket could not seat it within its neighborhood even
// after hopscotch displacement, and for which a rehash was judged unable
// to help (§4.4 Step F).
type overflowEntry[K any, V any] struct {
	key   K
	value V
	// home caches bucket index the key hashed home to at push time, so
	// erase-time overflow-bit bookkeeping does not need to rehash the key.
	// The source recomputes m_hash(it->first) on every scan instead; since
	// the hash function here is an arbitrary external collaborator that
	// may be expensive, caching the already-known home avoids calling it
	// again for work already done once at insertion.
	home int
}

// pushOverflow appends key/value to the overflow list, marks the home
// bucket's overflow bit, and returns an iterator to the new element. Per
// P4, every push leaves bucket home's overflow bit set.
func (m *Map[K, V]) pushOverflow(key K, value V, home int) Iterator[K, V] {
	elem := m.overflow.PushBack(&overflowEntry[K, V]{key: key, value: value, home: home})
	m.buckets[home].setOverflow(true)
	m.count++
	return overflowIterator(m, elem)
}

// findOverflow linearly scans the overflow list for a key equal to key,
// returning the found Iterator and true, or End() and false.
// Open Question 2 (spec §9) permits indexing the overflow list by home
// bucket if profiling warrants it; absent profiling data this keeps the
// source's simple linear scan.
func (m *Map[K, V]) findOverflow(key K) (Iterator[K, V], bool) {
	for e := m.overflow.Front(); e != nil; e = e.Next() {
		if m.equal(key, e.Value.(*overflowEntry[K, V]).key) {
			return overflowIterator(m, e), true
		}
	}
	return m.End(), false
}

// eraseOverflow splices elem out of the overflow list and, if no remaining
// element has home bucket home, clears home's overflow bit (P4).
func (m *Map[K, V]) eraseOverflow(elem *list.Element, home int) {
	m.overflow.Remove(elem)
	m.count--

	for e := m.overflow.Front(); e != nil; e = e.Next() {
		if e.Value.(*overflowEntry[K, V]).home == home {
			return
		}
	}
	m.buckets[home].setOverflow(false)
}
