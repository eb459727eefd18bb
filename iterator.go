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

// Iterator names a position of a single key/value pair within a Map: either
// a bucket-array index, or an element of the overflow list. It is a plain
// comparable value (no adapter sugar — composing/transforming iterators is
// out of scope, §1), so two iterators from the same Map can be compared
// with ==.
//
// Per §3 Lifecycle: Clear and assignment invalidate every iterator; Insert
// invalidates every iterator whenever it triggers a rehash or any
// displacement swap; Erase invalidates only the iterator to the erased
// element.
type Iterator[K any, V any] struct {
	m            *Map[K, V]
	bucketIdx    int
	overflowElem *list.Element
}

func bucketIterator[K any, V any](m *Map[K, V], idx int) Iterator[K, V] {
	return Iterator[K, V]{m: m, bucketIdx: idx}
}

func overflowIterator[K any, V any](m *Map[K, V], elem *list.Element) Iterator[K, V] {
	return Iterator[K, V]{m: m, bucketIdx: -1, overflowElem: elem}
}

// End returns the past-the-end iterator for m, also returned by any lookup
// or insert that does not find or create a position.
func (m *Map[K, V]) End() Iterator[K, V] {
	return bucketIterator(m, len(m.buckets))
}

func (m *Map[K, V]) begin() Iterator[K, V] {
	for i := range m.buckets {
		if m.buckets[i].isOccupied() {
			return bucketIterator(m, i)
		}
	}
	if front := m.overflow.Front(); front != nil {
		return overflowIterator(m, front)
	}
	return m.End()
}

func (it Iterator[K, V]) inOverflow() bool {
	return it.bucketIdx < 0
}

// Valid reports whether it names a live element (i.e. it is not the
// past-the-end iterator).
func (it Iterator[K, V]) Valid() bool {
	if it.inOverflow() {
		return it.overflowElem != nil
	}
	return it.bucketIdx >= 0 && it.bucketIdx < len(it.m.buckets)
}

// Key returns the key at this position. It panics if the iterator is not
// Valid, exactly as dereferencing the source's end() iterator is undefined
// behavior.
func (it Iterator[K, V]) Key() K {
	if it.inOverflow() {
		return it.overflowElem.Value.(*overflowEntry[K, V]).key
	}
	return it.m.buckets[it.bucketIdx].key
}

// Value returns the value at this position.
func (it Iterator[K, V]) Value() V {
	if it.inOverflow() {
		return it.overflowElem.Value.(*overflowEntry[K, V]).value
	}
	return it.m.buckets[it.bucketIdx].value
}

// SetValue overwrites the value at this position in place, without
// affecting iterator validity.
func (it Iterator[K, V]) SetValue(value V) {
	if it.inOverflow() {
		it.overflowElem.Value.(*overflowEntry[K, V]).value = value
		return
	}
	it.m.buckets[it.bucketIdx].value = value
}

// Next advances it to the next position in iteration order (unspecified
// order across the whole map). Advancing the end iterator returns the end
// iterator.
func (it Iterator[K, V]) Next() Iterator[K, V] {
	if it.inOverflow() {
		if next := it.overflowElem.Next(); next != nil {
			return overflowIterator(it.m, next)
		}
		return it.m.End()
	}
	if it.bucketIdx >= len(it.m.buckets) {
		return it.m.End()
	}
	for i := it.bucketIdx + 1; i < len(it.m.buckets); i++ {
		if it.m.buckets[i].isOccupied() {
			return bucketIterator(it.m, i)
		}
	}
	if front := it.m.overflow.Front(); front != nil {
		return overflowIterator(it.m, front)
	}
	return it.m.End()
}
