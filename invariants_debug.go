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

//go:build invariants

package hopscotch

import "fmt"

const invariants = true

// checkInvariants re-verifies P2/P4/P5 after every mutating operation, and
// P3 in one direction only: every occupied bucket's bit must be set on its
// home bucket, but a set neighbor bit with no matching occupant is not
// detected.
// Only compiled in with -tags invariants; a violation indicates a bug in
// the placement engine or bookkeeping and is a hard failure (§7
// DestructorFailure/invariant-violation class), so it panics rather than
// returning an error.
func (m *Map[K, V]) checkInvariants() {
	overflowHome := make(map[int]bool)
	for e := m.overflow.Front(); e != nil; e = e.Next() {
		overflowHome[e.Value.(*overflowEntry[K, V]).home] = true
	}

	occupied := 0
	for i := range m.buckets {
		b := &m.buckets[i]
		if !b.isOccupied() {
			continue
		}
		occupied++

		h := m.homeOf(b.key)
		off := i - h
		if off < 0 || off >= m.h {
			panic(fmt.Sprintf("hopscotch: invariant violated: bucket %d holds key with home %d, offset %d out of [0,%d)", i, h, off, m.h))
		}
		if !m.buckets[h].neighborPresent(off) {
			panic(fmt.Sprintf("hopscotch: invariant violated: bucket %d missing neighbor bit %d for occupied bucket %d", h, off, i))
		}
	}

	for h := range m.buckets {
		want := overflowHome[h]
		got := m.buckets[h].hasOverflow()
		if want != got {
			panic(fmt.Sprintf("hopscotch: invariant violated: bucket %d overflow bit=%v, overflow list membership=%v", h, got, want))
		}
	}

	if occupied+m.overflow.Len() != m.count {
		panic(fmt.Sprintf("hopscotch: invariant violated: count=%d but occupied=%d overflow=%d", m.count, occupied, m.overflow.Len()))
	}
}
