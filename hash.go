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
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash"
	"golang.org/x/exp/constraints"
)

// HashFunc computes a 64-bit hash for a key of type K. It must not mutate
// any state the map depends on and must be deterministic for equal keys
// (per the equality predicate). The hash function is an external
// collaborator (§1 Out of scope); the engine only calls it.
type HashFunc[K any] func(key K) uint64

// EqualFunc reports whether two keys are equivalent. Like HashFunc, it is
// an external collaborator the engine only calls.
type EqualFunc[K any] func(a, b K) bool

// NewStringMap constructs a Map keyed by strings, defaulting to an
// xxhash-based hash function. Additional Options still apply, and
// WithHash/WithEqual override the default.
func NewStringMap[V any](opts ...Option[string, V]) *Map[string, V] {
	base := []Option[string, V]{
		WithHash[string, V](hashString),
		WithEqual[string, V](func(a, b string) bool { return a == b }),
	}
	return New[string, V](append(base, opts...)...)
}

// NewBytesMap constructs a Map keyed by []byte, defaulting to an
// xxhash-based hash function and a byte-slice equality predicate.
func NewBytesMap[V any](opts ...Option[[]byte, V]) *Map[[]byte, V] {
	base := []Option[[]byte, V]{
		WithHash[[]byte, V](xxhash.Sum64),
		WithEqual[[]byte, V](bytesEqual),
	}
	return New[[]byte, V](append(base, opts...)...)
}

// NewIntMap constructs a Map keyed by any fixed-width integer type,
// defaulting to an xxhash-based hash of the integer's little-endian bytes.
func NewIntMap[K constraints.Integer, V any](opts ...Option[K, V]) *Map[K, V] {
	base := []Option[K, V]{
		WithHash[K, V](hashInteger[K]),
		WithEqual[K, V](func(a, b K) bool { return a == b }),
	}
	return New[K, V](append(base, opts...)...)
}

// NewFloat64Map constructs a Map keyed by float64, defaulting to an
// xxhash-based hash of the key's IEEE 754 bits (with -0 hashed as +0) and
// float64's own == operator as equality (NaN is therefore not equal to
// itself; a
// caller needing different NaN or tolerance semantics should supply
// WithEqual).
func NewFloat64Map[V any](opts ...Option[float64, V]) *Map[float64, V] {
	base := []Option[float64, V]{
		WithHash[float64, V](hashFloat64),
		WithEqual[float64, V](func(a, b float64) bool { return a == b }),
	}
	return New[float64, V](append(base, opts...)...)
}

func hashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hashInteger[K constraints.Integer](key K) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return xxhash.Sum64(buf[:])
}

// hashFloat64 is the default hash for NewFloat64Map.
func hashFloat64(key float64) uint64 {
	if key == 0 {
		key = 0 // -0 == +0, so both must hash alike
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(key))
	return xxhash.Sum64(buf[:])
}
