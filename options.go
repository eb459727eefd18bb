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

import "fmt"

const (
	// defaultNeighborhood is H, the default neighborhood size.
	defaultNeighborhood = 62
	// maxNeighborhood is the largest H the two reserved bitmap bits allow
	// alongside a uint64 backing word.
	maxNeighborhood = 62
	// defaultInitialBuckets is the logical bucket count N a zero-value
	// construction starts with.
	defaultInitialBuckets = 16
	// defaultMaxLoadFactor is the load factor (size/N) above which an
	// insert triggers a rehash.
	defaultMaxLoadFactor = 0.9
	// maxProbe bounds the linear probe for an empty slot (§4.4 Step C).
	maxProbe = 4096
)

// Option configures a Map at construction time. Options are applied in
// order, so a later option overrides an earlier conflicting one.
type Option[K any, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K any, V any] struct{ hash HashFunc[K] }

func (o hashOption[K, V]) apply(m *Map[K, V]) { m.hash = o.hash }

// WithHash specifies the hash function a Map uses for its keys. There is
// no usable default for an arbitrary K, so omitting this option (and
// calling New directly instead of a NewStringMap/NewBytesMap/NewIntMap
// convenience constructor) makes New panic.
func WithHash[K any, V any](hash HashFunc[K]) Option[K, V] {
	return hashOption[K, V]{hash}
}

type equalOption[K any, V any] struct{ equal EqualFunc[K] }

func (o equalOption[K, V]) apply(m *Map[K, V]) { m.equal = o.equal }

// WithEqual specifies the equality predicate a Map uses for its keys.
func WithEqual[K any, V any](equal EqualFunc[K]) Option[K, V] {
	return equalOption[K, V]{equal}
}

type initialBucketsOption[K any, V any] struct{ n int }

func (o initialBucketsOption[K, V]) apply(m *Map[K, V]) { m.requestedBuckets = o.n }

// WithInitialBuckets sets the initial logical bucket count hint (default
// 16). When the growth ratio permits power-of-two modulo, the constructor
// rounds this up to the next power of two.
func WithInitialBuckets[K any, V any](n int) Option[K, V] {
	if n < 0 {
		panic(fmt.Sprintf("hopscotch: negative initial bucket count %d", n))
	}
	return initialBucketsOption[K, V]{n}
}

type neighborhoodOption[K any, V any] struct{ h int }

func (o neighborhoodOption[K, V]) apply(m *Map[K, V]) { m.h = o.h }

// WithNeighborhood sets H, the neighborhood size (1 <= H <= 62, default
// 62). H is conceptually a compile-time parameter (§6); Go generics have
// no const-generic mechanism to enforce that at compile time, so it is
// validated here instead, panicking on an out-of-range value exactly as
// the source's static_assert would fail to compile.
func WithNeighborhood[K any, V any](h int) Option[K, V] {
	if h < 1 || h > maxNeighborhood {
		panic(fmt.Sprintf("hopscotch: neighborhood size %d out of range [1,%d]", h, maxNeighborhood))
	}
	return neighborhoodOption[K, V]{h}
}

type growthRatioOption[K any, V any] struct{ num, den int }

func (o growthRatioOption[K, V]) apply(m *Map[K, V]) {
	m.growthNum, m.growthDen = o.num, o.den
}

// WithGrowthRatio sets the rational growth ratio num/den (default 2/1)
// applied on each rehash. The ratio must be >= 1.1. When num and den are
// both powers of two and num/den is an integer, the map uses mask-based
// modulo (hash & (N-1)); otherwise it falls back to plain modulo.
func WithGrowthRatio[K any, V any](num, den int) Option[K, V] {
	if den <= 0 || num <= 0 || float64(num)/float64(den) < 1.1 {
		panic(fmt.Sprintf("hopscotch: growth ratio %d/%d must be >= 1.1", num, den))
	}
	return growthRatioOption[K, V]{num, den}
}

type maxLoadFactorOption[K any, V any] struct{ factor float64 }

func (o maxLoadFactorOption[K, V]) apply(m *Map[K, V]) { m.maxLoadFactor = o.factor }

// WithMaxLoadFactor sets the maximum load factor (size/N, default 0.9)
// above which an insert triggers a rehash.
func WithMaxLoadFactor[K any, V any](factor float64) Option[K, V] {
	if factor <= 0 || factor > 1 {
		panic(fmt.Sprintf("hopscotch: max load factor %v must be in (0,1]", factor))
	}
	return maxLoadFactorOption[K, V]{factor}
}

// Allocator abstracts the memory source for a Map's bucket array, mirroring
// the source's Allocator template parameter. The default allocator defers
// entirely to Go's make()/GC. The methods are written in terms of the
// unexported bucket type, so Allocator can only be implemented by code
// inside this package.
type Allocator[K any, V any] interface {
	// AllocBuckets returns a slice equivalent to make([]bucket[K,V], n).
	AllocBuckets(n int) []bucket[K, V]
	// FreeBuckets optionally releases a slice previously returned by
	// AllocBuckets. It is called with the old bucket array immediately
	// after a rehash has moved every element out of it.
	FreeBuckets(v []bucket[K, V])
}

type defaultAllocator[K any, V any] struct{}

func (defaultAllocator[K, V]) AllocBuckets(n int) []bucket[K, V] {
	return make([]bucket[K, V], n)
}

func (defaultAllocator[K, V]) FreeBuckets(v []bucket[K, V]) {}

type allocatorOption[K any, V any] struct{ allocator Allocator[K, V] }

func (o allocatorOption[K, V]) apply(m *Map[K, V]) { m.allocator = o.allocator }

// WithAllocator specifies the Allocator a Map uses for its bucket array.
func WithAllocator[K any, V any](allocator Allocator[K, V]) Option[K, V] {
	return allocatorOption[K, V]{allocator}
}
