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
	"strconv"
	"testing"
)

// Benchmarks compare against Go's builtin map at a range of sizes, following
// the same impl=/t=/len= sub-benchmark naming the source used to compare its
// Swiss table against the runtime map. Only int64 and string keys are
// exercised, since (unlike the source, which could fall back to a runtime
// hasher for any comparable type) hopscotch.Map has no universal default
// hash function to generate benchmark keys generically over T.

var benchSizesTable = []int{64, 256, 1024, 4096, 1 << 16}

func genIntKeys(start, end int) []int64 {
	keys := make([]int64, end-start)
	for i := range keys {
		keys[i] = int64(start + i)
	}
	return keys
}

func genStringKeys(start, end int) []string {
	keys := make([]string, end-start)
	for i := range keys {
		keys[i] = strconv.Itoa(start + i)
	}
	return keys
}

func BenchmarkMapIter(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapIterInt(n))
		}
	})
	b.Run("impl=hopscotchMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapIterInt(n))
		}
	})
}

func benchmarkRuntimeMapIterInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := make(map[int64]int64, n)
		for _, k := range genIntKeys(0, n) {
			m[k] = k
		}
		b.ResetTimer()
		var tmp int64
		for i := 0; i < b.N; i++ {
			for k, v := range m {
				tmp += k + v
			}
		}
	}
}

func benchmarkHopscotchMapIterInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := NewIntMap[int64, int64](WithInitialBuckets[int64, int64](n))
		for _, k := range genIntKeys(0, n) {
			m.Insert(k, k)
		}
		b.ResetTimer()
		var tmp int64
		for i := 0; i < b.N; i++ {
			m.All(func(k, v int64) bool {
				tmp += k + v
				return true
			})
		}
	}
}

func BenchmarkMapGetHit(b *testing.B) {
	b.Run("impl=runtimeMap/t=Int64", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapGetHitInt(n))
		}
	})
	b.Run("impl=runtimeMap/t=String", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapGetHitString(n))
		}
	})
	b.Run("impl=hopscotchMap/t=Int64", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapGetHitInt(n))
		}
	})
	b.Run("impl=hopscotchMap/t=String", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapGetHitString(n))
		}
	})
}

func benchmarkRuntimeMapGetHitInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := make(map[int64]int64, n)
		keys := genIntKeys(0, n)
		for _, k := range keys {
			m[k] = k
		}
		b.ResetTimer()
		var tmp int64
		for i := 0; i < b.N; i++ {
			tmp += m[keys[i%n]]
		}
	}
}

func benchmarkRuntimeMapGetHitString(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := make(map[string]string, n)
		keys := genStringKeys(0, n)
		for _, k := range keys {
			m[k] = k
		}
		b.ResetTimer()
		var tmp string
		for i := 0; i < b.N; i++ {
			tmp = m[keys[i%n]]
		}
		_ = tmp
	}
}

func benchmarkHopscotchMapGetHitInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := NewIntMap[int64, int64](WithInitialBuckets[int64, int64](n))
		keys := genIntKeys(0, n)
		for _, k := range keys {
			m.Insert(k, k)
		}
		b.ResetTimer()
		var tmp int64
		for i := 0; i < b.N; i++ {
			v, _ := m.At(keys[i%n])
			tmp += v
		}
	}
}

func benchmarkHopscotchMapGetHitString(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := NewStringMap[string](WithInitialBuckets[string, string](n))
		keys := genStringKeys(0, n)
		for _, k := range keys {
			m.Insert(k, k)
		}
		b.ResetTimer()
		var tmp string
		for i := 0; i < b.N; i++ {
			tmp, _ = m.At(keys[i%n])
		}
		_ = tmp
	}
}

func BenchmarkMapGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapGetMissInt(n))
		}
	})
	b.Run("impl=hopscotchMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapGetMissInt(n))
		}
	})
}

func benchmarkRuntimeMapGetMissInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := make(map[int64]int64, n)
		for _, k := range genIntKeys(0, n) {
			m[k] = k
		}
		missKeys := genIntKeys(n, n*2)
		b.ResetTimer()
		var tmp int64
		for i := 0; i < b.N; i++ {
			tmp += m[missKeys[i%n]]
		}
	}
}

func benchmarkHopscotchMapGetMissInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		m := NewIntMap[int64, int64](WithInitialBuckets[int64, int64](n))
		for _, k := range genIntKeys(0, n) {
			m.Insert(k, k)
		}
		missKeys := genIntKeys(n, n*2)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m.Find(missKeys[i%n])
		}
	}
}

func BenchmarkMapPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapPutGrowInt(n))
		}
	})
	b.Run("impl=hopscotchMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapPutGrowInt(n))
		}
	})
}

func benchmarkRuntimeMapPutGrowInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := make(map[int64]int64)
			for _, k := range keys {
				m[k] = k
			}
		}
	}
}

func benchmarkHopscotchMapPutGrowInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := NewIntMap[int64, int64]()
			for _, k := range keys {
				m.Insert(k, k)
			}
		}
	}
}

func BenchmarkMapPutPreAllocate(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapPutPreAllocateInt(n))
		}
	})
	b.Run("impl=hopscotchMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapPutPreAllocateInt(n))
		}
	})
}

func benchmarkRuntimeMapPutPreAllocateInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := make(map[int64]int64, n)
			for _, k := range keys {
				m[k] = k
			}
		}
	}
}

func benchmarkHopscotchMapPutPreAllocateInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			m := NewIntMap[int64, int64](WithInitialBuckets[int64, int64](n))
			for _, k := range keys {
				m.Insert(k, k)
			}
		}
	}
}

func BenchmarkMapPutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkRuntimeMapPutDeleteInt(n))
		}
	})
	b.Run("impl=hopscotchMap", func(b *testing.B) {
		for _, n := range benchSizesTable {
			b.Run("len="+strconv.Itoa(n), benchmarkHopscotchMapPutDeleteInt(n))
		}
	})
}

func benchmarkRuntimeMapPutDeleteInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		m := make(map[int64]int64, n)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := keys[i%n]
			m[k] = k
			delete(m, k)
		}
	}
}

func benchmarkHopscotchMapPutDeleteInt(n int) func(b *testing.B) {
	return func(b *testing.B) {
		keys := genIntKeys(0, n)
		m := NewIntMap[int64, int64](WithInitialBuckets[int64, int64](n))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			k := keys[i%n]
			m.Insert(k, k)
			m.EraseKey(k)
		}
	}
}
