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

//go:build !invariants

package hopscotch

// invariants is false by default; build with `-tags invariants` to enable
// the expensive post-operation assertions in checkInvariants. This mirrors
// the teacher's `if invariants { panic(...) }` pattern, compiled away
// entirely in normal builds rather than paying a runtime branch for it.
const invariants = false

// checkInvariants is a no-op in the default build.
func (m *Map[K, V]) checkInvariants() {}
