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

import "errors"

// ErrKeyNotFound is returned by At when the requested key is absent. The
// map is left unchanged. This is the only error kind from §7 that is
// recoverable by an ordinary caller; AllocationFailure and HashOrEqualPanic
// propagate as ordinary Go panics (from make() or from the user-supplied
// HashFunc/EqualFunc), and DestructorFailure has no Go analog since values
// have no destructors.
var ErrKeyNotFound = errors.New("hopscotch: key not found")
