// Copyright 2025 go-forkjoin Authors
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

// Package mergesort implements a stable, parallel merge sort on top of the
// forkjoin scheduler.
//
// # Algorithm
//
// Each sub-range is a fork/join task:
//
//   - Ranges at or below the sequential threshold are sorted in place with
//     a stable sequential merge sort (insertion sort at the bottom).
//   - Larger ranges split at the midpoint into two disjoint halves. The
//     left half is forked; the right half runs inline on the current
//     worker - forking both halves would only add scheduling overhead,
//     since the current worker has to execute one of them anyway.
//   - After joining the left half, the sorted halves are merged through a
//     scratch buffer with a linear, stable merge: equal keys are taken
//     from the left half first, so the relative order of equal elements is
//     preserved end to end.
//
// Sub-ranges and their scratch sub-buffers are disjoint by construction,
// so concurrent tasks never touch overlapping memory and the data needs no
// locking.
//
// # Threshold
//
// The sequential threshold trades task-creation overhead against
// parallelism granularity. The optimal value depends on the hardware and
// the element type; override the default with WithThreshold.
package mergesort
