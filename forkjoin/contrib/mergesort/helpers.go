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

package mergesort

// Sequential building blocks shared by the base case and the merge step.

// sequentialSort is a stable sequential merge sort over the given range,
// using the aligned scratch slice for merging. It is the base case of the
// parallel recursion and never forks.
func sequentialSort[T any](data, scratch []T, cmp func(a, b T) int) {
	n := len(data)
	if n <= insertionThreshold {
		insertionSort(data, cmp)
		return
	}
	mid := n / 2
	sequentialSort(data[:mid], scratch[:mid], cmp)
	sequentialSort(data[mid:], scratch[mid:], cmp)
	mergeHalves(data, scratch, mid, cmp)
}

// insertionSort is a stable insertion sort for small ranges.
func insertionSort[T any](data []T, cmp func(a, b T) int) {
	for i := 1; i < len(data); i++ {
		key := data[i]
		j := i - 1
		for j >= 0 && cmp(data[j], key) > 0 {
			data[j+1] = data[j]
			j--
		}
		data[j+1] = key
	}
}

// mergeHalves merges the sorted halves data[:mid] and data[mid:] back into
// data through the scratch buffer. Equal keys are taken from the left half
// first, which is what makes the whole sort stable.
func mergeHalves[T any](data, scratch []T, mid int, cmp func(a, b T) int) {
	copy(scratch, data)
	left, right := scratch[:mid], scratch[mid:len(data)]

	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if cmp(right[j], left[i]) < 0 {
			data[k] = right[j]
			j++
		} else {
			data[k] = left[i]
			i++
		}
		k++
	}
	k += copy(data[k:], left[i:])
	copy(data[k:], right[j:])
}
