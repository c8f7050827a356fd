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

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"

	"github.com/ajroetker/go-forkjoin/forkjoin"
)

// Thresholds for the staged sorting strategy.
const (
	// DefaultThreshold is the range length at or below which recursion
	// stops and a sequential sort runs. Tunable via WithThreshold.
	DefaultThreshold = 8192

	// insertionThreshold: the sequential sort switches to insertion sort
	// for ranges this size or smaller.
	insertionThreshold = 32
)

var (
	// ErrInvalidRange is returned for malformed range bounds: negative
	// offset or length, or a range extending past the end of the slice.
	ErrInvalidRange = errors.New("mergesort: invalid range")

	// ErrInvalidThreshold is returned for a non-positive sequential
	// threshold.
	ErrInvalidThreshold = errors.New("mergesort: invalid threshold")
)

// config carries the engine tunables.
type config struct {
	threshold int

	// probe, when set, is invoked with the absolute bounds of every range
	// about to be mutated (leaf sort or merge) and returns a release
	// function called when the mutation ends. Used by tests to verify
	// that concurrently live ranges never overlap.
	probe func(lo, hi int) func()
}

func defaultSortConfig() config {
	return config{threshold: DefaultThreshold}
}

// Option configures a sort call.
type Option func(*config)

// WithThreshold sets the sequential threshold: sub-ranges of at most n
// elements are sorted sequentially instead of being split further.
func WithThreshold(n int) Option {
	return func(c *config) { c.threshold = n }
}

// Range describes a contiguous segment of a slice, checked against the
// backing slice before any sorting starts.
type Range struct {
	Offset int
	Length int
}

func (r Range) validate(size int) error {
	// Compared without adding Offset and Length, which could overflow and
	// wrap negative for huge lengths.
	if r.Offset < 0 || r.Length < 0 || r.Length > size || r.Offset > size-r.Length {
		return fmt.Errorf("%w: offset %d length %d for slice of %d", ErrInvalidRange, r.Offset, r.Length, size)
	}
	return nil
}

// Sort sorts data in non-decreasing order using the pool's workers. It is
// stable and blocks the calling goroutine until the sort completes. A nil
// pool sorts sequentially.
func Sort[T constraints.Ordered](p *forkjoin.Pool, data []T, opts ...Option) error {
	return SortFunc(p, data, compareOrdered[T], opts...)
}

// SortRange sorts the sub-segment of data described by r, leaving the rest
// of the slice untouched. Malformed bounds fail with ErrInvalidRange
// before any element moves.
func SortRange[T constraints.Ordered](p *forkjoin.Pool, data []T, r Range, opts ...Option) error {
	if err := r.validate(len(data)); err != nil {
		return err
	}
	return SortFunc(p, data[r.Offset:r.Offset+r.Length], compareOrdered[T], opts...)
}

// SortFunc sorts data by the comparison function cmp, which must return a
// negative value when a orders before b, zero when they are equal, and a
// positive value otherwise. The sort is stable with respect to cmp.
func SortFunc[T any](p *forkjoin.Pool, data []T, cmp func(a, b T) int, opts ...Option) error {
	cfg := defaultSortConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return sortFunc(p, data, cmp, cfg)
}

// sortFunc is the shared entry point; tests call it directly to install an
// instrumentation probe.
func sortFunc[T any](p *forkjoin.Pool, data []T, cmp func(a, b T) int, cfg config) error {
	if cfg.threshold < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, cfg.threshold)
	}

	n := len(data)
	if n <= 1 {
		// Nothing to order; no task is forked and no buffer allocated.
		return nil
	}

	scratch := make([]T, n)
	if p == nil || n <= cfg.threshold {
		sequentialSort(data, scratch, cmp)
		return nil
	}

	_, err := forkjoin.Invoke(p, func(w *forkjoin.Worker) (struct{}, error) {
		return struct{}{}, sortTask(w, data, scratch, 0, cmp, &cfg)
	})
	return err
}

// sortTask sorts one sub-range as a fork/join task. data and scratch are
// the aligned sub-range views; off is the absolute offset within the
// top-level slice, carried for instrumentation.
func sortTask[T any](w *forkjoin.Worker, data, scratch []T, off int, cmp func(a, b T) int, cfg *config) error {
	n := len(data)
	if n <= cfg.threshold {
		release := claim(cfg, off, off+n)
		sequentialSort(data, scratch, cmp)
		release()
		return nil
	}

	// Split at the midpoint into disjoint halves. Fork the left half so a
	// thief can pick it up; run the right half inline.
	mid := n / 2
	left := forkjoin.Fork(w, func(w *forkjoin.Worker) (struct{}, error) {
		return struct{}{}, sortTask(w, data[:mid], scratch[:mid], off, cmp, cfg)
	})

	rightErr := sortTask(w, data[mid:], scratch[mid:], off+mid, cmp, cfg)

	// Join the left half regardless of the right half's outcome so the
	// sibling subtree always drains; the left error wins, having been
	// scheduled first.
	_, leftErr := left.Join(w)
	if leftErr != nil {
		return leftErr
	}
	if rightErr != nil {
		return rightErr
	}

	release := claim(cfg, off, off+n)
	mergeHalves(data, scratch, mid, cmp)
	release()
	return nil
}

func claim(cfg *config, lo, hi int) func() {
	if cfg.probe == nil {
		return func() {}
	}
	return cfg.probe(lo, hi)
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
