// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// minDequeCapacity is the smallest ring allocated for a worker queue.
const minDequeCapacity = 64

// deque is a Chase-Lev work-stealing double-ended queue. The owning worker
// pushes and pops at the bottom (LIFO); thieves remove from the top (FIFO)
// by CAS-incrementing the steal boundary. The backing ring is a power-of-two
// circular array that is replaced with a larger copy when full, so pushes
// never fail.
//
// Go's sync/atomic operations are sequentially consistent, so the explicit
// release/acquire fences of the classic C formulation collapse into the
// plain loads, stores, and CAS below. The one subtle point that survives is
// the last-element race between popBottom and steal, which both sides
// settle with a CAS on top.
type deque struct {
	_ cpu.CacheLinePad

	// top is the steal boundary, advanced by thieves via CAS.
	top atomic.Int64

	_ cpu.CacheLinePad

	// bottom is the owner end, written only by the owning worker.
	bottom atomic.Int64

	_ cpu.CacheLinePad

	// array is the current backing ring, replaced atomically on growth.
	array atomic.Pointer[ring]
}

// ring is the circular backing array. Capacity is a power of two so index
// wrapping is a mask. A ring is immutable in size; growth allocates a new
// one.
type ring struct {
	mask  int64
	slots []runner
}

func newRing(capacity int64) *ring {
	return &ring{
		mask:  capacity - 1,
		slots: make([]runner, capacity),
	}
}

func (r *ring) get(i int64) runner { return r.slots[i&r.mask] }

func (r *ring) put(i int64, t runner) { r.slots[i&r.mask] = t }

func (r *ring) capacity() int64 { return r.mask + 1 }

// grow returns a ring of twice the capacity holding the live entries
// [top, bottom). Entries stolen during the copy are simply never read
// again: the advanced top index skips them in the new ring too.
func (r *ring) grow(top, bottom int64) *ring {
	next := newRing(r.capacity() * 2)
	for i := top; i < bottom; i++ {
		next.put(i, r.get(i))
	}
	return next
}

func newDeque(capacity int) *deque {
	c := int64(minDequeCapacity)
	for c < int64(capacity) {
		c <<= 1
	}
	d := &deque{}
	d.array.Store(newRing(c))
	return d
}

// pushBottom appends a task at the owner end. Owner only, O(1), never
// blocks; grows the ring when one slot short of full.
func (d *deque) pushBottom(t runner) {
	b := d.bottom.Load()
	top := d.top.Load()
	a := d.array.Load()

	if b-top >= a.mask {
		a = a.grow(top, b)
		d.array.Store(a)
	}

	a.put(b, t)
	d.bottom.Store(b + 1)
}

// popBottom removes the most recently pushed task. Owner only. Returns nil
// if the deque is empty or a thief won the race for the last element.
func (d *deque) popBottom() runner {
	b := d.bottom.Load() - 1
	a := d.array.Load()
	d.bottom.Store(b)

	top := d.top.Load()
	if top > b {
		// Empty; restore bottom.
		d.bottom.Store(b + 1)
		return nil
	}

	t := a.get(b)
	if top == b {
		// Last element: a concurrent steal may claim it too. Whoever
		// advances top owns it.
		if !d.top.CompareAndSwap(top, top+1) {
			t = nil
		}
		d.bottom.Store(b + 1)
		return t
	}

	return t
}

// steal removes the oldest task. Safe for any number of concurrent thieves
// and concurrent owner operations. Returns nil when empty or when another
// party claimed the entry first.
func (d *deque) steal() runner {
	top := d.top.Load()
	b := d.bottom.Load()
	if top >= b {
		return nil
	}

	a := d.array.Load()
	t := a.get(top)
	if !d.top.CompareAndSwap(top, top+1) {
		return nil
	}
	return t
}

// size is a racy snapshot, used only for stats.
func (d *deque) size() int {
	n := d.bottom.Load() - d.top.Load()
	if n < 0 {
		return 0
	}
	return int(n)
}
