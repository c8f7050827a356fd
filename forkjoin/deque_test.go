// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

// stubTask is a minimal runner for queue tests.
type stubTask struct {
	id int
	st atomic.Uint32
}

func (s *stubTask) run(*Worker) { s.st.Store(uint32(StateCompleted)) }

func (s *stubTask) State() TaskState { return TaskState(s.st.Load()) }

func TestDequeOwnerLIFO(t *testing.T) {
	d := newDeque(0)
	for i := 0; i < 10; i++ {
		d.pushBottom(&stubTask{id: i})
	}

	for i := 9; i >= 0; i-- {
		r := d.popBottom()
		if r == nil {
			t.Fatalf("popBottom() = nil, want task %d", i)
		}
		if got := r.(*stubTask).id; got != i {
			t.Errorf("popBottom() id = %d, want %d (LIFO order)", got, i)
		}
	}
	if r := d.popBottom(); r != nil {
		t.Errorf("popBottom() on empty deque = %v, want nil", r)
	}
}

func TestDequeStealFIFO(t *testing.T) {
	d := newDeque(0)
	for i := 0; i < 10; i++ {
		d.pushBottom(&stubTask{id: i})
	}

	for i := 0; i < 10; i++ {
		r := d.steal()
		if r == nil {
			t.Fatalf("steal() = nil, want task %d", i)
		}
		if got := r.(*stubTask).id; got != i {
			t.Errorf("steal() id = %d, want %d (FIFO order)", got, i)
		}
	}
	if r := d.steal(); r != nil {
		t.Errorf("steal() on empty deque = %v, want nil", r)
	}
}

func TestDequeEmpty(t *testing.T) {
	d := newDeque(0)
	if r := d.popBottom(); r != nil {
		t.Errorf("popBottom() on fresh deque = %v, want nil", r)
	}
	if r := d.steal(); r != nil {
		t.Errorf("steal() on fresh deque = %v, want nil", r)
	}
	if n := d.size(); n != 0 {
		t.Errorf("size() = %d, want 0", n)
	}
}

func TestDequeGrowth(t *testing.T) {
	d := newDeque(minDequeCapacity)
	n := minDequeCapacity * 8
	for i := 0; i < n; i++ {
		d.pushBottom(&stubTask{id: i})
	}

	if got := d.size(); got != n {
		t.Fatalf("size() after %d pushes = %d, want %d", n, got, n)
	}

	// All entries must survive the ring replacements, in order.
	for i := 0; i < n; i++ {
		r := d.steal()
		if r == nil {
			t.Fatalf("steal() = nil at %d after growth", i)
		}
		if got := r.(*stubTask).id; got != i {
			t.Fatalf("steal() id = %d, want %d after growth", got, i)
		}
	}
}

// TestDequeConcurrentSteal verifies that under concurrent owner pops and
// multi-thief steals every task is claimed exactly once.
func TestDequeConcurrentSteal(t *testing.T) {
	const (
		numTasks   = 10000
		numThieves = 4
	)

	d := newDeque(0)
	claims := make([]atomic.Int32, numTasks)

	var wg sync.WaitGroup
	var stop atomic.Bool

	for i := 0; i < numThieves; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !stop.Load() {
				if r := d.steal(); r != nil {
					claims[r.(*stubTask).id].Add(1)
				} else {
					runtime.Gosched()
				}
			}
		}()
	}

	// Owner: interleave pushes with pops.
	for i := 0; i < numTasks; i++ {
		d.pushBottom(&stubTask{id: i})
		if i%3 == 0 {
			if r := d.popBottom(); r != nil {
				claims[r.(*stubTask).id].Add(1)
			}
		}
	}
	for {
		r := d.popBottom()
		if r == nil {
			break
		}
		claims[r.(*stubTask).id].Add(1)
	}

	stop.Store(true)
	wg.Wait()

	for i := range claims {
		if got := claims[i].Load(); got != 1 {
			t.Errorf("task %d claimed %d times, want exactly 1", i, got)
		}
	}
}

// TestDequeLastElementRace drives the popBottom/steal race for a single
// remaining element: exactly one side must win each round.
func TestDequeLastElementRace(t *testing.T) {
	d := newDeque(0)
	for round := 0; round < 1000; round++ {
		d.pushBottom(&stubTask{id: round})

		var wins atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if d.popBottom() != nil {
				wins.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if d.steal() != nil {
				wins.Add(1)
			}
		}()
		wg.Wait()

		if got := wins.Load(); got != 1 {
			t.Fatalf("round %d: %d winners for last element, want exactly 1", round, got)
		}
	}
}
