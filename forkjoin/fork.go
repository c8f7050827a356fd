// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import "runtime"

// Fork creates a task for fn and schedules it on the current worker's own
// queue, where it is immediately visible to thieves. Fork returns without
// waiting; retrieve the outcome with Join.
func Fork[T any](w *Worker, fn func(*Worker) (T, error)) *Task[T] {
	t := NewTask(fn)
	// A freshly created task cannot lose the Pending -> Forked CAS.
	_ = ForkTask(w, t)
	return t
}

// ForkTask schedules a previously constructed task on the current worker's
// own queue. It returns ErrTaskAlreadyForked if the task left the Pending
// state before, so no task is ever enqueued twice.
func ForkTask[T any](w *Worker, t *Task[T]) error {
	if t == nil {
		return ErrNilTask
	}
	if !t.markForked() {
		return ErrTaskAlreadyForked
	}
	w.pool.forked.Add(1)
	w.pool.inflight.Add(1)
	w.deque.pushBottom(t)
	return nil
}

// Join returns the task's outcome without ever idling the calling worker's
// thread:
//
//  1. If the task is terminal, the stored outcome is returned immediately.
//  2. Otherwise the worker pops and executes entries from its own queue.
//     The awaited task was pushed there by Fork, so unless a thief took it
//     this pops it directly (helping-first).
//  3. If the task was stolen and is running elsewhere, the worker executes
//     other pending work - injector entries, then steals from peers -
//     re-checking the awaited state between tasks.
//
// The only concession when there is nothing runnable anywhere and the
// target is still in flight is a Gosched yield.
func (t *Task[T]) Join(w *Worker) (T, error) {
	for {
		if t.State().terminal() {
			return t.Result()
		}

		if r := w.deque.popBottom(); r != nil {
			w.execute(r)
			continue
		}
		if r := w.findWork(); r != nil {
			w.execute(r)
			continue
		}

		// The target is executing on another worker and no other work
		// exists; yield rather than spin the core.
		runtime.Gosched()
	}
}

// Submit schedules a task from outside the pool via the injector queue.
// It fails with ErrPoolShutdown once Shutdown has begun. Pair it with Wait.
func Submit[T any](p *Pool, t *Task[T]) error {
	if t == nil {
		return ErrNilTask
	}
	if p.phase() != poolRunning {
		return ErrPoolShutdown
	}
	if !t.markForked() {
		return ErrTaskAlreadyForked
	}

	p.inflight.Add(1)
	// Re-check after taking an in-flight slot so a racing Shutdown cannot
	// strand the task in the injector: either the count landed before the
	// drain observed zero and keeps it waiting, or the submission is
	// rolled back here and rejected.
	if p.phase() != poolRunning {
		p.inflightDec()
		t.err = ErrPoolShutdown
		t.finish(StateFailed)
		return ErrPoolShutdown
	}

	p.submitted.Add(1)
	p.pushInjector(t)
	p.wakeOne()
	return nil
}

// Invoke submits a top-level task and blocks the calling goroutine until it
// is terminal, returning its outcome. Invoke must be called from outside
// the pool; inside a task body use Fork and Join.
func Invoke[T any](p *Pool, fn func(*Worker) (T, error)) (T, error) {
	t := NewTask(fn)
	if err := Submit(p, t); err != nil {
		var zero T
		return zero, err
	}
	return t.Wait()
}
