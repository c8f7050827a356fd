// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"sync"
	"sync/atomic"
)

// TaskState is the lifecycle state of a Task. States advance monotonically:
// Pending -> Forked -> Completed or Failed. Completed and Failed are
// terminal.
type TaskState uint32

const (
	// StatePending means the task was created but not yet scheduled.
	StatePending TaskState = iota
	// StateForked means the task is enqueued or currently executing.
	StateForked
	// StateCompleted means the task finished and stored its result.
	StateCompleted
	// StateFailed means the task finished and stored an error.
	StateFailed
)

func (s TaskState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateForked:
		return "forked"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s TaskState) terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// runner is the type-erased view of a Task held by queues and workers.
type runner interface {
	run(w *Worker)
	State() TaskState
}

// Task is a unit of recursive work with a single-writer result slot. The
// result and error fields are written by exactly one worker before the
// terminal state is stored; any reader observing a terminal State also
// observes the stored outcome.
//
// A Task executes at most once: the Pending -> Forked transition is
// CAS-guarded and a forked task is held by exactly one queue entry.
type Task[T any] struct {
	status atomic.Uint32
	fn     func(*Worker) (T, error)

	result T
	err    error

	// done is armed lazily by Wait so that worker-joined tasks, the vast
	// majority, never allocate a channel.
	doneMu sync.Mutex
	done   chan struct{}
}

// NewTask creates a task in the Pending state. Schedule it with ForkTask
// (from a worker) or Submit (from outside the pool).
func NewTask[T any](fn func(*Worker) (T, error)) *Task[T] {
	return &Task[T]{fn: fn}
}

// State returns the task's current lifecycle state.
func (t *Task[T]) State() TaskState {
	return TaskState(t.status.Load())
}

// Result returns the stored outcome of a terminal task. Calling it before
// the task is terminal returns ErrTaskNotDone.
func (t *Task[T]) Result() (T, error) {
	switch t.State() {
	case StateCompleted:
		return t.result, nil
	case StateFailed:
		var zero T
		return zero, t.err
	default:
		var zero T
		return zero, ErrTaskNotDone
	}
}

// markForked performs the Pending -> Forked transition.
func (t *Task[T]) markForked() bool {
	return t.status.CompareAndSwap(uint32(StatePending), uint32(StateForked))
}

// run executes the payload and publishes the outcome. A panic inside the
// payload is captured as an ExecError rather than crashing the worker.
func (t *Task[T]) run(w *Worker) {
	defer func() {
		if r := recover(); r != nil {
			t.err = newExecError(r)
			t.finish(StateFailed)
		}
	}()

	v, err := t.fn(w)
	if err != nil {
		t.err = err
		t.finish(StateFailed)
		return
	}
	t.result = v
	t.finish(StateCompleted)
}

// finish stores the terminal state after the result slot is written, then
// releases any external waiter.
func (t *Task[T]) finish(s TaskState) {
	t.status.Store(uint32(s))

	t.doneMu.Lock()
	if t.done != nil {
		close(t.done)
	}
	t.doneMu.Unlock()
}

// Wait blocks the calling goroutine until the task is terminal and returns
// the stored outcome. Wait is for code running outside the pool; a worker
// must use Join instead so its thread keeps executing work. Waiting on an
// already-terminal task returns immediately and is side-effect-free.
func (t *Task[T]) Wait() (T, error) {
	if t.State().terminal() {
		return t.Result()
	}

	t.doneMu.Lock()
	if t.State().terminal() {
		t.doneMu.Unlock()
		return t.Result()
	}
	if t.done == nil {
		t.done = make(chan struct{})
	}
	ch := t.done
	t.doneMu.Unlock()

	<-ch
	return t.Result()
}
