// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"runtime"
	"sync/atomic"
	"time"
)

// WorkerState is the observable state of a worker's scheduling loop,
// surfaced through Pool.Stats.
type WorkerState uint32

const (
	// WorkerIdle means the worker found no work and is backing off.
	WorkerIdle WorkerState = iota
	// WorkerRunning means the worker is executing a task.
	WorkerRunning
	// WorkerStealing means the worker is scanning peer queues.
	WorkerStealing
	// WorkerShuttingDown means the worker's loop has exited.
	WorkerShuttingDown
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerRunning:
		return "running"
	case WorkerStealing:
		return "stealing"
	case WorkerShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// Worker is a scheduling thread bound to one work-stealing queue. Task
// payloads receive the executing worker so they can Fork and Join; no other
// code should hold one.
type Worker struct {
	id    int
	pool  *Pool
	deque *deque

	// wake is signalled (capacity 1) when external work arrives.
	wake chan struct{}

	// rng drives victim selection; each worker starts its steal sweep at
	// a pseudo-random peer to avoid convoying on worker 0.
	rng uint64

	state    atomic.Uint32
	executed atomic.Uint64
	stolen   atomic.Uint64
	failed   atomic.Uint64
}

func newWorker(id int, p *Pool) *Worker {
	return &Worker{
		id:    id,
		pool:  p,
		deque: newDeque(p.cfg.queueCapacity),
		wake:  make(chan struct{}, 1),
		rng:   uint64(id)*0x9e3779b97f4a7c15 + 1,
	}
}

// loop is the worker scheduling loop: run own queue, else poll the
// injector, else steal; after repeated misses, spin briefly and then park.
// Parking is the one place a worker genuinely idles, bounded by
// maxParkTime and never tied to a specific task.
func (w *Worker) loop() {
	defer w.pool.wg.Done()
	defer w.setState(WorkerShuttingDown)

	spins := 0
	for {
		if w.pool.phase() == poolStopped {
			return
		}

		if r := w.deque.popBottom(); r != nil {
			w.execute(r)
			spins = 0
			continue
		}
		if r := w.findWork(); r != nil {
			w.execute(r)
			spins = 0
			continue
		}

		w.setState(WorkerIdle)
		if spins < w.pool.cfg.spinCount {
			spins++
			runtime.Gosched()
			continue
		}
		w.park()
		spins = 0
	}
}

// findWork polls the pool injector, then sweeps peer queues from a
// pseudo-random start. Shared by the loop and by helping joins.
func (w *Worker) findWork() runner {
	if r := w.pool.pollInjector(); r != nil {
		return r
	}

	peers := w.pool.workers
	n := len(peers)
	if n < 2 {
		return nil
	}

	w.setState(WorkerStealing)
	start := int(w.nextRand() % uint64(n))
	for i := 0; i < n; i++ {
		victim := peers[(start+i)%n]
		if victim == w {
			continue
		}
		if r := victim.deque.steal(); r != nil {
			w.stolen.Add(1)
			return r
		}
	}
	return nil
}

// execute runs one dequeued task and updates accounting. Every queued task
// passes through here exactly once, whether picked up by the scheduling
// loop or by a helping Join.
func (w *Worker) execute(r runner) {
	w.setState(WorkerRunning)
	r.run(w)
	w.executed.Add(1)
	if r.State() == StateFailed {
		w.failed.Add(1)
	}
	w.pool.completed.Add(1)
	w.pool.inflightDec()
}

// park sleeps until woken by a submission, the shutdown signal, or the
// park deadline.
func (w *Worker) park() {
	timer := time.NewTimer(w.pool.cfg.maxParkTime)
	select {
	case <-w.wake:
	case <-w.pool.stopC:
	case <-timer.C:
	}
	timer.Stop()
}

func (w *Worker) setState(s WorkerState) {
	w.state.Store(uint32(s))
}

// State returns the worker's current scheduling state.
func (w *Worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int {
	return w.id
}

// nextRand is xorshift64; quality does not matter, only cheap spread.
func (w *Worker) nextRand() uint64 {
	x := w.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	w.rng = x
	return x
}
