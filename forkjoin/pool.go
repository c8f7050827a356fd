// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"sync"
	"sync/atomic"
)

// Pool lifecycle phases.
const (
	poolRunning uint32 = iota
	poolDraining
	poolStopped
)

// Pool owns a fixed set of workers and their work-stealing queues. It is an
// explicitly constructed, explicitly owned object: create it with New, pass
// it to callers, and tear it down with Shutdown. There is no process-wide
// default pool.
type Pool struct {
	cfg     config
	workers []*Worker

	// injector holds externally submitted tasks until a worker polls them.
	injMu    sync.Mutex
	injector []runner

	// state is the lifecycle phase; stopC is closed when workers must exit.
	state atomic.Uint32
	stopC chan struct{}

	// wg tracks worker goroutines.
	wg sync.WaitGroup

	// inflight counts scheduled tasks not yet executed; Shutdown drains it
	// to zero. A plain counter, not a WaitGroup: Submit must be able to
	// add a count concurrently with the drain wait, which the WaitGroup
	// contract forbids when the counter is crossing zero. Every decrement
	// that reaches zero signals drainC (capacity 1) and the drain loop
	// re-checks the counter, so stale signals are harmless.
	inflight atomic.Int64
	drainC   chan struct{}

	submitted atomic.Uint64
	forked    atomic.Uint64
	completed atomic.Uint64

	nextWake atomic.Uint64
}

// New constructs a pool and starts its workers. The default worker count is
// the hardware parallelism reported by GOMAXPROCS.
func New(opts ...Option) (*Pool, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:    cfg,
		stopC:  make(chan struct{}),
		drainC: make(chan struct{}, 1),
	}
	p.workers = make([]*Worker, cfg.workers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}

	for _, w := range p.workers {
		p.wg.Add(1)
		go w.loop()
	}

	return p, nil
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

// Shutdown stops accepting submissions, lets in-flight tasks drain, and
// joins all worker threads. Calling Shutdown more than once is safe;
// late callers return without waiting.
func (p *Pool) Shutdown() {
	if !p.state.CompareAndSwap(poolRunning, poolDraining) {
		return
	}

	// Wake everyone so parked workers help with the drain.
	for _, w := range p.workers {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}

	p.awaitDrain()
	p.state.Store(poolStopped)
	close(p.stopC)
	p.wg.Wait()
}

// awaitDrain blocks until the in-flight count reaches zero. Submissions
// racing the drain either land their count before a zero crossing, keeping
// the wait alive, or are rejected and roll their count back, signalling
// drainC like any other decrement.
func (p *Pool) awaitDrain() {
	for p.inflight.Load() != 0 {
		<-p.drainC
	}
}

// inflightDec releases one in-flight count and signals a waiting drain
// when the counter reaches zero. The send never blocks; a dropped signal
// means one is already pending and the drain loop re-checks anyway.
func (p *Pool) inflightDec() {
	if p.inflight.Add(-1) == 0 {
		select {
		case p.drainC <- struct{}{}:
		default:
		}
	}
}

func (p *Pool) phase() uint32 {
	return p.state.Load()
}

// pushInjector appends an external task to the submission queue.
func (p *Pool) pushInjector(r runner) {
	p.injMu.Lock()
	p.injector = append(p.injector, r)
	p.injMu.Unlock()
}

// pollInjector removes the oldest external task, or nil.
func (p *Pool) pollInjector() runner {
	p.injMu.Lock()
	defer p.injMu.Unlock()
	if len(p.injector) == 0 {
		return nil
	}
	r := p.injector[0]
	p.injector[0] = nil
	p.injector = p.injector[1:]
	if len(p.injector) == 0 {
		p.injector = nil
	}
	return r
}

// wakeOne signals one worker, round-robin, spilling to any parked peer.
func (p *Pool) wakeOne() {
	n := uint64(len(p.workers))
	start := p.nextWake.Add(1)
	for i := uint64(0); i < n; i++ {
		w := p.workers[(start+i)%n]
		select {
		case w.wake <- struct{}{}:
			return
		default:
		}
	}
}

// Stats is a snapshot of pool-wide scheduling counters.
type Stats struct {
	// Submitted counts external submissions via Submit and Invoke.
	Submitted uint64
	// Forked counts tasks forked by workers.
	Forked uint64
	// Completed counts executed tasks, including failed ones.
	Completed uint64
	// Stolen counts tasks that ran on a different worker than the one
	// that forked them.
	Stolen uint64
	// Failed counts tasks that finished in the Failed state.
	Failed uint64

	Workers []WorkerStats
}

// WorkerStats is a per-worker snapshot.
type WorkerStats struct {
	ID         int
	Executed   uint64
	Stolen     uint64
	Failed     uint64
	QueueDepth int
	State      WorkerState
}

// Stats returns a racy snapshot of scheduling counters. Individual fields
// are internally consistent; cross-field arithmetic may be off by in-flight
// work.
func (p *Pool) Stats() Stats {
	s := Stats{
		Submitted: p.submitted.Load(),
		Forked:    p.forked.Load(),
		Completed: p.completed.Load(),
		Workers:   make([]WorkerStats, len(p.workers)),
	}
	for i, w := range p.workers {
		ws := WorkerStats{
			ID:         w.id,
			Executed:   w.executed.Load(),
			Stolen:     w.stolen.Load(),
			Failed:     w.failed.Load(),
			QueueDepth: w.deque.size(),
			State:      w.State(),
		}
		s.Stolen += ws.Stolen
		s.Failed += ws.Failed
		s.Workers[i] = ws
	}
	return s
}
