// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

// Package forkjoin provides a fixed-size work-stealing fork/join scheduler
// for recursive divide-and-conquer workloads. A Pool is created once and
// reused across many operations; workers are spawned at construction and
// persist until Shutdown.
//
// Each worker owns a double-ended work queue. Forked tasks are pushed and
// popped at the owner end in LIFO order (the most recently split, cache-hot
// ranges finish first), while idle workers steal from the opposite end in
// FIFO order (the oldest, largest tasks are the most profitable to move).
//
// Join never blocks a worker thread on another task's completion. A joining
// worker first tries to pop and execute the awaited task from its own queue
// (the common case when nothing has stolen it), and otherwise executes other
// pending work while re-checking a cheap terminal-state flag. This is what
// keeps a deeply recursive task graph live on a single worker, and what
// avoids the pool-starvation deadlock of blocking future designs.
//
// Usage:
//
//	pool, err := forkjoin.New(forkjoin.WithWorkers(runtime.GOMAXPROCS(0)))
//	if err != nil {
//	    return err
//	}
//	defer pool.Shutdown()
//
//	total, err := forkjoin.Invoke(pool, func(w *forkjoin.Worker) (int, error) {
//	    left := forkjoin.Fork(w, func(w *forkjoin.Worker) (int, error) {
//	        return solve(w, lo, mid)
//	    })
//	    right, err := solve(w, mid, hi) // run one half inline
//	    if err != nil {
//	        left.Join(w) // let the sibling drain before surfacing
//	        return 0, err
//	    }
//	    l, err := left.Join(w)
//	    return l + right, err
//	})
//
// The package performs no I/O and no logging; Stats exposes scheduling
// counters for callers that want observability.
package forkjoin
