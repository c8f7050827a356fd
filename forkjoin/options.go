// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"fmt"
	"runtime"
	"time"
)

// config carries the tunables of a Pool. Zero values are filled in by
// defaultConfig; Validate rejects what remains nonsensical.
type config struct {
	workers       int
	queueCapacity int
	spinCount     int
	maxParkTime   time.Duration
}

func defaultConfig() config {
	return config{
		workers:       runtime.GOMAXPROCS(0),
		queueCapacity: 256,
		spinCount:     30,
		maxParkTime:   time.Millisecond,
	}
}

func (c config) validate() error {
	if c.workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.workers)
	}
	if c.queueCapacity < 1 {
		return fmt.Errorf("%w: queue capacity must be at least 1, got %d", ErrInvalidConfig, c.queueCapacity)
	}
	if c.spinCount < 0 {
		return fmt.Errorf("%w: spin count must not be negative, got %d", ErrInvalidConfig, c.spinCount)
	}
	if c.maxParkTime <= 0 {
		return fmt.Errorf("%w: max park time must be positive, got %v", ErrInvalidConfig, c.maxParkTime)
	}
	return nil
}

// Option configures a Pool.
type Option func(*config)

// WithWorkers sets the number of worker threads. n <= 0 selects the
// hardware parallelism reported by GOMAXPROCS, which is also the default.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.workers = n
	}
}

// WithQueueCapacity sets the initial per-worker queue capacity, rounded up
// to a power of two. Queues grow as needed; this only sizes the first ring.
func WithQueueCapacity(n int) Option {
	return func(c *config) { c.queueCapacity = n }
}

// WithSpinCount sets how many times an idle worker yields before parking.
func WithSpinCount(n int) Option {
	return func(c *config) { c.spinCount = n }
}

// WithMaxParkTime bounds how long an idle worker parks before re-scanning
// for work. Shorter times lower submission latency at the cost of idle CPU.
func WithMaxParkTime(d time.Duration) Option {
	return func(c *config) { c.maxParkTime = d }
}
