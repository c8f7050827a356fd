// Copyright 2025 The go-forkjoin Authors. SPDX-License-Identifier: Apache-2.0

package forkjoin

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrPoolShutdown is returned when a submission is attempted after
	// Shutdown has begun.
	ErrPoolShutdown = errors.New("forkjoin: pool is shut down")

	// ErrNilTask is returned when a nil task or nil work function is
	// scheduled.
	ErrNilTask = errors.New("forkjoin: task is nil")

	// ErrTaskAlreadyForked is returned when a task that already left the
	// Pending state is scheduled again.
	ErrTaskAlreadyForked = errors.New("forkjoin: task already forked")

	// ErrTaskNotDone is returned by Result when the task is not yet
	// terminal.
	ErrTaskNotDone = errors.New("forkjoin: task has not completed")

	// ErrInvalidConfig wraps pool option validation failures.
	ErrInvalidConfig = errors.New("forkjoin: invalid config")
)

// execStackSize bounds the stack capture attached to an ExecError.
const execStackSize = 4096

// ExecError is stored on a task whose payload panicked. The panic is
// captured on the executing worker, which then resumes its scheduling loop;
// the error surfaces to whichever caller joins the task.
type ExecError struct {
	// Recovered is the value the payload panicked with.
	Recovered any
	// Stack is the executing goroutine's stack at recovery time.
	Stack []byte
}

func newExecError(recovered any) *ExecError {
	buf := make([]byte, execStackSize)
	n := runtime.Stack(buf, false)
	return &ExecError{Recovered: recovered, Stack: buf[:n]}
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("forkjoin: task panicked: %v", e.Recovered)
}
