package core

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by submissions made after shutdown has begun.
	ErrPoolStopped = errors.New("stealpool: pool stopped")

	// ErrNilTask is returned when a nil task or work function is submitted.
	ErrNilTask = errors.New("stealpool: nil task")

	// ErrInvalidWorkerCount is returned when a pool is built with fewer than one worker.
	ErrInvalidWorkerCount = errors.New("stealpool: worker count must be positive")

	// ErrTaskFailed marks a task that panicked with an error value.
	ErrTaskFailed = errors.New("stealpool: task failed")

	// ErrUnknownFailure marks a task that panicked with a non-error value or
	// ended its goroutine without returning.
	ErrUnknownFailure = errors.New("stealpool: unknown task failure")
)

// PanicError is delivered on a task's future when the task panicked.
//
// errors.Is(err, ErrTaskFailed) holds when the panic value was an error, and
// errors.Is(err, ErrUnknownFailure) otherwise. When Value is an error it is
// also reachable through errors.Is / errors.As.
type PanicError struct {
	TaskID   TaskID
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %s panicked on worker %d: %v", e.TaskID, e.WorkerID, e.Value)
}

func (e *PanicError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrTaskFailed, err}
	}
	return []error{ErrUnknownFailure}
}

// NewPanicError builds the failure delivered for a recovered panic.
func NewPanicError(id TaskID, workerID int, value any, stack []byte) *PanicError {
	return &PanicError{TaskID: id, WorkerID: workerID, Value: value, Stack: stack}
}

// abnormalExit is the PanicError value of a task that left its goroutine
// through runtime.Goexit.
type abnormalExit struct{}

func (abnormalExit) String() string { return "goroutine exited without returning" }

// NewAbnormalExitError builds the failure delivered for a task that ended its
// goroutine without returning or panicking.
func NewAbnormalExitError(id TaskID, workerID int, stack []byte) *PanicError {
	return &PanicError{TaskID: id, WorkerID: workerID, Value: abnormalExit{}, Stack: stack}
}
