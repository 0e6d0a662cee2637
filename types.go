package stealpool

import "github.com/Swind/go-stealpool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the stealpool package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// TaskID identifies one submission
type TaskID = core.TaskID

// Future is the completion handle returned by Submit
type Future[T any] = core.Future[T]

// Result is the outcome held by a Future
type Result[T any] = core.Result[T]

// PanicError is delivered on a Future when its task panicked
type PanicError = core.PanicError

// PoolStats and TaskExecutionRecord are the observability snapshots
type PoolStats = core.PoolStats
type TaskExecutionRecord = core.TaskExecutionRecord

// Logger is the structured logging interface the pool writes to
type Logger = core.Logger

// Errors
var (
	ErrPoolStopped        = core.ErrPoolStopped
	ErrNilTask            = core.ErrNilTask
	ErrInvalidWorkerCount = core.ErrInvalidWorkerCount
	ErrTaskFailed         = core.ErrTaskFailed
	ErrUnknownFailure     = core.ErrUnknownFailure
)

// WorkerIDFromContext returns the index of the worker running the task that
// received ctx.
var WorkerIDFromContext = core.WorkerIDFromContext
