package core

import (
	"context"

	"github.com/google/uuid"
)

// Task is the unit of work (Closure).
//
// The ctx handed to a Task by a worker carries that worker's identity, so
// submissions made with it from inside the task stay on the worker's own queue.
type Task func(ctx context.Context)

// TaskID uniquely identifies one submission.
type TaskID uuid.UUID

// GenerateTaskID returns a new random TaskID.
func GenerateTaskID() TaskID {
	return TaskID(uuid.New())
}

// IsZero reports whether id is the zero TaskID.
func (id TaskID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id TaskID) String() string {
	return uuid.UUID(id).String()
}

// =============================================================================
// Context Helper
// =============================================================================

type workerKeyType struct{}

var workerKey workerKeyType

// workerIdentity ties a worker index to the scheduler that owns it, so a ctx
// leaking from one pool into another is treated as an external caller.
type workerIdentity struct {
	owner *TaskScheduler
	id    int
}

// WithWorker returns a ctx that marks the caller as worker id of s.
func WithWorker(ctx context.Context, s *TaskScheduler, id int) context.Context {
	return context.WithValue(ctx, workerKey, workerIdentity{owner: s, id: id})
}

// WorkerIDFromContext returns the worker index stored in ctx, if any.
func WorkerIDFromContext(ctx context.Context) (int, bool) {
	if ctx == nil {
		return -1, false
	}
	if v, ok := ctx.Value(workerKey).(workerIdentity); ok {
		return v.id, true
	}
	return -1, false
}

func workerOf(ctx context.Context, s *TaskScheduler) (int, bool) {
	if ctx == nil {
		return -1, false
	}
	v, ok := ctx.Value(workerKey).(workerIdentity)
	if !ok || v.owner != s {
		return -1, false
	}
	return v.id, true
}
