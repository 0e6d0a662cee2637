package core

import (
	"context"
	"sync"
)

// Work is a typed unit of work whose outcome is delivered on a Future.
type Work[T any] func(ctx context.Context) (T, error)

// Result is the outcome of a task: either Value or Err is meaningful.
type Result[T any] struct {
	Value T
	Err   error
}

// Future is the consumer side of a task's completion handle.
//
// Exactly one Result is ever written. Readers block until it is.
type Future[T any] struct {
	id     TaskID
	done   chan struct{}
	once   sync.Once
	result Result[T]
}

func newFuture[T any](id TaskID) *Future[T] {
	return &Future[T]{id: id, done: make(chan struct{})}
}

// ID returns the TaskID of the task feeding this future.
func (f *Future[T]) ID() TaskID {
	return f.id
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the task finishes or ctx is done.
// A task failure is returned as the error; ctx expiry returns ctx.Err().
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result.Value, f.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait is Get without a deadline.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.result.Value, f.result.Err
}

// Result returns the outcome without blocking; ok is false while pending.
func (f *Future[T]) Result() (Result[T], bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return Result[T]{}, false
	}
}

// complete writes r; later calls are ignored.
func (f *Future[T]) complete(r Result[T]) {
	f.once.Do(func() {
		f.result = r
		close(f.done)
	})
}
