package core

import (
	"context"
	"reflect"
	"runtime"
	"sync"
)

const defaultTaskHistoryCapacity = 100

// WorkSource tells where a worker found the task it ran.
type WorkSource int

const (
	SourceLocal WorkSource = iota
	SourceGlobal
	SourceStolen
)

func (s WorkSource) String() string {
	switch s {
	case SourceLocal:
		return "local"
	case SourceGlobal:
		return "global"
	case SourceStolen:
		return "stolen"
	default:
		return "unknown"
	}
}

// TaskItem is one queued submission. Values are produced by NewTask and
// NewWorkTask; the zero value is not runnable.
type TaskItem struct {
	ID     TaskID
	Name   string
	Source WorkSource

	run  func(ctx context.Context) error
	fail func(err error)
}

// Run executes the task and completes its future. A panic in the task
// propagates to the caller, which must recover it and call Fail.
func (it TaskItem) Run(ctx context.Context) error {
	return it.run(ctx)
}

// Fail completes the task's future with err. It is a no-op if the future
// already holds a result.
func (it TaskItem) Fail(err error) {
	it.fail(err)
}

// NewTask wraps a fire-and-forget Task. Its future resolves to struct{}{}
// once the task returns.
func NewTask(name string, task Task) (TaskItem, *Future[struct{}]) {
	id := GenerateTaskID()
	f := newFuture[struct{}](id)
	return TaskItem{
		ID:   id,
		Name: resolveTaskName(task, name),
		run: func(ctx context.Context) error {
			task(ctx)
			f.complete(Result[struct{}]{})
			return nil
		},
		fail: func(err error) { f.complete(Result[struct{}]{Err: err}) },
	}, f
}

// NewWorkTask wraps a typed work function. Its future resolves to the
// function's value or error.
func NewWorkTask[T any](name string, fn Work[T]) (TaskItem, *Future[T]) {
	id := GenerateTaskID()
	f := newFuture[T](id)
	return TaskItem{
		ID:   id,
		Name: resolveTaskName(fn, name),
		run: func(ctx context.Context) error {
			v, err := fn(ctx)
			f.complete(Result[T]{Value: v, Err: err})
			return err
		},
		fail: func(err error) { f.complete(Result[T]{Err: err}) },
	}, f
}

// =============================================================================
// Execution history
// =============================================================================

type executionHistory struct {
	mu    sync.Mutex
	items []TaskExecutionRecord
	head  int
	count int
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = defaultTaskHistoryCapacity
	}
	return &executionHistory{items: make([]TaskExecutionRecord, capacity)}
}

func (h *executionHistory) Add(record TaskExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first. limit <= 0 means all.
func (h *executionHistory) Recent(limit int) []TaskExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]TaskExecutionRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

func (h *executionHistory) Last() (TaskExecutionRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return TaskExecutionRecord{}, false
	}

	idx := (h.head - 1 + len(h.items)) % len(h.items)
	return h.items[idx], true
}

func resolveTaskName(task any, explicit string) string {
	if explicit != "" {
		return explicit
	}

	if task == nil {
		return "anonymous"
	}

	v := reflect.ValueOf(task)
	if v.Kind() != reflect.Func || v.IsNil() {
		return "anonymous"
	}

	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}
	return fn.Name()
}
