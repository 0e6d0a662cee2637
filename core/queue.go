package core

import (
	"sync"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// =============================================================================
// GlobalQueue: shared FIFO for external submitters
// =============================================================================

// GlobalQueue receives tasks submitted from outside any worker.
// A single lock guards it; it is only touched when a worker's own queue is empty.
type GlobalQueue struct {
	mu    sync.Mutex
	tasks []TaskItem
}

func NewGlobalQueue() *GlobalQueue {
	return &GlobalQueue{
		tasks: make([]TaskItem, 0, defaultQueueCap),
	}
}

func (q *GlobalQueue) Push(item TaskItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, item)
}

func (q *GlobalQueue) Pop() (TaskItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return TaskItem{}, false
	}

	item := q.tasks[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.tasks[0] = TaskItem{}
	q.tasks = q.tasks[1:]
	q.maybeCompactLocked()

	return item, true
}

func (q *GlobalQueue) maybeCompactLocked() {
	n := len(q.tasks)
	c := cap(q.tasks)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.tasks = make([]TaskItem, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]TaskItem, n, newCap)
	copy(newSlice, q.tasks)
	q.tasks = newSlice
}

func (q *GlobalQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *GlobalQueue) IsEmpty() bool {
	return q.Len() == 0
}

// =============================================================================
// WorkerQueue: per-worker deque
// =============================================================================

// WorkerQueue belongs to one worker. The owner pushes and pops at the back
// (LIFO, keeps freshly spawned subtasks hot); thieves take from the front,
// which holds the oldest and usually coarsest work.
type WorkerQueue struct {
	mu    sync.Mutex
	tasks []TaskItem
}

func NewWorkerQueue() *WorkerQueue {
	return &WorkerQueue{
		tasks: make([]TaskItem, 0, defaultQueueCap),
	}
}

// PushBack appends at the owner end.
func (q *WorkerQueue) PushBack(item TaskItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, item)
}

// PopBack removes the newest task. Owner only.
func (q *WorkerQueue) PopBack() (TaskItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.tasks)
	if n == 0 {
		return TaskItem{}, false
	}
	item := q.tasks[n-1]
	q.tasks[n-1] = TaskItem{}
	q.tasks = q.tasks[:n-1]
	q.maybeCompactLocked()
	return item, true
}

// TrySteal removes the oldest task without ever blocking. It fails when the
// queue is empty or its lock is held by somebody else.
func (q *WorkerQueue) TrySteal() (TaskItem, bool) {
	if !q.mu.TryLock() {
		return TaskItem{}, false
	}
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return TaskItem{}, false
	}
	item := q.tasks[0]
	q.tasks[0] = TaskItem{}
	q.tasks = q.tasks[1:]
	q.maybeCompactLocked()
	return item, true
}

func (q *WorkerQueue) maybeCompactLocked() {
	n := len(q.tasks)
	c := cap(q.tasks)

	if c < compactMinCap || n*compactShrinkFactor >= c {
		return
	}
	newSlice := make([]TaskItem, n, max(max(c/2, defaultQueueCap), n))
	copy(newSlice, q.tasks)
	q.tasks = newSlice
}

func (q *WorkerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
