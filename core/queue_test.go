package core

import (
	"context"
	"sync"
	"testing"
)

func namedItem(name string) TaskItem {
	item, _ := NewTask(name, func(ctx context.Context) {})
	return item
}

// TestGlobalQueue_FIFO verifies first-in-first-out behavior
// Given: A global queue with 3 tasks
// When: Tasks are popped from the queue
// Then: Tasks come out in insertion order
func TestGlobalQueue_FIFO(t *testing.T) {
	// Arrange
	q := NewGlobalQueue()

	// Act
	q.Push(namedItem("a"))
	q.Push(namedItem("b"))
	q.Push(namedItem("c"))

	// Assert
	for i, want := range []string{"a", "b", "c"} {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Step %d: queue is empty, want %s", i, want)
		}
		if item.Name != want {
			t.Errorf("Step %d: name = %s, want %s", i, item.Name, want)
		}
	}
	if !q.IsEmpty() {
		t.Errorf("IsEmpty() = false, want true")
	}
	if _, ok := q.Pop(); ok {
		t.Errorf("Pop() on empty queue = true, want false")
	}
}

// TestGlobalQueue_Compaction verifies the backing slice shrinks after a burst
// Given: A queue that held 1000 tasks
// When: All but a few are popped
// Then: Capacity drops and the queue keeps working
func TestGlobalQueue_Compaction(t *testing.T) {
	// Arrange
	q := NewGlobalQueue()
	for i := 0; i < 1000; i++ {
		q.Push(namedItem("burst"))
	}
	peak := cap(q.tasks)

	// Act
	for i := 0; i < 995; i++ {
		q.Pop()
	}

	// Assert
	if got := cap(q.tasks); got >= peak {
		t.Errorf("cap after drain = %d, want < %d", got, peak)
	}
	if q.Len() != 5 {
		t.Errorf("q.Len() = %d, want 5", q.Len())
	}
	q.Push(namedItem("after"))
	if q.Len() != 6 {
		t.Errorf("q.Len() after push = %d, want 6", q.Len())
	}
}

// TestWorkerQueue_OwnerLIFO verifies owner end ordering
// Given: A worker queue with tasks a, b, c pushed at the back
// When: The owner pops from the back
// Then: Tasks come out newest first
func TestWorkerQueue_OwnerLIFO(t *testing.T) {
	// Arrange
	q := NewWorkerQueue()
	q.PushBack(namedItem("a"))
	q.PushBack(namedItem("b"))
	q.PushBack(namedItem("c"))

	// Assert
	for i, want := range []string{"c", "b", "a"} {
		item, ok := q.PopBack()
		if !ok {
			t.Fatalf("Step %d: queue is empty, want %s", i, want)
		}
		if item.Name != want {
			t.Errorf("Step %d: name = %s, want %s", i, item.Name, want)
		}
	}
	if _, ok := q.PopBack(); ok {
		t.Errorf("PopBack() on empty queue = true, want false")
	}
}

// TestWorkerQueue_StealFromFront verifies thieves take the oldest task
// Given: A worker queue with tasks a, b, c
// When: A thief steals, then the owner pops
// Then: The thief gets a and the owner gets c
func TestWorkerQueue_StealFromFront(t *testing.T) {
	// Arrange
	q := NewWorkerQueue()
	q.PushBack(namedItem("a"))
	q.PushBack(namedItem("b"))
	q.PushBack(namedItem("c"))

	// Act
	stolen, ok := q.TrySteal()
	if !ok {
		t.Fatal("TrySteal() = false, want true")
	}
	owned, _ := q.PopBack()

	// Assert
	if stolen.Name != "a" {
		t.Errorf("stolen = %s, want a", stolen.Name)
	}
	if owned.Name != "c" {
		t.Errorf("owned = %s, want c", owned.Name)
	}
	if q.Len() != 1 {
		t.Errorf("q.Len() = %d, want 1", q.Len())
	}
}

// TestWorkerQueue_TryStealNeverBlocks verifies a busy victim is skipped
// Given: A non-empty worker queue whose lock is held
// When: TrySteal is called
// Then: It fails immediately and the task stays queued
func TestWorkerQueue_TryStealNeverBlocks(t *testing.T) {
	// Arrange
	q := NewWorkerQueue()
	q.PushBack(namedItem("a"))
	q.mu.Lock()

	// Act
	_, ok := q.TrySteal()
	q.mu.Unlock()

	// Assert
	if ok {
		t.Error("TrySteal() on locked queue = true, want false")
	}
	if q.Len() != 1 {
		t.Errorf("q.Len() = %d, want 1", q.Len())
	}
	if _, ok := NewWorkerQueue().TrySteal(); ok {
		t.Error("TrySteal() on empty queue = true, want false")
	}
}

// TestWorkerQueue_NoDuplicateHandout verifies each task is handed out once
// Given: A worker queue with 10000 tasks
// When: The owner pops while 4 thieves steal concurrently
// Then: Every task is received exactly once
func TestWorkerQueue_NoDuplicateHandout(t *testing.T) {
	// Arrange
	const n = 10000
	q := NewWorkerQueue()
	for i := 0; i < n; i++ {
		q.PushBack(namedItem(""))
	}

	var mu sync.Mutex
	seen := make(map[TaskID]int, n)
	record := func(item TaskItem) {
		mu.Lock()
		seen[item.ID]++
		mu.Unlock()
	}

	// Act
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q.Len() > 0 {
				if item, ok := q.TrySteal(); ok {
					record(item)
				}
			}
		}()
	}
	for {
		item, ok := q.PopBack()
		if !ok {
			break
		}
		record(item)
	}
	wg.Wait()

	// Assert
	if len(seen) != n {
		t.Fatalf("distinct tasks = %d, want %d", len(seen), n)
	}
	for id, c := range seen {
		if c != 1 {
			t.Fatalf("task %s handed out %d times", id, c)
		}
	}
}
