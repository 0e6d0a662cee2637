package stealpool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Swind/go-stealpool/core"
)

// WorkStealingPool runs submitted tasks on a fixed set of worker goroutines.
//
// Every worker owns a queue. Tasks submitted from inside a running task (with
// the ctx the task received) land on the submitting worker's queue; all other
// submissions go through a shared global queue. Idle workers steal from the
// front of their peers' queues.
type WorkStealingPool struct {
	id        string
	workers   int
	scheduler *core.TaskScheduler
	wg        sync.WaitGroup

	shutdownOnce sync.Once
	shutdownDone chan struct{}
	running      atomic.Bool
}

// New creates a pool with the given number of workers and starts them.
func New(workers int, opts ...Option) (*WorkStealingPool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidWorkerCount, workers)
	}

	o := core.Options{Workers: workers}
	for _, opt := range opts {
		opt(&o)
	}
	o.Workers = workers
	return NewWithOptions(o)
}

// NewWithOptions creates a pool from opts and starts its workers.
// Zero fields in opts are filled with defaults.
func NewWithOptions(opts core.Options) (*WorkStealingPool, error) {
	if err := opts.FillDefaults(); err != nil {
		return nil, err
	}

	p := &WorkStealingPool{
		id:           opts.Name,
		workers:      opts.Workers,
		scheduler:    core.NewTaskScheduler(opts),
		shutdownDone: make(chan struct{}),
	}
	p.start()
	return p, nil
}

func (p *WorkStealingPool) start() {
	p.running.Store(true)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
}

// workerLoop is the main loop for each worker.
//
// A task that calls runtime.Goexit unwinds this goroutine; the deferred
// handler then starts a replacement loop for the same worker index, which
// inherits the WaitGroup slot.
func (p *WorkStealingPool) workerLoop(id int) {
	logger := p.scheduler.GetLogger()
	logger.Debug("worker started", core.F("pool", p.id), core.F("worker", id))

	stopped := false
	defer func() {
		if !stopped {
			logger.Warn("worker goroutine exited inside a task, restarting",
				core.F("pool", p.id), core.F("worker", id))
			go p.workerLoop(id)
			return
		}
		logger.Debug("worker stopped", core.F("pool", p.id), core.F("worker", id))
		p.wg.Done()
	}()

	ctx := core.WithWorker(context.Background(), p.scheduler, id)
	for {
		item, ok := p.scheduler.GetWork(id)
		if !ok {
			stopped = true
			return
		}
		p.runTask(ctx, id, item)
	}
}

// runTask executes one task. A panic is turned into a failure on the task's
// future; the worker survives it. A task that ends its goroutine without
// returning or panicking fails with ErrUnknownFailure.
func (p *WorkStealingPool) runTask(ctx context.Context, workerID int, item core.TaskItem) {
	s := p.scheduler
	record := core.TaskExecutionRecord{
		TaskID:    item.ID,
		Name:      item.Name,
		PoolName:  p.id,
		WorkerID:  workerID,
		Source:    item.Source,
		StartedAt: time.Now(),
	}

	returned := false
	s.OnTaskStart()
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			item.Fail(core.NewPanicError(item.ID, workerID, r, stack))
			s.GetPanicHandler().HandlePanic(ctx, p.id, workerID, r, stack)
			s.GetMetrics().RecordTaskPanic(p.id, r)
			record.Panicked = true
			record.Failed = true
		} else if !returned {
			item.Fail(core.NewAbnormalExitError(item.ID, workerID, debug.Stack()))
			s.GetLogger().Error("task exited its goroutine",
				core.F("pool", p.id),
				core.F("worker", workerID),
				core.F("task", item.Name),
				core.F("task_id", item.ID.String()),
			)
			s.GetMetrics().RecordTaskError(p.id)
			record.Failed = true
		}

		record.FinishedAt = time.Now()
		record.Duration = record.FinishedAt.Sub(record.StartedAt)
		s.GetMetrics().RecordTaskDuration(p.id, record.Duration)
		s.OnTaskEnd(record)
	}()

	err := item.Run(ctx)
	returned = true
	if err != nil {
		record.Failed = true
		s.GetLogger().Debug("task returned error",
			core.F("pool", p.id),
			core.F("worker", workerID),
			core.F("task", item.Name),
			core.F("task_id", item.ID.String()),
			core.F("error", err),
		)
		s.GetMetrics().RecordTaskError(p.id)
	}
}

// =============================================================================
// Submission
// =============================================================================

// Submit queues task and returns a future that resolves once it has run.
//
// Pass the ctx a running task received to keep the new task on the current
// worker's queue. After Shutdown has begun Submit returns ErrPoolStopped.
func (p *WorkStealingPool) Submit(ctx context.Context, task Task) (*Future[struct{}], error) {
	return p.SubmitNamed(ctx, "", task)
}

// SubmitNamed is Submit with an explicit task name for logs and history.
func (p *WorkStealingPool) SubmitNamed(ctx context.Context, name string, task Task) (*Future[struct{}], error) {
	if task == nil {
		return nil, core.ErrNilTask
	}
	if err := p.scheduler.CheckAdmission(); err != nil {
		return nil, err
	}
	item, f := core.NewTask(name, task)
	if err := p.scheduler.Post(ctx, item); err != nil {
		return nil, err
	}
	return f, nil
}

// Submit queues a typed work function on pool. The returned future carries
// the function's value, or its error.
func Submit[T any](ctx context.Context, pool *WorkStealingPool, fn func(ctx context.Context) (T, error)) (*Future[T], error) {
	return SubmitNamed(ctx, pool, "", fn)
}

// SubmitNamed is the named form of Submit.
func SubmitNamed[T any](ctx context.Context, pool *WorkStealingPool, name string, fn func(ctx context.Context) (T, error)) (*Future[T], error) {
	if fn == nil {
		return nil, core.ErrNilTask
	}
	if err := pool.scheduler.CheckAdmission(); err != nil {
		return nil, err
	}
	item, f := core.NewWorkTask(name, core.Work[T](fn))
	if err := pool.scheduler.Post(ctx, item); err != nil {
		return nil, err
	}
	return f, nil
}

// =============================================================================
// Drain and shutdown
// =============================================================================

// WaitForIdle blocks until every submitted task, including tasks submitted
// by tasks, has finished. It returns immediately when nothing is outstanding.
func (p *WorkStealingPool) WaitForIdle() {
	p.scheduler.WaitIdle()
}

// WaitForIdleContext is WaitForIdle bounded by ctx.
func (p *WorkStealingPool) WaitForIdleContext(ctx context.Context) error {
	return p.scheduler.WaitIdleContext(ctx)
}

// Shutdown drains the pool, rejects further submissions and joins every
// worker. It is safe to call more than once and from several goroutines;
// all callers return once the first shutdown has completed.
//
// Shutdown must not be called from inside a task.
func (p *WorkStealingPool) Shutdown() {
	p.beginShutdown()
	<-p.shutdownDone
}

// ShutdownContext is Shutdown bounded by ctx. When ctx ends first it returns
// ctx.Err() and the shutdown completes in the background. Every pool runs at
// most one shutdown goroutine, however many callers give up waiting for it;
// it exits only once the pool has drained.
func (p *WorkStealingPool) ShutdownContext(ctx context.Context) error {
	p.beginShutdown()
	select {
	case <-p.shutdownDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkStealingPool) beginShutdown() {
	p.shutdownOnce.Do(func() {
		go func() {
			defer close(p.shutdownDone)
			p.scheduler.WaitIdle()
			p.scheduler.Stop()
			p.wg.Wait()
			p.running.Store(false)
		}()
	})
}

// =============================================================================
// Observability
// =============================================================================

// ID returns the pool name.
func (p *WorkStealingPool) ID() string {
	return p.id
}

// IsRunning reports whether the workers are up.
func (p *WorkStealingPool) IsRunning() bool {
	return p.running.Load()
}

// WorkerCount returns the number of workers
func (p *WorkStealingPool) WorkerCount() int {
	return p.workers
}

func (p *WorkStealingPool) Outstanding() int64     { return p.scheduler.Outstanding() }
func (p *WorkStealingPool) ActiveTaskCount() int64 { return p.scheduler.ActiveTaskCount() }
func (p *WorkStealingPool) QueuedTaskCount() int64 { return p.scheduler.QueuedTaskCount() }
func (p *WorkStealingPool) StealCount() uint64     { return p.scheduler.StealCount() }

// Stats returns a point-in-time snapshot of the pool's counters and queue
// lengths. Values are read without a common lock and may be mutually skewed.
func (p *WorkStealingPool) Stats() PoolStats {
	locals := make([]int, p.workers)
	for i := range locals {
		locals[i] = p.scheduler.LocalQueueLen(i)
	}
	return PoolStats{
		ID:          p.id,
		Workers:     p.workers,
		Outstanding: p.scheduler.Outstanding(),
		Active:      p.scheduler.ActiveTaskCount(),
		Queued:      p.scheduler.QueuedTaskCount(),
		GlobalQueue: p.scheduler.GlobalQueueLen(),
		LocalQueues: locals,
		Steals:      p.scheduler.StealCount(),
		Running:     p.IsRunning(),
	}
}

// RecentTasks returns up to limit finished tasks, newest first.
// limit <= 0 returns everything retained.
func (p *WorkStealingPool) RecentTasks(limit int) []TaskExecutionRecord {
	return p.scheduler.RecentTasks(limit)
}
