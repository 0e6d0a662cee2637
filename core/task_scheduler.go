package core

import (
	"context"
	"sync"
	"sync/atomic"
)

const rejectReasonStopped = "pool stopped"

// TaskScheduler owns the queues and the shared scheduling state of one pool.
//
// Lock domains are disjoint: each WorkerQueue has its own mutex, the
// GlobalQueue has one, and stateMu guards stop, submitSeq writes and the two
// condition variables. No code path holds more than one of them, except
// stealing, which only ever TryLocks a victim queue.
type TaskScheduler struct {
	name       string
	global     *GlobalQueue
	locals     []*WorkerQueue
	probeBound int

	stateMu  sync.Mutex
	workCond *sync.Cond // idle workers
	idleCond *sync.Cond // WaitIdle callers
	stop     bool
	sleeping []bool // worker parked in workCond.Wait

	// submitSeq is bumped (under stateMu) after every enqueue. A worker only
	// sleeps if it is unchanged since before its last probe.
	submitSeq atomic.Uint64

	outstanding  atomic.Int64 // submitted, not yet finished
	metricActive atomic.Int64 // executing on a worker
	metricQueued atomic.Int64 // sitting in some queue
	steals       atomic.Uint64

	history *executionHistory

	// Handlers and Metrics
	logger              Logger
	panicHandler        PanicHandler
	metrics             Metrics
	rejectedTaskHandler RejectedTaskHandler
}

// NewTaskScheduler builds the scheduler for opts.Workers workers.
// opts must have gone through FillDefaults.
func NewTaskScheduler(opts Options) *TaskScheduler {
	s := &TaskScheduler{
		name:                opts.Name,
		global:              NewGlobalQueue(),
		locals:              make([]*WorkerQueue, opts.Workers),
		sleeping:            make([]bool, opts.Workers),
		probeBound:          opts.probeBound(),
		history:             newExecutionHistory(opts.HistoryCapacity),
		logger:              opts.Logger,
		panicHandler:        opts.PanicHandler,
		metrics:             opts.Metrics,
		rejectedTaskHandler: opts.RejectedTaskHandler,
	}
	for i := range s.locals {
		s.locals[i] = NewWorkerQueue()
	}
	s.workCond = sync.NewCond(&s.stateMu)
	s.idleCond = sync.NewCond(&s.stateMu)
	return s
}

// Post admits item and queues it.
//
// When ctx identifies a worker of this scheduler the item goes to that
// worker's own queue, otherwise to the global queue. A worker ctx that
// escaped into another goroutine may be used after its worker went idle; the
// item then goes to the global queue, or, if the owner parks while the item
// is being pushed, every idle worker is woken so the owner sees it. Once Stop
// has been called Post fails with ErrPoolStopped and changes nothing.
func (s *TaskScheduler) Post(ctx context.Context, item TaskItem) error {
	id, local := workerOf(ctx, s)

	s.stateMu.Lock()
	if s.stop {
		s.stateMu.Unlock()
		s.reject()
		return ErrPoolStopped
	}
	s.outstanding.Add(1)
	if local && s.sleeping[id] {
		local = false
	}
	s.stateMu.Unlock()

	s.metricQueued.Add(1)
	if local {
		item.Source = SourceLocal
		s.locals[id].PushBack(item)
	} else {
		item.Source = SourceGlobal
		s.global.Push(item)
	}

	s.stateMu.Lock()
	s.submitSeq.Add(1)
	ownerParked := local && s.sleeping[id]
	s.stateMu.Unlock()

	if ownerParked {
		s.workCond.Broadcast()
	} else {
		s.workCond.Signal()
	}
	return nil
}

// CheckAdmission fails with ErrPoolStopped, reporting the rejection, once
// Stop has been called. Callers use it to avoid building a task that Post
// would refuse; Post still makes the final decision.
func (s *TaskScheduler) CheckAdmission() error {
	if !s.IsStopped() {
		return nil
	}
	s.reject()
	return ErrPoolStopped
}

func (s *TaskScheduler) reject() {
	s.rejectedTaskHandler.HandleRejectedTask(s.name, rejectReasonStopped)
	s.metrics.RecordTaskRejected(s.name, rejectReasonStopped)
}

// GetWork (Called by Worker)
//
// It looks in the worker's own queue, then the global queue, then steals
// from peers. With nothing found it sleeps until something is submitted or
// the scheduler stops. A task completing does not make a sleeping worker
// probe again; it only re-checks the exit condition. It returns false only
// once Stop has been called and no task is outstanding.
func (s *TaskScheduler) GetWork(workerID int) (TaskItem, bool) {
	for {
		seen := s.submitSeq.Load()

		if item, ok := s.findWork(workerID); ok {
			s.metricQueued.Add(-1)
			return item, true
		}

		s.stateMu.Lock()
		for s.submitSeq.Load() == seen {
			if s.stop && s.outstanding.Load() == 0 {
				s.stateMu.Unlock()
				return TaskItem{}, false
			}
			s.sleeping[workerID] = true
			s.workCond.Wait()
			s.sleeping[workerID] = false
		}
		s.stateMu.Unlock()
	}
}

func (s *TaskScheduler) findWork(workerID int) (TaskItem, bool) {
	if item, ok := s.locals[workerID].PopBack(); ok {
		item.Source = SourceLocal
		return item, true
	}
	if item, ok := s.global.Pop(); ok {
		item.Source = SourceGlobal
		return item, true
	}
	return s.steal(workerID)
}

// steal probes up to probeBound peers starting at workerID+1. A victim whose
// lock is busy is skipped, never waited on.
func (s *TaskScheduler) steal(workerID int) (TaskItem, bool) {
	n := len(s.locals)
	for i := 1; i <= s.probeBound; i++ {
		victim := (workerID + i) % n
		if item, ok := s.locals[victim].TrySteal(); ok {
			item.Source = SourceStolen
			s.steals.Add(1)
			s.metrics.RecordSteal(s.name, workerID, victim)
			return item, true
		}
	}
	return TaskItem{}, false
}

// OnTaskStart marks a task as executing.
func (s *TaskScheduler) OnTaskStart() {
	s.metricActive.Add(1)
}

// OnTaskEnd retires a task: it must be called exactly once per task returned
// by GetWork, on every exit path.
func (s *TaskScheduler) OnTaskEnd(record TaskExecutionRecord) {
	s.history.Add(record)
	s.metricActive.Add(-1)

	s.stateMu.Lock()
	s.outstanding.Add(-1)
	s.stateMu.Unlock()

	s.idleCond.Broadcast()
	s.workCond.Broadcast()
}

// WaitIdle blocks until no task is outstanding. It returns at once when the
// scheduler is already idle and may be called from any number of goroutines.
func (s *TaskScheduler) WaitIdle() {
	s.stateMu.Lock()
	for s.outstanding.Load() > 0 {
		s.idleCond.Wait()
	}
	s.stateMu.Unlock()
}

// WaitIdleContext is WaitIdle bounded by ctx. It leaves nothing behind when
// ctx ends first.
func (s *TaskScheduler) WaitIdleContext(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		// Taking the lock orders the broadcast after the waiter's ctx check.
		s.stateMu.Lock()
		s.stateMu.Unlock()
		s.idleCond.Broadcast()
	})
	defer stop()

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	for s.outstanding.Load() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.idleCond.Wait()
	}
	return nil
}

// Stop raises the stop flag and wakes every idle worker. From now on Post
// fails; workers exit once the outstanding count reaches zero.
func (s *TaskScheduler) Stop() {
	s.stateMu.Lock()
	s.stop = true
	s.stateMu.Unlock()
	s.workCond.Broadcast()
}

// IsStopped reports whether Stop has been called.
func (s *TaskScheduler) IsStopped() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.stop
}

// RecentTasks returns finished task records, newest first.
func (s *TaskScheduler) RecentTasks(limit int) []TaskExecutionRecord {
	return s.history.Recent(limit)
}

// LastTask returns the most recently finished task record.
func (s *TaskScheduler) LastTask() (TaskExecutionRecord, bool) {
	return s.history.Last()
}

// Metrics
func (s *TaskScheduler) Name() string             { return s.name }
func (s *TaskScheduler) WorkerCount() int         { return len(s.locals) }
func (s *TaskScheduler) Outstanding() int64       { return s.outstanding.Load() }
func (s *TaskScheduler) ActiveTaskCount() int64   { return s.metricActive.Load() }
func (s *TaskScheduler) QueuedTaskCount() int64   { return s.metricQueued.Load() }
func (s *TaskScheduler) StealCount() uint64       { return s.steals.Load() }
func (s *TaskScheduler) GlobalQueueLen() int      { return s.global.Len() }
func (s *TaskScheduler) LocalQueueLen(id int) int { return s.locals[id].Len() }

// GetLogger returns the logger for this scheduler
func (s *TaskScheduler) GetLogger() Logger {
	return s.logger
}

// GetPanicHandler returns the panic handler for this scheduler
func (s *TaskScheduler) GetPanicHandler() PanicHandler {
	return s.panicHandler
}

// GetMetrics returns the metrics collector for this scheduler
func (s *TaskScheduler) GetMetrics() Metrics {
	return s.metrics
}
