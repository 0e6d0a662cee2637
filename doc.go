// Package stealpool provides a work-stealing task pool for Go.
//
// A pool runs a fixed number of worker goroutines. Each submission returns a
// Future that later holds the task's value or failure.
//
// # Quick Start
//
//	pool, err := stealpool.New(4)
//	if err != nil {
//		return err
//	}
//	defer pool.Shutdown()
//
//	f, _ := stealpool.Submit(ctx, pool, func(ctx context.Context) (int, error) {
//		return 42, nil
//	})
//	v, err := f.Get(ctx)
//
// # Key Concepts
//
// Worker queues: every worker owns a deque. A task that submits more tasks
// with the ctx it was given pushes them onto its own worker's queue, and the
// worker pops them newest first.
//
// Global queue: submissions from outside the pool go to a shared FIFO queue.
//
// Stealing: a worker with an empty queue and an empty global queue takes the
// oldest task from a peer, probing at most StealProbeLimit peers (default 4)
// and never blocking on a busy one.
//
// Outstanding work: a task counts as outstanding from a successful Submit
// until it has finished running. WaitForIdle returns when that count is zero,
// so recursively spawned tasks are covered too.
//
// A task should not block on the Future of a task it submitted: nothing runs
// queued work on a waiting worker's behalf, so enough such waits can park
// every worker. Submit the follow-up work instead, or wait from outside the
// pool.
//
// # Failures
//
// An error returned by a typed task is delivered unchanged on its Future. A
// panicking task does not take its worker down: the Future receives a
// *PanicError, which matches ErrTaskFailed when the panic value was an error
// and ErrUnknownFailure otherwise. A task that calls runtime.Goexit also
// fails with ErrUnknownFailure, and its worker is restarted.
//
// A worker's ctx may be kept and used after its task returned, for example by
// a goroutine the task started. Such submissions still run: when the worker
// is idle they go to the global queue.
//
// # Shutdown
//
// Shutdown waits for outstanding work, then rejects new submissions with
// ErrPoolStopped and joins the workers. Submissions made while the drain is
// still running are accepted. ShutdownContext gives up waiting when its ctx
// ends, but the single shutdown goroutine of the pool keeps draining.
package stealpool
