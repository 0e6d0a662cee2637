package core

import (
	"context"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// The panic has already been turned into a failure on the task's future by the
// time the handler runs; the handler is for reporting only.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context the task ran with (carries the worker identity)
	// - poolName: The name of the pool where the panic occurred
	// - workerID: The ID of the worker that ran the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler logs panics at error level.
type DefaultPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic value and its stack.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, poolName string, workerID int, panicInfo any, stackTrace []byte) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Error("task panicked",
		F("pool", poolName),
		F("worker", workerID),
		F("panic", panicInfo),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods are called on the hot path and must be non-blocking and fast.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskError records a task that returned a non-nil error.
	RecordTaskError(poolName string)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordTaskRejected records that a submission was rejected.
	RecordTaskRejected(poolName string, reason string)

	// RecordSteal records a task taken from victim's queue by thief.
	RecordSteal(poolName string, thief, victim int)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskError(poolName string)                            {}
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any)             {}
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string)          {}
func (m *NilMetrics) RecordSteal(poolName string, thief, victim int)             {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected tasks
// =============================================================================

// RejectedTaskHandler is called when a submission is rejected.
// This happens once shutdown has raised the stop flag.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	HandleRejectedTask(poolName string, reason string)
}

// DefaultRejectedTaskHandler logs rejected submissions at warn level.
type DefaultRejectedTaskHandler struct {
	Logger Logger
}

// HandleRejectedTask logs the rejected task.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {
	logger := h.Logger
	if logger == nil {
		logger = NewDefaultLogger()
	}
	logger.Warn("task rejected", F("pool", poolName), F("reason", reason))
}
