package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	TaskID     TaskID
	Name       string
	PoolName   string
	WorkerID   int
	Source     WorkSource
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Failed     bool
	Panicked   bool
}

// PoolStats represents runtime observability state for a pool.
type PoolStats struct {
	ID          string
	Workers     int
	Outstanding int64
	Active      int64
	Queued      int64
	GlobalQueue int
	LocalQueues []int
	Steals      uint64
	Running     bool
}
