package core

import (
	"fmt"
	"runtime"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
)

// Options configures a work-stealing pool.
//
// Zero values are replaced in FillDefaults: numeric fields from their
// `default` tags, handlers with logger-backed implementations.
type Options struct {
	// Name labels the pool in logs and metrics. Defaults to "pool-<uuid>".
	Name string `mapstructure:"name"`

	// Workers is the fixed number of worker goroutines. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`

	// StealProbeLimit caps how many peers an idle worker probes before it
	// sleeps; the effective bound is min(Workers-1, StealProbeLimit).
	// Zero selects the default; a negative value disables stealing.
	StealProbeLimit int `default:"4" mapstructure:"steal_probe_limit"`

	// HistoryCapacity is the number of finished tasks kept for RecentTasks.
	HistoryCapacity int `default:"100" mapstructure:"history_capacity"`

	Logger              Logger              `mapstructure:"-"`
	PanicHandler        PanicHandler        `mapstructure:"-"`
	Metrics             Metrics             `mapstructure:"-"`
	RejectedTaskHandler RejectedTaskHandler `mapstructure:"-"`
}

// DefaultOptions returns Options with every default applied.
func DefaultOptions() Options {
	var o Options
	_ = o.FillDefaults()
	return o
}

// FillDefaults replaces zero values with defaults and validates the result.
func (o *Options) FillDefaults() error {
	if err := defaults.Set(o); err != nil {
		return fmt.Errorf("apply option defaults: %w", err)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, o.Workers)
	}
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Name == "" {
		o.Name = "pool-" + uuid.NewString()[:8]
	}
	if o.HistoryCapacity < 1 {
		o.HistoryCapacity = defaultTaskHistoryCapacity
	}
	if o.Logger == nil {
		o.Logger = NewDefaultLogger()
	}
	if o.PanicHandler == nil {
		o.PanicHandler = &DefaultPanicHandler{Logger: o.Logger}
	}
	if o.Metrics == nil {
		o.Metrics = &NilMetrics{}
	}
	if o.RejectedTaskHandler == nil {
		o.RejectedTaskHandler = &DefaultRejectedTaskHandler{Logger: o.Logger}
	}
	return nil
}

// probeBound returns how many peers a worker may probe when stealing.
func (o Options) probeBound() int {
	if o.StealProbeLimit < 0 {
		return 0
	}
	return min(o.Workers-1, o.StealProbeLimit)
}
