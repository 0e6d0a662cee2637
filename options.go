package stealpool

import "github.com/Swind/go-stealpool/core"

// Option customizes a pool built with New.
type Option func(*core.Options)

// WithName sets the pool name used in logs, metrics and Stats.
func WithName(name string) Option {
	return func(o *core.Options) { o.Name = name }
}

// WithStealProbeLimit caps how many peers an idle worker probes.
// A negative limit disables stealing.
func WithStealProbeLimit(n int) Option {
	return func(o *core.Options) { o.StealProbeLimit = n }
}

// WithHistoryCapacity sets how many finished tasks RecentTasks retains.
func WithHistoryCapacity(n int) Option {
	return func(o *core.Options) { o.HistoryCapacity = n }
}

func WithLogger(l core.Logger) Option {
	return func(o *core.Options) { o.Logger = l }
}

func WithMetrics(m core.Metrics) Option {
	return func(o *core.Options) { o.Metrics = m }
}

func WithPanicHandler(h core.PanicHandler) Option {
	return func(o *core.Options) { o.PanicHandler = h }
}

func WithRejectedTaskHandler(h core.RejectedTaskHandler) Option {
	return func(o *core.Options) { o.RejectedTaskHandler = h }
}
