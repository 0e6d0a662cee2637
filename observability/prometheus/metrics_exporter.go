package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/Swind/go-stealpool/core"
)

const defaultNamespace = "stealpool"

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64

	// PerVictimSteals adds a victim label to the steal counter. Off by default
	// because it multiplies the series count by the worker count.
	PerVictimSteals bool
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	taskErrorTotal      *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	stealTotal          *prom.CounterVec
	perVictim           bool
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
// Collectors already registered by an earlier exporter on reg are reused.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	stealLabels := []string{"pool"}
	if opts.PerVictimSteals {
		stealLabels = append(stealLabels, "victim")
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pool"})
	errorVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_error_total",
		Help:      "Total number of tasks that returned an error.",
	}, []string{"pool"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"pool"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected submissions.",
	}, []string{"pool", "reason"})
	stealVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "steal_total",
		Help:      "Total number of tasks taken from a peer worker's queue.",
	}, stealLabels)

	var errs, err error
	durationVec, err = registerCollector(reg, durationVec)
	errs = multierr.Append(errs, err)
	errorVec, err = registerCollector(reg, errorVec)
	errs = multierr.Append(errs, err)
	panicVec, err = registerCollector(reg, panicVec)
	errs = multierr.Append(errs, err)
	rejectedVec, err = registerCollector(reg, rejectedVec)
	errs = multierr.Append(errs, err)
	stealVec, err = registerCollector(reg, stealVec)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, errs
	}

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		taskErrorTotal:      errorVec,
		taskPanicTotal:      panicVec,
		taskRejectedTotal:   rejectedVec,
		stealTotal:          stealVec,
		perVictim:           opts.PerVictimSteals,
	}, nil
}

// RecordTaskDuration records task execution duration.
func (m *MetricsExporter) RecordTaskDuration(poolName string, duration time.Duration) {
	if m == nil {
		return
	}
	m.taskDurationSeconds.WithLabelValues(normalizeLabel(poolName, "unknown")).Observe(duration.Seconds())
}

// RecordTaskError records a task that returned an error.
func (m *MetricsExporter) RecordTaskError(poolName string) {
	if m == nil {
		return
	}
	m.taskErrorTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(poolName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(poolName, "unknown")).Inc()
}

// RecordTaskRejected records task rejection events.
func (m *MetricsExporter) RecordTaskRejected(poolName string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(poolName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordSteal records a successful steal.
func (m *MetricsExporter) RecordSteal(poolName string, thief, victim int) {
	if m == nil {
		return
	}
	pool := normalizeLabel(poolName, "unknown")
	if m.perVictim {
		m.stealTotal.WithLabelValues(pool, strconv.Itoa(victim)).Inc()
		return
	}
	m.stealTotal.WithLabelValues(pool).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
