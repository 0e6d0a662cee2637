package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/Swind/go-stealpool/core"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolOutstanding *prom.GaugeVec
	poolActive      *prom.GaugeVec
	poolQueued      *prom.GaugeVec
	poolGlobalQueue *prom.GaugeVec
	poolWorkers     *prom.GaugeVec
	poolSteals      *prom.GaugeVec
	poolRunning     *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: defaultNamespace,
			Name:      name,
			Help:      help,
		}, []string{"pool"})
	}

	p := &SnapshotPoller{
		interval:        interval,
		pools:           make(map[string]PoolSnapshotProvider),
		poolOutstanding: gauge("pool_outstanding", "Submitted but unfinished tasks per pool."),
		poolActive:      gauge("pool_active", "Executing tasks per pool."),
		poolQueued:      gauge("pool_queued", "Queued tasks per pool."),
		poolGlobalQueue: gauge("pool_global_queue", "Global queue length per pool."),
		poolWorkers:     gauge("pool_workers", "Worker count per pool."),
		poolSteals:      gauge("pool_steals", "Steal count snapshot per pool."),
		poolRunning:     gauge("pool_running", "Pool running state (1=running, 0=stopped)."),
	}

	var errs, err error
	for _, g := range []**prom.GaugeVec{
		&p.poolOutstanding,
		&p.poolActive,
		&p.poolQueued,
		&p.poolGlobalQueue,
		&p.poolWorkers,
		&p.poolSteals,
		&p.poolRunning,
	} {
		*g, err = registerCollector(reg, *g)
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, errs
	}
	return p, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// RemovePool stops exporting name and deletes its series.
func (p *SnapshotPoller) RemovePool(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	delete(p.pools, name)
	p.poolsMu.Unlock()

	for _, g := range []*prom.GaugeVec{
		p.poolOutstanding, p.poolActive, p.poolQueued, p.poolGlobalQueue,
		p.poolWorkers, p.poolSteals, p.poolRunning,
	} {
		g.DeleteLabelValues(name)
	}
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Collect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Collect()
		}
	}
}

// Collect takes one snapshot of every registered pool.
func (p *SnapshotPoller) Collect() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolOutstanding.WithLabelValues(name).Set(float64(stats.Outstanding))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolGlobalQueue.WithLabelValues(name).Set(float64(stats.GlobalQueue))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolSteals.WithLabelValues(name).Set(float64(stats.Steals))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
}
