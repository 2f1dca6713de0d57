// Package scheduler owns the repeating background jobs. Each job is an
// independently timed repeating task with an explicit start/stop lifecycle
// and a re-entrancy guard: a slow run is never started twice by a timer tick.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fortuna/wicket/internal/ingest"
	"github.com/fortuna/wicket/internal/transition"
)

// Config holds scheduler configuration.
type Config struct {
	SweepInterval       time.Duration // transition detection, default 30s
	LiveRefreshInterval time.Duration // live listing refresh, default 60s
	CatalogSyncInterval time.Duration // completed-catalog sync, default 1h

	EnableSweep       bool
	EnableLiveRefresh bool
	EnableCatalogSync bool
}

// DefaultConfig returns the default scheduler configuration.
func DefaultConfig() *Config {
	return &Config{
		SweepInterval:       30 * time.Second,
		LiveRefreshInterval: 60 * time.Second,
		CatalogSyncInterval: time.Hour,
		EnableSweep:         true,
		EnableLiveRefresh:   true,
		EnableCatalogSync:   true,
	}
}

// Orchestrator manages the three scheduled jobs.
type Orchestrator struct {
	config   *Config
	ingester *ingest.LiveIngester
	engine   *transition.Engine
	cancel   context.CancelFunc

	// One guard per job; TryLock keeps a slow run from being re-entered.
	sweepMu   sync.Mutex
	refreshMu sync.Mutex
	syncMu    sync.Mutex

	mu      sync.Mutex
	lastRun map[string]time.Time
}

// NewOrchestrator creates the scheduler.
func NewOrchestrator(ingester *ingest.LiveIngester, engine *transition.Engine, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		config:   config,
		ingester: ingester,
		engine:   engine,
		lastRun:  make(map[string]time.Time),
	}
}

// Start begins all enabled jobs and blocks until the context is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Printf("Scheduler starting (sweep: %v, live refresh: %v, catalog sync: %v)",
		o.config.SweepInterval, o.config.LiveRefreshInterval, o.config.CatalogSyncInterval)

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableSweep {
		go o.runJob(ctx, "sweep", o.config.SweepInterval, o.TriggerSweep)
	}
	if o.config.EnableLiveRefresh {
		go o.runJob(ctx, "live-refresh", o.config.LiveRefreshInterval, o.TriggerLiveRefresh)
	}
	if o.config.EnableCatalogSync {
		go o.runJob(ctx, "catalog-sync", o.config.CatalogSyncInterval, o.TriggerCatalogSync)
	}

	<-ctx.Done()
	log.Println("Scheduler stopping...")
}

// Stop cancels all jobs.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// runJob runs fn immediately and then on every tick. Errors are logged and
// the job simply waits for the next tick; there is no cross-tick retry.
func (o *Orchestrator) runJob(ctx context.Context, name string, interval time.Duration, fn func(context.Context) error) {
	log.Printf("→ %s job started (interval: %v)", name, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := fn(ctx); err != nil {
		log.Printf("  ⚠️  %s: %v", name, err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("→ %s job stopped", name)
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("  ⚠️  %s: %v", name, err)
			}
		}
	}
}

// TriggerSweep runs one transition-detection sweep. Safe to call manually;
// a concurrent run is skipped, not queued.
func (o *Orchestrator) TriggerSweep(ctx context.Context) error {
	if !o.sweepMu.TryLock() {
		log.Println("  sweep already running, skipping tick")
		return nil
	}
	defer o.sweepMu.Unlock()
	defer o.markRun("sweep")

	_, err := o.engine.Sweep(ctx)
	return err
}

// TriggerLiveRefresh runs one live refresh cycle.
func (o *Orchestrator) TriggerLiveRefresh(ctx context.Context) error {
	if !o.refreshMu.TryLock() {
		log.Println("  live refresh already running, skipping tick")
		return nil
	}
	defer o.refreshMu.Unlock()
	defer o.markRun("live-refresh")

	_, err := o.ingester.RefreshLive(ctx)
	return err
}

// TriggerCatalogSync runs one completed-catalog sync cycle.
func (o *Orchestrator) TriggerCatalogSync(ctx context.Context) error {
	if !o.syncMu.TryLock() {
		log.Println("  catalog sync already running, skipping tick")
		return nil
	}
	defer o.syncMu.Unlock()
	defer o.markRun("catalog-sync")

	_, err := o.ingester.SyncCompletedCatalog(ctx)
	return err
}

func (o *Orchestrator) markRun(name string) {
	o.mu.Lock()
	o.lastRun[name] = time.Now().UTC()
	o.mu.Unlock()
}

// GetStatus returns the current scheduler status for the admin surface.
func (o *Orchestrator) GetStatus() map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()

	status := map[string]interface{}{
		"sweep_enabled":         o.config.EnableSweep,
		"sweep_interval":        o.config.SweepInterval.String(),
		"live_refresh_enabled":  o.config.EnableLiveRefresh,
		"live_refresh_interval": o.config.LiveRefreshInterval.String(),
		"catalog_sync_enabled":  o.config.EnableCatalogSync,
		"catalog_sync_interval": o.config.CatalogSyncInterval.String(),
	}
	for name, t := range o.lastRun {
		status["last_"+name] = t.Format(time.RFC3339)
	}
	return status
}
