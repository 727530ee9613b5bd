/*
scheduler.go - Season override reconciliation scheduler

PURPOSE:
  Periodically makes sure every active channel rate modifier has an override
  row for every season of its property's catalog. Rows are also created on
  first read and when a catalog is saved; the scheduler covers rate
  modifiers added outside those paths and databases restored from backups.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Walks every stored catalog; failures on one property are logged and the
    walk continues with the next
  - Idempotent: existing rows (customized or not) are never touched

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReconciliationScheduler(store, resolver, log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - legacy/override.go: Resolver.EnsureForModifier
  - handlers.go: PutCatalog (reconciles on save)
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/warp/rate-engine/legacy"
	"github.com/warp/rate-engine/pricing"
	"github.com/warp/rate-engine/store/sqlite"
	"go.uber.org/zap"
)

// ReconciliationScheduler keeps the season override table complete.
type ReconciliationScheduler struct {
	Store         *sqlite.Store
	Resolver      *legacy.Resolver
	Log           *zap.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReconciliationScheduler creates a new scheduler.
func NewReconciliationScheduler(store *sqlite.Store, resolver *legacy.Resolver, log *zap.Logger) *ReconciliationScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReconciliationScheduler{
		Store:         store,
		Resolver:      resolver,
		Log:           log,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scheduler.
func (rs *ReconciliationScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Info("override reconciliation disabled")
		return
	}
	if rs.ticker != nil {
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.stop = make(chan struct{})
	rs.wg.Add(1)

	go rs.run()

	rs.Log.Info("override reconciliation started", zap.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for a running pass to finish.
func (rs *ReconciliationScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Log.Info("override reconciliation stopped")
	}
}

func (rs *ReconciliationScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.RunNow(context.Background())

	for {
		select {
		case <-rs.ticker.C:
			rs.RunNow(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// RunNow reconciles every stored catalog and returns the rows created.
func (rs *ReconciliationScheduler) RunNow(ctx context.Context) int {
	records, err := rs.Store.ListCatalogs(ctx)
	if err != nil {
		rs.Log.Error("list catalogs", zap.Error(err))
		return 0
	}

	total := 0
	for _, rec := range records {
		n, err := rs.reconcile(ctx, rec.PropertyID)
		if err != nil {
			rs.Log.Error("reconcile overrides", zap.String("property", string(rec.PropertyID)), zap.Error(err))
			continue
		}
		total += n
	}
	if total > 0 {
		rs.Log.Info("override rows created", zap.Int("rows", total), zap.Int("properties", len(records)))
	}
	return total
}

func (rs *ReconciliationScheduler) reconcile(ctx context.Context, property pricing.PropertyID) (int, error) {
	bundle, err := rs.Store.Bundle(ctx, property)
	if err != nil {
		return 0, err
	}
	return ensureOverrides(ctx, rs.Resolver, bundle)
}

// GetNextRunTime returns when the next scheduled check will occur.
func (rs *ReconciliationScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(rs.CheckInterval)
}
