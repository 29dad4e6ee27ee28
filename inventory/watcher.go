/*
watcher.go - Background stock alert watcher

PURPOSE:
  Periodically re-evaluates the reorder rules and logs every variant
  sitting under its threshold, so a shortage shows up in the server
  logs even when nobody has the stock page open.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Re-checks immediately on start, then on every tick
  - Logs one warning per variant in shortage, plus a summary line
  - Purely advisory: it never mutates stock or rules

CONFIGURATION:
  - Interval: how often to check (default: 1 hour)
  - Enabled: whether the watcher is active (default: true)

USAGE:
  watcher := inventory.NewWatcher(svc, log)
  watcher.Start()
  // ... on shutdown
  watcher.Stop()

SEE ALSO:
  - inventory.go: Alerts, the view this watcher polls
  - api/handlers.go: ListAlerts, the on-demand equivalent
*/
package inventory

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Watcher polls the reorder alerts and logs shortages.
type Watcher struct {
	Service  *Service
	Log      *zap.Logger
	Interval time.Duration
	Enabled  bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewWatcher creates a watcher with the default interval.
func NewWatcher(svc *Service, log *zap.Logger) *Watcher {
	return &Watcher{
		Service:  svc,
		Log:      log,
		Interval: 1 * time.Hour,
		Enabled:  true,
		stop:     make(chan struct{}),
	}
}

// Start begins the background checks.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.Enabled {
		w.Log.Info("stock watcher disabled, not starting")
		return
	}

	w.ticker = time.NewTicker(w.Interval)
	w.wg.Add(1)

	go w.run()

	w.Log.Info("stock watcher started", zap.Duration("interval", w.Interval))
}

// Stop halts the background checks and waits for the current one to finish.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ticker != nil {
		w.ticker.Stop()
		close(w.stop)
		w.wg.Wait()
		w.Log.Info("stock watcher stopped")
	}
}

func (w *Watcher) run() {
	defer w.wg.Done()

	// Check right away so a shortage is visible at boot.
	w.check()

	for {
		select {
		case <-w.ticker.C:
			w.check()
		case <-w.stop:
			return
		}
	}
}

func (w *Watcher) check() {
	ctx := context.Background()

	alerts, err := w.Service.Alerts(ctx)
	if err != nil {
		w.Log.Error("stock watcher check failed", zap.Error(err))
		return
	}
	if len(alerts) == 0 {
		return
	}

	for _, a := range alerts {
		w.Log.Warn("stock under reorder threshold",
			zap.String("product", a.Product.Name),
			zap.Int("size_l", a.Variant.SizeL),
			zap.Int("on_hand", a.OnHand),
			zap.Int("min_qty", a.MinQty),
			zap.Int("shortfall", a.Shortfall))
	}
	w.Log.Warn("stock shortages detected", zap.Int("variants", len(alerts)))
}
