/*
scheduler.go - Automated compaction scheduler

PURPOSE:
  Periodically merges duplicate (user, day) records left behind by manual
  edits to the store file or by older writers.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Each run is one Ledger.Compact call, which rewrites the store only when
    something was merged

CONFIGURATION:
  - CheckInterval: How often to run (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewCompactionScheduler(l, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Compact endpoint (manual trigger)
  - ledger/compact.go: The merge itself
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/warp/attendance-ledger/ledger"
)

// CompactionScheduler runs Ledger.Compact on a ticker.
type CompactionScheduler struct {
	Ledger        *ledger.Ledger
	CheckInterval time.Duration
	Enabled       bool

	logger  *slog.Logger
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun time.Time
}

// NewCompactionScheduler creates a new scheduler.
func NewCompactionScheduler(l *ledger.Ledger, logger *slog.Logger) *CompactionScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompactionScheduler{
		Ledger:        l,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		logger:        logger.With("component", "scheduler"),
	}
}

// Start begins the scheduler.
func (cs *CompactionScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		cs.logger.Info("compaction disabled, not starting")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run(cs.ticker.C, cs.stop)

	cs.logger.Info("compaction scheduler started", "interval", cs.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (cs *CompactionScheduler) Stop() {
	cs.mu.Lock()
	ticker, stop := cs.ticker, cs.stop
	cs.ticker = nil
	cs.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(stop)
		cs.wg.Wait()
		cs.logger.Info("compaction scheduler stopped")
	}
}

func (cs *CompactionScheduler) run(ticks <-chan time.Time, stop <-chan struct{}) {
	defer cs.wg.Done()

	// Run immediately on start
	cs.RunNow()

	for {
		select {
		case <-ticks:
			cs.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow performs one compaction pass and returns how many records were
// merged.
func (cs *CompactionScheduler) RunNow() int {
	ctx, cancel := context.WithTimeout(context.Background(), cs.CheckInterval)
	defer cancel()

	merged, err := cs.Ledger.Compact(ctx)

	cs.mu.Lock()
	cs.lastRun = time.Now()
	cs.mu.Unlock()

	if err != nil {
		cs.logger.Error("compaction failed", "error", err)
		return 0
	}
	if merged > 0 {
		cs.logger.Info("compaction merged duplicates", "merged", merged)
	}
	return merged
}

// LastRun returns when the last pass finished, zero if none has.
func (cs *CompactionScheduler) LastRun() time.Time {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.lastRun
}

// GetNextRunTime returns when the next scheduled check will occur.
func (cs *CompactionScheduler) GetNextRunTime() time.Time {
	return cs.LastRun().Add(cs.CheckInterval)
}
