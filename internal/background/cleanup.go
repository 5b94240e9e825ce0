package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/habitaro/authgate/internal/services"
)

// CleanupManager periodically sweeps stale attempt records out of the
// attempt store. The sweep is housekeeping: the guard applies the
// inactivity window on every read regardless of whether the janitor has
// run.
type CleanupManager struct {
	store    services.AttemptStore
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	store services.AttemptStore,
	logger *slog.Logger,
	interval time.Duration,
) *CleanupManager {
	return &CleanupManager{
		store:    store,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runSweep(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := cm.store.Sweep(sweepCtx)
	if err != nil {
		cm.logger.Error("failed to sweep attempt records", slog.Any("error", err))
		return
	}

	if removed > 0 {
		cm.logger.Info("attempt record sweep completed", slog.Int("records_removed", removed))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
