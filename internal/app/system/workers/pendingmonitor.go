// internal/app/system/workers/pendingmonitor.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	transactionstore "github.com/quantrinhansu123/finance-up-sub001/internal/app/store/transactions"
	"github.com/quantrinhansu123/finance-up-sub001/internal/domain/models"
)

// PendingMonitor is a background worker that periodically counts
// transactions that have been sitting in the approval queue longer than
// a threshold and logs them so operators notice a stuck queue.
type PendingMonitor struct {
	transactions   *transactionstore.Store
	log            *zap.Logger
	interval       time.Duration
	staleThreshold time.Duration
	stopCh         chan struct{}
	wg             sync.WaitGroup
}

// NewPendingMonitor creates a new pending-approval monitor.
//
// Parameters:
//   - txStore: the transactions store
//   - logger: zap logger for logging
//   - interval: how often to check (e.g., 10 minutes)
//   - staleThreshold: how long a transaction may stay pending before it
//     is reported (e.g., 24 hours)
func NewPendingMonitor(txStore *transactionstore.Store, logger *zap.Logger, interval, staleThreshold time.Duration) *PendingMonitor {
	return &PendingMonitor{
		transactions:   txStore,
		log:            logger,
		interval:       interval,
		staleThreshold: staleThreshold,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the background monitoring loop.
func (w *PendingMonitor) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("pending-approval monitor started",
		zap.Duration("interval", w.interval),
		zap.Duration("stale_threshold", w.staleThreshold))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *PendingMonitor) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("pending-approval monitor stopped")
}

func (w *PendingMonitor) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *PendingMonitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-w.staleThreshold)
	count, err := w.transactions.Count(ctx, transactionstore.Filter{
		Status: models.StatusPending,
		End:    &cutoff,
	})
	if err != nil {
		w.log.Error("failed to count stale pending transactions", zap.Error(err))
		return
	}

	if count > 0 {
		w.log.Warn("transactions waiting for approval past threshold",
			zap.Int64("count", count),
			zap.Duration("stale_threshold", w.staleThreshold))
	}
}
