package worker

import (
	"context"
	"time"

	"shop-backend/internal/util"

	"go.uber.org/zap"
)

// Reconciler is the deal reconciliation pass run on each tick
type Reconciler interface {
	Reconcile(ctx context.Context, now time.Time) error
}

// DealWorker runs deal reconciliation periodically, outside the request
// path. One pass runs immediately on start so a restart never leaves stale
// sale state until the first tick.
type DealWorker struct {
	deals    Reconciler
	interval time.Duration
	logger   *zap.Logger
}

// NewDealWorker creates a new deal scheduler worker
func NewDealWorker(deals Reconciler, interval time.Duration) *DealWorker {
	return &DealWorker{
		deals:    deals,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Start runs the reconciliation loop until the context is cancelled
func (w *DealWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting deal scheduler",
		zap.Duration("interval", w.interval))

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Deal scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *DealWorker) runOnce(ctx context.Context) {
	if err := w.deals.Reconcile(ctx, time.Now()); err != nil {
		w.logger.Error("Deal reconciliation pass failed", zap.Error(err))
	}
}
