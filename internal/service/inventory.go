package service

import (
	"context"

	"shop-backend/internal/util"

	"go.uber.org/zap"
)

// InventoryStore is the slice of the store the ledger needs
type InventoryStore interface {
	DecrementStock(ctx context.Context, productID int64, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID int64, qty int) (bool, error)
}

// InventoryLedger owns product stock adjustments. Each adjustment is a single
// atomic row update; decrements floor at zero. A missing product row is
// logged and skipped so an order's lifecycle is never blocked by it.
type InventoryLedger struct {
	store  InventoryStore
	logger *zap.Logger
}

// NewInventoryLedger creates a new inventory ledger
func NewInventoryLedger(store InventoryStore) *InventoryLedger {
	return &InventoryLedger{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Decrement reduces a product's stock by qty, floored at zero
func (l *InventoryLedger) Decrement(ctx context.Context, productID int64, qty int) error {
	found, err := l.store.DecrementStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !found {
		util.StockAdjustmentsSkipped.Inc()
		l.logger.Warn("Product not found when decrementing stock",
			zap.Int64("product_id", productID),
			zap.Int("quantity", qty))
		return nil
	}
	util.StockAdjustmentsTotal.WithLabelValues("decrement").Inc()
	return nil
}

// Increment restores a product's stock by qty
func (l *InventoryLedger) Increment(ctx context.Context, productID int64, qty int) error {
	found, err := l.store.IncrementStock(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !found {
		util.StockAdjustmentsSkipped.Inc()
		l.logger.Warn("Product not found when restoring stock",
			zap.Int64("product_id", productID),
			zap.Int("quantity", qty))
		return nil
	}
	util.StockAdjustmentsTotal.WithLabelValues("increment").Inc()
	return nil
}
