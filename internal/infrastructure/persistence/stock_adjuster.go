package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
)

// BatchStockAdjuster adapts the stock batch repository to the
// sale.StockAdjuster collaborator used by return and undo flows.
type BatchStockAdjuster struct {
	batches catalog.StockBatchRepository
}

// NewBatchStockAdjuster creates a new BatchStockAdjuster
func NewBatchStockAdjuster(batches catalog.StockBatchRepository) *BatchStockAdjuster {
	return &BatchStockAdjuster{batches: batches}
}

// Adjust applies a quantity delta to the line's batch. Lines sold without
// batch tracking (services, untracked goods) carry no batch ID and need no
// stock movement.
func (a *BatchStockAdjuster) Adjust(ctx context.Context, _ uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error {
	if batchID == nil {
		return nil
	}
	return a.batches.AdjustQuantity(ctx, *batchID, delta)
}

// Ensure BatchStockAdjuster implements StockAdjuster
var _ sale.StockAdjuster = (*BatchStockAdjuster)(nil)
