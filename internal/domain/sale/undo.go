package sale

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockAdjuster is the inventory collaborator that absorbs stock moves
// caused by returns and undos. Implementations mutate batch quantity
// inside the caller's transaction.
type StockAdjuster interface {
	Adjust(ctx context.Context, productID uuid.UUID, batchID *uuid.UUID, delta decimal.Decimal) error
}

// UndoResult describes the outcome of undoing one return entry
type UndoResult struct {
	// Collapsed is true when no active returns remain and the bill
	// reverted to the pristine original
	Collapsed bool
	// Adjusted is the recomputed adjusted bill; nil when collapsed
	Adjusted *SaleRecord
	// Entry is the return log entry after being marked undone
	Entry ReturnLogEntry
}

// UndoCoordinator reverses one logged return entry. The entry is marked
// undone, never removed. When the last active return disappears the bill
// collapses back to the pristine original; otherwise the adjusted bill is
// recomputed from the reduced active-return-set.
type UndoCoordinator struct {
	engine *RecalculationEngine
	stock  StockAdjuster
	logger *zap.Logger
}

// NewUndoCoordinator creates a new undo coordinator
func NewUndoCoordinator(engine *RecalculationEngine, stock StockAdjuster, logger *zap.Logger) *UndoCoordinator {
	return &UndoCoordinator{
		engine: engine,
		stock:  stock,
		logger: logger,
	}
}

// Undo reverses the return entry with the given ID on the original sale.
//
// The goods leave with the customer again, so the batch quantity is
// decremented by the undone quantity. A batch that cannot absorb the
// decrement is logged as a consistency warning and the undo still
// completes; stock may drift until an operator reconciles it.
func (c *UndoCoordinator) Undo(
	ctx context.Context,
	original *SaleRecord,
	entryID uuid.UUID,
	campaign *promotion.DiscountCampaign,
	lookup catalog.PriceLookup,
	batchPrices catalog.BatchPriceLookup,
) (*UndoResult, error) {
	entry := original.FindReturnEntry(entryID)
	if entry == nil {
		return nil, shared.ErrNotFound
	}
	if entry.IsUndone {
		return nil, shared.ErrAlreadyUndone
	}

	entry.IsUndone = true

	if c.stock != nil {
		if err := c.stock.Adjust(ctx, entry.ProductID, entry.BatchID, entry.Quantity.Neg()); err != nil {
			c.logger.Warn("undo could not restore batch stock; quantities may drift",
				zap.String("sale_id", original.ID.String()),
				zap.String("return_entry_id", entry.ID.String()),
				zap.String("product_id", entry.ProductID.String()),
				zap.String("quantity", entry.Quantity.String()),
				zap.Error(err),
			)
		}
	}

	if len(original.ActiveReturns()) == 0 {
		if original.Status == StatusAdjustedActive {
			if err := original.TransitionTo(StatusCompletedOriginal); err != nil {
				return nil, err
			}
		}
		return &UndoResult{
			Collapsed: true,
			Entry:     *entry,
		}, nil
	}

	adjusted, err := c.engine.Recalculate(original, campaign, lookup, batchPrices)
	if err != nil {
		return nil, err
	}
	return &UndoResult{
		Adjusted: adjusted,
		Entry:    *entry,
	}, nil
}
