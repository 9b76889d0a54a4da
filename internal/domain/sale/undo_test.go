package sale

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stockAdjustment struct {
	ProductID uuid.UUID
	Delta     decimal.Decimal
}

type fakeStockAdjuster struct {
	adjustments []stockAdjustment
	err         error
}

func (f *fakeStockAdjuster) Adjust(_ context.Context, productID uuid.UUID, _ *uuid.UUID, delta decimal.Decimal) error {
	if f.err != nil {
		return f.err
	}
	f.adjustments = append(f.adjustments, stockAdjustment{ProductID: productID, Delta: delta})
	return nil
}

func newUndoCoordinator(stock StockAdjuster) *UndoCoordinator {
	return NewUndoCoordinator(NewRecalculationEngine(), stock, zap.NewNop())
}

func TestUndoCoordinator_Undo(t *testing.T) {
	ctx := context.Background()

	t.Run("fails for unknown entry", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		coordinator := newUndoCoordinator(&fakeStockAdjuster{})

		_, err := coordinator.Undo(ctx, record, uuid.New(), testCampaign(t), lookup, nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects re-undoing an entry", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		entry, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)
		coordinator := newUndoCoordinator(&fakeStockAdjuster{})

		_, err = coordinator.Undo(ctx, record, entry.ID, testCampaign(t), lookup, nil)
		require.NoError(t, err)
		_, err = coordinator.Undo(ctx, record, entry.ID, testCampaign(t), lookup, nil)
		assert.ErrorIs(t, err, shared.ErrAlreadyUndone)
	})

	t.Run("undoing the last return collapses to the pristine original", func(t *testing.T) {
		// Scenario: 4 of 10 units returned (total 567), then undone.
		// The bill reverts to 945 and the log entry is kept, marked
		// undone.
		record, lookup := testOriginalSale(t)
		campaign := testCampaign(t)
		entry, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)
		require.NoError(t, record.TransitionTo(StatusAdjustedActive))

		coordinator := newUndoCoordinator(&fakeStockAdjuster{})
		result, err := coordinator.Undo(ctx, record, entry.ID, campaign, lookup, nil)
		require.NoError(t, err)

		assert.True(t, result.Collapsed)
		assert.Nil(t, result.Adjusted)
		assert.True(t, result.Entry.IsUndone)
		assert.Equal(t, StatusCompletedOriginal, record.Status)
		assert.True(t, record.TotalAmount.Equal(dec("945")))
		assert.Empty(t, record.ActiveReturns())
		assert.Len(t, record.ReturnLog, 1) // retained, never deleted
	})

	t.Run("undoing one of several returns recomputes the adjusted bill", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		campaign := testCampaign(t)
		first, err := record.AppendReturn(record.Items[0], dec("2"), dec("90"), uuid.New())
		require.NoError(t, err)
		_, err = record.AppendReturn(record.Items[0], dec("2"), dec("90"), uuid.New())
		require.NoError(t, err)
		require.NoError(t, record.TransitionTo(StatusAdjustedActive))

		coordinator := newUndoCoordinator(&fakeStockAdjuster{})
		result, err := coordinator.Undo(ctx, record, first.ID, campaign, lookup, nil)
		require.NoError(t, err)

		assert.False(t, result.Collapsed)
		require.NotNil(t, result.Adjusted)
		assert.Equal(t, StatusAdjustedActive, record.Status)
		// 8 units kept: line value 800, discount 80, net 720, 5% tax.
		assert.True(t, result.Adjusted.Items[0].Quantity.Equal(dec("8")))
		assert.True(t, result.Adjusted.TotalAmount.Equal(dec("756")))
	})

	t.Run("undo is the inverse of a single return", func(t *testing.T) {
		engine := NewRecalculationEngine()
		record, lookup := testOriginalSale(t)
		campaign := testCampaign(t)

		_, err := record.AppendReturn(record.Items[0], dec("3"), dec("90"), uuid.New())
		require.NoError(t, err)
		expected, err := engine.Recalculate(record, campaign, lookup, nil)
		require.NoError(t, err)

		extra, err := record.AppendReturn(record.Items[0], dec("2"), dec("90"), uuid.New())
		require.NoError(t, err)
		_, err = engine.Recalculate(record, campaign, lookup, nil)
		require.NoError(t, err)

		coordinator := newUndoCoordinator(&fakeStockAdjuster{})
		result, err := coordinator.Undo(ctx, record, extra.ID, campaign, lookup, nil)
		require.NoError(t, err)

		require.NotNil(t, result.Adjusted)
		assert.True(t, result.Adjusted.TotalAmount.Equal(expected.TotalAmount))
		assert.True(t, result.Adjusted.ItemDiscountTotal.Equal(expected.ItemDiscountTotal))
		assert.True(t, result.Adjusted.TaxTotal.Equal(expected.TaxTotal))
	})

	t.Run("decrements batch stock by the undone quantity", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		entry, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		stock := &fakeStockAdjuster{}
		coordinator := newUndoCoordinator(stock)
		_, err = coordinator.Undo(ctx, record, entry.ID, testCampaign(t), lookup, nil)
		require.NoError(t, err)

		require.Len(t, stock.adjustments, 1)
		assert.Equal(t, record.Items[0].ProductID, stock.adjustments[0].ProductID)
		assert.True(t, stock.adjustments[0].Delta.Equal(dec("-4")))
	})

	t.Run("stock shortfall is logged, not fatal", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		entry, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		stock := &fakeStockAdjuster{err: shared.ErrInsufficientStock}
		coordinator := newUndoCoordinator(stock)
		result, err := coordinator.Undo(ctx, record, entry.ID, testCampaign(t), lookup, nil)
		require.NoError(t, err)
		assert.True(t, result.Entry.IsUndone)
	})
}
