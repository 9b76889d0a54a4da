package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockBatchRepository_AdjustQuantity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	seedBatch := func(t *testing.T, quantity int64) *catalog.StockBatch {
		t.Helper()
		batch, err := catalog.NewStockBatch(uuid.New(), decimal.NewFromInt(100), decimal.NewFromInt(quantity))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, batch))
		return batch
	}

	t.Run("consumes and restores quantity", func(t *testing.T) {
		batch := seedBatch(t, 10)

		require.NoError(t, repo.AdjustQuantity(ctx, batch.ID, decimal.NewFromInt(-4)))
		loaded, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Quantity.Equal(decimal.NewFromInt(6)))

		require.NoError(t, repo.AdjustQuantity(ctx, batch.ID, decimal.NewFromInt(4)))
		loaded, err = repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects a draw below zero", func(t *testing.T) {
		batch := seedBatch(t, 3)

		err := repo.AdjustQuantity(ctx, batch.ID, decimal.NewFromInt(-5))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)

		loaded, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Quantity.Equal(decimal.NewFromInt(3)))
	})

	t.Run("returns ErrNotFound for unknown batch", func(t *testing.T) {
		err := repo.AdjustQuantity(ctx, uuid.New(), decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockBatchRepository_PriceLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBatchRepository(db)
	ctx := context.Background()

	first, err := catalog.NewStockBatch(uuid.New(), decimal.NewFromInt(90), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))
	second, err := catalog.NewStockBatch(uuid.New(), decimal.NewFromInt(85), decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	t.Run("loads prices for known batches only", func(t *testing.T) {
		lookup, err := repo.PriceLookup(ctx, []uuid.UUID{first.ID, second.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, lookup, 2)

		price, ok := lookup.Price(first.ID)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.NewFromInt(90)))
		price, ok = lookup.Price(second.ID)
		require.True(t, ok)
		assert.True(t, price.Equal(decimal.NewFromInt(85)))
	})

	t.Run("empty input yields an empty lookup without a query", func(t *testing.T) {
		lookup, err := repo.PriceLookup(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, lookup)
	})
}

func TestBatchStockAdjuster(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockBatchRepository(db)
	adjuster := NewBatchStockAdjuster(repo)
	ctx := context.Background()

	t.Run("adjusts the tracked batch", func(t *testing.T) {
		batch, err := catalog.NewStockBatch(uuid.New(), decimal.NewFromInt(50), decimal.NewFromInt(8))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, batch))

		require.NoError(t, adjuster.Adjust(ctx, batch.ProductID, &batch.ID, decimal.NewFromInt(-3)))
		loaded, err := repo.FindByID(ctx, batch.ID)
		require.NoError(t, err)
		assert.True(t, loaded.Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("nil batch ID is a no-op", func(t *testing.T) {
		assert.NoError(t, adjuster.Adjust(ctx, uuid.New(), nil, decimal.NewFromInt(-3)))
	})
}
