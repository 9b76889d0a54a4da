package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockBatchRepository implements catalog.StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a stock batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.StockBatch, error) {
	var batch catalog.StockBatch
	if err := conn(ctx, r.db).WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// Save creates or updates a stock batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *catalog.StockBatch) error {
	return conn(ctx, r.db).WithContext(ctx).Save(batch).Error
}

// AdjustQuantity atomically adds delta to the batch quantity. The guarded
// UPDATE only matches when the resulting quantity stays non-negative, so
// concurrent consumers cannot drive a batch below zero.
func (r *GormStockBatchRepository) AdjustQuantity(ctx context.Context, batchID uuid.UUID, delta decimal.Decimal) error {
	result := conn(ctx, r.db).WithContext(ctx).
		Model(&catalog.StockBatch{}).
		Where("id = ? AND quantity + ? >= 0", batchID, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := conn(ctx, r.db).WithContext(ctx).
			Model(&catalog.StockBatch{}).
			Where("id = ?", batchID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrInsufficientStock
	}
	return nil
}

// PriceLookup loads current selling prices for the given batch IDs.
// Unknown IDs are simply absent from the result.
func (r *GormStockBatchRepository) PriceLookup(ctx context.Context, ids []uuid.UUID) (catalog.BatchPriceLookup, error) {
	lookup := make(catalog.BatchPriceLookup, len(ids))
	if len(ids) == 0 {
		return lookup, nil
	}

	var batches []catalog.StockBatch
	if err := conn(ctx, r.db).WithContext(ctx).Where("id IN ?", ids).Find(&batches).Error; err != nil {
		return nil, err
	}
	for _, batch := range batches {
		lookup[batch.ID] = batch.SellingPriceAtBatch
	}
	return lookup, nil
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ catalog.StockBatchRepository = (*GormStockBatchRepository)(nil)
