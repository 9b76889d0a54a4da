package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSaleRepository implements sale.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID loads a sale record with its items and return log
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.SaleRecord, error) {
	var record sale.SaleRecord
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("ReturnLog").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindAdjustedByOriginal loads the adjusted bill derived from an original sale
func (r *GormSaleRepository) FindAdjustedByOriginal(ctx context.Context, originalID uuid.UUID) (*sale.SaleRecord, error) {
	var record sale.SaleRecord
	if err := conn(ctx, r.db).WithContext(ctx).
		Preload("Items").
		Preload("ReturnLog").
		First(&record, "original_sale_id = ?", originalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save persists a new sale record together with its items and return log
func (r *GormSaleRepository) Save(ctx context.Context, record *sale.SaleRecord) error {
	return conn(ctx, r.db).WithContext(ctx).Create(record).Error
}

// Update persists changes to an existing sale record and its associations
func (r *GormSaleRepository) Update(ctx context.Context, record *sale.SaleRecord) error {
	return conn(ctx, r.db).WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(record).Error
}

// DeleteAdjusted removes an adjusted bill and its items. Return log entries
// always live on the original record and are never deleted here.
func (r *GormSaleRepository) DeleteAdjusted(ctx context.Context, adjustedID uuid.UUID) error {
	return conn(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("sale_id = ?", adjustedID).Delete(&sale.SaleItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND original_sale_id IS NOT NULL", adjustedID).
			Delete(&sale.SaleRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormSaleRepository implements SaleRepository
var _ sale.SaleRepository = (*GormSaleRepository)(nil)
