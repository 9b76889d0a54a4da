package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := conn(ctx, r.db).WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return conn(ctx, r.db).WithContext(ctx).Save(product).Error
}

// PriceLookup loads pricing snapshots for the given product IDs. Unknown
// IDs are simply absent from the result.
func (r *GormProductRepository) PriceLookup(ctx context.Context, ids []uuid.UUID) (catalog.PriceLookup, error) {
	lookup := make(catalog.PriceLookup, len(ids))
	if len(ids) == 0 {
		return lookup, nil
	}

	var products []catalog.Product
	if err := conn(ctx, r.db).WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, product := range products {
		lookup[product.ID] = product.Snapshot()
	}
	return lookup, nil
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
