package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a sellable product
type Product struct {
	shared.BaseAggregateRoot
	Name            string           `gorm:"not null"`
	Code            string           `gorm:"uniqueIndex;not null"`
	SellingPrice    decimal.Decimal  `gorm:"type:decimal(20,8);not null"`
	TaxRateOverride *decimal.Decimal `gorm:"type:decimal(10,8)"` // nil means use the global rate
	IsService       bool             `gorm:"not null;default:false"`
	Active          bool             `gorm:"not null;default:true"`
}

// NewProduct creates a new product
func NewProduct(name, code string, sellingPrice decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		SellingPrice:      sellingPrice,
		Active:            true,
	}, nil
}

// SetTaxRateOverride sets a product-specific tax rate (fraction, e.g. 0.05)
func (p *Product) SetTaxRateOverride(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	p.TaxRateOverride = &rate
	return nil
}

// StockBatch represents a priced stock batch of a product.
// Selling price is resolved per batch at cart-build time.
type StockBatch struct {
	shared.BaseEntity
	ProductID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellingPriceAtBatch decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Quantity            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
}

// NewStockBatch creates a new stock batch for a product
func NewStockBatch(productID uuid.UUID, sellingPrice, quantity decimal.Decimal) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Batch selling price cannot be negative")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Batch quantity cannot be negative")
	}
	return &StockBatch{
		BaseEntity:          shared.NewBaseEntity(),
		ProductID:           productID,
		SellingPriceAtBatch: sellingPrice,
		Quantity:            quantity,
	}, nil
}

// ProductSnapshot is the read-only product view the pricing engine consumes
type ProductSnapshot struct {
	ID              uuid.UUID
	Name            string
	SellingPrice    decimal.Decimal
	TaxRateOverride *decimal.Decimal
	IsService       bool
}

// Snapshot returns the pricing view of the product
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		SellingPrice:    p.SellingPrice,
		TaxRateOverride: p.TaxRateOverride,
		IsService:       p.IsService,
	}
}

// PriceLookup is an in-memory product snapshot map keyed by product ID.
// The engine receives it by value and never touches storage.
type PriceLookup map[uuid.UUID]ProductSnapshot

// Has reports whether the lookup contains the product
func (l PriceLookup) Has(productID uuid.UUID) bool {
	_, ok := l[productID]
	return ok
}

// TaxRate returns the product's tax rate override, or the fallback rate
// when the product has none (or is unknown)
func (l PriceLookup) TaxRate(productID uuid.UUID, fallback decimal.Decimal) decimal.Decimal {
	if snap, ok := l[productID]; ok && snap.TaxRateOverride != nil {
		return *snap.TaxRateOverride
	}
	return fallback
}

// BatchPriceLookup maps batch IDs to their current selling price. The
// recalculation engine consults it so kept units sold from a batch keep
// re-pricing at the batch price, not the product price.
type BatchPriceLookup map[uuid.UUID]decimal.Decimal

// Price returns the batch's current selling price, if the batch is known
func (l BatchPriceLookup) Price(batchID uuid.UUID) (decimal.Decimal, bool) {
	price, ok := l[batchID]
	return price, ok
}

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
	PriceLookup(ctx context.Context, ids []uuid.UUID) (PriceLookup, error)
}

// StockBatchRepository defines persistence operations for stock batches
type StockBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)
	Save(ctx context.Context, batch *StockBatch) error
	// AdjustQuantity atomically adds delta (negative to consume) to the
	// batch quantity. Returns shared.ErrInsufficientStock if the batch
	// cannot absorb a negative delta.
	AdjustQuantity(ctx context.Context, batchID uuid.UUID, delta decimal.Decimal) error
	// PriceLookup returns current selling prices for the given batches.
	// Unknown batch IDs are simply absent from the result.
	PriceLookup(ctx context.Context, ids []uuid.UUID) (BatchPriceLookup, error)
}
