package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("creates an active product", func(t *testing.T) {
		product, err := NewProduct("Widget", "SKU-001", decimal.NewFromInt(100))
		require.NoError(t, err)

		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, "SKU-001", product.Code)
		assert.True(t, product.Active)
		assert.Nil(t, product.TaxRateOverride)
		assert.NotEqual(t, uuid.Nil, product.ID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewProduct("", "SKU-001", decimal.NewFromInt(100))
		assert.Error(t, err)
	})

	t.Run("rejects empty code", func(t *testing.T) {
		_, err := NewProduct("Widget", "", decimal.NewFromInt(100))
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("Widget", "SKU-001", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestProductSetTaxRateOverride(t *testing.T) {
	product, err := NewProduct("Widget", "SKU-001", decimal.NewFromInt(100))
	require.NoError(t, err)

	require.NoError(t, product.SetTaxRateOverride(decimal.NewFromFloat(0.12)))
	require.NotNil(t, product.TaxRateOverride)
	assert.True(t, product.TaxRateOverride.Equal(decimal.NewFromFloat(0.12)))

	assert.Error(t, product.SetTaxRateOverride(decimal.NewFromFloat(-0.01)))
}

func TestNewStockBatch(t *testing.T) {
	productID := uuid.New()

	t.Run("creates a priced batch", func(t *testing.T) {
		batch, err := NewStockBatch(productID, decimal.NewFromInt(80), decimal.NewFromInt(50))
		require.NoError(t, err)

		assert.Equal(t, productID, batch.ProductID)
		assert.True(t, batch.SellingPriceAtBatch.Equal(decimal.NewFromInt(80)))
		assert.True(t, batch.Quantity.Equal(decimal.NewFromInt(50)))
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewStockBatch(uuid.Nil, decimal.NewFromInt(80), decimal.NewFromInt(50))
		assert.Error(t, err)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewStockBatch(productID, decimal.NewFromInt(80), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestPriceLookupTaxRate(t *testing.T) {
	fallback := decimal.NewFromFloat(0.05)
	override := decimal.NewFromFloat(0.12)

	plain, err := NewProduct("Widget", "SKU-001", decimal.NewFromInt(100))
	require.NoError(t, err)
	taxed, err := NewProduct("Gadget", "SKU-002", decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, taxed.SetTaxRateOverride(override))

	lookup := PriceLookup{
		plain.ID: plain.Snapshot(),
		taxed.ID: taxed.Snapshot(),
	}

	assert.True(t, lookup.Has(plain.ID))
	assert.False(t, lookup.Has(uuid.New()))

	assert.True(t, lookup.TaxRate(plain.ID, fallback).Equal(fallback))
	assert.True(t, lookup.TaxRate(taxed.ID, fallback).Equal(override))
	assert.True(t, lookup.TaxRate(uuid.New(), fallback).Equal(fallback))
}
