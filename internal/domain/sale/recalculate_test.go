package sale

import (
	"testing"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculationEngine_Recalculate(t *testing.T) {
	engine := NewRecalculationEngine()

	t.Run("fails without active returns", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		_, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("recomputes discount, tax and total after a partial return", func(t *testing.T) {
		// Original: 10 units at 100, 10% off over 500, 5% tax, total
		// 945. Returning 4 keeps 6: line value 600 still meets the
		// threshold, so discount 60, net 540, tax 27, total 567.
		record, lookup := testOriginalSale(t)
		_, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		adjusted, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		require.NoError(t, err)

		assert.Equal(t, StatusAdjustedActive, adjusted.Status)
		require.NotNil(t, adjusted.OriginalSaleID)
		assert.Equal(t, record.ID, *adjusted.OriginalSaleID)
		require.Len(t, adjusted.Items, 1)

		item := adjusted.Items[0]
		assert.True(t, item.Quantity.Equal(dec("6")))
		assert.True(t, item.TotalDiscount.Equal(dec("60")), "got %s", item.TotalDiscount)
		assert.True(t, item.NetAmount.Equal(dec("540")))
		assert.True(t, item.TaxAmount.Equal(dec("27")))
		assert.True(t, adjusted.TotalAmount.Equal(dec("567")), "got %s", adjusted.TotalAmount)
	})

	t.Run("returning below a threshold drops the discount", func(t *testing.T) {
		// Keeping 4 units leaves line value 400 < 500: the rule no
		// longer applies.
		record, lookup := testOriginalSale(t)
		_, err := record.AppendReturn(record.Items[0], dec("6"), dec("90"), uuid.New())
		require.NoError(t, err)

		adjusted, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		require.NoError(t, err)

		item := adjusted.Items[0]
		assert.True(t, item.TotalDiscount.IsZero())
		assert.True(t, item.NetAmount.Equal(dec("400")))
		assert.True(t, adjusted.TotalAmount.Equal(dec("420"))) // 400 * 1.05
	})

	t.Run("fully returned lines are dropped from the adjusted bill", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		_, err := record.AppendReturn(record.Items[0], dec("10"), dec("90"), uuid.New())
		require.NoError(t, err)

		adjusted, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		require.NoError(t, err)
		assert.Empty(t, adjusted.Items)
		assert.True(t, adjusted.TotalAmount.IsZero())
	})

	t.Run("recalculating twice yields identical results", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		_, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)
		campaign := testCampaign(t)

		first, err := engine.Recalculate(record, campaign, lookup, nil)
		require.NoError(t, err)
		second, err := engine.Recalculate(record, campaign, lookup, nil)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
		assert.True(t, first.TaxTotal.Equal(second.TaxTotal))
		assert.True(t, first.ItemDiscountTotal.Equal(second.ItemDiscountTotal))
		assert.True(t, first.CartDiscountTotal.Equal(second.CartDiscountTotal))
		require.Len(t, second.Items, len(first.Items))
		for i := range first.Items {
			assert.Equal(t, first.Items[i].ID, second.Items[i].ID)
			assert.True(t, first.Items[i].LineTotal.Equal(second.Items[i].LineTotal))
		}
	})

	t.Run("nil campaign keeps manual overrides only", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		_, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		adjusted, err := engine.Recalculate(record, nil, lookup, nil)
		require.NoError(t, err)
		assert.True(t, adjusted.Items[0].TotalDiscount.IsZero())
		assert.True(t, adjusted.TotalAmount.Equal(dec("630"))) // 600 * 1.05
	})

	t.Run("recomputes credit outstanding and status", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		require.NoError(t, record.MarkCredit("ACME", dec("600")))
		_, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		// New total 567 < 600 already paid: nothing outstanding.
		adjusted, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		require.NoError(t, err)
		assert.True(t, adjusted.CreditOutstanding.IsZero())
		assert.Equal(t, CreditStatusFullyPaid, adjusted.CreditStatus)
	})

	t.Run("allocates cart discount proportionally for tax", func(t *testing.T) {
		record, err := NewSaleRecord("S-20260901-002", nil, dec("0.05"))
		require.NoError(t, err)

		productA := uuid.New()
		productB := uuid.New()
		for _, spec := range []struct {
			id    uuid.UUID
			name  string
			qty   string
			price string
		}{
			{productA, "A", "10", "60"},
			{productB, "B", "10", "40"},
		} {
			require.NoError(t, record.AddItem(SaleItem{
				BaseEntity:  shared.NewBaseEntity(),
				ProductID:   spec.id,
				ProductName: spec.name,
				Quantity:    dec(spec.qty),
				PriceAtSale: dec(spec.price),
				TaxRate:     dec("0.05"),
			}))
		}
		lookup := catalog.PriceLookup{
			productA: catalog.ProductSnapshot{ID: productA, SellingPrice: dec("60")},
			productB: catalog.ProductSnapshot{ID: productB, SellingPrice: dec("40")},
		}

		campaign := testCampaign(t)
		campaign.Defaults.ByValue = nil
		campaign.CartValueRule = &promotion.DiscountRuleConfig{
			Enabled:   true,
			Name:      "cart-100",
			Kind:      promotion.RuleKindFixed,
			Value:     dec("100"),
			ApplyOnce: true,
		}

		_, err = record.AppendReturn(record.Items[1], dec("5"), dec("40"), uuid.New())
		require.NoError(t, err)

		// Kept: A 10x60=600, B 5x40=200; subtotal 800, cart discount
		// 100 split 75/25; taxable 525 and 175.
		adjusted, err := engine.Recalculate(record, campaign, lookup, nil)
		require.NoError(t, err)
		require.Len(t, adjusted.Items, 2)
		assert.True(t, adjusted.Items[0].NetAmount.Equal(dec("525")))
		assert.True(t, adjusted.Items[1].NetAmount.Equal(dec("175")))
		assert.True(t, adjusted.CartDiscountTotal.Equal(dec("100")))
		assert.True(t, adjusted.TaxTotal.Equal(dec("35"))) // 5% of 700
		assert.True(t, adjusted.TotalAmount.Equal(dec("735")))
	})

	t.Run("uses product tax override when present", func(t *testing.T) {
		record, lookup := testOriginalSale(t)
		productID := record.Items[0].ProductID
		snap := lookup[productID]
		snap.TaxRateOverride = decPtr("0.10")
		lookup[productID] = snap

		_, err := record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		adjusted, err := engine.Recalculate(record, testCampaign(t), lookup, nil)
		require.NoError(t, err)
		assert.True(t, adjusted.Items[0].TaxAmount.Equal(dec("54"))) // 10% of 540
	})

	t.Run("keeps batch pricing on kept units", func(t *testing.T) {
		// The line was sold from a batch at 90 while the product itself
		// sells at 100: kept units must re-price at the batch price.
		record, err := NewSaleRecord("S-20260901-003", nil, dec("0.05"))
		require.NoError(t, err)

		productID := uuid.New()
		batchID := uuid.New()
		require.NoError(t, record.AddItem(SaleItem{
			BaseEntity:         shared.NewBaseEntity(),
			ProductID:          productID,
			BatchID:            &batchID,
			ProductName:        "Widget",
			Quantity:           dec("10"),
			PriceAtSale:        dec("90"),
			EffectiveUnitPrice: dec("90"),
			TaxRate:            dec("0.05"),
			TaxAmount:          dec("45"),
			NetAmount:          dec("900"),
			LineTotal:          dec("945"),
		}))
		record.SetFinancials(dec("900"), dec("0"), dec("0"), dec("45"), dec("945"))
		lookup := catalog.PriceLookup{
			productID: catalog.ProductSnapshot{ID: productID, Name: "Widget", SellingPrice: dec("100")},
		}

		_, err = record.AppendReturn(record.Items[0], dec("4"), dec("90"), uuid.New())
		require.NoError(t, err)

		t.Run("at the batch's current price", func(t *testing.T) {
			batchPrices := catalog.BatchPriceLookup{batchID: dec("90")}
			adjusted, err := engine.Recalculate(record, nil, lookup, batchPrices)
			require.NoError(t, err)

			item := adjusted.Items[0]
			assert.True(t, item.PriceAtSale.Equal(dec("90")), "got %s", item.PriceAtSale)
			assert.True(t, item.NetAmount.Equal(dec("540"))) // 6 x 90
			assert.True(t, adjusted.TotalAmount.Equal(dec("567")))
		})

		t.Run("at a repriced batch's price", func(t *testing.T) {
			batchPrices := catalog.BatchPriceLookup{batchID: dec("85")}
			adjusted, err := engine.Recalculate(record, nil, lookup, batchPrices)
			require.NoError(t, err)
			assert.True(t, adjusted.Items[0].PriceAtSale.Equal(dec("85")))
			assert.True(t, adjusted.Items[0].NetAmount.Equal(dec("510")))
		})

		t.Run("at the frozen price when the batch is gone", func(t *testing.T) {
			adjusted, err := engine.Recalculate(record, nil, lookup, nil)
			require.NoError(t, err)
			assert.True(t, adjusted.Items[0].PriceAtSale.Equal(dec("90")))
		})
	})
}
