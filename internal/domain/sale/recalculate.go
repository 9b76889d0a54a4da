package sale

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecalculationEngine rebuilds the adjusted bill for a sale after its
// return log changes. Discounts are recomputed fresh against the original
// campaign snapshot rather than prorated, because removing units can
// change which thresholds are met. The engine is pure: same original and
// same active-return-set always yield identical output.
type RecalculationEngine struct {
	calc *promotion.Calculator
}

// NewRecalculationEngine creates a new recalculation engine
func NewRecalculationEngine() *RecalculationEngine {
	return &RecalculationEngine{calc: promotion.NewCalculator()}
}

// Recalculate derives the adjusted bill from the pristine original and
// its current return log.
//
// Lines whose kept quantity drops to zero or below are removed from the
// adjusted bill. Unit prices are re-resolved batch-aware: a batch-tracked
// line takes the batch's current price from batchPrices, other lines take
// the product's current price from lookup, and either falls back to the
// price frozen at sale time when its source is absent. The cart-level
// discount is allocated to lines proportionally to their
// post-item-discount value before tax.
//
// Returns shared.ErrInvalidState when no active returns exist: the
// original itself is the current bill in that case.
func (e *RecalculationEngine) Recalculate(
	original *SaleRecord,
	campaign *promotion.DiscountCampaign,
	lookup catalog.PriceLookup,
	batchPrices catalog.BatchPriceLookup,
) (*SaleRecord, error) {
	if original == nil {
		return nil, shared.ErrInvalidInput
	}
	if len(original.ActiveReturns()) == 0 {
		return nil, shared.ErrInvalidState
	}

	lines, kept := e.keptLines(original, lookup, batchPrices)

	result := e.calc.Compute(lines, campaign, lookup)

	adjusted := &SaleRecord{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        deriveAdjustedID(original.ID),
				CreatedAt: original.CreatedAt,
				UpdatedAt: original.UpdatedAt,
			},
			Version: 1,
		},
		SaleNumber:     original.SaleNumber,
		Status:         StatusAdjustedActive,
		OriginalSaleID: &original.ID,
		CampaignID:     original.CampaignID,
		GlobalTaxRate:  original.GlobalTaxRate,
		Items:          make([]SaleItem, 0, len(lines)),
		ReturnLog:      make([]ReturnLogEntry, 0),
		IsCredit:       original.IsCredit,
		CustomerName:   original.CustomerName,
		AmountPaid:     original.AmountPaid,
	}

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	totalAmount := decimal.Zero

	for _, line := range lines {
		originalItem := kept[line.LineID]
		discount := result.LineDiscountFor(line.LineID)
		lineValue := line.LineValue()
		lineNet := lineValue.Sub(discount.TotalForLine)

		// Allocate the cart discount by this line's share of the
		// post-item-discount subtotal.
		lineCartDiscount := decimal.Zero
		if result.SubtotalAfterItemDiscounts.IsPositive() && result.CartDiscountTotal.IsPositive() {
			share := lineNet.Div(result.SubtotalAfterItemDiscounts)
			lineCartDiscount = result.CartDiscountTotal.Mul(share)
		}

		taxable := lineNet.Sub(lineCartDiscount)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		taxRate := lookup.TaxRate(line.ProductID, original.GlobalTaxRate)
		taxAmount := taxable.Mul(taxRate)

		effectiveUnit := decimal.Zero
		if line.Quantity.IsPositive() {
			effectiveUnit = lineNet.Div(line.Quantity)
		}

		item := SaleItem{
			BaseEntity: shared.BaseEntity{
				ID:        originalItem.ID,
				CreatedAt: originalItem.CreatedAt,
				UpdatedAt: originalItem.UpdatedAt,
			},
			SaleID:             adjusted.ID,
			ProductID:          line.ProductID,
			BatchID:            line.BatchID,
			ProductName:        originalItem.ProductName,
			Quantity:           line.Quantity,
			PriceAtSale:        line.UnitPrice,
			TotalDiscount:      discount.TotalForLine,
			EffectiveUnitPrice: effectiveUnit,
			AppliedRuleName:    discount.RuleName,
			Override:           line.Override,
			TaxRate:            taxRate,
			TaxAmount:          taxAmount,
			NetAmount:          taxable,
			LineTotal:          taxable.Add(taxAmount),
		}
		adjusted.Items = append(adjusted.Items, item)

		subtotal = subtotal.Add(lineValue)
		taxTotal = taxTotal.Add(taxAmount)
		totalAmount = totalAmount.Add(item.LineTotal)
	}

	adjusted.AppliedRules = SummarizeAppliedRules(result.AppliedRules)
	adjusted.SetFinancials(subtotal, result.ItemDiscountTotal, result.CartDiscountTotal, taxTotal, totalAmount)

	return adjusted, nil
}

// keptLines rebuilds the cart lines for every item with a positive kept
// quantity, preserving line identity, batch pricing and manual overrides
func (e *RecalculationEngine) keptLines(original *SaleRecord, lookup catalog.PriceLookup, batchPrices catalog.BatchPriceLookup) ([]promotion.SaleLine, map[uuid.UUID]SaleItem) {
	lines := make([]promotion.SaleLine, 0, len(original.Items))
	kept := make(map[uuid.UUID]SaleItem, len(original.Items))

	for _, item := range original.Items {
		quantity := original.KeptQuantity(item)
		if !quantity.IsPositive() {
			continue
		}

		// A batch-tracked line never re-prices at the product price;
		// when its batch is gone the price frozen at sale time holds.
		unitPrice := item.PriceAtSale
		if item.BatchID != nil {
			if price, ok := batchPrices.Price(*item.BatchID); ok {
				unitPrice = price
			}
		} else if snap, ok := lookup[item.ProductID]; ok && snap.SellingPrice.IsPositive() {
			unitPrice = snap.SellingPrice
		}

		lines = append(lines, promotion.SaleLine{
			LineID:    item.ID,
			ProductID: item.ProductID,
			BatchID:   item.BatchID,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			Override:  item.Override,
		})
		kept[item.ID] = item
	}

	return lines, kept
}

// SummarizeAppliedRules converts audit records into the persisted summary form
func SummarizeAppliedRules(records []promotion.AppliedRuleRecord) []AppliedRuleInfo {
	infos := make([]AppliedRuleInfo, 0, len(records))
	for _, record := range records {
		infos = append(infos, AppliedRuleInfo{
			CampaignName:      record.CampaignName,
			RuleName:          record.RuleName,
			RuleKind:          record.RuleKind.String(),
			Amount:            record.Amount,
			AffectedProductID: record.AffectedProductID,
			AppliedOnce:       record.AppliedOnce,
		})
	}
	return infos
}

// deriveAdjustedID gives the adjusted record a stable identity derived
// from the original, so recalculating twice produces identical records
func deriveAdjustedID(originalID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(originalID, []byte("adjusted"))
}
