package promotion

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CalculationResult is the full outcome of a cart discount computation
type CalculationResult struct {
	// PerLine maps line IDs to their accumulated discount
	PerLine map[uuid.UUID]LineDiscount
	// ItemDiscountTotal is the sum of all per-line discounts
	ItemDiscountTotal decimal.Decimal
	// CartDiscountTotal is the cart-level discount on the post-item subtotal
	CartDiscountTotal decimal.Decimal
	// SubtotalAfterItemDiscounts is the cart net before the cart discount
	SubtotalAfterItemDiscounts decimal.Decimal
	// AppliedRules is the ordered audit list of every rule that contributed
	AppliedRules []AppliedRuleRecord
}

// LineDiscountFor returns the discount for a line, zero-valued when none
func (r CalculationResult) LineDiscountFor(lineID uuid.UUID) LineDiscount {
	return r.PerLine[lineID]
}

// Calculator composes the item, buy-get and cart resolvers over a full
// cart. It is a pure function of its inputs: no state, no I/O, identical
// inputs yield identical outputs including audit order.
type Calculator struct{}

// NewCalculator creates a new discount calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Compute calculates every discount for the cart.
//
// A nil or inactive campaign disables campaign, buy-get and cart rules;
// manual overrides still apply. After the resolvers run, each line's
// stacked total is clamped once more to its line value: per-rule amounts
// are already value-bounded, but stacked sums can exceed the line under
// contrived configurations.
func (c *Calculator) Compute(lines []SaleLine, campaign *DiscountCampaign, lookup catalog.PriceLookup) CalculationResult {
	active := campaign
	if campaign == nil || !campaign.Active {
		active = nil
	}

	perLine, audit := resolveItemDiscounts(lines, active)
	perLine, audit = resolveBuyGetOffers(lines, active, lookup, perLine, audit)

	itemDiscountTotal := decimal.Zero
	totals := cartTotals{
		SubtotalAfterItemDiscounts: decimal.Zero,
		TotalQuantity:              decimal.Zero,
	}
	for _, line := range lines {
		lineValue := line.LineValue()
		discount, ok := perLine[line.LineID]
		if ok {
			clamped := clampDiscount(discount.TotalForLine, lineValue)
			if !clamped.Equal(discount.TotalForLine) {
				discount.TotalForLine = clamped
				if line.Quantity.IsPositive() {
					discount.PerUnitEquivalent = clamped.Div(line.Quantity)
				}
				perLine[line.LineID] = discount
			}
			itemDiscountTotal = itemDiscountTotal.Add(discount.TotalForLine)
		}
		totals.SubtotalAfterItemDiscounts = totals.SubtotalAfterItemDiscounts.Add(lineValue.Sub(discount.TotalForLine))
		totals.TotalQuantity = totals.TotalQuantity.Add(line.Quantity)
	}

	cartDiscount, audit := resolveCartDiscount(active, totals, audit)

	return CalculationResult{
		PerLine:                    perLine,
		ItemDiscountTotal:          itemDiscountTotal,
		CartDiscountTotal:          cartDiscount,
		SubtotalAfterItemDiscounts: totals.SubtotalAfterItemDiscounts,
		AppliedRules:               audit,
	}
}
