package promotion

import (
	"github.com/shopspring/decimal"
)

// cartTotals aggregates the cart after all per-line discounts
type cartTotals struct {
	SubtotalAfterItemDiscounts decimal.Decimal
	TotalQuantity              decimal.Decimal
}

// resolveCartDiscount evaluates the campaign's two global rules against
// the post-item-discount subtotal and the total cart quantity. Both rules
// may apply; each amount is clamped to [0, subtotal] independently.
// Cart-level grants are one-shot, so every record carries appliedOnce.
func resolveCartDiscount(campaign *DiscountCampaign, totals cartTotals, audit []AppliedRuleRecord) (decimal.Decimal, []AppliedRuleRecord) {
	if campaign == nil {
		return decimal.Zero, audit
	}

	cartDiscount := decimal.Zero
	bindings := []struct {
		cfg    *DiscountRuleConfig
		scalar decimal.Decimal
	}{
		{campaign.CartValueRule, totals.SubtotalAfterItemDiscounts},
		{campaign.CartQuantityRule, totals.TotalQuantity},
	}

	for _, b := range bindings {
		if b.cfg == nil || !b.cfg.Enabled {
			continue
		}
		if b.cfg.Validate() != nil {
			continue
		}
		if !b.cfg.conditionMet(b.scalar) {
			continue
		}

		var amount decimal.Decimal
		switch b.cfg.Kind {
		case RuleKindPercentage:
			amount = b.cfg.Value.Mul(totals.SubtotalAfterItemDiscounts).Div(decimal.NewFromInt(100))
		case RuleKindFixed:
			amount = b.cfg.Value
		}
		amount = clampDiscount(amount, totals.SubtotalAfterItemDiscounts)
		if !amount.IsPositive() {
			continue
		}

		cartDiscount = cartDiscount.Add(amount)
		audit = append(audit, AppliedRuleRecord{
			CampaignName: campaign.Name,
			RuleName:     b.cfg.Name,
			RuleKind:     b.cfg.Kind,
			Amount:       amount,
			AppliedOnce:  true,
		})
	}

	return clampDiscount(cartDiscount, totals.SubtotalAfterItemDiscounts), audit
}
