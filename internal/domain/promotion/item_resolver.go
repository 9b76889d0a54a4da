package promotion

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualOverrideRuleName is the audit name used for cashier overrides
const ManualOverrideRuleName = "manual_override"

// resolveItemDiscounts computes the per-line discounts for every line.
//
// Precedence per line: a manual override short-circuits everything else;
// otherwise an active product-specific configuration replaces the campaign
// defaults. The four rule slots stack additively in their fixed order,
// each independently clamped to line value before summation.
//
// The campaign may be nil (or inactive), in which case only overrides
// apply. Returns the per-line discount map and the audit records in line
// order.
func resolveItemDiscounts(lines []SaleLine, campaign *DiscountCampaign) (map[uuid.UUID]LineDiscount, []AppliedRuleRecord) {
	perLine := make(map[uuid.UUID]LineDiscount, len(lines))
	audit := make([]AppliedRuleRecord, 0)

	for _, line := range lines {
		if line.Override != nil {
			discount, record := applyOverride(line)
			if discount.TotalForLine.IsPositive() {
				perLine[line.LineID] = discount
				audit = append(audit, record)
			}
			continue
		}

		if campaign == nil {
			continue
		}

		slots := campaign.Defaults
		if cfg := campaign.ConfigurationFor(line.ProductID); cfg != nil {
			slots = cfg.Slots
		}

		discount := LineDiscount{}
		for _, binding := range slots.ordered() {
			if binding.cfg == nil {
				continue
			}
			if err := binding.cfg.Validate(); err != nil {
				// Malformed rule: degrade to no discount for this
				// rule, keep evaluating the rest.
				continue
			}
			amount := EvaluateRule(binding.cfg, binding.basis, line.UnitPrice, line.Quantity, line.LineValue())
			if !amount.IsPositive() {
				continue
			}
			if discount.RuleName == "" {
				discount.Kind = binding.cfg.Kind
			}
			appliedOnce := binding.cfg.ApplyOnce || campaign.OneTimePerTransaction
			discount.AppliedOnce = discount.AppliedOnce || appliedOnce
			discount = discount.merge(binding.cfg.Name, amount, line.Quantity)

			productID := line.ProductID
			audit = append(audit, AppliedRuleRecord{
				CampaignName:      campaign.Name,
				RuleName:          binding.cfg.Name,
				RuleKind:          binding.cfg.Kind,
				Amount:            amount,
				AffectedProductID: &productID,
				AppliedOnce:       appliedOnce,
			})
		}

		if discount.TotalForLine.IsPositive() {
			perLine[line.LineID] = discount
		}
	}

	return perLine, audit
}

// applyOverride computes a manual override discount with the same
// fixed/percentage math as campaign rules, clamped to line value
func applyOverride(line SaleLine) (LineDiscount, AppliedRuleRecord) {
	lineValue := line.LineValue()

	var amount decimal.Decimal
	switch line.Override.Kind {
	case RuleKindPercentage:
		amount = line.Override.Value.Mul(lineValue).Div(decimal.NewFromInt(100))
	case RuleKindFixed:
		amount = line.Override.Value.Mul(line.Quantity)
	}
	amount = clampDiscount(amount, lineValue)

	discount := LineDiscount{
		Kind:        line.Override.Kind,
		AppliedOnce: true,
	}
	discount = discount.merge(ManualOverrideRuleName, amount, line.Quantity)

	productID := line.ProductID
	return discount, AppliedRuleRecord{
		RuleName:          ManualOverrideRuleName,
		RuleKind:          line.Override.Kind,
		Amount:            amount,
		AffectedProductID: &productID,
		AppliedOnce:       true,
	}
}
