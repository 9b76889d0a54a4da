package promotion

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// quantityLedger maps product IDs to their total cart quantity.
//
// The ledger is read but never decremented: each buy-get rule is
// evaluated against the full cart quantity, not a depleting pool, so
// successive rules may count the same buy units. This mirrors the
// product's accepted behavior; switching to pool depletion changes
// offer semantics and must be a deliberate decision.
type quantityLedger map[uuid.UUID]decimal.Decimal

func newQuantityLedger(lines []SaleLine) quantityLedger {
	ledger := make(quantityLedger, len(lines))
	for _, line := range lines {
		ledger[line.ProductID] = ledger[line.ProductID].Add(line.Quantity)
	}
	return ledger
}

// resolveBuyGetOffers applies the campaign's buy-get rules in array order,
// merging granted discounts into the per-line map. Lines with manual
// overrides are immune: overrides take absolute precedence over offers.
// Rules referencing products missing from the catalog are skipped, never
// fatal. Returns the updated per-line map and appended audit records.
func resolveBuyGetOffers(
	lines []SaleLine,
	campaign *DiscountCampaign,
	lookup catalog.PriceLookup,
	perLine map[uuid.UUID]LineDiscount,
	audit []AppliedRuleRecord,
) (map[uuid.UUID]LineDiscount, []AppliedRuleRecord) {
	if campaign == nil || len(campaign.BuyGetRules) == 0 {
		return perLine, audit
	}

	ledger := newQuantityLedger(lines)

	for i := range campaign.BuyGetRules {
		rule := &campaign.BuyGetRules[i]
		if rule.Validate() != nil {
			continue
		}
		if !lookup.Has(rule.BuyProductID) || !lookup.Has(rule.GetProductID) {
			continue
		}

		buyQty := ledger[rule.BuyProductID]
		if buyQty.LessThan(rule.BuyQuantity) {
			continue
		}

		getLine := findGetLine(lines, rule.GetProductID)
		if getLine == nil {
			continue
		}

		timesApplicable := decimal.NewFromInt(1)
		if rule.Repeatable {
			timesApplicable = buyQty.Div(rule.BuyQuantity).Floor()
		}

		maxGet := timesApplicable.Mul(rule.GetQuantity)
		discountableQty := decimal.Min(ledger[rule.GetProductID], maxGet)
		if !discountableQty.IsPositive() {
			continue
		}

		// Percentage offers discount the get line's actual selling
		// price, not the list price.
		var perUnit decimal.Decimal
		switch rule.DiscountKind {
		case RuleKindPercentage:
			perUnit = rule.DiscountValue.Mul(getLine.UnitPrice).Div(decimal.NewFromInt(100))
		case RuleKindFixed:
			perUnit = rule.DiscountValue
		}

		amount := clampDiscount(perUnit.Mul(discountableQty), getLine.LineValue())
		if !amount.IsPositive() {
			continue
		}

		existing := perLine[getLine.LineID]
		if existing.RuleName == "" {
			existing.Kind = rule.DiscountKind
		}
		perLine[getLine.LineID] = existing.merge(ruleDisplayName(rule), amount, getLine.Quantity)

		productID := getLine.ProductID
		audit = append(audit, AppliedRuleRecord{
			CampaignName:      campaign.Name,
			RuleName:          ruleDisplayName(rule),
			RuleKind:          rule.DiscountKind,
			Amount:            amount,
			AffectedProductID: &productID,
			AppliedOnce:       !rule.Repeatable,
		})
	}

	return perLine, audit
}

// findGetLine returns the first line for the product that has no manual
// override, or nil when none qualifies
func findGetLine(lines []SaleLine, productID uuid.UUID) *SaleLine {
	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}
		if lines[i].Override != nil {
			return nil
		}
		return &lines[i]
	}
	return nil
}

func ruleDisplayName(rule *BuyGetRule) string {
	if rule.Name != "" {
		return rule.Name
	}
	return "buy_get_offer"
}
