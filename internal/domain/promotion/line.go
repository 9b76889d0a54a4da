package promotion

import (
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ManualOverride is a cashier-entered discount on a single line. An
// override wins outright: campaign rules and buy-get offers are skipped
// entirely for the line.
type ManualOverride struct {
	Kind  RuleKind        `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Validate rejects malformed overrides
func (o *ManualOverride) Validate() error {
	if !o.Kind.IsValid() {
		return shared.NewDomainError("INVALID_RULE_KIND", "Override kind must be PERCENTAGE or FIXED")
	}
	if o.Value.IsNegative() {
		return shared.NewDomainError("INVALID_RULE_VALUE", "Override value cannot be negative")
	}
	return nil
}

// SaleLine is one product entry in a cart, with quantity and the unit
// price already resolved from its stock batch.
type SaleLine struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	BatchID   *uuid.UUID
	UnitPrice decimal.Decimal
	Quantity  decimal.Decimal
	Override  *ManualOverride
}

// LineValue returns unit price times quantity
func (l SaleLine) LineValue() decimal.Decimal {
	return l.UnitPrice.Mul(l.Quantity)
}

// AppliedRuleRecord is one append-only audit entry for a rule that
// contributed a discount. Records are never mutated after creation.
type AppliedRuleRecord struct {
	CampaignName      string          `json:"campaign_name"`
	RuleName          string          `json:"rule_name"`
	RuleKind          RuleKind        `json:"rule_kind"`
	Amount            decimal.Decimal `json:"amount"`
	AffectedProductID *uuid.UUID      `json:"affected_product_id,omitempty"`
	AppliedOnce       bool            `json:"applied_once"`
}

// LineDiscount is the accumulated discount on one line. Discounts from
// several rules merge into a single entry per line, combining names.
type LineDiscount struct {
	RuleName          string
	Kind              RuleKind
	AppliedOnce       bool
	TotalForLine      decimal.Decimal
	PerUnitEquivalent decimal.Decimal
}

// merge folds an additional rule contribution into the line discount,
// returning a new record. Aggregation is pure; callers replace the map
// entry rather than mutating in place.
func (d LineDiscount) merge(name string, amount, quantity decimal.Decimal) LineDiscount {
	merged := d
	if merged.RuleName == "" {
		merged.RuleName = name
	} else if name != "" {
		merged.RuleName = merged.RuleName + " + " + name
	}
	merged.TotalForLine = merged.TotalForLine.Add(amount)
	if quantity.IsPositive() {
		merged.PerUnitEquivalent = merged.TotalForLine.Div(quantity)
	}
	return merged
}
