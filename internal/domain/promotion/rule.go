package promotion

import (
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RuleKind is the closed set of discount rule kinds
type RuleKind string

const (
	RuleKindPercentage RuleKind = "PERCENTAGE"
	RuleKindFixed      RuleKind = "FIXED"
)

// IsValid checks if the kind is a known RuleKind
func (k RuleKind) IsValid() bool {
	return k == RuleKindPercentage || k == RuleKindFixed
}

// String returns the string representation of RuleKind
func (k RuleKind) String() string {
	return string(k)
}

// RuleBasis selects which scalar of a line a rule's condition window tests
type RuleBasis string

const (
	BasisLineValue         RuleBasis = "LINE_VALUE"
	BasisQuantity          RuleBasis = "QUANTITY"
	BasisSpecificQuantity  RuleBasis = "SPECIFIC_QUANTITY"
	BasisSpecificUnitPrice RuleBasis = "SPECIFIC_UNIT_PRICE"
)

// DiscountRuleConfig is one discount rule configuration.
// ConditionMin/ConditionMax bound the basis-selected scalar; a missing
// bound is unbounded on that side.
type DiscountRuleConfig struct {
	Enabled      bool             `json:"enabled"`
	Name         string           `json:"name"`
	Kind         RuleKind         `json:"kind"`
	Value        decimal.Decimal  `json:"value"`
	ConditionMin *decimal.Decimal `json:"condition_min,omitempty"`
	ConditionMax *decimal.Decimal `json:"condition_max,omitempty"`
	ApplyOnce    bool             `json:"apply_once"`
}

// Validate rejects malformed rule configurations at the loading boundary
func (c *DiscountRuleConfig) Validate() error {
	if !c.Kind.IsValid() {
		return shared.NewDomainError("INVALID_RULE_KIND", "Rule kind must be PERCENTAGE or FIXED")
	}
	if c.Value.IsNegative() {
		return shared.NewDomainError("INVALID_RULE_VALUE", "Rule value cannot be negative")
	}
	if c.ConditionMin != nil && c.ConditionMax != nil && c.ConditionMin.GreaterThan(*c.ConditionMax) {
		return shared.NewDomainError("INVALID_RULE_CONDITION", "Rule condition minimum cannot exceed maximum")
	}
	return nil
}

// conditionMet tests the rule's condition window against the scalar
func (c *DiscountRuleConfig) conditionMet(scalar decimal.Decimal) bool {
	if c.ConditionMin != nil && scalar.LessThan(*c.ConditionMin) {
		return false
	}
	if c.ConditionMax != nil && scalar.GreaterThan(*c.ConditionMax) {
		return false
	}
	return true
}

// EvaluateRule evaluates one rule configuration against a single line and
// returns the discount amount. Disabled rules and unmet conditions yield
// zero. The result is clamped to [0, lineValue]: a rule can never make a
// line negative or refund more than its value.
func EvaluateRule(cfg *DiscountRuleConfig, basis RuleBasis, unitPrice, quantity, lineValue decimal.Decimal) decimal.Decimal {
	if cfg == nil || !cfg.Enabled {
		return decimal.Zero
	}

	var scalar decimal.Decimal
	switch basis {
	case BasisLineValue:
		scalar = lineValue
	case BasisQuantity, BasisSpecificQuantity:
		scalar = quantity
	case BasisSpecificUnitPrice:
		scalar = unitPrice
	default:
		return decimal.Zero
	}

	if !cfg.conditionMet(scalar) {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch {
	case cfg.Kind == RuleKindFixed && cfg.ApplyOnce:
		amount = cfg.Value
	case cfg.Kind == RuleKindFixed:
		amount = cfg.Value.Mul(quantity)
	case cfg.Kind == RuleKindPercentage && (cfg.ApplyOnce || basis == BasisLineValue):
		amount = cfg.Value.Mul(lineValue).Div(decimal.NewFromInt(100))
	case cfg.Kind == RuleKindPercentage:
		amount = cfg.Value.Mul(unitPrice).Mul(quantity).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}

	return clampDiscount(amount, lineValue)
}

// clampDiscount bounds a discount amount to [0, limit]
func clampDiscount(amount, limit decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(limit) {
		return limit
	}
	return amount
}
