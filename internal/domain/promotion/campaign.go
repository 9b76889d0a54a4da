package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RuleSlots holds the four optional per-line rule slots, evaluated in a
// fixed order: by-value, by-quantity, specific-quantity-threshold,
// specific-unit-price-threshold.
type RuleSlots struct {
	ByValue             *DiscountRuleConfig `json:"by_value,omitempty"`
	ByQuantity          *DiscountRuleConfig `json:"by_quantity,omitempty"`
	BySpecificQuantity  *DiscountRuleConfig `json:"by_specific_quantity,omitempty"`
	BySpecificUnitPrice *DiscountRuleConfig `json:"by_specific_unit_price,omitempty"`
}

// slotBinding pairs a rule slot with its evaluation basis
type slotBinding struct {
	cfg   *DiscountRuleConfig
	basis RuleBasis
}

// ordered returns the slots in their fixed evaluation order
func (s RuleSlots) ordered() []slotBinding {
	return []slotBinding{
		{s.ByValue, BasisLineValue},
		{s.ByQuantity, BasisQuantity},
		{s.BySpecificQuantity, BasisSpecificQuantity},
		{s.BySpecificUnitPrice, BasisSpecificUnitPrice},
	}
}

// Validate validates every populated slot
func (s RuleSlots) Validate() error {
	for _, b := range s.ordered() {
		if b.cfg == nil {
			continue
		}
		if err := b.cfg.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProductDiscountConfiguration binds a product to campaign-specific rule
// slots. When present and active it replaces the campaign defaults for
// that product's lines.
type ProductDiscountConfiguration struct {
	ProductID uuid.UUID `json:"product_id"`
	Active    bool      `json:"active"`
	Slots     RuleSlots `json:"slots"`
}

// Validate validates the product configuration
func (c *ProductDiscountConfiguration) Validate() error {
	if c.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	return c.Slots.Validate()
}

// BuyGetRule is a cross-product "buy X get Y" offer
type BuyGetRule struct {
	Name          string          `json:"name"`
	BuyProductID  uuid.UUID       `json:"buy_product_id"`
	BuyQuantity   decimal.Decimal `json:"buy_quantity"`
	GetProductID  uuid.UUID       `json:"get_product_id"`
	GetQuantity   decimal.Decimal `json:"get_quantity"`
	DiscountKind  RuleKind        `json:"discount_kind"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	Repeatable    bool            `json:"repeatable"`
}

// Validate rejects malformed buy-get rules
func (r *BuyGetRule) Validate() error {
	if r.BuyProductID == uuid.Nil || r.GetProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Buy-get rule product IDs cannot be empty")
	}
	if !r.BuyQuantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Buy quantity must be positive")
	}
	if !r.GetQuantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Get quantity must be positive")
	}
	if !r.DiscountKind.IsValid() {
		return shared.NewDomainError("INVALID_RULE_KIND", "Discount kind must be PERCENTAGE or FIXED")
	}
	if r.DiscountValue.IsNegative() {
		return shared.NewDomainError("INVALID_RULE_VALUE", "Discount value cannot be negative")
	}
	return nil
}

// DiscountCampaign is a named, schedulable bundle of discount rules.
// The engine receives a campaign snapshot by value and never mutates or
// re-fetches it; activation scheduling is a caller concern.
type DiscountCampaign struct {
	shared.BaseAggregateRoot
	Name                  string                         `gorm:"not null"`
	Active                bool                           `gorm:"not null;default:false"`
	Defaults              RuleSlots                      `gorm:"serializer:json"`
	CartValueRule         *DiscountRuleConfig            `gorm:"serializer:json"`
	CartQuantityRule      *DiscountRuleConfig            `gorm:"serializer:json"`
	BuyGetRules           []BuyGetRule                   `gorm:"serializer:json"`
	ProductConfigurations []ProductDiscountConfiguration `gorm:"serializer:json"`
	OneTimePerTransaction bool                           `gorm:"not null;default:false"`
	StartsAt              *time.Time
	EndsAt                *time.Time
}

// NewDiscountCampaign creates a new, inactive discount campaign
func NewDiscountCampaign(name string) (*DiscountCampaign, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CAMPAIGN_NAME", "Campaign name cannot be empty")
	}
	return &DiscountCampaign{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Validate validates the whole campaign configuration. Used at the
// data-loading boundary; the evaluators assume a validated campaign.
func (c *DiscountCampaign) Validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_CAMPAIGN_NAME", "Campaign name cannot be empty")
	}
	if err := c.Defaults.Validate(); err != nil {
		return err
	}
	for _, cartRule := range []*DiscountRuleConfig{c.CartValueRule, c.CartQuantityRule} {
		if cartRule == nil {
			continue
		}
		if err := cartRule.Validate(); err != nil {
			return err
		}
	}
	for i := range c.BuyGetRules {
		if err := c.BuyGetRules[i].Validate(); err != nil {
			return err
		}
	}
	for i := range c.ProductConfigurations {
		if err := c.ProductConfigurations[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Activate marks the campaign active
func (c *DiscountCampaign) Activate() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	return nil
}

// Deactivate marks the campaign inactive
func (c *DiscountCampaign) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now()
}

// IsActive reports whether the campaign applies at the given time
func (c *DiscountCampaign) IsActive(at time.Time) bool {
	if !c.Active {
		return false
	}
	if c.StartsAt != nil && at.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && at.After(*c.EndsAt) {
		return false
	}
	return true
}

// ConfigurationFor returns the active product-specific configuration for
// the product, or nil when the campaign defaults apply
func (c *DiscountCampaign) ConfigurationFor(productID uuid.UUID) *ProductDiscountConfiguration {
	for i := range c.ProductConfigurations {
		cfg := &c.ProductConfigurations[i]
		if cfg.ProductID == productID && cfg.Active {
			return cfg
		}
	}
	return nil
}

// SetProductConfiguration adds or replaces the configuration for a product
func (c *DiscountCampaign) SetProductConfiguration(cfg ProductDiscountConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for i := range c.ProductConfigurations {
		if c.ProductConfigurations[i].ProductID == cfg.ProductID {
			c.ProductConfigurations[i] = cfg
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	c.ProductConfigurations = append(c.ProductConfigurations, cfg)
	c.UpdatedAt = time.Now()
	return nil
}

// AddBuyGetRule appends a buy-get rule; rules are evaluated in append order
func (c *DiscountCampaign) AddBuyGetRule(rule BuyGetRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	c.BuyGetRules = append(c.BuyGetRules, rule)
	c.UpdatedAt = time.Now()
	return nil
}

// CampaignRepository defines persistence operations for campaigns
type CampaignRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DiscountCampaign, error)
	Save(ctx context.Context, campaign *DiscountCampaign) error
}
