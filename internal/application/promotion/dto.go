package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/shopspring/decimal"
)

// RuleConfigInput is one discount rule configuration in a request
type RuleConfigInput struct {
	Enabled      bool             `json:"enabled"`
	Name         string           `json:"name" binding:"required,min=1,max=100"`
	Kind         string           `json:"kind" binding:"required,oneof=PERCENTAGE FIXED"`
	Value        decimal.Decimal  `json:"value" binding:"required"`
	ConditionMin *decimal.Decimal `json:"condition_min"`
	ConditionMax *decimal.Decimal `json:"condition_max"`
	ApplyOnce    bool             `json:"apply_once"`
}

func (i *RuleConfigInput) toDomain() *promotion.DiscountRuleConfig {
	if i == nil {
		return nil
	}
	return &promotion.DiscountRuleConfig{
		Enabled:      i.Enabled,
		Name:         i.Name,
		Kind:         promotion.RuleKind(i.Kind),
		Value:        i.Value,
		ConditionMin: i.ConditionMin,
		ConditionMax: i.ConditionMax,
		ApplyOnce:    i.ApplyOnce,
	}
}

// RuleSlotsInput holds the four optional per-line rule slots of a request
type RuleSlotsInput struct {
	ByValue             *RuleConfigInput `json:"by_value"`
	ByQuantity          *RuleConfigInput `json:"by_quantity"`
	BySpecificQuantity  *RuleConfigInput `json:"by_specific_quantity"`
	BySpecificUnitPrice *RuleConfigInput `json:"by_specific_unit_price"`
}

func (i RuleSlotsInput) toDomain() promotion.RuleSlots {
	return promotion.RuleSlots{
		ByValue:             i.ByValue.toDomain(),
		ByQuantity:          i.ByQuantity.toDomain(),
		BySpecificQuantity:  i.BySpecificQuantity.toDomain(),
		BySpecificUnitPrice: i.BySpecificUnitPrice.toDomain(),
	}
}

// BuyGetRuleInput is one buy-get offer in a request
type BuyGetRuleInput struct {
	Name          string          `json:"name" binding:"required,min=1,max=100"`
	BuyProductID  uuid.UUID       `json:"buy_product_id" binding:"required"`
	BuyQuantity   decimal.Decimal `json:"buy_quantity" binding:"required"`
	GetProductID  uuid.UUID       `json:"get_product_id" binding:"required"`
	GetQuantity   decimal.Decimal `json:"get_quantity" binding:"required"`
	DiscountKind  string          `json:"discount_kind" binding:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue decimal.Decimal `json:"discount_value" binding:"required"`
	Repeatable    bool            `json:"repeatable"`
}

func (i BuyGetRuleInput) toDomain() promotion.BuyGetRule {
	return promotion.BuyGetRule{
		Name:          i.Name,
		BuyProductID:  i.BuyProductID,
		BuyQuantity:   i.BuyQuantity,
		GetProductID:  i.GetProductID,
		GetQuantity:   i.GetQuantity,
		DiscountKind:  promotion.RuleKind(i.DiscountKind),
		DiscountValue: i.DiscountValue,
		Repeatable:    i.Repeatable,
	}
}

// ProductConfigInput binds a product to campaign-specific rule slots
type ProductConfigInput struct {
	ProductID uuid.UUID      `json:"product_id" binding:"required"`
	Active    bool           `json:"active"`
	Slots     RuleSlotsInput `json:"slots"`
}

// CreateCampaignRequest represents a request to create a discount campaign
type CreateCampaignRequest struct {
	Name                  string               `json:"name" binding:"required,min=1,max=200"`
	Defaults              RuleSlotsInput       `json:"defaults"`
	CartValueRule         *RuleConfigInput     `json:"cart_value_rule"`
	CartQuantityRule      *RuleConfigInput     `json:"cart_quantity_rule"`
	BuyGetRules           []BuyGetRuleInput    `json:"buy_get_rules"`
	ProductConfigurations []ProductConfigInput `json:"product_configurations"`
	OneTimePerTransaction bool                 `json:"one_time_per_transaction"`
	StartsAt              *time.Time           `json:"starts_at"`
	EndsAt                *time.Time           `json:"ends_at"`
}

// CampaignResponse represents a campaign in API responses
type CampaignResponse struct {
	ID                    uuid.UUID                                `json:"id"`
	Name                  string                                   `json:"name"`
	Active                bool                                     `json:"active"`
	Defaults              promotion.RuleSlots                      `json:"defaults"`
	CartValueRule         *promotion.DiscountRuleConfig            `json:"cart_value_rule,omitempty"`
	CartQuantityRule      *promotion.DiscountRuleConfig            `json:"cart_quantity_rule,omitempty"`
	BuyGetRules           []promotion.BuyGetRule                   `json:"buy_get_rules,omitempty"`
	ProductConfigurations []promotion.ProductDiscountConfiguration `json:"product_configurations,omitempty"`
	OneTimePerTransaction bool                                     `json:"one_time_per_transaction"`
	StartsAt              *time.Time                               `json:"starts_at,omitempty"`
	EndsAt                *time.Time                               `json:"ends_at,omitempty"`
	CreatedAt             time.Time                                `json:"created_at"`
	UpdatedAt             time.Time                                `json:"updated_at"`
}

// ToCampaignResponse converts a campaign aggregate to its response form
func ToCampaignResponse(c *promotion.DiscountCampaign) CampaignResponse {
	return CampaignResponse{
		ID:                    c.ID,
		Name:                  c.Name,
		Active:                c.Active,
		Defaults:              c.Defaults,
		CartValueRule:         c.CartValueRule,
		CartQuantityRule:      c.CartQuantityRule,
		BuyGetRules:           c.BuyGetRules,
		ProductConfigurations: c.ProductConfigurations,
		OneTimePerTransaction: c.OneTimePerTransaction,
		StartsAt:              c.StartsAt,
		EndsAt:                c.EndsAt,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}
