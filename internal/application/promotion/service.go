package promotion

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/promotion"
)

// CampaignService handles discount campaign business operations
type CampaignService struct {
	campaigns promotion.CampaignRepository
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(campaigns promotion.CampaignRepository) *CampaignService {
	return &CampaignService{campaigns: campaigns}
}

// Create creates a new, inactive discount campaign
func (s *CampaignService) Create(ctx context.Context, req CreateCampaignRequest) (*CampaignResponse, error) {
	campaign, err := promotion.NewDiscountCampaign(req.Name)
	if err != nil {
		return nil, err
	}

	campaign.Defaults = req.Defaults.toDomain()
	campaign.CartValueRule = req.CartValueRule.toDomain()
	campaign.CartQuantityRule = req.CartQuantityRule.toDomain()
	campaign.OneTimePerTransaction = req.OneTimePerTransaction
	campaign.StartsAt = req.StartsAt
	campaign.EndsAt = req.EndsAt

	for _, rule := range req.BuyGetRules {
		if err := campaign.AddBuyGetRule(rule.toDomain()); err != nil {
			return nil, err
		}
	}
	for _, cfg := range req.ProductConfigurations {
		err := campaign.SetProductConfiguration(promotion.ProductDiscountConfiguration{
			ProductID: cfg.ProductID,
			Active:    cfg.Active,
			Slots:     cfg.Slots.toDomain(),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := campaign.Validate(); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, campaign); err != nil {
		return nil, err
	}

	response := ToCampaignResponse(campaign)
	return &response, nil
}

// GetByID retrieves a campaign by ID
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCampaignResponse(campaign)
	return &response, nil
}

// Activate validates and activates a campaign
func (s *CampaignService) Activate(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := campaign.Activate(); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, campaign); err != nil {
		return nil, err
	}
	response := ToCampaignResponse(campaign)
	return &response, nil
}

// Deactivate deactivates a campaign
func (s *CampaignService) Deactivate(ctx context.Context, id uuid.UUID) (*CampaignResponse, error) {
	campaign, err := s.campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	campaign.Deactivate()
	if err := s.campaigns.Save(ctx, campaign); err != nil {
		return nil, err
	}
	response := ToCampaignResponse(campaign)
	return &response, nil
}
