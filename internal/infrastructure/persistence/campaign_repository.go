package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCampaignRepository implements promotion.CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a discount campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*promotion.DiscountCampaign, error) {
	var campaign promotion.DiscountCampaign
	if err := conn(ctx, r.db).WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// Save creates or updates a discount campaign
func (r *GormCampaignRepository) Save(ctx context.Context, campaign *promotion.DiscountCampaign) error {
	return conn(ctx, r.db).WithContext(ctx).Save(campaign).Error
}

// Ensure GormCampaignRepository implements CampaignRepository
var _ promotion.CampaignRepository = (*GormCampaignRepository)(nil)
