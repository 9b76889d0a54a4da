package promotion

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDiscountCampaign(t *testing.T) {
	t.Run("creates inactive campaign", func(t *testing.T) {
		campaign, err := NewDiscountCampaign("summer")
		require.NoError(t, err)
		assert.Equal(t, "summer", campaign.Name)
		assert.False(t, campaign.Active)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		campaign, err := NewDiscountCampaign("")
		assert.Nil(t, campaign)
		assert.Error(t, err)
	})
}

func TestDiscountCampaign_Activate(t *testing.T) {
	t.Run("activates a valid campaign", func(t *testing.T) {
		campaign, _ := NewDiscountCampaign("summer")
		require.NoError(t, campaign.Activate())
		assert.True(t, campaign.Active)
	})

	t.Run("rejects activation with malformed rule", func(t *testing.T) {
		campaign, _ := NewDiscountCampaign("summer")
		campaign.Defaults.ByValue = &DiscountRuleConfig{
			Enabled: true, Name: "bad", Kind: "BOGUS", Value: dec("1"),
		}
		assert.Error(t, campaign.Activate())
		assert.False(t, campaign.Active)
	})

	t.Run("rejects buy-get rule with non-positive quantities", func(t *testing.T) {
		campaign, _ := NewDiscountCampaign("summer")
		err := campaign.AddBuyGetRule(BuyGetRule{
			BuyProductID:  uuid.New(),
			BuyQuantity:   dec("0"),
			GetProductID:  uuid.New(),
			GetQuantity:   dec("1"),
			DiscountKind:  RuleKindFixed,
			DiscountValue: dec("1"),
		})
		assert.Error(t, err)
	})
}

func TestDiscountCampaign_IsActive(t *testing.T) {
	campaign, _ := NewDiscountCampaign("scheduled")
	require.NoError(t, campaign.Activate())

	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("active without schedule", func(t *testing.T) {
		assert.True(t, campaign.IsActive(now))
	})

	t.Run("inactive before window", func(t *testing.T) {
		campaign.StartsAt = &future
		campaign.EndsAt = nil
		assert.False(t, campaign.IsActive(now))
	})

	t.Run("inactive after window", func(t *testing.T) {
		campaign.StartsAt = nil
		campaign.EndsAt = &past
		assert.False(t, campaign.IsActive(now))
	})
}

func TestDiscountCampaign_ConfigurationFor(t *testing.T) {
	campaign, _ := NewDiscountCampaign("configs")
	productID := uuid.New()
	require.NoError(t, campaign.SetProductConfiguration(ProductDiscountConfiguration{
		ProductID: productID,
		Active:    true,
	}))

	t.Run("returns active configuration", func(t *testing.T) {
		assert.NotNil(t, campaign.ConfigurationFor(productID))
	})

	t.Run("returns nil for unknown product", func(t *testing.T) {
		assert.Nil(t, campaign.ConfigurationFor(uuid.New()))
	})

	t.Run("replace keeps a single entry per product", func(t *testing.T) {
		require.NoError(t, campaign.SetProductConfiguration(ProductDiscountConfiguration{
			ProductID: productID,
			Active:    false,
		}))
		assert.Len(t, campaign.ProductConfigurations, 1)
		assert.Nil(t, campaign.ConfigurationFor(productID))
	})
}
