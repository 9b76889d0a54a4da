package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	promotionapp "github.com/retailpos/backend/internal/application/promotion"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// CampaignHandler handles discount campaign API endpoints
type CampaignHandler struct {
	BaseHandler
	campaignService *promotionapp.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *promotionapp.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// RegisterRoutes registers campaign routes on the given group
func (h *CampaignHandler) RegisterRoutes(rg *gin.RouterGroup) {
	campaigns := rg.Group("/campaigns")
	campaigns.POST("", h.Create)
	campaigns.GET("/:id", h.GetByID)
	campaigns.POST("/:id/activate", h.Activate)
	campaigns.POST("/:id/deactivate", h.Deactivate)
}

// Create creates a new, inactive discount campaign
func (h *CampaignHandler) Create(c *gin.Context) {
	var req promotionapp.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	resp, err := h.campaignService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns a campaign by ID
func (h *CampaignHandler) GetByID(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid campaign ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	resp, err := h.campaignService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate validates and activates a campaign
func (h *CampaignHandler) Activate(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid campaign ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	resp, err := h.campaignService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Deactivate deactivates a campaign
func (h *CampaignHandler) Deactivate(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid campaign ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	resp, err := h.campaignService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
