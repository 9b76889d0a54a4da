package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	saleapp "github.com/retailpos/backend/internal/application/sale"
	"github.com/retailpos/backend/internal/interfaces/http/dto"
)

// SaleHandler handles sale-related API endpoints
type SaleHandler struct {
	BaseHandler
	saleService *saleapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *saleapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// RegisterRoutes registers sale routes on the given group
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	sales.POST("", h.Create)
	sales.GET("/:id", h.GetByID)
	sales.POST("/:id/returns", h.RegisterReturn)
	sales.POST("/:id/returns/:entryId/undo", h.UndoReturn)
	sales.POST("/:id/payments", h.RecordPayment)
}

// Create commits a new sale with discounts, tax and stock consumption
func (h *SaleHandler) Create(c *gin.Context) {
	var req saleapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	resp, err := h.saleService.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetByID returns a sale record, paired with its adjusted bill when
// returns are active
func (h *SaleHandler) GetByID(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	resp, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RegisterReturn registers returned units against a sale
func (h *SaleHandler) RegisterReturn(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	var req saleapp.RegisterReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	resp, err := h.saleService.RegisterReturn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// returnEntryURI binds the sale and return entry path parameters
type returnEntryURI struct {
	ID      string `uri:"id" binding:"required,uuid"`
	EntryID string `uri:"entryId" binding:"required,uuid"`
}

// UndoReturn reverses a single logged return entry
func (h *SaleHandler) UndoReturn(c *gin.Context) {
	var uri returnEntryURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid ID format")
		return
	}
	saleID := uuid.MustParse(uri.ID)
	entryID := uuid.MustParse(uri.EntryID)

	resp, err := h.saleService.UndoReturn(c.Request.Context(), saleID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment records a payment against a credit sale
func (h *SaleHandler) RecordPayment(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}
	id := uuid.MustParse(uri.ID)

	var req saleapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	resp, err := h.saleService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
