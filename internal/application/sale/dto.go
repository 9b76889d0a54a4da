package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/shopspring/decimal"
)

// OverrideInput is a cashier-entered discount on a single sale line
type OverrideInput struct {
	Kind  string          `json:"kind" binding:"required,oneof=PERCENTAGE FIXED"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

func (i *OverrideInput) toDomain() *promotion.ManualOverride {
	if i == nil {
		return nil
	}
	return &promotion.ManualOverride{
		Kind:  promotion.RuleKind(i.Kind),
		Value: i.Value,
	}
}

// CreateSaleItemInput is one cart line in a create sale request
type CreateSaleItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID      `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	Override  *OverrideInput  `json:"override"`
}

// CreditInput marks the sale as a credit sale
type CreditInput struct {
	CustomerName string          `json:"customer_name" binding:"required,min=1,max=200"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
}

// CreateSaleRequest represents a request to commit a sale
type CreateSaleRequest struct {
	SaleNumber string                `json:"sale_number" binding:"required,min=1,max=50"`
	CampaignID *uuid.UUID            `json:"campaign_id"`
	Items      []CreateSaleItemInput `json:"items" binding:"required,min=1"`
	Credit     *CreditInput          `json:"credit"`
}

// RegisterReturnItemInput is one returned line in a return request
type RegisterReturnItemInput struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	BatchID   *uuid.UUID      `json:"batch_id"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// RegisterReturnRequest represents a request to return units from a sale
type RegisterReturnRequest struct {
	Items []RegisterReturnItemInput `json:"items" binding:"required,min=1"`
}

// RecordPaymentRequest represents a credit payment against a sale
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SaleItemResponse represents a frozen sale line in API responses
type SaleItemResponse struct {
	ID                 uuid.UUID                 `json:"id"`
	ProductID          uuid.UUID                 `json:"product_id"`
	BatchID            *uuid.UUID                `json:"batch_id,omitempty"`
	ProductName        string                    `json:"product_name"`
	Quantity           decimal.Decimal           `json:"quantity"`
	PriceAtSale        decimal.Decimal           `json:"price_at_sale"`
	TotalDiscount      decimal.Decimal           `json:"total_discount"`
	EffectiveUnitPrice decimal.Decimal           `json:"effective_unit_price"`
	AppliedRuleName    string                    `json:"applied_rule_name,omitempty"`
	Override           *promotion.ManualOverride `json:"override,omitempty"`
	TaxRate            decimal.Decimal           `json:"tax_rate"`
	TaxAmount          decimal.Decimal           `json:"tax_amount"`
	NetAmount          decimal.Decimal           `json:"net_amount"`
	LineTotal          decimal.Decimal           `json:"line_total"`
}

// ReturnLogEntryResponse represents one logged return in API responses
type ReturnLogEntryResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ProductID           uuid.UUID       `json:"product_id"`
	BatchID             *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity            decimal.Decimal `json:"quantity"`
	RefundPerUnit       decimal.Decimal `json:"refund_per_unit"`
	TotalRefund         decimal.Decimal `json:"total_refund"`
	ReturnTransactionID uuid.UUID       `json:"return_transaction_id"`
	IsUndone            bool            `json:"is_undone"`
	CreatedAt           time.Time       `json:"created_at"`
}

// SaleResponse represents a sale record in API responses
type SaleResponse struct {
	ID                uuid.UUID                `json:"id"`
	SaleNumber        string                   `json:"sale_number"`
	Status            string                   `json:"status"`
	OriginalSaleID    *uuid.UUID               `json:"original_sale_id,omitempty"`
	CampaignID        *uuid.UUID               `json:"campaign_id,omitempty"`
	Items             []SaleItemResponse       `json:"items"`
	ReturnLog         []ReturnLogEntryResponse `json:"return_log,omitempty"`
	AppliedRules      []sale.AppliedRuleInfo   `json:"applied_rules,omitempty"`
	Subtotal          decimal.Decimal          `json:"subtotal"`
	ItemDiscountTotal decimal.Decimal          `json:"item_discount_total"`
	CartDiscountTotal decimal.Decimal          `json:"cart_discount_total"`
	TaxTotal          decimal.Decimal          `json:"tax_total"`
	TotalAmount       decimal.Decimal          `json:"total_amount"`
	IsCredit          bool                     `json:"is_credit"`
	CustomerName      string                   `json:"customer_name,omitempty"`
	AmountPaid        decimal.Decimal          `json:"amount_paid"`
	CreditOutstanding decimal.Decimal          `json:"credit_outstanding"`
	CreditStatus      string                   `json:"credit_status,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// SaleDetailResponse pairs an original sale with its adjusted bill, if any
type SaleDetailResponse struct {
	Sale     SaleResponse  `json:"sale"`
	Adjusted *SaleResponse `json:"adjusted,omitempty"`
}

// RegisterReturnResponse is the outcome of registering a return
type RegisterReturnResponse struct {
	TransactionID uuid.UUID                `json:"transaction_id"`
	Entries       []ReturnLogEntryResponse `json:"entries"`
	RefundTotal   decimal.Decimal          `json:"refund_total"`
	Adjusted      SaleResponse             `json:"adjusted"`
}

// UndoReturnResponse is the outcome of undoing one return entry
type UndoReturnResponse struct {
	Collapsed bool                   `json:"collapsed"`
	Entry     ReturnLogEntryResponse `json:"entry"`
	Sale      SaleResponse           `json:"sale"`
	Adjusted  *SaleResponse          `json:"adjusted,omitempty"`
}

// ToSaleItemResponse converts a sale item to its response form
func ToSaleItemResponse(item sale.SaleItem) SaleItemResponse {
	return SaleItemResponse{
		ID:                 item.ID,
		ProductID:          item.ProductID,
		BatchID:            item.BatchID,
		ProductName:        item.ProductName,
		Quantity:           item.Quantity,
		PriceAtSale:        item.PriceAtSale,
		TotalDiscount:      item.TotalDiscount,
		EffectiveUnitPrice: item.EffectiveUnitPrice,
		AppliedRuleName:    item.AppliedRuleName,
		Override:           item.Override,
		TaxRate:            item.TaxRate,
		TaxAmount:          item.TaxAmount,
		NetAmount:          item.NetAmount,
		LineTotal:          item.LineTotal,
	}
}

// ToReturnLogEntryResponse converts a return log entry to its response form
func ToReturnLogEntryResponse(entry sale.ReturnLogEntry) ReturnLogEntryResponse {
	return ReturnLogEntryResponse{
		ID:                  entry.ID,
		ProductID:           entry.ProductID,
		BatchID:             entry.BatchID,
		Quantity:            entry.Quantity,
		RefundPerUnit:       entry.RefundPerUnit,
		TotalRefund:         entry.TotalRefund,
		ReturnTransactionID: entry.ReturnTransactionID,
		IsUndone:            entry.IsUndone,
		CreatedAt:           entry.CreatedAt,
	}
}

// ToSaleResponse converts a sale record to its response form
func ToSaleResponse(record *sale.SaleRecord) SaleResponse {
	items := make([]SaleItemResponse, len(record.Items))
	for i, item := range record.Items {
		items[i] = ToSaleItemResponse(item)
	}
	returnLog := make([]ReturnLogEntryResponse, len(record.ReturnLog))
	for i, entry := range record.ReturnLog {
		returnLog[i] = ToReturnLogEntryResponse(entry)
	}

	return SaleResponse{
		ID:                record.ID,
		SaleNumber:        record.SaleNumber,
		Status:            record.Status.String(),
		OriginalSaleID:    record.OriginalSaleID,
		CampaignID:        record.CampaignID,
		Items:             items,
		ReturnLog:         returnLog,
		AppliedRules:      record.AppliedRules,
		Subtotal:          record.Subtotal,
		ItemDiscountTotal: record.ItemDiscountTotal,
		CartDiscountTotal: record.CartDiscountTotal,
		TaxTotal:          record.TaxTotal,
		TotalAmount:       record.TotalAmount,
		IsCredit:          record.IsCredit,
		CustomerName:      record.CustomerName,
		AmountPaid:        record.AmountPaid,
		CreditOutstanding: record.CreditOutstanding,
		CreditStatus:      string(record.CreditStatus),
		CreatedAt:         record.CreatedAt,
		UpdatedAt:         record.UpdatedAt,
	}
}
