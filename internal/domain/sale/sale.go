package sale

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SaleStatus is the bounded state machine of a sale record
type SaleStatus string

const (
	// StatusCompletedOriginal is a committed sale with no active returns
	StatusCompletedOriginal SaleStatus = "COMPLETED_ORIGINAL"
	// StatusAdjustedActive is a sale whose current view is a recomputed
	// adjusted bill derived from one or more active returns
	StatusAdjustedActive SaleStatus = "ADJUSTED_ACTIVE"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	return s == StatusCompletedOriginal || s == StatusAdjustedActive
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case StatusCompletedOriginal:
		return target == StatusAdjustedActive
	case StatusAdjustedActive:
		return target == StatusCompletedOriginal
	}
	return false
}

// CreditPaymentStatus tracks settlement of a credit sale
type CreditPaymentStatus string

const (
	CreditStatusPending       CreditPaymentStatus = "PENDING"
	CreditStatusPartiallyPaid CreditPaymentStatus = "PARTIALLY_PAID"
	CreditStatusFullyPaid     CreditPaymentStatus = "FULLY_PAID"
)

// creditZeroTolerance treats an outstanding balance within 0.009 currency
// units of zero as settled
var creditZeroTolerance = decimal.NewFromFloat(0.009)

// paymentTolerance bounds how far a payment may exceed the outstanding
// balance before it is rejected
var paymentTolerance = decimal.NewFromFloat(0.001)

// SaleItem is a line frozen into the sale at commit time. Price and
// discount are baked in; the manual override is retained so adjusted
// bills can reproduce it.
type SaleItem struct {
	shared.BaseEntity
	SaleID             uuid.UUID                 `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BatchID            *uuid.UUID                `gorm:"type:uuid;index"`
	ProductName        string                    `gorm:"not null"`
	Quantity           decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	PriceAtSale        decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	TotalDiscount      decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	EffectiveUnitPrice decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	AppliedRuleName    string
	Override           *promotion.ManualOverride `gorm:"serializer:json"`
	TaxRate            decimal.Decimal           `gorm:"type:decimal(10,8);not null"`
	TaxAmount          decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	NetAmount          decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
	LineTotal          decimal.Decimal           `gorm:"type:decimal(20,8);not null"`
}

// LineValue returns price at sale times quantity
func (i SaleItem) LineValue() decimal.Decimal {
	return i.PriceAtSale.Mul(i.Quantity)
}

// ReturnLogEntry is one logged return of units from a sale line.
// Entries are append-only: undo marks IsUndone, never deletes.
type ReturnLogEntry struct {
	shared.BaseEntity
	SaleID              uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID           uuid.UUID       `gorm:"type:uuid;not null"`
	BatchID             *uuid.UUID      `gorm:"type:uuid"`
	Quantity            decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	RefundPerUnit       decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	TotalRefund         decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	ReturnTransactionID uuid.UUID       `gorm:"type:uuid;not null"`
	IsUndone            bool            `gorm:"not null;default:false"`
}

// AppliedRuleInfo is a persisted summary of one applied discount rule
type AppliedRuleInfo struct {
	CampaignName      string          `json:"campaign_name"`
	RuleName          string          `json:"rule_name"`
	RuleKind          string          `json:"rule_kind"`
	Amount            decimal.Decimal `json:"amount"`
	AffectedProductID *uuid.UUID      `json:"affected_product_id,omitempty"`
	AppliedOnce       bool            `json:"applied_once"`
}

// SaleRecord is a committed sale. The pristine original is never mutated
// after commit except for its status flag; adjusted bills are separate
// records linked by OriginalSaleID.
type SaleRecord struct {
	shared.BaseAggregateRoot
	SaleNumber        string              `gorm:"not null;index"`
	Status            SaleStatus          `gorm:"not null"`
	OriginalSaleID    *uuid.UUID          `gorm:"type:uuid;index"`
	CampaignID        *uuid.UUID          `gorm:"type:uuid"`
	GlobalTaxRate     decimal.Decimal     `gorm:"type:decimal(10,8);not null"`
	Items             []SaleItem          `gorm:"foreignKey:SaleID"`
	ReturnLog         []ReturnLogEntry    `gorm:"foreignKey:SaleID"`
	AppliedRules      []AppliedRuleInfo   `gorm:"serializer:json"`
	Subtotal          decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	ItemDiscountTotal decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	CartDiscountTotal decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	TaxTotal          decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	TotalAmount       decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	IsCredit          bool                `gorm:"not null;default:false"`
	CustomerName      string
	AmountPaid        decimal.Decimal     `gorm:"type:decimal(20,8);not null;default:0"`
	CreditOutstanding decimal.Decimal     `gorm:"type:decimal(20,8);not null;default:0"`
	CreditStatus      CreditPaymentStatus
}

// NewSaleRecord creates an empty committed sale record
func NewSaleRecord(saleNumber string, campaignID *uuid.UUID, globalTaxRate decimal.Decimal) (*SaleRecord, error) {
	if saleNumber == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if globalTaxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	return &SaleRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        saleNumber,
		Status:            StatusCompletedOriginal,
		CampaignID:        campaignID,
		GlobalTaxRate:     globalTaxRate,
		Items:             make([]SaleItem, 0),
		ReturnLog:         make([]ReturnLogEntry, 0),
	}, nil
}

// AddItem appends a frozen line item to the record
func (s *SaleRecord) AddItem(item SaleItem) error {
	if item.ProductID == uuid.Nil {
		return shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !item.Quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be positive")
	}
	item.SaleID = s.ID
	s.Items = append(s.Items, item)
	s.UpdatedAt = time.Now()
	return nil
}

// SetFinancials bakes the computed totals into the record
func (s *SaleRecord) SetFinancials(subtotal, itemDiscount, cartDiscount, tax, total decimal.Decimal) {
	s.Subtotal = subtotal
	s.ItemDiscountTotal = itemDiscount
	s.CartDiscountTotal = cartDiscount
	s.TaxTotal = tax
	s.TotalAmount = total
	if s.IsCredit {
		s.refreshCredit()
	}
	s.UpdatedAt = time.Now()
}

// MarkCredit flags the sale as a credit sale with an initial payment
func (s *SaleRecord) MarkCredit(customerName string, amountPaid decimal.Decimal) error {
	if customerName == "" {
		return shared.NewDomainError("INVALID_CUSTOMER", "Credit sale requires a customer name")
	}
	if amountPaid.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	s.IsCredit = true
	s.CustomerName = customerName
	s.AmountPaid = amountPaid
	s.refreshCredit()
	s.UpdatedAt = time.Now()
	return nil
}

// RecordPayment registers a customer payment against the outstanding
// balance. Overpayment beyond the tolerance is rejected before any
// mutation.
func (s *SaleRecord) RecordPayment(amount decimal.Decimal) error {
	if !s.IsCredit {
		return shared.NewDomainError("NOT_CREDIT_SALE", "Sale is not a credit sale")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Sub(s.CreditOutstanding).GreaterThan(paymentTolerance) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount exceeds outstanding balance")
	}
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.refreshCredit()
	s.UpdatedAt = time.Now()
	return nil
}

// refreshCredit recomputes the outstanding balance and payment status
func (s *SaleRecord) refreshCredit() {
	outstanding := valueobject.NewMoney(s.TotalAmount).
		Subtract(valueobject.NewMoney(s.AmountPaid)).
		Clamp(valueobject.ZeroMoney(), valueobject.NewMoney(s.TotalAmount)).
		Amount()
	s.CreditOutstanding = outstanding

	switch {
	case outstanding.LessThanOrEqual(creditZeroTolerance):
		s.CreditOutstanding = decimal.Zero
		s.CreditStatus = CreditStatusFullyPaid
	case s.AmountPaid.IsPositive():
		s.CreditStatus = CreditStatusPartiallyPaid
	default:
		s.CreditStatus = CreditStatusPending
	}
}

// TransitionTo moves the record through the bounded state machine
func (s *SaleRecord) TransitionTo(target SaleStatus) error {
	if !s.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}
	s.Status = target
	s.UpdatedAt = time.Now()
	return nil
}

// ActiveReturns returns all non-undone return log entries. The result is
// always non-nil so the "no active returns" state is deterministic.
func (s *SaleRecord) ActiveReturns() []ReturnLogEntry {
	active := make([]ReturnLogEntry, 0, len(s.ReturnLog))
	for _, entry := range s.ReturnLog {
		if !entry.IsUndone {
			active = append(active, entry)
		}
	}
	return active
}

// FindReturnEntry returns the log entry with the given ID, or nil
func (s *SaleRecord) FindReturnEntry(entryID uuid.UUID) *ReturnLogEntry {
	for i := range s.ReturnLog {
		if s.ReturnLog[i].ID == entryID {
			return &s.ReturnLog[i]
		}
	}
	return nil
}

// KeptQuantity returns the item's original quantity minus all active
// returns for the same product and batch
func (s *SaleRecord) KeptQuantity(item SaleItem) decimal.Decimal {
	kept := item.Quantity
	for _, entry := range s.ReturnLog {
		if entry.IsUndone {
			continue
		}
		if entry.ProductID != item.ProductID {
			continue
		}
		if !sameBatch(entry.BatchID, item.BatchID) {
			continue
		}
		kept = kept.Sub(entry.Quantity)
	}
	return kept
}

// AppendReturn validates and appends one return log entry. The entry
// quantity must not exceed the currently kept quantity for the line.
func (s *SaleRecord) AppendReturn(item SaleItem, quantity, refundPerUnit decimal.Decimal, transactionID uuid.UUID) (*ReturnLogEntry, error) {
	if !quantity.IsPositive() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity must be positive")
	}
	if quantity.GreaterThan(s.KeptQuantity(item)) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Return quantity exceeds remaining quantity on the bill")
	}
	if refundPerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Refund per unit cannot be negative")
	}

	entry := ReturnLogEntry{
		BaseEntity:          shared.NewBaseEntity(),
		SaleID:              s.ID,
		ProductID:           item.ProductID,
		BatchID:             item.BatchID,
		Quantity:            quantity,
		RefundPerUnit:       refundPerUnit,
		TotalRefund:         refundPerUnit.Mul(quantity),
		ReturnTransactionID: transactionID,
	}
	s.ReturnLog = append(s.ReturnLog, entry)
	s.UpdatedAt = time.Now()
	return &s.ReturnLog[len(s.ReturnLog)-1], nil
}

// FindItem returns the frozen item for a product and batch, or nil
func (s *SaleRecord) FindItem(productID uuid.UUID, batchID *uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ProductID == productID && sameBatch(s.Items[i].BatchID, batchID) {
			return &s.Items[i]
		}
	}
	return nil
}

func sameBatch(a, b *uuid.UUID) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return *a == *b
	}
}

// SaleRepository defines persistence operations for sale records
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleRecord, error)
	FindAdjustedByOriginal(ctx context.Context, originalID uuid.UUID) (*SaleRecord, error)
	Save(ctx context.Context, record *SaleRecord) error
	Update(ctx context.Context, record *SaleRecord) error
	DeleteAdjusted(ctx context.Context, adjustedID uuid.UUID) error
}
