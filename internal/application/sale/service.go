package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/promotion"
	"github.com/retailpos/backend/internal/domain/sale"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService orchestrates sale commitment, returns and undo flows
type SaleService struct {
	sales         sale.SaleRepository
	products      catalog.ProductRepository
	batches       catalog.StockBatchRepository
	campaigns     promotion.CampaignRepository
	stock         sale.StockAdjuster
	tx            shared.TransactionManager
	calc          *promotion.Calculator
	engine        *sale.RecalculationEngine
	undo          *sale.UndoCoordinator
	logger        *zap.Logger
	globalTaxRate decimal.Decimal
}

// NewSaleService creates a new SaleService
func NewSaleService(
	sales sale.SaleRepository,
	products catalog.ProductRepository,
	batches catalog.StockBatchRepository,
	campaigns promotion.CampaignRepository,
	stock sale.StockAdjuster,
	tx shared.TransactionManager,
	logger *zap.Logger,
	globalTaxRate decimal.Decimal,
) *SaleService {
	engine := sale.NewRecalculationEngine()
	return &SaleService{
		sales:         sales,
		products:      products,
		batches:       batches,
		campaigns:     campaigns,
		stock:         stock,
		tx:            tx,
		calc:          promotion.NewCalculator(),
		engine:        engine,
		undo:          sale.NewUndoCoordinator(engine, stock, logger),
		logger:        logger,
		globalTaxRate: globalTaxRate,
	}
}

// CreateSale prices the cart, freezes the result into a sale record and
// consumes batch stock.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleResponse, error) {
	var campaign *promotion.DiscountCampaign
	if req.CampaignID != nil {
		var err error
		campaign, err = s.campaigns.FindByID(ctx, *req.CampaignID)
		if err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	lookup, err := s.products.PriceLookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]promotion.SaleLine, 0, len(req.Items))
	names := make(map[uuid.UUID]string, len(req.Items))
	for _, input := range req.Items {
		snap, ok := lookup[input.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found: "+input.ProductID.String())
		}
		if !input.Quantity.IsPositive() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
		}

		unitPrice := snap.SellingPrice
		if input.BatchID != nil {
			batch, err := s.batches.FindByID(ctx, *input.BatchID)
			if err != nil {
				return nil, err
			}
			if batch.ProductID != input.ProductID {
				return nil, shared.NewDomainError("BATCH_MISMATCH", "Batch does not belong to the product")
			}
			unitPrice = batch.SellingPriceAtBatch
		}

		override := input.Override.toDomain()
		if override != nil {
			if err := override.Validate(); err != nil {
				return nil, err
			}
		}

		names[input.ProductID] = snap.Name
		lines = append(lines, promotion.SaleLine{
			LineID:    uuid.New(),
			ProductID: input.ProductID,
			BatchID:   input.BatchID,
			UnitPrice: unitPrice,
			Quantity:  input.Quantity,
			Override:  override,
		})
	}

	result := s.calc.Compute(lines, campaign, lookup)

	record, err := sale.NewSaleRecord(req.SaleNumber, req.CampaignID, s.globalTaxRate)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	totalAmount := decimal.Zero
	for _, line := range lines {
		discount := result.LineDiscountFor(line.LineID)
		lineValue := line.LineValue()
		lineNet := lineValue.Sub(discount.TotalForLine)

		lineCartDiscount := decimal.Zero
		if result.SubtotalAfterItemDiscounts.IsPositive() && result.CartDiscountTotal.IsPositive() {
			share := lineNet.Div(result.SubtotalAfterItemDiscounts)
			lineCartDiscount = result.CartDiscountTotal.Mul(share)
		}

		taxable := lineNet.Sub(lineCartDiscount)
		if taxable.IsNegative() {
			taxable = decimal.Zero
		}
		taxRate := lookup.TaxRate(line.ProductID, s.globalTaxRate)
		taxAmount := taxable.Mul(taxRate)

		effectiveUnit := lineNet.Div(line.Quantity)

		entity := shared.NewBaseEntity()
		entity.ID = line.LineID
		item := sale.SaleItem{
			BaseEntity:         entity,
			ProductID:          line.ProductID,
			BatchID:            line.BatchID,
			ProductName:        names[line.ProductID],
			Quantity:           line.Quantity,
			PriceAtSale:        line.UnitPrice,
			TotalDiscount:      discount.TotalForLine,
			EffectiveUnitPrice: effectiveUnit,
			AppliedRuleName:    discount.RuleName,
			Override:           line.Override,
			TaxRate:            taxRate,
			TaxAmount:          taxAmount,
			NetAmount:          taxable,
			LineTotal:          taxable.Add(taxAmount),
		}
		if err := record.AddItem(item); err != nil {
			return nil, err
		}

		subtotal = subtotal.Add(lineValue)
		taxTotal = taxTotal.Add(taxAmount)
		totalAmount = totalAmount.Add(item.LineTotal)
	}

	record.AppliedRules = sale.SummarizeAppliedRules(result.AppliedRules)
	record.SetFinancials(subtotal, result.ItemDiscountTotal, result.CartDiscountTotal, taxTotal, totalAmount)

	if req.Credit != nil {
		if err := record.MarkCredit(req.Credit.CustomerName, req.Credit.AmountPaid); err != nil {
			return nil, err
		}
	} else {
		record.AmountPaid = totalAmount
	}

	consumed, err := s.consumeStock(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.sales.Save(ctx, record); err != nil {
		s.releaseStock(ctx, consumed)
		return nil, err
	}

	response := ToSaleResponse(record)
	return &response, nil
}

// GetSale retrieves a sale together with its adjusted bill, if one exists
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*SaleDetailResponse, error) {
	record, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &SaleDetailResponse{Sale: ToSaleResponse(record)}
	if record.Status == sale.StatusAdjustedActive && record.OriginalSaleID == nil {
		adjusted, err := s.sales.FindAdjustedByOriginal(ctx, record.ID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		if adjusted != nil {
			response := ToSaleResponse(adjusted)
			detail.Adjusted = &response
		}
	}
	return detail, nil
}

// RegisterReturn logs returned units against the original sale, restores
// batch stock and recomputes the adjusted bill.
func (s *SaleService) RegisterReturn(ctx context.Context, saleID uuid.UUID, req RegisterReturnRequest) (*RegisterReturnResponse, error) {
	original, err := s.loadOriginal(ctx, saleID)
	if err != nil {
		return nil, err
	}
	campaign, err := s.loadCampaign(ctx, original.CampaignID)
	if err != nil {
		return nil, err
	}
	lookup, err := s.lookupFor(ctx, original)
	if err != nil {
		return nil, err
	}
	batchPrices, err := s.batchLookupFor(ctx, original)
	if err != nil {
		return nil, err
	}

	transactionID := uuid.New()
	entries := make([]ReturnLogEntryResponse, 0, len(req.Items))
	refundTotal := decimal.Zero
	for _, input := range req.Items {
		item := original.FindItem(input.ProductID, input.BatchID)
		if item == nil {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Sale has no line for product "+input.ProductID.String())
		}
		entry, err := original.AppendReturn(*item, input.Quantity, item.EffectiveUnitPrice, transactionID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ToReturnLogEntryResponse(*entry))
		refundTotal = refundTotal.Add(entry.TotalRefund)
	}

	if original.Status == sale.StatusCompletedOriginal {
		if err := original.TransitionTo(sale.StatusAdjustedActive); err != nil {
			return nil, err
		}
	}

	adjusted, err := s.engine.Recalculate(original, campaign, lookup, batchPrices)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Returned goods go back on the shelf. A batch that no longer
		// exists is a consistency warning, not a failed return.
		for _, input := range req.Items {
			if err := s.stock.Adjust(ctx, input.ProductID, input.BatchID, input.Quantity); err != nil {
				s.logger.Warn("return could not restore batch stock",
					zap.String("sale_id", original.ID.String()),
					zap.String("product_id", input.ProductID.String()),
					zap.Error(err),
				)
			}
		}

		if err := s.sales.Update(ctx, original); err != nil {
			return err
		}
		return s.sales.Update(ctx, adjusted)
	})
	if err != nil {
		return nil, err
	}

	return &RegisterReturnResponse{
		TransactionID: transactionID,
		Entries:       entries,
		RefundTotal:   refundTotal,
		Adjusted:      ToSaleResponse(adjusted),
	}, nil
}

// UndoReturn reverses one return log entry. When the last active return
// disappears the adjusted bill is deleted and the original becomes the
// current bill again.
func (s *SaleService) UndoReturn(ctx context.Context, saleID, entryID uuid.UUID) (*UndoReturnResponse, error) {
	original, err := s.loadOriginal(ctx, saleID)
	if err != nil {
		return nil, err
	}
	campaign, err := s.loadCampaign(ctx, original.CampaignID)
	if err != nil {
		return nil, err
	}
	lookup, err := s.lookupFor(ctx, original)
	if err != nil {
		return nil, err
	}
	batchPrices, err := s.batchLookupFor(ctx, original)
	if err != nil {
		return nil, err
	}

	var result *sale.UndoResult
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.undo.Undo(ctx, original, entryID, campaign, lookup, batchPrices)
		if err != nil {
			return err
		}
		if err := s.sales.Update(ctx, original); err != nil {
			return err
		}
		if result.Collapsed {
			return s.deleteAdjustedFor(ctx, original.ID)
		}
		return s.sales.Update(ctx, result.Adjusted)
	})
	if err != nil {
		return nil, err
	}

	response := &UndoReturnResponse{
		Collapsed: result.Collapsed,
		Entry:     ToReturnLogEntryResponse(result.Entry),
		Sale:      ToSaleResponse(original),
	}
	if !result.Collapsed {
		adjusted := ToSaleResponse(result.Adjusted)
		response.Adjusted = &adjusted
	}
	return response, nil
}

// RecordPayment registers a credit payment against a sale
func (s *SaleService) RecordPayment(ctx context.Context, saleID uuid.UUID, req RecordPaymentRequest) (*SaleResponse, error) {
	record, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if err := record.RecordPayment(req.Amount); err != nil {
		return nil, err
	}
	if err := s.sales.Update(ctx, record); err != nil {
		return nil, err
	}
	response := ToSaleResponse(record)
	return &response, nil
}

// loadOriginal resolves an ID that may point at either record of a sale
// pair to the original record carrying the return log
func (s *SaleService) loadOriginal(ctx context.Context, id uuid.UUID) (*sale.SaleRecord, error) {
	record, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.OriginalSaleID != nil {
		return s.sales.FindByID(ctx, *record.OriginalSaleID)
	}
	return record, nil
}

// loadCampaign loads the campaign snapshot a sale was priced with. A
// missing campaign degrades to override-only pricing.
func (s *SaleService) loadCampaign(ctx context.Context, id *uuid.UUID) (*promotion.DiscountCampaign, error) {
	if id == nil {
		return nil, nil
	}
	campaign, err := s.campaigns.FindByID(ctx, *id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// deleteAdjustedFor removes the adjusted bill derived from an original,
// if one was persisted
func (s *SaleService) deleteAdjustedFor(ctx context.Context, originalID uuid.UUID) error {
	adjusted, err := s.sales.FindAdjustedByOriginal(ctx, originalID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.sales.DeleteAdjusted(ctx, adjusted.ID)
}

func (s *SaleService) lookupFor(ctx context.Context, record *sale.SaleRecord) (catalog.PriceLookup, error) {
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		ids = append(ids, item.ProductID)
	}
	return s.products.PriceLookup(ctx, ids)
}

// batchLookupFor loads current batch prices for every batch-tracked line
// of the sale, so the engine re-prices kept units at the batch price
func (s *SaleService) batchLookupFor(ctx context.Context, record *sale.SaleRecord) (catalog.BatchPriceLookup, error) {
	ids := make([]uuid.UUID, 0, len(record.Items))
	for _, item := range record.Items {
		if item.BatchID != nil {
			ids = append(ids, *item.BatchID)
		}
	}
	if len(ids) == 0 {
		return catalog.BatchPriceLookup{}, nil
	}
	return s.batches.PriceLookup(ctx, ids)
}

type consumedBatch struct {
	batchID  uuid.UUID
	quantity decimal.Decimal
}

// consumeStock draws every batch-tracked line from stock, rolling back
// already-consumed batches when one cannot cover its line
func (s *SaleService) consumeStock(ctx context.Context, lines []promotion.SaleLine) ([]consumedBatch, error) {
	consumed := make([]consumedBatch, 0, len(lines))
	for _, line := range lines {
		if line.BatchID == nil {
			continue
		}
		if err := s.batches.AdjustQuantity(ctx, *line.BatchID, line.Quantity.Neg()); err != nil {
			s.releaseStock(ctx, consumed)
			return nil, err
		}
		consumed = append(consumed, consumedBatch{batchID: *line.BatchID, quantity: line.Quantity})
	}
	return consumed, nil
}

func (s *SaleService) releaseStock(ctx context.Context, consumed []consumedBatch) {
	for _, c := range consumed {
		if err := s.batches.AdjustQuantity(ctx, c.batchID, c.quantity); err != nil {
			s.logger.Warn("could not release consumed stock",
				zap.String("batch_id", c.batchID.String()),
				zap.Error(err),
			)
		}
	}
}
