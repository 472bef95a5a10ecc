// Package sales records sales drawn from stock lots.
package sales

import (
	"context"
	"strings"
	"time"

	"ricemill/internal/core/apperror"
	"ricemill/internal/core/id"
	"ricemill/internal/core/types"
	"ricemill/internal/domain/audit"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/store"
	"ricemill/pkg/logger"
)

// Input describes a sale. A nil PricePerKg takes the lot's price; an empty
// customer is recorded as a walk-in.
type Input struct {
	StockID       string
	Quantity      types.Quantity
	PricePerKg    *types.Money
	CustomerName  string
	CustomerPhone string
	SaleDate      *time.Time
}

// StockAdjuster moves stock quantities inside the caller's transaction.
type StockAdjuster interface {
	AdjustQuantity(ctx context.Context, stockID string, delta types.Quantity, enforceCap bool) (ledger.StockRecord, error)
}

// Config holds the sales switches.
type Config struct {
	// EnforceStockCap rejects sales above the quantity on hand.
	// When false the lot clamps at zero.
	EnforceStockCap bool
}

// Service records and lists sales.
type Service struct {
	store  *store.Store
	stocks StockAdjuster
	audit  *audit.Recorder
	cfg    Config
	now    func() time.Time
}

// NewService creates a sales service.
func NewService(s *store.Store, stocks StockAdjuster, recorder *audit.Recorder, cfg Config) *Service {
	return &Service{
		store:  s,
		stocks: stocks,
		audit:  recorder,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RecordSale appends the sale and decrements its lot in one transaction.
func (s *Service) RecordSale(ctx context.Context, in Input) (ledger.SaleRecord, error) {
	if !in.Quantity.IsPositive() {
		return ledger.SaleRecord{}, apperror.NewFieldValidation("quantity", "sale quantity must be greater than zero")
	}
	if in.PricePerKg != nil && in.PricePerKg.IsNegative() {
		return ledger.SaleRecord{}, apperror.NewFieldValidation("pricePerKg", "price per kg cannot be negative")
	}
	stockID := id.Normalize(in.StockID)
	if stockID == "" {
		return ledger.SaleRecord{}, apperror.NewFieldValidation("stockId", "stock id is required")
	}

	now := s.now()
	sale := ledger.SaleRecord{
		ID:            id.New(),
		StockID:       stockID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		Quantity:      in.Quantity,
		SaleDate:      now,
		CreatedAt:     now,
	}
	if sale.CustomerName == "" {
		sale.CustomerName = ledger.WalkInCustomer
	}
	if in.SaleDate != nil && !in.SaleDate.IsZero() {
		sale.SaleDate = in.SaleDate.UTC()
	}

	var remaining ledger.StockRecord
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		lot, err := s.store.FindStock(ctx, stockID)
		if err != nil {
			return err
		}
		sale.Family = lot.Family
		sale.PricePerKg = lot.PricePerKg
		if in.PricePerKg != nil {
			sale.PricePerKg = *in.PricePerKg
		}

		sales, err := s.store.Sales(ctx, lot.Family)
		if err != nil {
			return err
		}
		if err := s.store.SaveSales(ctx, lot.Family, append(sales, sale)); err != nil {
			return err
		}

		remaining, err = s.stocks.AdjustQuantity(ctx, stockID, -sale.Quantity, s.cfg.EnforceStockCap)
		return err
	})
	if err != nil {
		if apperror.IsValidation(err) {
			logger.Warn(ctx, "sale rejected", "stock_id", stockID, "quantity", sale.Quantity.String(), "error", err)
		}
		return ledger.SaleRecord{}, err
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", sale.ID,
		"stock_id", stockID,
		"family", sale.Family,
		"quantity", sale.Quantity.String(),
		"total", sale.TotalAmount().StringFixed(2),
		"remaining", remaining.Quantity.String(),
		"status", remaining.Status,
	)
	return sale, nil
}

// ListSales returns the sales of a family, or of both when family is empty.
func (s *Service) ListSales(ctx context.Context, family ledger.Family) ([]ledger.SaleRecord, error) {
	if family == "" {
		return s.store.AllSales(ctx)
	}
	return s.store.Sales(ctx, family)
}

// GetSale returns one sale of either family.
func (s *Service) GetSale(ctx context.Context, saleID string) (ledger.SaleRecord, error) {
	saleID = id.Normalize(saleID)
	all, err := s.store.AllSales(ctx)
	if err != nil {
		return ledger.SaleRecord{}, err
	}
	for _, sale := range all {
		if sale.ID == saleID {
			return sale, nil
		}
	}
	return ledger.SaleRecord{}, apperror.NewNotFound("sale", saleID)
}

// DeleteSale removes a sale. The sold quantity is not returned to stock.
func (s *Service) DeleteSale(ctx context.Context, saleID string, req ledger.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	saleID = id.Normalize(saleID)

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, f := range ledger.Families() {
			items, err := s.store.Sales(ctx, f)
			if err != nil {
				return err
			}
			for i, sale := range items {
				if sale.ID != saleID {
					continue
				}
				if err := s.store.SaveSales(ctx, f, append(items[:i], items[i+1:]...)); err != nil {
					return err
				}
				if s.audit != nil {
					return s.audit.Record(ctx, ledger.AuditDelete, store.SalesOf(f), sale.ID, strings.TrimSpace(req.Reason), sale, nil)
				}
				return nil
			}
		}
		return apperror.NewNotFound("sale", saleID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale deleted", "sale_id", saleID, "reason", req.Reason)
	return nil
}
