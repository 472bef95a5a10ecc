// Package stock provides the stock ledger: rice and paddy lots per warehouse.
package stock

import (
	"context"
	"fmt"
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

// AddInput describes a new stock lot. Quantity is required; Date
// defaults to now.
type AddInput struct {
	Family        ledger.Family
	Type          string
	Quantity      *types.Quantity
	Unit          string
	Warehouse     string
	PricePerKg    types.Money
	MoistureLevel *float64
	Supplier      string
	Customer      string
	Grade         string
	Date          *time.Time
}

// Patch lists the fields an update overwrites. Nil fields are kept.
type Patch struct {
	Type          *string
	Quantity      *types.Quantity
	Unit          *string
	Warehouse     *string
	PricePerKg    *types.Money
	MoistureLevel *float64
	Supplier      *string
	Customer      *string
	Grade         *string
	Date          *time.Time
}

// Service provides business operations for stock lots.
// Every mutation runs in a store transaction; nested calls join the
// caller's transaction.
type Service struct {
	store   *store.Store
	catalog ledger.Catalog
	audit   *audit.Recorder
	now     func() time.Time
}

// NewService creates a stock ledger service.
func NewService(s *store.Store, catalog ledger.Catalog, recorder *audit.Recorder) *Service {
	return &Service{
		store:   s,
		catalog: catalog.WithDefaults(),
		audit:   recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the variety catalog used for validation.
func (s *Service) Catalog() ledger.Catalog {
	return s.catalog
}

// AddStock validates and appends a new lot.
func (s *Service) AddStock(ctx context.Context, in AddInput) (ledger.StockRecord, error) {
	if in.Quantity == nil {
		return ledger.StockRecord{}, apperror.NewFieldValidation("quantity", "quantity is required")
	}

	now := s.now()
	rec := ledger.StockRecord{
		ID:            id.New(),
		Family:        in.Family,
		Type:          in.Type,
		Quantity:      *in.Quantity,
		Unit:          strings.TrimSpace(in.Unit),
		Warehouse:     in.Warehouse,
		PricePerKg:    in.PricePerKg,
		MoistureLevel: in.MoistureLevel,
		Supplier:      strings.TrimSpace(in.Supplier),
		Customer:      strings.TrimSpace(in.Customer),
		Grade:         strings.TrimSpace(in.Grade),
		Date:          now,
		CreatedAt:     now,
	}
	if in.Date != nil && !in.Date.IsZero() {
		rec.Date = in.Date.UTC()
	}

	if err := rec.Validate(s.catalog); err != nil {
		return ledger.StockRecord{}, err
	}
	rec.Touch(now)

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		items, err := s.store.Stocks(ctx, rec.Family)
		if err != nil {
			return err
		}
		return s.store.SaveStocks(ctx, rec.Family, append(items, rec))
	})
	if err != nil {
		return ledger.StockRecord{}, err
	}

	logger.Info(ctx, "stock added",
		"stock_id", rec.ID,
		"family", rec.Family,
		"type", rec.Type,
		"quantity", rec.Quantity.String(),
		"warehouse", rec.Warehouse,
	)
	return rec, nil
}

// UpdateStock applies patch to the lot. A non-empty comment is kept in
// the audit log together with the previous state.
func (s *Service) UpdateStock(ctx context.Context, stockID string, patch Patch, comment string) (ledger.StockRecord, error) {
	stockID = id.Normalize(stockID)
	comment = strings.TrimSpace(comment)

	var updated ledger.StockRecord
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		family, items, idx, err := s.locate(ctx, stockID)
		if err != nil {
			return err
		}

		before := items[idx]
		rec := before
		patch.apply(&rec)
		if rec.Date.IsZero() {
			rec.Date = before.Date
		}

		if err := rec.Validate(s.catalog); err != nil {
			return err
		}
		rec.Touch(s.now())
		items[idx] = rec

		if err := s.store.SaveStocks(ctx, family, items); err != nil {
			return err
		}
		if comment != "" && s.audit != nil {
			if err := s.audit.Record(ctx, ledger.AuditUpdate, store.StocksOf(family), rec.ID, comment, before, rec); err != nil {
				return err
			}
		}
		updated = rec
		return nil
	})
	if err != nil {
		return ledger.StockRecord{}, err
	}

	logger.Info(ctx, "stock updated",
		"stock_id", updated.ID,
		"quantity", updated.Quantity.String(),
		"status", updated.Status,
		"audited", comment != "",
	)
	return updated, nil
}

// DeleteStock removes the lot after the request is validated and records
// the reason with a snapshot.
func (s *Service) DeleteStock(ctx context.Context, stockID string, req ledger.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	stockID = id.Normalize(stockID)

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		family, items, idx, err := s.locate(ctx, stockID)
		if err != nil {
			return err
		}
		removed := items[idx]
		items = append(items[:idx], items[idx+1:]...)

		if err := s.store.SaveStocks(ctx, family, items); err != nil {
			return err
		}
		if s.audit != nil {
			return s.audit.Record(ctx, ledger.AuditDelete, store.StocksOf(family), removed.ID, strings.TrimSpace(req.Reason), removed, nil)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock deleted", "stock_id", stockID, "reason", req.Reason)
	return nil
}

// GetStock returns one lot of either family.
func (s *Service) GetStock(ctx context.Context, stockID string) (ledger.StockRecord, error) {
	return s.store.FindStock(ctx, id.Normalize(stockID))
}

// ListStocks returns the lots of a family, or of both when family is empty.
func (s *Service) ListStocks(ctx context.Context, family ledger.Family) ([]ledger.StockRecord, error) {
	if family == "" {
		return s.store.AllStocks(ctx)
	}
	return s.store.Stocks(ctx, family)
}

// AdjustQuantity adds delta to the lot's quantity. With enforceCap a
// result below zero fails with INSUFFICIENT_STOCK; without it the
// quantity clamps at zero. Status and lastUpdated are refreshed.
func (s *Service) AdjustQuantity(ctx context.Context, stockID string, delta types.Quantity, enforceCap bool) (ledger.StockRecord, error) {
	var updated ledger.StockRecord
	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		family, items, idx, err := s.locate(ctx, stockID)
		if err != nil {
			return err
		}

		rec := items[idx]
		next := rec.Quantity + delta
		if next.IsNegative() && enforceCap {
			return apperror.NewInsufficientStock(rec.ID, (-delta).Float64(), rec.Quantity.Float64())
		}
		rec.Quantity = next
		rec.Touch(s.now())
		items[idx] = rec

		if err := s.store.SaveStocks(ctx, family, items); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return ledger.StockRecord{}, err
	}

	logger.Debug(ctx, "stock quantity adjusted",
		"stock_id", updated.ID,
		"delta", delta.String(),
		"quantity", updated.Quantity.String(),
		"status", updated.Status,
	)
	return updated, nil
}

// LowStock returns the lots whose status needs attention.
func (s *Service) LowStock(ctx context.Context) ([]ledger.StockRecord, error) {
	all, err := s.store.AllStocks(ctx)
	if err != nil {
		return nil, err
	}
	var out []ledger.StockRecord
	for _, rec := range all {
		if rec.Status.NeedsAttention() {
			out = append(out, rec)
		}
	}
	return out, nil
}

// locate finds a lot and returns its family's collection with its index.
func (s *Service) locate(ctx context.Context, stockID string) (ledger.Family, []ledger.StockRecord, int, error) {
	for _, f := range ledger.Families() {
		items, err := s.store.Stocks(ctx, f)
		if err != nil {
			return "", nil, 0, fmt.Errorf("load %s stock: %w", f, err)
		}
		for i := range items {
			if items[i].ID == stockID {
				return f, items, i, nil
			}
		}
	}
	return "", nil, 0, apperror.NewNotFound("stock", stockID)
}

func (p Patch) apply(rec *ledger.StockRecord) {
	if p.Type != nil {
		rec.Type = *p.Type
	}
	if p.Quantity != nil {
		rec.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		rec.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Warehouse != nil {
		rec.Warehouse = *p.Warehouse
	}
	if p.PricePerKg != nil {
		rec.PricePerKg = *p.PricePerKg
	}
	if p.MoistureLevel != nil {
		m := *p.MoistureLevel
		rec.MoistureLevel = &m
	}
	if p.Supplier != nil {
		rec.Supplier = strings.TrimSpace(*p.Supplier)
	}
	if p.Customer != nil {
		rec.Customer = strings.TrimSpace(*p.Customer)
	}
	if p.Grade != nil {
		rec.Grade = strings.TrimSpace(*p.Grade)
	}
	if p.Date != nil && !p.Date.IsZero() {
		rec.Date = p.Date.UTC()
	}
}
