// Package threshing records the conversion of paddy into rice, broken
// rice and polish, guarded by a mass balance check.
package threshing

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

// Input describes one threshing run. Quantities default to zero.
type Input struct {
	PaddyStockID       string
	PaddyType          string
	PaddyQuantity      types.Quantity
	RiceType           string
	RiceGrade          string
	RiceQuantity       types.Quantity
	BrokenRiceType     string
	BrokenRiceQuantity types.Quantity
	PolishRiceType     string
	PolishRiceQuantity types.Quantity
	Warehouse          string
	Date               *time.Time
	Notes              string
}

// StockLinker is called inside the recording transaction after the
// threshing record has been appended. An error rolls everything back.
type StockLinker interface {
	LinkThreshing(ctx context.Context, rec ledger.ThreshingRecord) error
}

// Option configures the Service.
type Option func(*Service)

// WithStockLinker makes recorded threshing move stock.
func WithStockLinker(l StockLinker) Option {
	return func(s *Service) { s.linker = l }
}

// Service records threshing runs.
type Service struct {
	store   *store.Store
	catalog ledger.Catalog
	audit   *audit.Recorder
	linker  StockLinker
	now     func() time.Time
}

// NewService creates a threshing service. Without WithStockLinker stock
// lots are never touched.
func NewService(s *store.Store, catalog ledger.Catalog, recorder *audit.Recorder, opts ...Option) *Service {
	svc := &Service{
		store:   s,
		catalog: catalog.WithDefaults(),
		audit:   recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// RecordThreshing validates the run and appends it. When the outputs
// exceed the paddy input a MassBalance error is returned and nothing is
// written.
func (s *Service) RecordThreshing(ctx context.Context, in Input) (ledger.ThreshingRecord, error) {
	now := s.now()
	rec := ledger.ThreshingRecord{
		ID:                 id.New(),
		PaddyStockID:       id.Normalize(in.PaddyStockID),
		PaddyType:          strings.TrimSpace(in.PaddyType),
		PaddyQuantity:      in.PaddyQuantity,
		RiceType:           strings.TrimSpace(in.RiceType),
		RiceGrade:          strings.TrimSpace(in.RiceGrade),
		RiceQuantity:       in.RiceQuantity,
		BrokenRiceType:     strings.TrimSpace(in.BrokenRiceType),
		BrokenRiceQuantity: in.BrokenRiceQuantity,
		PolishRiceType:     strings.TrimSpace(in.PolishRiceType),
		PolishRiceQuantity: in.PolishRiceQuantity,
		Warehouse:          strings.TrimSpace(in.Warehouse),
		Date:               now,
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
	}
	if in.Date != nil && !in.Date.IsZero() {
		rec.Date = in.Date.UTC()
	}

	if err := s.validate(&rec); err != nil {
		return ledger.ThreshingRecord{}, err
	}
	if err := rec.CheckMassBalance(); err != nil {
		logger.Warn(ctx, "threshing rejected by mass balance",
			"paddy_quantity", rec.PaddyQuantity.String(),
			"output_total", rec.OutputTotal().String(),
		)
		return ledger.ThreshingRecord{}, err
	}

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		if rec.PaddyStockID != "" {
			if err := s.resolvePaddyStock(ctx, &rec); err != nil {
				return err
			}
		}

		items, err := s.store.Threshings(ctx)
		if err != nil {
			return err
		}
		if err := s.store.SaveThreshings(ctx, append(items, rec)); err != nil {
			return err
		}

		if s.linker != nil {
			if err := s.linker.LinkThreshing(ctx, rec); err != nil {
				return fmt.Errorf("link threshing %s to stock: %w", rec.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return ledger.ThreshingRecord{}, err
	}

	logger.Info(ctx, "threshing recorded",
		"threshing_id", rec.ID,
		"paddy_quantity", rec.PaddyQuantity.String(),
		"rice_quantity", rec.RiceQuantity.String(),
		"husk", rec.Husk().String(),
		"linked", s.linker != nil,
	)
	return rec, nil
}

// ListThreshings returns every run in insertion order.
func (s *Service) ListThreshings(ctx context.Context) ([]ledger.ThreshingRecord, error) {
	return s.store.Threshings(ctx)
}

// GetThreshing returns one run.
func (s *Service) GetThreshing(ctx context.Context, threshingID string) (ledger.ThreshingRecord, error) {
	items, err := s.store.Threshings(ctx)
	if err != nil {
		return ledger.ThreshingRecord{}, err
	}
	threshingID = id.Normalize(threshingID)
	for _, item := range items {
		if item.ID == threshingID {
			return item, nil
		}
	}
	return ledger.ThreshingRecord{}, apperror.NewNotFound("threshing record", threshingID)
}

// DeleteThreshing removes a run. Stock moved by a linker is not reversed.
func (s *Service) DeleteThreshing(ctx context.Context, threshingID string, req ledger.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	threshingID = id.Normalize(threshingID)

	err := s.store.RunInTransaction(ctx, func(ctx context.Context) error {
		items, err := s.store.Threshings(ctx)
		if err != nil {
			return err
		}
		for i, item := range items {
			if item.ID != threshingID {
				continue
			}
			if err := s.store.SaveThreshings(ctx, append(items[:i], items[i+1:]...)); err != nil {
				return err
			}
			if s.audit != nil {
				return s.audit.Record(ctx, ledger.AuditDelete, store.Threshings, item.ID, strings.TrimSpace(req.Reason), item, nil)
			}
			return nil
		}
		return apperror.NewNotFound("threshing record", threshingID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "threshing deleted", "threshing_id", threshingID, "reason", req.Reason)
	return nil
}

func (s *Service) validate(rec *ledger.ThreshingRecord) error {
	quantities := []struct {
		field string
		value types.Quantity
	}{
		{"paddyQuantity", rec.PaddyQuantity},
		{"riceQuantity", rec.RiceQuantity},
		{"brokenRiceQuantity", rec.BrokenRiceQuantity},
		{"polishRiceQuantity", rec.PolishRiceQuantity},
	}
	for _, q := range quantities {
		if q.value.IsNegative() {
			return apperror.NewFieldValidation(q.field, q.field+" cannot be negative")
		}
		if q.value > types.MaxQuantity {
			return apperror.NewFieldValidation(q.field, fmt.Sprintf("%s cannot exceed %d kg", q.field, types.MaxKg))
		}
	}

	if rec.PaddyType != "" {
		canonical, ok := s.catalog.CanonicalType(ledger.FamilyPaddy, rec.PaddyType)
		if !ok {
			return apperror.NewFieldValidation("paddyType", fmt.Sprintf("unknown paddy type %q", rec.PaddyType)).
				WithDetail("allowed", s.catalog.PaddyTypes)
		}
		rec.PaddyType = canonical
	}
	if rec.RiceType != "" {
		canonical, ok := s.catalog.CanonicalType(ledger.FamilyRice, rec.RiceType)
		if !ok {
			return apperror.NewFieldValidation("riceType", fmt.Sprintf("unknown rice type %q", rec.RiceType)).
				WithDetail("allowed", s.catalog.RiceTypes)
		}
		rec.RiceType = canonical
	}
	if rec.RiceGrade != "" && !s.catalog.HasGrade(rec.RiceGrade) {
		return apperror.NewFieldValidation("riceGrade", fmt.Sprintf("unknown grade %q", rec.RiceGrade)).
			WithDetail("allowed", s.catalog.Grades)
	}
	return nil
}

// resolvePaddyStock checks the referenced lot and fills type and
// warehouse from it when they were left blank. Given values must match it.
func (s *Service) resolvePaddyStock(ctx context.Context, rec *ledger.ThreshingRecord) error {
	lot, err := s.store.FindStock(ctx, rec.PaddyStockID)
	if err != nil {
		return err
	}
	if lot.Family != ledger.FamilyPaddy {
		return apperror.NewFieldValidation("paddyStockId", "threshing must draw from a paddy stock lot")
	}
	if rec.PaddyType == "" {
		rec.PaddyType = lot.Type
	} else if !strings.EqualFold(rec.PaddyType, lot.Type) {
		return apperror.NewFieldValidation("paddyType",
			fmt.Sprintf("paddy type %q does not match stock lot type %q", rec.PaddyType, lot.Type))
	}
	if rec.Warehouse == "" {
		rec.Warehouse = lot.Warehouse
	} else if !strings.EqualFold(rec.Warehouse, lot.Warehouse) {
		return apperror.NewFieldValidation("warehouse",
			fmt.Sprintf("warehouse %q does not match stock lot warehouse %q", rec.Warehouse, lot.Warehouse))
	}
	return nil
}
