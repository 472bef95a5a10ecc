package threshing

import (
	"context"

	"ricemill/internal/core/types"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/stock"
)

// ThreshingCustomer is the customer recorded on rice lots produced by
// threshing.
const ThreshingCustomer = "Threshing"

// StockLedger is the part of the stock ledger the linker needs.
type StockLedger interface {
	AdjustQuantity(ctx context.Context, stockID string, delta types.Quantity, enforceCap bool) (ledger.StockRecord, error)
	AddStock(ctx context.Context, in stock.AddInput) (ledger.StockRecord, error)
}

// StockMover is the bundled StockLinker. It draws the paddy input from the
// referenced paddy lot and credits the rice output as a new rice lot.
type StockMover struct {
	stocks StockLedger
}

var _ StockLinker = (*StockMover)(nil)

// NewStockMover creates a linker backed by the stock ledger.
func NewStockMover(stocks StockLedger) *StockMover {
	return &StockMover{stocks: stocks}
}

// LinkThreshing implements StockLinker.
func (m *StockMover) LinkThreshing(ctx context.Context, rec ledger.ThreshingRecord) error {
	if rec.PaddyStockID != "" && rec.PaddyQuantity.IsPositive() {
		if _, err := m.stocks.AdjustQuantity(ctx, rec.PaddyStockID, -rec.PaddyQuantity, true); err != nil {
			return err
		}
	}

	if rec.RiceType == "" || !rec.RiceQuantity.IsPositive() {
		return nil
	}

	q := rec.RiceQuantity
	date := rec.Date
	_, err := m.stocks.AddStock(ctx, stock.AddInput{
		Family:    ledger.FamilyRice,
		Type:      rec.RiceType,
		Quantity:  &q,
		Warehouse: rec.Warehouse,
		Grade:     rec.RiceGrade,
		Customer:  ThreshingCustomer,
		Date:      &date,
	})
	return err
}
