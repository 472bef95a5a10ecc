package reports

import (
	"context"

	"ricemill/internal/domain/ledger"
)

// Repository defines report data access interface.
// *store.Store implements it.
type Repository interface {
	Stocks(ctx context.Context, f ledger.Family) ([]ledger.StockRecord, error)
	AllStocks(ctx context.Context) ([]ledger.StockRecord, error)
	Sales(ctx context.Context, f ledger.Family) ([]ledger.SaleRecord, error)
	AllSales(ctx context.Context) ([]ledger.SaleRecord, error)
	Threshings(ctx context.Context) ([]ledger.ThreshingRecord, error)
}
