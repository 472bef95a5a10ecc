// Package app assembles the ledger services over one record store.
package app

import (
	"context"
	"fmt"

	"ricemill/internal/config"
	"ricemill/internal/domain/audit"
	"ricemill/internal/domain/reports"
	"ricemill/internal/domain/sales"
	"ricemill/internal/domain/stock"
	"ricemill/internal/domain/store"
	"ricemill/internal/domain/threshing"
	"ricemill/internal/infrastructure/storage"
	"ricemill/pkg/logger"
)

// Services are the ledger operations sharing one store.
type Services struct {
	Store     *store.Store
	Audit     *audit.Recorder
	Stocks    *stock.Service
	Sales     *sales.Service
	Threshing *threshing.Service
	Reports   *reports.Service
}

// NewServices wires the services. With LinkThreshing set, every threshing
// run also moves paddy and rice stock in the same transaction.
func NewServices(s *store.Store, cfg config.LedgerConfig) (*Services, error) {
	recorder, err := audit.NewRecorder(s)
	if err != nil {
		return nil, fmt.Errorf("create audit recorder: %w", err)
	}

	catalog := cfg.Catalog.WithDefaults()
	stocks := stock.NewService(s, catalog, recorder)

	var opts []threshing.Option
	if cfg.LinkThreshing {
		opts = append(opts, threshing.WithStockLinker(threshing.NewStockMover(stocks)))
	}

	return &Services{
		Store:     s,
		Audit:     recorder,
		Stocks:    stocks,
		Sales:     sales.NewService(s, stocks, recorder, sales.Config{EnforceStockCap: cfg.EnforceStockCap}),
		Threshing: threshing.NewService(s, catalog, recorder, opts...),
		Reports:   reports.NewService(s),
	}, nil
}

// App is an opened store with its services.
type App struct {
	*Services
	close storage.CloseFunc
}

// Open connects the configured backend and wires the services.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	s, closeFn, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	svc, err := NewServices(s, cfg.Ledger)
	if err != nil {
		_ = closeFn(ctx)
		return nil, err
	}

	logger.Info(ctx, "ledger services ready",
		"driver", cfg.Storage.Driver,
		"enforce_stock_cap", cfg.Ledger.EnforceStockCap,
		"link_threshing", cfg.Ledger.LinkThreshing,
	)
	return &App{Services: svc, close: closeFn}, nil
}

// Close releases the backend.
func (a *App) Close(ctx context.Context) error {
	if a.close == nil {
		return nil
	}
	return a.close(ctx)
}
