// Package scheduler runs periodic ledger jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"ricemill/internal/config"
	appctx "ricemill/internal/core/context"
	"ricemill/internal/domain/ledger"
	"ricemill/internal/domain/reports"
	"ricemill/internal/infrastructure/notify"
	"ricemill/pkg/logger"
)

// LowStockSource lists the lots that need attention.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]ledger.StockRecord, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	stocks   LowStockSource
	notifier notify.Notifier
	cfg      config.SchedulerConfig
	log      *logger.Logger
}

// New creates a scheduler. The cron spec is evaluated in cfg.Timezone.
func New(cfg config.SchedulerConfig, stocks LowStockSource, notifier notify.Notifier, log *logger.Logger) (*Scheduler, error) {
	if log == nil {
		log = logger.Nop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		stocks:   stocks,
		notifier: notifier,
		cfg:      cfg,
		log:      log.WithComponent("scheduler"),
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	s.log.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.LowStockCron, s.sweepLowStock); err != nil {
		return fmt.Errorf("schedule low stock sweep %q: %w", s.cfg.LowStockCron, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sweepLowStock() {
	ctx := appctx.WithTrace(context.Background(), appctx.NewTraceContext("scheduler"))
	ctx = logger.WithLogger(ctx, s.log)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := s.SweepLowStock(ctx); err != nil {
		s.log.Errorw("low stock sweep failed", "error", err)
	}
}

// SweepLowStock collects low and out-of-stock lots, logs each one and
// forwards them to the notifier. It returns the alerts it found.
func (s *Scheduler) SweepLowStock(ctx context.Context) ([]reports.LowStockAlert, error) {
	lots, err := s.stocks.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	alerts := make([]reports.LowStockAlert, 0, len(lots))
	for _, lot := range lots {
		alert := reports.AlertFor(lot)
		alerts = append(alerts, alert)
		s.log.Warnw("stock needs attention",
			"stock_id", alert.StockID,
			"family", alert.Family,
			"type", alert.Type,
			"warehouse", alert.Warehouse,
			"quantity", alert.Quantity.String(),
			"status", alert.Status,
		)
	}

	if len(alerts) == 0 {
		s.log.Info("low stock sweep found nothing")
		return alerts, nil
	}

	if err := s.notifier.NotifyLowStock(ctx, alerts); err != nil {
		return alerts, fmt.Errorf("notify low stock: %w", err)
	}
	s.log.Infow("low stock alerts sent", "count", len(alerts))
	return alerts, nil
}
