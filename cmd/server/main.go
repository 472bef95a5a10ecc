// Package main is the entry point for the rice mill ledger API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ricemill/internal/app"
	"ricemill/internal/config"
	v1 "ricemill/internal/infrastructure/http/v1"
	"ricemill/internal/infrastructure/metrics"
	"ricemill/internal/infrastructure/notify"
	"ricemill/internal/scheduler"
	"ricemill/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting ricemill server", "storage_driver", cfg.Storage.Driver)

	ledger, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open ledger store", "error", err)
	}

	// --- Low stock sweep ---
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(cfg.Scheduler, ledger.Stocks, notify.New(cfg.Alerts), log)
		if err != nil {
			log.Fatalw("failed to create scheduler", "error", err)
		}
		if err := sched.Start(); err != nil {
			log.Fatalw("failed to start scheduler", "error", err)
		}
	}

	// --- HTTP Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:        log,
		Store:         ledger.Store,
		StorageDriver: cfg.Storage.Driver,
		Stocks:        ledger.Stocks,
		Sales:         ledger.Sales,
		Threshing:     ledger.Threshing,
		Reports:       ledger.Reports,
		Audit:         ledger.Audit,
		Metrics:       metrics.New(ledger.Store),
		Debug:         cfg.Log.Development,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if sched != nil {
		sched.Stop()
	}
	if err := ledger.Close(shutdownCtx); err != nil {
		log.Errorw("failed to close ledger store", "error", err)
	}

	log.Info("server stopped")
}
