// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"ricemill/internal/domain/audit"
	"ricemill/internal/domain/reports"
	"ricemill/internal/domain/sales"
	"ricemill/internal/domain/stock"
	"ricemill/internal/domain/threshing"
	"ricemill/internal/infrastructure/http/v1/handlers"
	"ricemill/internal/infrastructure/http/v1/middleware"
	"ricemill/internal/infrastructure/metrics"
	"ricemill/pkg/logger"
)

// RouterConfig holds the services the API exposes.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Store backs the readiness probe
	Store handlers.Pinger

	// StorageDriver is reported by /health/info
	StorageDriver string

	Stocks    *stock.Service
	Sales     *sales.Service
	Threshing *threshing.Service
	Reports   *reports.Service
	Audit     *audit.Recorder

	// Metrics adds request instrumentation and /metrics when set
	Metrics *metrics.Metrics

	// Debug keeps gin in debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	// Metrics and Logger wrap ErrorHandler so they see the final status;
	// Recovery sits inside ErrorHandler so a panic still gets a JSON body.
	router.Use(middleware.Trace())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.StorageDriver)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	base := handlers.NewBaseHandler()

	Mount(api, "/stocks", handlers.NewStockHandler(base, cfg.Stocks))
	RegisterCRUDRoutes(api.Group("/sales"), handlers.NewSalesHandler(base, cfg.Sales))
	RegisterCRUDRoutes(api.Group("/threshings"), handlers.NewThreshingHandler(base, cfg.Threshing))

	reportHandler := handlers.NewReportsHandler(base, cfg.Reports)
	Mount(api, "/reports", reportHandler)
	api.GET("/dashboard", reportHandler.Dashboard)
	api.GET("/warehouses/stats", reportHandler.WarehouseStats)

	Mount(api, "/audit", handlers.NewAuditHandler(base, cfg.Audit))

	return router
}
