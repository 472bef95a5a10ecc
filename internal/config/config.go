// Package config loads service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"ricemill/internal/domain/ledger"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Storage   StorageConfig
	Ledger    LedgerConfig
	Scheduler SchedulerConfig
	Alerts    AlertsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig selects level and encoder.
type LogConfig struct {
	Level       string
	Development bool
}

// StorageConfig selects and addresses the record store backend.
type StorageConfig struct {
	Driver      string
	DataDir     string
	DatabaseURL string
	MongoURI    string
	MongoDBName string
}

// LedgerConfig holds business switches.
type LedgerConfig struct {
	// EnforceStockCap rejects sales larger than the stock on hand.
	EnforceStockCap bool
	// LinkThreshing moves stock when threshing is recorded.
	LinkThreshing bool
	CatalogFile   string
	Catalog       ledger.Catalog
}

// SchedulerConfig holds the low-stock sweep settings.
type SchedulerConfig struct {
	Enabled      bool
	LowStockCron string
	Timezone     string
}

// AlertsConfig holds the outbound webhook used for low-stock alerts.
type AlertsConfig struct {
	WebhookURL string
	Timeout    time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getenvWithDefault("APP_PORT", "8080"),
			ReadTimeout:     getenvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getenvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getenvDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:       getenvWithDefault("LOG_LEVEL", "info"),
			Development: getenvWithDefault("APP_ENV", "development") == "development",
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getenvWithDefault("STORAGE_DRIVER", DriverMemory)),
			DataDir:     getenvWithDefault("DATA_DIR", "./data"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			MongoURI:    os.Getenv("MONGODB_URI"),
			MongoDBName: getenvWithDefault("MONGODB_DB_NAME", "ricemill"),
		},
		Ledger: LedgerConfig{
			EnforceStockCap: getenvBool("LEDGER_ENFORCE_STOCK_CAP", true),
			LinkThreshing:   getenvBool("LEDGER_LINK_THRESHING", false),
			CatalogFile:     os.Getenv("CATALOG_FILE"),
		},
		Scheduler: SchedulerConfig{
			Enabled:      getenvBool("SCHEDULER_ENABLED", true),
			LowStockCron: getenvWithDefault("LOW_STOCK_CRON", "0 8 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Colombo"),
		},
		Alerts: AlertsConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
			Timeout:    getenvDuration("ALERT_TIMEOUT", 10*time.Second),
		},
	}

	cfg.Ledger.Catalog = ledger.DefaultCatalog()
	if cfg.Ledger.CatalogFile != "" {
		cat, err := LoadCatalog(cfg.Ledger.CatalogFile)
		if err != nil {
			return nil, err
		}
		cfg.Ledger.Catalog = cat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Storage.DataDir == "" {
			return errors.New("DATA_DIR must be provided for the file driver")
		}
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be provided for the postgres driver")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo driver")
		}
		if c.Storage.MongoDBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER %q is not one of memory, file, postgres, mongo", c.Storage.Driver)
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.LowStockCron == "" {
			return errors.New("LOW_STOCK_CRON must be provided when the scheduler is enabled")
		}
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("TIMEZONE %q: %w", c.Scheduler.Timezone, err)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
