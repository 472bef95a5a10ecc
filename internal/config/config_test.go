package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("LEDGER_ENFORCE_STOCK_CAP", "")
	t.Setenv("CATALOG_FILE", "")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.Ledger.EnforceStockCap)
	assert.False(t, cfg.Ledger.LinkThreshing)
	assert.Contains(t, cfg.Ledger.Catalog.PaddyTypes, "Nadu")
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STORAGE_DRIVER=file\nDATA_DIR="+dir+"\nLEDGER_LINK_THRESHING=true\nTIMEZONE=UTC\n"), 0o600))

	// godotenv does not override variables that are already set.
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("LEDGER_LINK_THRESHING", "")
	os.Unsetenv("STORAGE_DRIVER")
	os.Unsetenv("LEDGER_LINK_THRESHING")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("TIMEZONE")
	t.Cleanup(func() {
		os.Unsetenv("DATA_DIR")
		os.Unsetenv("TIMEZONE")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, dir, cfg.Storage.DataDir)
	assert.True(t, cfg.Ledger.LinkThreshing)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: DriverMemory},
			Scheduler: SchedulerConfig{Enabled: true, LowStockCron: "0 8 * * *", Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"no port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = DriverPostgres }, "DATABASE_URL"},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = DriverMongo }, "MONGODB_URI"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "STORAGE_DRIVER"},
		{"no cron", func(c *Config) { c.Scheduler.LowStockCron = "" }, "LOW_STOCK_CRON"},
		{"bad zone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"bad zone with scheduler off", func(c *Config) {
			c.Scheduler.Enabled = false
			c.Scheduler.Timezone = "Mars/Olympus"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("riceTypes: [Nadu, Samba]\ngrades: [A, B]\n"), 0o600))

	cat, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Nadu", "Samba"}, cat.RiceTypes)
	assert.Equal(t, []string{"A", "B"}, cat.Grades)
	assert.NotEmpty(t, cat.PaddyTypes, "missing lists keep defaults")
	assert.Contains(t, cat.Units, "kg")
}

func TestLoadCatalogBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("riceTypes: [unclosed\n"), 0o600))

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}
