// Package storage wires the configured backend into the shared Record Store.
package storage

import (
	"context"
	"fmt"

	"ricemill/internal/config"
	"ricemill/internal/domain/store"
	"ricemill/internal/infrastructure/storage/file"
	"ricemill/internal/infrastructure/storage/memory"
	"ricemill/internal/infrastructure/storage/mongodb"
	"ricemill/internal/infrastructure/storage/postgres"
	"ricemill/internal/infrastructure/storage/staged"
	"ricemill/pkg/logger"
)

// CloseFunc releases the resources held by an opened store.
type CloseFunc func(ctx context.Context) error

func noopClose(context.Context) error { return nil }

// Open builds the Record Store for the configured driver.
func Open(ctx context.Context, cfg config.StorageConfig) (*store.Store, CloseFunc, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		b := staged.Wrap(memory.New())
		logger.Info(ctx, "record store ready", "driver", config.DriverMemory)
		return store.New(b, b), noopClose, nil

	case config.DriverFile:
		fb, err := file.New(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		b := staged.Wrap(fb)
		logger.Info(ctx, "record store ready", "driver", config.DriverFile, "dir", cfg.DataDir)
		return store.New(b, b), noopClose, nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		txm := postgres.NewTxManager(pool)
		repo := postgres.NewCollectionRepo(txm)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info(ctx, "record store ready", "driver", config.DriverPostgres)
		return store.New(repo, txm), func(context.Context) error {
			pool.Close()
			return nil
		}, nil

	case config.DriverMongo:
		mb, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		logger.Info(ctx, "record store ready", "driver", config.DriverMongo, "database", cfg.MongoDBName)
		return store.New(mb, mb), mb.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
