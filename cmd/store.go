package cmd

import (
	"fmt"

	"bizlistings/config"
	"bizlistings/storage"
	"bizlistings/utils"
)

// openStore connects the configured backend. It returns a nil store for the
// "none" backend.
func openStore(cfg *config.Config, logger *utils.Logger, runID string) (storage.ListingStore, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		logger.Info("[storage] Connecting to PostgreSQL at %s:%s", cfg.PostgresHost, cfg.PostgresPort)
		pw, err := storage.NewPostgresWriter(cfg.DSN(), runID)
		if err != nil {
			return nil, err
		}
		return pw, nil
	case config.BackendSQLite:
		logger.Info("[storage] Opening SQLite database %s", cfg.SQLitePath)
		sw, err := storage.NewSQLiteWriter(cfg.SQLitePath, runID)
		if err != nil {
			return nil, err
		}
		return sw, nil
	case config.BackendNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %s, %s or %s)",
			cfg.StorageBackend, config.BackendPostgres, config.BackendSQLite, config.BackendNone)
	}
}
