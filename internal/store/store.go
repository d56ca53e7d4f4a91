// Package store provides the catalog storage backends: a JSON file and a gorm table.
package store

import (
	"fmt"

	"catalog-service/internal/catalog"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
)

var (
	_ catalog.Store = (*FileStore)(nil)
	_ catalog.Store = (*GormStore)(nil)
)

// New builds the store selected by cfg.Storage.Driver
func New(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		return NewFileStore(cfg.Storage.Path), nil
	case config.DriverPostgres, config.DriverSQLite:
		if err := database.InitDB(cfg); err != nil {
			return nil, err
		}
		return NewGormStore(database.GetDB())
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}
