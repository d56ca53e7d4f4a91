package database

import (
	"catalog-service/pkg/config"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// InitDB opens the database selected by the storage driver and applies pool settings
func InitDB(cfg *config.Config) error {
	logLevel := logger.Info
	if cfg.Server.Env != "development" {
		logLevel = logger.Error
	}
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	}

	var dialector gorm.Dialector
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DB.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.DB.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	default:
		return fmt.Errorf("storage driver %q does not use a database", cfg.Storage.Driver)
	}

	conn, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	if cfg.Storage.Driver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	db = conn
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return db
}

// Close releases the underlying connection pool, if one was opened
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
