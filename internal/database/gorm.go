package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/octobees/nzwalks/api/internal/config"
	"github.com/octobees/nzwalks/api/internal/entity"
)

// OpenGorm opens a gorm session for the given driver and verifies connectivity.
// The sqlite driver creates the regions table on open since it is only used for
// local runs.
func OpenGorm(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	var dialector gorm.Dialector
	switch driver {
	case config.DriverGorm, config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if driver == config.DriverSQLite {
		if err := db.WithContext(ctx).AutoMigrate(&entity.Region{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("create regions table: %w", err)
		}
	}

	return db, nil
}

// CloseGorm releases the connection pool behind a gorm session.
func CloseGorm(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
