package database

import (
	"context"
	"fmt"

	"productapi/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Dialector picks the GORM driver for a SQL store.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}
}

// DialGORM returns a DialFunc that opens the database and migrates the
// products table.
func DialGORM(dialector gorm.Dialector) DialFunc[*gorm.DB] {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.WithContext(ctx).AutoMigrate(&models.Product{}); err != nil {
			return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return db, nil
	}
}

// CloseGORM closes the pool underneath a GORM handle.
func CloseGORM(_ context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewGORMManager creates a lazily opened GORM handle manager.
func NewGORMManager(driver, dsn string) (*Manager[*gorm.DB], error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewManager(driver, DialGORM(dialector), CloseGORM), nil
}
