package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/migrations"
	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
)

// RunMigrations applies pending migrations from the embedded migration files.
// It is idempotent and safe to call multiple times - only pending migrations will be executed.
// The migration driver closes its connection when done, so a dedicated one is opened here.
func RunMigrations(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) error {
	db, err := openSQL(ctx, cfg, logger)
	if err != nil {
		return err
	}

	var driver database.Driver
	switch cfg.Type {
	case config.StoreSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case config.StorePostgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	default:
		err = fmt.Errorf("unknown store type %q", cfg.Type)
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Type, driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("Failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			logger.Warn("Failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("No migrations to apply (database up-to-date)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, _ := m.Version()
	logger.Info("Applied migrations successfully", zap.Uint("version", newVersion))
	return nil
}
