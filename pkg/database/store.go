// Package database opens the metadata store holding connection profiles,
// directories and projects.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
	"github.com/TAF-Playground/TAF-DataDev/pkg/retry"
)

// Store is the opened metadata store. Gorm and SQL share one pool.
type Store struct {
	Type string
	SQL  *sql.DB
	Gorm *gorm.DB
}

// Open connects to the store described by cfg. PostgreSQL connections are
// retried while the server is unreachable.
func Open(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (*Store, error) {
	sqlDB, err := openSQL(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var dialector gorm.Dialector
	switch cfg.Type {
	case config.StoreSQLite:
		dialector = sqlite.New(sqlite.Config{Conn: sqlDB})
	case config.StorePostgres:
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(logger)})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	logger.Info("Metadata store opened", zap.String("type", cfg.Type))
	return &Store{Type: cfg.Type, SQL: sqlDB, Gorm: gdb}, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.SQL.Close()
}

// Ping verifies the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.SQL.PingContext(ctx)
}

func openSQL(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (*sql.DB, error) {
	switch cfg.Type {
	case config.StoreSQLite:
		return openSQLite(ctx, cfg.SQLitePath)
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	dsn := "file:" + (&url.URL{Path: filepath.ToSlash(path)}).EscapedPath() +
		"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite store: %w", err)
	}
	return db, nil
}

func openPostgres(ctx context.Context, cfg *config.StoreConfig, logger *zap.Logger) (*sql.DB, error) {
	dsn := cfg.PostgresURL()

	retryCfg := retry.DefaultConfig()
	retryCfg.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn("Metadata store not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.String("error", logging.SanitizeError(err)))
	}

	db, err := retry.DoWithResult(ctx, retryCfg, func() (*sql.DB, error) {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgresql store %s: %s",
			logging.SanitizeConnectionString(dsn), logging.SanitizeError(err))
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen / 2)
	db.SetConnMaxLifetime(time.Hour)
	return db, nil
}
