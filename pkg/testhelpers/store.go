package testhelpers

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
	"github.com/TAF-Playground/TAF-DataDev/pkg/database"
)

// NewSQLiteStore opens a migrated metadata store in a temp directory.
// The store is closed when the test finishes.
func NewSQLiteStore(t *testing.T) *database.Store {
	t.Helper()

	ctx := context.Background()
	cfg := &config.StoreConfig{
		Type:       config.StoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "meta.db"),
	}

	if err := database.RunMigrations(ctx, cfg, zap.NewNop()); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	store, err := database.Open(ctx, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
