package services

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/all"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

var testDialects = []string{"sqlite", "mysql", "postgresql"}

func testFactory() datasource.DialectFactory {
	return datasource.NewDialectFactory(testDialects)
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

// newSQLiteFile creates an empty, valid SQLite database file.
func newSQLiteFile(t *testing.T, setup ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "t.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	// VACUUM forces the header to be written for an otherwise empty file.
	_, err = db.Exec("VACUUM")
	require.NoError(t, err)
	for _, stmt := range setup {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func sqliteProfile(path string) *models.ConnectionProfile {
	return &models.ConnectionProfile{
		ID:       "db_test",
		Name:     "local",
		DBType:   datasource.TypeSQLite,
		Database: &path,
	}
}

func newTestQueryService() QueryService {
	return NewQueryService(testFactory(), 10*time.Second, zap.NewNop())
}
