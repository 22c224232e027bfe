package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

func TestQueryService_SQLiteLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t))

	res := svc.Execute(ctx, profile, "CREATE TABLE t (id INTEGER)")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, int64(0), res.RowCount)
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.Rows)

	res = svc.Execute(ctx, profile, "INSERT INTO t VALUES (1)")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, int64(1), res.RowCount)
	assert.Equal(t, "executed, affected 1 rows", res.Message)

	res = svc.Execute(ctx, profile, "SELECT id FROM t;")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"id"}, res.Columns)
	assert.Equal(t, [][]any{{int64(1)}}, res.Rows)
	assert.Equal(t, int64(1), res.RowCount)
	assert.Equal(t, "query succeeded, returned 1 rows", res.Message)
	assert.GreaterOrEqual(t, res.ExecutionTime, 0.0)
}

func TestQueryService_EmptyResultKeepsColumns(t *testing.T) {
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t, "CREATE TABLE t (id INTEGER, name TEXT)"))

	res := svc.Execute(context.Background(), profile, "SELECT id, name FROM t WHERE 1 = 0")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"id", "name"}, res.Columns)
	assert.Empty(t, res.Rows)
	assert.Equal(t, int64(0), res.RowCount)
}

func TestQueryService_RowReturningPrefixWithoutResultSetIsCommitted(t *testing.T) {
	ctx := context.Background()
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t, "CREATE TABLE t (x INTEGER)"))

	res := svc.Execute(ctx, profile, "WITH v(x) AS (SELECT 2) INSERT INTO t SELECT x FROM v")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, int64(1), res.RowCount)
	assert.Empty(t, res.Columns)

	res = svc.Execute(ctx, profile, "SELECT x FROM t")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, [][]any{{int64(2)}}, res.Rows)
}

func TestQueryService_PragmaAssignment(t *testing.T) {
	ctx := context.Background()
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t))

	res := svc.Execute(ctx, profile, "PRAGMA user_version = 5")
	require.True(t, res.Success, res.Message)

	res = svc.Execute(ctx, profile, "PRAGMA user_version")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, [][]any{{int64(5)}}, res.Rows)
}

func TestQueryService_ValueNormalization(t *testing.T) {
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t))

	res := svc.Execute(context.Background(), profile, "SELECT 1.5, 'a', NULL, x'00ff'")
	require.True(t, res.Success, res.Message)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, []any{1.5, "a", nil, "0x00ff"}, res.Rows[0])
	assert.Len(t, res.Columns, 4)
}

func TestQueryService_Failures(t *testing.T) {
	dbFile := newSQLiteFile(t)

	tests := []struct {
		name       string
		profile    *models.ConnectionProfile
		sql        string
		wantPrefix string
	}{
		{
			name:       "unknown table",
			profile:    sqliteProfile(dbFile),
			sql:        "SELECT * FROM missing",
			wantPrefix: "SQL execution failed: ",
		},
		{
			name:       "syntax error in mutation",
			profile:    sqliteProfile(dbFile),
			sql:        "INSERT INTO",
			wantPrefix: "SQL execution failed: ",
		},
		{
			name: "mysql without host",
			profile: &models.ConnectionProfile{
				ID: "db_x", DBType: "mysql", Database: strPtr("shop"), Username: strPtr("root"),
			},
			sql:        "SELECT 1",
			wantPrefix: "connection string build failed: ",
		},
		{
			name: "unknown dialect with raw string",
			profile: &models.ConnectionProfile{
				ID: "db_x", DBType: "oracle", ConnectionString: strPtr("oracle://scott:tiger@db/orcl"),
			},
			sql:        "SELECT 1 FROM dual",
			wantPrefix: "cannot create engine: unsupported database type: oracle",
		},
		{
			name:       "two statements",
			profile:    sqliteProfile(dbFile),
			sql:        "SELECT 1; SELECT 2",
			wantPrefix: "execution failed: multiple SQL statements",
		},
		{
			name:       "blank statement",
			profile:    sqliteProfile(dbFile),
			sql:        "   ",
			wantPrefix: "execution failed: ",
		},
	}

	svc := newTestQueryService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Execute(context.Background(), tt.profile, tt.sql)
			assert.False(t, res.Success)
			assert.NotEmpty(t, res.Error)
			assert.True(t, strings.HasPrefix(res.Message, tt.wantPrefix), res.Message)
		})
	}
}

func TestQueryService_FailedMutationIsRolledBack(t *testing.T) {
	ctx := context.Background()
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t, "CREATE TABLE t (id INTEGER PRIMARY KEY)", "INSERT INTO t VALUES (1)"))

	res := svc.Execute(ctx, profile, "INSERT INTO t VALUES (1)")
	assert.False(t, res.Success)

	res = svc.Execute(ctx, profile, "SELECT COUNT(*) FROM t")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, [][]any{{int64(1)}}, res.Rows)
}

func TestQueryService_SQLiteStatementsOutsideTransaction(t *testing.T) {
	ctx := context.Background()
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t, "CREATE TABLE t (id INTEGER)"))

	res := svc.Execute(ctx, profile, "VACUUM")
	require.True(t, res.Success, res.Message)

	res = svc.Execute(ctx, profile, "PRAGMA journal_mode=WAL")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, [][]any{{"wal"}}, res.Rows)

	res = svc.Execute(ctx, profile, "PRAGMA journal_mode")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, [][]any{{"wal"}}, res.Rows)
}

func TestQueryService_SQLitePathWithQueryCharacter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a?b.db")

	res := newTestQueryService().Execute(context.Background(), sqliteProfile(path), "CREATE TABLE t (id INTEGER)")
	require.True(t, res.Success, res.Message)

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "a"))
	assert.True(t, os.IsNotExist(err))
}

func TestQueryService_SingleStatementEdgeCases(t *testing.T) {
	svc := newTestQueryService()
	profile := sqliteProfile(newSQLiteFile(t))

	tests := []struct {
		name string
		sql  string
		want [][]any
	}{
		{"backslash before closing quote", `SELECT 'C:\' AS a, 'x;y' AS b`, [][]any{{`C:\`, "x;y"}}},
		{"comment after trailing semicolon", "SELECT 1; -- done", [][]any{{int64(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Execute(context.Background(), profile, tt.sql)
			require.True(t, res.Success, res.Message)
			assert.Equal(t, tt.want, res.Rows)
		})
	}
}
