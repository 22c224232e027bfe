package mssql

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

func ptr[T any](v T) *T { return &v }

func TestBuildURI(t *testing.T) {
	uri, err := Dialect{}.BuildURI(datasource.ConnectionParams{
		Host:     "sql.local",
		Database: "Sales",
		Username: "sa",
		Password: ptr("Pa$$:word"),
	})
	require.NoError(t, err)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "sql.local:1433", u.Host)
	assert.Equal(t, "Sales", u.Query().Get("database"))
	pw, _ := u.User.Password()
	assert.Equal(t, "Pa$$:word", pw)

	_, err = Dialect{}.BuildURI(datasource.ConnectionParams{Host: "sql.local"})
	require.Error(t, err)
	assert.True(t, datasource.IsConfigurationError(err))
}

func TestDriverDSN(t *testing.T) {
	t.Run("database in path is moved to query", func(t *testing.T) {
		dsn, driver, err := DriverDSN("mssql+pyodbc://sa:pw@sql.local:1444/Sales", 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, "sqlserver", driver)

		u, err := url.Parse(dsn)
		require.NoError(t, err)
		assert.Equal(t, "sqlserver", u.Scheme)
		assert.Equal(t, "sql.local:1444", u.Host)
		assert.Equal(t, "Sales", u.Query().Get("database"))
		assert.Equal(t, "5", u.Query().Get("dial timeout"))
		assert.Empty(t, u.Path)
	})

	t.Run("fedauth selects azure driver", func(t *testing.T) {
		_, driver, err := DriverDSN("sqlserver://sql.local?database=Sales&fedauth=ActiveDirectoryDefault", 0)
		require.NoError(t, err)
		assert.Equal(t, "azuresql", driver)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		_, _, err := DriverDSN("mysql://u:p@h/db", 0)
		require.Error(t, err)
		assert.True(t, datasource.IsConfigurationError(err))
	})
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Dialect{}.Validate(datasource.ConnectionParams{Host: "h", Database: "d", Username: "u"}))
	assert.NoError(t, Dialect{}.Validate(datasource.ConnectionParams{ConnectionString: "sqlserver://h?database=d"}))
	assert.EqualError(t, Dialect{}.Validate(datasource.ConnectionParams{Database: "d", Username: "u"}), "host is required")
}

func TestParseSchemaTable(t *testing.T) {
	tests := []struct {
		in         string
		wantSchema string
		wantTable  string
	}{
		{"orders", "dbo", "orders"},
		{"sales.orders", "sales", "orders"},
		{"[sales].[orders]", "sales", "orders"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			schema, table := parseSchemaTable(tt.in, DefaultSchema)
			assert.Equal(t, tt.wantSchema, schema)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}

func TestQuoteName(t *testing.T) {
	assert.Equal(t, "[Sales]", quoteName("Sales"))
	assert.Equal(t, "[we]]ird]", quoteName("we]ird"))
}

// TestIntegration_Catalog runs against a live server configured through
// MSSQL_HOST, MSSQL_USER, MSSQL_PASSWORD and MSSQL_DATABASE.
func TestIntegration_Catalog(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	host := os.Getenv("MSSQL_HOST")
	user := os.Getenv("MSSQL_USER")
	password := os.Getenv("MSSQL_PASSWORD")
	database := os.Getenv("MSSQL_DATABASE")
	if host == "" || user == "" || password == "" || database == "" {
		t.Skip("skipping integration test: MSSQL_HOST, MSSQL_USER, MSSQL_PASSWORD, or MSSQL_DATABASE not set")
	}

	params := datasource.ConnectionParams{Host: host, Database: database, Username: user, Password: &password}
	if p := os.Getenv("MSSQL_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		require.NoError(t, err)
		params.Port = &port
	}

	uri, err := Dialect{}.BuildURI(params)
	require.NoError(t, err)

	ctx := context.Background()
	s, err := Dialect{}.Open(ctx, uri+"&TrustServerCertificate=true", 10*time.Second)
	require.NoError(t, err)
	defer s.Close()

	set, err := s.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), set.Rows[0][0])

	dbs, err := Dialect{}.ListDatabases(ctx, s, params)
	require.NoError(t, err)
	assert.Contains(t, dbs, database)

	_, err = Dialect{}.ListTables(ctx, s, database, "")
	require.NoError(t, err)
}
