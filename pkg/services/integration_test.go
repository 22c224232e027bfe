package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/testhelpers"
)

func serverProfile(s *testhelpers.TestServer) *models.ConnectionProfile {
	p := s.Params()
	return &models.ConnectionProfile{
		ID:       "db_" + s.DBType,
		Name:     s.DBType,
		DBType:   p.DBType,
		Host:     &p.Host,
		Port:     p.Port,
		Database: &p.Database,
		Username: &p.Username,
		Password: p.Password,
	}
}

func TestServers_EndToEnd(t *testing.T) {
	servers := map[string]func(*testing.T) *testhelpers.TestServer{
		"mysql":      testhelpers.GetMySQL,
		"postgresql": testhelpers.GetPostgres,
	}

	for name, get := range servers {
		t.Run(name, func(t *testing.T) {
			server := get(t)
			ctx := context.Background()
			profile := serverProfile(server)
			table := "e2e_" + name

			ok, msg := newTestTester().Test(ctx, server.Params())
			require.True(t, ok, msg)
			assert.Equal(t, MsgConnectionSucceeded, msg)

			queries := newTestQueryService()
			res := queries.Execute(ctx, profile, fmt.Sprintf("CREATE TABLE %s (id INTEGER NOT NULL, label VARCHAR(20))", table))
			require.True(t, res.Success, res.Message)

			res = queries.Execute(ctx, profile, fmt.Sprintf("INSERT INTO %s VALUES (1, 'one'), (2, NULL)", table))
			require.True(t, res.Success, res.Message)
			assert.Equal(t, int64(2), res.RowCount)

			res = queries.Execute(ctx, profile, fmt.Sprintf("SELECT id, label FROM %s ORDER BY id", table))
			require.True(t, res.Success, res.Message)
			assert.Equal(t, []string{"id", "label"}, res.Columns)
			assert.Equal(t, [][]any{{int64(1), "one"}, {int64(2), nil}}, res.Rows)

			schema := newTestSchemaService()
			dbs, err := schema.ListDatabases(ctx, profile)
			require.NoError(t, err)
			assert.Contains(t, dbs, server.Database)

			tables, err := schema.ListTables(ctx, profile, server.Database, "")
			require.NoError(t, err)
			assert.Contains(t, tables, table)

			ts, err := schema.DescribeTable(ctx, profile, server.Database, "", table)
			require.NoError(t, err)
			require.Len(t, ts.Columns, 2)
			assert.Equal(t, "id", ts.Columns[0].Field)
			assert.False(t, ts.Columns[0].Nullable)
			assert.True(t, ts.Columns[1].Nullable)

			res = queries.Execute(ctx, profile, "DROP TABLE "+table)
			require.True(t, res.Success, res.Message)
		})
	}
}

func TestServers_WrongPassword(t *testing.T) {
	server := testhelpers.GetPostgres(t)
	params := server.Params()
	wrong := "not-the-password"
	params.Password = &wrong

	ok, msg := newTestTester().Test(context.Background(), params)
	assert.False(t, ok)
	assert.Equal(t, "connection failed: wrong username or password", msg)
}
