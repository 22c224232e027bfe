package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

func newTestSchemaService() SchemaService {
	return NewSchemaService(testFactory(), 5*time.Second, zap.NewNop())
}

func TestSchemaService_SQLite(t *testing.T) {
	ctx := context.Background()
	svc := newTestSchemaService()
	path := newSQLiteFile(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL, nickname TEXT DEFAULT 'anon')",
		"CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER)",
	)
	profile := sqliteProfile(path)

	dbs, err := svc.ListDatabases(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, dbs)

	tables, err := svc.ListTables(ctx, profile, "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, tables)

	ts, err := svc.DescribeTable(ctx, profile, "", "", "users")
	require.NoError(t, err)
	assert.Equal(t, "users", ts.Table)
	require.NotNil(t, ts.Database)
	assert.Equal(t, path, *ts.Database)
	assert.Nil(t, ts.Schema)
	require.Len(t, ts.Columns, 3)

	assert.Equal(t, "id", ts.Columns[0].Field)
	assert.Equal(t, "PRI", ts.Columns[0].Key)
	assert.Equal(t, "email", ts.Columns[1].Field)
	assert.Equal(t, "TEXT", ts.Columns[1].Type)
	assert.False(t, ts.Columns[1].Nullable)
	require.NotNil(t, ts.Columns[2].Default)
	assert.Equal(t, "'anon'", *ts.Columns[2].Default)
	assert.True(t, ts.Columns[2].Nullable)
}

func TestSchemaService_EmptyDatabase(t *testing.T) {
	svc := newTestSchemaService()
	profile := sqliteProfile(newSQLiteFile(t))

	tables, err := svc.ListTables(context.Background(), profile, "", "")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)

	ts, err := svc.DescribeTable(context.Background(), profile, "main", "", "missing")
	require.NoError(t, err)
	assert.Empty(t, ts.Columns)
	require.NotNil(t, ts.Database)
	assert.Equal(t, "main", *ts.Database)
}

func TestSchemaService_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestSchemaService()

	oracle := &models.ConnectionProfile{ID: "db_o", DBType: "oracle", ConnectionString: strPtr("oracle://db/orcl")}
	_, err := svc.ListDatabases(ctx, oracle)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDialect)
	_, err = svc.ListTables(ctx, oracle, "", "")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDialect)

	_, err = svc.DescribeTable(ctx, sqliteProfile(newSQLiteFile(t)), "", "", "  ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

// uriRecorder is a server dialect that records the URIs it is asked to open.
type uriRecorder struct {
	mu     sync.Mutex
	opened []string
}

const recorderType = "urirecorder"

var recorder = &uriRecorder{}

func init() { datasource.Register(recorder) }

func (r *uriRecorder) Info() datasource.DialectInfo {
	return datasource.DialectInfo{Type: recorderType, DisplayName: "Recorder", DefaultPort: 1}
}

func (r *uriRecorder) BuildURI(p datasource.ConnectionParams) (string, error) {
	return recorderType + "://" + p.Host + "/" + p.Database, nil
}

func (r *uriRecorder) Validate(datasource.ConnectionParams) error { return nil }

func (r *uriRecorder) Open(_ context.Context, uri string, _ time.Duration) (datasource.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, uri)
	return nopSession{}, nil
}

func (r *uriRecorder) ListDatabases(context.Context, datasource.Session, datasource.ConnectionParams) ([]string, error) {
	return nil, nil
}

func (r *uriRecorder) ListTables(context.Context, datasource.Session, string, string) ([]string, error) {
	return nil, nil
}

func (r *uriRecorder) DescribeTable(context.Context, datasource.Session, string, string, string) ([]datasource.ColumnDescriptor, error) {
	return nil, nil
}

func (r *uriRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.opened
	r.opened = nil
	return out
}

type nopSession struct{}

func (nopSession) Query(context.Context, string, ...any) (*datasource.RowSet, error) {
	return nil, datasource.ErrNoResultSet
}
func (nopSession) Exec(context.Context, string, ...any) (int64, error) { return 0, nil }
func (nopSession) LastAffected(context.Context) (int64, error)         { return 0, nil }
func (nopSession) Commit(context.Context) error                        { return nil }
func (nopSession) Close() error                                        { return nil }

func TestSchemaService_RequestedDatabaseSelectsConnection(t *testing.T) {
	ctx := context.Background()
	svc := NewSchemaService(datasource.NewDialectFactory([]string{recorderType}), time.Second, zap.NewNop())
	profile := &models.ConnectionProfile{ID: "db_r", DBType: recorderType, Host: strPtr("h"), Database: strPtr("appdb")}
	recorder.take()

	_, err := svc.ListTables(ctx, profile, "otherdb", "")
	require.NoError(t, err)
	ts, err := svc.DescribeTable(ctx, profile, "otherdb", "", "t")
	require.NoError(t, err)
	assert.Equal(t, "otherdb", *ts.Database)
	_, err = svc.ListTables(ctx, profile, "", "")
	require.NoError(t, err)
	_, err = svc.ListDatabases(ctx, profile)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"urirecorder://h/otherdb",
		"urirecorder://h/otherdb",
		"urirecorder://h/appdb",
		"urirecorder://h/appdb",
	}, recorder.take())
}
