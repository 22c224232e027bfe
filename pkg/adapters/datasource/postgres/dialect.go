package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// Dialect implements datasource.Dialect for PostgreSQL using pgx directly.
type Dialect struct{}

// Info implements datasource.Dialect.
func (Dialect) Info() datasource.DialectInfo {
	return datasource.DialectInfo{
		Type:        datasource.TypePostgreSQL,
		DisplayName: "PostgreSQL",
		DefaultPort: DefaultPort,
	}
}

// BuildURI implements datasource.Dialect.
func (Dialect) BuildURI(params datasource.ConnectionParams) (string, error) {
	return datasource.BuildNetworkURI("postgresql", "PostgreSQL", DefaultPort, params)
}

// Validate implements datasource.Dialect.
func (Dialect) Validate(params datasource.ConnectionParams) error {
	return datasource.ValidateNetworkParams(params)
}

// Open implements datasource.Dialect. The connection starts a transaction
// immediately; it is rolled back on Close unless committed.
func (Dialect) Open(ctx context.Context, uri string, timeout time.Duration) (datasource.Session, error) {
	cfg, err := ParseConfig(uri, timeout)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		_ = conn.Close(context.Background())
		return nil, err
	}
	return &session{conn: conn, tx: tx}, nil
}

var _ datasource.Dialect = Dialect{}
