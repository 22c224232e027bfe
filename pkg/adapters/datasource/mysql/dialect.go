package mysql

import (
	"context"
	"time"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// Dialect implements datasource.Dialect for MySQL and MariaDB servers.
type Dialect struct{}

// Info implements datasource.Dialect.
func (Dialect) Info() datasource.DialectInfo {
	return datasource.DialectInfo{
		Type:        datasource.TypeMySQL,
		DisplayName: "MySQL",
		DefaultPort: DefaultPort,
	}
}

// BuildURI implements datasource.Dialect.
func (Dialect) BuildURI(params datasource.ConnectionParams) (string, error) {
	return datasource.BuildNetworkURI("mysql", "MySQL", DefaultPort, params)
}

// Validate implements datasource.Dialect.
func (Dialect) Validate(params datasource.ConnectionParams) error {
	return datasource.ValidateNetworkParams(params)
}

// Open implements datasource.Dialect.
func (Dialect) Open(ctx context.Context, uri string, timeout time.Duration) (datasource.Session, error) {
	dsn, err := DriverDSN(uri, timeout)
	if err != nil {
		return nil, err
	}
	return datasource.OpenSQLSession(ctx, datasource.SQLSessionOptions{
		DriverName:        "mysql",
		DSN:               dsn,
		ConnectTimeout:    timeout,
		AffectedRowsQuery: "SELECT ROW_COUNT()",
	})
}

var _ datasource.Dialect = Dialect{}
