package mssql

import (
	"context"
	"time"

	_ "github.com/microsoft/go-mssqldb"         // SQL Server driver
	_ "github.com/microsoft/go-mssqldb/azuread" // Azure AD support

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// Dialect implements datasource.Dialect for Microsoft SQL Server.
type Dialect struct{}

// Info implements datasource.Dialect.
func (Dialect) Info() datasource.DialectInfo {
	return datasource.DialectInfo{
		Type:        datasource.TypeSQLServer,
		DisplayName: "SQL Server",
		DefaultPort: DefaultPort,
	}
}

// BuildURI implements datasource.Dialect.
func (Dialect) BuildURI(params datasource.ConnectionParams) (string, error) {
	return buildURI(params)
}

// Validate implements datasource.Dialect. The password may be omitted for
// integrated or Azure AD authentication.
func (Dialect) Validate(params datasource.ConnectionParams) error {
	if params.ConnectionString != "" {
		return nil
	}
	switch {
	case params.Host == "":
		return datasource.Invalid("host is required")
	case params.Database == "":
		return datasource.Invalid("database name is required")
	case params.Username == "":
		return datasource.Invalid("username is required")
	}
	return nil
}

// Open implements datasource.Dialect.
func (Dialect) Open(ctx context.Context, uri string, timeout time.Duration) (datasource.Session, error) {
	dsn, driver, err := DriverDSN(uri, timeout)
	if err != nil {
		return nil, err
	}
	return datasource.OpenSQLSession(ctx, datasource.SQLSessionOptions{
		DriverName:        driver,
		DSN:               dsn,
		ConnectTimeout:    timeout,
		AffectedRowsQuery: "SELECT @@ROWCOUNT",
	})
}

var _ datasource.Dialect = Dialect{}
