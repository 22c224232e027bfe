package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const probeTimeout = 5 * time.Second

// Dialect implements datasource.Dialect for SQLite files.
type Dialect struct{}

// Info implements datasource.Dialect.
func (Dialect) Info() datasource.DialectInfo {
	return datasource.DialectInfo{
		Type:        datasource.TypeSQLite,
		DisplayName: "SQLite",
		FileBased:   true,
	}
}

// BuildURI implements datasource.Dialect.
// A raw connection string is normalized to an absolute sqlite:/// URI when its
// path resolves and returned untouched otherwise.
func (Dialect) BuildURI(params datasource.ConnectionParams) (string, error) {
	if params.ConnectionString != "" {
		abs, err := ResolvePath(StripPrefix(params.ConnectionString))
		if err != nil {
			return params.ConnectionString, nil
		}
		return URIPrefix + abs, nil
	}

	if params.Database == "" {
		return MemoryURI, nil
	}
	abs, err := ResolvePath(StripPrefix(params.Database))
	if err != nil {
		return "", &datasource.ConfigurationError{Msg: "invalid SQLite file path: " + err.Error(), Err: err}
	}
	return URIPrefix + abs, nil
}

// Validate implements datasource.Dialect. The file must exist, be a regular
// readable file and answer a catalog query.
func (Dialect) Validate(params datasource.ConnectionParams) error {
	raw := params.Database
	if raw == "" {
		raw = params.ConnectionString
	}
	if raw == "" {
		return datasource.Invalid("SQLite database file path is required")
	}

	path, err := ResolvePath(StripPrefix(raw))
	if err != nil {
		return datasource.Invalid("invalid SQLite file path: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return datasource.Invalid("database file does not exist: %s", path)
		}
		return datasource.Invalid("cannot access database file: %v", err)
	}
	if !info.Mode().IsRegular() {
		return datasource.Invalid("path is not a file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return datasource.Invalid("database file is not readable: %s", path)
	}
	_ = f.Close()

	if err := probe(path); err != nil {
		return datasource.Invalid("invalid SQLite database file: %v", err)
	}
	return nil
}

func probe(path string) error {
	db, err := sql.Open(DriverName, driverDSN(URIPrefix+path))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' LIMIT 1").Scan(&name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return nil
}

// Open implements datasource.Dialect. The timeout is ignored; opening a file is local.
func (Dialect) Open(ctx context.Context, uri string, _ time.Duration) (datasource.Session, error) {
	return datasource.OpenSQLSession(ctx, datasource.SQLSessionOptions{
		DriverName:        DriverName,
		DSN:               driverDSN(uri),
		AffectedRowsQuery: "SELECT changes()",
		DeferTransaction:  true,
	})
}

var _ datasource.Dialect = Dialect{}
