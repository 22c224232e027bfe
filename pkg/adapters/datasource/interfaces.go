package datasource

import (
	"context"
	"time"
)

// Dialect tokens known to the system. Anything else is treated as "other".
const (
	TypeSQLite     = "sqlite"
	TypeMySQL      = "mysql"
	TypePostgreSQL = "postgresql"
	TypeSQLServer  = "sqlserver"
)

// ConnectionParams are the raw connection inputs supplied by a stored profile or a test request.
// Empty strings mean "absent". Password is a pointer because an empty password is valid
// while a missing one is not.
type ConnectionParams struct {
	DBType           string
	Host             string
	Port             *int
	Database         string
	Username         string
	Password         *string
	ConnectionString string
}

// PortOr returns the configured port, or def when the port is unset or zero.
func (p ConnectionParams) PortOr(def int) int {
	if p.Port == nil || *p.Port == 0 {
		return def
	}
	return *p.Port
}

// PasswordOrEmpty returns the password, treating an absent password as empty.
func (p ConnectionParams) PasswordOrEmpty() string {
	if p.Password == nil {
		return ""
	}
	return *p.Password
}

// DialectInfo describes a registered dialect for UI discovery.
type DialectInfo struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
	DefaultPort int    `json:"default_port,omitempty"`
	FileBased   bool   `json:"file_based"`
}

// Dialect is one database engine. Each implementation owns the connection-string shape,
// the pre-flight checks and the catalog queries for its engine.
type Dialect interface {
	Info() DialectInfo

	// BuildURI returns the dialect-correct connection URI.
	// Fails with *ConfigurationError when required fields are missing.
	BuildURI(params ConnectionParams) (string, error)

	// Validate performs pre-flight checks. Returns *ValidationError on failure.
	Validate(params ConnectionParams) error

	// Open connects using uri. timeout bounds connection establishment only;
	// zero means no explicit timeout.
	Open(ctx context.Context, uri string, timeout time.Duration) (Session, error)

	// ListDatabases enumerates databases visible to the session.
	ListDatabases(ctx context.Context, s Session, params ConnectionParams) ([]string, error)

	// ListTables enumerates base tables of database (or schema where applicable).
	ListTables(ctx context.Context, s Session, database, schema string) ([]string, error)

	// DescribeTable returns the column metadata of a table.
	DescribeTable(ctx context.Context, s Session, database, schema, table string) ([]ColumnDescriptor, error)
}

// Session is a single connection scoped to one request. Statements run inside an
// implicit transaction that is rolled back by Close unless Commit was called.
// SQLite sessions begin that transaction lazily, before the first DML statement.
type Session interface {
	// Query executes stmt and fetches every row. It returns ErrNoResultSet when the
	// statement executed but produced no result set to fetch.
	Query(ctx context.Context, stmt string, args ...any) (*RowSet, error)

	// Exec executes stmt and returns the affected row count.
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)

	// LastAffected reports the rows changed by the most recent statement.
	LastAffected(ctx context.Context) (int64, error)

	// Commit commits the implicit transaction.
	Commit(ctx context.Context) error

	// Close releases the connection. Safe to call more than once.
	Close() error
}

// RowSet is a fully fetched result set with raw driver values.
type RowSet struct {
	Columns     []string
	ColumnTypes []string
	Rows        [][]any
}

// TypeOf returns the database type name of column i, or "" when unknown.
func (r *RowSet) TypeOf(i int) string {
	if i < 0 || i >= len(r.ColumnTypes) {
		return ""
	}
	return r.ColumnTypes[i]
}

// ColumnDescriptor is the uniform column shape returned by DescribeTable.
type ColumnDescriptor struct {
	Field    string  `json:"field"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
	Comment  string  `json:"comment"`
	Key      string  `json:"key"`
	Extra    string  `json:"extra"`
}
