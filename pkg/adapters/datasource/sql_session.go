package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLSessionOptions configures OpenSQLSession.
type SQLSessionOptions struct {
	DriverName string
	DSN        string

	// ConnectTimeout bounds connection establishment and the liveness ping.
	ConnectTimeout time.Duration

	// AffectedRowsQuery returns the rows changed by the previous statement on the
	// same connection (e.g. "SELECT changes()"). When empty, LastAffected reports
	// the count of the last Exec.
	AffectedRowsQuery string

	// DeferTransaction leaves the connection in autocommit mode and begins a
	// transaction only before INSERT, UPDATE, DELETE or REPLACE. SQLite refuses
	// VACUUM, ATTACH and some PRAGMA changes inside a transaction.
	DeferTransaction bool
}

type sqlRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLSession is a Session over database/sql holding exactly one connection.
type SQLSession struct {
	db           *sql.DB
	conn         *sql.Conn
	tx           *sql.Tx
	opts         SQLSessionOptions
	lastAffected int64
	closed       bool
}

// OpenSQLSession opens a dedicated connection, pings it and begins the implicit
// transaction unless opts.DeferTransaction is set. Driver lookup failures are
// reported as *ConfigurationError.
func OpenSQLSession(ctx context.Context, opts SQLSessionOptions) (*SQLSession, error) {
	db, err := sql.Open(opts.DriverName, opts.DSN)
	if err != nil {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("open %s driver: %v", opts.DriverName, err), Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	dialCtx := ctx
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	conn, err := db.Conn(dialCtx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := conn.PingContext(dialCtx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	s := &SQLSession{db: db, conn: conn, opts: opts}
	if !opts.DeferTransaction {
		if s.tx, err = conn.BeginTx(ctx, nil); err != nil {
			_ = conn.Close()
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// beginFor starts the deferred transaction when stmt modifies rows.
func (s *SQLSession) beginFor(ctx context.Context, stmt string) error {
	if !s.opts.DeferTransaction || s.tx != nil || !IsDML(stmt) {
		return nil
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &ExecutionError{Err: err}
	}
	s.tx = tx
	return nil
}

func (s *SQLSession) runner() sqlRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// Query implements Session.
func (s *SQLSession) Query(ctx context.Context, stmt string, args ...any) (*RowSet, error) {
	if err := s.beginFor(ctx, stmt); err != nil {
		return nil, err
	}
	rows, err := s.runner().QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{Err: err}
	}
	types := make([]string, len(cols))
	if cts, err := rows.ColumnTypes(); err == nil {
		for i, ct := range cts {
			if i < len(types) {
				types[i] = ct.DatabaseTypeName()
			}
		}
	}

	set := &RowSet{Columns: cols, ColumnTypes: types, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecutionError{Err: err}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{Err: err}
	}
	if len(cols) == 0 {
		return nil, ErrNoResultSet
	}
	return set, nil
}

// Exec implements Session.
func (s *SQLSession) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	if err := s.beginFor(ctx, stmt); err != nil {
		return 0, err
	}
	res, err := s.runner().ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, &ExecutionError{Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = 0
	}
	s.lastAffected = n
	return n, nil
}

// LastAffected implements Session.
func (s *SQLSession) LastAffected(ctx context.Context) (int64, error) {
	if s.opts.AffectedRowsQuery == "" {
		return s.lastAffected, nil
	}
	var n sql.NullInt64
	if err := s.runner().QueryRowContext(ctx, s.opts.AffectedRowsQuery).Scan(&n); err != nil {
		return 0, &ExecutionError{Err: err}
	}
	if !n.Valid || n.Int64 < 0 {
		return 0, nil
	}
	return n.Int64, nil
}

// Commit implements Session and is a no-op when no transaction is open.
// Statements after Commit run in autocommit mode, except that a deferred
// session begins a new transaction before the next DML.
func (s *SQLSession) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit()
	s.tx = nil
	if err != nil {
		return &ExecutionError{Err: err}
	}
	return nil
}

// Close implements Session.
func (s *SQLSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, err)
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ Session = (*SQLSession)(nil)
