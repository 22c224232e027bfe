package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

const closeTimeout = 5 * time.Second

// session is a datasource.Session over a single pgx connection.
type session struct {
	conn         *pgx.Conn
	tx           pgx.Tx
	lastAffected int64
	closed       bool
}

func (s *session) query(ctx context.Context, stmt string, args ...any) (pgx.Rows, error) {
	if s.tx != nil {
		return s.tx.Query(ctx, stmt, args...)
	}
	return s.conn.Query(ctx, stmt, args...)
}

// Query implements datasource.Session.
func (s *session) Query(ctx context.Context, stmt string, args ...any) (*datasource.RowSet, error) {
	rows, err := s.query(ctx, stmt, args...)
	if err != nil {
		return nil, &datasource.ExecutionError{Err: err}
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	set := &datasource.RowSet{
		Columns:     make([]string, len(fields)),
		ColumnTypes: make([]string, len(fields)),
		Rows:        [][]any{},
	}
	for i, fd := range fields {
		set.Columns[i] = fd.Name
		set.ColumnTypes[i] = s.typeName(fd.DataTypeOID)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &datasource.ExecutionError{Err: err}
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, &datasource.ExecutionError{Err: err}
	}
	s.lastAffected = rows.CommandTag().RowsAffected()

	if len(fields) == 0 {
		return nil, datasource.ErrNoResultSet
	}
	return set, nil
}

func (s *session) typeName(oid uint32) string {
	if name := pgTypeNameFromOID(oid); name != "UNKNOWN" {
		return name
	}
	if t, ok := s.conn.TypeMap().TypeForOID(oid); ok {
		return t.Name
	}
	return "UNKNOWN"
}

// Exec implements datasource.Session.
func (s *session) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	var err error
	var n int64
	if s.tx != nil {
		tag, execErr := s.tx.Exec(ctx, stmt, args...)
		n, err = tag.RowsAffected(), execErr
	} else {
		tag, execErr := s.conn.Exec(ctx, stmt, args...)
		n, err = tag.RowsAffected(), execErr
	}
	if err != nil {
		return 0, &datasource.ExecutionError{Err: err}
	}
	s.lastAffected = n
	return n, nil
}

// LastAffected implements datasource.Session using the last command tag.
func (s *session) LastAffected(context.Context) (int64, error) {
	return s.lastAffected, nil
}

// Commit implements datasource.Session.
func (s *session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	if err != nil {
		return &datasource.ExecutionError{Err: err}
	}
	return nil
}

// Close implements datasource.Session. Uncommitted work is rolled back.
func (s *session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			errs = append(errs, err)
		}
		s.tx = nil
	}
	if err := s.conn.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

var _ datasource.Session = (*session)(nil)
