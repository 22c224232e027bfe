package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// ListDatabases implements datasource.Dialect. A SQLite file holds one
// database, reported under the profile's database name or "main".
func (Dialect) ListDatabases(_ context.Context, _ datasource.Session, params datasource.ConnectionParams) ([]string, error) {
	if params.Database != "" {
		return []string{params.Database}, nil
	}
	return []string{"main"}, nil
}

// ListTables implements datasource.Dialect. database and schema are ignored.
func (Dialect) ListTables(ctx context.Context, s datasource.Session, _, _ string) ([]string, error) {
	set, err := s.Query(ctx, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables := make([]string, 0, len(set.Rows))
	for _, row := range set.Rows {
		tables = append(tables, datasource.AsString(row[0]))
	}
	return tables, nil
}

// DescribeTable implements datasource.Dialect using PRAGMA table_info.
func (Dialect) DescribeTable(ctx context.Context, s datasource.Session, _, _, table string) ([]datasource.ColumnDescriptor, error) {
	// PRAGMA arguments cannot be bound, so the name is embedded as a string literal.
	stmt := fmt.Sprintf("PRAGMA table_info('%s')", strings.ReplaceAll(table, "'", "''"))
	set, err := s.Query(ctx, stmt)
	if errors.Is(err, datasource.ErrNoResultSet) {
		return []datasource.ColumnDescriptor{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
	}

	// cid, name, type, notnull, dflt_value, pk
	columns := make([]datasource.ColumnDescriptor, 0, len(set.Rows))
	for _, row := range set.Rows {
		if len(row) < 6 {
			continue
		}
		col := datasource.ColumnDescriptor{
			Field:    datasource.AsString(row[1]),
			Type:     datasource.AsString(row[2]),
			Nullable: !datasource.AsBool(row[3]),
			Default:  datasource.AsNullableString(row[4]),
		}
		if datasource.AsBool(row[5]) {
			col.Key = "PRI"
		}
		columns = append(columns, col)
	}
	return columns, nil
}
