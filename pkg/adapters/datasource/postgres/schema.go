package postgres

import (
	"context"
	"fmt"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// DefaultSchema is used when no schema is requested.
const DefaultSchema = "public"

// ListDatabases implements datasource.Dialect.
func (Dialect) ListDatabases(ctx context.Context, s datasource.Session, _ datasource.ConnectionParams) ([]string, error) {
	set, err := s.Query(ctx, "SELECT datname FROM pg_database WHERE datistemplate = false")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return firstColumn(set), nil
}

// ListTables implements datasource.Dialect. The database argument is ignored;
// PostgreSQL cannot switch databases within a connection.
func (Dialect) ListTables(ctx context.Context, s datasource.Session, _, schema string) ([]string, error) {
	if schema == "" {
		schema = DefaultSchema
	}
	set, err := s.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return firstColumn(set), nil
}

const describeTableQuery = `
	SELECT c.column_name,
	       c.data_type,
	       c.udt_name,
	       c.is_nullable,
	       c.column_default,
	       COALESCE(col_description(cls.oid, a.attnum), '') AS column_comment
	FROM information_schema.columns c
	JOIN pg_catalog.pg_namespace nsp ON nsp.nspname = c.table_schema
	JOIN pg_catalog.pg_class cls ON cls.relname = c.table_name AND cls.relnamespace = nsp.oid
	JOIN pg_catalog.pg_attribute a ON a.attrelid = cls.oid AND a.attname = c.column_name
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position`

// DescribeTable implements datasource.Dialect. Key and Extra are always empty.
func (Dialect) DescribeTable(ctx context.Context, s datasource.Session, _, schema, table string) ([]datasource.ColumnDescriptor, error) {
	if schema == "" {
		schema = DefaultSchema
	}
	set, err := s.Query(ctx, describeTableQuery, schema, table)
	if err != nil {
		return nil, fmt.Errorf("describe table %s.%s: %w", schema, table, err)
	}

	columns := make([]datasource.ColumnDescriptor, 0, len(set.Rows))
	for _, row := range set.Rows {
		colType := datasource.AsString(row[2])
		if colType == "" {
			colType = datasource.AsString(row[1])
		}
		columns = append(columns, datasource.ColumnDescriptor{
			Field:    datasource.AsString(row[0]),
			Type:     colType,
			Nullable: datasource.AsString(row[3]) == "YES",
			Default:  datasource.AsNullableString(row[4]),
			Comment:  datasource.AsString(row[5]),
		})
	}
	return columns, nil
}

func firstColumn(set *datasource.RowSet) []string {
	out := make([]string, 0, len(set.Rows))
	for _, row := range set.Rows {
		if len(row) > 0 {
			out = append(out, datasource.AsString(row[0]))
		}
	}
	return out
}
