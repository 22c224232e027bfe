package mysql

import (
	"context"
	"fmt"
	"strings"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// quoteName quotes a MySQL identifier with backticks.
func quoteName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// ListDatabases implements datasource.Dialect.
func (Dialect) ListDatabases(ctx context.Context, s datasource.Session, _ datasource.ConnectionParams) ([]string, error) {
	set, err := s.Query(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return firstColumn(set), nil
}

// ListTables implements datasource.Dialect. When database is set the session
// switches to it first; otherwise the connection's default database is used.
func (Dialect) ListTables(ctx context.Context, s datasource.Session, database, _ string) ([]string, error) {
	if database != "" {
		if _, err := s.Exec(ctx, "USE "+quoteName(database)); err != nil {
			return nil, fmt.Errorf("switch to database %s: %w", database, err)
		}
	}
	set, err := s.Query(ctx, "SHOW TABLES")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return firstColumn(set), nil
}

const describeTableQuery = `
	SELECT COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT,
	       COLUMN_COMMENT, COLUMN_KEY, EXTRA
	FROM INFORMATION_SCHEMA.COLUMNS
	WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE()) AND TABLE_NAME = ?
	ORDER BY ORDINAL_POSITION`

// DescribeTable implements datasource.Dialect. An empty database means the
// connection's default database.
func (Dialect) DescribeTable(ctx context.Context, s datasource.Session, database, _, table string) ([]datasource.ColumnDescriptor, error) {
	set, err := s.Query(ctx, describeTableQuery, database, table)
	if err != nil {
		return nil, fmt.Errorf("describe table %s: %w", table, err)
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
			Key:      datasource.AsString(row[6]),
			Extra:    datasource.AsString(row[7]),
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
