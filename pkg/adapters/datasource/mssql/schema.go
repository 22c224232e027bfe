package mssql

import (
	"context"
	"fmt"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// ListDatabases implements datasource.Dialect.
func (Dialect) ListDatabases(ctx context.Context, s datasource.Session, _ datasource.ConnectionParams) ([]string, error) {
	set, err := s.Query(ctx, "SELECT name FROM sys.databases WHERE state_desc = 'ONLINE' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return firstColumn(set), nil
}

func useDatabase(ctx context.Context, s datasource.Session, database string) error {
	if database == "" {
		return nil
	}
	if _, err := s.Exec(ctx, "USE "+quoteName(database)); err != nil {
		return fmt.Errorf("switch to database %s: %w", database, err)
	}
	return nil
}

// ListTables implements datasource.Dialect. schema defaults to dbo.
func (Dialect) ListTables(ctx context.Context, s datasource.Session, database, schema string) ([]string, error) {
	if err := useDatabase(ctx, s, database); err != nil {
		return nil, err
	}
	if schema == "" {
		schema = DefaultSchema
	}
	set, err := s.Query(ctx, `
		SELECT TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE'
		ORDER BY TABLE_NAME`, schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return firstColumn(set), nil
}

const describeTableQuery = `
	SELECT c.COLUMN_NAME,
	       c.DATA_TYPE,
	       CASE
	           WHEN c.CHARACTER_MAXIMUM_LENGTH = -1 THEN c.DATA_TYPE + '(max)'
	           WHEN c.CHARACTER_MAXIMUM_LENGTH IS NOT NULL THEN c.DATA_TYPE + '(' + CAST(c.CHARACTER_MAXIMUM_LENGTH AS VARCHAR(10)) + ')'
	           ELSE c.DATA_TYPE
	       END AS COLUMN_TYPE,
	       c.IS_NULLABLE,
	       c.COLUMN_DEFAULT,
	       COALESCE(CAST(ep.value AS NVARCHAR(4000)), '') AS COLUMN_COMMENT,
	       CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRI' ELSE '' END AS COLUMN_KEY,
	       CASE WHEN COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'IsIdentity') = 1
	            THEN 'identity' ELSE '' END AS EXTRA
	FROM INFORMATION_SCHEMA.COLUMNS c
	LEFT JOIN (
	    SELECT ku.TABLE_SCHEMA, ku.TABLE_NAME, ku.COLUMN_NAME
	    FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
	    JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE ku
	      ON ku.CONSTRAINT_NAME = tc.CONSTRAINT_NAME AND ku.TABLE_SCHEMA = tc.TABLE_SCHEMA
	    WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY'
	) pk ON pk.TABLE_SCHEMA = c.TABLE_SCHEMA AND pk.TABLE_NAME = c.TABLE_NAME AND pk.COLUMN_NAME = c.COLUMN_NAME
	LEFT JOIN sys.extended_properties ep
	  ON ep.class = 1
	 AND ep.major_id = OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME))
	 AND ep.minor_id = COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)), c.COLUMN_NAME, 'ColumnId')
	 AND ep.name = 'MS_Description'
	WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
	ORDER BY c.ORDINAL_POSITION`

// DescribeTable implements datasource.Dialect. A schema-qualified table name
// overrides schema; otherwise schema defaults to dbo.
func (Dialect) DescribeTable(ctx context.Context, s datasource.Session, database, schema, table string) ([]datasource.ColumnDescriptor, error) {
	if err := useDatabase(ctx, s, database); err != nil {
		return nil, err
	}
	if schema == "" {
		schema = DefaultSchema
	}
	schema, table = parseSchemaTable(table, schema)

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
