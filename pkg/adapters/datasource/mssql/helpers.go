package mssql

import (
	"strings"
)

// DefaultSchema is the schema used when none is requested.
const DefaultSchema = "dbo"

// parseSchemaTable splits a table name that may include a schema.
// Accepts [schema].[table] or schema.table; fallback is used when no schema is present.
func parseSchemaTable(tableName, fallback string) (string, string) {
	cleaned := strings.ReplaceAll(tableName, "[", "")
	cleaned = strings.ReplaceAll(cleaned, "]", "")

	if schema, table, ok := strings.Cut(cleaned, "."); ok {
		return schema, table
	}
	return fallback, cleaned
}

// quoteName brackets an identifier the way QUOTENAME() does, escaping ] as ]].
func quoteName(identifier string) string {
	return "[" + strings.ReplaceAll(identifier, "]", "]]") + "]"
}
