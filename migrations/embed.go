// Package migrations holds the metadata store schema. The same files apply to
// the sqlite and postgresql stores.
package migrations

import "embed"

// FS contains the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
