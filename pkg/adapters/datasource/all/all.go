// Package all registers every compiled-in dialect. Import it for side effects.
package all

import (
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/mssql"
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/mysql"
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/postgres"
	_ "github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource/sqlite"
)
