package mysql

import (
	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

func init() {
	datasource.Register(Dialect{})
}
