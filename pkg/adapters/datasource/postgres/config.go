package postgres

import (
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
)

// DefaultPort is the PostgreSQL server port used when none is configured.
const DefaultPort = 5432

// ParseConfig turns a connection string into a pgx connection config.
// URI schemes with a "+driver" suffix (postgresql+psycopg2://) are accepted,
// as are keyword/value DSNs. localhost is rewritten when running in Docker.
func ParseConfig(uri string, timeout time.Duration) (*pgx.ConnConfig, error) {
	if strings.Contains(uri, "://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, &datasource.ConfigurationError{Msg: "invalid PostgreSQL connection string", Err: err}
		}
		base, _, _ := strings.Cut(u.Scheme, "+")
		if base != "postgresql" && base != "postgres" {
			return nil, datasource.NewConfigurationError("unexpected connection string scheme %q", u.Scheme)
		}
		u.Scheme = base
		uri = u.String()
	}

	cfg, err := pgx.ParseConfig(uri)
	if err != nil {
		return nil, &datasource.ConfigurationError{Msg: "invalid PostgreSQL connection string: " + err.Error(), Err: err}
	}
	cfg.Host = config.ResolveHostForDocker(cfg.Host)
	if timeout > 0 {
		cfg.ConnectTimeout = timeout
	}
	// Simple protocol: statements are sent verbatim without a prepare round trip.
	cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return cfg, nil
}
