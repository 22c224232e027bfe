package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// Store types.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgresql"
)

// Config holds all configuration for the data engine.
// Values are loaded from config.yaml (when present) with environment variable overrides.
type Config struct {
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port     string `yaml:"port" env:"PORT" env-default:"5000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Store is the metadata database holding connection profiles, directories and projects.
	Store StoreConfig `yaml:"store"`

	// Datasource configures access to the user's external databases.
	Datasource DatasourceConfig `yaml:"datasource"`

	CORS CORSConfig `yaml:"cors"`
}

// StoreConfig selects and locates the metadata store.
type StoreConfig struct {
	Type       string `yaml:"type" env:"DATABASE_TYPE" env-default:"sqlite"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"data_engine.db"`

	Host         string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port         int    `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User         string `yaml:"user" env:"POSTGRES_USER" env-default:"postgres"`
	Password     string `yaml:"-" env:"POSTGRES_PASSWORD"` // Secret - not in YAML
	Database     string `yaml:"database" env:"POSTGRES_DB" env-default:"data_engine"`
	SSLMode      string `yaml:"ssl_mode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"POSTGRES_MAX_OPEN_CONNS" env-default:"10"`
}

// DatasourceConfig bounds how the engine talks to user databases.
type DatasourceConfig struct {
	// TestTimeout bounds connection establishment for connection tests.
	TestTimeout time.Duration `yaml:"test_timeout" env:"DATASOURCE_TEST_TIMEOUT" env-default:"5s"`

	// ExecuteTimeout bounds connection establishment for query execution and introspection.
	ExecuteTimeout time.Duration `yaml:"execute_timeout" env:"DATASOURCE_EXECUTE_TIMEOUT" env-default:"10s"`

	// EnabledDialects lists the dialect tokens accepted by the API.
	EnabledDialects []string `yaml:"enabled_dialects" env:"DATASOURCE_ENABLED_DIALECTS" env-default:"sqlite,mysql,postgresql" env-separator:","`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:","`
}

// Load reads configuration from path (DefaultPath when empty) with environment
// variable overrides. A missing file is not an error; env and defaults apply.
func Load(path, version string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Store.Type = strings.ToLower(strings.TrimSpace(c.Store.Type))
	if c.Store.Type == "postgres" {
		c.Store.Type = StorePostgres
	}
	c.Datasource.EnabledDialects = trimList(c.Datasource.EnabledDialects, true)
	c.CORS.AllowedOrigins = trimList(c.CORS.AllowedOrigins, false)
}

func trimList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("port must be numeric, got %q", c.Port)
	}

	switch c.Store.Type {
	case StoreSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite store")
		}
	case StorePostgres:
		if c.Store.Host == "" || c.Store.Database == "" || c.Store.User == "" {
			return fmt.Errorf("store host, database and user are required for the postgresql store")
		}
	default:
		return fmt.Errorf("unknown store type %q (expected %s or %s)", c.Store.Type, StoreSQLite, StorePostgres)
	}

	if c.Datasource.TestTimeout <= 0 || c.Datasource.ExecuteTimeout <= 0 {
		return fmt.Errorf("datasource timeouts must be positive")
	}
	if len(c.Datasource.EnabledDialects) == 0 {
		return fmt.Errorf("datasource.enabled_dialects must not be empty")
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// PostgresURL returns the pgx connection URL of the postgresql store.
func (c *StoreConfig) PostgresURL() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", ResolveHostForDocker(c.Host), c.Port),
		Path:   "/" + c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ExampleYAML renders the configuration skeleton with defaults filled in.
// Secrets are omitted because their fields are excluded from YAML.
func ExampleYAML() ([]byte, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	cfg.normalize()
	return yaml.Marshal(cfg)
}
