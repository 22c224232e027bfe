package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
)

// TableStructure is the column metadata of one table.
type TableStructure struct {
	Database *string                       `json:"database"`
	Schema   *string                       `json:"schema"`
	Table    string                        `json:"table"`
	Columns  []datasource.ColumnDescriptor `json:"columns"`
}

// SchemaService introspects the database behind a stored connection profile.
// Unsupported dialects fail with apperrors.ErrUnsupportedDialect before any
// connection is attempted.
type SchemaService interface {
	ListDatabases(ctx context.Context, profile *models.ConnectionProfile) ([]string, error)

	// ListTables lists base tables. Empty database or schema selects the dialect default.
	ListTables(ctx context.Context, profile *models.ConnectionProfile, database, schema string) ([]string, error)

	// DescribeTable returns apperrors.ErrInvalidInput when table is empty.
	DescribeTable(ctx context.Context, profile *models.ConnectionProfile, database, schema, table string) (*TableStructure, error)
}

type schemaService struct {
	factory datasource.DialectFactory
	scope   *datasource.SessionScope
	timeout time.Duration
	logger  *zap.Logger
}

// NewSchemaService creates a schema service. timeout bounds connection
// establishment for server dialects.
func NewSchemaService(factory datasource.DialectFactory, timeout time.Duration, logger *zap.Logger) SchemaService {
	return &schemaService{
		factory: factory,
		scope:   datasource.NewSessionScope(logger),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *schemaService) ListDatabases(ctx context.Context, profile *models.ConnectionProfile) ([]string, error) {
	var out []string
	err := s.withSession(ctx, profile, "", func(d datasource.Dialect, session datasource.Session) error {
		var err error
		out, err = d.ListDatabases(ctx, session, profile.Params())
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (s *schemaService) ListTables(ctx context.Context, profile *models.ConnectionProfile, database, schema string) ([]string, error) {
	var out []string
	err := s.withSession(ctx, profile, database, func(d datasource.Dialect, session datasource.Session) error {
		var err error
		out, err = d.ListTables(ctx, session, database, schema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (s *schemaService) DescribeTable(ctx context.Context, profile *models.ConnectionProfile, database, schema, table string) (*TableStructure, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("table name is required: %w", apperrors.ErrInvalidInput)
	}

	var cols []datasource.ColumnDescriptor
	err := s.withSession(ctx, profile, database, func(d datasource.Dialect, session datasource.Session) error {
		var err error
		cols, err = d.DescribeTable(ctx, session, database, schema, table)
		return err
	})
	if err != nil {
		return nil, err
	}
	if cols == nil {
		cols = []datasource.ColumnDescriptor{}
	}

	ts := &TableStructure{Table: table, Columns: cols, Database: profile.Database}
	if database != "" {
		ts.Database = &database
	}
	if schema != "" {
		ts.Schema = &schema
	}
	return ts, nil
}

// withSession resolves the dialect before building or opening anything, then
// runs fn in a scoped session. A non-empty database connects server dialects to
// that database instead of the profile's; file dialects keep their file.
func (s *schemaService) withSession(ctx context.Context, profile *models.ConnectionProfile, database string, fn func(datasource.Dialect, datasource.Session) error) error {
	params := profile.Params()
	d, err := s.factory.Resolve(params.DBType)
	if err != nil {
		return err
	}
	if database != "" && !d.Info().FileBased {
		params.Database = database
	}

	uri, err := d.BuildURI(params)
	if err != nil {
		return err
	}

	timeout := s.timeout
	if d.Info().FileBased {
		timeout = 0
	}

	err = s.scope.Run(ctx, d, uri, timeout, func(session datasource.Session) error {
		return fn(d, session)
	})
	if err != nil {
		s.logger.Info("Schema introspection failed",
			zap.String("connection_id", profile.ID),
			zap.String("db_type", params.DBType),
			zap.String("error", logging.SanitizeError(err)))
	}
	return err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

var _ SchemaService = (*schemaService)(nil)
