package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/sqlcheck"
)

// QueryResult is the uniform outcome of executing SQL against any dialect.
// Failures carry Success=false with Error and Message set.
type QueryResult struct {
	Success       bool
	Columns       []string
	Rows          [][]any
	RowCount      int64
	ExecutionTime float64 // seconds, rounded to milliseconds
	Message       string
	Error         string
}

// QueryService executes ad-hoc SQL against a stored connection profile.
type QueryService interface {
	// Execute runs sqlText in a session scoped to this call. It never returns an
	// error; every failure is described by the result.
	Execute(ctx context.Context, profile *models.ConnectionProfile, sqlText string) *QueryResult
}

type queryService struct {
	factory datasource.DialectFactory
	scope   *datasource.SessionScope
	timeout time.Duration
	logger  *zap.Logger
}

// NewQueryService creates a query service. timeout bounds connection
// establishment for server dialects.
func NewQueryService(factory datasource.DialectFactory, timeout time.Duration, logger *zap.Logger) QueryService {
	return &queryService{
		factory: factory,
		scope:   datasource.NewSessionScope(logger),
		timeout: timeout,
		logger:  logger,
	}
}

func (s *queryService) Execute(ctx context.Context, profile *models.ConnectionProfile, sqlText string) (result *QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Query execution panicked", zap.String("connection_id", profile.ID), zap.Any("panic", r))
			result = failure(fmt.Errorf("%v", r), "execution failed")
		}
	}()

	params := profile.Params()
	sqlText, err := sqlcheck.NormalizeStatement(sqlText, strings.EqualFold(params.DBType, datasource.TypeMySQL))
	if err != nil {
		return failure(err, "execution failed")
	}

	uri, err := datasource.BuildConnectionString(s.factory, params)
	if err != nil {
		return failure(err, "connection string build failed")
	}

	d, err := s.factory.Resolve(params.DBType)
	if err != nil {
		return failure(err, "cannot create engine")
	}

	timeout := s.timeout
	if d.Info().FileBased {
		timeout = 0
	}

	start := time.Now()
	var out *QueryResult
	err = s.scope.Run(ctx, d, uri, timeout, func(session datasource.Session) error {
		var runErr error
		if datasource.IsRowReturning(sqlText) {
			out, runErr = runRowReturning(ctx, session, sqlText)
		} else {
			out, runErr = runMutation(ctx, session, sqlText)
		}
		return runErr
	})
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Info("Query execution failed",
			zap.String("connection_id", profile.ID),
			zap.String("db_type", params.DBType),
			zap.String("sql", logging.SanitizeQuery(sqlText)),
			zap.String("error", logging.SanitizeError(err)))
		return classifyExecutionError(err)
	}

	out.Success = true
	out.ExecutionTime = math.Round(elapsed.Seconds()*1000) / 1000
	s.logger.Debug("Query executed",
		zap.String("connection_id", profile.ID),
		zap.String("sql", logging.SanitizeQuery(sqlText)),
		zap.Int64("row_count", out.RowCount),
		zap.Duration("elapsed", elapsed))
	return out
}

// runRowReturning fetches the result set. A statement that executed but left
// nothing to fetch was misclassified DDL/DML: it is committed and reported by
// affected rows instead.
func runRowReturning(ctx context.Context, session datasource.Session, sqlText string) (*QueryResult, error) {
	rs, err := session.Query(ctx, sqlText)
	if errors.Is(err, datasource.ErrNoResultSet) {
		return commitAndCount(ctx, session, -1)
	}
	if err != nil {
		return nil, err
	}

	width := 0
	if len(rs.Rows) > 0 {
		width = len(rs.Rows[0])
	}
	rows := make([][]any, len(rs.Rows))
	for i, raw := range rs.Rows {
		row := make([]any, len(raw))
		for j, v := range raw {
			row[j] = datasource.NormalizeValue(v, rs.TypeOf(j))
		}
		rows[i] = row
	}

	return &QueryResult{
		Columns:  datasource.ColumnNames(rs.Columns, width),
		Rows:     rows,
		RowCount: int64(len(rows)),
		Message:  fmt.Sprintf("query succeeded, returned %d rows", len(rows)),
	}, nil
}

func runMutation(ctx context.Context, session datasource.Session, sqlText string) (*QueryResult, error) {
	n, err := session.Exec(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	return commitAndCount(ctx, session, n)
}

// commitAndCount commits the session and reports n affected rows. A negative n
// asks the session for the count of the last statement.
func commitAndCount(ctx context.Context, session datasource.Session, n int64) (*QueryResult, error) {
	if n < 0 {
		affected, err := session.LastAffected(ctx)
		if err != nil {
			return nil, err
		}
		n = affected
	}
	if err := session.Commit(ctx); err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	return &QueryResult{
		Columns:  []string{},
		Rows:     [][]any{},
		RowCount: n,
		Message:  fmt.Sprintf("executed, affected %d rows", n),
	}, nil
}

func classifyExecutionError(err error) *QueryResult {
	var openErr *datasource.OpenError
	var execErr *datasource.ExecutionError
	switch {
	case datasource.IsConfigurationError(err):
		return failure(err, "cannot create engine")
	case errors.As(err, &openErr), errors.As(err, &execErr):
		return failure(err, "SQL execution failed")
	default:
		return failure(err, "execution failed")
	}
}

func failure(err error, prefix string) *QueryResult {
	return &QueryResult{
		Success: false,
		Error:   err.Error(),
		Message: prefix + ": " + err.Error(),
	}
}

var _ QueryService = (*queryService)(nil)
