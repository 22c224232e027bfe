package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
)

// MsgConnectionSucceeded is returned by a successful connection test.
const MsgConnectionSucceeded = "connection succeeded"

// errUnexpectedProbe marks a liveness probe that ran but did not return 1.
var errUnexpectedProbe = errors.New("unexpected result from SELECT 1")

// ConnectionTester checks that a set of connection parameters reaches a live database.
type ConnectionTester interface {
	// Test never fails outright; every problem is reported as (false, message).
	Test(ctx context.Context, params datasource.ConnectionParams) (bool, string)
}

type connectionTester struct {
	factory datasource.DialectFactory
	scope   *datasource.SessionScope
	timeout time.Duration
	logger  *zap.Logger
}

// NewConnectionTester creates a tester. timeout bounds connection establishment
// for server dialects; file-based dialects are opened without one.
func NewConnectionTester(factory datasource.DialectFactory, timeout time.Duration, logger *zap.Logger) ConnectionTester {
	return &connectionTester{
		factory: factory,
		scope:   datasource.NewSessionScope(logger),
		timeout: timeout,
		logger:  logger,
	}
}

func (t *connectionTester) Test(ctx context.Context, params datasource.ConnectionParams) (ok bool, msg string) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("Connection test panicked", zap.Any("panic", r))
			ok, msg = false, fmt.Sprintf("connection failed: %v", r)
		}
	}()

	if valid, reason := datasource.ValidateParams(t.factory, params); !valid {
		return false, reason
	}

	uri, err := datasource.BuildConnectionString(t.factory, params)
	if err != nil {
		return false, "configuration error: " + err.Error()
	}

	d, err := t.factory.Resolve(params.DBType)
	if err != nil {
		return false, "configuration error: " + err.Error()
	}

	timeout := t.timeout
	if d.Info().FileBased {
		timeout = 0
	}

	err = t.scope.Run(ctx, d, uri, timeout, func(s datasource.Session) error {
		return probe(ctx, s, d.Info().Type)
	})
	if err != nil {
		t.logger.Info("Connection test failed",
			zap.String("db_type", params.DBType),
			zap.String("uri", logging.SanitizeConnectionString(uri)),
			zap.String("error", logging.SanitizeError(err)))
		if datasource.IsConfigurationError(err) {
			return false, "configuration error: " + err.Error()
		}
		return false, datasource.ClassifyConnectError(err)
	}

	t.logger.Debug("Connection test succeeded", zap.String("db_type", params.DBType))
	return true, MsgConnectionSucceeded
}

// probe runs the liveness query and, for SQLite, a catalog read that fails on
// files that are not databases.
func probe(ctx context.Context, s datasource.Session, dbType string) error {
	rs, err := s.Query(ctx, "SELECT 1")
	if err != nil {
		return err
	}
	if len(rs.Rows) != 1 || len(rs.Rows[0]) == 0 {
		return errUnexpectedProbe
	}
	if v := datasource.NormalizeValue(rs.Rows[0][0], rs.TypeOf(0)); v != int64(1) {
		return fmt.Errorf("%w: %v", errUnexpectedProbe, v)
	}

	if dbType == datasource.TypeSQLite {
		if _, err := s.Query(ctx, "SELECT COUNT(*) FROM sqlite_master"); err != nil {
			return err
		}
	}
	return nil
}

var _ ConnectionTester = (*connectionTester)(nil)
