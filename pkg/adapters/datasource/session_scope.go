package datasource

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
)

// SessionScope opens one Session per call and guarantees it is closed on every
// exit path. Nothing is pooled across calls.
type SessionScope struct {
	logger *zap.Logger
}

// NewSessionScope creates a scope. A nil logger disables close-failure logging.
func NewSessionScope(logger *zap.Logger) *SessionScope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionScope{logger: logger}
}

// Run opens a session for uri with d, passes it to fn and closes it afterwards.
// The error from opening is returned unchanged so callers can classify it.
func (s *SessionScope) Run(ctx context.Context, d Dialect, uri string, timeout time.Duration, fn func(Session) error) error {
	start := time.Now()
	session, err := d.Open(ctx, uri, timeout)
	if err != nil {
		s.logger.Debug("Failed to open session",
			zap.String("dialect", d.Info().Type),
			zap.String("uri", logging.SanitizeConnectionString(uri)),
			zap.String("error", logging.SanitizeError(err)))
		return &OpenError{Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.logger.Warn("Failed to close session",
				zap.String("dialect", d.Info().Type),
				zap.String("error", logging.SanitizeError(cerr)))
		}
		s.logger.Debug("Session closed",
			zap.String("dialect", d.Info().Type),
			zap.Duration("lifetime", time.Since(start)))
	}()

	return fn(session)
}

// OpenError marks a failure to establish a session, as opposed to a failure
// while using one.
type OpenError struct {
	Err error
}

func (e *OpenError) Error() string { return e.Err.Error() }

func (e *OpenError) Unwrap() error { return e.Err }
