package datasource

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
)

// ErrNoResultSet is returned by Session.Query when a statement ran but produced
// nothing to fetch.
var ErrNoResultSet = errors.New("statement does not return rows")

// ConfigurationError reports missing or unusable connection parameters.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// NewConfigurationError creates a ConfigurationError with a formatted message.
func NewConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedDialectError is the ConfigurationError for an unknown dialect token.
func UnsupportedDialectError(dbType, suggestion string) *ConfigurationError {
	msg := fmt.Sprintf("%s: %s", apperrors.ErrUnsupportedDialect.Error(), dbType)
	if suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", suggestion)
	}
	return &ConfigurationError{Msg: msg, Err: apperrors.ErrUnsupportedDialect}
}

// IsConfigurationError reports whether err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// ValidationError is a failed pre-flight check. Msg is user facing.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Invalid creates a ValidationError with a formatted message.
func Invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ExecutionError wraps a failure raised by the database while running a statement.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string { return e.Err.Error() }

func (e *ExecutionError) Unwrap() error { return e.Err }

// Connection failure categories.
const (
	MsgAuthFailed      = "connection failed: wrong username or password"
	MsgUnknownDatabase = "connection failed: database does not exist"
	MsgCannotConnect   = "connection failed: cannot connect to server, check host and port"
	MsgTimeout         = "connection failed: connection timed out, check network and server status"
)

// ClassifyConnectError maps a driver error to a user-facing message by matching
// on the error text.
func ClassifyConnectError(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "Access denied") || strings.Contains(lower, "authentication failed") ||
		strings.Contains(lower, "login failed"):
		return MsgAuthFailed
	case strings.Contains(msg, "Unknown database") ||
		(strings.Contains(lower, "database") && strings.Contains(lower, "does not exist")):
		return MsgUnknownDatabase
	case strings.Contains(lower, "connection refused") || strings.Contains(msg, "Can't connect"):
		return MsgCannotConnect
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return MsgTimeout
	default:
		return "connection failed: " + msg
	}
}
