// Package audit writes security-relevant events about user databases as
// structured log entries under the "security_audit" logger name.
package audit

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
	"github.com/TAF-Playground/TAF-DataDev/pkg/sqlcheck"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventSQLInjectionAttempt is logged when an introspection identifier matches an injection pattern.
	EventSQLInjectionAttempt SecurityEventType = "sql_injection_attempt"
	// EventIdentifierRejected is logged for identifiers rejected for any other reason.
	EventIdentifierRejected SecurityEventType = "identifier_rejected"
	// EventQueryExecution is logged for every ad-hoc statement run against a user database.
	EventQueryExecution SecurityEventType = "query_execution"
)

// Severities.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// SecurityEvent is the JSON document attached to every audit entry.
type SecurityEvent struct {
	Timestamp    time.Time         `json:"timestamp"`
	EventType    SecurityEventType `json:"event_type"`
	ConnectionID string            `json:"connection_id,omitempty"`
	DBType       string            `json:"db_type,omitempty"`
	ClientIP     string            `json:"client_ip,omitempty"`
	Details      any               `json:"details"`
	Severity     string            `json:"severity"`
}

// IdentifierDetails describes a rejected introspection parameter.
type IdentifierDetails struct {
	ParamName   string `json:"param_name"`
	ParamValue  string `json:"param_value"`
	Reason      string `json:"reason"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// ExecutionDetails describes one statement run through the execute endpoint.
type ExecutionDetails struct {
	Statement string `json:"statement"`
	Success   bool   `json:"success"`
	RowCount  int64  `json:"row_count"`
}

// SecurityAuditor logs security events.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates an auditor logging under the "security_audit" name.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogIdentifierRejected records an identifier refused before introspection.
// Injection matches are logged at ERROR with critical severity, other
// rejections at WARN.
func (a *SecurityAuditor) LogIdentifierRejected(connectionID string, v *sqlcheck.IdentifierViolation, clientIP string) {
	eventType, severity, level := EventIdentifierRejected, SeverityWarning, zapcore.WarnLevel
	if v.Reason == sqlcheck.ReasonInjection {
		eventType, severity, level = EventSQLInjectionAttempt, SeverityCritical, zapcore.ErrorLevel
	}

	details := IdentifierDetails{
		ParamName:   v.Name,
		ParamValue:  logging.TruncateString(v.Value, sqlcheck.MaxIdentifierLength),
		Reason:      v.Reason,
		Fingerprint: v.Fingerprint,
	}
	a.log(level, "Identifier rejected", SecurityEvent{
		EventType:    eventType,
		ConnectionID: connectionID,
		ClientIP:     clientIP,
		Details:      details,
		Severity:     severity,
	},
		zap.String("param_name", v.Name),
		zap.String("fingerprint", v.Fingerprint),
	)
}

// LogQueryExecution records an ad-hoc statement with its outcome. The
// statement is sanitized before it is logged.
func (a *SecurityAuditor) LogQueryExecution(connectionID, dbType string, details ExecutionDetails, clientIP string) {
	details.Statement = logging.SanitizeQuery(details.Statement)
	a.log(zapcore.InfoLevel, "Query executed", SecurityEvent{
		EventType:    EventQueryExecution,
		ConnectionID: connectionID,
		DBType:       dbType,
		ClientIP:     clientIP,
		Details:      details,
		Severity:     SeverityInfo,
	},
		zap.Bool("success", details.Success),
		zap.Int64("row_count", details.RowCount),
	)
}

func (a *SecurityAuditor) log(level zapcore.Level, msg string, event SecurityEvent, extra ...zap.Field) {
	event.Timestamp = time.Now().UTC()

	// Marshaling these known types cannot fail.
	eventJSON, _ := json.Marshal(event)

	fields := append([]zap.Field{
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(event.EventType)),
		zap.String("connection_id", event.ConnectionID),
		zap.String("client_ip", event.ClientIP),
		zap.String("severity", event.Severity),
	}, extra...)
	a.logger.Log(level, msg, fields...)
}
