package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/audit"
	"github.com/TAF-Playground/TAF-DataDev/pkg/logging"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/services"
	"github.com/TAF-Playground/TAF-DataDev/pkg/sqlcheck"
)

// CreateConnectionRequest is the POST body for a new connection profile.
type CreateConnectionRequest struct {
	Name             string  `json:"name"`
	DBType           string  `json:"dbType"`
	Host             *string `json:"host"`
	Port             *int    `json:"port"`
	Database         *string `json:"database"`
	Username         *string `json:"username"`
	Password         *string `json:"password"`
	ConnectionString *string `json:"connectionString"`
	Description      *string `json:"description"`
}

func (r *CreateConnectionRequest) toProfile() *models.ConnectionProfile {
	return &models.ConnectionProfile{
		Name:             r.Name,
		DBType:           r.DBType,
		Host:             r.Host,
		Port:             r.Port,
		Database:         r.Database,
		Username:         r.Username,
		Password:         r.Password,
		ConnectionString: r.ConnectionString,
		Description:      r.Description,
	}
}

// TestConnectionRequest carries unsaved connection parameters.
type TestConnectionRequest struct {
	DBType           string  `json:"dbType"`
	Host             string  `json:"host"`
	Port             *int    `json:"port"`
	Database         string  `json:"database"`
	Username         string  `json:"username"`
	Password         *string `json:"password"`
	ConnectionString string  `json:"connectionString"`
}

// toParams trims every text field except the password, so whitespace-only
// values count as absent.
func (r *TestConnectionRequest) toParams() datasource.ConnectionParams {
	return datasource.ConnectionParams{
		DBType:           strings.TrimSpace(r.DBType),
		Host:             strings.TrimSpace(r.Host),
		Port:             r.Port,
		Database:         strings.TrimSpace(r.Database),
		Username:         strings.TrimSpace(r.Username),
		Password:         r.Password,
		ConnectionString: strings.TrimSpace(r.ConnectionString),
	}
}

// TestConnectionResponse for connection test result.
type TestConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ExecuteRequest is the POST body of the execute endpoint.
type ExecuteRequest struct {
	SQL string `json:"sql"`
}

// ExecuteResponse is a successful execution.
type ExecuteResponse struct {
	Success       bool     `json:"success"`
	Columns       []string `json:"columns"`
	Rows          [][]any  `json:"rows"`
	RowCount      int64    `json:"rowCount"`
	ExecutionTime float64  `json:"executionTime"`
	Message       string   `json:"message"`
}

// ExecuteFailureResponse is a failed execution. It is still sent with 200.
type ExecuteFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DeleteResponse confirms a deletion.
type DeleteResponse struct {
	Message string `json:"message"`
}

// DatabasesResponse lists databases visible to a connection.
type DatabasesResponse struct {
	Databases []string `json:"databases"`
}

// TablesResponse lists tables of a database or schema.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// ConnectionsHandler handles database connection HTTP requests.
type ConnectionsHandler struct {
	connections services.ConnectionService
	tester      services.ConnectionTester
	queries     services.QueryService
	schema      services.SchemaService
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(
	connections services.ConnectionService,
	tester services.ConnectionTester,
	queries services.QueryService,
	schema services.SchemaService,
	logger *zap.Logger,
) *ConnectionsHandler {
	return &ConnectionsHandler{
		connections: connections,
		tester:      tester,
		queries:     queries,
		schema:      schema,
		auditor:     audit.NewSecurityAuditor(logger),
		logger:      logger,
	}
}

// RegisterRoutes registers the connection routes on the given mux.
func (h *ConnectionsHandler) RegisterRoutes(mux *http.ServeMux) {
	const base = "/api/database/connections"
	mux.HandleFunc("GET "+base, h.List)
	mux.HandleFunc("POST "+base, h.Create)
	mux.HandleFunc("POST "+base+"/test", h.Test)
	mux.HandleFunc("GET "+base+"/{id}", h.Get)
	mux.HandleFunc("PUT "+base+"/{id}", h.Update)
	mux.HandleFunc("PATCH "+base+"/{id}", h.Update)
	mux.HandleFunc("DELETE "+base+"/{id}", h.Delete)
	mux.HandleFunc("POST "+base+"/{id}/execute", h.Execute)
	mux.HandleFunc("GET "+base+"/{id}/databases", h.Databases)
	mux.HandleFunc("GET "+base+"/{id}/tables", h.Tables)
	mux.HandleFunc("GET "+base+"/{id}/table-structure", h.TableStructure)
}

// List handles GET /api/database/connections
func (h *ConnectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.connections.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list connections", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to list connections")
		return
	}

	resp := make([]models.ConnectionResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, p.ToResponse(false))
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// Get handles GET /api/database/connections/{id}
func (h *ConnectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile.ToResponse(false))
}

// Create handles POST /api/database/connections
func (h *ConnectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateConnectionRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	profile, err := h.connections.Create(r.Context(), req.toProfile())
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Connection name and database type are required")
			return
		}
		h.logger.Error("Failed to create connection", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to create connection")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, profile.ToResponse(false))
}

// Update handles PUT and PATCH /api/database/connections/{id}
// Only fields present in the body are changed.
func (h *ConnectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseConnectionID(w, r, h.logger)
	if !ok {
		return
	}

	var patch models.ConnectionPatch
	if !DecodeJSON(w, r, &patch, h.logger) {
		return
	}

	profile, err := h.connections.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			writeError(w, h.logger, http.StatusNotFound, "connection_not_found", "Database connection not found")
		case errors.Is(err, apperrors.ErrInvalidInput):
			writeError(w, h.logger, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			h.logger.Error("Failed to update connection", zap.String("id", id), zap.Error(err))
			writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to update connection")
		}
		return
	}
	writeJSON(w, h.logger, http.StatusOK, profile.ToResponse(false))
}

// Delete handles DELETE /api/database/connections/{id}
func (h *ConnectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseConnectionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.connections.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "connection_not_found", "Database connection not found")
			return
		}
		h.logger.Error("Failed to delete connection", zap.String("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to delete connection")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, DeleteResponse{Message: "Database connection deleted"})
}

// Test handles POST /api/database/connections/test
// Every outcome of the test itself is reported with 200.
func (h *ConnectionsHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req TestConnectionRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}
	params := req.toParams()
	if params.DBType == "" {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Database type is required")
		return
	}

	ok, msg := h.tester.Test(r.Context(), params)
	writeJSON(w, h.logger, http.StatusOK, TestConnectionResponse{Success: ok, Message: msg})
}

// Execute handles POST /api/database/connections/{id}/execute
// Execution failures are reported with 200 and success=false.
func (h *ConnectionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "SQL statement is required")
		return
	}

	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	res := h.queries.Execute(r.Context(), profile, req.SQL)
	h.auditor.LogQueryExecution(profile.ID, profile.DBType, audit.ExecutionDetails{
		Statement: req.SQL,
		Success:   res.Success,
		RowCount:  res.RowCount,
	}, r.RemoteAddr)
	if !res.Success {
		writeJSON(w, h.logger, http.StatusOK, ExecuteFailureResponse{
			Success: false,
			Error:   res.Error,
			Message: res.Message,
		})
		return
	}

	columns, rows := res.Columns, res.Rows
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]any{}
	}
	writeJSON(w, h.logger, http.StatusOK, ExecuteResponse{
		Success:       true,
		Columns:       columns,
		Rows:          rows,
		RowCount:      res.RowCount,
		ExecutionTime: res.ExecutionTime,
		Message:       res.Message,
	})
}

// Databases handles GET /api/database/connections/{id}/databases
func (h *ConnectionsHandler) Databases(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	dbs, err := h.schema.ListDatabases(r.Context(), profile)
	if err != nil {
		h.writeSchemaError(w, profile, "Failed to list databases", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, DatabasesResponse{Databases: dbs})
}

// Tables handles GET /api/database/connections/{id}/tables?database=&schema=
func (h *ConnectionsHandler) Tables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	database, schema := q.Get("database"), q.Get("schema")
	if !h.checkIdentifiers(w, r, "database", database, "schema", schema) {
		return
	}

	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	tables, err := h.schema.ListTables(r.Context(), profile, database, schema)
	if err != nil {
		h.writeSchemaError(w, profile, "Failed to list tables", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, TablesResponse{Tables: tables})
}

// TableStructure handles GET /api/database/connections/{id}/table-structure?database=&schema=&table=
func (h *ConnectionsHandler) TableStructure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	database, schema, table := q.Get("database"), q.Get("schema"), q.Get("table")

	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	if strings.TrimSpace(table) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Table name is required")
		return
	}
	if !h.checkIdentifiers(w, r, "database", database, "schema", schema, "table", table) {
		return
	}

	ts, err := h.schema.DescribeTable(r.Context(), profile, database, schema, table)
	if err != nil {
		h.writeSchemaError(w, profile, "Failed to describe table", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ts)
}

// loadProfile resolves the {id} path value, writing a 404 when it does not resolve.
func (h *ConnectionsHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*models.ConnectionProfile, bool) {
	id, ok := ParseConnectionID(w, r, h.logger)
	if !ok {
		return nil, false
	}

	profile, err := h.connections.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "connection_not_found", "Database connection not found")
			return nil, false
		}
		h.logger.Error("Failed to load connection", zap.String("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to load connection")
		return nil, false
	}
	return profile, true
}

func (h *ConnectionsHandler) checkIdentifiers(w http.ResponseWriter, r *http.Request, pairs ...string) bool {
	if v := sqlcheck.CheckIdentifiers(pairs...); v != nil {
		h.auditor.LogIdentifierRejected(r.PathValue("id"), v, r.RemoteAddr)
		writeError(w, h.logger, http.StatusBadRequest, "invalid_identifier", v.Error())
		return false
	}
	return true
}

// writeSchemaError maps introspection failures: unsupported dialects and bad
// connection parameters are the client's problem (400), everything else is 500.
func (h *ConnectionsHandler) writeSchemaError(w http.ResponseWriter, profile *models.ConnectionProfile, action string, err error) {
	msg := logging.SanitizeError(err)
	switch {
	case errors.Is(err, apperrors.ErrUnsupportedDialect):
		writeError(w, h.logger, http.StatusBadRequest, "unsupported_dialect", msg)
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", msg)
	case datasource.IsConfigurationError(err) && !isOpenError(err):
		writeError(w, h.logger, http.StatusBadRequest, "connection_string_build_failed", "Connection string build failed: "+msg)
	default:
		h.logger.Error(action,
			zap.String("connection_id", profile.ID),
			zap.String("db_type", profile.DBType),
			zap.String("error", msg))
		writeError(w, h.logger, http.StatusInternalServerError, "introspection_failed", action+": "+msg)
	}
}

func isOpenError(err error) bool {
	var openErr *datasource.OpenError
	return errors.As(err, &openErr)
}
