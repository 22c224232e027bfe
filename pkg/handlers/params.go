package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ParseConnectionID extracts and validates the connection ID from the request path.
// A malformed ID cannot name a stored connection, so it is answered with the
// same 404 as an unknown one.
// Expects path parameter: id
func ParseConnectionID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	return parsePrefixedID(w, r, "id", "db_", "connection_not_found", "Database connection not found", logger)
}

// parsePrefixedID accepts IDs of the form <prefix><uuid>.
func parsePrefixedID(w http.ResponseWriter, r *http.Request, pathParam, prefix, errorCode, errorMessage string, logger *zap.Logger) (string, bool) {
	idStr := r.PathValue(pathParam)
	if rest, ok := strings.CutPrefix(idStr, prefix); ok {
		if _, err := uuid.Parse(rest); err == nil {
			return idStr, true
		}
	}
	writeError(w, logger, http.StatusNotFound, errorCode, errorMessage)
	return "", false
}

// DecodeJSON decodes the request body into dst. On failure it writes a 400
// response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, logger *zap.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return false
	}
	return true
}
