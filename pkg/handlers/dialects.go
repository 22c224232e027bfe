package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/adapters/datasource"
)

// DialectsResponse lists the database types accepted by this server.
type DialectsResponse struct {
	Dialects []datasource.DialectInfo `json:"dialects"`
}

// DialectsHandler exposes the enabled dialects for client forms.
type DialectsHandler struct {
	factory datasource.DialectFactory
	logger  *zap.Logger
}

// NewDialectsHandler creates a new dialects handler.
func NewDialectsHandler(factory datasource.DialectFactory, logger *zap.Logger) *DialectsHandler {
	return &DialectsHandler{factory: factory, logger: logger}
}

// RegisterRoutes registers the dialect routes on the given mux.
func (h *DialectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/database/dialects", h.List)
}

// List handles GET /api/database/dialects
func (h *DialectsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, DialectsResponse{Dialects: h.factory.ListTypes()})
}
