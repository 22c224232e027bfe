package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/config"
)

// ServiceName is reported by the ping endpoint.
const ServiceName = "data-engine"

const storePingTimeout = 2 * time.Second

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PingResponse describes the running build and what it can connect to.
type PingResponse struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	Service         string   `json:"service"`
	GoVersion       string   `json:"go_version"`
	Environment     string   `json:"environment"`
	StoreType       string   `json:"store_type"`
	EnabledDialects []string `json:"enabled_dialects"`
}

// StorePinger checks that the metadata store answers.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	store  StorePinger
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. store may be nil.
func NewHealthHandler(cfg *config.Config, store StorePinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, store: store, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), storePingTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn("Store health check failed", zap.Error(err))
			writeJSON(w, h.logger, http.StatusServiceUnavailable, HealthResponse{
				Status:  "error",
				Message: "metadata store unavailable",
			})
			return
		}
	}

	writeJSON(w, h.logger, http.StatusOK, HealthResponse{
		Status:  "ok",
		Message: "Data Engine API is running",
	})
}

// Ping handles GET /ping.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	dialects := h.cfg.Datasource.EnabledDialects
	if dialects == nil {
		dialects = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, PingResponse{
		Status:          "ok",
		Version:         h.cfg.Version,
		Service:         ServiceName,
		GoVersion:       runtime.Version(),
		Environment:     h.cfg.Env,
		StoreType:       h.cfg.Store.Type,
		EnabledDialects: dialects,
	})
}
