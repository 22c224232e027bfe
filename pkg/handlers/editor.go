package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/services"
)

// CreateDirectoryRequest is the POST body for a new directory.
type CreateDirectoryRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// CreateProjectRequest is the POST body for a new project. An explicit null
// creator is stored as null; an absent one gets the default.
type CreateProjectRequest struct {
	Name     string               `json:"name"`
	ParentID *string              `json:"parentId"`
	Creator  models.Field[string] `json:"creator"`
}

// EditorHandler serves the editor file tree.
type EditorHandler struct {
	editor services.EditorService
	logger *zap.Logger
}

// NewEditorHandler creates a new editor handler.
func NewEditorHandler(editor services.EditorService, logger *zap.Logger) *EditorHandler {
	return &EditorHandler{editor: editor, logger: logger}
}

// RegisterRoutes registers the editor routes on the given mux.
func (h *EditorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/editor/files", h.Files)
	mux.HandleFunc("POST /api/editor/directories", h.CreateDirectory)
	mux.HandleFunc("POST /api/editor/projects", h.CreateProject)
}

// Files handles GET /api/editor/files
func (h *EditorHandler) Files(w http.ResponseWriter, r *http.Request) {
	tree, err := h.editor.Tree(r.Context())
	if err != nil {
		h.logger.Error("Failed to build file tree", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to load files")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tree)
}

// CreateDirectory handles POST /api/editor/directories
func (h *EditorHandler) CreateDirectory(w http.ResponseWriter, r *http.Request) {
	var req CreateDirectoryRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	dir, err := h.editor.CreateDirectory(r.Context(), services.CreateDirectoryRequest{
		Name:     req.Name,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.writeCreateError(w, "directory", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, dir.ToNode())
}

// CreateProject handles POST /api/editor/projects
func (h *EditorHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	p, err := h.editor.CreateProject(r.Context(), services.CreateProjectRequest{
		Name:     req.Name,
		ParentID: req.ParentID,
		Creator:  req.Creator,
	})
	if err != nil {
		h.writeCreateError(w, "project", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, p.ToNode())
}

func (h *EditorHandler) writeCreateError(w http.ResponseWriter, kind string, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		writeError(w, h.logger, http.StatusBadRequest, "invalid_request", "Name is required")
	case errors.Is(err, apperrors.ErrParentNotFound):
		writeError(w, h.logger, http.StatusNotFound, "parent_not_found", "Parent directory not found")
	default:
		h.logger.Error("Failed to create "+kind, zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal_error", "Failed to create "+kind)
	}
}
