package handler

import (
	"log/slog"
	"net/http"

	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/httputil"
)

// VersionHandler handles document version HTTP requests
type VersionHandler struct {
	versionService docgenSvc.VersionService
	logger         *slog.Logger
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(versionService docgenSvc.VersionService, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{
		versionService: versionService,
		logger:         logger,
	}
}

type snapshotRequest struct {
	ChangeNotes *string `json:"changeNotes"`
}

// ListVersions returns a document's versions, newest first
// GET /api/documents/{id}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	versions, err := h.versionService.List(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, versions)
}

// CreateVersion snapshots the document's current content
// POST /api/documents/{id}/versions
func (h *VersionHandler) CreateVersion(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	// Body is optional
	var req snapshotRequest
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	version, err := h.versionService.Snapshot(r.Context(), userID, id, req.ChangeNotes)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, version)
}

// RestoreVersion restores a document to a stored version
// POST /api/documents/{id}/versions/{versionId}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	versionID, ok := pathID(w, r, "versionId")
	if !ok {
		return
	}

	doc, err := h.versionService.Restore(r.Context(), userID, id, versionID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}
