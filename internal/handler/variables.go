package handler

import (
	"log/slog"
	"net/http"

	docgenSvc "folio/internal/domain/services/docgen"
	"folio/internal/httputil"
)

// VariableHandler previews auto-populated variables
type VariableHandler struct {
	resolver docgenSvc.VariableResolver
	logger   *slog.Logger
}

// NewVariableHandler creates a new variable handler
func NewVariableHandler(resolver docgenSvc.VariableResolver, logger *slog.Logger) *VariableHandler {
	return &VariableHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// ResolveVariables returns system, user, client and project variables
// GET /api/variables?client_id=...&project_id=...
func (h *VariableHandler) ResolveVariables(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	clientID, err := httputil.QueryID(r, "client_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	projectID, err := httputil.QueryID(r, "project_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	vars, err := h.resolver.Resolve(r.Context(), userID, clientID, projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, vars)
}
