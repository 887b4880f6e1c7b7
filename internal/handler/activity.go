package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/config"
	crmSvc "folio/internal/domain/services/crm"
	"folio/internal/httputil"
)

// ActivityHandler serves the activity timeline
type ActivityHandler struct {
	activityService crmSvc.ActivityService
	logger          *slog.Logger
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService crmSvc.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// ListActivity returns recent activity, optionally for one client
// GET /api/activity?client_id=...&limit=50
func (h *ActivityHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	clientID, err := httputil.QueryID(r, "client_id")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := httputil.QueryInt(r, "limit", config.DefaultActivityLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	activities, err := h.activityService.ListActivity(r.Context(), httputil.GetUserID(r), clientID, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, activities)
}
