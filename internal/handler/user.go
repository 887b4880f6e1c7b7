package handler

import (
	"log/slog"
	"net/http"

	crmSvc "folio/internal/domain/services/crm"
	"folio/internal/httputil"
)

// UserHandler handles the caller's profile
type UserHandler struct {
	userService crmSvc.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService crmSvc.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// GetProfile returns the caller's profile
// GET /api/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := httputil.GetIdentity(r)

	user, err := h.userService.GetProfile(r.Context(), crmSvc.Identity{
		UserID: identity.UserID,
		Email:  identity.Email,
		Name:   identity.Name,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile updates the caller's name and business name
// PATCH /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req crmSvc.UpdateProfileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
