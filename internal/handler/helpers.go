package handler

import (
	"errors"
	"net/http"

	"folio/internal/domain"
	"folio/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr) && validationErr.Field != "":
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, validationErr.Error(), map[string]interface{}{
			"field": validationErr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID extracts a UUID path value, responding 400 when it is malformed
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, err := httputil.PathID(r, name)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
