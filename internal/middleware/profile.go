package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	crmSvc "folio/internal/domain/services/crm"
	"folio/internal/httputil"
)

// EnsureProfile creates the caller's profile row on their first request, so
// services can rely on the user record existing. Users already seen by this
// process are skipped.
func EnsureProfile(users crmSvc.UserService, logger *slog.Logger) func(http.Handler) http.Handler {
	var seen sync.Map

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := httputil.GetIdentity(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if _, done := seen.Load(identity.UserID); !done {
				_, err := users.GetProfile(r.Context(), crmSvc.Identity{
					UserID: identity.UserID,
					Email:  identity.Email,
					Name:   identity.Name,
				})
				if err != nil {
					logger.Error("failed to provision profile", "user_id", identity.UserID, "error", err)
					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				seen.Store(identity.UserID, struct{}{})
			}

			next.ServeHTTP(w, r)
		})
	}
}
