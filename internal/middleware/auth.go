package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"folio/internal/auth"
	"folio/internal/httputil"
)

// publicPaths are served without a token
var publicPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware verifies the Bearer token and stores the caller identity
// in the request context
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			r = httputil.WithIdentity(r, httputil.Identity{
				UserID: claims.GetUserID(),
				Email:  claims.Email,
				Name:   claims.FullName(),
			})
			next.ServeHTTP(w, r)
		})
	}
}
