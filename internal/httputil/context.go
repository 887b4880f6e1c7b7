package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	identityKey contextKey = "identity"
)

// Identity is the authenticated caller extracted from the access token
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// WithIdentity adds the caller identity to the request context
func WithIdentity(r *http.Request, identity Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the caller identity; ok is false for anonymous requests
func GetIdentity(r *http.Request) (Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(Identity)
	return identity, ok
}

// GetUserID retrieves the caller's user ID, returns empty string if not found
func GetUserID(r *http.Request) string {
	identity, _ := GetIdentity(r)
	return identity.UserID
}
