package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the JWT claims structure issued by the identity provider (Supabase Auth).
type AccessClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	Role         string                 `json:"role"` // "authenticated" or "anon"
	SessionID    string                 `json:"session_id"`
	IsAnonymous  bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}

// FullName returns the display name carried in user metadata, if any
func (c *AccessClaims) FullName() string {
	for _, key := range []string{"full_name", "name"} {
		if name, ok := c.UserMetadata[key].(string); ok && name != "" {
			return name
		}
	}
	return ""
}
