package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"folio/internal/domain"
	"folio/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (*ecdsa.PrivateKey, JWTVerifier) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := NewStaticVerifier(func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }, logger)
	return key, verifier
}

func sign(t *testing.T, key *ecdsa.PrivateKey, claims models.AccessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() models.AccessClaims {
	return models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "11111111-1111-1111-1111-111111111111",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email:        "jane@example.com",
		Role:         "authenticated",
		UserMetadata: map[string]interface{}{"full_name": "Jane Doe"},
	}
}

func TestVerifyToken_Valid(t *testing.T) {
	key, verifier := newTestVerifier(t)

	claims, err := verifier.VerifyToken(sign(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", claims.GetUserID())
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "Jane Doe", claims.FullName())
}

func TestVerifyToken_Rejections(t *testing.T) {
	key, verifier := newTestVerifier(t)
	otherKey, _ := newTestVerifier(t)

	tests := []struct {
		name  string
		token func() string
	}{
		{"expired", func() string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
			return sign(t, key, c)
		}},
		{"no expiry", func() string {
			c := validClaims()
			c.ExpiresAt = nil
			return sign(t, key, c)
		}},
		{"no subject", func() string {
			c := validClaims()
			c.Subject = ""
			return sign(t, key, c)
		}},
		{"anon role", func() string {
			c := validClaims()
			c.Role = "anon"
			return sign(t, key, c)
		}},
		{"anonymous user", func() string {
			c := validClaims()
			c.IsAnonymous = true
			return sign(t, key, c)
		}},
		{"wrong key", func() string { return sign(t, otherKey, validClaims()) }},
		{"hmac algorithm", func() string {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
			require.NoError(t, err)
			return token
		}},
		{"garbage", func() string { return "not.a.token" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := verifier.VerifyToken(tt.token())
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}

func TestAccessClaims_FullNameFallback(t *testing.T) {
	c := models.AccessClaims{UserMetadata: map[string]interface{}{"name": "J"}}
	assert.Equal(t, "J", c.FullName())
	assert.Equal(t, "", (&models.AccessClaims{}).FullName())
}
