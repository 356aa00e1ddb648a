package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testIssuer = "gophfriends"

type accessClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// AccessToken signs a fresh access token for userID the way the external
// credential issuer does.
func AccessToken(t testing.TB, secret string, userID uuid.UUID) string {
	t.Helper()
	return SignAccessToken(t, secret, testIssuer, userID, time.Now(), 15*time.Minute)
}

// SignAccessToken signs an HS256 access token valid for ttl from issuedAt.
func SignAccessToken(t testing.TB, secret, issuer string, userID uuid.UUID, issuedAt time.Time, ttl time.Duration) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		TokenType: "access",
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign access token: %v", err)
	}
	return token
}
