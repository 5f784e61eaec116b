package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenMissing is returned when there is no token to inspect.
var ErrTokenMissing = errors.New("token is missing")

// TokenClaims is the subset of the backend's access-token claims the console reads.
// The console never holds the signing key, so claims are read without verification;
// the backend remains the only judge of a token's validity.
type TokenClaims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of a bearer token without verifying its signature.
func InspectToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, ErrTokenMissing
	}
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenExpired reports whether the token is missing, unreadable, or past its exp claim
// (minus leeway). Opaque tokens without an exp claim are treated as live.
func TokenExpired(tokenString string, now time.Time, leeway time.Duration) bool {
	if tokenString == "" {
		return true
	}
	claims, err := InspectToken(tokenString)
	if err != nil {
		// Not a JWT; let the backend decide.
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Add(leeway).Before(claims.ExpiresAt.Time)
}
