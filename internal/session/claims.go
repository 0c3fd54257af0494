package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiresAt extracts the expiry timestamp from a JWT access token
// without verifying its signature. The client has no signing secret;
// verification is the server's job. Local inspection only decides whether
// a network call is worth attempting at all.
//
// Returns:
//   - time.Time: Expiry timestamp (zero when absent)
//   - bool: false when the token is not a parseable JWT or has no exp claim
func TokenExpiresAt(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpired reports whether a JWT access token has passed its expiry.
// Opaque (non-JWT) tokens and tokens without an exp claim are never
// considered expired locally.
func TokenExpired(token string) bool {
	expiry, ok := TokenExpiresAt(token)
	if !ok {
		return false
	}
	return time.Now().After(expiry)
}
