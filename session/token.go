package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying its signature. The client never trusts the claim for
// authorization — the backend remains authoritative — it is only used for
// expiry introspection. Tokens that are not parseable JWTs, or carry no exp,
// report the zero time.
func tokenExpiry(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
