package govee

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// minTokenLength filters out trivially malformed bearer tokens before any
// JWT parsing is attempted.
const minTokenLength = 10

// tokenValid reports whether tok can still authenticate requests at the
// given instant.
//
// A token is valid only if it is present, at least minTokenLength long, and
// its embedded expiry (when decodable) lies in the future. The platform
// issues JWTs but never shares the signing secret, so the claims are read
// without signature verification. Tokens that do not parse as JWTs are
// treated as invalid rather than erroring: the caller's remedy is a fresh
// login either way.
func tokenValid(tok string, now time.Time) bool {
	if len(tok) < minTokenLength {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		// No embedded expiry; assume the token outlives the process.
		return true
	}

	return exp.After(now)
}
