// Package auth covers the client side of authentication: building the GitHub
// login URL, checking the backend session token before it is used, and
// guarding local API routes that need a session.
//
// The backend signs its session tokens with a secret we never see, so
// tokens are read here without signature verification. That is enough to
// spot an expired session early; the backend still has the final word and
// answers 401 for anything it does not accept.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/leetpush/internal/apperror"
)

var parser = jwt.NewParser()

// TokenExpiry returns the "exp" claim of a session token. ok is false when
// the token is not a JWT or carries no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	var c jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &c); err != nil {
		return time.Time{}, false
	}
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// CheckToken returns an AuthExpired error when token is empty or its expiry
// is not after now. Tokens that cannot be decoded are passed through for
// the backend to judge.
func CheckToken(token string, now time.Time) error {
	if token == "" {
		return apperror.AuthExpired("not logged in")
	}
	exp, ok := TokenExpiry(token)
	if ok && !exp.After(now) {
		return apperror.AuthExpired("session expired at " + exp.UTC().Format(time.RFC3339))
	}
	return nil
}

// IsAuthError reports whether err means the user must log in again.
func IsAuthError(err error) bool {
	return errors.Is(err, apperror.ErrAuthExpired)
}
