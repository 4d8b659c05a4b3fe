package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/leetpush/internal/apperror"
)

// signToken creates an HS256 token the way the backend does. The secret is
// irrelevant to the client, which never verifies signatures.
func signToken(t *testing.T, exp *time.Time) string {
	t.Helper()
	c := jwt.MapClaims{"github_id": 583231}
	if exp != nil {
		c["exp"] = exp.Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

// =========================================================================
// TOKEN EXPIRY TESTS
// =========================================================================

func TestTokenExpiry_ReadsExpClaim(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := signToken(t, &want)

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatal("TokenExpiry() ok = false, want true")
	}
	if !got.Equal(want) {
		t.Errorf("TokenExpiry() = %v, want %v", got, want)
	}
}

func TestTokenExpiry_NoExpClaim(t *testing.T) {
	if _, ok := TokenExpiry(signToken(t, nil)); ok {
		t.Error("TokenExpiry() ok = true for a token without exp")
	}
}

func TestTokenExpiry_NotAJWT(t *testing.T) {
	if _, ok := TokenExpiry("opaque-session-token"); ok {
		t.Error("TokenExpiry() ok = true for a non-JWT token")
	}
}

// =========================================================================
// CHECK TOKEN TESTS
// =========================================================================

func TestCheckToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name        string
		token       string
		wantExpired bool
	}{
		{name: "empty token", token: "", wantExpired: true},
		{name: "expired token", token: signToken(t, &past), wantExpired: true},
		{name: "expiring exactly now", token: signToken(t, &now), wantExpired: true},
		{name: "valid token", token: signToken(t, &future), wantExpired: false},
		{name: "token without exp", token: signToken(t, nil), wantExpired: false},
		{name: "opaque token left to the backend", token: "opaque", wantExpired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckToken(tt.token, now)
			if got := errors.Is(err, apperror.ErrAuthExpired); got != tt.wantExpired {
				t.Errorf("CheckToken() error = %v, want expired=%v", err, tt.wantExpired)
			}
			if IsAuthError(err) != tt.wantExpired {
				t.Errorf("IsAuthError() disagrees with errors.Is for %v", err)
			}
		})
	}
}
