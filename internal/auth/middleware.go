package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/sakif/leetpush/internal/model"
	"github.com/sakif/leetpush/internal/repository"
)

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow our values.
type contextKey string

const credentialKey contextKey = "credential"

// RequireSession is a middleware for local API routes that call the backend
// on the user's behalf.
//
// It loads the stored credential, rejects the request with 401 when there
// is no usable session token, and otherwise stores the credential in the
// request context for the handler.
func RequireSession(store repository.CredentialRepository, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, err := store.Load(r.Context())
			if err != nil {
				http.Error(w, `{"error":"Internal","message":"could not read credentials"}`, http.StatusInternalServerError)
				return
			}
			if err := CheckToken(cred.BearerToken, now()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"AuthExpired","message":"log in to continue"}`))
				return
			}

			ctx := context.WithValue(r.Context(), credentialKey, cred)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CredentialFromContext returns the credential stored by RequireSession.
//
// Usage in handlers:
//
//	cred, ok := auth.CredentialFromContext(r.Context())
//	if !ok {
//	    // route is not behind RequireSession
//	}
func CredentialFromContext(ctx context.Context) (*model.Credential, bool) {
	cred, ok := ctx.Value(credentialKey).(*model.Credential)
	return cred, ok && cred != nil
}
