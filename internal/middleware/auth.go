package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"autolot/internal/session"
	"autolot/models"
)

type contextKey string

const identityKey contextKey = "identity"

// IdentityFrom extracts the caller identity placed by WithIdentity, or
// nil for anonymous requests
func IdentityFrom(ctx context.Context) *models.Identity {
	ident, _ := ctx.Value(identityKey).(*models.Identity)
	return ident
}

// WithIdentity resolves the session cookie once per request and stores
// the identity in the request context
func WithIdentity(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ident := sessions.Identity(r); ident != nil {
				r = r.WithContext(context.WithValue(r.Context(), identityKey, ident))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects anonymous requests
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFrom(r.Context()) == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests not carrying an admin identity
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFrom(r.Context())
		if ident == nil {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !ident.IsAdmin {
			writeJSONError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
