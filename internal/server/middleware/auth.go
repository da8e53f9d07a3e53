// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/jobtrack/internal/auth"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionKey is the context key for the authenticated session.
const sessionKey ContextKey = "session"

// Authenticator resolves a bearer token to an open session.
type Authenticator interface {
	Authenticate(token string) (*auth.Session, error)
}

// AuthMiddleware rejects requests without a valid bearer token for an open
// session and puts the session in the request context.
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			sess, err := authn.Authenticate(token)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth attaches the session when a valid token is present and lets
// every request through.
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := BearerToken(r); ok {
				if sess, err := authn.Authenticate(token); err == nil {
					r = r.WithContext(WithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header. The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// GetSession extracts the authenticated session from the request context.
func GetSession(r *http.Request) (*auth.Session, error) {
	sess, ok := r.Context().Value(sessionKey).(*auth.Session)
	if !ok || sess == nil {
		return nil, fmt.Errorf("session not found in request context")
	}
	return sess, nil
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
