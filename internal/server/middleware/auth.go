// Package middleware holds the HTTP middleware chain: bearer auth and request
// logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"medgate/backend/internal/security"
	"medgate/backend/internal/server/respond"
)

type contextKey string

const requesterIDKey contextKey = "requester_id"

// RequesterID returns the authenticated user ID placed in the context by
// Auth, or "" when the request was not authenticated.
func RequesterID(ctx context.Context) string {
	id, _ := ctx.Value(requesterIDKey).(string)
	return id
}

// WithRequesterID returns a context carrying the given requester ID. Used by
// tests and by the auth middleware.
func WithRequesterID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requesterIDKey, id)
}

// Auth validates the Authorization bearer token and injects the user ID into
// the request context. Requests without a valid token get 401.
func Auth(tokens *security.TokenProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				respond.ErrorMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			userID, err := tokens.ValidateAccess(strings.TrimPrefix(header, prefix))
			if err != nil {
				respond.ErrorMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithRequesterID(r.Context(), userID)))
		})
	}
}
