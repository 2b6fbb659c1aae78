package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserKey   contextKey = "user"
	APIKeyKey contextKey = "api_key"
)

// public paths skip authentication
var public = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// APIKeyAuth resolves the calling user from an API key in the Authorization header.
// When trustedHeader is non-empty and present on the request, its value is taken as
// the user id set by an upstream auth proxy.
func APIKeyAuth(validKeys map[string]string, trustedHeader string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			if trustedHeader != "" {
				if user := strings.TrimSpace(r.Header.Get(trustedHeader)); user != "" {
					if ValidateUserID(user) != nil {
						writeError(w, http.StatusUnauthorized, "invalid user identity")
						return
					}
					noteUser(r.Context(), user)
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserKey, user)))
					return
				}
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			var user string
			for u, key := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					user = u
					break
				}
			}
			if user == "" {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			noteUser(r.Context(), user)
			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, APIKeyKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user id, or "" when absent.
func GetUserFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok {
		return user
	}
	return ""
}

// WithUser stores a user id in ctx.
func WithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
