package middleware

import (
	"context"
	"net/http"

	jwtinfra "github.com/unalone/unalone-api/internal/infrastructure/jwt"
	"github.com/unalone/unalone-api/internal/transport/http/cookie"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// Auth returns middleware that validates the access-token cookie and
// injects the resolved claims into the request context.
func Auth(provider *jwtinfra.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookie.AccessName)
			if err != nil || c.Value == "" {
				http.Error(w, `{"error":"unauthenticated"}`, http.StatusUnauthorized)
				return
			}
			claims, err := provider.Verify(c.Value)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts access-token claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.Claims)
	return c, ok
}
