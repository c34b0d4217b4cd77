package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/transpass/transpass/internal/api/response"
	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

type contextKey string

const claimsKey contextKey = "claims"

// Auth returns middleware that validates JWT Bearer tokens and injects claims into context.
func Auth(authService *core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if token == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				response.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole rejects callers whose token does not carry role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			if claims == nil {
				response.WriteError(w, http.StatusUnauthorized, "missing claims")
				return
			}
			if claims.Role != role {
				response.WriteError(w, http.StatusForbidden, "requires a "+role+" account")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, claims *model.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims extracts JWT claims from the request context.
func GetClaims(ctx context.Context) *model.JWTClaims {
	claims, _ := ctx.Value(claimsKey).(*model.JWTClaims)
	return claims
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
