package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// TokenClaims is the subset of claims the middleware propagates.
type TokenClaims struct {
	UserID string
	Role   string
	JTI    string
}

type contextKeyUserID struct{}
type contextKeyRole struct{}
type contextKeyToken struct{}

// GetUserID retrieves the authenticated user id from the context.
func GetUserID(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyUserID{}).(string)
	return v
}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyRole{}).(string)
	return v
}

// GetToken retrieves the raw bearer token from the context. Sign-out needs it
// to revoke the presented credential rather than some other session's.
func GetToken(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyToken{}).(string)
	return v
}

const unauthorizedBody = `{"message":"Invalid or expired token","code":"unauthorized"}`

// RequireAuth rejects requests without a valid bearer token and stores the
// claims in the request context for downstream handlers.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized: missing bearer token",
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized: token rejected",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, contextKeyUserID{}, claims.UserID)
			ctx = context.WithValue(ctx, contextKeyRole{}, claims.Role)
			ctx = context.WithValue(ctx, contextKeyToken{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(unauthorizedBody))
}
