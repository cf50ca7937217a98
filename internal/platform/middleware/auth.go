package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"fides/internal/token"
	"fides/pkg/requestcontext"
)

// TokenValidator validates bearer tokens for the auth middleware.
type TokenValidator interface {
	Validate(tokenString string) (*token.Claims, error)
}

type contextKeyCustomerID struct{}
type contextKeyEmail struct{}
type contextKeyRole struct{}

// GetCustomerID retrieves the authenticated customer ID from the context.
// Empty for admin principals without a customer record.
func GetCustomerID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyCustomerID{}).(string); ok {
		return v
	}
	return ""
}

// GetEmail retrieves the authenticated principal's email from the context.
func GetEmail(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyEmail{}).(string); ok {
		return v
	}
	return ""
}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRole{}).(string); ok {
		return v
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

// RequireAuth validates the bearer token and stores the principal in context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, contextKeyCustomerID{}, claims.CustomerID)
			ctx = context.WithValue(ctx, contextKeyEmail{}, claims.Email)
			ctx = context.WithValue(ctx, contextKeyRole{}, claims.Role)
			ctx = requestcontext.WithActor(ctx, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated principals whose role does not match.
// Must run after RequireAuth.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if GetRole(ctx) != role {
				logger.WarnContext(ctx, "forbidden access - role mismatch",
					"required_role", role,
					"role", GetRole(ctx),
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"forbidden","error_description":"Insufficient permissions"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
