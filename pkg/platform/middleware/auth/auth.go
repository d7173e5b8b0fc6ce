// Package auth resolves the caller identity for every state-changing
// endpoint. The bearer token's subject is the ledger identity on whose
// behalf the operation runs; authority checks (owner, issuer, holder) happen
// in the services against this identity.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"soulbound/pkg/domain"
)

// TokenValidator validates a bearer token and returns the caller identity.
type TokenValidator interface {
	Validate(tokenString string) (domain.Identity, error)
}

type contextKeyCaller struct{}

// GetCaller retrieves the authenticated caller identity from the context.
// Returns the zero identity if the request was not authenticated.
func GetCaller(ctx context.Context) domain.Identity {
	if caller, ok := ctx.Value(contextKeyCaller{}).(domain.Identity); ok {
		return caller
	}
	return ""
}

// WithCaller injects a caller identity into a context. Used by tests and by
// the owner-token path, which authenticates without a JWT.
func WithCaller(ctx context.Context, caller domain.Identity) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + errCode + `","error_description":"` + errDesc + `"}`))
}

// RequireCaller returns middleware that validates the bearer token and
// stores the caller identity in the request context.
func RequireCaller(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token")
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			caller, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token", "error", err)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(ctx, caller)))
		})
	}
}
