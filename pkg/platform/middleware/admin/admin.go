// Package admin guards registry-owner endpoints. The owner presents a
// shared X-Owner-Token; only its bcrypt hash is held in configuration.
package admin

import (
	"log/slog"
	"net/http"

	"soulbound/pkg/domain"
	authmw "soulbound/pkg/platform/middleware/auth"
	"soulbound/pkg/secrets"
)

// RequireOwnerToken returns middleware that verifies the X-Owner-Token
// header against the configured bcrypt hash and stamps the owner identity
// into the request context as the caller.
func RequireOwnerToken(tokenHash string, owner domain.Identity, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Owner-Token")
			if token == "" || secrets.Verify(token, tokenHash) != nil {
				logger.WarnContext(r.Context(), "owner token mismatch",
					"path", r.URL.Path,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"owner token required"}`))
				return
			}

			ctx := authmw.WithCaller(r.Context(), owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
