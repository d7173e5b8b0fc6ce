// Package requesttime provides middleware and utilities for request-scoped
// time. Every operation within a single request observes the same "now",
// which matters here because access-grant expiry is a pure comparison of a
// stored expiresAt against the caller-visible current time. There is no
// background expiry sweep.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type contextKeyRequestTime struct{}

// Middleware captures the current time at the start of the request and
// stores it in the context so all expiry checks and event timestamps within
// the request agree.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyRequestTime{}, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Now retrieves the request-scoped time from context, falling back to
// time.Now() for non-HTTP contexts (CLI, tests without middleware).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Tests use this to
// simulate the passage of time when asserting grant expiry.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}
