package requesttime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareStampsRequestTime(t *testing.T) {
	var seen time.Time
	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = Now(r.Context())
	}))

	before := time.Now()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	after := time.Now()

	require.False(t, seen.IsZero())
	assert.False(t, seen.Before(before))
	assert.False(t, seen.After(after))
}

func TestWithTimeOverrides(t *testing.T) {
	future := time.Now().Add(48 * time.Hour)
	ctx := WithTime(context.Background(), future)
	assert.Equal(t, future, Now(ctx))
}

func TestNowFallsBackWithoutMiddleware(t *testing.T) {
	got := Now(context.Background())
	assert.WithinDuration(t, time.Now(), got, time.Second)
}
