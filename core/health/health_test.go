package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rememberme/core/health"
	"github.com/dmitrymomot/rememberme/core/router"
)

func ok(context.Context) error { return nil }

func TestLiveness(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/live", health.Liveness[*router.Context])

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		checks []health.Check
		status int
		want   health.Report
	}{
		{
			name:   "no checks",
			status: http.StatusOK,
			want:   health.Report{Status: "ready"},
		},
		{
			name: "all healthy",
			checks: []health.Check{
				{Name: "postgres", Fn: ok},
				{Name: "redis", Fn: ok},
			},
			status: http.StatusOK,
			want:   health.Report{Status: "ready", Checks: map[string]string{"postgres": "ok", "redis": "ok"}},
		},
		{
			name: "one failing",
			checks: []health.Check{
				{Name: "postgres", Fn: ok},
				{Name: "redis", Fn: func(context.Context) error { return errors.New("refused") }},
			},
			status: http.StatusServiceUnavailable,
			want:   health.Report{Status: "unavailable", Checks: map[string]string{"postgres": "ok", "redis": "unavailable"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New[*router.Context]()
			r.Get("/ready", health.Readiness[*router.Context](nil, tt.checks...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, w.Code)

			var got health.Report
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadinessTimeout(t *testing.T) {
	t.Parallel()

	slow := health.Check{Name: "mongo", Fn: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}

	r := router.New[*router.Context]()
	r.Get("/ready", health.ReadinessWithTimeout[*router.Context](nil, 20*time.Millisecond, slow))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
