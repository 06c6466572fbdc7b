package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func pingOK() HealthChecker {
	return pingFunc(func(context.Context) error { return nil })
}

func pingErr(msg string) HealthChecker {
	return pingFunc(func(context.Context) error { return errors.New(msg) })
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NewHealthHandler(nil, nil).Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		db, cache    HealthChecker
		wantCode     int
		wantStatus   string
		wantPostgres string
	}{
		{
			name: "all healthy", db: pingOK(), cache: pingOK(),
			wantCode: http.StatusOK, wantStatus: "ok", wantPostgres: "ok",
		},
		{
			name: "database down", db: pingErr("connection refused"), cache: pingOK(),
			wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy",
			wantPostgres: "error: connection refused",
		},
		{
			name: "redis down", db: pingOK(), cache: pingErr("timeout"),
			wantCode: http.StatusServiceUnavailable, wantStatus: "unhealthy",
			wantPostgres: "ok",
		},
		{
			// nil dependencies report as not configured without failing readiness
			name:     "nothing configured",
			wantCode: http.StatusOK, wantStatus: "ok", wantPostgres: "not configured",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			NewHealthHandler(tt.db, tt.cache).Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("body status = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Checks["postgres"] != tt.wantPostgres {
				t.Errorf("postgres check = %q, want %q", resp.Checks["postgres"], tt.wantPostgres)
			}
		})
	}
}
