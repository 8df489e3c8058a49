package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(h *HealthHandler) *gin.Engine {
	r := gin.New()
	r.GET("/healthz", h.Live)
	r.HEAD("/healthz", h.Live)
	r.OPTIONS("/healthz", h.Live)
	r.GET("/readyz", h.Ready)
	return r
}

func TestLive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method     string
		wantStatus int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodOptions, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(NewHealthHandler(nil))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/healthz", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
				t.Errorf("expected Cache-Control no-store, got %q", cc)
			}
		})
	}
}

func TestReady(t *testing.T) {
	t.Parallel()

	ok := CheckFunc(func(ctx context.Context) error { return nil })
	down := CheckFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		checks     map[string]Checker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "all dependencies up",
			checks:     map[string]Checker{"db": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"db": "ok", "redis": "ok"},
		},
		{
			name:       "redis down",
			checks:     map[string]Checker{"db": ok, "redis": down},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"db": "ok", "redis": "unavailable"},
		},
		{
			name:       "nil checker skipped",
			checks:     map[string]Checker{"db": ok, "redis": nil},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"db": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(NewHealthHandler(tt.checks))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Fatalf("expected %d checks, got %v", len(tt.wantChecks), body.Checks)
			}
			for k, v := range tt.wantChecks {
				if body.Checks[k] != v {
					t.Errorf("check %s: expected %q, got %q", k, v, body.Checks[k])
				}
			}
		})
	}
}
