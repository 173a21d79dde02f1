package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"liveattendance/app"
	"liveattendance/internal/config"
	"liveattendance/internal/store"
)

func reset(t *testing.T, fn func() (*app.Server, error)) {
	t.Helper()
	prev := newServer
	once, srv, initErr, newServer = sync.Once{}, nil, nil, fn
	t.Cleanup(func() {
		once, srv, initErr, newServer = sync.Once{}, nil, nil, prev
	})
}

// TestHandler_StartupFailure verifies a failed init answers 500 on every request.
func TestHandler_StartupFailure(t *testing.T) {
	reset(t, func() (*app.Server, error) { return nil, errors.New("DATABASE_URL is not set") })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		Handler(rec, httptest.NewRequest(http.MethodGet, "/api/", nil))
		if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), "startup_failed") {
			t.Errorf("request %d = %d %s", i, rec.Code, rec.Body.String())
		}
	}
}

func TestHandler_StripsAPIPrefix(t *testing.T) {
	reset(t, func() (*app.Server, error) {
		cfg := config.Default()
		cfg.Store.Driver = store.DriverMemory
		return app.New(cfg, store.NewMemory())
	})

	for _, path := range []string{"/api/config/office", "/config/office"} {
		rec := httptest.NewRecorder()
		Handler(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "radius_m") {
			t.Errorf("%s = %d %s", path, rec.Code, rec.Body.String())
		}
	}
}
