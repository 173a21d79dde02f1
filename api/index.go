// Package handler is the serverless entry point. Every path under /api is
// served by the same router as cmd/server.
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"liveattendance/app"
)

var (
	once    sync.Once
	srv     *app.Server
	initErr error

	newServer = app.NewFromEnv
)

func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		srv, initErr = newServer()
		if initErr != nil {
			log.Printf("[api] startup failed: %v", initErr)
		}
	})
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "startup_failed", "message": initErr.Error()},
		})
		return
	}

	h := srv.Handler
	if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api" {
		http.StripPrefix("/api", h).ServeHTTP(w, r)
		return
	}
	h.ServeHTTP(w, r)
}
