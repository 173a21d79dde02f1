package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"liveattendance/internal/attendance"
)

type Deleter interface {
	Delete(ctx context.Context, collection, key string) error
}

type DebugHandler struct {
	Store      Deleter
	Collection string
	Production bool
}

type debugResetReq struct {
	Name string `json:"name"`
}

type debugResetResp struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

// Reset: DEV ONLY. Deletes the record stored under one name so it can be
// checked in again from a clean slate.
func (h *DebugHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if h.Production {
		http.Error(w, "forbidden in production", http.StatusForbidden)
		return
	}

	var req debugResetReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	name := attendance.NormalizeName(req.Name)
	if err := attendance.ValidateName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Store.Delete(ctx, h.Collection, name); err != nil {
		http.Error(w, "reset failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, debugResetResp{
		OK:      true,
		Path:    attendance.Path(h.Collection, name),
		Message: "reset done",
	})
}
