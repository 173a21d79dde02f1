package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"liveattendance/internal/attendance"
	"liveattendance/internal/checkin"
	"liveattendance/internal/geo"
	"liveattendance/internal/http/middleware"
	"liveattendance/internal/location"
	"liveattendance/internal/ticket"
)

type CheckInHandler struct {
	Fence      geo.Fence
	Submitter  checkin.Submitter
	Collection string
	FixTimeout time.Duration

	Tickets  *ticket.Issuer
	Ledger   *ticket.Ledger
	Sessions *Sessions
}

func Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

type officeCfgResp struct {
	OfficeLat float64 `json:"office_lat"`
	OfficeLng float64 `json:"office_lng"`
	RadiusM   float64 `json:"radius_m"`
}

func (h *CheckInHandler) GetOfficeConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, officeCfgResp{
		OfficeLat: h.Fence.Reference.Lat,
		OfficeLng: h.Fence.Reference.Lng,
		RadiusM:   h.Fence.ThresholdMeters,
	})
}

type scanReq struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Scan evaluates the posted fix. An admitted fix gets a single-use ticket for
// the submit that follows.
func (h *CheckInHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json", nil)
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "invalid_fix", "lat and lng are required", nil)
		return
	}
	fix := geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	if !fix.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_fix", "lat/lng out of range", nil)
		return
	}

	presenter := &httpPresenter{}
	flow := checkin.New(checkin.Options{
		Provider:   location.NewStatic(fix),
		Fence:      h.Fence,
		Submitter:  h.Submitter,
		Presenter:  presenter,
		FixTimeout: h.FixTimeout,
	})

	sess, err := flow.Begin(r.Context())
	switch {
	case errors.Is(err, checkin.ErrOutOfRange):
		writeError(w, http.StatusUnprocessableEntity, "out_of_range", checkin.MsgOutOfRange, map[string]any{
			"distance_m": round1(sess.Decision.DistanceMeters),
			"radius_m":   h.Fence.ThresholdMeters,
		})
		return
	case err != nil:
		log.Printf("[http] scan failed: %v", err)
		writeError(w, http.StatusServiceUnavailable, "fix_unavailable", checkin.MsgFixUnavailable, nil)
		return
	}

	tok, exp, err := h.Tickets.Sign(sess.ID, sess.Decision.DistanceMeters)
	if err != nil {
		flow.Cancel(sess)
		log.Printf("[http] sign ticket: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to issue ticket", nil)
		return
	}
	h.Sessions.Put(flow, sess, exp)

	writeJSON(w, http.StatusOK, map[string]any{
		"result":      "admitted",
		"session_id":  sess.ID,
		"distance_m":  round1(sess.Decision.DistanceMeters),
		"ticket":      tok,
		"expires_at":  exp.UTC().Format(time.RFC3339),
		"next_action": "submit",
	})
}

type submitReq struct {
	Name string `json:"name"`
}

// Submit writes the record for the session named by the bearer ticket.
func (h *CheckInHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.TicketFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_ticket", ticket.ErrInvalid.Error(), nil)
		return
	}

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json", nil)
		return
	}
	// checked before the ticket is spent so the user can retry
	if err := attendance.ValidateName(attendance.NormalizeName(req.Name)); err != nil {
		code := "invalid_name"
		if errors.Is(err, attendance.ErrEmptyName) {
			code = "empty_name"
		}
		writeError(w, http.StatusBadRequest, code, err.Error(), nil)
		return
	}

	if err := h.Ledger.Consume(claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, http.StatusConflict, "ticket_used", err.Error(), nil)
		return
	}
	p, ok := h.Sessions.Take(claims.ID)
	if !ok {
		writeError(w, http.StatusConflict, "stale_session", checkin.ErrStaleSession.Error(), nil)
		return
	}

	rec, err := p.flow.Submit(r.Context(), p.sess, req.Name)
	if err != nil {
		var se *attendance.SubmitError
		switch {
		case errors.As(err, &se):
			writeError(w, http.StatusBadGateway, "submit_failed", se.Message, nil)
		case errors.Is(err, checkin.ErrStaleSession):
			writeError(w, http.StatusConflict, "stale_session", err.Error(), nil)
		default:
			writeError(w, http.StatusInternalServerError, "internal", err.Error(), nil)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"result":  "checked_in",
		"message": checkin.MsgSuccess,
		"path":    attendance.Path(h.Collection, rec.Name),
		"record":  rec,
	})
}

// Cancel spends the ticket and drops its session without writing.
func (h *CheckInHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.TicketFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_ticket", ticket.ErrInvalid.Error(), nil)
		return
	}
	_ = h.Ledger.Consume(claims.ID, claims.ExpiresAt.Time)
	if p, ok := h.Sessions.Take(claims.ID); ok {
		p.flow.Cancel(p.sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

// httpPresenter has no screen; the JSON response carries the outcome.
type httpPresenter struct{}

func (p *httpPresenter) ShowMessage(msg string) {
	log.Printf("[http] flow message: %s", msg)
}

func (p *httpPresenter) OpenLocationSettings() {}
func (p *httpPresenter) ShowScanning()         {}
func (p *httpPresenter) StopScanning()         {}
func (p *httpPresenter) ShowOutOfRange()       {}
func (p *httpPresenter) ShowSuccess()          {}

func (p *httpPresenter) PromptForName(ctx context.Context) (string, bool, error) {
	return "", false, nil
}

// ===== helpers (json) =====

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string, details map[string]any) {
	body := map[string]any{"code": errCode, "message": msg}
	if details != nil {
		body["details"] = details
	}
	writeJSON(w, code, map[string]any{"error": body})
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
