package router

import (
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"liveattendance/internal/http/handlers"
	"liveattendance/internal/http/middleware"
	"liveattendance/internal/ticket"
)

type Deps struct {
	CheckIn *handlers.CheckInHandler
	Debug   *handlers.DebugHandler
	Tickets *ticket.Issuer

	AllowedOrigins []string
	TrustedProxies []netip.Prefix
	RateLimit      float64
	RateBurst      int
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.TrustedRealIP(d.TrustedProxies))
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.AllowedOrigins))

	r.Get("/", handlers.Root)
	r.Get("/config/office", d.CheckIn.GetOfficeConfig)

	limiter := middleware.NewRateLimiter(d.RateLimit, d.RateBurst)
	r.Route("/checkin", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Post("/scan", d.CheckIn.Scan)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireTicket(d.Tickets))
			r.Post("/submit", d.CheckIn.Submit)
			r.Post("/cancel", d.CheckIn.Cancel)
		})
	})

	if d.Debug != nil {
		r.Post("/attendance/debug/reset", d.Debug.Reset)
	}
	return r
}
