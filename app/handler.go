// app/handler.go
package app

import (
	"log"
	"net/http"

	"liveattendance/internal/attendance"
	"liveattendance/internal/config"
	"liveattendance/internal/http/handlers"
	"liveattendance/internal/http/middleware"
	"liveattendance/internal/http/router"
	"liveattendance/internal/store"
	"liveattendance/internal/ticket"
)

func NewHandler(cfg config.Config, st store.Store) (http.Handler, error) {
	loc, err := cfg.CheckIn.Location()
	if err != nil {
		return nil, err
	}
	collection := cfg.Store.Collection
	if collection == "" {
		collection = attendance.DefaultCollection
	}

	if cfg.Server.TicketSecret == "" {
		log.Println("[app] TICKET_SECRET not set, using development secret")
	}
	proxies, err := middleware.ParseProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	tickets := ticket.NewIssuer(cfg.Server.TicketSecret, cfg.Server.TicketTTL.Std())

	return router.New(router.Deps{
		CheckIn: &handlers.CheckInHandler{
			Fence:      cfg.Geofence.Fence(),
			Submitter:  attendance.NewSubmitter(st, collection, loc),
			Collection: collection,
			FixTimeout: cfg.CheckIn.FixTimeout.Std(),
			Tickets:    tickets,
			Ledger:     ticket.NewLedger(),
			Sessions:   handlers.NewSessions(),
		},
		Debug: &handlers.DebugHandler{
			Store:      st,
			Collection: collection,
			Production: cfg.Server.Production(),
		},
		Tickets:        tickets,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: proxies,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	}), nil
}
