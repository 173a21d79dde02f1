package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"liveattendance/internal/ticket"
)

type ctxKey int

const ticketKey ctxKey = iota

// BearerToken returns the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	tok := strings.TrimSpace(parts[1])
	return tok, tok != ""
}

// RequireTicket rejects requests without a valid admission ticket and puts
// the parsed claims in the request context.
func RequireTicket(iss *ticket.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := BearerToken(r)
			if !ok {
				unauthorized(w, errors.New("missing bearer ticket"))
				return
			}
			claims, err := iss.Parse(tok)
			if err != nil {
				unauthorized(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ticketKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TicketFromContext(ctx context.Context) (*ticket.Claims, bool) {
	c, ok := ctx.Value(ticketKey).(*ticket.Claims)
	return c, ok && c != nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": "invalid_ticket", "message": err.Error()},
	})
}
