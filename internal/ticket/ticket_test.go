package ticket_test

import (
	"errors"
	"testing"
	"time"

	"liveattendance/internal/ticket"
)

// TestSignParse verifies a signed ticket round-trips its session and distance.
func TestSignParse(t *testing.T) {
	iss := ticket.NewIssuer("s3cret", time.Minute)
	tok, exp, err := iss.Sign("sess-1", 12.5)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if d := time.Until(exp); d <= 0 || d > time.Minute+time.Second {
		t.Errorf("expiry %v not within ttl", exp)
	}
	c, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.ID != "sess-1" || c.DistanceM != 12.5 {
		t.Errorf("claims = %+v", c)
	}
}

func TestParseRejects(t *testing.T) {
	iss := ticket.NewIssuer("s3cret", time.Minute)
	tok, _, _ := iss.Sign("sess-1", 1)

	other := ticket.NewIssuer("other", time.Minute)
	if _, err := other.Parse(tok); !errors.Is(err, ticket.ErrInvalid) {
		t.Errorf("wrong secret err = %v", err)
	}
	if _, err := iss.Parse("not-a-jwt"); !errors.Is(err, ticket.ErrInvalid) {
		t.Errorf("garbage err = %v", err)
	}

	late := ticket.NewIssuer("s3cret", time.Minute)
	late.Now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := late.Parse(tok); !errors.Is(err, ticket.ErrInvalid) {
		t.Errorf("expired err = %v", err)
	}
}

// TestLedgerConsume verifies single use and that expired ids are swept.
func TestLedgerConsume(t *testing.T) {
	now := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	l := ticket.NewLedger()
	l.Now = func() time.Time { return now }

	if err := l.Consume("a", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := l.Consume("a", now.Add(time.Minute)); !errors.Is(err, ticket.ErrConsumed) {
		t.Fatalf("reuse err = %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := l.Consume("b", now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 {
		t.Errorf("ledger len = %d, want 1 after sweep", l.Len())
	}
}
