// Package ticket issues the short-lived admission tickets that link an
// admitted scan to the submit that follows it.
package ticket

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL bounds how long an admitted scan may wait for a name.
const DefaultTTL = 5 * time.Minute

var (
	ErrInvalid  = errors.New("invalid ticket")
	ErrConsumed = errors.New("ticket already used")
)

// Claims carried by a ticket. The session id travels as jti.
type Claims struct {
	DistanceM float64 `json:"dst"`
	jwt.RegisteredClaims
}

type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if secret == "" {
		secret = "dev-secret"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Sign returns a ticket for sessionID and its expiry.
func (i *Issuer) Sign(sessionID string, distanceM float64) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.TTL)
	claims := Claims{
		DistanceM: distanceM,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	return signed, exp, err
}

// Parse verifies tokenStr and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.Secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: no jti", ErrInvalid)
	}
	return claims, nil
}

// Ledger remembers consumed ticket ids until they expire, so each ticket
// admits exactly one submit.
type Ledger struct {
	mu   sync.Mutex
	used map[string]time.Time
	Now  func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{used: make(map[string]time.Time), Now: time.Now}
}

// Consume marks id used. It fails with ErrConsumed on the second call.
func (l *Ledger) Consume(id string, exp time.Time) error {
	now := time.Now()
	if l.Now != nil {
		now = l.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.used {
		if !e.After(now) {
			delete(l.used, k)
		}
	}
	if _, ok := l.used[id]; ok {
		return ErrConsumed
	}
	l.used[id] = exp
	return nil
}

// Len reports how many ids are still remembered.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.used)
}
