package handlers

import (
	"sync"
	"time"

	"liveattendance/internal/checkin"
)

type pending struct {
	flow *checkin.Flow
	sess *checkin.Session
	exp  time.Time
}

// Sessions holds admitted scans until their ticket is used or expires.
type Sessions struct {
	mu  sync.Mutex
	m   map[string]pending
	Now func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]pending), Now: time.Now}
}

func (s *Sessions) Put(flow *checkin.Flow, sess *checkin.Session, exp time.Time) {
	expired := s.sweep()
	s.mu.Lock()
	s.m[sess.ID] = pending{flow: flow, sess: sess, exp: exp}
	s.mu.Unlock()
	for _, p := range expired {
		p.flow.Cancel(p.sess)
	}
}

// Take removes and returns the session for id.
func (s *Sessions) Take(id string) (pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if ok {
		delete(s.m, id)
	}
	return p, ok
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

func (s *Sessions) sweep() []pending {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []pending
	for id, p := range s.m {
		if !p.exp.After(now) {
			out = append(out, p)
			delete(s.m, id)
		}
	}
	return out
}
