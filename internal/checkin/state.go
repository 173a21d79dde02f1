// Package checkin runs one attendance check-in attempt: preconditions, a
// single location fix, the geofence decision and the name submission.
package checkin

import (
	"errors"
	"time"

	"liveattendance/internal/geo"
)

type State int

const (
	StateIdle State = iota
	StateScanning
	StateEvaluating
	StateAwaitingSubmission
	StateOutOfRange
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateEvaluating:
		return "evaluating"
	case StateAwaitingSubmission:
		return "awaiting_submission"
	case StateOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

var (
	ErrBusy           = errors.New("a check-in is already in progress")
	ErrFixUnavailable = errors.New("unable to get your location")
	ErrOutOfRange     = errors.New("out of range")
	ErrStaleSession   = errors.New("check-in session is no longer active")
)

// User-facing texts.
const (
	MsgOutOfRange     = "Out of range"
	MsgSuccess        = "Check-in success"
	MsgFixUnavailable = "Unable to get your location"
)

// Session is the state of one attempt. It is created by Begin and dropped on
// submit, cancel or rejection.
type Session struct {
	ID        string
	StartedAt time.Time
	Decision  geo.Decision
}

// Outcome summarises how an attempt ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeCheckedIn
	OutcomeCancelled
	OutcomeOutOfRange
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCheckedIn:
		return "checked_in"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeOutOfRange:
		return "out_of_range"
	case OutcomeFailed:
		return "failed"
	}
	return "none"
}
