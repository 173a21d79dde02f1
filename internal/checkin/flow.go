package checkin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"liveattendance/internal/attendance"
	"liveattendance/internal/geo"
	"liveattendance/internal/location"
)

const (
	// DefaultScanDelay lets the scanning indication render before the fix request starts.
	DefaultScanDelay = 2 * time.Second
	// DefaultFixTimeout bounds how long one fix request may take.
	DefaultFixTimeout = 20 * time.Second
)

// Submitter persists the attendee's name once the fence admitted them.
type Submitter interface {
	Submit(ctx context.Context, name string) (attendance.Record, error)
}

type Options struct {
	Provider  location.Provider
	Fence     geo.Fence
	Submitter Submitter
	Presenter Presenter

	// ScanDelay of zero starts the fix request immediately.
	ScanDelay  time.Duration
	FixTimeout time.Duration
	FixRequest location.FixRequest

	// OnTransition is called after every state change, outside the flow lock.
	OnTransition func(from, to State)
	Now          func() time.Time
}

// Result is what CheckIn reports once the flow is back to idle.
type Result struct {
	Session *Session
	Record  attendance.Record
	Outcome Outcome
}

// Flow runs one check-in at a time.
type Flow struct {
	opts Options
	gate *location.Gate

	mu         sync.Mutex
	state      State
	busy       bool
	submitting bool
	session    *Session
	cancelScan context.CancelFunc
}

func New(opts Options) *Flow {
	if opts.FixTimeout <= 0 {
		opts.FixTimeout = DefaultFixTimeout
	}
	if opts.FixRequest.Interval <= 0 {
		opts.FixRequest.Interval = location.DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Flow{opts: opts, gate: location.NewGate(opts.Provider)}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns the live session, or nil when idle.
func (f *Flow) Current() *Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session
}

// Preflight runs the location preconditions without starting an attempt.
// Shells call it on start and whenever the platform reports a permission or
// provider change.
func (f *Flow) Preflight(ctx context.Context) error {
	return f.gate.Check(ctx, f.opts.Presenter)
}

// PermissionChanged re-runs the preconditions after the platform delivered
// the outcome of a permission request.
func (f *Flow) PermissionChanged(ctx context.Context) error {
	err := f.Preflight(ctx)
	log.Printf("[checkin] permission changed, preconditions: %v", errString(err))
	return err
}

// Begin runs an attempt up to the geofence decision. On admit the session is
// left awaiting submission; on rejection the flow is already idle again and
// ErrOutOfRange is returned together with the session.
func (f *Flow) Begin(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return nil, ErrBusy
	}
	f.busy = true
	f.mu.Unlock()

	if err := f.gate.Check(ctx, f.opts.Presenter); err != nil {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
		return nil, err
	}

	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &Session{ID: uuid.NewString(), StartedAt: f.opts.Now()}
	f.mu.Lock()
	f.session = sess
	f.cancelScan = cancel
	f.mu.Unlock()
	f.moveTo(sess, StateScanning)
	f.opts.Presenter.ShowScanning()

	if err := sleep(scanCtx, f.opts.ScanDelay); err != nil {
		return nil, f.abort(sess, err)
	}

	fix, err := f.acquire(scanCtx)
	if err != nil {
		return nil, f.abort(sess, err)
	}

	if !f.moveTo(sess, StateEvaluating) {
		return nil, ErrStaleSession
	}
	sess.Decision = f.opts.Fence.Evaluate(fix)
	f.opts.Presenter.StopScanning()
	log.Printf("[checkin] session %s fix=(%.6f, %.6f) distance=%.1fm admit=%v",
		sess.ID, fix.Lat, fix.Lng, sess.Decision.DistanceMeters, sess.Decision.Admit)

	if !sess.Decision.Admit {
		f.moveTo(sess, StateOutOfRange)
		f.opts.Presenter.ShowOutOfRange()
		f.moveTo(sess, StateIdle)
		return sess, ErrOutOfRange
	}
	f.moveTo(sess, StateAwaitingSubmission)
	return sess, nil
}

// Submit writes the attendance record for an admitted session.
func (f *Flow) Submit(ctx context.Context, sess *Session, name string) (attendance.Record, error) {
	f.mu.Lock()
	if sess == nil || f.session != sess || f.state != StateAwaitingSubmission || f.submitting {
		f.mu.Unlock()
		return attendance.Record{}, ErrStaleSession
	}
	f.submitting = true
	f.mu.Unlock()

	rec, err := f.opts.Submitter.Submit(ctx, name)
	if err != nil {
		f.opts.Presenter.ShowMessage(err.Error())
	} else {
		f.opts.Presenter.ShowSuccess()
	}
	f.moveTo(sess, StateIdle)
	return rec, err
}

// Cancel drops sess without writing anything. A stale or nil session is ignored.
func (f *Flow) Cancel(sess *Session) {
	f.mu.Lock()
	if sess == nil || f.session != sess || f.submitting {
		f.mu.Unlock()
		return
	}
	scanning := f.state == StateScanning || f.state == StateEvaluating
	cancel := f.cancelScan
	f.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if scanning {
		f.opts.Presenter.StopScanning()
	}
	if f.moveTo(sess, StateIdle) {
		log.Printf("[checkin] session %s cancelled", sess.ID)
	}
}

// CheckIn runs a whole attempt: Begin, ask for a name, then Submit or Cancel.
// Out of range is reported through Result.Outcome, not as an error.
func (f *Flow) CheckIn(ctx context.Context) (Result, error) {
	sess, err := f.Begin(ctx)
	if errors.Is(err, ErrOutOfRange) {
		return Result{Session: sess, Outcome: OutcomeOutOfRange}, nil
	}
	if err != nil {
		return Result{Outcome: OutcomeFailed}, err
	}

	name, ok, err := f.opts.Presenter.PromptForName(ctx)
	if err != nil {
		f.Cancel(sess)
		return Result{Session: sess, Outcome: OutcomeFailed}, err
	}
	if !ok {
		f.Cancel(sess)
		return Result{Session: sess, Outcome: OutcomeCancelled}, nil
	}

	rec, err := f.Submit(ctx, sess, name)
	if err != nil {
		return Result{Session: sess, Outcome: OutcomeFailed}, err
	}
	return Result{Session: sess, Record: rec, Outcome: OutcomeCheckedIn}, nil
}

// acquire asks for exactly one fix. The provider's answer is dropped once the
// timeout or ctx fires, even if the provider ignores ctx.
func (f *Flow) acquire(ctx context.Context) (geo.Point, error) {
	fixCtx, cancel := context.WithTimeout(ctx, f.opts.FixTimeout)
	defer cancel()
	defer f.opts.Provider.CancelFixRequest()

	type result struct {
		fix geo.Point
		err error
	}
	ch := make(chan result, 1)
	go func() {
		fix, err := f.opts.Provider.RequestSingleFix(fixCtx, f.opts.FixRequest)
		ch <- result{fix, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if errors.Is(r.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return geo.Point{}, fmt.Errorf("%w: no fix within %s", ErrFixUnavailable, f.opts.FixTimeout)
			}
			return geo.Point{}, r.err
		}
		if !r.fix.Valid() {
			return geo.Point{}, fmt.Errorf("%w: invalid fix %v", ErrFixUnavailable, r.fix)
		}
		return r.fix, nil
	case <-fixCtx.Done():
		if ctx.Err() != nil {
			return geo.Point{}, ctx.Err()
		}
		return geo.Point{}, fmt.Errorf("%w: no fix within %s", ErrFixUnavailable, f.opts.FixTimeout)
	}
}

// abort ends a scanning session after err, surfacing the remediation that
// fits. A session cancelled meanwhile ends silently.
func (f *Flow) abort(sess *Session, err error) error {
	f.mu.Lock()
	live := f.session == sess
	f.mu.Unlock()
	if !live {
		return ErrStaleSession
	}

	f.opts.Presenter.StopScanning()
	switch {
	case errors.Is(err, location.ErrPermissionDenied), errors.Is(err, location.ErrServiceDisabled):
		f.gate.Remediate(context.Background(), f.opts.Presenter, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// caller went away
	default:
		if !errors.Is(err, ErrFixUnavailable) {
			err = fmt.Errorf("%w: %v", ErrFixUnavailable, err)
		}
		f.opts.Presenter.ShowMessage(MsgFixUnavailable)
	}
	log.Printf("[checkin] session %s aborted: %v", sess.ID, err)
	f.moveTo(sess, StateIdle)
	return err
}

// moveTo changes state when sess is still the live session and reports
// whether it did. Moving to idle releases the flow for the next attempt.
func (f *Flow) moveTo(sess *Session, to State) bool {
	f.mu.Lock()
	if f.session != sess {
		f.mu.Unlock()
		return false
	}
	from := f.state
	f.state = to
	if to == StateIdle {
		f.session = nil
		f.busy = false
		f.submitting = false
		f.cancelScan = nil
	}
	cb := f.opts.OnTransition
	f.mu.Unlock()

	if cb != nil && from != to {
		cb(from, to)
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}
