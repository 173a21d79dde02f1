package location

import (
	"context"
	"sync"

	"liveattendance/internal/geo"
)

// Static is a Provider that always reports the same fix. The HTTP shell uses
// it for positions posted by the device; the terminal shell uses it for
// --lat/--lng.
type Static struct {
	mu         sync.Mutex
	fix        geo.Point
	permission bool
	enabled    bool
	requested  int
	fixes      int
	fixErr     error
}

func NewStatic(fix geo.Point) *Static {
	return &Static{fix: fix, permission: true, enabled: true}
}

func (s *Static) HasPermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

func (s *Static) IsServiceEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// RequestPermission only records the request; a static source has nobody to ask.
func (s *Static) RequestPermission(ctx context.Context) error {
	s.mu.Lock()
	s.requested++
	s.mu.Unlock()
	return nil
}

func (s *Static) RequestSingleFix(ctx context.Context, _ FixRequest) (geo.Point, error) {
	s.mu.Lock()
	s.fixes++
	fix, err := s.fix, s.fixErr
	permission, enabled := s.permission, s.enabled
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return geo.Point{}, err
	}
	switch {
	case !permission:
		return geo.Point{}, ErrPermissionDenied
	case !enabled:
		return geo.Point{}, ErrServiceDisabled
	case err != nil:
		return geo.Point{}, err
	}
	return fix, nil
}

func (s *Static) CancelFixRequest() {}

// SetFix replaces the reported position.
func (s *Static) SetFix(p geo.Point) {
	s.mu.Lock()
	s.fix = p
	s.mu.Unlock()
}

func (s *Static) SetPermission(granted bool) {
	s.mu.Lock()
	s.permission = granted
	s.mu.Unlock()
}

func (s *Static) SetServiceEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// FailWith makes subsequent fix requests return err.
func (s *Static) FailWith(err error) {
	s.mu.Lock()
	s.fixErr = err
	s.mu.Unlock()
}

// PermissionRequests is the number of RequestPermission calls so far.
func (s *Static) PermissionRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

// FixRequests is the number of RequestSingleFix calls so far.
func (s *Static) FixRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fixes
}
