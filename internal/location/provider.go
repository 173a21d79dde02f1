// Package location wraps the device positioning stack: permission and
// enablement preconditions plus one-shot fix acquisition.
package location

import (
	"context"
	"errors"
	"time"

	"liveattendance/internal/geo"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrServiceDisabled  = errors.New("location service disabled")
)

// DefaultInterval is the polling interval requested from providers.
const DefaultInterval = 5 * time.Second

type FixRequest struct {
	HighAccuracy bool
	Interval     time.Duration
}

// Provider is a source of device positions.
//
// RequestSingleFix blocks until the first fix is delivered, the provider
// fails, or ctx is done. Implementations must stop delivering after the first
// fix; CancelFixRequest tears down any subscription still open.
type Provider interface {
	HasPermission() bool
	IsServiceEnabled() bool
	RequestPermission(ctx context.Context) error
	RequestSingleFix(ctx context.Context, req FixRequest) (geo.Point, error)
	CancelFixRequest()
}
