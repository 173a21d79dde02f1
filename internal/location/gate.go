package location

import (
	"context"
	"errors"
	"log"
)

// MsgTurnOnLocation is shown when no provider is enabled.
const MsgTurnOnLocation = "Please turn on your location"

// Remediator is the part of the UI that can walk the user through fixing a
// failed precondition.
type Remediator interface {
	ShowMessage(msg string)
	OpenLocationSettings()
}

type Gate struct {
	Provider Provider
}

func NewGate(p Provider) *Gate { return &Gate{Provider: p} }

// Check verifies permission first and then that a provider is enabled,
// triggering the matching remediation on the first miss.
func (g *Gate) Check(ctx context.Context, r Remediator) error {
	var err error
	switch {
	case !g.Provider.HasPermission():
		err = ErrPermissionDenied
	case !g.Provider.IsServiceEnabled():
		err = ErrServiceDisabled
	default:
		return nil
	}
	g.Remediate(ctx, r, err)
	return err
}

// Remediate surfaces the fix for a precondition error, whether it came from
// Check or from a provider failing mid request. Other errors are ignored.
func (g *Gate) Remediate(ctx context.Context, r Remediator, err error) {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		if rerr := g.Provider.RequestPermission(ctx); rerr != nil {
			log.Printf("[location] request permission: %v", rerr)
		}
	case errors.Is(err, ErrServiceDisabled):
		if r != nil {
			r.ShowMessage(MsgTurnOnLocation)
			r.OpenLocationSettings()
		}
	}
}
