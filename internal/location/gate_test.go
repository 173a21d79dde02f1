package location_test

import (
	"context"
	"errors"
	"testing"

	"liveattendance/internal/geo"
	"liveattendance/internal/location"
)

type recordingRemediator struct {
	messages []string
	settings int
}

func (r *recordingRemediator) ShowMessage(msg string) { r.messages = append(r.messages, msg) }
func (r *recordingRemediator) OpenLocationSettings()  { r.settings++ }

// TestGate_PermissionCheckedFirst verifies a missing permission triggers a
// permission request even when the service is enabled.
func TestGate_PermissionCheckedFirst(t *testing.T) {
	p := location.NewStatic(geo.DefaultReference)
	p.SetPermission(false)
	rem := &recordingRemediator{}

	err := location.NewGate(p).Check(context.Background(), rem)
	if !errors.Is(err, location.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if p.PermissionRequests() != 1 {
		t.Errorf("permission requests = %d, want 1", p.PermissionRequests())
	}
	if rem.settings != 0 {
		t.Error("settings opened for a permission problem")
	}
}

// TestGate_ServiceDisabled verifies the settings remediation when permission is granted.
func TestGate_ServiceDisabled(t *testing.T) {
	p := location.NewStatic(geo.DefaultReference)
	p.SetServiceEnabled(false)
	rem := &recordingRemediator{}

	err := location.NewGate(p).Check(context.Background(), rem)
	if !errors.Is(err, location.ErrServiceDisabled) {
		t.Fatalf("err = %v, want ErrServiceDisabled", err)
	}
	if rem.settings != 1 {
		t.Errorf("settings opened %d times, want 1", rem.settings)
	}
	if len(rem.messages) != 1 || rem.messages[0] != location.MsgTurnOnLocation {
		t.Errorf("messages = %q", rem.messages)
	}
	if p.PermissionRequests() != 0 {
		t.Error("permission requested although granted")
	}
}

// TestGate_BothMissing verifies the permission remediation wins when both are missing.
func TestGate_BothMissing(t *testing.T) {
	p := location.NewStatic(geo.DefaultReference)
	p.SetPermission(false)
	p.SetServiceEnabled(false)
	rem := &recordingRemediator{}

	err := location.NewGate(p).Check(context.Background(), rem)
	if !errors.Is(err, location.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if rem.settings != 0 {
		t.Error("settings opened before permission was granted")
	}
}

func TestGate_Pass(t *testing.T) {
	p := location.NewStatic(geo.DefaultReference)
	if err := location.NewGate(p).Check(context.Background(), nil); err != nil {
		t.Fatalf("Check: %v", err)
	}
}
