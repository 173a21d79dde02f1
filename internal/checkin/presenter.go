package checkin

import (
	"context"

	"liveattendance/internal/location"
)

// Presenter is the UI the flow drives.
type Presenter interface {
	location.Remediator

	// ShowScanning starts the scanning indication and clears the previous outcome.
	ShowScanning()
	StopScanning()
	ShowOutOfRange()
	ShowSuccess()
	// PromptForName asks for the attendee's name. ok is false when the user cancels.
	PromptForName(ctx context.Context) (name string, ok bool, err error)
}
