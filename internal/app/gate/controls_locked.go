package gate

import "context"

// ControlsLockedFilter rejects kiosk skips while the kiosk is in idle mode.
// Code entry is not gated here: with zero credits it fails on spending.
type ControlsLockedFilter struct{}

// NewControlsLockedFilter creates a new ControlsLockedFilter.
func NewControlsLockedFilter() *ControlsLockedFilter {
	return &ControlsLockedFilter{}
}

func (f *ControlsLockedFilter) Name() string {
	return "controls_locked"
}

func (f *ControlsLockedFilter) Description() string {
	return "Rejects kiosk controls while no credit is available"
}

func (f *ControlsLockedFilter) ReturnCodes() []string {
	return []string{"controls_locked"}
}

func (f *ControlsLockedFilter) ValidateConfig(settings map[string]any) error {
	return nil
}

func (f *ControlsLockedFilter) AppliesTo(action Action) bool {
	return action == ActionSkip
}

func (f *ControlsLockedFilter) Check(ctx context.Context, req Request) Result {
	if req.ControlsLocked {
		return Reject("controls_locked")
	}
	return Accept()
}
