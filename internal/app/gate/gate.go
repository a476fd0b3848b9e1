// Package gate provides the filter chain that patron requests pass before
// they reach the queue.
package gate

import (
	"context"

	"github.com/osa030/rockola/internal/domain/song"
)

// Action identifies the patron operation being checked.
type Action int

const (
	ActionEnterCode Action = iota // Direct-entry code that spends a credit
	ActionSkip                    // Manual skip from the kiosk
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionEnterCode:
		return "enter_code"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Request is a snapshot of everything a filter may look at.
type Request struct {
	Action         Action
	Song           song.Song // Zero for ActionSkip
	ControlsLocked bool
	NowPlaying     string   // Path of the playback cursor, empty when idle
	Queue          []string // Queued paths in FIFO order
}

// Result represents the result of a filter check.
type Result struct {
	Accepted bool
	Code     string // e.g., "controls_locked", "duplicate_song", "queue_full"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Filter is the interface for request filters.
type Filter interface {
	// Name returns the filter name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this filter can return.
	ReturnCodes() []string
	// ValidateConfig validates and applies the filter configuration.
	ValidateConfig(settings map[string]any) error
	// AppliesTo returns true if this filter should run for the given action.
	AppliesTo(action Action) bool
	// Check performs the filter check.
	Check(ctx context.Context, req Request) Result
}

// registry holds registered filter factories.
var registry = make(map[string]func() Filter)

// Register registers a filter factory.
func Register(name string, factory func() Filter) {
	registry[name] = factory
}

// GetRegistered returns all registered filter factories.
func GetRegistered() map[string]func() Filter {
	return registry
}
