// Package credit provides the credit balance and the kiosk mode derived from it.
package credit

// Mode represents whether the kiosk is open for input.
type Mode int

const (
	ModeIdle        Mode = iota // No credits: controls locked, promo when nothing plays
	ModeInteractive             // Credits available: controls unlocked
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// ModeOf derives the mode from a credit balance.
// This is the only place the rule is written down.
func ModeOf(credits int) Mode {
	if credits > 0 {
		return ModeInteractive
	}
	return ModeIdle
}

// Transition describes the mode before and after a credit mutation.
type Transition struct {
	From Mode
	To   Mode
}

// Changed returns true if the mutation switched modes.
func (t Transition) Changed() bool {
	return t.From != t.To
}

// EnteredIdle returns true if the mutation locked the kiosk.
func (t Transition) EnteredIdle() bool {
	return t.Changed() && t.To == ModeIdle
}

// EnteredInteractive returns true if the mutation unlocked the kiosk.
func (t Transition) EnteredInteractive() bool {
	return t.Changed() && t.To == ModeInteractive
}
