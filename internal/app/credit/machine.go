package credit

// Machine tracks the credit balance.
// It is not safe for concurrent use; the session engine serializes access.
type Machine struct {
	credits int
}

// New creates a machine with an initial balance. Negative values are clamped to zero.
func New(initial int) *Machine {
	return &Machine{credits: max(initial, 0)}
}

// Credits returns the current balance.
func (m *Machine) Credits() int {
	return m.credits
}

// Mode returns the mode derived from the balance.
func (m *Machine) Mode() Mode {
	return ModeOf(m.credits)
}

// IsOpen returns true if the kiosk accepts patron input.
func (m *Machine) IsOpen() bool {
	return m.Mode() == ModeInteractive
}

// AddCredit adds one credit, as on a coin insertion.
func (m *Machine) AddCredit() Transition {
	from := m.Mode()
	m.credits++
	return Transition{From: from, To: m.Mode()}
}

// TrySpend consumes one credit if available.
// The balance is left untouched when it returns false.
func (m *Machine) TrySpend() (Transition, bool) {
	from := m.Mode()
	if m.credits <= 0 {
		return Transition{From: from, To: from}, false
	}
	m.credits--
	return Transition{From: from, To: m.Mode()}, true
}
