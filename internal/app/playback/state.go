// Package playback provides sequential playback control with an integrated FIFO queue.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // Nothing playing (queue drained or stopped)
	StatePlaying              // One entry is on the playback surface
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}
