package playback

import "github.com/osa030/rockola/internal/domain/song"

// EventType represents a playback event type.
type EventType int

const (
	EventTrackStarted EventType = iota // Entry became the playback cursor
	EventTrackEnded                    // Entry finished normally
	EventTrackFailed                   // Entry could not be played
	EventTrackSkipped                  // Entry was skipped manually
	EventQueueChanged                  // Pending entries changed
	EventQueueEmpty                    // Advance found nothing to play
	EventStopped                       // Cursor cleared without advancing
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackStarted:
		return "track_started"
	case EventTrackEnded:
		return "track_ended"
	case EventTrackFailed:
		return "track_failed"
	case EventTrackSkipped:
		return "track_skipped"
	case EventQueueChanged:
		return "queue_changed"
	case EventQueueEmpty:
		return "queue_empty"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type  EventType
	Entry *song.Entry // Entry concerned (nil for queue events)
	State State       // Playback state after the event
	Err   error       // Failure detail for EventTrackFailed
}

// Sink receives events synchronously, inside the operation that produced them.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) {
	f(e)
}

type discard struct{}

func (discard) Emit(Event) {}
