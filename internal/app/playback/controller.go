package playback

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/domain/song"
)

// Errors
var (
	ErrNoTrack    = errors.New("no track playing")
	ErrQueueEmpty = errors.New("queue is empty")
	ErrPlayback   = errors.New("playback error")
)

// Controller manages the playback cursor and the queue of pending entries.
//
// It performs no I/O: started entries are reported through the Sink and the
// caller decides how to play them. The controller is not safe for concurrent
// use; the session engine serializes every call.
type Controller struct {
	queue   []song.Entry // Entries waiting to be played, FIFO
	current *song.Entry  // Playback cursor
	state   State
	sink    Sink

	played   int // Entries that ended normally
	failures int // Entries that failed to play
	skipped  int // Entries skipped manually
}

// NewController creates a new playback controller.
func NewController(sink Sink) *Controller {
	if sink == nil {
		sink = discard{}
	}
	return &Controller{
		queue: make([]song.Entry, 0),
		state: StateIdle,
		sink:  sink,
	}
}

// Enqueue adds an entry to the end of the queue.
// If nothing is playing and autoStart is set, playback advances immediately.
func (c *Controller) Enqueue(e song.Entry, autoStart bool) {
	c.queue = append(c.queue, e)
	c.emit(Event{Type: EventQueueChanged})

	if c.state == StateIdle && autoStart {
		c.Advance()
	}
}

// Advance pops the next entry into the cursor.
// On an empty queue it settles in StateIdle; calling it again is harmless.
func (c *Controller) Advance() {
	if len(c.queue) == 0 {
		c.current = nil
		c.state = StateIdle
		c.emit(Event{Type: EventQueueEmpty})
		return
	}

	next := c.queue[0]
	c.queue = c.queue[1:]
	c.current = &next
	c.state = StatePlaying

	zlog.Debug().Msgf("playback: advancing: path=%s remaining=%d", next.Path, len(c.queue))
	c.emit(Event{Type: EventQueueChanged})
	c.emit(Event{Type: EventTrackStarted, Entry: c.current})
}

// Ended handles the surface reporting the end of the current entry.
func (c *Controller) Ended() {
	if c.current != nil {
		ended := c.current
		c.current = nil
		c.played++
		c.emit(Event{Type: EventTrackEnded, Entry: ended})
	}
	c.Advance()
}

// Failed handles a playback failure. Failures are never fatal: the queue moves on.
func (c *Controller) Failed(cause error) {
	err := ErrPlayback
	if cause != nil {
		err = errors.Mark(cause, ErrPlayback)
	}

	if c.current != nil {
		failed := c.current
		c.current = nil
		c.failures++
		zlog.Warn().Msgf("playback: entry failed, skipping: path=%s error=%v", failed.Path, err)
		c.emit(Event{Type: EventTrackFailed, Entry: failed, Err: err})
	}
	c.Advance()
}

// Skip abandons the current entry and plays the next one.
// A skip needs both a playing entry and something queued behind it.
func (c *Controller) Skip() error {
	if c.current == nil {
		return ErrNoTrack
	}
	if len(c.queue) == 0 {
		return ErrQueueEmpty
	}

	skipped := c.current
	c.current = nil
	c.skipped++
	c.emit(Event{Type: EventTrackSkipped, Entry: skipped})
	c.Advance()
	return nil
}

// Stop clears the cursor without touching the queue.
func (c *Controller) Stop() {
	if c.current == nil && c.state == StateIdle {
		return
	}
	stopped := c.current
	c.current = nil
	c.state = StateIdle
	c.emit(Event{Type: EventStopped, Entry: stopped})
}

// State returns the current playback state.
func (c *Controller) State() State {
	return c.state
}

// Current returns the entry on the playback cursor.
func (c *Controller) Current() (song.Entry, bool) {
	if c.current == nil {
		return song.Entry{}, false
	}
	return *c.current, true
}

// Len returns the number of pending entries.
func (c *Controller) Len() int {
	return len(c.queue)
}

// IsQueueEmpty returns true if nothing is pending.
func (c *Controller) IsQueueEmpty() bool {
	return len(c.queue) == 0
}

// Upcoming returns a copy of the first n pending entries.
func (c *Controller) Upcoming(n int) []song.Entry {
	n = min(max(n, 0), len(c.queue))
	out := make([]song.Entry, n)
	copy(out, c.queue[:n])
	return out
}

// Queue returns a copy of every pending entry.
func (c *Controller) Queue() []song.Entry {
	return c.Upcoming(len(c.queue))
}

// Contains reports whether path is playing or pending.
func (c *Controller) Contains(path string) bool {
	if c.current != nil && c.current.Path == path {
		return true
	}
	for _, e := range c.queue {
		if e.Path == path {
			return true
		}
	}
	return false
}

// Stats returns the played, failed and skipped counters.
func (c *Controller) Stats() (played, failures, skipped int) {
	return c.played, c.failures, c.skipped
}

func (c *Controller) emit(e Event) {
	e.State = c.state
	c.sink.Emit(e)
}
