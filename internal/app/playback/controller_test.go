package playback

import (
	"fmt"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/rockola/internal/domain/song"
)

type recorder struct {
	events []Event
}

func (r *recorder) Emit(e Event) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) reset() {
	r.events = nil
}

func entry(i int) song.Entry {
	return song.Entry{Path: fmt.Sprintf("Rock/Artist/%d.mp4", i), AddedAt: time.Unix(int64(i), 0)}
}

func TestController_EnqueueAutoStart(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)

	c.Enqueue(entry(1), true)

	assert.Equal(t, StatePlaying, c.State())
	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, entry(1).Path, cur.Path)
	assert.True(t, c.IsQueueEmpty())
	assert.Equal(t, []EventType{EventQueueChanged, EventQueueChanged, EventTrackStarted}, rec.types())
	assert.Equal(t, StatePlaying, rec.events[2].State)
}

func TestController_EnqueueWithoutAutoStart(t *testing.T) {
	c := NewController(nil)

	c.Enqueue(entry(1), false)

	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestController_EnqueueWhilePlayingDoesNotAdvance(t *testing.T) {
	c := NewController(nil)
	c.Enqueue(entry(1), true)

	c.Enqueue(entry(2), true)

	cur, _ := c.Current()
	assert.Equal(t, entry(1).Path, cur.Path)
	assert.Equal(t, 1, c.Len())
}

func TestController_FIFOOrder(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	for i := 1; i <= 5; i++ {
		c.Enqueue(entry(i), i == 1)
	}

	var order []string
	for {
		cur, ok := c.Current()
		if !ok {
			break
		}
		order = append(order, cur.Path)
		c.Ended()
	}

	require.Len(t, order, 5)
	for i, p := range order {
		assert.Equal(t, entry(i+1).Path, p)
	}
	assert.Equal(t, StateIdle, c.State())
	played, failures, skipped := c.Stats()
	assert.Equal(t, 5, played)
	assert.Zero(t, failures)
	assert.Zero(t, skipped)
}

func TestController_AdvanceOnEmptyQueueIsIdempotent(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)

	for i := 0; i < 5; i++ {
		c.Advance()
		assert.Equal(t, StateIdle, c.State())
	}

	require.Len(t, rec.events, 5)
	for _, e := range rec.events {
		assert.Equal(t, EventQueueEmpty, e.Type)
	}
}

func TestController_FailedAdvancesLikeEnded(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	c.Enqueue(entry(1), true)
	c.Enqueue(entry(2), false)
	rec.reset()

	c.Failed(errors.New("decoder error"))

	cur, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, entry(2).Path, cur.Path)
	require.NotEmpty(t, rec.events)
	assert.Equal(t, EventTrackFailed, rec.events[0].Type)
	assert.True(t, errors.Is(rec.events[0].Err, ErrPlayback))
	assert.Contains(t, rec.events[0].Err.Error(), "decoder error")

	c.Failed(nil)
	assert.Equal(t, StateIdle, c.State())
	_, failures, _ := c.Stats()
	assert.Equal(t, 2, failures)
}

func TestController_EndedWithoutCursor(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)

	c.Ended()

	assert.Equal(t, []EventType{EventQueueEmpty}, rec.types())
}

func TestController_Skip(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(c *Controller)
		wantErr error
	}{
		{
			name:    "nothing playing",
			setup:   func(c *Controller) {},
			wantErr: ErrNoTrack,
		},
		{
			name: "nothing queued behind",
			setup: func(c *Controller) {
				c.Enqueue(entry(1), true)
			},
			wantErr: ErrQueueEmpty,
		},
		{
			name: "skip to next",
			setup: func(c *Controller) {
				c.Enqueue(entry(1), true)
				c.Enqueue(entry(2), false)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(nil)
			tt.setup(c)

			err := c.Skip()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			cur, _ := c.Current()
			assert.Equal(t, entry(2).Path, cur.Path)
			_, _, skipped := c.Stats()
			assert.Equal(t, 1, skipped)
		})
	}
}

func TestController_StopKeepsQueue(t *testing.T) {
	rec := &recorder{}
	c := NewController(rec)
	c.Enqueue(entry(1), true)
	c.Enqueue(entry(2), false)
	rec.reset()

	c.Stop()

	assert.Equal(t, StateIdle, c.State())
	_, ok := c.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []EventType{EventStopped}, rec.types())

	rec.reset()
	c.Stop()
	assert.Empty(t, rec.events, "stopping twice emits nothing")
}

func TestController_UpcomingAndContains(t *testing.T) {
	c := NewController(nil)
	for i := 1; i <= 9; i++ {
		c.Enqueue(entry(i), i == 1)
	}

	up := c.Upcoming(6)
	require.Len(t, up, 6)
	assert.Equal(t, entry(2).Path, up[0].Path)
	assert.Len(t, c.Upcoming(100), 8)
	assert.Empty(t, c.Upcoming(-1))
	assert.Len(t, c.Queue(), 8)

	assert.True(t, c.Contains(entry(1).Path))
	assert.True(t, c.Contains(entry(9).Path))
	assert.False(t, c.Contains("Pop/none.mp4"))
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "track_started", EventTrackStarted.String())
	assert.Equal(t, "queue_empty", EventQueueEmpty.String())
	assert.Equal(t, "unknown", EventType(99).String())
	assert.Equal(t, "playing", StatePlaying.String())
}
