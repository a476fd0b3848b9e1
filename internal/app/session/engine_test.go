package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/rockola/internal/app/background"
	"github.com/osa030/rockola/internal/app/catalog"
	"github.com/osa030/rockola/internal/app/credit"
	"github.com/osa030/rockola/internal/app/gate"
	"github.com/osa030/rockola/internal/app/media"
	"github.com/osa030/rockola/internal/app/notice"
	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/app/playback"
	"github.com/osa030/rockola/internal/domain/song"
)

var (
	songUno  = song.Song{ID: "00001", Title: "Uno", Artist: "Alpha", Genre: "Rock", Path: "Rock/Alpha/Uno.mp4"}
	songDos  = song.Song{ID: "00002", Title: "Dos", Artist: "Beta", Genre: "Pop", Path: "Pop/Beta/Dos.mp4"}
	songTres = song.Song{ID: "00003", Title: "Tres", Artist: "Gamma", Genre: "Rock", Path: "Rock/Gamma/Tres.mp4"}
	songBad  = song.Song{ID: "00004", Title: "Bad", Artist: "Delta", Genre: "Rock", Path: "../outside.mp4"}
)

type surfaceCall struct {
	Op       string // "play" or "stop"
	Location string
	Loop     bool
}

type fakeSurface struct {
	mu    sync.Mutex
	calls []surfaceCall
	seq   uint64
}

func (s *fakeSurface) Play(seq uint64, location string, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = seq
	s.calls = append(s.calls, surfaceCall{Op: "play", Location: location, Loop: loop})
}

// playing returns the seq of the last media handed to the surface.
func (s *fakeSurface) playing() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *fakeSurface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, surfaceCall{Op: "stop"})
}

func (s *fakeSurface) last() surfaceCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return surfaceCall{}
	}
	return s.calls[len(s.calls)-1]
}

type fakeNotifier struct {
	mu  sync.Mutex
	got []*notification.Notification
}

func (n *fakeNotifier) Broadcast(x *notification.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, x)
}

func (n *fakeNotifier) ofType(t notification.Type) []*notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []*notification.Notification
	for _, x := range n.got {
		if x.Type == t {
			out = append(out, x)
		}
	}
	return out
}

func (n *fakeNotifier) notices() []string {
	var codes []string
	for _, x := range n.ofType(notification.TypeNotice) {
		codes = append(codes, x.Notice.Code)
	}
	return codes
}

type recordCall struct {
	Kind, Path, Detail string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recordCall
}

func (r *fakeRecorder) Record(_ context.Context, kind, path, detail string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordCall{Kind: kind, Path: path, Detail: detail})
	return nil
}

func (r *fakeRecorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Kind
	}
	return out
}

type manualTimer struct{ stopped bool }

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type manualClock struct {
	mu  sync.Mutex
	fns []func()
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) notice.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, f)
	return &manualTimer{}
}

func (c *manualClock) fireLast() {
	c.mu.Lock()
	f := c.fns[len(c.fns)-1]
	c.mu.Unlock()
	f()
}

type harness struct {
	engine   *Engine
	surface  *fakeSurface
	notifier *fakeNotifier
	recorder *fakeRecorder
	clock    *manualClock
	gateway  *media.Gateway
}

type harnessOption func(*Config, *Deps)

func withGate(t *testing.T, filters map[string]gate.Settings) harnessOption {
	return func(_ *Config, d *Deps) {
		chain, err := gate.Build(filters)
		require.NoError(t, err)
		d.Gate = chain
	}
}

func withPromo(file string) harnessOption {
	return func(c *Config, _ *Deps) { c.PromoFile = file }
}

func withCredits(n int) harnessOption {
	return func(c *Config, _ *Deps) { c.InitialCredits = n }
}

func newHarness(t *testing.T, songs []song.Song, opts ...harnessOption) *harness {
	t.Helper()

	gw, err := media.NewGateway(media.Roots{Music: "/srv/music", Promo: "/srv/promo", Background: "/srv/bg"})
	require.NoError(t, err)

	var clips []background.Clip
	for i, f := range []string{"1.mp4", "2.mp4", "3.mp4"} {
		ref, err := media.RefFor(media.NamespaceBackground, f)
		require.NoError(t, err)
		clips = append(clips, background.Clip{ID: "bg" + string(rune('1'+i)), Ref: ref})
	}
	sel, err := background.NewSelector(clips, nil)
	require.NoError(t, err)

	h := &harness{
		surface:  &fakeSurface{},
		notifier: &fakeNotifier{},
		recorder: &fakeRecorder{},
		clock:    &manualClock{},
		gateway:  gw,
	}
	cfg := Config{PromoFile: "promo.mp4"}
	deps := Deps{
		Index:       catalog.New(songs),
		Gateway:     gw,
		Backgrounds: sel,
		Surface:     h.surface,
		Notifier:    h.notifier,
		Recorder:    h.recorder,
		Clock:       h.clock,
	}
	for _, opt := range opts {
		opt(&cfg, &deps)
	}

	h.engine, err = NewEngine(cfg, deps)
	require.NoError(t, err)
	t.Cleanup(h.engine.Close)
	return h
}

// ended reports the end of whatever the surface is playing.
func (h *harness) ended() {
	h.engine.OnPlaybackEnded(h.surface.playing())
}

func (h *harness) failed(detail string) {
	h.engine.OnPlaybackError(h.surface.playing(), detail)
}

func musicPath(p string) string {
	return filepath.Join("/srv/music", filepath.FromSlash(p))
}

func TestNewEngine_RequiresComponents(t *testing.T) {
	_, err := NewEngine(Config{}, Deps{})
	assert.Error(t, err)
}

func TestEngine_EndToEnd(t *testing.T) {
	h := newHarness(t, []song.Song{songUno, songDos})
	e := h.engine
	ctx := context.Background()

	e.AddCredit()
	res := e.EnterCode(ctx, "00001")
	require.True(t, res.Accepted)
	assert.Equal(t, songUno, res.Song)
	assert.Equal(t, notice.CodeSongAdded, res.Notice.Code)
	assert.Equal(t, "Song Uno added", res.Notice.Message)

	st := e.Status()
	require.NotNil(t, st.NowPlaying)
	assert.Equal(t, "00001", st.NowPlaying.ID)
	assert.Equal(t, 0, st.Credits)
	assert.Equal(t, credit.ModeIdle, st.Mode)
	assert.False(t, st.PromoActive, "promo waits for the song to finish")
	assert.Equal(t, surfaceCall{Op: "play", Location: musicPath(songUno.Path)}, h.surface.last())

	h.ended()

	st = e.Status()
	assert.Nil(t, st.NowPlaying)
	assert.Equal(t, 0, st.QueueSize)
	assert.Equal(t, credit.ModeIdle, st.Mode)
	assert.True(t, st.PromoActive)
	assert.True(t, st.ControlsLocked)
	assert.Equal(t, surfaceCall{Op: "play", Location: "/srv/promo/promo.mp4", Loop: true}, h.surface.last())
	assert.Equal(t, 1, st.Played)

	nowPlaying := h.notifier.ofType(notification.TypeNowPlaying)
	require.NotEmpty(t, nowPlaying)
	assert.Equal(t, "00001", nowPlaying[0].TrackInfo.ID)
	assert.Equal(t, []string{"started", "ended"}, h.recorder.kinds())
}

func TestEngine_StartShowsPromoWhenIdle(t *testing.T) {
	h := newHarness(t, []song.Song{songUno})
	h.engine.Start()

	assert.True(t, h.engine.Status().PromoActive)
	assert.Equal(t, surfaceCall{Op: "play", Location: "/srv/promo/promo.mp4", Loop: true}, h.surface.last())

	plays := h.notifier.ofType(notification.TypePlay)
	require.Len(t, plays, 1)
	assert.Equal(t, "promo:promo.mp4", plays[0].Play.Ref)
	assert.True(t, plays[0].Play.Loop)
}

func TestEngine_StartWithEmptyCatalog(t *testing.T) {
	h := newHarness(t, nil, withCredits(1))
	h.engine.Start()

	assert.Equal(t, []string{notice.CodeCatalogEmpty}, h.notifier.notices())
	assert.False(t, h.engine.Status().PromoActive)

	res := h.engine.EnterCode(context.Background(), "00001")
	assert.False(t, res.Accepted)
	assert.Equal(t, notice.CodeSongNotFound, res.Notice.Code)
}

func TestEngine_AddCreditLeavesPromo(t *testing.T) {
	h := newHarness(t, []song.Song{songUno})
	h.engine.Start()
	require.True(t, h.engine.Status().PromoActive)

	h.engine.AddCredit()

	st := h.engine.Status()
	assert.False(t, st.PromoActive)
	assert.False(t, st.ControlsLocked)
	assert.Equal(t, credit.ModeInteractive, st.Mode)
	assert.Equal(t, "stop", h.surface.last().Op)

	modes := h.notifier.ofType(notification.TypeModeChanged)
	require.NotEmpty(t, modes)
	last := modes[len(modes)-1].SessionInfo
	assert.Equal(t, "interactive", last.Mode)
	assert.False(t, last.Fullscreen)

	h.engine.AddCredit()
	assert.Equal(t, 2, h.engine.Status().Credits)
	assert.Len(t, h.notifier.ofType(notification.TypeCreditsChanged), 1)
}

func TestEngine_EnterCodeRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("no credit", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno})
		res := h.engine.EnterCode(ctx, "00001")
		assert.False(t, res.Accepted)
		assert.Equal(t, notice.CodeNoCredit, res.Notice.Code)
		assert.Equal(t, 0, h.engine.Status().QueueSize)
	})

	t.Run("unknown code keeps credit", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno}, withCredits(1))
		res := h.engine.EnterCode(ctx, "99999")
		assert.False(t, res.Accepted)
		assert.Equal(t, notice.CodeSongNotFound, res.Notice.Code)
		assert.Equal(t, 1, h.engine.Status().Credits)
	})

	t.Run("partial code never matches", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno}, withCredits(1))
		res := h.engine.EnterCode(ctx, "0001")
		assert.Equal(t, notice.CodeSongNotFound, res.Notice.Code)
	})

	t.Run("duplicate keeps credit", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno, songDos}, withCredits(3),
			withGate(t, map[string]gate.Settings{"duplicate_song_filter": {Enabled: true}}))
		require.True(t, h.engine.EnterCode(ctx, "00001").Accepted) // plays
		require.True(t, h.engine.EnterCode(ctx, "00002").Accepted) // queued

		res := h.engine.EnterCode(ctx, "00002")
		assert.False(t, res.Accepted)
		assert.Equal(t, "duplicate_song", res.Notice.Code)
		assert.Equal(t, "Song is already in the queue", res.Notice.Message)
		assert.Equal(t, 1, h.engine.Status().Credits)
	})
}

func TestEngine_QueueOrderAndUpcoming(t *testing.T) {
	h := newHarness(t, []song.Song{songUno, songDos, songTres}, withCredits(3))
	ctx := context.Background()

	for _, code := range []string{"00001", "00002", "00003"} {
		require.True(t, h.engine.EnterCode(ctx, code).Accepted)
	}

	st := h.engine.Status()
	assert.Equal(t, "00001", st.NowPlaying.ID)
	require.Len(t, st.Upcoming, 2)
	assert.Equal(t, "00002", st.Upcoming[0].ID)
	assert.Equal(t, "00003", st.Upcoming[1].ID)

	queued := h.notifier.ofType(notification.TypeQueueChanged)
	require.NotEmpty(t, queued)
	lastQueue := queued[len(queued)-1]
	require.Len(t, lastQueue.Upcoming, 2)
	assert.Equal(t, "music:Pop/Beta/Dos.mp4", lastQueue.Upcoming[0].Ref)

	h.ended()
	assert.Equal(t, "00002", h.engine.Status().NowPlaying.ID)
	h.ended()
	assert.Equal(t, "00003", h.engine.Status().NowPlaying.ID)
}

func TestEngine_ResolutionFailureAdvances(t *testing.T) {
	h := newHarness(t, []song.Song{songUno, songBad}, withCredits(2))
	ctx := context.Background()

	require.True(t, h.engine.EnterCode(ctx, "00004").Accepted)

	st := h.engine.Status()
	assert.Nil(t, st.NowPlaying)
	assert.Equal(t, 1, st.Failures)
	assert.Equal(t, 1, st.Errors)
	assert.Contains(t, h.notifier.notices(), notice.CodeCannotPlay)
	assert.Equal(t, []string{"failed"}, h.recorder.kinds())

	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	assert.Equal(t, "00001", h.engine.Status().NowPlaying.ID)
}

func TestEngine_ConsecutiveBadEntriesSkippedInOneStep(t *testing.T) {
	h := newHarness(t, []song.Song{songUno, songBad}, withCredits(3))
	ctx := context.Background()

	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00004").Accepted)
	_, err := h.engine.Enqueue("00004")
	require.NoError(t, err)
	_, err = h.engine.Enqueue("00001")
	require.NoError(t, err)

	h.ended()

	st := h.engine.Status()
	require.NotNil(t, st.NowPlaying)
	assert.Equal(t, "00001", st.NowPlaying.ID)
	assert.Equal(t, 2, st.Failures)
	assert.Equal(t, 0, st.QueueSize)
}

func TestEngine_PlaybackErrorAdvances(t *testing.T) {
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(2))
	ctx := context.Background()
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)

	h.failed("file missing")

	st := h.engine.Status()
	assert.Equal(t, "00002", st.NowPlaying.ID)
	assert.Equal(t, 1, st.Errors)
	assert.Equal(t, recordCall{Kind: "failed", Path: songUno.Path, Detail: "surface: file missing"}, h.recorder.calls[1])
}

func TestEngine_StaleSignalsIgnored(t *testing.T) {
	h := newHarness(t, []song.Song{songUno}, withCredits(1))

	h.ended()
	h.failed("late")

	st := h.engine.Status()
	assert.Equal(t, 0, st.Played)
	assert.Equal(t, 0, st.Errors)
	assert.Equal(t, playback.StateIdle, st.State)
}

func TestEngine_LateReportForReplacedMediaIgnored(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		replace func(h *harness)
		report  func(h *harness, seq uint64)
	}{
		{
			name:    "ended after skip",
			replace: func(h *harness) { require.NoError(t, h.engine.Skip(ctx, OriginOperator)) },
			report:  func(h *harness, seq uint64) { h.engine.OnPlaybackEnded(seq) },
		},
		{
			name:    "error after skip",
			replace: func(h *harness) { require.NoError(t, h.engine.Skip(ctx, OriginOperator)) },
			report:  func(h *harness, seq uint64) { h.engine.OnPlaybackError(seq, "killed") },
		},
		{
			name:    "ended after advance",
			replace: func(h *harness) { h.engine.Advance() },
			report:  func(h *harness, seq uint64) { h.engine.OnPlaybackEnded(seq) },
		},
		{
			name:    "error after advance",
			replace: func(h *harness) { h.engine.Advance() },
			report:  func(h *harness, seq uint64) { h.engine.OnPlaybackError(seq, "killed") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, []song.Song{songUno, songDos, songTres}, withCredits(4))
			for _, code := range []string{"00001", "00002", "00003"} {
				require.True(t, h.engine.EnterCode(ctx, code).Accepted)
			}
			first := h.surface.playing()

			tt.replace(h)
			require.Equal(t, "00002", h.engine.Status().NowPlaying.ID)
			second := h.surface.playing()
			require.NotEqual(t, first, second)

			tt.report(h, first)

			st := h.engine.Status()
			assert.Equal(t, "00002", st.NowPlaying.ID)
			assert.Equal(t, 0, st.Errors)
			assert.Equal(t, second, st.PlaySeq)

			h.ended()
			assert.Equal(t, "00003", h.engine.Status().NowPlaying.ID)
		})
	}
}

func TestEngine_StopInvalidatesPlaySeq(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(2))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)
	stale := h.surface.playing()

	h.engine.Stop()
	h.engine.AddCredit()
	require.Equal(t, "00002", h.engine.Status().NowPlaying.ID)

	h.engine.OnPlaybackEnded(stale)
	assert.Equal(t, "00002", h.engine.Status().NowPlaying.ID)

	plays := h.notifier.ofType(notification.TypePlay)
	require.NotEmpty(t, plays)
	last := plays[len(plays)-1].Play
	assert.Equal(t, h.surface.playing(), last.Seq)
	assert.Equal(t, "music:Pop/Beta/Dos.mp4", last.Ref)

	snap := h.engine.Snapshot()
	require.NotNil(t, snap.Play)
	assert.Equal(t, last.Seq, snap.Play.Seq)
}

func TestEngine_PromoErrors(t *testing.T) {
	t.Run("surface cannot play promo", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno})
		h.engine.Start()
		require.True(t, h.engine.Status().PromoActive)

		h.failed("decode error")

		st := h.engine.Status()
		assert.False(t, st.PromoActive)
		assert.Equal(t, 1, st.Errors)
		assert.Equal(t, []string{notice.CodePromoError}, h.notifier.notices())
	})

	t.Run("promo reference escapes root", func(t *testing.T) {
		h := newHarness(t, []song.Song{songUno}, withPromo("../promo.mp4"))
		h.engine.Start()

		st := h.engine.Status()
		assert.False(t, st.PromoActive)
		assert.Equal(t, 1, st.Errors)
		assert.Equal(t, []string{notice.CodePromoError}, h.notifier.notices())

		// Not retried until the kiosk leaves idle mode.
		h.engine.Stop()
		assert.Equal(t, 1, h.engine.Status().Errors)
	})
}

func TestEngine_Skip(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(3))

	assert.ErrorIs(t, h.engine.Skip(ctx, OriginKiosk), playback.ErrNoTrack)

	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	assert.ErrorIs(t, h.engine.Skip(ctx, OriginKiosk), playback.ErrQueueEmpty)

	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)
	require.NoError(t, h.engine.Skip(ctx, OriginKiosk))

	st := h.engine.Status()
	assert.Equal(t, "00002", st.NowPlaying.ID)
	assert.Equal(t, 1, st.Skipped)
}

func TestEngine_SkipGatedWhileLocked(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(2))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)
	require.True(t, h.engine.Status().ControlsLocked)

	err := h.engine.Skip(ctx, OriginKiosk)
	assert.Error(t, err)
	assert.Contains(t, h.notifier.notices(), notice.CodeControlsLocked)
	assert.Equal(t, "00001", h.engine.Status().NowPlaying.ID)

	require.NoError(t, h.engine.Skip(ctx, OriginOperator))
	assert.Equal(t, "00002", h.engine.Status().NowPlaying.ID)
}

func TestEngine_IdleQueueKeepsDraining(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(2))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)

	st := h.engine.Status()
	assert.Equal(t, credit.ModeIdle, st.Mode)
	assert.False(t, st.PromoActive)

	h.ended()
	st = h.engine.Status()
	assert.Equal(t, "00002", st.NowPlaying.ID)
	assert.False(t, st.PromoActive)

	h.ended()
	assert.True(t, h.engine.Status().PromoActive)
}

func TestEngine_CreditResumesStoppedQueue(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(2))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)

	h.engine.Stop()
	st := h.engine.Status()
	assert.Nil(t, st.NowPlaying)
	assert.Equal(t, 1, st.QueueSize)
	assert.Equal(t, "stop", h.surface.last().Op)

	h.engine.AddCredit()
	st = h.engine.Status()
	require.NotNil(t, st.NowPlaying)
	assert.Equal(t, "00002", st.NowPlaying.ID)
}

func TestEngine_InteractiveQueueEmptyStopsSurface(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno}, withCredits(2))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)

	h.ended()

	st := h.engine.Status()
	assert.Equal(t, credit.ModeInteractive, st.Mode)
	assert.False(t, st.PromoActive)
	assert.Equal(t, "stop", h.surface.last().Op)
}

func TestEngine_OperatorEnqueue(t *testing.T) {
	h := newHarness(t, []song.Song{songUno})
	h.engine.Start()
	require.True(t, h.engine.Status().PromoActive)

	s, err := h.engine.Enqueue("00001")
	require.NoError(t, err)
	assert.Equal(t, songUno, s)

	st := h.engine.Status()
	assert.False(t, st.PromoActive)
	assert.Equal(t, "00001", st.NowPlaying.ID)
	assert.Equal(t, 0, st.Credits)

	_, err = h.engine.Enqueue("12345")
	assert.ErrorIs(t, err, ErrSongNotFound)

	h.ended()
	assert.True(t, h.engine.Status().PromoActive)
}

func TestEngine_NoticeDismissal(t *testing.T) {
	h := newHarness(t, []song.Song{songUno})
	h.engine.EnterCode(context.Background(), "00001")
	require.NotNil(t, h.engine.Status().Notice)

	h.clock.fireLast()

	assert.Nil(t, h.engine.Status().Notice)
	dismissed := h.notifier.ofType(notification.TypeNoticeDismissed)
	require.Len(t, dismissed, 1)
	assert.Equal(t, notice.CodeNoCredit, dismissed[0].Notice.Code)
}

func TestEngine_CustomMessages(t *testing.T) {
	msgs := map[string]string{notice.CodeSongAdded: "Cancion {title} agregada"}
	h := newHarness(t, []song.Song{songUno}, withCredits(1), func(c *Config, _ *Deps) {
		c.Messages = func(code string) string { return msgs[code] }
	})

	res := h.engine.EnterCode(context.Background(), "00001")
	assert.Equal(t, "Cancion Uno agregada", res.Notice.Message)
}

func TestEngine_Browse(t *testing.T) {
	h := newHarness(t, []song.Song{songTres, songUno, songDos})

	res, err := h.engine.Page(1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalSongs)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, "00001", res.Songs[0].ID)

	res, err = h.engine.Page(1, 10, "Rock")
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalSongs)

	assert.Equal(t, []string{"Pop", "Rock"}, h.engine.Genres())
	assert.Len(t, h.engine.Songs(), 3)
}

func TestEngine_Background(t *testing.T) {
	h := newHarness(t, nil)

	clip, loc, err := h.engine.Background()
	require.NoError(t, err)
	assert.Contains(t, []string{"bg1", "bg2", "bg3"}, clip.ID)
	assert.Equal(t, filepath.Join("/srv/bg", clip.Ref.Rel()), loc)
}

func TestEngine_Snapshot(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, []song.Song{songUno, songDos}, withCredits(3))
	require.True(t, h.engine.EnterCode(ctx, "00001").Accepted)
	require.True(t, h.engine.EnterCode(ctx, "00002").Accepted)

	snap := h.engine.Snapshot()
	assert.Equal(t, notification.TypeInitialState, snap.Type)
	assert.Equal(t, 1, snap.SessionInfo.Credits)
	assert.Equal(t, h.engine.ID(), snap.SessionInfo.SessionID)
	assert.Equal(t, "00001", snap.TrackInfo.ID)
	require.Len(t, snap.Upcoming, 1)
	assert.Equal(t, "00002", snap.Upcoming[0].ID)
	require.NotNil(t, snap.Notice)
	assert.Equal(t, notice.CodeSongAdded, snap.Notice.Code)
}

func TestEngine_ClosedIgnoresOperations(t *testing.T) {
	h := newHarness(t, []song.Song{songUno}, withCredits(1))
	h.engine.Close()

	select {
	case <-h.engine.Done():
	default:
		t.Fatal("done channel not closed")
	}

	res := h.engine.EnterCode(context.Background(), "00001")
	assert.False(t, res.Accepted)
	_, err := h.engine.Enqueue("00001")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 1, h.engine.Status().Credits)
}
