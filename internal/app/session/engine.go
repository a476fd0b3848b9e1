// Package session provides the kiosk session engine.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/app/background"
	"github.com/osa030/rockola/internal/app/catalog"
	"github.com/osa030/rockola/internal/app/credit"
	"github.com/osa030/rockola/internal/app/gate"
	"github.com/osa030/rockola/internal/app/media"
	"github.com/osa030/rockola/internal/app/notice"
	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/app/playback"
)

// DefaultUpcomingCount is how many queued entries the kiosk shows.
const DefaultUpcomingCount = 6

var (
	ErrSongNotFound = errors.New("song not found")
	ErrClosed       = errors.New("session is closed")
)

// Surface is the playback output. The engine tells it what to play and the
// surface reports back through OnPlaybackEnded and OnPlaybackError, quoting
// the seq it was given so that reports about replaced media can be dropped.
// Methods are called outside the engine lock but must not call back into
// the engine synchronously.
type Surface interface {
	Play(seq uint64, location string, loop bool)
	Stop()
}

// Broadcaster delivers notifications to subscribers.
type Broadcaster interface {
	Broadcast(*notification.Notification)
}

// Recorder keeps a history of playback outcomes for the operator.
type Recorder interface {
	Record(ctx context.Context, kind, path, detail string, at time.Time) error
}

// MessageFunc returns the text for a notice code, or "" for the default.
type MessageFunc func(code string) string

// Config holds the engine settings.
type Config struct {
	InitialCredits int
	UpcomingCount  int
	NoticeDuration time.Duration
	PromoFile      string // Relative reference inside the promo namespace
	Messages       MessageFunc
}

// Deps holds the collaborators of the engine. Index, Gateway and
// Backgrounds are required.
type Deps struct {
	Index       *catalog.Index
	Gateway     *media.Gateway
	Backgrounds *background.Selector
	Gate        *gate.Chain
	Surface     Surface
	Notifier    Broadcaster
	Recorder    Recorder
	Clock       notice.Clock
	Now         func() time.Time
}

// Engine owns the whole kiosk session: catalog, credits, queue, promo and
// notices. Every public operation runs to completion under one lock.
// Side effects produced by an operation (surface commands, broadcasts,
// history records) are collected and run in order after the lock is
// released.
type Engine struct {
	mu      sync.Mutex
	flushMu sync.Mutex // Keeps effects of consecutive operations in order

	id string

	// Components
	index       *catalog.Index
	gateway     *media.Gateway
	backgrounds *background.Selector
	credits     *credit.Machine
	playback    *playback.Controller
	gate        *gate.Chain
	banner      *notice.Banner

	// Collaborators
	surface  Surface
	notifier Broadcaster
	recorder Recorder
	now      func() time.Time

	upcomingCount int
	promoFile     string
	messages      MessageFunc

	// Surface state
	promoActive bool // Promo clip is looping full-screen
	promoFailed bool // Last promo attempt failed; retried on the next idle transition
	surfaceBusy bool // A song was handed to the surface
	playSeq     uint64
	onSurface   *notification.PlayInfo // nil while the surface is stopped

	// Per-operation bookkeeping
	pendingFailure error // Resolution failure to feed back into the controller
	queueDirty     bool
	effects        []func()

	promoErrors int
	closed      bool
	done        chan struct{}
}

// NewEngine creates a new session engine.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if deps.Index == nil {
		return nil, errors.New("catalog index is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("media gateway is required")
	}
	if deps.Backgrounds == nil {
		return nil, errors.New("background selector is required")
	}

	if deps.Gate == nil {
		chain, err := gate.Build(nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build gate")
		}
		deps.Gate = chain
	}
	if deps.Surface == nil {
		deps.Surface = nopSurface{}
	}
	if deps.Notifier == nil {
		deps.Notifier = nopBroadcaster{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if cfg.UpcomingCount <= 0 {
		cfg.UpcomingCount = DefaultUpcomingCount
	}
	if cfg.Messages == nil {
		cfg.Messages = func(string) string { return "" }
	}

	e := &Engine{
		id:            uuid.New().String(),
		index:         deps.Index,
		gateway:       deps.Gateway,
		backgrounds:   deps.Backgrounds,
		credits:       credit.New(cfg.InitialCredits),
		gate:          deps.Gate,
		surface:       deps.Surface,
		notifier:      deps.Notifier,
		recorder:      deps.Recorder,
		now:           deps.Now,
		upcomingCount: cfg.UpcomingCount,
		promoFile:     cfg.PromoFile,
		messages:      cfg.Messages,
		done:          make(chan struct{}),
	}
	e.playback = playback.NewController(playback.SinkFunc(e.onPlaybackEvent))
	e.banner = notice.NewBanner(deps.Clock, cfg.NoticeDuration, e.onNoticeDismissed)

	zlog.Info().Msgf("session created: session_id=%s credits=%d mode=%s songs=%d",
		e.id, e.credits.Credits(), e.credits.Mode(), e.index.Len())
	return e, nil
}

// ID returns the session ID.
func (e *Engine) ID() string {
	return e.id
}

// Start puts the kiosk in its initial presentation: the promo when idle,
// and a notice when the catalog is empty.
func (e *Engine) Start() {
	e.run(func() {
		if e.index.Len() == 0 {
			e.showNotice(notice.CodeCatalogEmpty)
		}
		e.pushSession(notification.TypeModeChanged)
	})
}

// Close stops playback and cancels pending notices.
func (e *Engine) Close() {
	e.run(func() {
		if e.closed {
			return
		}
		e.closed = true
		close(e.done)
		if e.promoActive || e.surfaceBusy {
			e.stopSurface()
		}
		e.promoActive = false
		zlog.Info().Msgf("session closed: session_id=%s", e.id)
	})
	e.banner.Close()
}

// Done returns a channel that is closed when the session is closed.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// run executes fn under the engine lock, settles the idle presentation and
// then runs the collected effects outside the lock.
func (e *Engine) run(fn func()) {
	e.mu.Lock()
	fn()
	if !e.closed {
		e.settle()
	}
	if e.queueDirty {
		e.queueDirty = false
		e.pushQueue()
	}
	effects := e.effects
	e.effects = nil

	e.flushMu.Lock()
	e.mu.Unlock()
	defer e.flushMu.Unlock()

	for _, f := range effects {
		f()
	}
}

// later adds a side effect to run once the lock is released.
func (e *Engine) later(f func()) {
	e.effects = append(e.effects, f)
}

// drive calls into the playback controller and keeps feeding resolution
// failures back to it until an entry resolves or the queue is exhausted.
func (e *Engine) drive(op func()) {
	op()
	for e.pendingFailure != nil {
		err := e.pendingFailure
		e.pendingFailure = nil
		e.playback.Failed(err)
	}
}

// message returns the configured text for code with {title} substituted.
func (e *Engine) message(code, title string) string {
	msg := e.messages(code)
	if msg == "" {
		msg = defaultMessages[code]
	}
	if msg == "" {
		msg = code
	}
	return strings.ReplaceAll(msg, "{title}", title)
}

var defaultMessages = map[string]string{
	notice.CodeSongAdded:      "Song {title} added",
	notice.CodeSongNotFound:   "Song not found",
	notice.CodeNoCredit:       "No credit",
	notice.CodeCannotPlay:     "Cannot play this item",
	notice.CodePromoError:     "Error loading promo video",
	notice.CodeCatalogEmpty:   "No songs available",
	notice.CodeControlsLocked: "Insert a coin to use the controls",
	"duplicate_song":          "Song is already in the queue",
	"queue_full":              "The queue is full",
}

type nopSurface struct{}

func (nopSurface) Play(uint64, string, bool) {}
func (nopSurface) Stop()                     {}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(*notification.Notification) {}
