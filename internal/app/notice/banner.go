// Package notice provides transient kiosk messages that dismiss themselves.
package notice

import (
	"sync"
	"time"
)

// DefaultDuration is how long a notice stays on screen.
const DefaultDuration = 2 * time.Second

// Codes shown to patrons.
const (
	CodeSongAdded      = "song_added"
	CodeSongNotFound   = "song_not_found"
	CodeNoCredit       = "no_credit"
	CodeCannotPlay     = "cannot_play"
	CodePromoError     = "promo_error"
	CodeCatalogEmpty   = "catalog_empty"
	CodeControlsLocked = "controls_locked"
)

// Notice is one transient message.
type Notice struct {
	Code    string
	Message string
	Seq     uint64 // Increases with every notice shown
}

// Timer is the part of *time.Timer the banner needs.
type Timer interface {
	Stop() bool
}

// Clock schedules dismissals. Tests inject a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Banner shows at most one notice at a time.
// Showing a new notice replaces the old one and cancels its dismissal.
type Banner struct {
	mu        sync.Mutex
	clock     Clock
	duration  time.Duration
	seq       uint64
	current   *Notice
	timer     Timer
	onDismiss func(Notice)
}

// NewBanner creates a banner. onDismiss is called, outside the banner lock,
// when a notice expires without being superseded.
func NewBanner(clock Clock, duration time.Duration, onDismiss func(Notice)) *Banner {
	if clock == nil {
		clock = SystemClock
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if onDismiss == nil {
		onDismiss = func(Notice) {}
	}
	return &Banner{clock: clock, duration: duration, onDismiss: onDismiss}
}

// Show displays a notice and returns it with its sequence number set.
func (b *Banner) Show(code, message string) Notice {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}

	b.seq++
	n := Notice{Code: code, Message: message, Seq: b.seq}
	b.current = &n
	b.timer = b.clock.AfterFunc(b.duration, func() { b.expire(n.Seq) })
	return n
}

func (b *Banner) expire(seq uint64) {
	b.mu.Lock()
	if b.current == nil || b.current.Seq != seq {
		b.mu.Unlock()
		return
	}
	n := *b.current
	b.current = nil
	b.timer = nil
	b.mu.Unlock()

	b.onDismiss(n)
}

// Current returns the notice on screen.
func (b *Banner) Current() (Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notice{}, false
	}
	return *b.current, true
}

// Close cancels any pending dismissal.
func (b *Banner) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
}
