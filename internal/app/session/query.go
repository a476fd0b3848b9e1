package session

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/rockola/internal/app/background"
	"github.com/osa030/rockola/internal/app/catalog"
	"github.com/osa030/rockola/internal/app/credit"
	"github.com/osa030/rockola/internal/app/notice"
	"github.com/osa030/rockola/internal/app/playback"
	"github.com/osa030/rockola/internal/domain/song"
)

// Status is a point-in-time view of the session for the operator.
type Status struct {
	SessionID       string
	Credits         int
	Mode            credit.Mode
	State           playback.State
	NowPlaying      *song.Song
	Upcoming        []song.Song
	QueueSize       int
	PromoActive     bool
	PlaySeq         uint64 // Seq of the media last handed to the surface
	ControlsLocked  bool
	Played          int
	Failures        int
	Skipped         int
	Errors          int // Failed songs plus promo failures
	CatalogSize     int
	CatalogDegraded bool
	Notice          *notice.Notice
}

// Status returns the current session status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	played, failures, skipped := e.playback.Stats()
	st := Status{
		SessionID:       e.id,
		Credits:         e.credits.Credits(),
		Mode:            e.credits.Mode(),
		State:           e.playback.State(),
		QueueSize:       e.playback.Len(),
		PromoActive:     e.promoActive,
		PlaySeq:         e.playSeq,
		ControlsLocked:  !e.credits.IsOpen(),
		Played:          played,
		Failures:        failures,
		Skipped:         skipped,
		Errors:          failures + e.promoErrors,
		CatalogSize:     e.index.Len(),
		CatalogDegraded: e.index.Degraded(),
	}
	if cur, ok := e.playback.Current(); ok {
		s := e.index.Describe(cur.Path)
		st.NowPlaying = &s
	}
	for _, entry := range e.playback.Upcoming(e.upcomingCount) {
		st.Upcoming = append(st.Upcoming, e.index.Describe(entry.Path))
	}
	if n, ok := e.banner.Current(); ok {
		st.Notice = &n
	}
	return st
}

// Page returns one page of the catalog, optionally filtered by genre.
func (e *Engine) Page(page, limit int, genre string) (catalog.PageResult, error) {
	// The index is immutable after load.
	return e.index.Page(page, limit, genre)
}

// Genres returns the sorted distinct genres.
func (e *Engine) Genres() []string {
	return e.index.Genres()
}

// Songs returns the full ordered catalog.
func (e *Engine) Songs() []song.Song {
	return e.index.All()
}

// Background picks a background clip and resolves its location.
func (e *Engine) Background() (background.Clip, string, error) {
	e.mu.Lock()
	clip := e.backgrounds.Pick()
	e.mu.Unlock()

	loc, err := e.gateway.ResolveRef(clip.Ref)
	if err != nil {
		return clip, "", errors.Wrapf(err, "background %s", clip.ID)
	}
	return clip, loc, nil
}
