package session

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/rockola/internal/app/gate"
	"github.com/osa030/rockola/internal/app/media"
	"github.com/osa030/rockola/internal/app/notice"
	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/app/playback"
	"github.com/osa030/rockola/internal/domain/song"
)

// Origin identifies who triggered an operation.
type Origin int

const (
	OriginKiosk    Origin = iota // Patron at the kiosk, subject to the gate
	OriginOperator               // Operator console, never gated
)

// CodeResult is the outcome of a direct-entry code.
type CodeResult struct {
	Accepted bool
	Song     song.Song // Zero unless the code matched
	Notice   notice.Notice
}

// AddCredit adds one credit. Entering interactive mode stops the promo,
// unlocks the controls and resumes the queue if nothing is playing.
func (e *Engine) AddCredit() {
	e.run(func() {
		if e.closed {
			return
		}
		t := e.credits.AddCredit()
		zlog.Info().Msgf("credit added: credits=%d mode=%s", e.credits.Credits(), t.To)

		if !t.EnteredInteractive() {
			e.pushSession(notification.TypeCreditsChanged)
			return
		}

		e.promoFailed = false
		if e.promoActive {
			e.promoActive = false
			e.stopSurface()
		}
		e.pushSession(notification.TypeModeChanged)

		if _, playing := e.playback.Current(); !playing && !e.playback.IsQueueEmpty() {
			e.drive(e.playback.Advance)
		}
	})
}

// EnterCode handles a direct-entry code typed at the kiosk: look the song up,
// run the gate, spend a credit and queue the song.
func (e *Engine) EnterCode(ctx context.Context, code string) CodeResult {
	var res CodeResult
	e.run(func() {
		if e.closed {
			return
		}
		s, ok := e.index.MatchCode(code)
		if !ok {
			zlog.Debug().Msgf("code rejected: code=%q reason=not_found", code)
			res.Notice = e.showNotice(notice.CodeSongNotFound)
			return
		}
		res.Song = s

		if result := e.gate.Execute(ctx, e.gateRequest(gate.ActionEnterCode, s)); !result.Accepted {
			zlog.Info().Msgf("code rejected: code=%s reason=%s", code, result.Code)
			res.Notice = e.showNotice(result.Code)
			return
		}

		// Auto-start is decided by the mode the patron entered the code in.
		autoStart := e.credits.IsOpen()
		t, ok := e.credits.TrySpend()
		if !ok {
			zlog.Info().Msgf("code rejected: code=%s reason=no_credit", code)
			res.Notice = e.showNotice(notice.CodeNoCredit)
			return
		}
		if t.EnteredIdle() {
			e.pushSession(notification.TypeModeChanged)
		} else {
			e.pushSession(notification.TypeCreditsChanged)
		}

		entry := song.NewEntry(s, e.now())
		zlog.Info().Msgf("song queued: id=%s path=%s credits=%d", s.ID, s.Path, e.credits.Credits())
		e.drive(func() { e.playback.Enqueue(entry, autoStart) })

		res.Accepted = true
		res.Notice = e.showNoticeTitle(notice.CodeSongAdded, s.Title)
	})
	return res
}

// Enqueue queues a song by ID for free. It is the operator's way to add
// songs and always starts playback when nothing is playing.
func (e *Engine) Enqueue(id string) (song.Song, error) {
	var (
		s   song.Song
		err error
	)
	e.run(func() {
		if e.closed {
			err = ErrClosed
			return
		}
		var ok bool
		s, ok = e.index.Lookup(id)
		if !ok {
			err = errors.Wrapf(ErrSongNotFound, "id=%s", id)
			return
		}
		if e.promoActive {
			e.promoActive = false
			e.stopSurface()
		}
		zlog.Info().Msgf("song queued by operator: id=%s path=%s", s.ID, s.Path)
		entry := song.NewEntry(s, e.now())
		e.drive(func() { e.playback.Enqueue(entry, true) })
	})
	return s, err
}

// Advance moves the cursor to the next queued entry, dropping the current one.
func (e *Engine) Advance() {
	e.run(func() {
		if e.closed {
			return
		}
		e.drive(e.playback.Advance)
	})
}

// Skip abandons the current song and plays the next one. A skip needs a
// song playing and another one queued. Kiosk skips pass the gate.
func (e *Engine) Skip(ctx context.Context, origin Origin) error {
	var err error
	e.run(func() {
		if e.closed {
			err = ErrClosed
			return
		}
		if origin == OriginKiosk {
			if result := e.gate.Execute(ctx, e.gateRequest(gate.ActionSkip, song.Song{})); !result.Accepted {
				e.showNotice(result.Code)
				err = errors.Newf("skip rejected: %s", result.Code)
				return
			}
		}
		e.drive(func() { err = e.playback.Skip() })
	})
	return err
}

// Stop clears the playback cursor and the surface without touching the
// queue. With no credit and an empty queue the promo starts.
func (e *Engine) Stop() {
	e.run(func() {
		if e.closed {
			return
		}
		e.playback.Stop()
	})
}

// OnPlaybackEnded is the surface reporting that the media started under seq
// finished. Reports for media that has since been replaced are ignored.
func (e *Engine) OnPlaybackEnded(seq uint64) {
	e.run(func() {
		if e.closed {
			return
		}
		if seq != e.playSeq {
			zlog.Debug().Msgf("ignoring stale ended signal: seq=%d current=%d", seq, e.playSeq)
			return
		}
		if _, playing := e.playback.Current(); !playing {
			zlog.Debug().Msgf("ignoring ended signal: promo_active=%v", e.promoActive)
			return
		}
		e.drive(e.playback.Ended)
	})
}

// OnPlaybackError is the surface reporting that the media started under seq
// could not be played. A song failure advances the queue; a promo failure is
// shown.
func (e *Engine) OnPlaybackError(seq uint64, detail string) {
	e.run(func() {
		if e.closed {
			return
		}
		if seq != e.playSeq {
			zlog.Debug().Msgf("ignoring stale error signal: seq=%d current=%d detail=%s", seq, e.playSeq, detail)
			return
		}
		if _, playing := e.playback.Current(); playing {
			e.drive(func() { e.playback.Failed(errors.Newf("surface: %s", detail)) })
			return
		}
		if e.promoActive {
			e.promoActive = false
			e.promoFailed = true
			e.promoErrors++
			zlog.Error().Msgf("promo playback failed: detail=%s", detail)
			e.showNotice(notice.CodePromoError)
			e.record("promo_failed", e.promoFile, detail)
			return
		}
		zlog.Debug().Msgf("ignoring error signal: detail=%s", detail)
	})
}

// onPlaybackEvent receives controller events synchronously, under the lock.
func (e *Engine) onPlaybackEvent(ev playback.Event) {
	switch ev.Type {
	case playback.EventTrackStarted:
		e.startEntry(*ev.Entry)
	case playback.EventTrackEnded:
		e.record("ended", ev.Entry.Path, "")
	case playback.EventTrackFailed:
		detail := ""
		if ev.Err != nil {
			detail = ev.Err.Error()
		}
		e.record("failed", ev.Entry.Path, detail)
	case playback.EventTrackSkipped:
		e.record("skipped", ev.Entry.Path, "")
	case playback.EventQueueChanged:
		e.queueDirty = true
	case playback.EventQueueEmpty:
		if e.surfaceBusy {
			e.stopSurface()
		}
		e.pushNowPlaying(nil)
	case playback.EventStopped:
		if e.surfaceBusy {
			e.stopSurface()
		}
		e.pushNowPlaying(nil)
	}
}

// startEntry resolves the entry that became the cursor and hands it to the
// surface. A resolution failure is fed back to the controller by drive.
func (e *Engine) startEntry(entry song.Entry) {
	loc, err := e.resolveMusic(entry.Path)
	if err != nil {
		zlog.Error().Msgf("cannot resolve entry: path=%s error=%v", entry.Path, err)
		e.showNotice(notice.CodeCannotPlay)
		e.pendingFailure = err
		return
	}

	e.promoActive = false
	e.surfaceBusy = true
	e.record("started", entry.Path, "")

	e.play(loc, musicRef(entry.Path), false)
	e.pushNowPlaying(&entry)
}

// settle starts the promo once the kiosk is idle with nothing left to play.
func (e *Engine) settle() {
	if e.credits.IsOpen() || e.promoActive || e.promoFailed {
		return
	}
	if _, playing := e.playback.Current(); playing || !e.playback.IsQueueEmpty() {
		return
	}

	ref, err := media.NewRef(media.NamespacePromo, e.promoFile)
	var loc string
	if err == nil {
		loc, err = e.gateway.ResolveRef(ref)
	}
	if err != nil {
		e.promoFailed = true
		e.promoErrors++
		zlog.Error().Msgf("cannot resolve promo: file=%s error=%v", e.promoFile, err)
		e.showNotice(notice.CodePromoError)
		return
	}

	e.promoActive = true
	e.surfaceBusy = false
	zlog.Info().Msgf("promo started: location=%s", loc)

	e.play(loc, ref.String(), true)
	e.pushSession(notification.TypeModeChanged)
}

// play hands a location to the surface under a fresh seq. Every play and
// stop bumps the seq so that late reports about earlier media no longer
// match.
func (e *Engine) play(loc, ref string, loop bool) {
	e.playSeq++
	info := &notification.PlayInfo{Seq: e.playSeq, Location: loc, Ref: ref, Loop: loop}
	e.onSurface = info
	e.later(func() { e.surface.Play(info.Seq, info.Location, info.Loop) })
	e.broadcast(&notification.Notification{Type: notification.TypePlay, Play: info})
}

func (e *Engine) stopSurface() {
	e.surfaceBusy = false
	e.playSeq++
	e.onSurface = nil
	e.later(e.surface.Stop)
	e.broadcast(&notification.Notification{Type: notification.TypeStop})
}

func (e *Engine) resolveMusic(path string) (string, error) {
	ref, err := media.RefFor(media.NamespaceMusic, path)
	if err != nil {
		return "", err
	}
	return e.gateway.ResolveRef(ref)
}

func (e *Engine) gateRequest(action gate.Action, s song.Song) gate.Request {
	req := gate.Request{
		Action:         action,
		Song:           s,
		ControlsLocked: !e.credits.IsOpen(),
	}
	if cur, ok := e.playback.Current(); ok {
		req.NowPlaying = cur.Path
	}
	for _, entry := range e.playback.Queue() {
		req.Queue = append(req.Queue, entry.Path)
	}
	return req
}

// record queues a history write for after the lock is released.
func (e *Engine) record(kind, path, detail string) {
	if e.recorder == nil {
		return
	}
	at := e.now()
	e.later(func() {
		if err := e.recorder.Record(context.Background(), kind, path, detail, at); err != nil {
			zlog.Warn().Msgf("failed to record play log: kind=%s path=%s error=%v", kind, path, err)
		}
	})
}
