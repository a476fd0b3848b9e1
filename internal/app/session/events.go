package session

import (
	"github.com/osa030/rockola/internal/app/media"
	"github.com/osa030/rockola/internal/app/notice"
	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/domain/song"
)

// broadcast queues a notification for after the lock is released.
func (e *Engine) broadcast(n *notification.Notification) {
	e.later(func() { e.notifier.Broadcast(n) })
}

// pushSession broadcasts the current session state.
func (e *Engine) pushSession(t notification.Type) {
	e.broadcast(&notification.Notification{
		Type:        t,
		SessionInfo: e.sessionInfo(),
	})
}

// pushQueue broadcasts the upcoming entries.
func (e *Engine) pushQueue() {
	e.broadcast(&notification.Notification{
		Type:        notification.TypeQueueChanged,
		SessionInfo: e.sessionInfo(),
		Upcoming:    e.upcomingInfo(),
	})
}

// pushNowPlaying broadcasts the playback cursor; nil means nothing plays.
func (e *Engine) pushNowPlaying(entry *song.Entry) {
	n := &notification.Notification{
		Type:        notification.TypeNowPlaying,
		SessionInfo: e.sessionInfo(),
	}
	if entry != nil {
		info := e.trackInfo(entry.Path)
		n.TrackInfo = &info
	}
	e.broadcast(n)
}

func (e *Engine) showNotice(code string) notice.Notice {
	return e.showNoticeTitle(code, "")
}

// showNoticeTitle puts a notice on the banner and broadcasts it.
func (e *Engine) showNoticeTitle(code, title string) notice.Notice {
	n := e.banner.Show(code, e.message(code, title))
	e.broadcast(&notification.Notification{
		Type:   notification.TypeNotice,
		Notice: &notification.NoticeInfo{Code: n.Code, Message: n.Message, Seq: n.Seq},
	})
	return n
}

// onNoticeDismissed runs on the banner timer, outside the engine lock.
func (e *Engine) onNoticeDismissed(n notice.Notice) {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()
	e.notifier.Broadcast(&notification.Notification{
		Type:   notification.TypeNoticeDismissed,
		Notice: &notification.NoticeInfo{Code: n.Code, Message: n.Message, Seq: n.Seq},
	})
}

func (e *Engine) sessionInfo() *notification.SessionInfo {
	return &notification.SessionInfo{
		SessionID:      e.id,
		Credits:        e.credits.Credits(),
		Mode:           e.credits.Mode().String(),
		PlaybackState:  e.playback.State().String(),
		ControlsLocked: !e.credits.IsOpen(),
		Fullscreen:     e.promoActive,
		PromoActive:    e.promoActive,
		QueueSize:      e.playback.Len(),
	}
}

// trackInfo joins a queue path back to its catalog metadata.
func (e *Engine) trackInfo(path string) notification.TrackInfo {
	s := e.index.Describe(path)
	return notification.TrackInfo{
		ID:     s.ID,
		Title:  s.Title,
		Artist: s.Artist,
		Genre:  s.Genre,
		Ref:    musicRef(path),
	}
}

func (e *Engine) upcomingInfo() []notification.TrackInfo {
	entries := e.playback.Upcoming(e.upcomingCount)
	out := make([]notification.TrackInfo, len(entries))
	for i, entry := range entries {
		out[i] = e.trackInfo(entry.Path)
	}
	return out
}

// Snapshot returns the full state as an initial_state notification for a
// new subscriber.
func (e *Engine) Snapshot() *notification.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := &notification.Notification{
		Type:        notification.TypeInitialState,
		SessionInfo: e.sessionInfo(),
		Upcoming:    e.upcomingInfo(),
	}
	if cur, ok := e.playback.Current(); ok {
		info := e.trackInfo(cur.Path)
		n.TrackInfo = &info
	}
	if cur, ok := e.banner.Current(); ok {
		n.Notice = &notification.NoticeInfo{Code: cur.Code, Message: cur.Message, Seq: cur.Seq}
	}
	if e.onSurface != nil {
		play := *e.onSurface
		n.Play = &play
	}
	return n
}

// musicRef returns the virtual reference for a music path, or "" if the
// path cannot be expressed as one.
func musicRef(path string) string {
	ref, err := media.RefFor(media.NamespaceMusic, path)
	if err != nil {
		return ""
	}
	return ref.String()
}
