package notification

// Type identifies what a notification reports.
type Type string

const (
	TypeInitialState    Type = "initial_state"    // Sent once to a new subscriber
	TypeNowPlaying      Type = "now_playing"      // An entry became the playback cursor
	TypeQueueChanged    Type = "queue_changed"    // Upcoming entries changed
	TypeModeChanged     Type = "mode_changed"     // Interactive/idle switch
	TypeCreditsChanged  Type = "credits_changed"  // Balance changed without a mode switch
	TypeNotice          Type = "notice"           // Transient message to show
	TypeNoticeDismissed Type = "notice_dismissed" // Transient message expired
	TypePlay            Type = "play"             // Playback surface must play a location
	TypeStop            Type = "stop"             // Playback surface must stop
)

// SessionInfo is the kiosk state at the time of a notification.
type SessionInfo struct {
	SessionID      string
	Credits        int
	Mode           string
	PlaybackState  string
	ControlsLocked bool
	Fullscreen     bool
	PromoActive    bool
	QueueSize      int
}

// TrackInfo describes a song on the cursor or in the queue.
type TrackInfo struct {
	ID     string
	Title  string
	Artist string
	Genre  string
	Ref    string // music:<percent-encoded path>
}

// NoticeInfo is a transient message.
type NoticeInfo struct {
	Code    string
	Message string
	Seq     uint64
}

// PlayInfo tells the playback surface what to play.
type PlayInfo struct {
	Seq      uint64 // Quoted back by the surface when it reports
	Location string // Resolved file location
	Ref      string // Virtual reference it was resolved from
	Loop     bool
}

// Notification is one event broadcast to subscribers.
type Notification struct {
	Type        Type
	SequenceNo  uint64
	SessionInfo *SessionInfo
	TrackInfo   *TrackInfo
	Upcoming    []TrackInfo
	Notice      *NoticeInfo
	Play        *PlayInfo
}

// AsMap flattens the notification into plain values for wire encoding.
// Only map[string]any, []any and scalars are produced.
func (n *Notification) AsMap() map[string]any {
	m := map[string]any{
		"type":        string(n.Type),
		"sequence_no": n.SequenceNo,
	}
	if s := n.SessionInfo; s != nil {
		m["session"] = map[string]any{
			"session_id":      s.SessionID,
			"credits":         s.Credits,
			"mode":            s.Mode,
			"playback_state":  s.PlaybackState,
			"controls_locked": s.ControlsLocked,
			"fullscreen":      s.Fullscreen,
			"promo_active":    s.PromoActive,
			"queue_size":      s.QueueSize,
		}
	}
	if n.TrackInfo != nil {
		m["track"] = n.TrackInfo.AsMap()
	}
	if len(n.Upcoming) > 0 {
		up := make([]any, len(n.Upcoming))
		for i := range n.Upcoming {
			up[i] = n.Upcoming[i].AsMap()
		}
		m["upcoming"] = up
	}
	if n.Notice != nil {
		m["notice"] = map[string]any{
			"code":    n.Notice.Code,
			"message": n.Notice.Message,
			"seq":     n.Notice.Seq,
		}
	}
	if n.Play != nil {
		m["play"] = map[string]any{
			"seq":      n.Play.Seq,
			"location": n.Play.Location,
			"ref":      n.Play.Ref,
			"loop":     n.Play.Loop,
		}
	}
	return m
}

// AsMap flattens the track for wire encoding.
func (t TrackInfo) AsMap() map[string]any {
	return map[string]any{
		"id":     t.ID,
		"title":  t.Title,
		"artist": t.Artist,
		"genre":  t.Genre,
		"ref":    t.Ref,
	}
}
