package connect

import (
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/osa030/rockola/internal/app/catalog"
	"github.com/osa030/rockola/internal/app/session"
	"github.com/osa030/rockola/internal/domain/song"
	"github.com/osa030/rockola/internal/infra/playlog"
)

// PageQuery represents ListSongs parameters. Absent page and limit take
// the defaults; explicit values are validated as given. A catalog holds at
// most 99999 songs, which bounds the page number.
type PageQuery struct {
	Page  *int   `mapstructure:"page" default:"1" validate:"gte=1,lte=99999"`
	Limit *int   `mapstructure:"limit" default:"20" validate:"gte=1,lte=500"`
	Genre string `mapstructure:"genre"`
}

// PlaybackReport represents PlaybackError parameters. Seq is the value the
// display received in the play notification it is reporting on.
type PlaybackReport struct {
	Seq    *uint64 `mapstructure:"seq" validate:"required"`
	Detail string  `mapstructure:"detail"`
}

// newStruct wraps structpb.NewStruct, turning a conversion failure into an
// internal error.
func newStruct(m map[string]any) (*connect.Response[structpb.Struct], error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, errors.Wrap(err, "failed to encode response"))
	}
	return connect.NewResponse(s), nil
}

func songMap(s song.Song) map[string]any {
	return map[string]any{
		"id":     s.ID,
		"title":  s.Title,
		"artist": s.Artist,
		"genre":  s.Genre,
		"path":   s.Path,
		"label":  s.Label(),
	}
}

func songList(songs []song.Song) []any {
	out := make([]any, len(songs))
	for i, s := range songs {
		out[i] = songMap(s)
	}
	return out
}

func pageMap(p catalog.PageResult) map[string]any {
	return map[string]any{
		"songs":        songList(p.Songs),
		"total_songs":  p.TotalSongs,
		"total_pages":  p.TotalPages,
		"current_page": p.CurrentPage,
	}
}

func statusMap(st session.Status) map[string]any {
	m := map[string]any{
		"session_id":       st.SessionID,
		"credits":          st.Credits,
		"mode":             st.Mode.String(),
		"playback_state":   st.State.String(),
		"upcoming":         songList(st.Upcoming),
		"queue_size":       st.QueueSize,
		"promo_active":     st.PromoActive,
		"play_seq":         st.PlaySeq,
		"controls_locked":  st.ControlsLocked,
		"played":           st.Played,
		"failures":         st.Failures,
		"skipped":          st.Skipped,
		"errors":           st.Errors,
		"catalog_size":     st.CatalogSize,
		"catalog_degraded": st.CatalogDegraded,
	}
	if st.NowPlaying != nil {
		m["now_playing"] = songMap(*st.NowPlaying)
	}
	if st.Notice != nil {
		m["notice"] = map[string]any{
			"code":    st.Notice.Code,
			"message": st.Notice.Message,
			"seq":     st.Notice.Seq,
		}
	}
	return m
}

func historyList(entries []playlog.Entry) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"id":     e.ID,
			"kind":   e.Kind,
			"path":   e.Path,
			"detail": e.Detail,
			"at":     e.At.Format(time.RFC3339),
		}
	}
	return out
}
