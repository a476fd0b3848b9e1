package connect

import (
	"context"
	"sync"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/rockola/internal/app/notification"
	"github.com/osa030/rockola/internal/app/session"
	"github.com/osa030/rockola/internal/domain/song"
	"github.com/osa030/rockola/internal/infra/decode"
)

// KioskSettings are the display settings the kiosk fetches at startup.
type KioskSettings struct {
	PageSize         int
	UpcomingCount    int
	NoticeDurationMs int
}

// KioskService implements the KioskService RPC used by the kiosk display.
type KioskService struct {
	session       *session.Engine
	notifications *notification.Manager
	settings      KioskSettings
}

// NewKioskService creates a new KioskService.
func NewKioskService(engine *session.Engine, notifications *notification.Manager, settings KioskSettings) *KioskService {
	return &KioskService{
		session:       engine,
		notifications: notifications,
		settings:      settings,
	}
}

// ListSongs returns one page of the catalog.
func (s *KioskService) ListSongs(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var q PageQuery
	if err := decode.Struct(req.Msg.AsMap(), &q); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.Wrap(err, "invalid parameters"))
	}

	page, err := s.session.Page(*q.Page, *q.Limit, q.Genre)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return newStruct(pageMap(page))
}

// ListGenres returns the sorted genres.
func (s *KioskService) ListGenres(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	genres := s.session.Genres()
	list := make([]any, len(genres))
	for i, g := range genres {
		list[i] = g
	}
	return newStruct(map[string]any{"genres": list})
}

// GetAllSongs returns the whole catalog for local search.
func (s *KioskService) GetAllSongs(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	songs := s.session.Songs()
	return newStruct(map[string]any{"songs": songList(songs)})
}

// EnterCode handles a direct-entry code.
func (s *KioskService) EnterCode(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.Struct], error) {
	res := s.session.EnterCode(ctx, req.Msg.GetValue())

	m := map[string]any{
		"accepted": res.Accepted,
		"code":     res.Notice.Code,
		"message":  res.Notice.Message,
	}
	if res.Song != (song.Song{}) {
		m["song"] = songMap(res.Song)
	}
	return newStruct(m)
}

// Skip handles the kiosk skip key.
func (s *KioskService) Skip(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return skipResponse(s.session.Skip(ctx, session.OriginKiosk))
}

// PlaybackEnded is the display reporting the end of the media it was told
// to play under the given seq.
func (s *KioskService) PlaybackEnded(
	ctx context.Context,
	req *connect.Request[wrapperspb.UInt64Value],
) (*connect.Response[emptypb.Empty], error) {
	s.session.OnPlaybackEnded(req.Msg.GetValue())
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// PlaybackError is the display reporting that the media it was told to play
// under the given seq could not be played.
func (s *KioskService) PlaybackError(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[emptypb.Empty], error) {
	var report PlaybackReport
	if err := decode.Struct(req.Msg.AsMap(), &report); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.Wrap(err, "invalid parameters"))
	}
	s.session.OnPlaybackError(*report.Seq, report.Detail)
	return connect.NewResponse(&emptypb.Empty{}), nil
}

// GetBackground returns a random background clip.
func (s *KioskService) GetBackground(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	clip, loc, err := s.session.Background()
	if err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return newStruct(map[string]any{
		"id":       clip.ID,
		"ref":      clip.Ref.String(),
		"location": loc,
	})
}

// GetSettings returns the kiosk display settings.
func (s *KioskService) GetSettings(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return newStruct(map[string]any{
		"page_size":          s.settings.PageSize,
		"upcoming_count":     s.settings.UpcomingCount,
		"notice_duration_ms": s.settings.NoticeDurationMs,
	})
}

// Subscribe streams session notifications, starting with the initial state.
func (s *KioskService) Subscribe(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
	stream *connect.ServerStream[structpb.Struct],
) error {
	adapter := &notificationStreamAdapter{stream: stream}

	initial := s.session.Snapshot()
	initial.SequenceNo = s.notifications.NextSequenceNo()
	if err := adapter.Send(initial); err != nil {
		return err
	}

	subscriptionID := s.notifications.Subscribe(adapter)
	zlog.Debug().Msgf("subscriber joined: subscription=%s", subscriptionID)

	// Wait for context cancellation or session end
	select {
	case <-ctx.Done():
	case <-s.session.Done():
	}

	s.notifications.Unsubscribe(subscriptionID)
	zlog.Debug().Msgf("subscriber left: subscription=%s", subscriptionID)
	return nil
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
// Sends are serialized: a timed out broadcast may still be sending when the
// next one starts.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[structpb.Struct]
}

func (a *notificationStreamAdapter) Send(n *notification.Notification) error {
	msg, err := structpb.NewStruct(n.AsMap())
	if err != nil {
		return errors.Wrap(err, "failed to encode notification")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(msg)
}

func skipResponse(err error) (*connect.Response[structpb.Struct], error) {
	if err != nil {
		return newStruct(map[string]any{
			"success": false,
			"message": err.Error(),
		})
	}
	return newStruct(map[string]any{
		"success": true,
		"message": "Song skipped",
	})
}
