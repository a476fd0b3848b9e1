package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/osa030/rockola/internal/app/session"
	"github.com/osa030/rockola/internal/infra/playlog"
)

// defaultHistory is the number of play log entries returned when the
// request does not say.
const defaultHistory = 20

// History reads the play log.
type History interface {
	Recent(ctx context.Context, n int) ([]playlog.Entry, error)
}

// OperatorService implements the OperatorService RPC.
type OperatorService struct {
	session *session.Engine
	history History // nil when the play log is disabled
}

// NewOperatorService creates a new OperatorService.
func NewOperatorService(engine *session.Engine, history History) *OperatorService {
	return &OperatorService{
		session: engine,
		history: history,
	}
}

// AddCredit adds one credit, as a coin would.
func (s *OperatorService) AddCredit(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.AddCredit()
	return newStruct(statusMap(s.session.Status()))
}

// Enqueue queues a song without spending a credit.
func (s *OperatorService) Enqueue(
	ctx context.Context,
	req *connect.Request[wrapperspb.StringValue],
) (*connect.Response[structpb.Struct], error) {
	sng, err := s.session.Enqueue(req.Msg.GetValue())
	if err != nil {
		if errors.Is(err, session.ErrSongNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return newStruct(songMap(sng))
}

// Skip skips the current song.
func (s *OperatorService) Skip(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return skipResponse(s.session.Skip(ctx, session.OriginOperator))
}

// Advance drops the current song and plays the next one.
func (s *OperatorService) Advance(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Advance()
	return newStruct(statusMap(s.session.Status()))
}

// Stop stops playback without touching the queue.
func (s *OperatorService) Stop(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	s.session.Stop()
	return newStruct(statusMap(s.session.Status()))
}

// GetStatus returns the current session status.
func (s *OperatorService) GetStatus(
	ctx context.Context,
	req *connect.Request[emptypb.Empty],
) (*connect.Response[structpb.Struct], error) {
	return newStruct(statusMap(s.session.Status()))
}

// GetHistory returns the newest play log entries.
func (s *OperatorService) GetHistory(
	ctx context.Context,
	req *connect.Request[wrapperspb.Int32Value],
) (*connect.Response[structpb.Struct], error) {
	if s.history == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("play log is disabled"))
	}

	n := int(req.Msg.GetValue())
	if n <= 0 {
		n = defaultHistory
	}
	entries, err := s.history.Recent(ctx, n)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return newStruct(map[string]any{"entries": historyList(entries)})
}
