package connect

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ListSongs fetches one catalog page. Zero page or limit use the server
// defaults.
func (c *KioskClient) ListSongs(ctx context.Context, page, limit int, genre string) (map[string]any, error) {
	m := map[string]any{}
	if page != 0 {
		m["page"] = page
	}
	if limit != 0 {
		m["limit"] = limit
	}
	if genre != "" {
		m["genre"] = genre
	}
	params, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return callStruct(ctx, c.listSongs, params)
}

// ListGenres fetches the sorted genre list.
func (c *KioskClient) ListGenres(ctx context.Context) ([]string, error) {
	res, err := callStruct(ctx, c.listGenres, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	raw, _ := res["genres"].([]any)
	genres := make([]string, 0, len(raw))
	for _, g := range raw {
		if s, ok := g.(string); ok {
			genres = append(genres, s)
		}
	}
	return genres, nil
}

// GetAllSongs fetches the whole catalog.
func (c *KioskClient) GetAllSongs(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.getAllSongs, &emptypb.Empty{})
}

// EnterCode submits a direct-entry code.
func (c *KioskClient) EnterCode(ctx context.Context, code string) (map[string]any, error) {
	return callStruct(ctx, c.enterCode, wrapperspb.String(code))
}

// Skip asks to skip the current song from the kiosk.
func (c *KioskClient) Skip(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.skip, &emptypb.Empty{})
}

// PlaybackEnded reports that the media played under seq finished.
func (c *KioskClient) PlaybackEnded(ctx context.Context, seq uint64) error {
	_, err := c.playbackEnded.CallUnary(ctx, connect.NewRequest(wrapperspb.UInt64(seq)))
	return err
}

// PlaybackError reports that the media played under seq could not be played.
func (c *KioskClient) PlaybackError(ctx context.Context, seq uint64, detail string) error {
	req, err := structpb.NewStruct(map[string]any{"seq": seq, "detail": detail})
	if err != nil {
		return err
	}
	_, err = c.playbackError.CallUnary(ctx, connect.NewRequest(req))
	return err
}

// GetBackground fetches a random background clip.
func (c *KioskClient) GetBackground(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.getBackground, &emptypb.Empty{})
}

// GetSettings fetches the kiosk display settings.
func (c *KioskClient) GetSettings(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.getSettings, &emptypb.Empty{})
}

// Subscribe opens the notification stream. The first message is the
// initial state.
func (c *KioskClient) Subscribe(ctx context.Context) (*connect.ServerStreamForClient[structpb.Struct], error) {
	return c.subscribe.CallServerStream(ctx, connect.NewRequest(&emptypb.Empty{}))
}

// AddCredit adds one credit and returns the status.
func (c *OperatorClient) AddCredit(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.addCredit, &emptypb.Empty{})
}

// Enqueue queues a song by ID without spending a credit.
func (c *OperatorClient) Enqueue(ctx context.Context, id string) (map[string]any, error) {
	return callStruct(ctx, c.enqueue, wrapperspb.String(id))
}

// Skip skips the current song.
func (c *OperatorClient) Skip(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.skip, &emptypb.Empty{})
}

// Advance drops the current song and plays the next one.
func (c *OperatorClient) Advance(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.advance, &emptypb.Empty{})
}

// Stop stops playback without touching the queue.
func (c *OperatorClient) Stop(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.stop, &emptypb.Empty{})
}

// GetStatus fetches the session status.
func (c *OperatorClient) GetStatus(ctx context.Context) (map[string]any, error) {
	return callStruct(ctx, c.getStatus, &emptypb.Empty{})
}

// GetHistory fetches the newest n play log entries.
func (c *OperatorClient) GetHistory(ctx context.Context, n int) (map[string]any, error) {
	return callStruct(ctx, c.getHistory, wrapperspb.Int32(int32(n)))
}

func callStruct[Req any](ctx context.Context, client *connect.Client[Req, structpb.Struct], msg *Req) (map[string]any, error) {
	resp, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, err
	}
	return resp.Msg.AsMap(), nil
}
