// Package connect provides Connect RPC service implementations.
//
// Messages are protobuf well-known types: requests carry a StringValue,
// an Int32Value, a Struct of parameters or Empty, and responses are Structs
// so the kiosk display can consume them as plain JSON.
package connect

import (
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// KioskServiceName is the fully-qualified name of the kiosk service.
	KioskServiceName = "rockola.v1.KioskService"
	// OperatorServiceName is the fully-qualified name of the operator service.
	OperatorServiceName = "rockola.v1.OperatorService"
)

// Kiosk procedures.
const (
	KioskListSongsProcedure     = "/" + KioskServiceName + "/ListSongs"
	KioskListGenresProcedure    = "/" + KioskServiceName + "/ListGenres"
	KioskGetAllSongsProcedure   = "/" + KioskServiceName + "/GetAllSongs"
	KioskEnterCodeProcedure     = "/" + KioskServiceName + "/EnterCode"
	KioskSkipProcedure          = "/" + KioskServiceName + "/Skip"
	KioskPlaybackEndedProcedure = "/" + KioskServiceName + "/PlaybackEnded"
	KioskPlaybackErrorProcedure = "/" + KioskServiceName + "/PlaybackError"
	KioskGetBackgroundProcedure = "/" + KioskServiceName + "/GetBackground"
	KioskGetSettingsProcedure   = "/" + KioskServiceName + "/GetSettings"
	KioskSubscribeProcedure     = "/" + KioskServiceName + "/Subscribe"
)

// Operator procedures.
const (
	OperatorAddCreditProcedure  = "/" + OperatorServiceName + "/AddCredit"
	OperatorEnqueueProcedure    = "/" + OperatorServiceName + "/Enqueue"
	OperatorSkipProcedure       = "/" + OperatorServiceName + "/Skip"
	OperatorAdvanceProcedure    = "/" + OperatorServiceName + "/Advance"
	OperatorStopProcedure       = "/" + OperatorServiceName + "/Stop"
	OperatorGetStatusProcedure  = "/" + OperatorServiceName + "/GetStatus"
	OperatorGetHistoryProcedure = "/" + OperatorServiceName + "/GetHistory"
)

// NewKioskServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewKioskServiceHandler(svc *KioskService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(KioskListSongsProcedure, connect.NewUnaryHandler(KioskListSongsProcedure, svc.ListSongs, opts...))
	mux.Handle(KioskListGenresProcedure, connect.NewUnaryHandler(KioskListGenresProcedure, svc.ListGenres, opts...))
	mux.Handle(KioskGetAllSongsProcedure, connect.NewUnaryHandler(KioskGetAllSongsProcedure, svc.GetAllSongs, opts...))
	mux.Handle(KioskEnterCodeProcedure, connect.NewUnaryHandler(KioskEnterCodeProcedure, svc.EnterCode, opts...))
	mux.Handle(KioskSkipProcedure, connect.NewUnaryHandler(KioskSkipProcedure, svc.Skip, opts...))
	mux.Handle(KioskPlaybackEndedProcedure, connect.NewUnaryHandler(KioskPlaybackEndedProcedure, svc.PlaybackEnded, opts...))
	mux.Handle(KioskPlaybackErrorProcedure, connect.NewUnaryHandler(KioskPlaybackErrorProcedure, svc.PlaybackError, opts...))
	mux.Handle(KioskGetBackgroundProcedure, connect.NewUnaryHandler(KioskGetBackgroundProcedure, svc.GetBackground, opts...))
	mux.Handle(KioskGetSettingsProcedure, connect.NewUnaryHandler(KioskGetSettingsProcedure, svc.GetSettings, opts...))
	mux.Handle(KioskSubscribeProcedure, connect.NewServerStreamHandler(KioskSubscribeProcedure, svc.Subscribe, opts...))
	return "/" + KioskServiceName + "/", mux
}

// NewOperatorServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewOperatorServiceHandler(svc *OperatorService, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(OperatorAddCreditProcedure, connect.NewUnaryHandler(OperatorAddCreditProcedure, svc.AddCredit, opts...))
	mux.Handle(OperatorEnqueueProcedure, connect.NewUnaryHandler(OperatorEnqueueProcedure, svc.Enqueue, opts...))
	mux.Handle(OperatorSkipProcedure, connect.NewUnaryHandler(OperatorSkipProcedure, svc.Skip, opts...))
	mux.Handle(OperatorAdvanceProcedure, connect.NewUnaryHandler(OperatorAdvanceProcedure, svc.Advance, opts...))
	mux.Handle(OperatorStopProcedure, connect.NewUnaryHandler(OperatorStopProcedure, svc.Stop, opts...))
	mux.Handle(OperatorGetStatusProcedure, connect.NewUnaryHandler(OperatorGetStatusProcedure, svc.GetStatus, opts...))
	mux.Handle(OperatorGetHistoryProcedure, connect.NewUnaryHandler(OperatorGetHistoryProcedure, svc.GetHistory, opts...))
	return "/" + OperatorServiceName + "/", mux
}

// KioskClient is a client for the kiosk service.
type KioskClient struct {
	listSongs     *connect.Client[structpb.Struct, structpb.Struct]
	listGenres    *connect.Client[emptypb.Empty, structpb.Struct]
	getAllSongs   *connect.Client[emptypb.Empty, structpb.Struct]
	enterCode     *connect.Client[wrapperspb.StringValue, structpb.Struct]
	skip          *connect.Client[emptypb.Empty, structpb.Struct]
	playbackEnded *connect.Client[wrapperspb.UInt64Value, emptypb.Empty]
	playbackError *connect.Client[structpb.Struct, emptypb.Empty]
	getBackground *connect.Client[emptypb.Empty, structpb.Struct]
	getSettings   *connect.Client[emptypb.Empty, structpb.Struct]
	subscribe     *connect.Client[emptypb.Empty, structpb.Struct]
}

// NewKioskClient creates a kiosk client for the server at baseURL.
func NewKioskClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *KioskClient {
	return &KioskClient{
		listSongs:     connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+KioskListSongsProcedure, opts...),
		listGenres:    connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskListGenresProcedure, opts...),
		getAllSongs:   connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskGetAllSongsProcedure, opts...),
		enterCode:     connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+KioskEnterCodeProcedure, opts...),
		skip:          connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskSkipProcedure, opts...),
		playbackEnded: connect.NewClient[wrapperspb.UInt64Value, emptypb.Empty](httpClient, baseURL+KioskPlaybackEndedProcedure, opts...),
		playbackError: connect.NewClient[structpb.Struct, emptypb.Empty](httpClient, baseURL+KioskPlaybackErrorProcedure, opts...),
		getBackground: connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskGetBackgroundProcedure, opts...),
		getSettings:   connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskGetSettingsProcedure, opts...),
		subscribe:     connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+KioskSubscribeProcedure, opts...),
	}
}

// OperatorClient is a client for the operator service.
type OperatorClient struct {
	addCredit  *connect.Client[emptypb.Empty, structpb.Struct]
	enqueue    *connect.Client[wrapperspb.StringValue, structpb.Struct]
	skip       *connect.Client[emptypb.Empty, structpb.Struct]
	advance    *connect.Client[emptypb.Empty, structpb.Struct]
	stop       *connect.Client[emptypb.Empty, structpb.Struct]
	getStatus  *connect.Client[emptypb.Empty, structpb.Struct]
	getHistory *connect.Client[wrapperspb.Int32Value, structpb.Struct]
}

// NewOperatorClient creates an operator client for the server at baseURL.
// Requests carry token in the operator token header.
func NewOperatorClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *OperatorClient {
	opts = append(opts, connect.WithInterceptors(NewOperatorTokenClientInterceptor(token)))
	return &OperatorClient{
		addCredit:  connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OperatorAddCreditProcedure, opts...),
		enqueue:    connect.NewClient[wrapperspb.StringValue, structpb.Struct](httpClient, baseURL+OperatorEnqueueProcedure, opts...),
		skip:       connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OperatorSkipProcedure, opts...),
		advance:    connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OperatorAdvanceProcedure, opts...),
		stop:       connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OperatorStopProcedure, opts...),
		getStatus:  connect.NewClient[emptypb.Empty, structpb.Struct](httpClient, baseURL+OperatorGetStatusProcedure, opts...),
		getHistory: connect.NewClient[wrapperspb.Int32Value, structpb.Struct](httpClient, baseURL+OperatorGetHistoryProcedure, opts...),
	}
}
