package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/osa030/careersinmusic/internal/app/explorer"
)

// ExplorerServiceName is the fully-qualified name of the explorer service.
const ExplorerServiceName = "careers.v1.ExplorerService"

// Procedure paths of the explorer service.
const (
	ExplorerServiceOpenSessionProcedure        = "/careers.v1.ExplorerService/OpenSession"
	ExplorerServiceSearchProcedure             = "/careers.v1.ExplorerService/Search"
	ExplorerServiceNavigateProcedure           = "/careers.v1.ExplorerService/Navigate"
	ExplorerServiceGetViewProcedure            = "/careers.v1.ExplorerService/GetView"
	ExplorerServiceGetDiscographyPageProcedure = "/careers.v1.ExplorerService/GetDiscographyPage"
	ExplorerServiceWatchProcedure              = "/careers.v1.ExplorerService/Watch"
)

// ExplorerServiceHandler is implemented by the explorer service.
type ExplorerServiceHandler interface {
	OpenSession(context.Context, *connect.Request[OpenSessionRequest]) (*connect.Response[OpenSessionResponse], error)
	Search(context.Context, *connect.Request[SearchRequest], *connect.ServerStream[explorer.Event]) error
	Navigate(context.Context, *connect.Request[NavigateRequest], *connect.ServerStream[explorer.Event]) error
	GetView(context.Context, *connect.Request[GetViewRequest]) (*connect.Response[GetViewResponse], error)
	GetDiscographyPage(context.Context, *connect.Request[GetDiscographyPageRequest]) (*connect.Response[GetDiscographyPageResponse], error)
	Watch(context.Context, *connect.Request[WatchRequest], *connect.ServerStream[explorer.Event]) error
}

// NewExplorerServiceHandler builds an HTTP handler for every explorer
// procedure and returns the path to mount it on. The JSON codec is always
// registered; opts are applied after it.
func NewExplorerServiceHandler(svc ExplorerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)
	readOnly := append(opts[:len(opts):len(opts)], connect.WithIdempotency(connect.IdempotencyNoSideEffects))

	mux := http.NewServeMux()
	mux.Handle(ExplorerServiceOpenSessionProcedure, connect.NewUnaryHandler(
		ExplorerServiceOpenSessionProcedure, svc.OpenSession, opts...))
	mux.Handle(ExplorerServiceSearchProcedure, connect.NewServerStreamHandler(
		ExplorerServiceSearchProcedure, svc.Search, opts...))
	mux.Handle(ExplorerServiceNavigateProcedure, connect.NewServerStreamHandler(
		ExplorerServiceNavigateProcedure, svc.Navigate, opts...))
	mux.Handle(ExplorerServiceGetViewProcedure, connect.NewUnaryHandler(
		ExplorerServiceGetViewProcedure, svc.GetView, readOnly...))
	mux.Handle(ExplorerServiceGetDiscographyPageProcedure, connect.NewUnaryHandler(
		ExplorerServiceGetDiscographyPageProcedure, svc.GetDiscographyPage, readOnly...))
	mux.Handle(ExplorerServiceWatchProcedure, connect.NewServerStreamHandler(
		ExplorerServiceWatchProcedure, svc.Watch, opts...))

	return "/" + ExplorerServiceName + "/", mux
}
