// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/app/notification"
	"github.com/osa030/careersinmusic/internal/app/session"
	"github.com/osa030/careersinmusic/internal/app/session/state"
)

// ExplorerService implements the ExplorerService RPC.
type ExplorerService struct {
	sessions *session.Manager
}

// NewExplorerService creates a new ExplorerService.
func NewExplorerService(sessions *session.Manager) *ExplorerService {
	return &ExplorerService{
		sessions: sessions,
	}
}

// Ensure ExplorerService implements the interface.
var _ ExplorerServiceHandler = (*ExplorerService)(nil)

// OpenSession creates a session for a new client.
func (s *ExplorerService) OpenSession(
	ctx context.Context,
	req *connect.Request[OpenSessionRequest],
) (*connect.Response[OpenSessionResponse], error) {
	sess := s.sessions.Open()
	return connect.NewResponse(&OpenSessionResponse{
		SessionID: sess.ID,
	}), nil
}

// Search streams the events of a search workflow.
func (s *ExplorerService) Search(
	ctx context.Context,
	req *connect.Request[SearchRequest],
	stream *connect.ServerStream[explorer.Event],
) error {
	q := explorer.Query{Title: req.Msg.Title, Artist: req.Msg.Artist}
	err := s.sessions.Search(ctx, req.Msg.SessionID, q, streamSender(stream))
	return toConnectError(err)
}

// Navigate streams the events of an album workflow for a clicked album.
func (s *ExplorerService) Navigate(
	ctx context.Context,
	req *connect.Request[NavigateRequest],
	stream *connect.ServerStream[explorer.Event],
) error {
	err := s.sessions.Navigate(ctx, req.Msg.SessionID, req.Msg.Title, req.Msg.Artist, streamSender(stream))
	return toConnectError(err)
}

// GetView returns the current view of a session.
func (s *ExplorerService) GetView(
	ctx context.Context,
	req *connect.Request[GetViewRequest],
) (*connect.Response[GetViewResponse], error) {
	snap, err := s.sessions.Snapshot(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetViewResponse{View: snap}), nil
}

// GetDiscographyPage returns one page of the session's discography grid.
func (s *ExplorerService) GetDiscographyPage(
	ctx context.Context,
	req *connect.Request[GetDiscographyPageRequest],
) (*connect.Response[GetDiscographyPageResponse], error) {
	page, err := s.sessions.DiscographyPage(
		req.Msg.SessionID,
		req.Msg.Page,
		req.Msg.PageSize,
		state.Order(req.Msg.Order),
	)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetDiscographyPageResponse{Page: page}), nil
}

// Watch streams every event applied to a session until the client leaves
// or the session is closed.
func (s *ExplorerService) Watch(
	ctx context.Context,
	req *connect.Request[WatchRequest],
	stream *connect.ServerStream[explorer.Event],
) error {
	adapter := &eventStreamAdapter{stream: stream}
	return toConnectError(s.sessions.Watch(ctx, req.Msg.SessionID, adapter))
}

// eventStreamAdapter adapts connect.ServerStream to notification.Stream.
type eventStreamAdapter struct {
	stream *connect.ServerStream[explorer.Event]
}

func (a *eventStreamAdapter) Send(ev *explorer.Event) error {
	return a.stream.Send(ev)
}

func streamSender(stream *connect.ServerStream[explorer.Event]) session.Sender {
	return func(ev explorer.Event) error {
		return stream.Send(&ev)
	}
}

// toConnectError maps application errors to connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, session.ErrInvalidSession):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.IsAny(err,
		explorer.ErrEmptyQuery,
		explorer.ErrInvalidQuery,
		explorer.ErrNavigateNeedsAlbum,
		state.ErrInvalidPage,
	):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, notification.ErrWatcherTooSlow):
		return connect.NewError(connect.CodeResourceExhausted, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
