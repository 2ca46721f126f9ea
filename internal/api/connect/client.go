package connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"

	"github.com/osa030/careersinmusic/internal/app/explorer"
)

// ExplorerClient is a typed client for the explorer service.
type ExplorerClient struct {
	openSession        *connect.Client[OpenSessionRequest, OpenSessionResponse]
	search             *connect.Client[SearchRequest, explorer.Event]
	navigate           *connect.Client[NavigateRequest, explorer.Event]
	getView            *connect.Client[GetViewRequest, GetViewResponse]
	getDiscographyPage *connect.Client[GetDiscographyPageRequest, GetDiscographyPageResponse]
	watch              *connect.Client[WatchRequest, explorer.Event]
}

// NewExplorerClient creates a client for the server at baseURL.
func NewExplorerClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExplorerClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &ExplorerClient{
		openSession:        connect.NewClient[OpenSessionRequest, OpenSessionResponse](httpClient, baseURL+ExplorerServiceOpenSessionProcedure, opts...),
		search:             connect.NewClient[SearchRequest, explorer.Event](httpClient, baseURL+ExplorerServiceSearchProcedure, opts...),
		navigate:           connect.NewClient[NavigateRequest, explorer.Event](httpClient, baseURL+ExplorerServiceNavigateProcedure, opts...),
		getView:            connect.NewClient[GetViewRequest, GetViewResponse](httpClient, baseURL+ExplorerServiceGetViewProcedure, opts...),
		getDiscographyPage: connect.NewClient[GetDiscographyPageRequest, GetDiscographyPageResponse](httpClient, baseURL+ExplorerServiceGetDiscographyPageProcedure, opts...),
		watch:              connect.NewClient[WatchRequest, explorer.Event](httpClient, baseURL+ExplorerServiceWatchProcedure, opts...),
	}
}

// NewDefaultExplorerClient uses http.DefaultClient.
func NewDefaultExplorerClient(baseURL string, opts ...connect.ClientOption) *ExplorerClient {
	return NewExplorerClient(http.DefaultClient, baseURL, opts...)
}

// OpenSession opens a session and returns its id.
func (c *ExplorerClient) OpenSession(ctx context.Context) (string, error) {
	res, err := c.openSession.CallUnary(ctx, connect.NewRequest(&OpenSessionRequest{}))
	if err != nil {
		return "", err
	}
	return res.Msg.SessionID, nil
}

// Search runs a search and calls fn for every event until the stream ends.
func (c *ExplorerClient) Search(ctx context.Context, req *SearchRequest, fn func(*explorer.Event) error) error {
	stream, err := c.search.CallServerStream(ctx, connect.NewRequest(req))
	if err != nil {
		return err
	}
	return drain(stream, fn)
}

// Navigate opens a neighboring album and calls fn for every event.
func (c *ExplorerClient) Navigate(ctx context.Context, req *NavigateRequest, fn func(*explorer.Event) error) error {
	stream, err := c.navigate.CallServerStream(ctx, connect.NewRequest(req))
	if err != nil {
		return err
	}
	return drain(stream, fn)
}

// Watch follows a session's events until ctx is done or fn fails.
func (c *ExplorerClient) Watch(ctx context.Context, sessionID string, fn func(*explorer.Event) error) error {
	stream, err := c.watch.CallServerStream(ctx, connect.NewRequest(&WatchRequest{SessionID: sessionID}))
	if err != nil {
		return err
	}
	return drain(stream, fn)
}

// GetView returns the session's view.
func (c *ExplorerClient) GetView(ctx context.Context, sessionID string) (*GetViewResponse, error) {
	res, err := c.getView.CallUnary(ctx, connect.NewRequest(&GetViewRequest{SessionID: sessionID}))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

// GetDiscographyPage returns one page of the session's grid.
func (c *ExplorerClient) GetDiscographyPage(ctx context.Context, req *GetDiscographyPageRequest) (*GetDiscographyPageResponse, error) {
	res, err := c.getDiscographyPage.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return res.Msg, nil
}

func drain(stream *connect.ServerStreamForClient[explorer.Event], fn func(*explorer.Event) error) error {
	defer stream.Close()
	for stream.Receive() {
		if err := fn(stream.Msg()); err != nil {
			return errors.Wrap(err, "event handler failed")
		}
	}
	return stream.Err()
}
