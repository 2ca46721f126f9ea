package connect

import (
	"github.com/osa030/careersinmusic/internal/app/session/state"
)

// OpenSessionRequest opens a new session.
type OpenSessionRequest struct{}

// OpenSessionResponse carries the new session id.
type OpenSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SearchRequest starts a search workflow. Which fields are set selects
// album, discography or title mode.
type SearchRequest struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
}

// NavigateRequest opens a neighboring album.
type NavigateRequest struct {
	SessionID string `json:"session_id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
}

// GetViewRequest asks for the current view of a session.
type GetViewRequest struct {
	SessionID string `json:"session_id"`
}

// GetViewResponse carries a view snapshot.
type GetViewResponse struct {
	View state.Snapshot `json:"view"`
}

// GetDiscographyPageRequest asks for one page of the discography grid.
// Zero values select page 1, size 12 and newest first.
type GetDiscographyPageRequest struct {
	SessionID string `json:"session_id"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"page_size,omitempty"`
	Order     string `json:"order,omitempty"`
}

// GetDiscographyPageResponse carries one grid page.
type GetDiscographyPageResponse struct {
	Page state.Page `json:"page"`
}

// WatchRequest follows every event applied to a session.
type WatchRequest struct {
	SessionID string `json:"session_id"`
}
