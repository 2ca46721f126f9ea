package explorer

import (
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/careersinmusic/internal/domain/credit"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// EventType represents a view update event type.
type EventType int

const (
	EventAlbumFound       EventType = iota // Search hit for the album
	EventNotFound                          // Nothing matched the query
	EventContributors                      // Merged contributor list
	EventPlayer                            // Player descriptor for the album
	EventCover                             // Album cover art URL
	EventPreviousAlbum                     // A contributor's album before the displayed one
	EventNextAlbum                         // A contributor's album after the displayed one
	EventDiscography                       // Grid of albums (artist or title search)
	EventDiscographyCover                  // Cover art for one grid entry
	EventDone                              // Workflow finished
	EventSuperseded                        // A newer workflow replaced this one
)

var eventTypeNames = map[EventType]string{
	EventAlbumFound:       "album_found",
	EventNotFound:         "not_found",
	EventContributors:     "contributors",
	EventPlayer:           "player",
	EventCover:            "cover",
	EventPreviousAlbum:    "previous_album",
	EventNextAlbum:        "next_album",
	EventDiscography:      "discography",
	EventDiscographyCover: "discography_cover",
	EventDone:             "done",
	EventSuperseded:       "superseded",
}

// String returns the string representation of the event type.
func (e EventType) String() string {
	if name, ok := eventTypeNames[e]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the event type by name.
func (e EventType) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes an event type name.
func (e *EventType) UnmarshalText(text []byte) error {
	for t, name := range eventTypeNames {
		if name == string(text) {
			*e = t
			return nil
		}
	}
	return errors.Newf("unknown event type: %s", text)
}

// Album is the header summary of the displayed album.
type Album struct {
	ReleaseID   string `json:"release_id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Date        string `json:"date,omitempty"`
	DisplayDate string `json:"display_date,omitempty"`
	Country     string `json:"country,omitempty"`
}

// Neighbor is a contributor's closest album before or after the displayed one.
type Neighbor struct {
	Contributor credit.Contributor       `json:"contributor"`
	Entry       release.DiscographyEntry `json:"entry"`
}

// Discography is a grid of albums with a heading.
type Discography struct {
	Heading  string                     `json:"heading"`
	ArtistID string                     `json:"artist_id,omitempty"`
	Entries  []release.DiscographyEntry `json:"entries"`
}

// Cover is the cover art of one release.
type Cover struct {
	ReleaseID   string `json:"release_id"`
	CoverArtURL string `json:"cover_art_url"`
}

// Event is one incremental view update. Token identifies the workflow that
// produced it; consumers drop events whose token is no longer current.
type Event struct {
	Type       EventType `json:"type"`
	Token      uint64    `json:"token"`
	SequenceNo uint64    `json:"sequence_no"`
	Timestamp  time.Time `json:"timestamp"`

	Album        *Album               `json:"album,omitempty"`
	Contributors []credit.Contributor `json:"contributors,omitempty"`
	Player       *spotifylink.Player  `json:"player,omitempty"`
	Cover        *Cover               `json:"cover,omitempty"`
	Neighbor     *Neighbor            `json:"neighbor,omitempty"`
	Discography  *Discography         `json:"discography,omitempty"`
	Message      string               `json:"message,omitempty"`
}
