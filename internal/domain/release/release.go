// Package release provides the Release domain entities shared by the
// metadata client and the explorer workflows.
package release

import "strings"

// ArtistCredit is one entry of an ordered artist attribution.
type ArtistCredit struct {
	ArtistID string `json:"artist_id"`
	Name     string `json:"name"`
}

// RelationArtist is the artist side of a relation.
type RelationArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Relation is a typed link between a release/recording and another entity.
type Relation struct {
	Type       string          `json:"type"`
	TargetType string          `json:"target_type,omitempty"`
	URL        string          `json:"url,omitempty"`        // Only set for url relations
	Artist     *RelationArtist `json:"artist,omitempty"`     // Only set for artist relations
	Attributes []string        `json:"attributes,omitempty"` // e.g. "piano", "tenor saxophone"
}

// Track is a track of a release. It points to the underlying recording.
type Track struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Position      int            `json:"position"`
	ArtistCredits []ArtistCredit `json:"artist_credits,omitempty"`
	RecordingID   string         `json:"recording_id,omitempty"`
}

// Recording is a captured performance with its relations.
type Recording struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	ArtistCredits []ArtistCredit `json:"artist_credits,omitempty"`
	Relations     []Relation     `json:"relations,omitempty"`
}

// Artist is a MusicBrainz artist.
type Artist struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort_name,omitempty"`
	Type           string `json:"type,omitempty"`
	Country        string `json:"country,omitempty"`
	Disambiguation string `json:"disambiguation,omitempty"`
	Score          int    `json:"score,omitempty"`
}

// Release is a specific issued edition of an album.
type Release struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Date           string         `json:"date,omitempty"` // "YYYY", "YYYY-MM", "YYYY-MM-DD" or empty
	Status         string         `json:"status,omitempty"`
	Disambiguation string         `json:"disambiguation,omitempty"`
	Country        string         `json:"country,omitempty"`
	ArtistCredits  []ArtistCredit `json:"artist_credits,omitempty"`
	Relations      []Relation     `json:"relations,omitempty"`
	Tracks         []Track        `json:"tracks,omitempty"`
}

// Year returns the parsed year of the release date.
func (r *Release) Year() (int, bool) {
	return ParseYear(r.Date)
}

// PrimaryArtist returns the name of the first credited artist.
func (r *Release) PrimaryArtist() string {
	if len(r.ArtistCredits) == 0 {
		return ""
	}
	return r.ArtistCredits[0].Name
}

// SpotifyURL returns the first url relation pointing at spotify.com.
func (r *Release) SpotifyURL() string {
	if r == nil {
		return ""
	}
	for _, rel := range r.Relations {
		if rel.URL != "" && strings.Contains(rel.URL, "spotify.com") {
			return rel.URL
		}
	}
	return ""
}

// DiscographyEntry is a release prepared for display in a rail or grid.
type DiscographyEntry struct {
	Release
	ArtistName  string `json:"artist_name"`
	SpotifyLink string `json:"spotify_link"`
	CoverArtURL string `json:"cover_art_url,omitempty"`
	DisplayDate string `json:"display_date,omitempty"`
}
