package musicbrainz

import (
	"encoding/json"

	"github.com/osa030/careersinmusic/internal/domain/release"
)

// artistSearchResponse is the raw response from /artist?query=.
type artistSearchResponse struct {
	Artists []artistResult `json:"artists"`
}

type artistResult struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SortName       string `json:"sort-name"`
	Type           string `json:"type"`
	Country        string `json:"country"`
	Disambiguation string `json:"disambiguation"`
	Score          int    `json:"score"`
}

// releaseListResponse is the raw response from release search and browse.
type releaseListResponse struct {
	Count    int             `json:"count"`
	Releases []releaseResult `json:"releases"`
}

type releaseResult struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Date           string         `json:"date"`
	Status         string         `json:"status"`
	Disambiguation string         `json:"disambiguation"`
	Country        string         `json:"country"`
	ArtistCredit   []artistCredit `json:"artist-credit"`
	Relations      []relation     `json:"relations"`
	Media          []medium       `json:"media"`
	ReleaseGroup   *struct {
		ID          string `json:"id"`
		PrimaryType string `json:"primary-type"`
	} `json:"release-group"`
}

type artistCredit struct {
	Name       string `json:"name"`
	JoinPhrase string `json:"joinphrase"`
	Artist     struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type relation struct {
	Type       string      `json:"type"`
	TargetType string      `json:"target-type"`
	Attributes []attribute `json:"attributes"`
	Artist     *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	URL *struct {
		ID       string `json:"id"`
		Resource string `json:"resource"`
	} `json:"url"`
}

// attribute is a relation attribute. The API sends plain strings, but some
// payloads carry objects with a "value" or "type" field.
type attribute string

// UnmarshalJSON accepts both a string and an object form.
func (a *attribute) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = attribute(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Value != "" {
		*a = attribute(obj.Value)
	} else {
		*a = attribute(obj.Type)
	}
	return nil
}

type medium struct {
	Position int     `json:"position"`
	Tracks   []track `json:"tracks"`
}

type track struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Position     int            `json:"position"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Recording    *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"recording"`
}

type recordingResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Relations    []relation     `json:"relations"`
}

func convertCredits(credits []artistCredit) []release.ArtistCredit {
	if len(credits) == 0 {
		return nil
	}
	out := make([]release.ArtistCredit, 0, len(credits))
	for _, c := range credits {
		name := c.Artist.Name
		if name == "" {
			name = c.Name
		}
		out = append(out, release.ArtistCredit{ArtistID: c.Artist.ID, Name: name})
	}
	return out
}

func convertRelations(relations []relation) []release.Relation {
	if len(relations) == 0 {
		return nil
	}
	out := make([]release.Relation, 0, len(relations))
	for _, r := range relations {
		rel := release.Relation{Type: r.Type, TargetType: r.TargetType}
		for _, a := range r.Attributes {
			if a != "" {
				rel.Attributes = append(rel.Attributes, string(a))
			}
		}
		if r.Artist != nil {
			rel.Artist = &release.RelationArtist{ID: r.Artist.ID, Name: r.Artist.Name}
		}
		if r.URL != nil {
			rel.URL = r.URL.Resource
		}
		out = append(out, rel)
	}
	return out
}

func convertTracks(media []medium) []release.Track {
	var out []release.Track
	for _, m := range media {
		for _, t := range m.Tracks {
			tr := release.Track{
				ID:            t.ID,
				Title:         t.Title,
				Position:      t.Position,
				ArtistCredits: convertCredits(t.ArtistCredit),
			}
			if t.Recording != nil {
				tr.RecordingID = t.Recording.ID
			}
			out = append(out, tr)
		}
	}
	return out
}

func convertRelease(r releaseResult) release.Release {
	return release.Release{
		ID:             r.ID,
		Title:          r.Title,
		Date:           r.Date,
		Status:         r.Status,
		Disambiguation: r.Disambiguation,
		Country:        r.Country,
		ArtistCredits:  convertCredits(r.ArtistCredit),
		Relations:      convertRelations(r.Relations),
		Tracks:         convertTracks(r.Media),
	}
}

func convertReleases(results []releaseResult) []release.Release {
	out := make([]release.Release, 0, len(results))
	for _, r := range results {
		out = append(out, convertRelease(r))
	}
	return out
}

func convertArtists(results []artistResult) []release.Artist {
	out := make([]release.Artist, 0, len(results))
	for _, a := range results {
		out = append(out, release.Artist{
			ID:             a.ID,
			Name:           a.Name,
			SortName:       a.SortName,
			Type:           a.Type,
			Country:        a.Country,
			Disambiguation: a.Disambiguation,
			Score:          a.Score,
		})
	}
	return out
}
