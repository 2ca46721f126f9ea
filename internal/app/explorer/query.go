package explorer

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrEmptyQuery is returned when neither a title nor an artist is given.
	ErrEmptyQuery = errors.New("album title or artist name is required")
	// ErrInvalidQuery marks queries rejected by field validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNavigateNeedsAlbum is returned when a navigation lacks title or artist.
	ErrNavigateNeedsAlbum = errors.New("navigation requires both album title and artist name")
)

// Mode is the workflow selected by a query.
type Mode int

const (
	ModeInvalid     Mode = iota
	ModeAlbum            // title and artist
	ModeDiscography      // artist only
	ModeTitle            // title only
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeAlbum:
		return "album"
	case ModeDiscography:
		return "discography"
	case ModeTitle:
		return "title"
	default:
		return "invalid"
	}
}

// Query is a user search.
type Query struct {
	Title  string `json:"title" validate:"max=300"`
	Artist string `json:"artist" validate:"max=300"`
}

var validate = validator.New()

// Normalize trims surrounding whitespace from both fields.
func (q Query) Normalize() Query {
	return Query{Title: strings.TrimSpace(q.Title), Artist: strings.TrimSpace(q.Artist)}
}

// Validate checks field lengths and that at least one field is set.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return errors.Mark(errors.Wrap(err, "invalid query"), ErrInvalidQuery)
	}
	if q.Mode() == ModeInvalid {
		return ErrEmptyQuery
	}
	return nil
}

// Mode selects the workflow from the non-empty fields.
func (q Query) Mode() Mode {
	n := q.Normalize()
	switch {
	case n.Title != "" && n.Artist != "":
		return ModeAlbum
	case n.Artist != "":
		return ModeDiscography
	case n.Title != "":
		return ModeTitle
	default:
		return ModeInvalid
	}
}
