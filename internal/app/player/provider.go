// Package player resolves the Spotify album to embed for a displayed release.
package player

import (
	"context"

	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/infra/spotify"
)

// Lookup carries what providers know about the album being displayed.
type Lookup struct {
	Title   string
	Artist  string
	Link    string
	Release *release.Release
}

// Provider is the interface for album id providers.
// Different implementations find an embeddable album id through various
// strategies (static table, MusicBrainz url relation, catalog search).
type Provider interface {
	// Resolve returns a Spotify album id, or "" when the provider has none.
	Resolve(ctx context.Context, lookup Lookup) (string, error)

	// Name returns the provider name (used in config).
	Name() string
}

// AlbumSearcher defines the Spotify operation needed by the catalog provider.
type AlbumSearcher interface {
	SearchAlbum(ctx context.Context, title, artist string, market ...string) (*spotify.Album, error)
}
