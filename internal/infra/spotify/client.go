// Package spotify provides an app-authenticated client for the Spotify
// catalog, used to find album ids when MusicBrainz carries no link.
package spotify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// Client is a Spotify catalog client.
type Client struct {
	client *spotify.Client
	market string
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string

	// TokenURL and APIBaseURL override the Spotify endpoints.
	TokenURL   string
	APIBaseURL string
}

// Album is a catalog album reduced to what the player needs.
type Album struct {
	ID          string
	Name        string
	Artists     []string
	ReleaseDate string
	URL         string
}

// New creates a new Spotify client using the client-credentials flow.
// No user authorization is involved; the token refreshes automatically.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	var opts []spotify.ClientOption
	if cfg.APIBaseURL != "" {
		base := cfg.APIBaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, spotify.WithBaseURL(base))
	}

	market := cfg.Market
	if market == "" {
		market = "US"
	}

	return &Client{
		client:     spotify.New(creds.Client(ctx), opts...),
		market: market,
	}, nil
}

// SearchAlbum searches the catalog for an album by title and artist and
// returns the best match, or nil when nothing plausible is found.
// An exact title and artist match wins; otherwise the first result whose
// title contains the requested one is used, still requiring the artist. market overrides the client's
// configured market.
func (c *Client) SearchAlbum(ctx context.Context, title, artist string, market ...string) (*Album, error) {
	if title == "" {
		return nil, errors.New("album title is required")
	}

	query := fmt.Sprintf("album:%s", title)
	if artist != "" {
		query += fmt.Sprintf(" artist:%s", artist)
	}

	m := c.market
	if len(market) > 0 && market[0] != "" {
		m = market[0]
	}

	result, err := c.client.Search(ctx, query, spotify.SearchTypeAlbum,
		spotify.Limit(10),
		spotify.Market(m),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search albums")
	}
	if result.Albums == nil || len(result.Albums.Albums) == 0 {
		return nil, nil
	}

	albums := make([]Album, 0, len(result.Albums.Albums))
	for i := range result.Albums.Albums {
		albums = append(albums, convertAlbum(&result.Albums.Albums[i]))
	}
	match := bestMatch(albums, title, artist)
	if match != nil {
		zlog.Debug().Msgf("spotify catalog match: %s - %s -> %s", artist, title, match.ID)
	}
	return match, nil
}

// GetAlbum retrieves an album by id.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (*Album, error) {
	result, err := c.client.GetAlbum(ctx, spotify.ID(albumID), spotify.Market(c.market))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get album")
	}
	album := convertAlbum(&result.SimpleAlbum)
	return &album, nil
}

func convertAlbum(a *spotify.SimpleAlbum) Album {
	artists := make([]string, len(a.Artists))
	for i, ar := range a.Artists {
		artists[i] = ar.Name
	}
	return Album{
		ID:          string(a.ID),
		Name:        a.Name,
		Artists:     artists,
		ReleaseDate: a.ReleaseDate,
		URL:         spotifylink.AlbumURL(string(a.ID)),
	}
}

func bestMatch(albums []Album, title, artist string) *Album {
	wantTitle := normalize(title)
	wantArtist := normalize(artist)

	for i := range albums {
		if normalize(albums[i].Name) == wantTitle && hasArtist(albums[i], wantArtist) {
			return &albums[i]
		}
	}

	for i := range albums {
		if strings.Contains(normalize(albums[i].Name), wantTitle) && hasArtist(albums[i], wantArtist) {
			return &albums[i]
		}
	}
	return nil
}

// hasArtist reports whether the album credits the normalized artist.
// An empty artist matches every album.
func hasArtist(album Album, artist string) bool {
	if artist == "" {
		return true
	}
	for _, a := range album.Artists {
		if normalize(a) == artist {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
