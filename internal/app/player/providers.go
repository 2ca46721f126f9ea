package player

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// decodeSettings decodes a provider settings map into out, then applies
// defaults and validation tags.
func decodeSettings(settings map[string]any, out any) error {
	if len(settings) > 0 {
		if err := mapstructure.Decode(settings, out); err != nil {
			return errors.Wrap(err, "failed to decode settings")
		}
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}

// KnownAlbumSetting is an extra entry for the known albums table.
type KnownAlbumSetting struct {
	Title  string `yaml:"title" mapstructure:"title" validate:"required"`
	Artist string `yaml:"artist" mapstructure:"artist" validate:"required"`
	ID     string `yaml:"id" mapstructure:"id" validate:"required,alphanum"`
}

type KnownAlbumsProviderConfig struct {
	Albums      []KnownAlbumSetting `yaml:"albums" mapstructure:"albums" validate:"dive"`
	SkipBuiltin bool                `yaml:"skip_builtin" mapstructure:"skip_builtin"`
}

// KnownAlbumsProvider looks albums up in a static table of well-known ids.
type KnownAlbumsProvider struct {
	albums map[string]string
}

// NewKnownAlbumsProvider creates a known albums provider. Extra albums from
// settings override built-in entries with the same title and artist.
func NewKnownAlbumsProvider(settings map[string]any) (*KnownAlbumsProvider, error) {
	var config KnownAlbumsProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}

	albums := make(map[string]string)
	if !config.SkipBuiltin {
		albums = spotifylink.KnownAlbums()
	}
	for _, a := range config.Albums {
		albums[spotifylink.Key(a.Title, a.Artist)] = a.ID
	}
	return &KnownAlbumsProvider{albums: albums}, nil
}

// Resolve returns the table entry for the lookup's title and artist.
func (p *KnownAlbumsProvider) Resolve(_ context.Context, lookup Lookup) (string, error) {
	return p.albums[spotifylink.Key(lookup.Title, lookup.Artist)], nil
}

// Name returns the provider name.
func (p *KnownAlbumsProvider) Name() string {
	return "known_albums"
}

// LinkProvider extracts the album id from the resolved Spotify link, or from
// the release's own url relations when the link is a search URL.
type LinkProvider struct{}

// NewLinkProvider creates a link provider. It takes no settings.
func NewLinkProvider() *LinkProvider {
	return &LinkProvider{}
}

// Resolve parses the album id out of the link.
func (p *LinkProvider) Resolve(_ context.Context, lookup Lookup) (string, error) {
	if id := spotifylink.ExtractID(lookup.Link); id != "" {
		return id, nil
	}
	return spotifylink.ExtractID(lookup.Release.SpotifyURL()), nil
}

// Name returns the provider name.
func (p *LinkProvider) Name() string {
	return "link"
}

type CatalogProviderConfig struct {
	Market string `yaml:"market" mapstructure:"market" validate:"omitempty,len=2"`
}

// CatalogProvider searches the Spotify catalog by title and artist.
type CatalogProvider struct {
	spotify AlbumSearcher
	config  *CatalogProviderConfig
}

// NewCatalogProvider creates a catalog search provider.
func NewCatalogProvider(spotify AlbumSearcher, settings map[string]any) (*CatalogProvider, error) {
	if spotify == nil {
		return nil, errors.New("spotify client is required")
	}
	var config CatalogProviderConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &CatalogProvider{spotify: spotify, config: &config}, nil
}

// Resolve searches the catalog and returns the best match's id.
func (p *CatalogProvider) Resolve(ctx context.Context, lookup Lookup) (string, error) {
	if lookup.Title == "" {
		return "", nil
	}
	album, err := p.spotify.SearchAlbum(ctx, lookup.Title, lookup.Artist, p.config.Market)
	if err != nil {
		return "", errors.Wrap(err, "catalog search failed")
	}
	if album == nil {
		return "", nil
	}
	return album.ID, nil
}

// Name returns the provider name.
func (p *CatalogProvider) Name() string {
	return "spotify_catalog"
}
