package player

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// ProviderWithMetadata wraps a provider with its metadata.
type ProviderWithMetadata struct {
	Provider    Provider
	DisplayName string
}

// Resolution is the outcome of a chain lookup.
type Resolution struct {
	AlbumID string
	Source  string
}

// ProviderChain tries providers in order until one returns an album id.
type ProviderChain struct {
	providers []ProviderWithMetadata
}

// NewProviderChain creates a new provider chain.
func NewProviderChain(providers []ProviderWithMetadata) *ProviderChain {
	return &ProviderChain{
		providers: providers,
	}
}

// Resolve returns the first non-empty album id. Failing providers are logged
// and skipped; an empty Resolution means no provider knew the album.
func (c *ProviderChain) Resolve(ctx context.Context, lookup Lookup) Resolution {
	for i, pm := range c.providers {
		if ctx.Err() != nil {
			return Resolution{}
		}
		zlog.Debug().Msgf("trying player provider: index=%d total=%d name=%s provider_type=%s",
			i+1, len(c.providers), pm.DisplayName, pm.Provider.Name())

		id, err := pm.Provider.Resolve(ctx, lookup)
		if err != nil {
			zlog.Warn().Msgf("player provider failed, trying next: provider=%s error=%v", pm.DisplayName, err)
			continue
		}
		if id == "" {
			continue
		}

		zlog.Info().Msgf("player provider resolved album: provider=%s title=%q artist=%q id=%s",
			pm.DisplayName, lookup.Title, lookup.Artist, id)
		return Resolution{AlbumID: id, Source: pm.DisplayName}
	}
	return Resolution{}
}

// Player resolves lookup into a player descriptor: an embed when an album id
// is found, otherwise a link-out to lookup.Link.
func (c *ProviderChain) Player(ctx context.Context, lookup Lookup) spotifylink.Player {
	res := c.Resolve(ctx, lookup)
	return spotifylink.NewPlayer(lookup.Title, lookup.Artist, lookup.Link, res.AlbumID)
}

// Len returns the number of providers in the chain.
func (c *ProviderChain) Len() int {
	return len(c.providers)
}

// Name returns the chain name.
func (c *ProviderChain) Name() string {
	return "provider_chain"
}
