package player

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/infra/config"
)

// NewProviderChainFromConfig creates a provider chain from configuration.
// spotify may be nil when no spotify_catalog provider is configured.
func NewProviderChainFromConfig(cfg *config.Config, spotify AlbumSearcher) (*ProviderChain, error) {
	if len(cfg.Player.Providers) == 0 {
		return nil, errors.New("no player providers configured")
	}

	var providers []ProviderWithMetadata

	for i, pcfg := range cfg.Player.Providers {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating player provider: index=%d type=%s settings=%+v", i+1, pcfg.Type, pcfg.Settings)
		switch pcfg.Type {
		case config.ProviderKnownAlbums:
			provider, err = NewKnownAlbumsProvider(pcfg.Settings)

		case config.ProviderLink:
			provider = NewLinkProvider()

		case config.ProviderSpotifyCatalog:
			if spotify == nil {
				err = errors.New("spotify client is not configured")
				break
			}
			provider, err = NewCatalogProvider(spotify, pcfg.Settings)

		default:
			return nil, errors.Newf("unsupported provider type: %s (provider index %d)", pcfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create provider (index %d, type %s)", i, pcfg.Type)
		}

		displayName := pcfg.DisplayName
		if displayName == "" {
			displayName = pcfg.Type
		}
		providers = append(providers, ProviderWithMetadata{
			Provider:    provider,
			DisplayName: displayName,
		})

		zlog.Info().Msgf("registered player provider: index=%d type=%s display_name=%s", i+1, pcfg.Type, displayName)
	}

	return NewProviderChain(providers), nil
}
