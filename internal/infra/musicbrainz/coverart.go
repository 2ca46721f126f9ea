package musicbrainz

import (
	"context"
	"fmt"
	"net/http"

	zlog "github.com/rs/zerolog/log"
)

// CoverArtSize is the thumbnail variant returned by GetCoverArtURL.
const CoverArtSize = "front-250"

// GetCoverArtURL probes the Cover Art Archive for a release and returns the
// front thumbnail URL when the release has artwork, or "" otherwise.
// Probes skip the MusicBrainz limiter and are never retried.
func (c *Client) GetCoverArtURL(ctx context.Context, releaseID string) string {
	if releaseID == "" {
		return ""
	}
	base := fmt.Sprintf("%s/release/%s", c.coverArtURL, releaseID)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, base, http.NoBody)
	if err != nil {
		zlog.Debug().Err(err).Msgf("cover art request failed: %s", releaseID)
		return ""
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		zlog.Debug().Err(err).Msgf("cover art probe failed: %s", releaseID)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}
	return base + "/" + CoverArtSize
}
