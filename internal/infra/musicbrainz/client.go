// Package musicbrainz provides a rate-limited client for the MusicBrainz
// web service and the Cover Art Archive.
package musicbrainz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/infra/ratelimit"
)

const (
	// DefaultBaseURL is the MusicBrainz web service root.
	DefaultBaseURL = "https://musicbrainz.org/ws/2"
	// DefaultCoverArtURL is the Cover Art Archive root.
	DefaultCoverArtURL = "https://coverartarchive.org"
	// DefaultUserAgent identifies the application to MusicBrainz.
	DefaultUserAgent = "CareersInMusic/1.0 (careers-in-music-app)"
)

// SearchLimits holds the result caps sent with search requests.
type SearchLimits struct {
	Artist       int
	ReleaseTitle int
	Release      int
	Browse       int
}

// DefaultSearchLimits returns the caps used when none are configured.
func DefaultSearchLimits() SearchLimits {
	return SearchLimits{Artist: 10, ReleaseTitle: 50, Release: 20, Browse: 100}
}

// Config represents MusicBrainz client configuration.
type Config struct {
	BaseURL         string
	CoverArtURL     string
	UserAgent       string
	Timeout         time.Duration
	ReissueKeywords []string
	Limits          SearchLimits

	// RecentYear and RecentCount control how SearchRelease promotes
	// newer releases for link discovery.
	RecentYear  int
	RecentCount int
}

// Client is a MusicBrainz API client. Every metadata request passes through
// the shared limiter; cover art probes do not.
type Client struct {
	baseURL     string
	coverArtURL string
	limits      SearchLimits
	recentYear  int
	recentCount int

	fetcher     *ratelimit.Fetcher
	probeClient *http.Client

	titleChain  *release.Chain
	browseChain *release.Chain
	datedChain  *release.Chain
}

// New creates a new MusicBrainz client. The limiter is shared process-wide
// and must be the same instance for every client talking to MusicBrainz.
func New(cfg Config, limiter *ratelimit.Limiter) (*Client, error) {
	if limiter == nil {
		return nil, errors.New("musicbrainz client requires a rate limiter")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.CoverArtURL == "" {
		cfg.CoverArtURL = DefaultCoverArtURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	defaults := DefaultSearchLimits()
	if cfg.Limits.Artist <= 0 {
		cfg.Limits.Artist = defaults.Artist
	}
	if cfg.Limits.ReleaseTitle <= 0 {
		cfg.Limits.ReleaseTitle = defaults.ReleaseTitle
	}
	if cfg.Limits.Release <= 0 {
		cfg.Limits.Release = defaults.Release
	}
	if cfg.Limits.Browse <= 0 {
		cfg.Limits.Browse = defaults.Browse
	}
	if cfg.RecentYear == 0 {
		cfg.RecentYear = 2000
	}
	if cfg.RecentCount <= 0 {
		cfg.RecentCount = 3
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		coverArtURL: cfg.CoverArtURL,
		limits:      cfg.Limits,
		recentYear:  cfg.RecentYear,
		recentCount: cfg.RecentCount,
		fetcher:     ratelimit.NewFetcher(limiter, cfg.UserAgent, cfg.Timeout),
		probeClient: &http.Client{Timeout: cfg.Timeout},
		titleChain: release.NewChain(
			release.DatedFilter{},
			release.NewReissueFilter(cfg.ReissueKeywords, false),
		),
		browseChain: release.NewChain(release.NewReissueFilter(cfg.ReissueKeywords, true)),
		datedChain:  release.NewChain(release.DatedFilter{}),
	}, nil
}

// SearchArtist searches artists by name.
func (c *Client) SearchArtist(ctx context.Context, name string) []release.Artist {
	params := url.Values{}
	params.Set("query", name)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", c.limits.Artist))

	var resp artistSearchResponse
	if err := c.get(ctx, "/artist?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("artist search failed: %s", name)
		return []release.Artist{}
	}
	return convertArtists(resp.Artists)
}

// SearchReleaseByTitle searches releases by title only. Undated releases and
// reissue-like titles are dropped; the rest are ordered newest first.
func (c *Client) SearchReleaseByTitle(ctx context.Context, title string) []release.Release {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("release:%q", title))
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", c.limits.ReleaseTitle))
	params.Set("inc", "artist-credits")

	var resp releaseListResponse
	if err := c.get(ctx, "/release?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("release title search failed: %s", title)
		return []release.Release{}
	}

	releases := c.titleChain.Apply(convertReleases(resp.Releases))
	release.SortByYear(releases, true)
	return releases
}

// SearchRelease searches releases by title and artist. Dated results are
// ordered earliest first, with a few recent releases promoted right after
// the earliest one since they are more likely to carry streaming links.
// When nothing is dated the raw results are returned as-is.
func (c *Client) SearchRelease(ctx context.Context, title, artist string) []release.Release {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("release:%q AND artist:%q", title, artist))
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", c.limits.Release))
	params.Set("inc", "artist-credits")

	var resp releaseListResponse
	if err := c.get(ctx, "/release?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("release search failed: %s / %s", title, artist)
		return []release.Release{}
	}

	raw := convertReleases(resp.Releases)
	dated := c.datedChain.Apply(raw)
	if len(dated) == 0 {
		return raw
	}
	release.SortByYear(dated, false)
	return release.PromoteRecent(dated, c.recentYear, c.recentCount)
}

// GetReleaseDetails fetches a release with credits, tracks, release group
// and URL relations. Returns nil on failure.
func (c *Client) GetReleaseDetails(ctx context.Context, id string) *release.Release {
	return c.lookupRelease(ctx, id, "artist-credits+recordings+release-groups+url-rels")
}

// GetArtistReleases browses an artist's official albums, excluding reissues
// by title and disambiguation.
func (c *Client) GetArtistReleases(ctx context.Context, artistID string) []release.Release {
	params := url.Values{}
	params.Set("artist", artistID)
	params.Set("fmt", "json")
	params.Set("limit", fmt.Sprintf("%d", c.limits.Browse))
	params.Set("inc", "release-groups")
	params.Set("type", "album")
	params.Set("status", "official")

	var resp releaseListResponse
	if err := c.get(ctx, "/release?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("artist release browse failed: %s", artistID)
		return []release.Release{}
	}
	return c.browseChain.Apply(convertReleases(resp.Releases))
}

// GetReleaseRecordings returns the tracks of every medium of a release,
// flattened in medium order.
func (c *Client) GetReleaseRecordings(ctx context.Context, id string) []release.Track {
	r := c.lookupRelease(ctx, id, "recordings+artist-credits")
	if r == nil || len(r.Tracks) == 0 {
		return []release.Track{}
	}
	return r.Tracks
}

// GetRecordingDetails fetches a recording with its credits and artist and
// work relations. Returns nil on failure.
func (c *Client) GetRecordingDetails(ctx context.Context, id string) *release.Recording {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", "artist-credits+artist-rels+work-rels")

	var resp recordingResult
	if err := c.get(ctx, "/recording/"+url.PathEscape(id)+"?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("recording lookup failed: %s", id)
		return nil
	}
	return &release.Recording{
		ID:            resp.ID,
		Title:         resp.Title,
		ArtistCredits: convertCredits(resp.ArtistCredit),
		Relations:     convertRelations(resp.Relations),
	}
}

// GetReleaseRelationships returns the artist relations of a release.
func (c *Client) GetReleaseRelationships(ctx context.Context, id string) []release.Relation {
	r := c.lookupRelease(ctx, id, "artist-rels")
	if r == nil || len(r.Relations) == 0 {
		return []release.Relation{}
	}
	return r.Relations
}

func (c *Client) lookupRelease(ctx context.Context, id, inc string) *release.Release {
	params := url.Values{}
	params.Set("fmt", "json")
	params.Set("inc", inc)

	var resp releaseResult
	if err := c.get(ctx, "/release/"+url.PathEscape(id)+"?"+params.Encode(), &resp); err != nil {
		zlog.Warn().Err(err).Msgf("release lookup failed: %s (inc=%s)", id, inc)
		return nil
	}
	r := convertRelease(resp)
	return &r
}

// get performs a rate-limited GET against the web service and decodes the
// JSON body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.fetcher.Fetch(ctx, c.baseURL+path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Newf("musicbrainz API status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	zlog.Debug().Msgf("musicbrainz GET %s (%d bytes)", path, len(body))
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
