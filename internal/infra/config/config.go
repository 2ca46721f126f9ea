// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider types understood by the player provider chain.
const (
	ProviderKnownAlbums    = "known_albums"
	ProviderLink           = "link"
	ProviderSpotifyCatalog = "spotify_catalog"
)

// Config represents the application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	MusicBrainz MusicBrainzConfig `yaml:"musicbrainz"`
	Limits      LimitsConfig      `yaml:"limits"`
	Filters     FiltersConfig     `yaml:"filters"`
	Player      PlayerConfig      `yaml:"player"`
	Spotify     SpotifyConfig     `yaml:"spotify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr           string      `yaml:"addr" default:":8080"`
	SessionIdleMin int         `yaml:"session_idle_min" default:"60" validate:"gte=1"`
	Hooks          HooksConfig `yaml:"hooks"`
}

// SessionIdle returns how long an unused session is kept.
func (s ServerConfig) SessionIdle() time.Duration {
	return time.Duration(s.SessionIdleMin) * time.Minute
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// MusicBrainzConfig represents MusicBrainz and Cover Art Archive access.
type MusicBrainzConfig struct {
	BaseURL       string `yaml:"base_url" default:"https://musicbrainz.org/ws/2" validate:"url"`
	CoverArtURL   string `yaml:"cover_art_url" default:"https://coverartarchive.org" validate:"url"`
	UserAgent     string `yaml:"user_agent" default:"CareersInMusic/1.0 (careers-in-music-app)" validate:"required"`
	MinIntervalMs int    `yaml:"min_interval_ms" default:"1200" validate:"gte=1000"`
	TimeoutSec    int    `yaml:"timeout_sec" default:"30" validate:"gte=1,lte=300"`
}

// MinInterval returns the minimum spacing between MusicBrainz requests.
func (m MusicBrainzConfig) MinInterval() time.Duration {
	return time.Duration(m.MinIntervalMs) * time.Millisecond
}

// Timeout returns the per-request HTTP timeout.
func (m MusicBrainzConfig) Timeout() time.Duration {
	return time.Duration(m.TimeoutSec) * time.Second
}

// LimitsConfig bounds how much work a single view does.
type LimitsConfig struct {
	Tracks          int `yaml:"tracks" default:"3" validate:"gte=0,lte=50"`
	Contributors    int `yaml:"contributors" default:"6" validate:"gte=0,lte=50"`
	LinkCandidates  int `yaml:"link_candidates" default:"5" validate:"gte=1,lte=20"`
	CoverWorkers    int `yaml:"cover_workers" default:"4" validate:"gte=1,lte=16"`
	EraFrom         int `yaml:"era_from" default:"1950"`
	EraTo           int `yaml:"era_to" default:"1980"`
	DiscographyFrom int `yaml:"discography_from" default:"1950"`
	DiscographyTo   int `yaml:"discography_to" default:"2030"`
	ArtistSearch    int `yaml:"artist_search" default:"10" validate:"gte=1,lte=100"`
	TitleSearch     int `yaml:"title_search" default:"50" validate:"gte=1,lte=100"`
	ReleaseSearch   int `yaml:"release_search" default:"20" validate:"gte=1,lte=100"`
	RecentYear      int `yaml:"recent_year" default:"2000"`
	RecentCount     int `yaml:"recent_count" default:"3" validate:"gte=0,lte=10"`
}

// FiltersConfig represents release filtering configuration.
// An empty keyword list uses the built-in reissue keywords.
type FiltersConfig struct {
	ReissueKeywords []string `yaml:"reissue_keywords"`
}

// PlayerConfig represents the player provider chain.
type PlayerConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
}

// ProviderConfig represents a single player provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=known_albums link spotify_catalog"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// SpotifyConfig represents Spotify API configuration. Credentials are only
// needed by the spotify_catalog provider.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"US"`
}

// DefaultProviders is the chain used when none is configured.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{Type: ProviderKnownAlbums, DisplayName: "Known albums"},
		{Type: ProviderLink, DisplayName: "MusicBrainz link"},
	}
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// ApplyDefaults fills zero values, including the default provider chain.
func (c *Config) ApplyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if len(c.Player.Providers) == 0 {
		c.Player.Providers = DefaultProviders()
	}
	for i := range c.Player.Providers {
		if c.Player.Providers[i].DisplayName == "" {
			c.Player.Providers[i].DisplayName = c.Player.Providers[i].Type
		}
	}
	return nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("MUSICBRAINZ_USER_AGENT"); v != "" {
		c.MusicBrainz.UserAgent = v
	}
}

// HasProvider reports whether the player chain includes a provider type.
func (c *Config) HasProvider(providerType string) bool {
	for _, p := range c.Player.Providers {
		if p.Type == providerType {
			return true
		}
	}
	return false
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if err := c.validateYearRanges(); err != nil {
		return err
	}

	if c.HasProvider(ProviderSpotifyCatalog) && (c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "") {
		return errors.New("spotify_catalog provider requires spotify client_id and client_secret")
	}

	return nil
}

// validateYearRanges checks that each year range is ordered.
func (c *Config) validateYearRanges() error {
	if c.Limits.EraFrom > c.Limits.EraTo {
		return errors.Newf("era_from (%d) must not be after era_to (%d)", c.Limits.EraFrom, c.Limits.EraTo)
	}
	if c.Limits.DiscographyFrom > c.Limits.DiscographyTo {
		return errors.Newf("discography_from (%d) must not be after discography_to (%d)",
			c.Limits.DiscographyFrom, c.Limits.DiscographyTo)
	}
	return nil
}
