// Package explorer orchestrates the album, discography and title search
// workflows and streams their results as incremental view events.
package explorer

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/app/player"
	"github.com/osa030/careersinmusic/internal/domain/chronology"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// MetadataClient defines the MusicBrainz operations the workflows need.
// Implementations log failures and return empty results instead of errors.
type MetadataClient interface {
	SearchArtist(ctx context.Context, name string) []release.Artist
	SearchReleaseByTitle(ctx context.Context, title string) []release.Release
	SearchRelease(ctx context.Context, title, artist string) []release.Release
	GetReleaseDetails(ctx context.Context, id string) *release.Release
	GetArtistReleases(ctx context.Context, artistID string) []release.Release
	GetReleaseRecordings(ctx context.Context, id string) []release.Track
	GetRecordingDetails(ctx context.Context, id string) *release.Recording
	GetReleaseRelationships(ctx context.Context, id string) []release.Relation
	GetCoverArtURL(ctx context.Context, releaseID string) string
}

// PlayerResolver turns a lookup into a player descriptor.
type PlayerResolver interface {
	Player(ctx context.Context, lookup player.Lookup) spotifylink.Player
}

// Sink receives events in emission order. Calls are serialized.
type Sink func(Event)

// Options bounds the work done per workflow.
type Options struct {
	Tracks         int
	Contributors   int
	LinkCandidates int
	CoverWorkers   int
	Era            chronology.Era
	Discography    chronology.Era
}

// DefaultOptions returns the standard workflow bounds.
func DefaultOptions() Options {
	return Options{
		Tracks:         3,
		Contributors:   6,
		LinkCandidates: 5,
		CoverWorkers:   4,
		Era:            chronology.Era{From: 1950, To: 1980},
		Discography:    chronology.Era{From: 1950, To: 2030},
	}
}

// Service runs explorer workflows.
type Service struct {
	client MetadataClient
	player PlayerResolver
	opts   Options
	now    func() time.Time
}

// NewService creates a new explorer service.
func NewService(client MetadataClient, players PlayerResolver, opts Options) *Service {
	if opts.CoverWorkers <= 0 {
		opts.CoverWorkers = 1
	}
	if opts.LinkCandidates <= 0 {
		opts.LinkCandidates = 1
	}
	return &Service{
		client: client,
		player: players,
		opts:   opts,
		now:    time.Now,
	}
}

// Search runs the workflow selected by the query. Events are tagged with
// token. A done event closes every workflow that was not cancelled;
// cancellation returns the context error without emitting done.
func (s *Service) Search(ctx context.Context, q Query, token uint64, sink Sink) error {
	q = q.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}

	em := s.newEmitter(token, sink)
	mode := q.Mode()
	zlog.Info().Msgf("workflow started: token=%d mode=%s title=%q artist=%q", token, mode, q.Title, q.Artist)
	start := s.now()

	switch mode {
	case ModeAlbum:
		s.runAlbum(ctx, q, em)
	case ModeDiscography:
		s.runDiscography(ctx, q, em)
	case ModeTitle:
		s.runTitle(ctx, q, em)
	}

	return s.finish(ctx, em, mode, start)
}

// Navigate re-runs the album workflow for a clicked album.
func (s *Service) Navigate(ctx context.Context, title, artist string, token uint64, sink Sink) error {
	q := Query{Title: title, Artist: artist}.Normalize()
	if err := q.Validate(); err != nil {
		return err
	}
	if q.Mode() != ModeAlbum {
		return ErrNavigateNeedsAlbum
	}

	em := s.newEmitter(token, sink)
	zlog.Info().Msgf("navigation started: token=%d title=%q artist=%q", token, q.Title, q.Artist)
	start := s.now()

	s.runAlbum(ctx, q, em)
	return s.finish(ctx, em, ModeAlbum, start)
}

func (s *Service) finish(ctx context.Context, em *emitter, mode Mode, start time.Time) error {
	if err := ctx.Err(); err != nil {
		zlog.Debug().Msgf("workflow cancelled: token=%d mode=%s", em.token, mode)
		return errors.Wrap(err, "workflow cancelled")
	}
	em.emit(Event{Type: EventDone})
	zlog.Info().Msgf("workflow finished: token=%d mode=%s events=%d elapsed=%s",
		em.token, mode, em.count(), s.now().Sub(start).Round(time.Millisecond))
	return nil
}

// emitter stamps events with the workflow token, a sequence number and a
// timestamp, and serializes delivery to the sink.
type emitter struct {
	mu    sync.Mutex
	token uint64
	seq   uint64
	sink  Sink
	now   func() time.Time
}

func (s *Service) newEmitter(token uint64, sink Sink) *emitter {
	return &emitter{token: token, sink: sink, now: s.now}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	ev.Token = e.token
	ev.SequenceNo = e.seq
	ev.Timestamp = e.now()
	e.sink(ev)
}

func (e *emitter) count() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
