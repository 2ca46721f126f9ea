package explorer

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// UnknownArtist labels title search results without an artist credit.
const UnknownArtist = "Unknown Artist"

// runDiscography shows the first matching artist's albums, newest first.
func (s *Service) runDiscography(ctx context.Context, q Query, em *emitter) {
	artists := s.client.SearchArtist(ctx, q.Artist)
	if ctx.Err() != nil {
		return
	}
	if len(artists) == 0 {
		em.emit(Event{Type: EventNotFound, Message: fmt.Sprintf("No artist found matching %q", q.Artist)})
		return
	}
	artist := artists[0]
	zlog.Debug().Msgf("discography artist: %s (%s)", artist.Name, artist.ID)

	releases := s.client.GetArtistReleases(ctx, artist.ID)
	if ctx.Err() != nil {
		return
	}

	inEra := release.NewChain(release.EraFilter{
		From: s.opts.Discography.From,
		To:   s.opts.Discography.To,
	}).Apply(releases)
	release.SortByYear(inEra, true)
	albums := release.Dedupe(inEra)

	entries := make([]release.DiscographyEntry, 0, len(albums))
	for _, r := range albums {
		entries = append(entries, gridEntry(r, artist.Name))
	}

	em.emit(Event{Type: EventDiscography, Discography: &Discography{
		Heading:  artist.Name,
		ArtistID: artist.ID,
		Entries:  entries,
	}})
	s.loadCovers(ctx, entries, em)
}

// runTitle shows every dated original release matching the title.
func (s *Service) runTitle(ctx context.Context, q Query, em *emitter) {
	releases := s.client.SearchReleaseByTitle(ctx, q.Title)
	if ctx.Err() != nil {
		return
	}
	if len(releases) == 0 {
		em.emit(Event{Type: EventNotFound, Message: fmt.Sprintf("No albums found titled %q", q.Title)})
		return
	}

	entries := make([]release.DiscographyEntry, 0, len(releases))
	for _, r := range releases {
		artist := r.PrimaryArtist()
		if artist == "" {
			artist = UnknownArtist
		}
		entries = append(entries, gridEntry(r, artist))
	}

	em.emit(Event{Type: EventDiscography, Discography: &Discography{
		Heading: fmt.Sprintf("Search results for %q", q.Title),
		Entries: entries,
	}})
	s.loadCovers(ctx, entries, em)
}

func gridEntry(r release.Release, artistName string) release.DiscographyEntry {
	return release.DiscographyEntry{
		Release:     r,
		ArtistName:  artistName,
		SpotifyLink: spotifylink.ResolveLink(r.Title, artistName, &r),
		DisplayDate: release.FormatDate(r.Date),
	}
}

// loadCovers probes cover art for every entry with bounded concurrency and
// emits a discography_cover event per hit, in completion order.
func (s *Service) loadCovers(ctx context.Context, entries []release.DiscographyEntry, em *emitter) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.CoverWorkers)

	for _, e := range entries {
		id := e.ID
		g.Go(func() error {
			url := s.client.GetCoverArtURL(gctx, id)
			if url == "" || gctx.Err() != nil {
				return nil
			}
			em.emit(Event{Type: EventDiscographyCover, Cover: &Cover{ReleaseID: id, CoverArtURL: url}})
			return nil
		})
	}
	_ = g.Wait()
}
