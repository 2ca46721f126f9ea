package explorer

import (
	"context"
	"fmt"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/careersinmusic/internal/app/player"
	"github.com/osa030/careersinmusic/internal/domain/chronology"
	"github.com/osa030/careersinmusic/internal/domain/credit"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// runAlbum resolves one album: header, contributors, player, cover and the
// contributors' neighboring albums, emitting each as soon as it is known.
func (s *Service) runAlbum(ctx context.Context, q Query, em *emitter) {
	results := s.client.SearchRelease(ctx, q.Title, q.Artist)
	if ctx.Err() != nil {
		return
	}
	if len(results) == 0 {
		em.emit(Event{
			Type:    EventNotFound,
			Message: fmt.Sprintf("No album found for %q by %s", q.Title, q.Artist),
		})
		return
	}

	hit := results[0]
	em.emit(Event{Type: EventAlbumFound, Album: albumSummary(&hit, q.Artist)})

	displayed := s.client.GetReleaseDetails(ctx, hit.ID)
	if ctx.Err() != nil {
		return
	}
	if displayed == nil {
		zlog.Debug().Msgf("release details unavailable, using search hit: %s", hit.ID)
		displayed = &hit
	}

	contributors := s.resolveContributors(ctx, hit.ID, displayed)
	if ctx.Err() != nil {
		return
	}
	em.emit(Event{Type: EventContributors, Contributors: contributors})

	linkRelease := s.findLinkRelease(ctx, results, displayed)
	if ctx.Err() != nil {
		return
	}
	if linkRelease == nil {
		linkRelease = displayed
	}
	link := spotifylink.ResolveLink(q.Title, q.Artist, linkRelease)
	p := s.player.Player(ctx, player.Lookup{
		Title:   q.Title,
		Artist:  q.Artist,
		Link:    link,
		Release: linkRelease,
	})
	em.emit(Event{Type: EventPlayer, Player: &p})

	cover := s.client.GetCoverArtURL(ctx, hit.ID)
	em.emit(Event{Type: EventCover, Cover: &Cover{ReleaseID: hit.ID, CoverArtURL: cover}})

	year, ok := displayed.Year()
	if !ok {
		year, ok = hit.Year()
	}
	if !ok {
		zlog.Debug().Msgf("displayed release has no year, skipping chronology: %s", hit.ID)
		return
	}
	s.emitNeighbors(ctx, contributors, year, em)
}

func albumSummary(r *release.Release, fallbackArtist string) *Album {
	artist := r.PrimaryArtist()
	if artist == "" {
		artist = fallbackArtist
	}
	return &Album{
		ReleaseID:   r.ID,
		Title:       r.Title,
		Artist:      artist,
		Date:        r.Date,
		DisplayDate: release.FormatDate(r.Date),
		Country:     r.Country,
	}
}

// resolveContributors merges release credits, the credits and recording
// relations of the first tracks, and the release's own artist relations.
func (s *Service) resolveContributors(ctx context.Context, releaseID string, displayed *release.Release) []credit.Contributor {
	m := credit.NewMerger()
	m.AddCredits(displayed.ArtistCredits)

	tracks := s.client.GetReleaseRecordings(ctx, releaseID)
	for i, tr := range tracks {
		if i >= s.opts.Tracks || ctx.Err() != nil {
			break
		}
		m.AddCredits(tr.ArtistCredits)
		if tr.RecordingID == "" {
			continue
		}
		if rec := s.client.GetRecordingDetails(ctx, tr.RecordingID); rec != nil {
			m.AddRelations(rec.Relations)
		}
	}

	m.AddRelations(s.client.GetReleaseRelationships(ctx, releaseID))
	return m.Contributors()
}

// findLinkRelease returns the first of the leading search candidates whose
// details carry a Spotify url relation, or nil.
func (s *Service) findLinkRelease(ctx context.Context, candidates []release.Release, displayed *release.Release) *release.Release {
	for i := range candidates {
		if i >= s.opts.LinkCandidates || ctx.Err() != nil {
			return nil
		}
		details := displayed
		if candidates[i].ID != displayed.ID {
			details = s.client.GetReleaseDetails(ctx, candidates[i].ID)
		}
		if details.SpotifyURL() != "" {
			zlog.Debug().Msgf("found release with spotify link: %s (%s)", details.Title, details.Date)
			return details
		}
	}
	return nil
}

// emitNeighbors walks the first contributors in order and emits each one's
// closest album before and after year.
func (s *Service) emitNeighbors(ctx context.Context, contributors []credit.Contributor, year int, em *emitter) {
	for i, c := range contributors {
		if i >= s.opts.Contributors || ctx.Err() != nil {
			return
		}
		releases := s.client.GetArtistReleases(ctx, c.ArtistID)
		window := chronology.Window(chronology.Discography(releases, s.opts.Era), year)

		if window.Previous != nil {
			entry := s.neighborEntry(ctx, window.Previous, c.Name)
			if ctx.Err() != nil {
				return
			}
			em.emit(Event{Type: EventPreviousAlbum, Neighbor: &Neighbor{Contributor: c, Entry: entry}})
		}
		if window.Next != nil {
			entry := s.neighborEntry(ctx, window.Next, c.Name)
			if ctx.Err() != nil {
				return
			}
			em.emit(Event{Type: EventNextAlbum, Neighbor: &Neighbor{Contributor: c, Entry: entry}})
		}
	}
}

// neighborEntry enriches a chronology entry with its Spotify link and cover.
// Both are best effort.
func (s *Service) neighborEntry(ctx context.Context, r *release.Release, artistName string) release.DiscographyEntry {
	details := s.client.GetReleaseDetails(ctx, r.ID)
	return release.DiscographyEntry{
		Release:     *r,
		ArtistName:  artistName,
		SpotifyLink: spotifylink.ResolveLink(r.Title, artistName, details),
		CoverArtURL: s.client.GetCoverArtURL(ctx, r.ID),
		DisplayDate: release.FormatDate(r.Date),
	}
}
