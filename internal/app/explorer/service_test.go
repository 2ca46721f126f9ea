package explorer

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/careersinmusic/internal/app/player"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// fakeClient serves canned MusicBrainz data and records every call.
type fakeClient struct {
	mu sync.Mutex

	artists        map[string][]release.Artist
	titleSearch    map[string][]release.Release
	releaseSearch  map[string][]release.Release
	details        map[string]*release.Release
	artistReleases map[string][]release.Release
	recordings     map[string][]release.Track
	recordingInfo  map[string]*release.Recording
	relationships  map[string][]release.Relation
	covers         map[string]string

	calls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		artists:        map[string][]release.Artist{},
		titleSearch:    map[string][]release.Release{},
		releaseSearch:  map[string][]release.Release{},
		details:        map[string]*release.Release{},
		artistReleases: map[string][]release.Release{},
		recordings:     map[string][]release.Track{},
		recordingInfo:  map[string]*release.Recording{},
		relationships:  map[string][]release.Relation{},
		covers:         map[string]string{},
	}
}

func (f *fakeClient) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeClient) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeClient) SearchArtist(_ context.Context, name string) []release.Artist {
	f.record("artist-search:" + name)
	return f.artists[name]
}

func (f *fakeClient) SearchReleaseByTitle(_ context.Context, title string) []release.Release {
	f.record("title-search:" + title)
	return f.titleSearch[title]
}

func (f *fakeClient) SearchRelease(_ context.Context, title, artist string) []release.Release {
	f.record("release-search:" + title + "/" + artist)
	return f.releaseSearch[title+"/"+artist]
}

func (f *fakeClient) GetReleaseDetails(_ context.Context, id string) *release.Release {
	f.record("details:" + id)
	return f.details[id]
}

func (f *fakeClient) GetArtistReleases(_ context.Context, artistID string) []release.Release {
	f.record("artist-releases:" + artistID)
	return f.artistReleases[artistID]
}

func (f *fakeClient) GetReleaseRecordings(_ context.Context, id string) []release.Track {
	f.record("recordings:" + id)
	return f.recordings[id]
}

func (f *fakeClient) GetRecordingDetails(_ context.Context, id string) *release.Recording {
	f.record("recording:" + id)
	return f.recordingInfo[id]
}

func (f *fakeClient) GetReleaseRelationships(_ context.Context, id string) []release.Relation {
	f.record("relationships:" + id)
	return f.relationships[id]
}

func (f *fakeClient) GetCoverArtURL(_ context.Context, releaseID string) string {
	f.record("cover:" + releaseID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.covers[releaseID]
}

type collector struct {
	events []Event
}

func (c *collector) sink(ev Event) {
	c.events = append(c.events, ev)
}

func (c *collector) types() []EventType {
	out := make([]EventType, len(c.events))
	for i, ev := range c.events {
		out[i] = ev.Type
	}
	return out
}

func (c *collector) ofType(t EventType) []Event {
	var out []Event
	for _, ev := range c.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func newTestService(t *testing.T, client MetadataClient) *Service {
	t.Helper()
	known, err := player.NewKnownAlbumsProvider(nil)
	require.NoError(t, err)
	chain := player.NewProviderChain([]player.ProviderWithMetadata{
		{Provider: known, DisplayName: "known"},
		{Provider: player.NewLinkProvider(), DisplayName: "link"},
	})
	return NewService(client, chain, DefaultOptions())
}

func artistCredit(id, name string) []release.ArtistCredit {
	return []release.ArtistCredit{{ArtistID: id, Name: name}}
}

func instrument(id, name string, attrs ...string) release.Relation {
	return release.Relation{
		Type:       "instrument",
		TargetType: "artist",
		Artist:     &release.RelationArtist{ID: id, Name: name},
		Attributes: attrs,
	}
}

func kindOfBlueFixture() *fakeClient {
	f := newFakeClient()
	md := artistCredit("md", "Miles Davis")

	kob := release.Release{ID: "kob", Title: "Kind of Blue", Date: "1959-08-17", ArtistCredits: md}
	alt := release.Release{ID: "alt", Title: "Kind of Blue", Date: "2010", ArtistCredits: md}
	f.releaseSearch["Kind of Blue/Miles Davis"] = []release.Release{kob, alt}

	f.details["kob"] = &kob
	f.details["alt"] = &release.Release{ID: "alt", Title: "Kind of Blue", Date: "2010", Relations: []release.Relation{
		{Type: "streaming", TargetType: "url", URL: "https://open.spotify.com/album/altAlbum1"},
	}}

	f.recordings["kob"] = []release.Track{
		{ID: "t1", Title: "So What", ArtistCredits: md, RecordingID: "rec1"},
		{ID: "t2", Title: "Freddie Freeloader", ArtistCredits: md, RecordingID: "rec2"},
		{ID: "t3", Title: "Blue in Green", ArtistCredits: md, RecordingID: "rec3"},
		{ID: "t4", Title: "All Blues", ArtistCredits: md, RecordingID: "rec4"},
	}
	f.recordingInfo["rec1"] = &release.Recording{ID: "rec1", Relations: []release.Relation{
		instrument("jc", "John Coltrane", "tenor saxophone"),
		instrument("be", "Bill Evans", "piano"),
	}}
	f.recordingInfo["rec2"] = &release.Recording{ID: "rec2", Relations: []release.Relation{
		instrument("jc", "John Coltrane"),
	}}
	f.relationships["kob"] = []release.Relation{
		instrument("ca", "Cannonball Adderley", "alto saxophone"),
		{Type: "mix", TargetType: "artist"},
	}

	f.artistReleases["md"] = []release.Release{
		{ID: "bb", Title: "Bitches Brew", Date: "1970-03-30"},
		{ID: "ms", Title: "Milestones", Date: "1958-04"},
		{ID: "kob", Title: "Kind of Blue", Date: "1959-08-17"},
		{ID: "sos", Title: "Sketches of Spain", Date: "1960-07-18"},
	}
	f.artistReleases["jc"] = []release.Release{
		{ID: "gs", Title: "Giant Steps", Date: "1960-01"},
		{ID: "bt", Title: "Blue Train", Date: "1957"},
	}
	f.artistReleases["ca"] = []release.Release{
		{ID: "se", Title: "Somethin' Else", Date: "1958"},
	}
	f.details["gs"] = &release.Release{ID: "gs", Relations: []release.Relation{
		{Type: "streaming", TargetType: "url", URL: "https://open.spotify.com/album/giantSteps1"},
	}}

	f.covers["kob"] = "https://coverartarchive.org/release/kob/front-250"
	f.covers["ms"] = "https://coverartarchive.org/release/ms/front-250"
	return f
}

func TestSearch_AlbumMode(t *testing.T) {
	f := kindOfBlueFixture()
	svc := newTestService(t, f)
	c := &collector{}

	err := svc.Search(context.Background(), Query{Title: "Kind of Blue", Artist: "Miles Davis"}, 7, c.sink)
	require.NoError(t, err)

	assert.Equal(t, []EventType{
		EventAlbumFound,
		EventContributors,
		EventPlayer,
		EventCover,
		EventPreviousAlbum, EventNextAlbum, // Miles Davis
		EventPreviousAlbum, EventNextAlbum, // John Coltrane
		EventPreviousAlbum, // Cannonball Adderley
		EventDone,
	}, c.types())

	for i, ev := range c.events {
		assert.Equal(t, uint64(7), ev.Token)
		assert.Equal(t, uint64(i+1), ev.SequenceNo)
		assert.False(t, ev.Timestamp.IsZero())
	}

	album := c.events[0].Album
	require.NotNil(t, album)
	assert.Equal(t, "Kind of Blue", album.Title)
	assert.Equal(t, "Miles Davis", album.Artist)
	assert.Equal(t, "August 17, 1959", album.DisplayDate)

	contributors := c.events[1].Contributors
	require.Len(t, contributors, 4)
	names := []string{contributors[0].Name, contributors[1].Name, contributors[2].Name, contributors[3].Name}
	assert.Equal(t, []string{"Miles Davis", "John Coltrane", "Bill Evans", "Cannonball Adderley"}, names)
	assert.Equal(t, "tenor saxophone", contributors[1].RoleName)
	assert.Equal(t, "alto saxophone", contributors[3].RoleName)
	assert.False(t, f.called("recording:rec4"), "only the first three tracks are inspected")

	p := c.events[2].Player
	require.NotNil(t, p)
	assert.Equal(t, spotifylink.ModeEmbed, p.Mode)
	assert.Equal(t, "1weenld61qoidwYuZ1GESA", p.AlbumID)
	assert.Equal(t, "https://open.spotify.com/album/altAlbum1", p.Link)

	assert.Equal(t, "https://coverartarchive.org/release/kob/front-250", c.events[3].Cover.CoverArtURL)

	prev := c.events[4].Neighbor
	require.NotNil(t, prev)
	assert.Equal(t, "Milestones", prev.Entry.Title)
	assert.Equal(t, "Miles Davis", prev.Entry.ArtistName)
	assert.Equal(t, "Apr 1958", prev.Entry.DisplayDate)
	assert.Equal(t, "https://coverartarchive.org/release/ms/front-250", prev.Entry.CoverArtURL)
	assert.Equal(t, "https://open.spotify.com/search/Milestones%20Miles%20Davis", prev.Entry.SpotifyLink)
	assert.Equal(t, "Sketches of Spain", c.events[5].Neighbor.Entry.Title)

	assert.Equal(t, "Blue Train", c.events[6].Neighbor.Entry.Title)
	giantSteps := c.events[7].Neighbor.Entry
	assert.Equal(t, "Giant Steps", giantSteps.Title)
	assert.Equal(t, "https://open.spotify.com/album/giantSteps1", giantSteps.SpotifyLink)
	assert.Equal(t, "Cannonball Adderley", c.events[8].Neighbor.Contributor.Name)
}

func TestSearch_AlbumModeLooksUpAtMostSixContributors(t *testing.T) {
	f := newFakeClient()
	big := release.Release{ID: "big", Title: "Big Band", Date: "1965", ArtistCredits: artistCredit("a1", "Artist 1")}
	f.releaseSearch["Big Band/Artist 1"] = []release.Release{big}
	f.details["big"] = &big

	var relations []release.Relation
	for i := 2; i <= 8; i++ {
		id := fmt.Sprintf("a%d", i)
		relations = append(relations, instrument(id, "Artist "+id[1:], "trumpet"))
	}
	f.relationships["big"] = relations

	svc := newTestService(t, f)
	c := &collector{}
	require.NoError(t, svc.Search(context.Background(), Query{Title: "Big Band", Artist: "Artist 1"}, 1, c.sink))

	require.Len(t, c.ofType(EventContributors), 1)
	assert.Len(t, c.ofType(EventContributors)[0].Contributors, 8)

	for i := 1; i <= 6; i++ {
		assert.True(t, f.called(fmt.Sprintf("artist-releases:a%d", i)), "contributor %d is looked up", i)
	}
	assert.False(t, f.called("artist-releases:a7"))
	assert.False(t, f.called("artist-releases:a8"))
}

func TestSearch_AlbumModeScansAtMostFiveLinkCandidates(t *testing.T) {
	f := newFakeClient()
	var candidates []release.Release
	for i := 1; i <= 7; i++ {
		r := release.Release{ID: fmt.Sprintf("c%d", i), Title: "Obscure", Date: fmt.Sprintf("%d", 1960+i)}
		candidates = append(candidates, r)
		f.details[r.ID] = &r
	}
	f.releaseSearch["Obscure/Nobody"] = candidates

	svc := newTestService(t, f)
	c := &collector{}
	require.NoError(t, svc.Search(context.Background(), Query{Title: "Obscure", Artist: "Nobody"}, 1, c.sink))

	for i := 1; i <= 5; i++ {
		assert.True(t, f.called(fmt.Sprintf("details:c%d", i)), "candidate %d is scanned", i)
	}
	assert.False(t, f.called("details:c6"))
	assert.False(t, f.called("details:c7"))

	players := c.ofType(EventPlayer)
	require.Len(t, players, 1)
	assert.Equal(t, spotifylink.ModeLinkOut, players[0].Player.Mode)
}

func TestSearch_AlbumNotFound(t *testing.T) {
	svc := newTestService(t, newFakeClient())
	c := &collector{}

	require.NoError(t, svc.Search(context.Background(), Query{Title: "Nope", Artist: "Nobody"}, 1, c.sink))
	assert.Equal(t, []EventType{EventNotFound, EventDone}, c.types())
	assert.Contains(t, c.events[0].Message, "Nope")
}

func TestSearch_DetailsUnavailableFallsBackToSearchHit(t *testing.T) {
	f := newFakeClient()
	f.releaseSearch["Obscure/Band"] = []release.Release{
		{ID: "ob", Title: "Obscure", Date: "1972", ArtistCredits: artistCredit("band", "Band")},
	}
	svc := newTestService(t, f)
	c := &collector{}

	require.NoError(t, svc.Search(context.Background(), Query{Title: "Obscure", Artist: "Band"}, 1, c.sink))

	contributors := c.ofType(EventContributors)
	require.Len(t, contributors, 1)
	require.Len(t, contributors[0].Contributors, 1)
	assert.Equal(t, "Band", contributors[0].Contributors[0].Name)

	players := c.ofType(EventPlayer)
	require.Len(t, players, 1)
	assert.Equal(t, spotifylink.ModeLinkOut, players[0].Player.Mode)
	assert.Equal(t, "https://open.spotify.com/search/Obscure%20Band", players[0].Player.Link)
	assert.True(t, f.called("artist-releases:band"))
}

func TestSearch_UndatedAlbumSkipsChronology(t *testing.T) {
	f := newFakeClient()
	f.releaseSearch["Demo/Band"] = []release.Release{
		{ID: "demo", Title: "Demo", ArtistCredits: artistCredit("band", "Band")},
	}
	svc := newTestService(t, f)
	c := &collector{}

	require.NoError(t, svc.Search(context.Background(), Query{Title: "Demo", Artist: "Band"}, 1, c.sink))
	assert.Equal(t, []EventType{EventAlbumFound, EventContributors, EventPlayer, EventCover, EventDone}, c.types())
	assert.False(t, f.called("artist-releases:band"))
}

func TestSearch_DiscographyMode(t *testing.T) {
	f := newFakeClient()
	f.artists["Miles Davis"] = []release.Artist{{ID: "md", Name: "Miles Davis"}}
	f.artistReleases["md"] = []release.Release{
		{ID: "ms", Title: "Milestones", Date: "1958"},
		{ID: "tutu", Title: "Tutu", Date: "1986-09"},
		{ID: "ms-dup", Title: "MILESTONES", Date: "1958-09"},
		{ID: "old", Title: "Early Sides", Date: "1945"},
		{ID: "kob", Title: "Kind of Blue", Date: "1959"},
	}
	f.covers["tutu"] = "https://coverartarchive.org/release/tutu/front-250"
	f.covers["kob"] = "https://coverartarchive.org/release/kob/front-250"
	svc := newTestService(t, f)
	c := &collector{}

	require.NoError(t, svc.Search(context.Background(), Query{Artist: "Miles Davis"}, 3, c.sink))

	grids := c.ofType(EventDiscography)
	require.Len(t, grids, 1)
	d := grids[0].Discography
	assert.Equal(t, "Miles Davis", d.Heading)
	assert.Equal(t, "md", d.ArtistID)

	ids := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		ids[i] = e.ID
	}
	assert.Equal(t, []string{"tutu", "kob", "ms"}, ids)
	assert.Equal(t, "https://open.spotify.com/search/Tutu%20Miles%20Davis", d.Entries[0].SpotifyLink)

	covers := c.ofType(EventDiscographyCover)
	coverIDs := make([]string, len(covers))
	for i, ev := range covers {
		coverIDs[i] = ev.Cover.ReleaseID
	}
	sort.Strings(coverIDs)
	assert.Equal(t, []string{"kob", "tutu"}, coverIDs)

	assert.Equal(t, EventDiscography, c.events[0].Type)
	assert.Equal(t, EventDone, c.events[len(c.events)-1].Type)
}

func TestSearch_TitleMode(t *testing.T) {
	f := newFakeClient()
	f.titleSearch["Blue"] = []release.Release{
		{ID: "1", Title: "Blue", Date: "1998"},
		{ID: "2", Title: "Blue", Date: "1971", ArtistCredits: artistCredit("jm", "Joni Mitchell")},
	}
	svc := newTestService(t, f)
	c := &collector{}

	require.NoError(t, svc.Search(context.Background(), Query{Title: "  Blue "}, 1, c.sink))

	grids := c.ofType(EventDiscography)
	require.Len(t, grids, 1)
	d := grids[0].Discography
	assert.Equal(t, `Search results for "Blue"`, d.Heading)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, UnknownArtist, d.Entries[0].ArtistName)
	assert.Equal(t, "Joni Mitchell", d.Entries[1].ArtistName)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestService(t, newFakeClient())
	c := &collector{}

	err := svc.Search(context.Background(), Query{Title: "  ", Artist: ""}, 1, c.sink)
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Empty(t, c.events)
}

func TestSearch_CancelledWorkflowEmitsNoDone(t *testing.T) {
	f := kindOfBlueFixture()
	svc := newTestService(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	c := &collector{}
	sink := func(ev Event) {
		c.sink(ev)
		if ev.Type == EventAlbumFound {
			cancel()
		}
	}

	err := svc.Search(ctx, Query{Title: "Kind of Blue", Artist: "Miles Davis"}, 2, sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []EventType{EventAlbumFound}, c.types())
}

func TestNavigate_RequiresBothFields(t *testing.T) {
	svc := newTestService(t, newFakeClient())
	for _, tt := range []struct{ title, artist string }{
		{title: "", artist: "Miles Davis"},
		{title: "Kind of Blue", artist: ""},
	} {
		err := svc.Navigate(context.Background(), tt.title, tt.artist, 1, func(Event) {})
		assert.ErrorIs(t, err, ErrNavigateNeedsAlbum, "title=%q artist=%q", tt.title, tt.artist)
	}
}

func TestQuery_Mode(t *testing.T) {
	tests := []struct {
		query    Query
		expected Mode
	}{
		{query: Query{Title: "Kind of Blue", Artist: "Miles Davis"}, expected: ModeAlbum},
		{query: Query{Artist: "Miles Davis"}, expected: ModeDiscography},
		{query: Query{Title: "Kind of Blue", Artist: "   "}, expected: ModeTitle},
		{query: Query{}, expected: ModeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.query.Mode())
		})
	}
}

func TestEventType_Text(t *testing.T) {
	text, err := EventPreviousAlbum.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "previous_album", string(text))

	var et EventType
	require.NoError(t, et.UnmarshalText([]byte("discography_cover")))
	assert.Equal(t, EventDiscographyCover, et)
	assert.Error(t, et.UnmarshalText([]byte("bogus")))
}
