package state

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/domain/credit"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

func event(token, seq uint64, t explorer.EventType) explorer.Event {
	return explorer.Event{Type: t, Token: token, SequenceNo: seq}
}

func TestView_DropsStaleEvents(t *testing.T) {
	v := NewView()
	first := v.Begin(KindSearch)
	second := v.Begin(KindSearch)
	require.Greater(t, second, first)

	stale := event(first, 1, explorer.EventAlbumFound)
	stale.Album = &explorer.Album{Title: "Old"}
	assert.False(t, v.Apply(stale))

	current := event(second, 1, explorer.EventAlbumFound)
	current.Album = &explorer.Album{Title: "New"}
	assert.True(t, v.Apply(current))

	assert.Equal(t, "New", v.Snapshot().Album.Title)
}

func TestView_DropsReplayedSequence(t *testing.T) {
	v := NewView()
	token := v.Begin(KindSearch)

	assert.True(t, v.Apply(event(token, 1, explorer.EventAlbumFound)))
	assert.False(t, v.Apply(event(token, 1, explorer.EventAlbumFound)))
	assert.True(t, v.Apply(event(token, 2, explorer.EventDone)))
}

func TestView_IgnoresEventsBeforeBegin(t *testing.T) {
	v := NewView()
	assert.False(t, v.Apply(event(0, 1, explorer.EventAlbumFound)))
	assert.Equal(t, PhaseIdle, v.Snapshot().Phase)
}

func TestView_PlayerRetention(t *testing.T) {
	embed := spotifylink.NewPlayer("Kind of Blue", "Miles Davis", "https://open.spotify.com/album/1weenld61qoidwYuZ1GESA", "1weenld61qoidwYuZ1GESA")
	linkOut := spotifylink.NewPlayer("Milestones", "Miles Davis", spotifylink.SearchURL("Milestones", "Miles Davis"), "")

	v := NewView()
	token := v.Begin(KindSearch)
	ev := event(token, 1, explorer.EventPlayer)
	ev.Player = &embed
	require.True(t, v.Apply(ev))

	token = v.Begin(KindNavigate)
	ev = event(token, 1, explorer.EventPlayer)
	ev.Player = &linkOut
	require.True(t, v.Apply(ev))

	snap := v.Snapshot()
	require.NotNil(t, snap.Player)
	assert.Equal(t, spotifylink.ModeEmbed, snap.Player.Mode)
	assert.Equal(t, "1weenld61qoidwYuZ1GESA", snap.Player.AlbumID)
	assert.Equal(t, linkOut.Link, snap.AlbumLink)
}

func TestView_BeginClearsState(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{name: "search", kind: KindSearch},
		{name: "navigate", kind: KindNavigate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView()
			token := v.Begin(KindSearch)

			grid := event(token, 1, explorer.EventDiscography)
			grid.Discography = &explorer.Discography{Heading: "Miles Davis", Entries: entries(3)}
			album := event(token, 2, explorer.EventAlbumFound)
			album.Album = &explorer.Album{Title: "Kind of Blue"}
			contributors := event(token, 3, explorer.EventContributors)
			contributors.Contributors = []credit.Contributor{{ArtistID: "md", Name: "Miles Davis"}}
			for _, ev := range []explorer.Event{grid, album, contributors} {
				require.True(t, v.Apply(ev))
			}

			v.Begin(tt.kind)
			snap := v.Snapshot()
			assert.Nil(t, snap.Album)
			assert.Empty(t, snap.Contributors)
			assert.Equal(t, PhaseLoading, snap.Phase)
			assert.Equal(t, tt.kind, snap.Kind)
			assert.Nil(t, snap.Discography)

			page, err := v.DiscographyPage(1, DefaultPageSize, OrderNewest)
			require.NoError(t, err)
			assert.Empty(t, page.Entries)
			assert.Equal(t, 1, page.Pages)
		})
	}
}

func TestView_AlbumWorkflow(t *testing.T) {
	v := NewView()
	token := v.Begin(KindSearch)
	md := credit.Contributor{ArtistID: "md", Name: "Miles Davis"}

	prev := event(token, 1, explorer.EventPreviousAlbum)
	prev.Neighbor = &explorer.Neighbor{Contributor: md, Entry: release.DiscographyEntry{Release: release.Release{ID: "ms", Title: "Milestones"}}}
	next := event(token, 2, explorer.EventNextAlbum)
	next.Neighbor = &explorer.Neighbor{Contributor: md, Entry: release.DiscographyEntry{Release: release.Release{ID: "sos", Title: "Sketches of Spain"}}}
	cover := event(token, 3, explorer.EventCover)
	cover.Cover = &explorer.Cover{ReleaseID: "kob", CoverArtURL: "https://example.com/kob.jpg"}

	for _, ev := range []explorer.Event{prev, next, cover, event(token, 4, explorer.EventDone)} {
		require.True(t, v.Apply(ev))
	}

	snap := v.Snapshot()
	assert.Equal(t, PhaseReady, snap.Phase)
	assert.Equal(t, "https://example.com/kob.jpg", snap.CoverArtURL)
	require.Len(t, snap.Neighbors, 1)
	assert.Equal(t, "Milestones", snap.Neighbors[0].Previous.Title)
	assert.Equal(t, "Sketches of Spain", snap.Neighbors[0].Next.Title)
}

func TestView_NotFoundSurvivesDone(t *testing.T) {
	v := NewView()
	token := v.Begin(KindSearch)
	nf := event(token, 1, explorer.EventNotFound)
	nf.Message = "No artist found"

	require.True(t, v.Apply(nf))
	require.True(t, v.Apply(event(token, 2, explorer.EventDone)))

	snap := v.Snapshot()
	assert.Equal(t, PhaseNotFound, snap.Phase)
	assert.Equal(t, "No artist found", snap.Message)
}

func TestView_GridCover(t *testing.T) {
	v := NewView()
	token := v.Begin(KindSearch)
	grid := event(token, 1, explorer.EventDiscography)
	grid.Discography = &explorer.Discography{Heading: "Miles Davis", Entries: entries(3)}
	require.True(t, v.Apply(grid))

	cover := event(token, 2, explorer.EventDiscographyCover)
	cover.Cover = &explorer.Cover{ReleaseID: "r1", CoverArtURL: "https://example.com/r1.jpg"}
	require.True(t, v.Apply(cover))

	page, err := v.DiscographyPage(1, 6, OrderOldest)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/r1.jpg", page.Entries[1].CoverArtURL)
	assert.Empty(t, grid.Discography.Entries[1].CoverArtURL, "event payload must not be mutated")
}

// entries returns n entries r0..r(n-1) dated 1950, 1951, ...
func entries(n int) []release.DiscographyEntry {
	out := make([]release.DiscographyEntry, n)
	for i := range out {
		out[i] = release.DiscographyEntry{Release: release.Release{
			ID:    fmt.Sprintf("r%d", i),
			Title: fmt.Sprintf("Album %d", i),
			Date:  fmt.Sprintf("%d", 1950+i),
		}}
	}
	return out
}

func TestView_DiscographyPage(t *testing.T) {
	v := NewView()
	token := v.Begin(KindSearch)
	grid := event(token, 1, explorer.EventDiscography)
	grid.Discography = &explorer.Discography{Heading: "Prolific", ArtistID: "p", Entries: entries(30)}
	require.True(t, v.Apply(grid))

	tests := []struct {
		name      string
		page      int
		size      int
		order     Order
		wantPage  int
		wantPages int
		wantSize  int
		wantFirst string
		wantLen   int
		wantErr   bool
	}{
		{name: "default size newest", page: 1, wantPage: 1, wantPages: 3, wantSize: 12, wantFirst: "r29", wantLen: 12},
		{name: "oldest", page: 1, size: 6, order: OrderOldest, wantPage: 1, wantPages: 5, wantSize: 6, wantFirst: "r0", wantLen: 6},
		{name: "last partial page", page: 3, size: 12, order: OrderOldest, wantPage: 3, wantPages: 3, wantSize: 12, wantFirst: "r24", wantLen: 6},
		{name: "clamped high", page: 99, size: 24, wantPage: 2, wantPages: 2, wantSize: 24, wantFirst: "r5", wantLen: 6},
		{name: "clamped low", page: -1, size: 48, wantPage: 1, wantPages: 1, wantSize: 48, wantFirst: "r29", wantLen: 30},
		{name: "invalid size", page: 1, size: 10, wantErr: true},
		{name: "invalid order", page: 1, size: 6, order: Order("random"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := v.DiscographyPage(tt.page, tt.size, tt.order)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Prolific", p.Heading)
			assert.Equal(t, 30, p.Total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.wantSize, p.Size)
			require.Len(t, p.Entries, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Entries[0].ID)
		})
	}
}

func TestView_DiscographyPageEmpty(t *testing.T) {
	p, err := NewView().DiscographyPage(3, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 1, p.Pages)
	assert.Equal(t, OrderNewest, p.Order)
	assert.Empty(t, p.Entries)
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected string
	}{
		{PhaseIdle, "idle"},
		{PhaseLoading, "loading"},
		{PhaseReady, "ready"},
		{PhaseNotFound, "not_found"},
		{Phase(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}
