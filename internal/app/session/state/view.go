package state

import (
	"sync"

	"github.com/osa030/careersinmusic/internal/app/explorer"
	"github.com/osa030/careersinmusic/internal/domain/credit"
	"github.com/osa030/careersinmusic/internal/domain/release"
	"github.com/osa030/careersinmusic/internal/domain/spotifylink"
)

// Neighbors holds one contributor's albums around the displayed album.
type Neighbors struct {
	Contributor credit.Contributor        `json:"contributor"`
	Previous    *release.DiscographyEntry `json:"previous,omitempty"`
	Next        *release.DiscographyEntry `json:"next,omitempty"`
}

// Snapshot is a copy of the view at one point in time.
type Snapshot struct {
	Token        uint64               `json:"token"`
	Kind         string               `json:"kind"`
	Phase        Phase                `json:"phase"`
	Message      string               `json:"message,omitempty"`
	Album        *explorer.Album      `json:"album,omitempty"`
	Contributors []credit.Contributor `json:"contributors,omitempty"`
	Player       *spotifylink.Player  `json:"player,omitempty"`
	AlbumLink    string               `json:"album_link,omitempty"`
	CoverArtURL  string               `json:"cover_art_url,omitempty"`
	Neighbors    []Neighbors          `json:"neighbors,omitempty"`
	Discography  *GridSummary         `json:"discography,omitempty"`
}

// GridSummary describes the stored discography without its entries.
type GridSummary struct {
	Heading  string `json:"heading"`
	ArtistID string `json:"artist_id,omitempty"`
	Total    int    `json:"total"`
}

// View is the state a client renders. Only events carrying the current
// token are applied.
type View struct {
	mu sync.RWMutex

	token   uint64
	lastSeq uint64
	kind    Kind
	phase   Phase
	message string

	// Album
	album        *explorer.Album
	contributors []credit.Contributor
	albumLink    string
	coverArtURL  string
	neighbors    []*Neighbors

	// Header player, survives workflows until an embeddable one replaces it
	player *spotifylink.Player

	// Grid
	discography *explorer.Discography
}

// NewView creates an idle view.
func NewView() *View {
	return &View{phase: PhaseIdle}
}

// Begin starts a new workflow and returns its token. Album data and the
// discography grid are cleared; only the header player survives.
func (v *View) Begin(kind Kind) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.token++
	v.lastSeq = 0
	v.kind = kind
	v.phase = PhaseLoading
	v.message = ""

	v.album = nil
	v.contributors = nil
	v.albumLink = ""
	v.coverArtURL = ""
	v.neighbors = nil
	v.discography = nil
	return v.token
}

// Token returns the current workflow token.
func (v *View) Token() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.token
}

// Apply folds an event into the view. It returns false when the event is
// stale (another workflow has begun) or was already applied.
func (v *View) Apply(ev explorer.Event) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if ev.Token != v.token || v.token == 0 {
		return false
	}
	if ev.SequenceNo != 0 && ev.SequenceNo <= v.lastSeq {
		return false
	}
	if ev.SequenceNo != 0 {
		v.lastSeq = ev.SequenceNo
	}

	switch ev.Type {
	case explorer.EventAlbumFound:
		v.album = ev.Album
	case explorer.EventNotFound:
		v.phase = PhaseNotFound
		v.message = ev.Message
	case explorer.EventContributors:
		v.contributors = ev.Contributors
	case explorer.EventPlayer:
		v.applyPlayer(ev.Player)
	case explorer.EventCover:
		if ev.Cover != nil {
			v.coverArtURL = ev.Cover.CoverArtURL
		}
	case explorer.EventPreviousAlbum, explorer.EventNextAlbum:
		v.applyNeighbor(ev.Type, ev.Neighbor)
	case explorer.EventDiscography:
		if ev.Discography != nil {
			d := *ev.Discography
			d.Entries = append([]release.DiscographyEntry(nil), ev.Discography.Entries...)
			v.discography = &d
		}
	case explorer.EventDiscographyCover:
		v.applyGridCover(ev.Cover)
	case explorer.EventDone:
		if v.phase == PhaseLoading {
			v.phase = PhaseReady
		}
	case explorer.EventSuperseded:
		return false
	}
	return true
}

// applyPlayer keeps the album link current, but only an embeddable player
// replaces the header player.
func (v *View) applyPlayer(p *spotifylink.Player) {
	if p == nil {
		return
	}
	v.albumLink = p.Link
	if p.Embeddable() {
		cp := *p
		v.player = &cp
	}
}

func (v *View) applyNeighbor(t explorer.EventType, n *explorer.Neighbor) {
	if n == nil {
		return
	}
	var slot *Neighbors
	for _, existing := range v.neighbors {
		if existing.Contributor.ArtistID == n.Contributor.ArtistID {
			slot = existing
			break
		}
	}
	if slot == nil {
		slot = &Neighbors{Contributor: n.Contributor}
		v.neighbors = append(v.neighbors, slot)
	}

	entry := n.Entry
	if t == explorer.EventPreviousAlbum {
		slot.Previous = &entry
	} else {
		slot.Next = &entry
	}
}

func (v *View) applyGridCover(c *explorer.Cover) {
	if c == nil || v.discography == nil {
		return
	}
	for i := range v.discography.Entries {
		if v.discography.Entries[i].ID == c.ReleaseID {
			v.discography.Entries[i].CoverArtURL = c.CoverArtURL
		}
	}
}

// Snapshot returns a deep enough copy of the view for rendering.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{
		Token:       v.token,
		Kind:        v.kind.String(),
		Phase:       v.phase,
		Message:     v.message,
		AlbumLink:   v.albumLink,
		CoverArtURL: v.coverArtURL,
	}
	if v.album != nil {
		a := *v.album
		s.Album = &a
	}
	if len(v.contributors) > 0 {
		s.Contributors = append([]credit.Contributor(nil), v.contributors...)
	}
	if v.player != nil {
		p := *v.player
		s.Player = &p
	}
	for _, n := range v.neighbors {
		s.Neighbors = append(s.Neighbors, *n)
	}
	if v.discography != nil {
		s.Discography = &GridSummary{
			Heading:  v.discography.Heading,
			ArtistID: v.discography.ArtistID,
			Total:    len(v.discography.Entries),
		}
	}
	return s
}
