package credit

import "github.com/osa030/careersinmusic/internal/domain/release"

// Contributor is a person or group credited on, or related to, a release.
type Contributor struct {
	ArtistID string `json:"artist_id"`
	Name     string `json:"name"`
	Role     Role   `json:"-"`
	RoleName string `json:"role,omitempty"`
}

// Merger accumulates contributors keyed by artist ID, keeping first-seen order.
// A specific role is sticky: later generic roles never replace it, while a
// generic role may be replaced by anything.
type Merger struct {
	order []string
	byID  map[string]*Contributor
}

// NewMerger creates an empty merger.
func NewMerger() *Merger {
	return &Merger{byID: make(map[string]*Contributor)}
}

// AddCredits inserts credited artists that are not known yet, without a role.
func (m *Merger) AddCredits(credits []release.ArtistCredit) {
	for _, c := range credits {
		if c.ArtistID == "" {
			continue
		}
		if _, ok := m.byID[c.ArtistID]; ok {
			continue
		}
		m.insert(&Contributor{ArtistID: c.ArtistID, Name: c.Name})
	}
}

// AddRelations merges artist relations, ignoring relations without an artist.
func (m *Merger) AddRelations(relations []release.Relation) {
	for _, rel := range relations {
		if rel.Artist == nil || rel.Artist.ID == "" {
			continue
		}
		m.Apply(rel.Artist.ID, rel.Artist.Name, RoleFromRelation(rel))
	}
}

// Apply sets the role for an artist unless it already holds a specific one.
func (m *Merger) Apply(artistID, name string, role Role) {
	existing, ok := m.byID[artistID]
	if !ok {
		m.insert(&Contributor{ArtistID: artistID, Name: name, Role: role, RoleName: role.String()})
		return
	}
	if existing.Role.Specific() {
		return
	}
	existing.Name = name
	existing.Role = role
	existing.RoleName = role.String()
}

// Contributors returns the merged list in first-seen order.
func (m *Merger) Contributors() []Contributor {
	out := make([]Contributor, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

// Len returns the number of distinct contributors.
func (m *Merger) Len() int {
	return len(m.order)
}

func (m *Merger) insert(c *Contributor) {
	m.order = append(m.order, c.ArtistID)
	m.byID[c.ArtistID] = c
}
