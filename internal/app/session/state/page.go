package state

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/osa030/careersinmusic/internal/domain/release"
)

// Page is one page of the discography grid.
type Page struct {
	Heading  string                     `json:"heading"`
	ArtistID string                     `json:"artist_id,omitempty"`
	Entries  []release.DiscographyEntry `json:"entries"`
	Page     int                        `json:"page"`
	Pages    int                        `json:"pages"`
	Size     int                        `json:"size"`
	Total    int                        `json:"total"`
	Order    Order                      `json:"order"`
}

// DiscographyPage returns one page of the stored grid sorted by year.
// A zero size selects DefaultPageSize and page is clamped to [1, pages].
// An empty grid yields a single empty page.
func (v *View) DiscographyPage(page, size int, order Order) (Page, error) {
	if size == 0 {
		size = DefaultPageSize
	}
	if !ValidPageSize(size) {
		return Page{}, errors.Mark(errors.Newf("invalid page size %d (want one of %v)", size, PageSizes), ErrInvalidPage)
	}
	order, err := ParseOrder(string(order))
	if err != nil {
		return Page{}, err
	}

	v.mu.RLock()
	var heading, artistID string
	var entries []release.DiscographyEntry
	if v.discography != nil {
		heading = v.discography.Heading
		artistID = v.discography.ArtistID
		entries = append(entries, v.discography.Entries...)
	}
	v.mu.RUnlock()

	sortEntries(entries, order)

	total := len(entries)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return Page{
		Heading:  heading,
		ArtistID: artistID,
		Entries:  entries[start:end:end],
		Page:     page,
		Pages:    pages,
		Size:     size,
		Total:    total,
		Order:    order,
	}, nil
}

func sortEntries(entries []release.DiscographyEntry, order Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		yi, _ := entries[i].Year()
		yj, _ := entries[j].Year()
		if order == OrderNewest {
			return yi > yj
		}
		return yi < yj
	})
}
