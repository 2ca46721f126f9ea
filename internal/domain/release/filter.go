package release

import "strings"

// DefaultReissueKeywords are the title fragments that mark a release as a
// reissue or compilation rather than an original album.
var DefaultReissueKeywords = []string{
	"remaster",
	"reissue",
	"compilation",
	"collection",
	"best of",
	"greatest",
}

// Filter decides whether a release stays in a result list.
type Filter interface {
	// Name returns the filter name (used in logs).
	Name() string
	// Keep returns true if the release should be kept.
	Keep(r *Release) bool
}

// Chain executes filters in sequence.
type Chain struct {
	filters []Filter
}

// NewChain creates a new filter chain.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{filters: make([]Filter, 0, len(filters))}
	for _, f := range filters {
		c.Add(f)
	}
	return c
}

// Add adds a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Keep returns false as soon as any filter rejects the release.
func (c *Chain) Keep(r *Release) bool {
	for _, f := range c.filters {
		if !f.Keep(r) {
			return false
		}
	}
	return true
}

// Apply returns the releases accepted by every filter, preserving order.
func (c *Chain) Apply(releases []Release) []Release {
	kept := make([]Release, 0, len(releases))
	for i := range releases {
		if c.Keep(&releases[i]) {
			kept = append(kept, releases[i])
		}
	}
	return kept
}

// Filters returns all filters in the chain.
func (c *Chain) Filters() []Filter {
	return c.filters
}

// DatedFilter drops releases without a date.
type DatedFilter struct{}

// Name returns the filter name.
func (DatedFilter) Name() string { return "dated" }

// Keep keeps releases carrying any date.
func (DatedFilter) Keep(r *Release) bool { return r.Date != "" }

// ReissueFilter drops releases whose title (and optionally disambiguation)
// contains one of the keywords, case-insensitively.
type ReissueFilter struct {
	keywords            []string
	checkDisambiguation bool
}

// NewReissueFilter creates a reissue filter. Empty keywords fall back to
// DefaultReissueKeywords.
func NewReissueFilter(keywords []string, checkDisambiguation bool) *ReissueFilter {
	if len(keywords) == 0 {
		keywords = DefaultReissueKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return &ReissueFilter{keywords: lowered, checkDisambiguation: checkDisambiguation}
}

// Name returns the filter name.
func (f *ReissueFilter) Name() string { return "reissue" }

// Keep keeps releases that do not look like reissues.
func (f *ReissueFilter) Keep(r *Release) bool {
	if f.matches(r.Title) {
		return false
	}
	if f.checkDisambiguation && f.matches(r.Disambiguation) {
		return false
	}
	return true
}

func (f *ReissueFilter) matches(s string) bool {
	if s == "" {
		return false
	}
	lower := strings.ToLower(s)
	for _, k := range f.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// EraFilter keeps releases whose year parses and lies in [From, To].
type EraFilter struct {
	From int
	To   int
}

// Name returns the filter name.
func (f EraFilter) Name() string { return "era" }

// Keep keeps releases inside the era.
func (f EraFilter) Keep(r *Release) bool {
	year, ok := r.Year()
	return ok && year >= f.From && year <= f.To
}
