package release

import (
	"fmt"
	"sort"
	"strings"
)

// SortByYear stable-sorts releases by parsed year. Releases without a year
// sort as year 0.
func SortByYear(releases []Release, descending bool) {
	sort.SliceStable(releases, func(i, j int) bool {
		yi, _ := releases[i].Year()
		yj, _ := releases[j].Year()
		if descending {
			return yi > yj
		}
		return yi < yj
	})
}

// Dedupe removes releases sharing the same lowercased title and year.
// The first occurrence wins.
func Dedupe(releases []Release) []Release {
	seen := make(map[string]bool, len(releases))
	unique := make([]Release, 0, len(releases))
	for _, r := range releases {
		key := dedupeKey(&r)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

func dedupeKey(r *Release) string {
	year, _ := r.Year()
	return fmt.Sprintf("%s\x00%d", strings.ToLower(r.Title), year)
}

// PromoteRecent reorders ascending-sorted releases for link discovery: the
// earliest release stays first, followed by up to count later releases
// from year minYear onward (in their original order), followed by the
// remaining releases in ascending order.
func PromoteRecent(sorted []Release, minYear, count int) []Release {
	if len(sorted) == 0 {
		return sorted
	}

	out := make([]Release, 0, len(sorted))
	out = append(out, sorted[0])

	promoted := make(map[int]bool, count)
	for i := 1; i < len(sorted) && len(promoted) < count; i++ {
		if year, ok := sorted[i].Year(); ok && year >= minYear {
			promoted[i] = true
			out = append(out, sorted[i])
		}
	}

	for i := 1; i < len(sorted); i++ {
		if !promoted[i] {
			out = append(out, sorted[i])
		}
	}
	return out
}
