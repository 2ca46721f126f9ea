// Package chronology computes a contributor's nearest earlier and later
// albums around a reference year.
package chronology

import "github.com/osa030/careersinmusic/internal/domain/release"

// Era is an inclusive year range.
type Era struct {
	From int
	To   int
}

// Result holds the nearest albums around a reference year. Either may be nil.
type Result struct {
	Previous *release.Release
	Next     *release.Release
}

// Discography prepares a contributor's releases for window lookups:
// releases with a year inside the era, sorted ascending, deduplicated by
// (lowercased title, year).
func Discography(releases []release.Release, era Era) []release.Release {
	inEra := release.NewChain(release.EraFilter{From: era.From, To: era.To}).Apply(releases)
	release.SortByYear(inEra, false)
	return release.Dedupe(inEra)
}

// Window finds the last release strictly before year and the first release
// strictly after it. chronology must be sorted ascending by year.
func Window(chronology []release.Release, year int) Result {
	var res Result
	for i := range chronology {
		y, ok := chronology[i].Year()
		if !ok {
			continue
		}
		if y < year {
			res.Previous = &chronology[i]
		}
		if y > year && res.Next == nil {
			res.Next = &chronology[i]
		}
	}
	return res
}
