package services

import (
	"time"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// eraBand maps an average release year into a named cultural era with a
// fixed keyword list for downstream context strings.
type eraBand struct {
	name     string
	maxYear  int // inclusive upper bound of the band
	keywords []string
}

// eraBands are non-overlapping and evaluated in ascending order.
var eraBands = []eraBand{
	{"classic", 1979, []string{"classic rock", "vinyl era", "oldies", "golden age"}},
	{"80s", 1989, []string{"80s", "synth", "new wave", "post-punk"}},
	{"90s", 1997, []string{"90s", "grunge", "alternative", "britpop"}},
	{"late-90s-early-2000s", 2002, []string{"late 90s", "y2k", "turn of the millennium", "nu metal"}},
	{"mid-2000s", 2009, []string{"mid 2000s", "indie rock revival", "emo", "blog era"}},
	{"early-2010s", 2014, []string{"early 2010s", "indietronica", "chillwave", "festival indie"}},
	{"late-2010s", 2019, []string{"late 2010s", "streaming era", "bedroom pop", "trap"}},
	{"2020s", 1<<31 - 1, []string{"2020s", "hyperpop", "new releases", "current"}},
}

// DetectCulturalEra derives a release-year-based era classification from
// seed metadata. Seeds without a parsable year after 1950 are ignored; when
// none remain, a "contemporary" fallback pinned to the current year is
// returned. topGenres and topDecades refine nothing here but are accepted so
// callers can pass the same aggregates they feed the scorer.
func DetectCulturalEra(seeds []domain.SeedTrack, topGenres, topDecades []string) domain.CulturalContext {
	years := make([]int, 0, len(seeds))
	for _, s := range seeds {
		if y := s.ReleaseYear(); y > 0 {
			years = append(years, y)
		}
	}

	if len(years) == 0 {
		now := time.Now().Year()
		return domain.CulturalContext{
			CulturalEra:  "contemporary",
			EraKeywords:  []string{"contemporary", "new releases", "current"},
			AvgYear:      now,
			YearSpread:   0,
			IsFocusedEra: true,
			TimeRange:    [2]int{now, now},
		}
	}

	sum, minYear, maxYear := 0, years[0], years[0]
	for _, y := range years {
		sum += y
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	// Rounded mean.
	avg := (sum + len(years)/2) / len(years)
	spread := maxYear - minYear

	band := eraBands[len(eraBands)-1]
	for _, b := range eraBands {
		if avg <= b.maxYear {
			band = b
			break
		}
	}

	keywords := band.keywords
	// Genre terms sharpen the downstream context strings; decades are
	// already implied by the band itself.
	if len(topGenres) > 0 {
		n := len(topGenres)
		if n > 2 {
			n = 2
		}
		keywords = append(append([]string{}, keywords...), topGenres[:n]...)
	}

	return domain.CulturalContext{
		CulturalEra:  band.name,
		EraKeywords:  keywords,
		AvgYear:      avg,
		YearSpread:   spread,
		IsFocusedEra: spread <= 5,
		TimeRange:    [2]int{minYear, maxYear},
	}
}
