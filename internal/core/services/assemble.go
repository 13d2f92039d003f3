package services

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// AssemblyStrategy selects how the final list is partitioned.
type AssemblyStrategy string

const (
	// StrategySubgroups partitions slots across vibe subgroups proportional
	// to their weight. Canonical.
	StrategySubgroups AssemblyStrategy = "subgroups"
	// StrategyLegacy partitions by source/circle at fixed 50/30/20
	// proportions (era-context / circle-1 / other).
	StrategyLegacy AssemblyStrategy = "legacy"
)

// TargetSize is the non-seed slot budget as a function of seed count.
func TargetSize(seedCount int) int {
	n := seedCount * 10
	if n < 20 {
		return 20
	}
	if n > 50 {
		return 50
	}
	return n
}

// Assembler fills per-section quotas into the final ordered list. Seed
// tracks are always prepended at similarity 100 and are exempt from quotas.
type Assembler struct {
	strategy AssemblyStrategy
	log      zerolog.Logger
}

func NewAssembler(strategy AssemblyStrategy, logger zerolog.Logger) *Assembler {
	if strategy == "" {
		strategy = StrategySubgroups
	}
	return &Assembler{
		strategy: strategy,
		log:      logger.With().Str("component", "assembler").Logger(),
	}
}

type assembleInput struct {
	seeds      []domain.SeedTrack
	candidates []*scoredCandidate
	subgroups  []domain.VibeSubgroup
	vibe       domain.VibeProfile
	era        domain.CulturalContext
}

// Assemble produces the final playlist: all seeds in original order, then
// the quota-balanced selection. The result never repeats a URI.
func (a *Assembler) Assemble(in assembleInput) []domain.Candidate {
	target := TargetSize(len(in.seeds))

	out := make([]domain.Candidate, 0, len(in.seeds)+target)
	seen := make(map[string]bool, len(in.seeds)+target)
	for _, s := range in.seeds {
		if s.URI != "" && seen[s.URI] {
			continue
		}
		seen[s.URI] = true
		out = append(out, domain.Candidate{
			Track:      s,
			Similarity: 100,
			Circle:     1,
			Source:     domain.SourceSeed,
			FinalScore: 100,
		})
	}

	pool := make([]*scoredCandidate, 0, len(in.candidates))
	for _, sc := range in.candidates {
		if uri := sc.cand.Track.URI; uri != "" && !seen[uri] {
			pool = append(pool, sc)
		}
	}
	sortByFinalScore(pool)

	var selected []*scoredCandidate
	switch {
	case a.strategy == StrategyLegacy:
		selected = a.assembleLegacy(pool, in, target)
	case len(in.subgroups) >= 2:
		selected = a.assembleSubgroups(pool, in, target)
	default:
		// Mood-homogeneous seeds: a single section filled best-first.
		selected = takeTop(pool, target)
	}

	for _, sc := range selected {
		if seen[sc.cand.Track.URI] {
			continue
		}
		seen[sc.cand.Track.URI] = true
		out = append(out, *sc.cand)
	}
	a.log.Debug().
		Int("seeds", len(in.seeds)).
		Int("selected", len(out)-len(in.seeds)).
		Int("target", target).
		Msg("playlist assembled")
	return out
}

// assembleSubgroups partitions the slot budget across subgroups proportional
// to weight (minimum slots each), assigns every candidate to its
// best-matching subgroup, fills each section by descending final score, and
// backfills the remainder from the globally best leftovers.
func (a *Assembler) assembleSubgroups(pool []*scoredCandidate, in assembleInput, target int) []*scoredCandidate {
	minSlots := 1
	if target >= 2*len(in.subgroups) {
		minSlots = 2
	}
	slots := make([]int, len(in.subgroups))
	for i, sg := range in.subgroups {
		s := int(sg.Weight*float64(target) + 0.5)
		if s < minSlots {
			s = minSlots
		}
		slots[i] = s
	}

	sections := make([][]*scoredCandidate, len(in.subgroups))
	for _, sc := range pool {
		best, bestScore := -1, -1
		for i, sg := range in.subgroups {
			if score := subgroupAffinity(sc, sg); score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			sections[best] = append(sections[best], sc)
		}
	}

	picked := make([]*scoredCandidate, 0, target)
	chosen := make(map[*scoredCandidate]bool)
	for i := range sections {
		for _, sc := range sections[i] {
			if len(picked) >= target || slots[i] == 0 {
				break
			}
			picked = append(picked, sc)
			chosen[sc] = true
			slots[i]--
		}
	}

	// Backfill from the globally best remaining candidates.
	for _, sc := range pool {
		if len(picked) >= target {
			break
		}
		if !chosen[sc] {
			picked = append(picked, sc)
			chosen[sc] = true
		}
	}
	return picked
}

// assembleLegacy partitions by source/circle at 50/30/20. Candidates whose
// inferred mood is incompatible with the seed vibe are excluded from the
// era-context and circle-1 sections; they can still enter via the catch-all
// section or backfill.
func (a *Assembler) assembleLegacy(pool []*scoredCandidate, in assembleInput, target int) []*scoredCandidate {
	eraQuota := target * 50 / 100
	circleQuota := target * 30 / 100
	otherQuota := target - eraQuota - circleQuota

	picked := make([]*scoredCandidate, 0, target)
	chosen := make(map[*scoredCandidate]bool)
	take := func(quota int, match func(*scoredCandidate) bool) {
		n := 0
		for _, sc := range pool {
			if n >= quota || len(picked) >= target {
				return
			}
			if chosen[sc] || !match(sc) {
				continue
			}
			picked = append(picked, sc)
			chosen[sc] = true
			n++
		}
	}

	take(eraQuota, func(sc *scoredCandidate) bool {
		return sc.cand.Source == domain.SourceEraContext && domain.MoodsCompatible(in.vibe.Mood, sc.mood)
	})
	take(circleQuota, func(sc *scoredCandidate) bool {
		return sc.cand.Circle == 1 && domain.MoodsCompatible(in.vibe.Mood, sc.mood)
	})
	take(otherQuota, func(sc *scoredCandidate) bool { return true })
	// Unfilled quota from any section backfills globally.
	take(target-len(picked), func(sc *scoredCandidate) bool { return true })
	return picked
}

// subgroupAffinity scores how well a candidate fits a subgroup: mood
// equality, sub-mood equality, tag overlap, era closeness, and a
// shared-artist bonus.
func subgroupAffinity(sc *scoredCandidate, sg domain.VibeSubgroup) int {
	score := 0
	switch {
	case sc.mood == sg.Mood:
		score += 3
	case domain.MoodsCompatible(sg.Mood, sc.mood):
		score++
	}
	if sg.SubMood != "" && subMoodOf(sc, sg.Mood) == sg.SubMood {
		score += 2
	}

	overlap := 0
	sgTags := make(map[string]bool, len(sg.Tags))
	for _, t := range sg.Tags {
		sgTags[t] = true
	}
	for _, t := range sc.tags {
		if sgTags[t] {
			overlap++
		}
	}
	if overlap > 3 {
		overlap = 3
	}
	score += overlap

	if y := sc.cand.Track.ReleaseYear(); y > 0 && sg.MinYear > 0 {
		switch {
		case y >= sg.MinYear-2 && y <= sg.MaxYear+2:
			score += 2
		case y >= sg.MinYear-5 && y <= sg.MaxYear+5:
			score++
		}
	}

	for _, artist := range sc.cand.Track.Artists {
		if containsFold(sg.SeedArtists, artist.Name) {
			score += 2
			break
		}
	}
	return score
}

func subMoodOf(sc *scoredCandidate, mood domain.Mood) string {
	return detectSubMood(mood, sc.tags)
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

func sortByFinalScore(pool []*scoredCandidate) {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].cand.FinalScore > pool[j].cand.FinalScore
	})
}

func takeTop(pool []*scoredCandidate, n int) []*scoredCandidate {
	if len(pool) <= n {
		return pool
	}
	return pool[:n]
}
