package services

import (
	"fmt"
	"sort"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// BuildVibeSubgroups clusters seeds sharing a mood (and sub-mood) into
// weighted subgroups. vibes[i] must be the single-track profile of seeds[i].
// A mood-homogeneous seed set yields no subgroups: the assembler then works
// from the pooled profile alone.
func BuildVibeSubgroups(seeds []domain.SeedTrack, vibes []domain.VibeProfile) []domain.VibeSubgroup {
	if len(seeds) != len(vibes) || len(seeds) == 0 {
		return nil
	}

	type key struct {
		mood    domain.Mood
		subMood string
	}
	groups := make(map[key][]int)
	order := make([]key, 0)
	for i, v := range vibes {
		k := key{v.Mood, v.SubMood}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	if len(groups) < 2 {
		return nil
	}

	subgroups := make([]domain.VibeSubgroup, 0, len(groups))
	for _, k := range order {
		idxs := groups[k]
		sg := domain.VibeSubgroup{
			Label:   subgroupLabel(k.mood, k.subMood),
			Mood:    k.mood,
			SubMood: k.subMood,
			Weight:  float64(len(idxs)) / float64(len(seeds)),
		}
		tagSet := make(map[string]bool)
		for _, i := range idxs {
			s := seeds[i]
			sg.SeedIDs = append(sg.SeedIDs, s.ID)
			for _, a := range s.Artists {
				sg.SeedArtists = append(sg.SeedArtists, a.Name)
			}
			for _, t := range vibes[i].Tags {
				if !tagSet[t] {
					tagSet[t] = true
					sg.Tags = append(sg.Tags, t)
				}
			}
			if y := s.ReleaseYear(); y > 0 {
				if sg.MinYear == 0 || y < sg.MinYear {
					sg.MinYear = y
				}
				if y > sg.MaxYear {
					sg.MaxYear = y
				}
			}
		}
		sort.Strings(sg.Tags)
		subgroups = append(subgroups, sg)
	}
	return subgroups
}

func subgroupLabel(mood domain.Mood, subMood string) string {
	if subMood == "" {
		return string(mood)
	}
	return fmt.Sprintf("%s/%s", mood, subMood)
}
