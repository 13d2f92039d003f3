package domain

// Proximity is the closeness rank of a candidate relative to the seed set
// and taste profile. Circle 1 is closest (same seed artist), 4 unrelated.
type Proximity struct {
	Circle int     `json:"circle"`
	Weight float64 `json:"weight"`
}

var proximityWeights = [5]float64{0, 1.30, 1.15, 1.08, 1.00}

// ClassifyProximity assigns a candidate's circle from its artist ids. It is
// a pure function: identical inputs always yield identical output.
//
// Circle 1: an artist on the candidate is a seed artist.
// Circle 2: in the listener's taste-profile top-artist set.
// Circle 3: in the tag-service-derived related-artist set.
// Circle 4: otherwise.
func ClassifyProximity(artistIDs []string, seedArtists, tasteArtists, relatedArtists map[string]bool) Proximity {
	for _, id := range artistIDs {
		if seedArtists[id] {
			return Proximity{Circle: 1, Weight: proximityWeights[1]}
		}
	}
	for _, id := range artistIDs {
		if tasteArtists[id] {
			return Proximity{Circle: 2, Weight: proximityWeights[2]}
		}
	}
	for _, id := range artistIDs {
		if relatedArtists[id] {
			return Proximity{Circle: 3, Weight: proximityWeights[3]}
		}
	}
	return Proximity{Circle: 4, Weight: proximityWeights[4]}
}
