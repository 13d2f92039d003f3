package services

import (
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// styleVector holds the eight estimated style dimensions, all normalized to
// [0,1]. These are heuristic substitutes derived from social tags, never
// literal audio features.
type styleVector struct {
	Danceability     float64
	Energy           float64
	Valence          float64
	Acousticness     float64
	Tempo            float64
	Loudness         float64
	Speechiness      float64
	Instrumentalness float64
}

// tagAdjustment nudges one or more dimensions when a tag contains the keyword.
type tagAdjustment struct {
	keyword string
	apply   func(*styleVector)
}

var tagAdjustments = []tagAdjustment{
	{"acoustic", func(v *styleVector) { v.Acousticness = lift(v.Acousticness, 0.85); v.Energy = drop(v.Energy, 0.4) }},
	{"folk", func(v *styleVector) { v.Acousticness = lift(v.Acousticness, 0.75) }},
	{"dance", func(v *styleVector) { v.Danceability = lift(v.Danceability, 0.85); v.Tempo = lift(v.Tempo, 0.7) }},
	{"edm", func(v *styleVector) { v.Danceability = lift(v.Danceability, 0.9); v.Energy = lift(v.Energy, 0.85) }},
	{"party", func(v *styleVector) { v.Danceability = lift(v.Danceability, 0.8); v.Valence = lift(v.Valence, 0.75) }},
	{"sad", func(v *styleVector) { v.Valence = drop(v.Valence, 0.2); v.Energy = drop(v.Energy, 0.4) }},
	{"melanchol", func(v *styleVector) { v.Valence = drop(v.Valence, 0.25); v.Tempo = drop(v.Tempo, 0.4) }},
	{"happy", func(v *styleVector) { v.Valence = lift(v.Valence, 0.85) }},
	{"chill", func(v *styleVector) { v.Energy = drop(v.Energy, 0.35); v.Loudness = drop(v.Loudness, 0.35) }},
	{"ambient", func(v *styleVector) { v.Instrumentalness = lift(v.Instrumentalness, 0.8); v.Energy = drop(v.Energy, 0.3) }},
	{"metal", func(v *styleVector) { v.Energy = lift(v.Energy, 0.9); v.Loudness = lift(v.Loudness, 0.9) }},
	{"punk", func(v *styleVector) { v.Energy = lift(v.Energy, 0.85); v.Tempo = lift(v.Tempo, 0.8) }},
	{"instrumental", func(v *styleVector) { v.Instrumentalness = lift(v.Instrumentalness, 0.9); v.Speechiness = drop(v.Speechiness, 0.1) }},
	{"rap", func(v *styleVector) { v.Speechiness = lift(v.Speechiness, 0.8) }},
	{"hip hop", func(v *styleVector) { v.Speechiness = lift(v.Speechiness, 0.7); v.Danceability = lift(v.Danceability, 0.7) }},
	{"slow", func(v *styleVector) { v.Tempo = drop(v.Tempo, 0.3) }},
	{"fast", func(v *styleVector) { v.Tempo = lift(v.Tempo, 0.8) }},
	{"loud", func(v *styleVector) { v.Loudness = lift(v.Loudness, 0.85) }},
	{"soft", func(v *styleVector) { v.Loudness = drop(v.Loudness, 0.25) }},
}

// lift pulls a dimension halfway toward a higher target, drop toward a lower
// one. Halfway steps keep multiple tags from saturating a dimension.
func lift(cur, target float64) float64 {
	if target > cur {
		return cur + (target-cur)/2
	}
	return cur
}

func drop(cur, target float64) float64 {
	if target < cur {
		return cur - (cur-target)/2
	}
	return cur
}

// estimateStyle derives a style vector for a track. The baseline is seeded
// from the track id so repeated estimation of the same track is stable
// without any stored state; tags then nudge individual dimensions. With no
// tags the caller should treat estimation as unavailable and fall back to
// the coarse mood-compatibility path.
func estimateStyle(trackID string, tags []string) styleVector {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackID))
	rng := rand.New(rand.NewSource(int64(h.Sum32()))) //nolint:gosec // reproducible estimation, not security-sensitive

	between := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }
	v := styleVector{
		Danceability:     between(0.3, 0.7),
		Energy:           between(0.3, 0.7),
		Valence:          between(0.3, 0.7),
		Acousticness:     between(0.1, 0.5),
		Tempo:            between(0.3, 0.7),
		Loudness:         between(0.3, 0.7),
		Speechiness:      between(0.05, 0.3),
		Instrumentalness: between(0.05, 0.4),
	}

	for _, tag := range tags {
		for _, adj := range tagAdjustments {
			if strings.Contains(tag, adj.keyword) {
				adj.apply(&v)
			}
		}
	}
	return v
}

// averageStyle returns the per-dimension mean of the given vectors.
func averageStyle(vs []styleVector) styleVector {
	if len(vs) == 0 {
		return styleVector{}
	}
	var sum styleVector
	for _, v := range vs {
		sum.Danceability += v.Danceability
		sum.Energy += v.Energy
		sum.Valence += v.Valence
		sum.Acousticness += v.Acousticness
		sum.Tempo += v.Tempo
		sum.Loudness += v.Loudness
		sum.Speechiness += v.Speechiness
		sum.Instrumentalness += v.Instrumentalness
	}
	n := float64(len(vs))
	return styleVector{
		Danceability:     sum.Danceability / n,
		Energy:           sum.Energy / n,
		Valence:          sum.Valence / n,
		Acousticness:     sum.Acousticness / n,
		Tempo:            sum.Tempo / n,
		Loudness:         sum.Loudness / n,
		Speechiness:      sum.Speechiness / n,
		Instrumentalness: sum.Instrumentalness / n,
	}
}

// moodWeights are the per-mood weight vectors for the weighted Euclidean
// distance, ordered as the styleVector fields.
var moodWeights = map[domain.Mood][8]float64{
	domain.MoodMelancholic: {0.6, 1.2, 1.6, 1.1, 0.8, 0.9, 0.5, 0.6},
	domain.MoodParty:       {1.6, 1.4, 1.1, 0.5, 1.1, 0.9, 0.5, 0.4},
	domain.MoodChill:       {0.7, 1.4, 0.9, 1.2, 1.0, 1.2, 0.5, 0.7},
	domain.MoodUpbeat:      {1.2, 1.1, 1.5, 0.7, 1.0, 0.8, 0.5, 0.5},
	domain.MoodAggressive:  {0.7, 1.6, 0.7, 0.9, 1.2, 1.5, 0.6, 0.6},
	domain.MoodNeutral:     {1, 1, 1, 1, 1, 1, 1, 1},
}

func (v styleVector) dims() [8]float64 {
	return [8]float64{
		v.Danceability, v.Energy, v.Valence, v.Acousticness,
		v.Tempo, v.Loudness, v.Speechiness, v.Instrumentalness,
	}
}
