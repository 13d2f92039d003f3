package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

func candidateFor(trackID string, sim int, artists ...domain.ArtistRef) *domain.Candidate {
	return &domain.Candidate{
		Track: domain.SeedTrack{
			ID:      trackID,
			URI:     "uri:" + trackID,
			Name:    trackID,
			Artists: artists,
		},
		Similarity: sim,
		Source:     domain.SourceCatalogRec,
	}
}

func TestScorer_FallbackCompatible(t *testing.T) {
	scorer := NewScorer(0, 1, nopLogger())
	sc := &scoredCandidate{
		cand: candidateFor("c1", 85),
		mood: domain.MoodChill,
	}
	env := scoreEnv{seedMood: domain.MoodMelancholic}

	ok := scorer.Score(sc, env)
	assert.True(t, ok)
	// No tags and no seed style: the flat compatible fallback, no
	// multipliers apply (circle 4, no genre/decade metadata).
	assert.Equal(t, 70, sc.cand.Similarity)
	assert.Equal(t, 4, sc.cand.Circle)
	assert.InDelta(t, 70.0, sc.cand.FinalScore, 1e-9)
}

func TestScorer_FallbackIncompatibleDropped(t *testing.T) {
	scorer := NewScorer(0, 1, nopLogger())
	sc := &scoredCandidate{
		cand: candidateFor("c1", 85),
		mood: domain.MoodParty,
	}
	env := scoreEnv{seedMood: domain.MoodMelancholic}

	ok := scorer.Score(sc, env)
	assert.False(t, ok, "40 base score lands under the drop threshold")
}

func TestScorer_CircleBoostOnSeedArtist(t *testing.T) {
	scorer := NewScorer(0, 1, nopLogger())
	sc := &scoredCandidate{
		cand: candidateFor("c1", 85, domain.ArtistRef{ID: "seed-artist"}),
		mood: domain.MoodChill,
	}
	env := scoreEnv{
		seedMood:    domain.MoodMelancholic,
		seedArtists: map[string]bool{"seed-artist": true},
	}

	ok := scorer.Score(sc, env)
	assert.True(t, ok)
	assert.Equal(t, 1, sc.cand.Circle)
	// 70 * 1.10 circle multiplier = 77, then final 77 * 1.30 weight.
	assert.Equal(t, 77, sc.cand.Similarity)
	assert.InDelta(t, 77*1.30, sc.cand.FinalScore, 1e-9)
}

func TestScorer_GenreAndDecadeMultipliers(t *testing.T) {
	scorer := NewScorer(0, 1, nopLogger())
	sc := &scoredCandidate{
		cand: candidateFor("c1", 85),
		mood: domain.MoodChill,
	}
	sc.cand.Track.Genres = []string{"grunge", "alternative"}
	sc.cand.Track.Album.ReleaseDate = "1994-06-21"
	env := scoreEnv{
		seedMood:   domain.MoodMelancholic,
		topGenres:  map[string]bool{"grunge": true, "alternative": true},
		topDecades: map[int]bool{1990: true},
	}

	ok := scorer.Score(sc, env)
	assert.True(t, ok)
	// 70 * (0.70 + 2*0.12) * 1.15, capped at most 100; here 75.67 -> 76.
	assert.Equal(t, 76, sc.cand.Similarity)
}

func TestScorer_SimilarityCappedAt100(t *testing.T) {
	scorer := NewScorer(0, 1, nopLogger())
	sc := &scoredCandidate{
		cand: candidateFor("c1", 95, domain.ArtistRef{ID: "seed-artist"}),
		mood: domain.MoodMelancholic,
		tags: []string{"sad", "melancholy"},
	}
	sc.cand.Track.Genres = []string{"slowcore", "sadcore", "emo", "indie"}
	sc.cand.Track.Album.ReleaseDate = "1994"
	env := scoreEnv{
		seedMood:     domain.MoodMelancholic,
		seedStyle:    estimateStyle("c1", []string{"sad", "melancholy"}),
		hasSeedStyle: true,
		seedArtists:  map[string]bool{"seed-artist": true},
		topGenres:    map[string]bool{"slowcore": true, "sadcore": true, "emo": true, "indie": true},
		topDecades:   map[int]bool{1990: true},
	}

	ok := scorer.Score(sc, env)
	assert.True(t, ok)
	assert.LessOrEqual(t, sc.cand.Similarity, 100)
}

func TestScorer_ZeroJitterIsDeterministic(t *testing.T) {
	env := scoreEnv{seedMood: domain.MoodMelancholic}
	var scores []float64
	for i := 0; i < 3; i++ {
		scorer := NewScorer(0, 1, nopLogger())
		sc := &scoredCandidate{cand: candidateFor("c1", 85), mood: domain.MoodChill}
		assert.True(t, scorer.Score(sc, env))
		scores = append(scores, sc.cand.FinalScore)
	}
	assert.Equal(t, scores[0], scores[1])
	assert.Equal(t, scores[1], scores[2])
}

func TestScorer_JitterBounded(t *testing.T) {
	env := scoreEnv{seedMood: domain.MoodMelancholic}
	scorer := NewScorer(0.15, 42, nopLogger())
	for i := 0; i < 50; i++ {
		sc := &scoredCandidate{cand: candidateFor("c1", 85), mood: domain.MoodChill}
		if !scorer.Score(sc, env) {
			continue
		}
		// Displayed similarity is pre-jitter; only the ranking score moves.
		assert.Equal(t, 70, sc.cand.Similarity)
		assert.GreaterOrEqual(t, sc.cand.FinalScore, 70*0.85)
		assert.LessOrEqual(t, sc.cand.FinalScore, 70*1.15)
	}
}

func TestScorer_JitterClamped(t *testing.T) {
	s := NewScorer(0.9, 1, nopLogger())
	assert.Equal(t, 0.15, s.jitter)
	s = NewScorer(-1, 1, nopLogger())
	assert.Equal(t, 0.0, s.jitter)
}

func TestGenreMultiplier(t *testing.T) {
	top := map[string]bool{"grunge": true, "indie": true, "rock": true, "punk": true, "emo": true}
	tests := []struct {
		name   string
		genres []string
		want   float64
	}{
		{"no candidate metadata is neutral", nil, 1.0},
		{"no overlap", []string{"jazz"}, 0.70},
		{"one shared", []string{"grunge"}, 0.82},
		{"overlap capped at four", []string{"grunge", "indie", "rock", "punk", "emo"}, 1.18},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, genreMultiplier(tc.genres, top), 1e-9)
		})
	}
	assert.Equal(t, 1.0, genreMultiplier([]string{"jazz"}, nil), "no seed metadata is neutral")
}

func TestDecadeMultiplier(t *testing.T) {
	top := map[int]bool{1990: true}
	assert.InDelta(t, 1.15, decadeMultiplier(1994, top), 1e-9)
	assert.InDelta(t, 1.03, decadeMultiplier(2003, top), 1e-9)
	assert.InDelta(t, 1.03, decadeMultiplier(1987, top), 1e-9)
	assert.InDelta(t, 0.92, decadeMultiplier(2015, top), 1e-9)
	assert.InDelta(t, 1.0, decadeMultiplier(0, top), 1e-9)
	assert.InDelta(t, 1.0, decadeMultiplier(1994, nil), 1e-9)
}

func TestEstimateStyle_Deterministic(t *testing.T) {
	a := estimateStyle("track-1", []string{"sad"})
	b := estimateStyle("track-1", []string{"sad"})
	assert.Equal(t, a, b)

	c := estimateStyle("track-2", []string{"sad"})
	assert.NotEqual(t, a, c, "different ids should differ in baseline")
}

func TestEstimateStyle_TagNudges(t *testing.T) {
	plain := estimateStyle("track-1", nil)
	sad := estimateStyle("track-1", []string{"sad"})
	assert.Less(t, sad.Valence, plain.Valence)
	assert.Less(t, sad.Energy, plain.Energy)

	metal := estimateStyle("track-1", []string{"metal"})
	assert.Greater(t, metal.Energy, plain.Energy)
	assert.Greater(t, metal.Loudness, plain.Loudness)
}
