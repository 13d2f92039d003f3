package services

import (
	"math"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

const (
	// distanceScale maps weighted style distance onto the 0-100 score range.
	distanceScale = 90.0
	// compatibleFallbackScore is the flat substitute when style estimation
	// is unavailable and the candidate's mood sits inside the adjacency row.
	compatibleFallbackScore = 70.0
	// incompatibleFallbackScore lands below the stage-3 drop threshold.
	incompatibleFallbackScore = 40.0
	// dropThreshold removes candidates after the contextual stage.
	dropThreshold = 50.0
)

// scoreEnv is the per-request context the scorer evaluates candidates in.
type scoreEnv struct {
	seedMood     domain.Mood
	seedStyle    styleVector
	hasSeedStyle bool
	seedArtists  map[string]bool
	tasteArtists map[string]bool
	related      map[string]bool
	topGenres    map[string]bool
	topDecades   map[int]bool
}

// scoredCandidate carries the scorer's working annotations alongside the
// candidate itself.
type scoredCandidate struct {
	cand *domain.Candidate
	tags []string
	mood domain.Mood
	prox domain.Proximity
}

// Scorer computes similarity and final scores. The jitter source is
// injectable and seedable so tests can pin it to zero.
type Scorer struct {
	jitter float64
	rng    *rand.Rand
	mu     sync.Mutex
	log    zerolog.Logger
}

// NewScorer builds a scorer with jitter amplitude in [0, 0.15]. seed fixes
// the jitter stream; pass 0 for a time-based seed upstream if desired.
func NewScorer(jitter float64, seed int64, logger zerolog.Logger) *Scorer {
	if jitter < 0 {
		jitter = 0
	}
	if jitter > 0.15 {
		jitter = 0.15
	}
	return &Scorer{
		jitter: jitter,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // ranking jitter, not security-sensitive
		log:    logger.With().Str("component", "scorer").Logger(),
	}
}

// Score runs the four scoring stages on sc, mutating the candidate's
// Similarity, Circle, and FinalScore. It reports false when the candidate
// falls below the drop threshold after the contextual stage.
func (s *Scorer) Score(sc *scoredCandidate, env scoreEnv) bool {
	// Stage 1: vibe similarity.
	var sim float64
	if len(sc.tags) > 0 && env.hasSeedStyle {
		v := estimateStyle(sc.cand.Track.ID, sc.tags)
		dist := weightedDistance(v, env.seedStyle, moodWeights[env.seedMood])
		dist *= agreementBonus(env.seedMood, v, env.seedStyle)
		vibeScore := math.Max(0, 100-dist*distanceScale)
		// The miner's provenance estimate anchors the refined value.
		sim = (float64(sc.cand.Similarity) + vibeScore) / 2
	} else if domain.MoodsCompatible(env.seedMood, sc.mood) {
		sim = compatibleFallbackScore
	} else {
		sim = incompatibleFallbackScore
	}

	// Stage 2: proximity.
	sc.prox = domain.ClassifyProximity(artistIDs(sc.cand.Track), env.seedArtists, env.tasteArtists, env.related)
	sc.cand.Circle = sc.prox.Circle

	// Stage 3: contextual multipliers, then the drop rule.
	sim *= genreMultiplier(sc.cand.Track.Genres, env.topGenres)
	sim *= decadeMultiplier(sc.cand.Track.ReleaseYear(), env.topDecades)
	sim *= circleMultiplier(sc.prox.Circle)
	if sim < dropThreshold {
		s.log.Debug().
			Str("track", sc.cand.Track.Name).
			Float64("score", sim).
			Msg("candidate dropped below threshold")
		return false
	}
	if sim > 100 {
		sim = 100
	}
	sc.cand.Similarity = int(math.Round(sim))

	// Stage 4: ranking-only final score with bounded uniform jitter. The
	// displayed similarity stays pre-jitter.
	s.mu.Lock()
	factor := 1 + (s.rng.Float64()*2-1)*s.jitter
	s.mu.Unlock()
	sc.cand.FinalScore = sim * sc.prox.Weight * factor
	return true
}

// weightedDistance is the weighted Euclidean distance between two style
// vectors under the given per-dimension weights.
func weightedDistance(a, b styleVector, weights [8]float64) float64 {
	ad, bd := a.dims(), b.dims()
	sum := 0.0
	for i := range ad {
		d := ad[i] - bd[i]
		sum += weights[i] * d * d
	}
	return math.Sqrt(sum)
}

// agreementBonus shrinks the distance when both sides agree on the
// dimension that defines the mood.
func agreementBonus(mood domain.Mood, cand, seed styleVector) float64 {
	switch mood {
	case domain.MoodMelancholic:
		if cand.Valence < 0.3 && seed.Valence < 0.3 {
			return 0.75
		}
	case domain.MoodParty:
		if cand.Danceability > 0.7 && seed.Danceability > 0.7 {
			return 0.8
		}
	case domain.MoodChill:
		if cand.Energy < 0.35 && seed.Energy < 0.35 {
			return 0.8
		}
	case domain.MoodAggressive:
		if cand.Energy > 0.75 && seed.Energy > 0.75 {
			return 0.8
		}
	}
	return 1.0
}

// genreMultiplier maps the shared-genre count into [0.70, 1.18].
func genreMultiplier(genres []string, topGenres map[string]bool) float64 {
	// Missing metadata on either side is neutral, not a penalty.
	if len(genres) == 0 || len(topGenres) == 0 {
		return 1.0
	}
	overlap := 0
	for _, g := range genres {
		if topGenres[g] {
			overlap++
		}
	}
	if overlap > 4 {
		overlap = 4
	}
	return 0.70 + float64(overlap)*0.12
}

// decadeMultiplier maps decade agreement into [0.92, 1.15].
func decadeMultiplier(year int, topDecades map[int]bool) float64 {
	if year == 0 || len(topDecades) == 0 {
		return 1.0
	}
	decade := (year / 10) * 10
	if topDecades[decade] {
		return 1.15
	}
	if topDecades[decade-10] || topDecades[decade+10] {
		return 1.03
	}
	return 0.92
}

// circleMultiplier maps the proximity circle into [1.00, 1.10].
func circleMultiplier(circle int) float64 {
	switch circle {
	case 1:
		return 1.10
	case 2:
		return 1.06
	case 3:
		return 1.03
	default:
		return 1.00
	}
}

func artistIDs(t domain.SeedTrack) []string {
	ids := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.ID != "" {
			ids = append(ids, a.ID)
		}
	}
	return ids
}
