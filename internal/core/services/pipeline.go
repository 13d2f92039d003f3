package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pressplay-labs/setlist/internal/cache"
	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
	"github.com/pressplay-labs/setlist/internal/metrics"
	"github.com/pressplay-labs/setlist/internal/throttle"
)

// Diagnostics accompanies every synthesized playlist.
type Diagnostics struct {
	GenreDistribution  map[string]int         `json:"genre_distribution"`
	DecadeDistribution map[string]int         `json:"decade_distribution"`
	InferredVibe       domain.VibeProfile     `json:"inferred_vibe"`
	CulturalContext    domain.CulturalContext `json:"cultural_context"`
	VibeSubgroups      []domain.VibeSubgroup  `json:"vibe_subgroups,omitempty"`
}

// Result is the synthesized playlist: all seed tracks first (similarity 100,
// original order), then the assembled selection.
type Result struct {
	Tracks      []domain.Candidate `json:"tracks"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

// Options wires the Synthesizer's collaborators. Zero-value fields fall
// back to sensible defaults; gateways are required.
type Options struct {
	CatalogThrottle *throttle.Throttle
	TagThrottle     *throttle.Throttle
	TagCache        *cache.Cache
	Miner           MinerConfig
	Jitter          float64
	ScoreSeed       int64
	Strategy        AssemblyStrategy
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// Synthesizer turns a set of seed track ids into a ranked, deduplicated
// playlist. Construct once per process and share; all state is per-request.
type Synthesizer struct {
	catalog   *catalogSource
	tags      *tagSource
	tagCache  *cache.Cache
	vibe      *VibeEngine
	miner     *Miner
	scorer    *Scorer
	assembler *Assembler
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

// NewSynthesizer constructs the pipeline. Both gateways are reached only
// through their own throttle; tag lookups are additionally cached.
func NewSynthesizer(catalogGW ports.MusicCatalogGateway, tagGW ports.SimilarityTagGateway, opts Options) *Synthesizer {
	if opts.CatalogThrottle == nil {
		opts.CatalogThrottle = throttle.New(8, 64)
	}
	if opts.TagThrottle == nil {
		opts.TagThrottle = throttle.New(4, 64)
	}
	if opts.TagCache == nil {
		opts.TagCache = cache.New(500, 10*time.Minute)
	}

	tags := newTagSource(tagGW, opts.TagThrottle, opts.TagCache)
	catalog := newCatalogSource(catalogGW, opts.CatalogThrottle)
	logger := opts.Logger.With().Str("component", "synthesizer").Logger()

	return &Synthesizer{
		catalog:   catalog,
		tags:      tags,
		tagCache:  opts.TagCache,
		vibe:      NewVibeEngine(tags, opts.Logger),
		miner:     NewMiner(catalog, tags, opts.Miner, opts.Logger),
		scorer:    NewScorer(opts.Jitter, opts.ScoreSeed, opts.Logger),
		assembler: NewAssembler(opts.Strategy, opts.Logger),
		metrics:   opts.Metrics,
		log:       logger,
	}
}

// Synthesize runs the full pipeline. Terminal failures are ErrNoSeeds
// (empty or entirely invalid input) and ErrNoCandidates (nothing mined
// survived filtering); every upstream hiccup in between degrades locally.
func (s *Synthesizer) Synthesize(ctx context.Context, seedTrackIDs []string) (*Result, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.SynthesisTotal.Inc()
	}
	res, err := s.synthesize(ctx, seedTrackIDs)
	if s.metrics != nil {
		s.metrics.SynthesisDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.metrics.SynthesisErrors.WithLabelValues(errorReason(err)).Inc()
		} else {
			s.metrics.TracksReturned.Observe(float64(len(res.Tracks)))
		}
		stats := s.tagCache.Stats()
		s.metrics.CacheHits.Set(float64(stats.Hits))
		s.metrics.CacheMisses.Set(float64(stats.Misses))
	}
	return res, err
}

func (s *Synthesizer) synthesize(ctx context.Context, seedTrackIDs []string) (*Result, error) {
	start := time.Now()
	ids := dedupeIDs(seedTrackIDs)
	if len(ids) == 0 {
		return nil, domain.ErrNoSeeds
	}

	seeds, err := s.catalog.TracksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("synthesize: fetch seeds: %w", err)
	}
	if len(seeds) == 0 {
		return nil, domain.ErrNoSeeds
	}

	s.enrichSeedGenres(ctx, seeds)
	seedGenres, topGenres := genreAggregates(seeds)
	topDecades, decadeNames := decadeAggregates(seeds)

	perSeed := make([]domain.VibeProfile, len(seeds))
	for i := range seeds {
		perSeed[i] = s.vibe.InferVibe(ctx, seeds[i:i+1])
	}
	pooled := s.vibe.InferVibe(ctx, seeds)
	subgroups := BuildVibeSubgroups(seeds, perSeed)
	era := DetectCulturalEra(seeds, topGenres, decadeNames)

	taste := s.fetchTasteProfile(ctx)
	env := mineEnv{
		seeds:       seeds,
		seedArtists: seedArtistIDSet(seeds),
		seedGenres:  seedGenres,
		taste:       taste,
		era:         era,
	}

	candidates := s.miner.Mine(ctx, env)
	if s.metrics != nil {
		for _, c := range candidates {
			s.metrics.CandidatesMined.WithLabelValues(string(c.Source)).Inc()
		}
	}
	if len(candidates) == 0 {
		return nil, domain.ErrNoCandidates
	}

	scoreEnv := s.buildScoreEnv(ctx, seeds, pooled, env, taste, topGenres, topDecades)
	survivors := s.scoreCandidates(ctx, candidates, scoreEnv)
	if len(survivors) == 0 {
		return nil, domain.ErrNoCandidates
	}

	tracks := s.assembler.Assemble(assembleInput{
		seeds:      seeds,
		candidates: survivors,
		subgroups:  subgroups,
		vibe:       pooled,
		era:        era,
	})

	s.log.Info().
		Int("seeds", len(seeds)).
		Int("mined", len(candidates)).
		Int("selected", len(tracks)).
		Str("mood", string(pooled.Mood)).
		Str("era", era.CulturalEra).
		Dur("elapsed", time.Since(start)).
		Msg("playlist synthesized")

	return &Result{
		Tracks: tracks,
		Diagnostics: Diagnostics{
			GenreDistribution:  genreDistribution(tracks),
			DecadeDistribution: decadeDistribution(tracks),
			InferredVibe:       pooled,
			CulturalContext:    era,
			VibeSubgroups:      subgroups,
		},
	}, nil
}

// enrichSeedGenres attaches catalog artist genres to each seed. A failed
// lookup leaves the seeds untouched.
func (s *Synthesizer) enrichSeedGenres(ctx context.Context, seeds []domain.SeedTrack) {
	idSet := make(map[string]bool)
	ids := make([]string, 0)
	for _, seed := range seeds {
		for _, a := range seed.Artists {
			if a.ID != "" && !idSet[a.ID] {
				idSet[a.ID] = true
				ids = append(ids, a.ID)
			}
		}
	}
	if len(ids) == 0 {
		return
	}
	artists, err := s.catalog.ArtistsByIDs(ctx, ids)
	if err != nil {
		s.log.Debug().Err(err).Msg("seed genre enrichment failed")
		return
	}
	genresByArtist := make(map[string][]string, len(artists))
	for _, a := range artists {
		genresByArtist[a.ID] = a.Genres
	}
	for i := range seeds {
		seen := make(map[string]bool)
		for _, a := range seeds[i].Artists {
			for _, g := range genresByArtist[a.ID] {
				g = strings.ToLower(g)
				if !seen[g] {
					seen[g] = true
					seeds[i].Genres = append(seeds[i].Genres, g)
				}
			}
		}
	}
}

// fetchTasteProfile loads the listener's top artists; absence of a taste
// profile is not an error.
func (s *Synthesizer) fetchTasteProfile(ctx context.Context) []domain.Artist {
	taste, err := s.catalog.UserTopArtists(ctx, 20)
	if err != nil {
		if errors.Is(err, throttle.ErrQueueFull) && s.metrics != nil {
			s.metrics.ThrottleRejected.WithLabelValues("catalog").Inc()
		}
		s.log.Debug().Err(err).Msg("taste profile unavailable")
		return nil
	}
	return taste
}

// buildScoreEnv derives the seed-average style vector and the three
// proximity sets. The related-artist set comes from the tag service's
// similarity graph resolved against the catalog.
func (s *Synthesizer) buildScoreEnv(ctx context.Context, seeds []domain.SeedTrack, pooled domain.VibeProfile, env mineEnv, taste []domain.Artist, topGenres []string, topDecades map[int]bool) scoreEnv {
	styles := make([]styleVector, 0, len(seeds))
	for _, seed := range seeds {
		tags, err := s.tags.TopTags(ctx, seed.PrimaryArtist().Name, seed.Name)
		if err != nil || len(tags) == 0 {
			continue
		}
		styles = append(styles, estimateStyle(seed.ID, tags))
	}

	tasteSet := make(map[string]bool, len(taste))
	for _, a := range taste {
		tasteSet[a.ID] = true
	}

	related := make(map[string]bool)
	for _, sample := range seedArtistSamples(seeds, 3) {
		matches, err := s.tags.SimilarArtists(ctx, sample.artist.Name)
		if err != nil {
			if errors.Is(err, throttle.ErrQueueFull) && s.metrics != nil {
				s.metrics.ThrottleRejected.WithLabelValues("tags").Inc()
			}
			continue
		}
		for _, sa := range topSimilarArtists(matches, 0, 5) {
			artists, err := s.catalog.SearchArtists(ctx, sa.Name, 1)
			if err != nil || len(artists) == 0 {
				continue
			}
			related[artists[0].ID] = true
		}
	}

	genreSet := make(map[string]bool, len(topGenres))
	for _, g := range topGenres {
		genreSet[g] = true
	}

	return scoreEnv{
		seedMood:     pooled.Mood,
		seedStyle:    averageStyle(styles),
		hasSeedStyle: len(styles) > 0,
		seedArtists:  env.seedArtists,
		tasteArtists: tasteSet,
		related:      related,
		topGenres:    genreSet,
		topDecades:   topDecades,
	}
}

// scoreCandidates enriches each candidate with its tags and mood, then runs
// the scoring stages. Enrichment failures degrade to tagless scoring.
func (s *Synthesizer) scoreCandidates(ctx context.Context, candidates []*domain.Candidate, env scoreEnv) []*scoredCandidate {
	survivors := make([]*scoredCandidate, 0, len(candidates))
	for _, cand := range candidates {
		tags, err := s.tags.TopTags(ctx, cand.Track.PrimaryArtist().Name, cand.Track.Name)
		if err != nil {
			if errors.Is(err, throttle.ErrQueueFull) && s.metrics != nil {
				s.metrics.ThrottleRejected.WithLabelValues("tags").Inc()
			}
			tags = nil
		}
		mood := candidateMood(tags, cand.Track.Genres)
		sc := &scoredCandidate{cand: cand, tags: tags, mood: mood}
		if s.scorer.Score(sc, env) {
			survivors = append(survivors, sc)
		}
	}
	return survivors
}

// candidateMood infers a candidate's coarse mood from its tags, falling
// back to genre names when no tags exist.
func candidateMood(tags, genres []string) domain.Mood {
	source := tags
	if len(source) == 0 {
		source = make([]string, len(genres))
		for i, g := range genres {
			source[i] = strings.ToLower(g)
		}
	}
	if len(source) > 5 {
		source = source[:5]
	}
	return detectMood(source)
}

// dedupeIDs removes duplicate and blank ids, preserving first-seen order.
func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func seedArtistIDSet(seeds []domain.SeedTrack) map[string]bool {
	set := make(map[string]bool)
	for _, s := range seeds {
		for _, a := range s.Artists {
			if a.ID != "" {
				set[a.ID] = true
			}
		}
	}
	return set
}

// genreAggregates returns the lowercased seed genre set and the genres
// ranked by frequency.
func genreAggregates(seeds []domain.SeedTrack) (map[string]bool, []string) {
	counts := make(map[string]int)
	for _, s := range seeds {
		for _, g := range s.Genres {
			counts[strings.ToLower(g)]++
		}
	}
	set := make(map[string]bool, len(counts))
	ranked := make([]string, 0, len(counts))
	for g := range counts {
		set[g] = true
		ranked = append(ranked, g)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	return set, ranked
}

// decadeAggregates returns the seed decades as a set and as display names.
func decadeAggregates(seeds []domain.SeedTrack) (map[int]bool, []string) {
	set := make(map[int]bool)
	names := make([]string, 0)
	for _, s := range seeds {
		if y := s.ReleaseYear(); y > 0 {
			d := (y / 10) * 10
			if !set[d] {
				set[d] = true
				names = append(names, fmt.Sprintf("%ds", d))
			}
		}
	}
	sort.Strings(names)
	return set, names
}

func genreDistribution(tracks []domain.Candidate) map[string]int {
	dist := make(map[string]int)
	for _, t := range tracks {
		for _, g := range t.Track.Genres {
			dist[strings.ToLower(g)]++
		}
	}
	return dist
}

func decadeDistribution(tracks []domain.Candidate) map[string]int {
	dist := make(map[string]int)
	for _, t := range tracks {
		if y := t.Track.ReleaseYear(); y > 0 {
			dist[fmt.Sprintf("%ds", (y/10)*10)]++
		}
	}
	return dist
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoSeeds):
		return "no_seeds"
	case errors.Is(err, domain.ErrNoCandidates):
		return "no_candidates"
	default:
		return domain.KindOf(err).String()
	}
}
