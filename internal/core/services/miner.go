package services

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
)

const (
	defaultMaxCandidates = 400

	// Similarity-match thresholds by strictness mode.
	relaxedMatchThreshold = 0.15
	strictMatchThreshold  = 0.4

	// deepCutPopularityCeiling restricts deep-cut mining of similar artists
	// to lesser-known material. Seed artists are exempt.
	deepCutPopularityCeiling = 65
	// nichePopularityCeiling admits artists into the network-exploration
	// niche pool.
	nichePopularityCeiling = 55

	// Source-dependent initial similarity estimates, refined later by the
	// scorer.
	simCatalogRec     = 85
	simEraContext     = 85
	simSeedDeepCut    = 95
	simSimilarDeepCut = 80
)

// MinerConfig tunes the mining strategies.
type MinerConfig struct {
	Strict        bool   // raise the similarity-match threshold from 0.15 to 0.4
	MaxCandidates int    // shared cap across all strategies
	Market        string // catalog market for top-track lookups
	Seed          int64  // album-sampling RNG seed; 0 keeps the default
}

// mineEnv is the per-request input shared by all strategies.
type mineEnv struct {
	seeds       []domain.SeedTrack
	seedArtists map[string]bool // artist ids
	seedGenres  map[string]bool
	taste       []domain.Artist
	era         domain.CulturalContext
}

// collector is the shared append-only candidate list. The URI-seen set makes
// the first-inserted duplicate win; the cap bounds total mining output.
type collector struct {
	mu   sync.Mutex
	seen map[string]bool
	list []*domain.Candidate
	max  int
}

func newCollector(max int, seedURIs []string) *collector {
	seen := make(map[string]bool, len(seedURIs))
	for _, uri := range seedURIs {
		seen[uri] = true
	}
	return &collector{seen: seen, max: max}
}

// add records a candidate unless its URI was already seen or the cap is
// reached. Seed URIs count as seen from the start.
func (c *collector) add(cand *domain.Candidate) bool {
	uri := cand.Track.URI
	if uri == "" {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[uri] || len(c.list) >= c.max {
		return false
	}
	c.seen[uri] = true
	c.list = append(c.list, cand)
	return true
}

func (c *collector) candidates() []*domain.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Candidate(nil), c.list...)
}

// Miner runs the four candidate mining strategies concurrently. Each
// strategy catches its own upstream failures and degrades to an empty
// contribution; one branch never aborts its siblings.
type Miner struct {
	catalog *catalogSource
	tags    *tagSource
	cfg     MinerConfig
	log     zerolog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewMiner(catalog *catalogSource, tags *tagSource, cfg MinerConfig, logger zerolog.Logger) *Miner {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = defaultMaxCandidates
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	return &Miner{
		catalog: catalog,
		tags:    tags,
		cfg:     cfg,
		log:     logger.With().Str("component", "miner").Logger(),
		rng:     rand.New(rand.NewSource(seed)), //nolint:gosec // album sampling, not security-sensitive
	}
}

func (m *Miner) matchThreshold() float64 {
	if m.cfg.Strict {
		return strictMatchThreshold
	}
	return relaxedMatchThreshold
}

// Mine fans out all strategies and joins them. Candidate insertion order is
// nondeterministic across strategies; ranking later depends only on score.
func (m *Miner) Mine(ctx context.Context, env mineEnv) []*domain.Candidate {
	seedURIs := make([]string, 0, len(env.seeds))
	for _, s := range env.seeds {
		seedURIs = append(seedURIs, s.URI)
	}
	col := newCollector(m.cfg.MaxCandidates, seedURIs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { m.mineSeedExpansion(gctx, env, col); return nil })
	g.Go(func() error { m.mineSimilarArtists(gctx, env, col); return nil })
	g.Go(func() error { m.mineEraContext(gctx, env, col); return nil })
	g.Go(func() error { m.mineNetwork(gctx, env, col); return nil })
	_ = g.Wait() // branches never return errors; they degrade to skip

	out := col.candidates()
	m.log.Debug().Int("candidates", len(out)).Msg("mining complete")
	return out
}

// mineSeedExpansion asks the catalog recommendation engine for tracks close
// to the seed set. With fewer than four seeds and overlapping taste genres,
// up to two taste-profile artists widen the request. Not-found or forbidden
// responses degrade silently: some markets have no recommendation engine.
func (m *Miner) mineSeedExpansion(ctx context.Context, env mineEnv, col *collector) {
	seed := ports.RecommendationSeed{Limit: 50}
	for _, s := range env.seeds {
		if len(seed.TrackIDs) == 5 {
			break
		}
		seed.TrackIDs = append(seed.TrackIDs, s.ID)
	}
	if len(env.seeds) < 4 {
		for _, a := range env.taste {
			if len(seed.ArtistIDs) == 2 {
				break
			}
			if genreOverlaps(a.Genres, env.seedGenres) {
				seed.ArtistIDs = append(seed.ArtistIDs, a.ID)
			}
		}
	}

	tracks, err := m.catalog.Recommendations(ctx, seed)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindNotFound, domain.KindInvalid:
			// No recommendation engine for this market.
		default:
			m.log.Debug().Err(err).Msg("seed expansion failed")
		}
		return
	}
	for _, t := range tracks {
		col.add(&domain.Candidate{Track: t, Similarity: simCatalogRec, Source: domain.SourceCatalogRec})
	}
}

// mineSimilarArtists works from the first three distinct seed artists: it
// mines similar tracks from the tag service, deep cuts from the seed artists
// themselves, and deep cuts from lesser-known similar artists.
func (m *Miner) mineSimilarArtists(ctx context.Context, env mineEnv, col *collector) {
	threshold := m.matchThreshold()
	for _, seed := range seedArtistSamples(env.seeds, 3) {
		similar, err := m.tags.SimilarTracks(ctx, seed.artist.Name, seed.trackName)
		if err != nil {
			m.log.Debug().Err(err).Str("artist", seed.artist.Name).Msg("similar tracks unavailable")
		}
		for _, st := range topSimilarTracks(similar, threshold, 5) {
			track, ok := m.resolveTrack(ctx, st.Name, st.Artist)
			if !ok {
				continue
			}
			col.add(&domain.Candidate{
				Track:      track,
				Similarity: int(math.Round(st.MatchScore * 100)),
				Source:     domain.SourceSimilar,
			})
		}

		// Seed artists are mined for deep cuts regardless of popularity.
		m.mineDeepCuts(ctx, col, domain.Artist{ID: seed.artist.ID, Name: seed.artist.Name}, simSeedDeepCut)

		matches, err := m.tags.SimilarArtists(ctx, seed.artist.Name)
		if err != nil {
			m.log.Debug().Err(err).Str("artist", seed.artist.Name).Msg("similar artists unavailable")
			continue
		}
		for _, sa := range topSimilarArtists(matches, threshold, 3) {
			artist, ok := m.resolveArtist(ctx, sa.Name)
			if !ok || artist.Popularity >= deepCutPopularityCeiling {
				continue
			}
			m.mineDeepCuts(ctx, col, artist, simSimilarDeepCut)
		}
	}
}

// mineEraContext finds artists similar to a large share of the seed set and
// mines their top tracks released inside the seeds' time window.
func (m *Miner) mineEraContext(ctx context.Context, env mineEnv, col *collector) {
	samples := seedArtistSamples(env.seeds, 4)
	if len(samples) == 0 {
		return
	}

	counts := make(map[string]int)
	lists := 0
	for _, seed := range samples {
		matches, err := m.tags.SimilarArtists(ctx, seed.artist.Name)
		if err != nil {
			m.log.Debug().Err(err).Str("artist", seed.artist.Name).Msg("era overlap lookup failed")
			continue
		}
		lists++
		for _, sa := range matches {
			counts[strings.ToLower(sa.Name)]++
		}
	}
	if lists == 0 {
		return
	}

	need := int(math.Ceil(0.4 * float64(lists)))
	strong := int(math.Ceil(0.6 * float64(lists)))
	minYear, maxYear := env.era.TimeRange[0]-2, env.era.TimeRange[1]+2

	mined := 0
	for name, n := range counts {
		if n < need || mined >= 5 {
			continue
		}
		artist, ok := m.resolveArtist(ctx, name)
		if !ok {
			continue
		}
		top, err := m.catalog.ArtistTopTracks(ctx, artist.ID, m.cfg.Market)
		if err != nil {
			m.log.Debug().Err(err).Str("artist", artist.Name).Msg("top tracks unavailable")
			continue
		}
		inWindow := make([]domain.SeedTrack, 0, len(top))
		for _, t := range top {
			if y := t.ReleaseYear(); y >= minYear && y <= maxYear {
				inWindow = append(inWindow, t)
			}
		}
		if len(inWindow) < 2 {
			continue
		}
		take := 2
		if n >= strong {
			take = 3
		}
		if take > len(inWindow) {
			take = len(inWindow)
		}
		for _, t := range inWindow[:take] {
			t.Genres = artist.Genres
			col.add(&domain.Candidate{Track: t, Similarity: simEraContext, Source: domain.SourceEraContext})
		}
		mined++
	}
}

// mineNetwork crawls the similar-artist graph breadth-first to depth two,
// expanding only into genre-overlapping artists, and feeds sub-55-popularity
// discoveries into deep-cut mining.
func (m *Miner) mineNetwork(ctx context.Context, env mineEnv, col *collector) {
	type node struct {
		name string
		id   string // known only for seed artists
	}

	frontier := make([]node, 0, 3)
	visited := make(map[string]bool)
	for _, seed := range seedArtistSamples(env.seeds, 3) {
		frontier = append(frontier, node{name: seed.artist.Name, id: seed.artist.ID})
		visited[strings.ToLower(seed.artist.Name)] = true
	}

	var niche []domain.Artist
	for depth := 1; depth <= 2 && len(frontier) > 0; depth++ {
		next := make([]node, 0)
		for _, cur := range frontier {
			expansions := m.expandArtist(ctx, cur.name, cur.id)
			for _, artist := range expansions {
				key := strings.ToLower(artist.Name)
				if visited[key] {
					continue
				}
				if !genreOverlaps(artist.Genres, env.seedGenres) {
					continue
				}
				visited[key] = true
				if artist.Popularity < nichePopularityCeiling {
					niche = append(niche, artist)
				}
				if len(next) < 4 {
					next = append(next, node{name: artist.Name, id: artist.ID})
				}
			}
		}
		frontier = next
	}

	if len(niche) > 4 {
		niche = niche[:4]
	}
	for _, artist := range niche {
		m.mineDeepCuts(ctx, col, artist, simSimilarDeepCut)
	}
}

// expandArtist resolves an artist's neighbors, preferring the tag service
// and falling back to catalog related artists when the tag graph has no
// entry and the artist id is known.
func (m *Miner) expandArtist(ctx context.Context, name, id string) []domain.Artist {
	matches, err := m.tags.SimilarArtists(ctx, name)
	if err != nil {
		m.log.Debug().Err(err).Str("artist", name).Msg("network expansion failed")
		matches = nil
	}

	out := make([]domain.Artist, 0, 3)
	for _, sa := range topSimilarArtists(matches, m.matchThreshold(), 3) {
		if artist, ok := m.resolveArtist(ctx, sa.Name); ok {
			out = append(out, artist)
		}
	}
	if len(out) > 0 || id == "" {
		return out
	}

	related, err := m.catalog.RelatedArtists(ctx, id)
	if err != nil {
		m.log.Debug().Err(err).Str("artist", name).Msg("related artists unavailable")
		return nil
	}
	if len(related) > 3 {
		related = related[:3]
	}
	return related
}

// mineDeepCuts samples albums of an artist and picks tracks from the
// 40th-60th percentile position, deliberately avoiding hit singles.
func (m *Miner) mineDeepCuts(ctx context.Context, col *collector, artist domain.Artist, similarity int) {
	if artist.ID == "" {
		return
	}
	albums, err := m.catalog.ArtistAlbums(ctx, artist.ID, 10)
	if err != nil || len(albums) == 0 {
		if err != nil {
			m.log.Debug().Err(err).Str("artist", artist.Name).Msg("albums unavailable")
		}
		return
	}

	for _, album := range m.sampleAlbums(albums, 2) {
		tracks, err := m.catalog.AlbumTracks(ctx, album.ID)
		if err != nil || len(tracks) == 0 {
			continue
		}
		idx := m.percentileIndex(len(tracks))
		t := tracks[idx]
		if t.Album.ReleaseDate == "" {
			t.Album.ReleaseDate = album.ReleaseDate
		}
		t.Genres = artist.Genres
		col.add(&domain.Candidate{Track: t, Similarity: similarity, Source: domain.SourceDeepCut})
	}
}

// sampleAlbums picks up to n distinct albums at random.
func (m *Miner) sampleAlbums(albums []domain.Album, n int) []domain.Album {
	if len(albums) <= n {
		return albums
	}
	m.rngMu.Lock()
	idxs := m.rng.Perm(len(albums))[:n]
	m.rngMu.Unlock()
	out := make([]domain.Album, 0, n)
	for _, i := range idxs {
		out = append(out, albums[i])
	}
	return out
}

// percentileIndex returns a track position in the 40th-60th percentile.
func (m *Miner) percentileIndex(length int) int {
	m.rngMu.Lock()
	ratio := 0.4 + m.rng.Float64()*0.2
	m.rngMu.Unlock()
	idx := int(ratio * float64(length))
	if idx >= length {
		idx = length - 1
	}
	return idx
}

// seedArtistSample pairs a distinct seed artist with the seed track that
// introduced it.
type seedArtistSample struct {
	artist    domain.ArtistRef
	trackName string
}

func seedArtistSamples(seeds []domain.SeedTrack, limit int) []seedArtistSample {
	out := make([]seedArtistSample, 0, limit)
	seen := make(map[string]bool)
	for _, s := range seeds {
		a := s.PrimaryArtist()
		if a.Name == "" || seen[a.Name] {
			continue
		}
		seen[a.Name] = true
		out = append(out, seedArtistSample{artist: a, trackName: s.Name})
		if len(out) == limit {
			break
		}
	}
	return out
}

func topSimilarArtists(matches []domain.SimilarArtist, threshold float64, limit int) []domain.SimilarArtist {
	out := make([]domain.SimilarArtist, 0, limit)
	for _, sa := range matches {
		if sa.MatchScore < threshold {
			continue
		}
		out = append(out, sa)
		if len(out) == limit {
			break
		}
	}
	return out
}

func topSimilarTracks(matches []domain.SimilarTrack, threshold float64, limit int) []domain.SimilarTrack {
	out := make([]domain.SimilarTrack, 0, limit)
	for _, st := range matches {
		if st.MatchScore < threshold {
			continue
		}
		out = append(out, st)
		if len(out) == limit {
			break
		}
	}
	return out
}

// resolveArtist maps a tag-service artist name onto a catalog artist.
func (m *Miner) resolveArtist(ctx context.Context, name string) (domain.Artist, bool) {
	artists, err := m.catalog.SearchArtists(ctx, name, 1)
	if err != nil || len(artists) == 0 {
		if err != nil {
			m.log.Debug().Err(err).Str("artist", name).Msg("artist resolution failed")
		}
		return domain.Artist{}, false
	}
	return artists[0], true
}

// resolveTrack maps a tag-service track reference onto a catalog track.
func (m *Miner) resolveTrack(ctx context.Context, title, artist string) (domain.SeedTrack, bool) {
	tracks, err := m.catalog.SearchTracks(ctx, title, artist, 5)
	if err != nil || len(tracks) == 0 {
		if err != nil {
			m.log.Debug().Err(err).Str("track", title).Msg("track resolution failed")
		}
		return domain.SeedTrack{}, false
	}
	return tracks[0], true
}

// genreOverlaps reports whether any of the artist genres appears in the
// seed genre set. An unknown (empty) seed genre set accepts everything.
func genreOverlaps(genres []string, seedGenres map[string]bool) bool {
	if len(seedGenres) == 0 {
		return true
	}
	for _, g := range genres {
		if seedGenres[strings.ToLower(g)] {
			return true
		}
	}
	return false
}
