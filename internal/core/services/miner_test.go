package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

func newTestMiner(catalog *mockCatalog, tags *mockTagGateway, cfg MinerConfig) *Miner {
	return NewMiner(newTestCatalogSource(catalog), newTestTagSource(tags), cfg, nopLogger())
}

func minedTrack(id, date string, artists ...domain.ArtistRef) domain.SeedTrack {
	return domain.SeedTrack{
		ID:      id,
		URI:     "uri:" + id,
		Name:    id,
		Artists: artists,
		Album:   domain.AlbumRef{ReleaseDate: date},
	}
}

func singleSeedEnv() mineEnv {
	seed := domain.SeedTrack{
		ID:      "s1",
		URI:     "uri:s1",
		Name:    "Seed Song",
		Artists: []domain.ArtistRef{{ID: "sa1", Name: "Seed Artist"}},
		Genres:  []string{"indie"},
	}
	return mineEnv{
		seeds:       []domain.SeedTrack{seed},
		seedArtists: map[string]bool{"sa1": true},
		seedGenres:  map[string]bool{"indie": true},
		era:         domain.CulturalContext{TimeRange: [2]int{1994, 1996}},
	}
}

func TestMiner_SeedExpansion(t *testing.T) {
	catalog := &mockCatalog{
		recs: []domain.SeedTrack{
			minedTrack("r1", "1995"),
			minedTrack("r2", "1995"),
		},
	}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	require.Len(t, out, 2)
	for _, c := range out {
		assert.Equal(t, domain.SourceCatalogRec, c.Source)
		assert.Equal(t, 85, c.Similarity)
	}
}

func TestMiner_SeedExpansionSkipsSeedURIs(t *testing.T) {
	catalog := &mockCatalog{
		recs: []domain.SeedTrack{
			{ID: "s1", URI: "uri:s1", Name: "Seed Song"}, // the seed itself
			minedTrack("r1", "1995"),
		},
	}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	require.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].Track.ID)
}

func TestMiner_RecommendationEngineAbsenceIsSilent(t *testing.T) {
	catalog := &mockCatalog{
		recsErr: &domain.GatewayError{Kind: domain.KindNotFound, Op: "recommendations", Err: errors.New("404")},
	}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	assert.Empty(t, out)
}

func TestMiner_SimilarTracks(t *testing.T) {
	catalog := &mockCatalog{
		searchTracks: map[string][]domain.SeedTrack{
			"similar song|other artist": {minedTrack("st1", "1995", domain.ArtistRef{ID: "oa1", Name: "Other Artist"})},
		},
	}
	tags := &mockTagGateway{
		similarTracks: map[string][]domain.SimilarTrack{
			"seed artist|seed song": {{Name: "Similar Song", Artist: "Other Artist", MatchScore: 0.8}},
		},
	}
	m := newTestMiner(catalog, tags, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	require.Len(t, out, 1)
	assert.Equal(t, domain.SourceSimilar, out[0].Source)
	assert.Equal(t, 80, out[0].Similarity, "match score scaled to 0-100")
}

func TestMiner_StrictThreshold(t *testing.T) {
	catalog := &mockCatalog{
		searchTracks: map[string][]domain.SeedTrack{
			"similar song|other artist": {minedTrack("st1", "1995")},
		},
	}
	tags := &mockTagGateway{
		similarTracks: map[string][]domain.SimilarTrack{
			"seed artist|seed song": {{Name: "Similar Song", Artist: "Other Artist", MatchScore: 0.3}},
		},
	}

	relaxed := newTestMiner(catalog, tags, MinerConfig{})
	assert.Len(t, relaxed.Mine(context.Background(), singleSeedEnv()), 1)

	strict := newTestMiner(catalog, tags, MinerConfig{Strict: true})
	assert.Empty(t, strict.Mine(context.Background(), singleSeedEnv()),
		"0.3 match is below the strict 0.4 threshold")
}

func TestMiner_SeedArtistDeepCuts(t *testing.T) {
	catalog := &mockCatalog{
		albums: map[string][]domain.Album{
			"sa1": {{ID: "al1", Name: "Album One", ReleaseDate: "1995", TotalTracks: 10}},
		},
		albumTracks: map[string][]domain.SeedTrack{
			"al1": {
				minedTrack("dc1", ""),
				minedTrack("dc2", ""),
				minedTrack("dc3", ""),
				minedTrack("dc4", ""),
				minedTrack("dc5", ""),
			},
		},
	}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	require.Len(t, out, 1, "one album sampled, one cut per album")
	assert.Equal(t, domain.SourceDeepCut, out[0].Source)
	assert.Equal(t, 95, out[0].Similarity, "seed artist deep cuts rank highest")
	assert.Equal(t, "1995", out[0].Track.Album.ReleaseDate, "album release date backfilled")
}

func TestMiner_SimilarArtistDeepCutsRespectPopularityCeiling(t *testing.T) {
	catalog := &mockCatalog{
		searchArtists: map[string][]domain.Artist{
			"niche artist":   {{ID: "na1", Name: "Niche Artist", Popularity: 30, Genres: []string{"indie"}}},
			"popular artist": {{ID: "pa1", Name: "Popular Artist", Popularity: 90, Genres: []string{"indie"}}},
		},
		albums: map[string][]domain.Album{
			"na1": {{ID: "al-n", ReleaseDate: "1995"}},
			"pa1": {{ID: "al-p", ReleaseDate: "1995"}},
		},
		albumTracks: map[string][]domain.SeedTrack{
			"al-n": {minedTrack("nc1", "1995")},
			"al-p": {minedTrack("pc1", "1995")},
		},
	}
	tags := &mockTagGateway{
		similarArtists: map[string][]domain.SimilarArtist{
			"seed artist": {
				{Name: "Niche Artist", MatchScore: 0.7},
				{Name: "Popular Artist", MatchScore: 0.9},
			},
		},
	}
	m := newTestMiner(catalog, tags, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())

	ids := make(map[string]bool)
	for _, c := range out {
		ids[c.Track.ID] = true
	}
	assert.True(t, ids["nc1"], "sub-65-popularity artist is mined for deep cuts")
	assert.False(t, ids["pc1"], "popular artist is skipped")
}

func TestMiner_EraContext(t *testing.T) {
	catalog := &mockCatalog{
		searchArtists: map[string][]domain.Artist{
			"era artist": {{ID: "ea1", Name: "Era Artist", Popularity: 70, Genres: []string{"grunge"}}},
		},
		topTracks: map[string][]domain.SeedTrack{
			"ea1": {
				minedTrack("in1", "1995"),
				minedTrack("in2", "1996"),
				minedTrack("out1", "2010"),
			},
		},
	}
	tags := &mockTagGateway{
		similarArtists: map[string][]domain.SimilarArtist{
			"seed artist": {{Name: "Era Artist", MatchScore: 0.7}},
		},
	}
	m := newTestMiner(catalog, tags, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())

	var eraTracks []*domain.Candidate
	for _, c := range out {
		if c.Source == domain.SourceEraContext {
			eraTracks = append(eraTracks, c)
		}
	}
	require.Len(t, eraTracks, 2)
	for _, c := range eraTracks {
		y := c.Track.ReleaseYear()
		assert.GreaterOrEqual(t, y, 1992)
		assert.LessOrEqual(t, y, 1998)
		assert.Equal(t, 85, c.Similarity)
		assert.Equal(t, []string{"grunge"}, c.Track.Genres, "artist genres attached")
	}
}

func TestMiner_CandidateCap(t *testing.T) {
	recs := make([]domain.SeedTrack, 10)
	for i := range recs {
		recs[i] = minedTrack(string(rune('a'+i)), "1995")
	}
	catalog := &mockCatalog{recs: recs}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{MaxCandidates: 3})

	out := m.Mine(context.Background(), singleSeedEnv())
	assert.Len(t, out, 3)
}

func TestMiner_DuplicateURIFirstWins(t *testing.T) {
	dup := minedTrack("r1", "1995")
	catalog := &mockCatalog{recs: []domain.SeedTrack{dup, dup, minedTrack("r2", "1995")}}
	m := newTestMiner(catalog, &mockTagGateway{}, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	assert.Len(t, out, 2)
}

func TestMiner_AllUpstreamsFailing(t *testing.T) {
	catalog := &mockCatalog{err: errors.New("catalog down")}
	tags := &mockTagGateway{err: errors.New("tags down")}
	m := newTestMiner(catalog, tags, MinerConfig{})

	out := m.Mine(context.Background(), singleSeedEnv())
	assert.Empty(t, out, "mining degrades to an empty result, never an error")
}
