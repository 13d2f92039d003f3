package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pressplay-labs/setlist/internal/cache"
	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
	"github.com/pressplay-labs/setlist/internal/throttle"
)

// mockCatalog serves canned catalog data keyed the way the pipeline looks
// things up. A non-nil err fails every call.
type mockCatalog struct {
	tracks        map[string]domain.SeedTrack   // by track id
	artists       map[string]domain.Artist      // by artist id
	searchArtists map[string][]domain.Artist    // by lowercased name
	searchTracks  map[string][]domain.SeedTrack // by lowercased "title|artist"
	topTracks     map[string][]domain.SeedTrack // by artist id
	albums        map[string][]domain.Album     // by artist id
	albumTracks   map[string][]domain.SeedTrack // by album id
	recs          []domain.SeedTrack
	recsErr       error
	related       map[string][]domain.Artist // by artist id
	taste         []domain.Artist
	err           error
}

var _ ports.MusicCatalogGateway = (*mockCatalog)(nil)

func (m *mockCatalog) GetTracksByIDs(_ context.Context, ids []string) ([]domain.SeedTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.SeedTrack, 0, len(ids))
	for _, id := range ids {
		if t, ok := m.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockCatalog) GetArtistsByIDs(_ context.Context, ids []string) ([]domain.Artist, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Artist, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockCatalog) SearchTracks(_ context.Context, title, artist string, _ int) ([]domain.SeedTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.searchTracks[strings.ToLower(title+"|"+artist)], nil
}

func (m *mockCatalog) SearchArtists(_ context.Context, name string, _ int) ([]domain.Artist, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.searchArtists[strings.ToLower(name)], nil
}

func (m *mockCatalog) GetArtistTopTracks(_ context.Context, artistID, _ string) ([]domain.SeedTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.topTracks[artistID], nil
}

func (m *mockCatalog) GetArtistAlbums(_ context.Context, artistID string, _ int) ([]domain.Album, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.albums[artistID], nil
}

func (m *mockCatalog) GetAlbumTracks(_ context.Context, albumID string) ([]domain.SeedTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.albumTracks[albumID], nil
}

func (m *mockCatalog) GetRecommendations(_ context.Context, _ ports.RecommendationSeed) ([]domain.SeedTrack, error) {
	if m.recsErr != nil {
		return nil, m.recsErr
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.recs, nil
}

func (m *mockCatalog) GetRelatedArtists(_ context.Context, artistID string) ([]domain.Artist, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.related[artistID], nil
}

func (m *mockCatalog) GetUserTopArtists(_ context.Context, _ int) ([]domain.Artist, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.taste, nil
}

// mockTagGateway serves canned similarity/tag data. A non-nil err fails
// every call.
type mockTagGateway struct {
	topTags        map[string][]string               // by lowercased "artist|track"
	similarArtists map[string][]domain.SimilarArtist // by lowercased name
	similarTracks  map[string][]domain.SimilarTrack  // by lowercased "artist|track"
	err            error
}

var _ ports.SimilarityTagGateway = (*mockTagGateway)(nil)

func (m *mockTagGateway) GetSimilarArtists(_ context.Context, name string) ([]domain.SimilarArtist, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.similarArtists[strings.ToLower(name)], nil
}

func (m *mockTagGateway) GetTopTags(_ context.Context, artist, track string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.topTags[strings.ToLower(artist+"|"+track)], nil
}

func (m *mockTagGateway) GetSimilarTracks(_ context.Context, artist, track string) ([]domain.SimilarTrack, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.similarTracks[strings.ToLower(artist+"|"+track)], nil
}

func newTestTagSource(gw ports.SimilarityTagGateway) *tagSource {
	return newTagSource(gw, throttle.New(4, 16), cache.New(100, time.Minute))
}

func newTestCatalogSource(gw ports.MusicCatalogGateway) *catalogSource {
	return newCatalogSource(gw, throttle.New(8, 16))
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
