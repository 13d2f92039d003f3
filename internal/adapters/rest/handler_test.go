package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
	"github.com/pressplay-labs/setlist/internal/core/services"
)

// stubCatalog serves a single grunge seed and, optionally, a batch of
// recommendations by the same artist. Everything else is empty.
type stubCatalog struct {
	tracks map[string]domain.SeedTrack
	recs   []domain.SeedTrack
}

func (s *stubCatalog) GetTracksByIDs(_ context.Context, ids []string) ([]domain.SeedTrack, error) {
	out := make([]domain.SeedTrack, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.tracks[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubCatalog) GetArtistsByIDs(_ context.Context, ids []string) ([]domain.Artist, error) {
	out := make([]domain.Artist, 0, len(ids))
	for _, id := range ids {
		if id == "a1" {
			out = append(out, domain.Artist{ID: "a1", Name: "Seed Artist", Genres: []string{"grunge"}, Popularity: 70})
		}
	}
	return out, nil
}

func (s *stubCatalog) SearchTracks(context.Context, string, string, int) ([]domain.SeedTrack, error) {
	return nil, nil
}

func (s *stubCatalog) SearchArtists(context.Context, string, int) ([]domain.Artist, error) {
	return nil, nil
}

func (s *stubCatalog) GetArtistTopTracks(context.Context, string, string) ([]domain.SeedTrack, error) {
	return nil, nil
}

func (s *stubCatalog) GetArtistAlbums(context.Context, string, int) ([]domain.Album, error) {
	return nil, nil
}

func (s *stubCatalog) GetAlbumTracks(context.Context, string) ([]domain.SeedTrack, error) {
	return nil, nil
}

func (s *stubCatalog) GetRecommendations(context.Context, ports.RecommendationSeed) ([]domain.SeedTrack, error) {
	return s.recs, nil
}

func (s *stubCatalog) GetRelatedArtists(context.Context, string) ([]domain.Artist, error) {
	return nil, nil
}

func (s *stubCatalog) GetUserTopArtists(context.Context, int) ([]domain.Artist, error) {
	return nil, nil
}

// stubTagGateway has no data; the pipeline degrades to tagless scoring.
type stubTagGateway struct{}

func (stubTagGateway) GetSimilarArtists(context.Context, string) ([]domain.SimilarArtist, error) {
	return nil, nil
}

func (stubTagGateway) GetTopTags(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func (stubTagGateway) GetSimilarTracks(context.Context, string, string) ([]domain.SimilarTrack, error) {
	return nil, nil
}

var (
	_ ports.MusicCatalogGateway  = (*stubCatalog)(nil)
	_ ports.SimilarityTagGateway = stubTagGateway{}
)

func grungeTrack(id, name string) domain.SeedTrack {
	return domain.SeedTrack{
		ID:   id,
		URI:  "spotify:track:" + id,
		Name: name,
		Artists: []domain.ArtistRef{
			{ID: "a1", Name: "Seed Artist"},
		},
		Album:      domain.AlbumRef{Name: name, ReleaseDate: "1994-03-08"},
		Popularity: 60,
	}
}

func newTestHandler(cat *stubCatalog) *Handler {
	svc := services.NewSynthesizer(cat, stubTagGateway{}, services.Options{
		ScoreSeed: 1,
		Logger:    zerolog.Nop(),
	})
	return NewHandler(svc, zerolog.Nop())
}

func fullCatalog() *stubCatalog {
	return &stubCatalog{
		tracks: map[string]domain.SeedTrack{
			"s1": grungeTrack("s1", "Seed Song"),
		},
		recs: []domain.SeedTrack{
			grungeTrack("r1", "Rec One"),
			grungeTrack("r2", "Rec Two"),
		},
	}
}

func TestHandler_HealthCheck(t *testing.T) {
	h := newTestHandler(fullCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandler_Synthesize(t *testing.T) {
	h := newTestHandler(fullCatalog())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/playlists/synthesize",
		strings.NewReader(`{"seed_ids":["s1"]}`))
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result services.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Tracks)
	assert.Equal(t, "s1", result.Tracks[0].Track.ID)
	assert.Equal(t, 100, result.Tracks[0].Similarity)
	assert.Greater(t, len(result.Tracks), 1, "recommendations follow the seed")
}

func TestHandler_Synthesize_BadBody(t *testing.T) {
	h := newTestHandler(fullCatalog())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/playlists/synthesize",
		strings.NewReader(`{"seed_ids": [`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Synthesize_NoSeeds(t *testing.T) {
	h := newTestHandler(fullCatalog())

	for _, body := range []string{`{}`, `{"seed_ids":[]}`, `{"seed_ids":["", "  "]}`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/playlists/synthesize",
			strings.NewReader(body))
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestHandler_Synthesize_NoCandidates(t *testing.T) {
	cat := fullCatalog()
	cat.recs = nil
	h := newTestHandler(cat)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/playlists/synthesize",
		strings.NewReader(`{"seed_ids":["s1"]}`))
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestHandler_Synthesize_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(fullCatalog())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/playlists/synthesize", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
