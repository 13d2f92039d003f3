package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressplay-labs/setlist/internal/cache"
	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
	"github.com/pressplay-labs/setlist/internal/throttle"
)

// tagSource wraps the similarity/tag gateway with the throttle owning that
// service's rate budget and a bounded cache in front of every lookup.
type tagSource struct {
	gw    ports.SimilarityTagGateway
	limit *throttle.Throttle
	cache *cache.Cache
}

func newTagSource(gw ports.SimilarityTagGateway, limit *throttle.Throttle, c *cache.Cache) *tagSource {
	return &tagSource{gw: gw, limit: limit, cache: c}
}

func tagKey(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "|"))
}

// TopTags returns up to 10 top tags for a track, lowercased.
func (s *tagSource) TopTags(ctx context.Context, artist, track string) ([]string, error) {
	key := tagKey("tags", artist, track)
	if v, ok := s.cache.Get(key); ok {
		return v.([]string), nil
	}
	var tags []string
	err := s.limit.Do(ctx, func(ctx context.Context) error {
		var err error
		tags, err = s.gw.GetTopTags(ctx, artist, track)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tag source: top tags: %w", err)
	}
	if len(tags) > 10 {
		tags = tags[:10]
	}
	lowered := make([]string, len(tags))
	for i, t := range tags {
		lowered[i] = strings.ToLower(t)
	}
	// Tags drive mood inference, so they outrank other cached lookups.
	s.cache.SetWithPriority(key, lowered, 1)
	return lowered, nil
}

// SimilarArtists returns similarity matches for an artist name.
func (s *tagSource) SimilarArtists(ctx context.Context, name string) ([]domain.SimilarArtist, error) {
	key := tagKey("simartists", name)
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.SimilarArtist), nil
	}
	var matches []domain.SimilarArtist
	err := s.limit.Do(ctx, func(ctx context.Context) error {
		var err error
		matches, err = s.gw.GetSimilarArtists(ctx, name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tag source: similar artists: %w", err)
	}
	s.cache.SetWithPriority(key, matches, 2)
	return matches, nil
}

// SimilarTracks returns similar-track matches for a track.
func (s *tagSource) SimilarTracks(ctx context.Context, artist, track string) ([]domain.SimilarTrack, error) {
	key := tagKey("simtracks", artist, track)
	if v, ok := s.cache.Get(key); ok {
		return v.([]domain.SimilarTrack), nil
	}
	var matches []domain.SimilarTrack
	err := s.limit.Do(ctx, func(ctx context.Context) error {
		var err error
		matches, err = s.gw.GetSimilarTracks(ctx, artist, track)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tag source: similar tracks: %w", err)
	}
	s.cache.SetWithPriority(key, matches, 2)
	return matches, nil
}

// catalogSource wraps the music catalog gateway with its own throttle. The
// catalog is not cached: its responses are request-specific, and the budget
// is enforced by the throttle alone.
type catalogSource struct {
	gw    ports.MusicCatalogGateway
	limit *throttle.Throttle
}

func newCatalogSource(gw ports.MusicCatalogGateway, limit *throttle.Throttle) *catalogSource {
	return &catalogSource{gw: gw, limit: limit}
}

func (s *catalogSource) do(ctx context.Context, fn func(context.Context) error) error {
	return s.limit.Do(ctx, fn)
}

func (s *catalogSource) TracksByIDs(ctx context.Context, ids []string) ([]domain.SeedTrack, error) {
	var out []domain.SeedTrack
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetTracksByIDs(ctx, ids)
		return err
	})
	return out, err
}

func (s *catalogSource) ArtistsByIDs(ctx context.Context, ids []string) ([]domain.Artist, error) {
	var out []domain.Artist
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetArtistsByIDs(ctx, ids)
		return err
	})
	return out, err
}

func (s *catalogSource) SearchTracks(ctx context.Context, title, artist string, limit int) ([]domain.SeedTrack, error) {
	var out []domain.SeedTrack
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.SearchTracks(ctx, title, artist, limit)
		return err
	})
	return out, err
}

func (s *catalogSource) SearchArtists(ctx context.Context, name string, limit int) ([]domain.Artist, error) {
	var out []domain.Artist
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.SearchArtists(ctx, name, limit)
		return err
	})
	return out, err
}

func (s *catalogSource) ArtistTopTracks(ctx context.Context, artistID, market string) ([]domain.SeedTrack, error) {
	var out []domain.SeedTrack
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetArtistTopTracks(ctx, artistID, market)
		return err
	})
	return out, err
}

func (s *catalogSource) ArtistAlbums(ctx context.Context, artistID string, limit int) ([]domain.Album, error) {
	var out []domain.Album
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetArtistAlbums(ctx, artistID, limit)
		return err
	})
	return out, err
}

func (s *catalogSource) AlbumTracks(ctx context.Context, albumID string) ([]domain.SeedTrack, error) {
	var out []domain.SeedTrack
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetAlbumTracks(ctx, albumID)
		return err
	})
	return out, err
}

func (s *catalogSource) Recommendations(ctx context.Context, seed ports.RecommendationSeed) ([]domain.SeedTrack, error) {
	var out []domain.SeedTrack
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetRecommendations(ctx, seed)
		return err
	})
	return out, err
}

func (s *catalogSource) RelatedArtists(ctx context.Context, artistID string) ([]domain.Artist, error) {
	var out []domain.Artist
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetRelatedArtists(ctx, artistID)
		return err
	})
	return out, err
}

func (s *catalogSource) UserTopArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	var out []domain.Artist
	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.gw.GetUserTopArtists(ctx, limit)
		return err
	})
	return out, err
}
