package ports

import (
	"context"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// RecommendationSeed parameterizes a catalog recommendation request.
type RecommendationSeed struct {
	TrackIDs  []string // at most 5
	ArtistIDs []string
	Limit     int
}

// MusicCatalogGateway is the catalog upstream (Spotify-shaped REST API).
// Any call may fail with a rate-limit or not-found condition; the core
// treats each as a soft, call-site-local failure.
type MusicCatalogGateway interface {
	GetTracksByIDs(ctx context.Context, ids []string) ([]domain.SeedTrack, error)
	GetArtistsByIDs(ctx context.Context, ids []string) ([]domain.Artist, error)
	SearchTracks(ctx context.Context, title, artist string, limit int) ([]domain.SeedTrack, error)
	SearchArtists(ctx context.Context, name string, limit int) ([]domain.Artist, error)
	GetArtistTopTracks(ctx context.Context, artistID, market string) ([]domain.SeedTrack, error)
	GetArtistAlbums(ctx context.Context, artistID string, limit int) ([]domain.Album, error)
	GetAlbumTracks(ctx context.Context, albumID string) ([]domain.SeedTrack, error)
	GetRecommendations(ctx context.Context, seed RecommendationSeed) ([]domain.SeedTrack, error)
	GetRelatedArtists(ctx context.Context, artistID string) ([]domain.Artist, error)
	GetUserTopArtists(ctx context.Context, limit int) ([]domain.Artist, error)
}
