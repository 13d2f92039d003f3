package ports

import (
	"context"

	"github.com/pressplay-labs/setlist/internal/core/domain"
)

// SimilarityTagGateway is the social-tag upstream (Last.fm-shaped HTTP/JSON
// service). Malformed or empty payloads surface as empty results, never as
// errors; transport failures carry a domain error kind.
type SimilarityTagGateway interface {
	GetSimilarArtists(ctx context.Context, name string) ([]domain.SimilarArtist, error)
	GetTopTags(ctx context.Context, artist, track string) ([]string, error)
	GetSimilarTracks(ctx context.Context, artist, track string) ([]domain.SimilarTrack, error)
}
