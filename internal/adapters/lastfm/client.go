// Package lastfm implements the similarity/tag gateway against the Last.fm
// web service. Malformed or empty payloads are treated as "no data", never
// as failures; only transport-level problems surface as errors.
package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
)

const defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Client is an HTTP client for the tag-service adapter. All requests pass
// through a circuit breaker; an open breaker reads as the service being
// unavailable, which every call site already treats as soft no-data.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// compile-time interface assertion
var _ ports.SimilarityTagGateway = (*Client)(nil)

// NewClient constructs a tag-service client.
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	settings := gobreaker.Settings{
		Name:     "lastfm",
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// call performs one API method call and returns the raw body. HTTP-level
// failures count against the breaker; an error envelope in a 200 body does
// not, since the service itself is healthy.
func (c *Client) call(ctx context.Context, op, method string, params url.Values) ([]byte, error) {
	params.Set("method", method)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, &domain.GatewayError{
				Kind: classifyStatus(resp.StatusCode),
				Op:   op,
				Err:  fmt.Errorf("status %d", resp.StatusCode),
			}
		}
		return io.ReadAll(resp.Body)
	})
	if err != nil {
		var ge *domain.GatewayError
		if errors.As(err, &ge) {
			return nil, ge
		}
		return nil, &domain.GatewayError{Kind: domain.KindUnavailable, Op: op, Err: err}
	}
	return body, nil
}

func classifyStatus(status int) domain.Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return domain.KindRateLimited
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusBadRequest:
		return domain.KindInvalid
	case status >= http.StatusInternalServerError:
		return domain.KindUnavailable
	default:
		return domain.KindUnknown
	}
}

// GetSimilarArtists returns similarity matches for an artist name, best
// match first.
func (c *Client) GetSimilarArtists(ctx context.Context, name string) ([]domain.SimilarArtist, error) {
	body, err := c.call(ctx, "tags.similar_artists", "artist.getsimilar", url.Values{
		"artist": {name},
		"limit":  {"30"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		SimilarArtists struct {
			Artist []struct {
				Name  string     `json:"name"`
				Match looseFloat `json:"match"`
			} `json:"artist"`
		} `json:"similarartists"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return nil, nil // malformed payload reads as no data
	}
	out := make([]domain.SimilarArtist, 0, len(payload.SimilarArtists.Artist))
	for _, a := range payload.SimilarArtists.Artist {
		if a.Name == "" {
			continue
		}
		out = append(out, domain.SimilarArtist{Name: a.Name, MatchScore: float64(a.Match)})
	}
	return out, nil
}

// GetTopTags returns a track's top tags, most applied first.
func (c *Client) GetTopTags(ctx context.Context, artist, track string) ([]string, error) {
	body, err := c.call(ctx, "tags.top_tags", "track.gettoptags", url.Values{
		"artist": {artist},
		"track":  {track},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		TopTags struct {
			Tag []struct {
				Name string `json:"name"`
			} `json:"tag"`
		} `json:"toptags"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return nil, nil
	}
	out := make([]string, 0, len(payload.TopTags.Tag))
	for _, t := range payload.TopTags.Tag {
		if t.Name != "" {
			out = append(out, t.Name)
		}
	}
	return out, nil
}

// GetSimilarTracks returns similar-track matches for a track, best match
// first.
func (c *Client) GetSimilarTracks(ctx context.Context, artist, track string) ([]domain.SimilarTrack, error) {
	body, err := c.call(ctx, "tags.similar_tracks", "track.getsimilar", url.Values{
		"artist": {artist},
		"track":  {track},
		"limit":  {"30"},
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		SimilarTracks struct {
			Track []struct {
				Name   string     `json:"name"`
				Match  looseFloat `json:"match"`
				Artist struct {
					Name string `json:"name"`
				} `json:"artist"`
			} `json:"track"`
		} `json:"similartracks"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return nil, nil
	}
	out := make([]domain.SimilarTrack, 0, len(payload.SimilarTracks.Track))
	for _, t := range payload.SimilarTracks.Track {
		if t.Name == "" {
			continue
		}
		out = append(out, domain.SimilarTrack{
			Name:       t.Name,
			Artist:     t.Artist.Name,
			MatchScore: float64(t.Match),
		})
	}
	return out, nil
}
