// Package spotify implements the music catalog gateway against the Spotify
// Web API.
package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/pressplay-labs/setlist/internal/core/domain"
	"github.com/pressplay-labs/setlist/internal/core/ports"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// Client is an HTTP client for the catalog adapter.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// compile-time interface assertion
var _ ports.MusicCatalogGateway = (*Client)(nil)

// NewClient constructs a catalog client over an already-authenticated HTTP
// client. Useful for tests and pre-built token transports.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// NewClientCredentials constructs a catalog client that authenticates with
// the client-credentials flow. Token refresh is handled by the oauth2
// transport; the core never sees credentials.
func NewClientCredentials(ctx context.Context, clientID, clientSecret, tokenURL, baseURL string) *Client {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	return NewClient(cfg.Client(ctx), baseURL)
}

// get performs a GET request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &domain.GatewayError{Kind: domain.KindInvalid, Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.GatewayError{Kind: domain.KindUnavailable, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus(op, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.GatewayError{Kind: domain.KindUnknown, Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// GetTracksByIDs retrieves full track objects for up to 50 ids. Unknown ids
// are simply absent from the result.
func (c *Client) GetTracksByIDs(ctx context.Context, ids []string) ([]domain.SeedTrack, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var body struct {
		Tracks []*spotifyTrack `json:"tracks"`
	}
	if err := c.get(ctx, "catalog.tracks", "/tracks", q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.SeedTrack, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		if t != nil { // null for unknown ids
			out = append(out, t.toDomain())
		}
	}
	return out, nil
}

// GetArtistsByIDs retrieves full artist objects for up to 50 ids.
func (c *Client) GetArtistsByIDs(ctx context.Context, ids []string) ([]domain.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var body struct {
		Artists []*spotifyArtist `json:"artists"`
	}
	if err := c.get(ctx, "catalog.artists", "/artists", q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.Artist, 0, len(body.Artists))
	for _, a := range body.Artists {
		if a != nil {
			out = append(out, a.toDomain())
		}
	}
	return out, nil
}

// SearchTracks searches the catalog and returns matches ordered by
// confidence against the requested title and artist.
func (c *Client) SearchTracks(ctx context.Context, title, artist string, limit int) ([]domain.SeedTrack, error) {
	if limit <= 0 {
		limit = 5
	}
	normalizedTitle, normalizedArtist := normalizeTitleArtist(title, artist)
	q := url.Values{
		"q":     {fmt.Sprintf("track:%s artist:%s", fallbackIfEmpty(normalizedTitle, title), fallbackIfEmpty(normalizedArtist, artist))},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}
	var body struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.get(ctx, "catalog.search_tracks", "/search", q, &body); err != nil {
		return nil, err
	}

	items := body.Tracks.Items
	sort.SliceStable(items, func(i, j int) bool {
		return trackMatchScore(title, artist, items[i]) > trackMatchScore(title, artist, items[j])
	})
	out := make([]domain.SeedTrack, 0, len(items))
	for _, t := range items {
		out = append(out, t.toDomain())
	}
	return out, nil
}

// SearchArtists searches the catalog for artists by name.
func (c *Client) SearchArtists(ctx context.Context, name string, limit int) ([]domain.Artist, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{
		"q":     {fallbackIfEmpty(normalizeSearchInput(name), name)},
		"type":  {"artist"},
		"limit": {strconv.Itoa(limit)},
	}
	var body struct {
		Artists struct {
			Items []spotifyArtist `json:"items"`
		} `json:"artists"`
	}
	if err := c.get(ctx, "catalog.search_artists", "/search", q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.Artist, 0, len(body.Artists.Items))
	for _, a := range body.Artists.Items {
		out = append(out, a.toDomain())
	}
	return out, nil
}

// GetArtistTopTracks returns an artist's most popular tracks for a market.
func (c *Client) GetArtistTopTracks(ctx context.Context, artistID, market string) ([]domain.SeedTrack, error) {
	if market == "" {
		market = "US"
	}
	q := url.Values{"market": {market}}
	var body struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	path := fmt.Sprintf("/artists/%s/top-tracks", url.PathEscape(artistID))
	if err := c.get(ctx, "catalog.top_tracks", path, q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.SeedTrack, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		out = append(out, t.toDomain())
	}
	return out, nil
}

// GetArtistAlbums lists an artist's albums, singles excluded.
func (c *Client) GetArtistAlbums(ctx context.Context, artistID string, limit int) ([]domain.Album, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{
		"include_groups": {"album"},
		"limit":          {strconv.Itoa(limit)},
	}
	var body struct {
		Items []spotifyAlbum `json:"items"`
	}
	path := fmt.Sprintf("/artists/%s/albums", url.PathEscape(artistID))
	if err := c.get(ctx, "catalog.albums", path, q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.Album, 0, len(body.Items))
	for _, a := range body.Items {
		out = append(out, a.toDomainAlbum())
	}
	return out, nil
}

// GetAlbumTracks lists the tracks of an album in position order. Album
// metadata is not repeated per track; callers backfill the release date.
func (c *Client) GetAlbumTracks(ctx context.Context, albumID string) ([]domain.SeedTrack, error) {
	var body struct {
		Items []spotifyTrack `json:"items"`
	}
	path := fmt.Sprintf("/albums/%s/tracks", url.PathEscape(albumID))
	if err := c.get(ctx, "catalog.album_tracks", path, nil, &body); err != nil {
		return nil, err
	}
	out := make([]domain.SeedTrack, 0, len(body.Items))
	for _, t := range body.Items {
		out = append(out, t.toDomain())
	}
	return out, nil
}

// GetRecommendations asks the catalog recommendation engine for tracks near
// the given seeds.
func (c *Client) GetRecommendations(ctx context.Context, seed ports.RecommendationSeed) ([]domain.SeedTrack, error) {
	q := url.Values{}
	if len(seed.TrackIDs) > 0 {
		q.Set("seed_tracks", strings.Join(seed.TrackIDs, ","))
	}
	if len(seed.ArtistIDs) > 0 {
		q.Set("seed_artists", strings.Join(seed.ArtistIDs, ","))
	}
	limit := seed.Limit
	if limit <= 0 {
		limit = 50
	}
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Tracks []spotifyTrack `json:"tracks"`
	}
	if err := c.get(ctx, "catalog.recommendations", "/recommendations", q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.SeedTrack, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		out = append(out, t.toDomain())
	}
	return out, nil
}

// GetRelatedArtists returns artists similar to the given artist according
// to the catalog.
func (c *Client) GetRelatedArtists(ctx context.Context, artistID string) ([]domain.Artist, error) {
	var body struct {
		Artists []spotifyArtist `json:"artists"`
	}
	path := fmt.Sprintf("/artists/%s/related-artists", url.PathEscape(artistID))
	if err := c.get(ctx, "catalog.related_artists", path, nil, &body); err != nil {
		return nil, err
	}
	out := make([]domain.Artist, 0, len(body.Artists))
	for _, a := range body.Artists {
		out = append(out, a.toDomain())
	}
	return out, nil
}

// GetUserTopArtists returns the authenticated listener's top artists.
func (c *Client) GetUserTopArtists(ctx context.Context, limit int) ([]domain.Artist, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	var body struct {
		Items []spotifyArtist `json:"items"`
	}
	if err := c.get(ctx, "catalog.top_artists", "/me/top/artists", q, &body); err != nil {
		return nil, err
	}
	out := make([]domain.Artist, 0, len(body.Items))
	for _, a := range body.Items {
		out = append(out, a.toDomain())
	}
	return out, nil
}
