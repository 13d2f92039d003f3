package domain

// ArtistRef identifies an artist on a track.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef carries the album metadata the pipeline cares about.
type AlbumRef struct {
	Name        string   `json:"name"`
	ReleaseDate string   `json:"release_date"` // YYYY or YYYY-MM-DD
	Images      []string `json:"images,omitempty"`
}

// SeedTrack is a caller-supplied track forming the basis for recommendation.
// The seed set is deduplicated by ID on entry and immutable thereafter.
type SeedTrack struct {
	ID         string      `json:"id"`
	URI        string      `json:"uri"`
	Name       string      `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      AlbumRef    `json:"album"`
	Popularity int         `json:"popularity"`
	Genres     []string    `json:"genres,omitempty"`
}

// ReleaseYear extracts the four-digit release year from the album release
// date. Returns 0 when the date is missing, unparsable, or not after 1950.
func (t SeedTrack) ReleaseYear() int {
	d := t.Album.ReleaseDate
	if len(d) < 4 {
		return 0
	}
	year := 0
	for _, r := range d[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	if year <= 1950 {
		return 0
	}
	return year
}

// PrimaryArtist returns the first credited artist, if any.
func (t SeedTrack) PrimaryArtist() ArtistRef {
	if len(t.Artists) == 0 {
		return ArtistRef{}
	}
	return t.Artists[0]
}

// CandidateSource names the mining strategy that produced a candidate.
type CandidateSource string

const (
	SourceSeed       CandidateSource = "seed"
	SourceCatalogRec CandidateSource = "spotify-rec"
	SourceSimilar    CandidateSource = "lastfm"
	SourceDeepCut    CandidateSource = "deep-cut"
	SourceEraContext CandidateSource = "era-context"
)

// Candidate is a mined track annotated with provenance and scoring state.
// It is created by a mining strategy, mutated through the scoring stages, and
// discarded if filtered or left unselected by the assembler.
type Candidate struct {
	Track      SeedTrack       `json:"track"`
	Similarity int             `json:"similarity"` // 0-100, pre-jitter
	Circle     int             `json:"circle"`     // 1-4
	Source     CandidateSource `json:"source"`
	FinalScore float64         `json:"final_score"` // ranking only
}

// Artist is a catalog artist record used during mining.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres,omitempty"`
	Popularity int      `json:"popularity"`
}

// Album is a catalog album summary.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
}

// SimilarArtist is a tag-service similarity match, matchScore in [0,1].
type SimilarArtist struct {
	Name       string  `json:"name"`
	MatchScore float64 `json:"match"`
}

// SimilarTrack is a tag-service similar-track match, matchScore in [0,1].
type SimilarTrack struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	MatchScore float64 `json:"match"`
}
