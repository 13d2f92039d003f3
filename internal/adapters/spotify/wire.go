package spotify

import "github.com/pressplay-labs/setlist/internal/core/domain"

// spotifyTrack represents the catalog API response for a track.
type spotifyTrack struct {
	ID      string `json:"id"`
	URI     string `json:"uri"`
	Name    string `json:"name"`
	Artists []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string `json:"name"`
		ReleaseDate string `json:"release_date"`
		Images      []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	Popularity int `json:"popularity"`
}

// toDomain converts a spotifyTrack to a domain.SeedTrack.
func (st spotifyTrack) toDomain() domain.SeedTrack {
	artists := make([]domain.ArtistRef, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, domain.ArtistRef{ID: a.ID, Name: a.Name})
	}
	images := make([]string, 0, len(st.Album.Images))
	for _, img := range st.Album.Images {
		images = append(images, img.URL)
	}
	return domain.SeedTrack{
		ID:      st.ID,
		URI:     st.URI,
		Name:    st.Name,
		Artists: artists,
		Album: domain.AlbumRef{
			Name:        st.Album.Name,
			ReleaseDate: st.Album.ReleaseDate,
			Images:      images,
		},
		Popularity: st.Popularity,
	}
}

// spotifyArtist represents the catalog API response for an artist.
type spotifyArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// toDomain converts a spotifyArtist to a domain.Artist.
func (sa spotifyArtist) toDomain() domain.Artist {
	return domain.Artist{
		ID:         sa.ID,
		Name:       sa.Name,
		Genres:     sa.Genres,
		Popularity: sa.Popularity,
	}
}

// spotifyAlbum represents the catalog API response for an album summary.
type spotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
}

// toDomainAlbum converts a spotifyAlbum to a domain.Album.
func (sa spotifyAlbum) toDomainAlbum() domain.Album {
	return domain.Album{
		ID:          sa.ID,
		Name:        sa.Name,
		ReleaseDate: sa.ReleaseDate,
		TotalTracks: sa.TotalTracks,
	}
}
