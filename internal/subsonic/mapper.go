package subsonic

import (
	"time"

	"github.com/descant/descant/internal/domain"
)

// mapSong converts an API child to a domain song
func mapSong(c child) domain.Song {
	return domain.Song{
		ID:          c.ID,
		Title:       c.Title,
		Album:       c.Album,
		AlbumID:     c.AlbumID,
		Artist:      c.Artist,
		ArtistID:    c.ArtistID,
		Genre:       c.Genre,
		ParentID:    c.Parent,
		CoverArtID:  c.CoverArt,
		Duration:    time.Duration(c.Duration) * time.Second,
		Track:       c.Track,
		Disc:        c.DiscNumber,
		Year:        c.Year,
		Size:        c.Size,
		ContentType: c.ContentType,
		Suffix:      c.Suffix,
		BitRate:     c.BitRate,
		Path:        c.Path,
	}
}

// mapSongs converts a slice of API children to domain songs
func mapSongs(children []child) []domain.Song {
	songs := make([]domain.Song, 0, len(children))
	for _, c := range children {
		songs = append(songs, mapSong(c))
	}
	return songs
}

// mapPlaylist converts an API playlist to a domain playlist, ignoring entries
func mapPlaylist(p playlistBody) domain.Playlist {
	return domain.Playlist{
		ID:         p.ID,
		Name:       p.Name,
		Comment:    p.Comment,
		Owner:      p.Owner,
		Public:     p.Public,
		SongCount:  p.SongCount,
		Duration:   time.Duration(p.Duration) * time.Second,
		CoverArtID: p.CoverArt,
		Created:    p.Created,
		Changed:    p.Changed,
	}
}

// mapPlaylists converts the playlist listing to domain playlists
func mapPlaylists(body *playlistsBody) []domain.Playlist {
	if body == nil {
		return nil
	}
	playlists := make([]domain.Playlist, 0, len(body.Playlist))
	for _, p := range body.Playlist {
		playlists = append(playlists, mapPlaylist(p))
	}
	return playlists
}

// mapPlaylistDetails converts a full playlist with entries
func mapPlaylistDetails(p playlistBody) *domain.PlaylistDetails {
	return &domain.PlaylistDetails{
		Playlist: mapPlaylist(p),
		Songs:    mapSongs(p.Entry),
	}
}

// mapGenres converts the genre listing to domain genres
func mapGenres(body *genresBody) []domain.Genre {
	if body == nil {
		return nil
	}
	genres := make([]domain.Genre, 0, len(body.Genre))
	for _, g := range body.Genre {
		genres = append(genres, domain.Genre{
			Name:       g.Value,
			SongCount:  g.SongCount,
			AlbumCount: g.AlbumCount,
		})
	}
	return genres
}

// mapArtist converts an ID3 artist to a domain artist
func mapArtist(a artistID3) domain.Artist {
	return domain.Artist{
		ID:         a.ID,
		Name:       a.Name,
		AlbumCount: a.AlbumCount,
		CoverArtID: a.CoverArt,
	}
}

// mapAlbum converts an ID3 album to a domain album
func mapAlbum(a albumID3) domain.Album {
	return domain.Album{
		ID:         a.ID,
		Name:       a.Name,
		Artist:     a.Artist,
		ArtistID:   a.ArtistID,
		CoverArtID: a.CoverArt,
		SongCount:  a.SongCount,
		Duration:   time.Duration(a.Duration) * time.Second,
		Year:       a.Year,
		Genre:      a.Genre,
		Created:    a.Created,
	}
}

// mapSearchResults converts a search3 result to domain search results
func mapSearchResults(r *searchResult3) *domain.SearchResults {
	results := &domain.SearchResults{}
	if r == nil {
		return results
	}
	for _, a := range r.Artist {
		results.Artists = append(results.Artists, mapArtist(a))
	}
	for _, a := range r.Album {
		results.Albums = append(results.Albums, mapAlbum(a))
	}
	results.Songs = mapSongs(r.Song)
	return results
}
