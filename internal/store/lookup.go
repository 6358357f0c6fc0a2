package store

import (
	"sort"

	"github.com/descant/descant/internal/domain"
)

// Playlists returns every stored playlist. Found only when the listing
// marker vouches that the set is the server's complete set.
func (s *Store) Playlists() domain.Lookup[[]domain.Playlist] {
	rows := s.AllPlaylists()
	if s.hasMarker(KeyPlaylists, Fingerprint()) {
		return domain.Found(rows)
	}
	if len(rows) == 0 {
		return domain.Missing[[]domain.Playlist]()
	}
	return domain.Stale(rows)
}

// PlaylistDetails returns a playlist with its ordered songs, resolved
// through the song records.
func (s *Store) PlaylistDetails(playlistID string) domain.Lookup[*domain.PlaylistDetails] {
	details := s.readPlaylistDetails(playlistID)
	if s.hasMarker(KeyPlaylistDetails, Fingerprint(playlistID)) {
		if details == nil {
			// Marker without a row; repair by treating it as a miss
			s.logger.Warn("playlist marker without record", "playlist", playlistID)
			return domain.Missing[*domain.PlaylistDetails]()
		}
		return domain.Found(details)
	}
	if details == nil {
		return domain.Missing[*domain.PlaylistDetails]()
	}
	return domain.Stale(details)
}

// readPlaylistDetails assembles a playlist row and its tracklist
func (s *Store) readPlaylistDetails(playlistID string) *domain.PlaylistDetails {
	var playlist domain.Playlist
	if !s.get(bucketPlaylists, playlistID, &playlist) {
		return nil
	}

	var songIDs []string
	s.get(bucketPlaylists, tracklistPrefix+playlistID, &songIDs)

	songs := make([]domain.Song, 0, len(songIDs))
	for _, id := range songIDs {
		var song domain.Song
		if s.get(bucketSongs, id, &song) {
			songs = append(songs, song)
		}
	}
	return &domain.PlaylistDetails{Playlist: playlist, Songs: songs}
}

// SongDetails returns a single song's stored metadata
func (s *Store) SongDetails(songID string) domain.Lookup[*domain.Song] {
	var song domain.Song
	haveRow := s.get(bucketSongs, songID, &song)

	if s.hasMarker(KeySongDetails, Fingerprint(songID)) {
		if !haveRow {
			s.logger.Warn("song marker without record", "song", songID)
			return domain.Missing[*domain.Song]()
		}
		return domain.Found(&song)
	}
	if !haveRow {
		return domain.Missing[*domain.Song]()
	}
	return domain.Stale(&song)
}

// Genres returns every stored genre. Found only when the listing marker
// vouches that the set is complete.
func (s *Store) Genres() domain.Lookup[[]domain.Genre] {
	rows := scan[domain.Genre](s, bucketGenres, nil)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	if s.hasMarker(KeyGenres, Fingerprint()) {
		return domain.Found(rows)
	}
	if len(rows) == 0 {
		return domain.Missing[[]domain.Genre]()
	}
	return domain.Stale(rows)
}

// SongFile resolves a song's local audio path. A file without its marker
// is Stale: playable in a pinch, but its provenance is unverified and it
// must be re-fetched and overwritten.
func (s *Store) SongFile(song *domain.Song) domain.Lookup[string] {
	path := s.songPath(song)
	exists := fileExists(path)

	if exists && s.hasMarker(KeySongFile, Fingerprint(song.ID)) {
		return domain.Found(path)
	}
	if exists {
		return domain.Stale(path)
	}
	return domain.Missing[string]()
}

// CoverArtFile resolves a cover art image's local path
func (s *Store) CoverArtFile(coverArtID string) domain.Lookup[string] {
	path := s.coverArtPath(coverArtID)
	exists := fileExists(path)

	if exists && s.hasMarker(KeyCoverArtFile, Fingerprint(coverArtID)) {
		return domain.Found(path)
	}
	if exists {
		return domain.Stale(path)
	}
	return domain.Missing[string]()
}

// CachedStatus reports Cached only when the audio file exists AND its
// marker vouches for it. A file alone is not enough.
func (s *Store) CachedStatus(song *domain.Song) domain.CachedStatus {
	if s.SongFile(song).Fresh() {
		return domain.Cached
	}
	return domain.NotCached
}

// === Local listings (markers ignored) ===

// AllSongs returns every stored song record
func (s *Store) AllSongs() []domain.Song {
	return scan[domain.Song](s, bucketSongs, nil)
}

// AllPlaylists returns every stored playlist record, sorted by name
func (s *Store) AllPlaylists() []domain.Playlist {
	rows := scan[domain.Playlist](s, bucketPlaylists, isTracklistKey)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}

// AllAlbums returns every stored album record
func (s *Store) AllAlbums() []domain.Album {
	return scan[domain.Album](s, bucketAlbums, nil)
}

// AllArtists returns every stored artist record
func (s *Store) AllArtists() []domain.Artist {
	return scan[domain.Artist](s, bucketArtists, nil)
}
