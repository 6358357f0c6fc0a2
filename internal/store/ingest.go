package store

import (
	"fmt"

	"github.com/descant/descant/internal/domain"
)

// Ingestion is an idempotent upsert: entity records described by the
// payload are created or merged, embedded references are upserted before
// the record that carries them, and a fresh marker is stamped, all inside
// one serializable transaction. Listing ingestions additionally prune
// records absent from the new authoritative set.

// IngestPlaylists replaces the stored playlist collection with the
// server's set. Playlists no longer present upstream are pruned along
// with their tracklists and details markers.
func (s *Store) IngestPlaylists(playlists []domain.Playlist) error {
	return s.update(func(t *txn) error {
		keep := make(map[string]bool, len(playlists))
		for i := range playlists {
			keep[playlists[i].ID] = true
			if err := upsertPlaylist(t, &playlists[i]); err != nil {
				return err
			}
		}

		var prune []string
		err := t.tx.Bucket(bucketPlaylists).ForEach(func(k, v []byte) error {
			id := string(k)
			if !isTracklistKey(id) && !keep[id] {
				prune = append(prune, id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, id := range prune {
			if err := deletePlaylistRecords(t, id); err != nil {
				return err
			}
		}

		return s.putMarker(t, KeyPlaylists, Fingerprint())
	})
}

// IngestPlaylistDetails upserts a playlist, every song on it (with their
// embedded album/artist/genre/directory references), and the tracklist
// order, then stamps the details marker.
func (s *Store) IngestPlaylistDetails(details *domain.PlaylistDetails) error {
	if details == nil {
		return fmt.Errorf("nil playlist details")
	}
	return s.update(func(t *txn) error {
		if err := upsertPlaylist(t, &details.Playlist); err != nil {
			return err
		}
		for i := range details.Songs {
			if err := upsertSongTree(t, &details.Songs[i]); err != nil {
				return err
			}
		}
		if err := t.put(bucketPlaylists, tracklistPrefix+details.ID, details.SongIDs()); err != nil {
			return err
		}
		return s.putMarker(t, KeyPlaylistDetails, Fingerprint(details.ID))
	})
}

// IngestSongDetails upserts a song and its embedded references, then
// stamps the song's details marker.
func (s *Store) IngestSongDetails(song *domain.Song) error {
	if song == nil {
		return fmt.Errorf("nil song")
	}
	return s.update(func(t *txn) error {
		if err := upsertSongTree(t, song); err != nil {
			return err
		}
		return s.putMarker(t, KeySongDetails, Fingerprint(song.ID))
	})
}

// IngestGenres replaces the stored genre collection with the server's set
func (s *Store) IngestGenres(genres []domain.Genre) error {
	return s.update(func(t *txn) error {
		keep := make(map[string]bool, len(genres))
		for i := range genres {
			keep[genres[i].Name] = true
			if err := upsertGenre(t, &genres[i]); err != nil {
				return err
			}
		}

		var prune []string
		err := t.tx.Bucket(bucketGenres).ForEach(func(k, v []byte) error {
			if !keep[string(k)] {
				prune = append(prune, string(k))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, name := range prune {
			if err := t.delete(bucketGenres, name); err != nil {
				return err
			}
		}

		return s.putMarker(t, KeyGenres, Fingerprint())
	})
}

// IngestSongFile moves a downloaded audio file into the music tree and
// stamps the song file marker. The source file is consumed. Returns the
// final path.
func (s *Store) IngestSongFile(song *domain.Song, srcPath string) (string, error) {
	if song == nil {
		return "", fmt.Errorf("nil song")
	}
	dst := s.songPath(song)
	if err := s.placeBlob(srcPath, dst); err != nil {
		return "", err
	}

	// The marker lands after the file: a file without a marker reads as
	// stale, never the reverse.
	err := s.update(func(t *txn) error {
		if err := upsertSongTree(t, song); err != nil {
			return err
		}
		return s.putMarker(t, KeySongFile, Fingerprint(song.ID))
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// IngestCoverArtFile moves a downloaded cover image into the cover art
// directory and stamps its marker. The source file is consumed. Returns
// the final path.
func (s *Store) IngestCoverArtFile(coverArtID, srcPath string) (string, error) {
	dst := s.coverArtPath(coverArtID)
	if err := s.placeBlob(srcPath, dst); err != nil {
		return "", err
	}

	err := s.update(func(t *txn) error {
		return s.putMarker(t, KeyCoverArtFile, Fingerprint(coverArtID))
	})
	if err != nil {
		return "", err
	}
	return dst, nil
}

// === Upserts ===

// upsertSongTree upserts the references a song carries, then the song
// itself. Order matters: referenced records exist before the record that
// points at them.
func upsertSongTree(t *txn, song *domain.Song) error {
	if album := song.AlbumRef(); album != nil {
		if err := upsertAlbum(t, album); err != nil {
			return err
		}
	}
	if artist := song.ArtistRef(); artist != nil {
		if err := upsertArtist(t, artist); err != nil {
			return err
		}
	}
	if genre := song.GenreRef(); genre != nil {
		if err := upsertGenre(t, genre); err != nil {
			return err
		}
	}
	if dir := song.DirectoryRef(); dir != nil {
		if err := upsertDirectory(t, dir); err != nil {
			return err
		}
	}

	// Song payloads are always complete, so the row is replaced outright
	return t.put(bucketSongs, song.ID, song)
}

// upsertPlaylist replaces a playlist row. Playlist payloads carry every
// field, so no per-field merge is needed.
func upsertPlaylist(t *txn, playlist *domain.Playlist) error {
	return t.put(bucketPlaylists, playlist.ID, playlist)
}

// upsertAlbum merges into any existing album row and stores the result
func upsertAlbum(t *txn, album *domain.Album) error {
	var existing domain.Album
	if t.get(bucketAlbums, album.ID, &existing) {
		mergeAlbum(&existing, album)
		return t.put(bucketAlbums, album.ID, &existing)
	}
	return t.put(bucketAlbums, album.ID, album)
}

// upsertArtist merges into any existing artist row and stores the result
func upsertArtist(t *txn, artist *domain.Artist) error {
	var existing domain.Artist
	if t.get(bucketArtists, artist.ID, &existing) {
		mergeArtist(&existing, artist)
		return t.put(bucketArtists, artist.ID, &existing)
	}
	return t.put(bucketArtists, artist.ID, artist)
}

// upsertGenre merges into any existing genre row and stores the result
func upsertGenre(t *txn, genre *domain.Genre) error {
	var existing domain.Genre
	if t.get(bucketGenres, genre.Name, &existing) {
		mergeGenre(&existing, genre)
		return t.put(bucketGenres, genre.Name, &existing)
	}
	return t.put(bucketGenres, genre.Name, genre)
}

// upsertDirectory merges into any existing directory row and stores the result
func upsertDirectory(t *txn, dir *domain.Directory) error {
	var existing domain.Directory
	if t.get(bucketDirectories, dir.ID, &existing) {
		mergeDirectory(&existing, dir)
		return t.put(bucketDirectories, dir.ID, &existing)
	}
	return t.put(bucketDirectories, dir.ID, dir)
}

// === Merge functions ===
//
// Reference payloads embedded in songs are sparse, so merges copy only the
// fields the source actually carries. Each function enumerates its entity's
// mutable fields; nothing is copied by reflection.

// mergeAlbum copies the fields src carries onto dst
func mergeAlbum(dst, src *domain.Album) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Artist != "" {
		dst.Artist = src.Artist
	}
	if src.ArtistID != "" {
		dst.ArtistID = src.ArtistID
	}
	if src.CoverArtID != "" {
		dst.CoverArtID = src.CoverArtID
	}
	if src.SongCount != 0 {
		dst.SongCount = src.SongCount
	}
	if src.Duration != 0 {
		dst.Duration = src.Duration
	}
	if src.Year != 0 {
		dst.Year = src.Year
	}
	if src.Genre != "" {
		dst.Genre = src.Genre
	}
	if !src.Created.IsZero() {
		dst.Created = src.Created
	}
}

// mergeArtist copies the fields src carries onto dst
func mergeArtist(dst, src *domain.Artist) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.AlbumCount != 0 {
		dst.AlbumCount = src.AlbumCount
	}
	if src.CoverArtID != "" {
		dst.CoverArtID = src.CoverArtID
	}
}

// mergeGenre copies the fields src carries onto dst
func mergeGenre(dst, src *domain.Genre) {
	if src.SongCount != 0 {
		dst.SongCount = src.SongCount
	}
	if src.AlbumCount != 0 {
		dst.AlbumCount = src.AlbumCount
	}
}

// mergeDirectory copies the fields src carries onto dst
func mergeDirectory(dst, src *domain.Directory) {
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.ParentID != "" {
		dst.ParentID = src.ParentID
	}
}

// deletePlaylistRecords removes a playlist row, its tracklist, and its
// details marker inside an ongoing transaction
func deletePlaylistRecords(t *txn, playlistID string) error {
	if err := t.delete(bucketPlaylists, playlistID); err != nil {
		return err
	}
	if err := t.delete(bucketPlaylists, tracklistPrefix+playlistID); err != nil {
		return err
	}
	return t.delete(bucketCacheInfo, markerKey(KeyPlaylistDetails, Fingerprint(playlistID)))
}
