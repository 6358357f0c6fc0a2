package store

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/descant/descant/internal/domain"
)

// Invalidation removes freshness markers and nothing else: entity records
// and blob files stay behind as stale data for the next cache-miss
// response. Deletion is the destructive variant, removing records and any
// blob files nothing else references.

// InvalidatePlaylists drops the playlist collection marker
func (s *Store) InvalidatePlaylists() error {
	return s.update(func(t *txn) error {
		return t.delete(bucketCacheInfo, markerKey(KeyPlaylists, Fingerprint()))
	})
}

// InvalidatePlaylistDetails drops a playlist's details marker and, so the
// image is re-verified on next access, the marker of its cover art.
func (s *Store) InvalidatePlaylistDetails(playlistID string) error {
	return s.update(func(t *txn) error {
		if err := t.delete(bucketCacheInfo, markerKey(KeyPlaylistDetails, Fingerprint(playlistID))); err != nil {
			return err
		}
		var playlist domain.Playlist
		if t.get(bucketPlaylists, playlistID, &playlist) && playlist.CoverArtID != "" {
			return t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(playlist.CoverArtID)))
		}
		return nil
	})
}

// InvalidateSongDetails drops a song's details marker and the marker of
// its cover art
func (s *Store) InvalidateSongDetails(songID string) error {
	return s.update(func(t *txn) error {
		if err := t.delete(bucketCacheInfo, markerKey(KeySongDetails, Fingerprint(songID))); err != nil {
			return err
		}
		var song domain.Song
		if t.get(bucketSongs, songID, &song) && song.CoverArtID != "" {
			return t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(song.CoverArtID)))
		}
		return nil
	})
}

// InvalidateGenres drops the genre collection marker
func (s *Store) InvalidateGenres() error {
	return s.update(func(t *txn) error {
		return t.delete(bucketCacheInfo, markerKey(KeyGenres, Fingerprint()))
	})
}

// InvalidateSongFile drops a song's audio file marker and the marker of
// its cover art. The audio file itself stays on disk.
func (s *Store) InvalidateSongFile(song *domain.Song) error {
	if song == nil {
		return fmt.Errorf("nil song")
	}
	return s.update(func(t *txn) error {
		if err := t.delete(bucketCacheInfo, markerKey(KeySongFile, Fingerprint(song.ID))); err != nil {
			return err
		}
		coverArtID := song.CoverArtID
		var stored domain.Song
		if t.get(bucketSongs, song.ID, &stored) && stored.CoverArtID != "" {
			coverArtID = stored.CoverArtID
		}
		if coverArtID != "" {
			return t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(coverArtID)))
		}
		return nil
	})
}

// InvalidateCoverArtFile drops a cover image's marker
func (s *Store) InvalidateCoverArtFile(coverArtID string) error {
	return s.update(func(t *txn) error {
		return t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(coverArtID)))
	})
}

// InvalidateAll drops every freshness marker at once. Records and files
// all stay; every subsequent read degrades to stale or missing until
// re-ingested.
func (s *Store) InvalidateAll() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketCacheInfo); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketCacheInfo)
		return err
	})
	if err != nil {
		return err
	}
	s.dropCache()
	s.logger.Info("invalidated all cache markers")
	return nil
}

// === Deletion ===

// DeletePlaylist removes a playlist's marker, record, and tracklist, plus
// its cover art marker and file when no other record references the image
func (s *Store) DeletePlaylist(playlistID string) error {
	var removals []string
	err := s.update(func(t *txn) error {
		var playlist domain.Playlist
		had := t.get(bucketPlaylists, playlistID, &playlist)
		if err := deletePlaylistRecords(t, playlistID); err != nil {
			return err
		}
		if had && playlist.CoverArtID != "" && !coverArtReferenced(t, playlist.CoverArtID, "", playlistID) {
			if err := t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(playlist.CoverArtID))); err != nil {
				return err
			}
			removals = append(removals, s.coverArtPath(playlist.CoverArtID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	// Files go only after the records are durably gone; a failure here
	// leaves a file without a marker, which reads as not cached.
	for _, path := range removals {
		s.removeBlob(path)
	}
	return nil
}

// DeleteSongFile removes a song's audio file and its marker, plus the
// song's cover art marker and file when no other record references the
// image. The song record itself stays as known metadata.
func (s *Store) DeleteSongFile(song *domain.Song) error {
	if song == nil {
		return fmt.Errorf("nil song")
	}
	var removals []string
	err := s.update(func(t *txn) error {
		target := *song
		var stored domain.Song
		if t.get(bucketSongs, song.ID, &stored) {
			target = stored
		}
		if err := t.delete(bucketCacheInfo, markerKey(KeySongFile, Fingerprint(target.ID))); err != nil {
			return err
		}
		removals = append(removals, s.songPath(&target))
		if target.CoverArtID != "" && !coverArtReferenced(t, target.CoverArtID, target.ID, "") {
			if err := t.delete(bucketCacheInfo, markerKey(KeyCoverArtFile, Fingerprint(target.CoverArtID))); err != nil {
				return err
			}
			removals = append(removals, s.coverArtPath(target.CoverArtID))
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, path := range removals {
		s.removeBlob(path)
	}
	return nil
}

// coverArtReferenced reports whether any song or playlist record other
// than the excluded ones points at the given cover art
func coverArtReferenced(t *txn, coverArtID, skipSongID, skipPlaylistID string) bool {
	referenced := false
	t.tx.Bucket(bucketSongs).ForEach(func(k, v []byte) error {
		if referenced || string(k) == skipSongID {
			return nil
		}
		var song domain.Song
		if json.Unmarshal(v, &song) == nil && song.CoverArtID == coverArtID {
			referenced = true
		}
		return nil
	})
	if referenced {
		return true
	}
	t.tx.Bucket(bucketPlaylists).ForEach(func(k, v []byte) error {
		key := string(k)
		if referenced || isTracklistKey(key) || key == skipPlaylistID {
			return nil
		}
		var playlist domain.Playlist
		if json.Unmarshal(v, &playlist) == nil && playlist.CoverArtID == coverArtID {
			referenced = true
		}
		return nil
	})
	return referenced
}
