package catalog

import (
	"context"

	"github.com/descant/descant/internal/domain"
)

// Playlist mutations run against the server first; the cache only ever
// reflects what the server acknowledged. After a mutation the affected
// markers are dropped so the next read refreshes.

// CreatePlaylist creates a playlist upstream and primes the cache with
// the server's version of it
func (s *Service) CreatePlaylist(ctx context.Context, name string, songIDs []string) (*domain.PlaylistDetails, error) {
	details, err := s.server.CreatePlaylist(ctx, name, songIDs)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.IngestPlaylistDetails(details); err != nil {
			s.logger.Error("cache ingestion failed", "operation", "playlist_details", "error", err)
		}
		// The listing no longer matches the server's set
		if err := s.store.InvalidatePlaylists(); err != nil {
			s.logger.Error("listing invalidation failed", "error", err)
		}
	}
	s.logger.Info("created playlist", "playlist", details.ID, "name", name, "songs", len(songIDs))
	return details, nil
}

// UpdatePlaylist applies changes upstream and invalidates the playlist's
// cached details and the listing
func (s *Service) UpdatePlaylist(ctx context.Context, playlistID string, changes domain.PlaylistChanges) error {
	if err := s.server.UpdatePlaylist(ctx, playlistID, changes); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.InvalidatePlaylistDetails(playlistID); err != nil {
			s.logger.Error("details invalidation failed", "playlist", playlistID, "error", err)
		}
		if err := s.store.InvalidatePlaylists(); err != nil {
			s.logger.Error("listing invalidation failed", "error", err)
		}
	}
	s.logger.Info("updated playlist", "playlist", playlistID)
	return nil
}

// DeletePlaylist removes a playlist upstream, then from the cache
func (s *Service) DeletePlaylist(ctx context.Context, playlistID string) error {
	if err := s.server.DeletePlaylist(ctx, playlistID); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.DeletePlaylist(playlistID); err != nil {
			s.logger.Error("cache deletion failed", "playlist", playlistID, "error", err)
		}
		if err := s.store.InvalidatePlaylists(); err != nil {
			s.logger.Error("listing invalidation failed", "error", err)
		}
	}
	s.logger.Info("deleted playlist", "playlist", playlistID)
	return nil
}
