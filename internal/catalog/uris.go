package catalog

import (
	"context"

	"github.com/descant/descant/internal/domain"
)

// SongURI resolves where to play a song from: a file URI when the cached
// audio is vouched for, otherwise the server's stream URL. Audio is never
// downloaded here; that is what CacheSong is for.
func (s *Service) SongURI(ctx context.Context, songID string) (string, error) {
	song, err := s.songRecord(ctx, songID)
	if err != nil {
		return "", err
	}
	if s.store != nil {
		if file := s.store.SongFile(song); file.Fresh() {
			return "file://" + file.Data, nil
		}
	}
	return s.server.StreamURL(ctx, songID)
}

// CoverArtURI delivers a local path for a cover image, downloading and
// ingesting it when the cache cannot vouch for one. Without a store it
// delivers the server URL in a single phase.
func (s *Service) CoverArtURI(ctx context.Context, coverArtID string, force bool, deliver domain.DeliverFunc[string]) {
	if s.store == nil {
		url, err := s.server.CoverArtURL(ctx, coverArtID)
		deliver(domain.Update[string]{Data: url, Err: err, Final: true})
		return
	}

	cached := s.store.CoverArtFile(coverArtID)
	if cached.Fresh() && !force {
		deliver(domain.Update[string]{Data: cached.Data, Final: true})
		return
	}
	if cached.HasData() {
		deliver(domain.Update[string]{Data: cached.Data, Partial: true})
	}

	go func() {
		bg := context.WithoutCancel(ctx)
		result, err, _ := s.fetchGroup.Do(flightKey("cover_art_file", []string{coverArtID}), func() (any, error) {
			tmp, err := s.server.DownloadCoverArt(bg, coverArtID)
			if err != nil {
				return nil, err
			}
			return s.store.IngestCoverArtFile(coverArtID, tmp)
		})

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error("cover art fetch failed", "coverArt", coverArtID, "error", err)
			deliver(domain.Update[string]{Data: cached.Data, Err: err, Final: true})
			return
		}
		deliver(domain.Update[string]{Data: result.(string), Final: true})
	}()
}

// songRecord resolves a song record from the store when possible (stale
// rows are fine, only identity and path fields matter here), falling back
// to the server and ingesting what it returns.
func (s *Service) songRecord(ctx context.Context, songID string) (*domain.Song, error) {
	if s.store != nil {
		if cached := s.store.SongDetails(songID); cached.HasData() {
			return cached.Data, nil
		}
	}
	song, err := s.server.GetSongDetails(ctx, songID)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.IngestSongDetails(song); err != nil {
			s.logger.Error("cache ingestion failed", "operation", "song_details", "error", err)
		}
	}
	return song, nil
}
