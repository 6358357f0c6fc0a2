package catalog

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/descant/descant/internal/domain"
)

// CacheSong downloads one song's audio into the cache and returns the
// local path. Audio the cache already vouches for is not re-downloaded;
// concurrent requests for the same song share one download.
func (s *Service) CacheSong(ctx context.Context, songID string) (string, error) {
	if s.store == nil {
		return "", domain.ErrNotCacheable
	}

	result, err, _ := s.fetchGroup.Do(flightKey("song_file", []string{songID}), func() (any, error) {
		song, err := s.songRecord(ctx, songID)
		if err != nil {
			return nil, err
		}
		if file := s.store.SongFile(song); file.Fresh() {
			return file.Data, nil
		}

		tmp, err := s.server.DownloadSong(ctx, song)
		if err != nil {
			return nil, err
		}
		path, err := s.store.IngestSongFile(song, tmp)
		if err != nil {
			return nil, err
		}
		s.logger.Info("cached song", "song", songID, "path", path)
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// CacheSongs downloads a batch of songs with bounded concurrency.
// Every song gets its own result; one failure never aborts the rest.
func (s *Service) CacheSongs(ctx context.Context, songIDs []string, progress domain.ProgressFunc) []domain.CacheResult {
	if s.store == nil {
		results := make([]domain.CacheResult, len(songIDs))
		for i, id := range songIDs {
			results[i] = domain.CacheResult{SongID: id, Err: domain.ErrNotCacheable}
		}
		return results
	}

	var mu sync.Mutex
	results := make([]domain.CacheResult, 0, len(songIDs))

	p := pool.New().WithMaxGoroutines(s.workers).WithContext(ctx)
	for _, songID := range songIDs {
		songID := songID // per-iteration copy; required while go.mod declares go < 1.22
		p.Go(func(ctx context.Context) error {
			path, err := s.CacheSong(ctx, songID)
			mu.Lock()
			results = append(results, domain.CacheResult{SongID: songID, Path: path, Err: err})
			done := len(results)
			mu.Unlock()
			if progress != nil {
				progress(done, len(songIDs))
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		s.logger.Error("batch download interrupted", "error", err)
	}
	return results
}

// Downloads returns every song whose cached audio is vouched for
func (s *Service) Downloads() ([]domain.Song, error) {
	if s.store == nil {
		return nil, domain.ErrNotCacheable
	}
	var cached []domain.Song
	for _, song := range s.store.AllSongs() {
		if s.store.CachedStatus(&song) == domain.Cached {
			cached = append(cached, song)
		}
	}
	return cached, nil
}

// RemoveDownload deletes a song's cached audio and, when nothing else
// references it, its cover art. The song's metadata stays known.
func (s *Service) RemoveDownload(songID string) error {
	if s.store == nil {
		return domain.ErrNotCacheable
	}
	song := &domain.Song{ID: songID}
	if cached := s.store.SongDetails(songID); cached.HasData() {
		song = cached.Data
	}
	return s.store.DeleteSongFile(song)
}

// CachedStatus reports whether a song's audio is fully cached
func (s *Service) CachedStatus(song *domain.Song) domain.CachedStatus {
	if s.store == nil {
		return domain.NotCached
	}
	return s.store.CachedStatus(song)
}
