package catalog

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descant/descant/internal/domain"
	"github.com/descant/descant/internal/log"
)

func TestCacheSongDownloadsAndIngests(t *testing.T) {
	t.Parallel()

	svc, srv, _ := newTestService(t)
	srv.addSong(testSong("s1"))

	path, err := svc.CacheSong(context.Background(), "s1")
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio:s1", string(content))
	assert.Equal(t, domain.Cached, svc.CachedStatus(testSong("s1")))

	// A second request is satisfied by the cache
	again, err := svc.CacheSong(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, srv.count("download_song"))
}

func TestCacheSongsBatch(t *testing.T) {
	t.Parallel()

	svc, srv, _ := newTestService(t)
	ids := []string{"s1", "s2", "s3"}
	for _, id := range ids {
		srv.addSong(testSong(id))
	}

	var mu sync.Mutex
	var maxDone int
	var calls int
	results := svc.CacheSongs(context.Background(), ids, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, 3, total)
		if done > maxDone {
			maxDone = done
		}
	})

	require.Len(t, results, 3)
	seen := make(map[string]bool)
	for _, res := range results {
		require.NoError(t, res.Err, "song %s", res.SongID)
		assert.FileExists(t, res.Path)
		seen[res.SongID] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, maxDone)
}

func TestCacheSongsReportsPerSongFailure(t *testing.T) {
	t.Parallel()

	svc, srv, _ := newTestService(t)
	srv.addSong(testSong("s1"))

	results := svc.CacheSongs(context.Background(), []string{"s1", "ghost"}, nil)
	require.Len(t, results, 2)

	byID := make(map[string]domain.CacheResult)
	for _, res := range results {
		byID[res.SongID] = res
	}
	require.NoError(t, byID["s1"].Err)
	assert.FileExists(t, byID["s1"].Path)
	require.ErrorIs(t, byID["ghost"].Err, domain.ErrNotFound)
}

func TestDownloadsListsCachedOnly(t *testing.T) {
	t.Parallel()

	svc, srv, st := newTestService(t)
	srv.addSong(testSong("s1"))
	_, err := svc.CacheSong(context.Background(), "s1")
	require.NoError(t, err)

	// Known but not downloaded
	require.NoError(t, st.IngestSongDetails(testSong("s2")))

	downloads, err := svc.Downloads()
	require.NoError(t, err)
	require.Len(t, downloads, 1)
	assert.Equal(t, "s1", downloads[0].ID)
}

func TestRemoveDownload(t *testing.T) {
	t.Parallel()

	svc, srv, st := newTestService(t)
	srv.addSong(testSong("s1"))
	_, err := svc.CacheSong(context.Background(), "s1")
	require.NoError(t, err)

	require.NoError(t, svc.RemoveDownload("s1"))

	assert.Equal(t, domain.NotCached, svc.CachedStatus(testSong("s1")))
	assert.Equal(t, domain.LookupMissing, st.SongFile(testSong("s1")).State)

	// Metadata is still known
	assert.True(t, st.SongDetails("s1").HasData())
}

func TestDownloadOpsRequireStore(t *testing.T) {
	t.Parallel()

	srv := newFakeServer(t)
	svc := NewService(srv, nil, 2, log.NullLogger())

	_, err := svc.CacheSong(context.Background(), "s1")
	assert.ErrorIs(t, err, domain.ErrNotCacheable)

	results := svc.CacheSongs(context.Background(), []string{"s1", "s2"}, nil)
	require.Len(t, results, 2)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, domain.ErrNotCacheable)
	}

	_, err = svc.Downloads()
	assert.ErrorIs(t, err, domain.ErrNotCacheable)
	assert.ErrorIs(t, svc.RemoveDownload("s1"), domain.ErrNotCacheable)
	assert.Equal(t, domain.NotCached, svc.CachedStatus(testSong("s1")))
}
