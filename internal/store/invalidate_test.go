package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descant/descant/internal/domain"
)

func TestInvalidatePreservesDataClearsFreshness(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestPlaylists([]domain.Playlist{
		makePlaylist("p1", "Alpha"), makePlaylist("p2", "Beta"),
	}))
	require.Equal(t, domain.LookupFound, s.Playlists().State)

	require.NoError(t, s.InvalidatePlaylists())

	lookup := s.Playlists()
	assert.Equal(t, domain.LookupStale, lookup.State)
	assert.Len(t, lookup.Data, 2)
}

func TestInvalidatePlaylistDetailsCascadesCoverArt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	details := makeDetails("p1", "Mix", makeSong("s1"))
	require.NoError(t, s.IngestPlaylistDetails(details))
	_, err := s.IngestCoverArtFile(details.CoverArtID, writeTempBlob(t, "img"))
	require.NoError(t, err)
	require.Equal(t, domain.LookupFound, s.CoverArtFile(details.CoverArtID).State)

	require.NoError(t, s.InvalidatePlaylistDetails("p1"))

	assert.Equal(t, domain.LookupStale, s.PlaylistDetails("p1").State)

	// The cover image loses its marker but keeps its file
	cover := s.CoverArtFile(details.CoverArtID)
	assert.Equal(t, domain.LookupStale, cover.State)
	assert.FileExists(t, cover.Data)
}

func TestInvalidateSongDetailsCascadesCoverArt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	require.NoError(t, s.IngestSongDetails(song))
	_, err := s.IngestCoverArtFile(song.CoverArtID, writeTempBlob(t, "img"))
	require.NoError(t, err)

	require.NoError(t, s.InvalidateSongDetails("s1"))

	assert.Equal(t, domain.LookupStale, s.SongDetails("s1").State)
	assert.Equal(t, domain.LookupStale, s.CoverArtFile(song.CoverArtID).State)
}

func TestInvalidateSongFileKeepsFileOnDisk(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	path, err := s.IngestSongFile(song, writeTempBlob(t, "audio"))
	require.NoError(t, err)

	require.NoError(t, s.InvalidateSongFile(song))

	lookup := s.SongFile(song)
	assert.Equal(t, domain.LookupStale, lookup.State)
	assert.FileExists(t, path)
	assert.Equal(t, domain.NotCached, s.CachedStatus(song))
}

func TestReingestOverwritesUnverifiedFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	_, err := s.IngestSongFile(song, writeTempBlob(t, "old"))
	require.NoError(t, err)
	require.NoError(t, s.InvalidateSongFile(song))

	path, err := s.IngestSongFile(song, writeTempBlob(t, "new"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
	assert.Equal(t, domain.Cached, s.CachedStatus(song))
}

func TestInvalidateAll(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestPlaylists([]domain.Playlist{makePlaylist("p1", "Alpha")}))
	require.NoError(t, s.IngestGenres([]domain.Genre{{Name: "Rock"}}))
	require.NoError(t, s.IngestSongDetails(makeSong("s1")))

	require.NoError(t, s.InvalidateAll())

	assert.Equal(t, domain.LookupStale, s.Playlists().State)
	assert.Equal(t, domain.LookupStale, s.Genres().State)
	assert.Equal(t, domain.LookupStale, s.SongDetails("s1").State)
}

func TestDeleteSongFileRemovesBlobAndMarker(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	path, err := s.IngestSongFile(song, writeTempBlob(t, "audio"))
	require.NoError(t, err)
	coverPath, err := s.IngestCoverArtFile(song.CoverArtID, writeTempBlob(t, "img"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteSongFile(song))

	assert.Equal(t, domain.LookupMissing, s.SongFile(song).State)
	assert.Equal(t, domain.NotCached, s.CachedStatus(song))
	assert.NoFileExists(t, path)

	// Nothing else references this cover, so it goes too
	assert.NoFileExists(t, coverPath)
	assert.Equal(t, domain.LookupMissing, s.CoverArtFile(song.CoverArtID).State)

	// The song record itself stays as known metadata
	assert.Len(t, s.AllSongs(), 1)
}

func TestDeleteSongFileKeepsSharedCoverArt(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	first := makeSong("s1")
	second := makeSong("s2")
	second.CoverArtID = first.CoverArtID
	require.NoError(t, s.IngestSongDetails(second))

	path, err := s.IngestSongFile(first, writeTempBlob(t, "audio"))
	require.NoError(t, err)
	coverPath, err := s.IngestCoverArtFile(first.CoverArtID, writeTempBlob(t, "img"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteSongFile(first))

	assert.NoFileExists(t, path)
	assert.FileExists(t, coverPath)
	assert.Equal(t, domain.LookupFound, s.CoverArtFile(first.CoverArtID).State)
}

func TestDeletePlaylistRemovesRecords(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	details := makeDetails("p1", "Mix", song)
	require.NoError(t, s.IngestPlaylists([]domain.Playlist{
		details.Playlist, makePlaylist("p2", "Other"),
	}))
	require.NoError(t, s.IngestPlaylistDetails(details))
	coverPath, err := s.IngestCoverArtFile(details.CoverArtID, writeTempBlob(t, "img"))
	require.NoError(t, err)

	require.NoError(t, s.DeletePlaylist("p1"))

	assert.Equal(t, domain.LookupMissing, s.PlaylistDetails("p1").State)
	assert.NoFileExists(t, coverPath)

	// The listing marker is untouched; refreshing it is the caller's call
	lookup := s.Playlists()
	assert.Equal(t, domain.LookupFound, lookup.State)
	require.Len(t, lookup.Data, 1)
	assert.Equal(t, "Other", lookup.Data[0].Name)

	// Songs that were on the playlist stay known
	assert.Len(t, s.AllSongs(), 1)
}

func TestFileWithoutMarkerIsNotCached(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")

	// A file that appeared without ingestion has unverified provenance
	path := s.songPath(song)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("mystery"), 0644))

	assert.Equal(t, domain.LookupStale, s.SongFile(song).State)
	assert.Equal(t, domain.NotCached, s.CachedStatus(song))
}
