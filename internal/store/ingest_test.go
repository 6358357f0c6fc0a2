package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descant/descant/internal/domain"
)

func TestPlaylistsMissThenHit(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.Equal(t, domain.LookupMissing, s.Playlists().State)

	playlists := []domain.Playlist{makePlaylist("p2", "Beta"), makePlaylist("p1", "Alpha")}
	require.NoError(t, s.IngestPlaylists(playlists))

	lookup := s.Playlists()
	require.Equal(t, domain.LookupFound, lookup.State)
	require.Len(t, lookup.Data, 2)
	assert.Equal(t, "Alpha", lookup.Data[0].Name)
	assert.Equal(t, "Beta", lookup.Data[1].Name)
}

func TestIngestPlaylistsPrunesRemoved(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	require.NoError(t, s.IngestPlaylists([]domain.Playlist{
		makePlaylist("pa", "A"), makePlaylist("pb", "B"),
	}))
	require.NoError(t, s.IngestPlaylistDetails(makeDetails("pa", "A", song)))
	require.Equal(t, domain.LookupFound, s.PlaylistDetails("pa").State)

	// The server no longer has A; the new authoritative set wins
	require.NoError(t, s.IngestPlaylists([]domain.Playlist{
		makePlaylist("pb", "B"), makePlaylist("pc", "C"),
	}))

	lookup := s.Playlists()
	require.Equal(t, domain.LookupFound, lookup.State)
	require.Len(t, lookup.Data, 2)
	assert.Equal(t, "B", lookup.Data[0].Name)
	assert.Equal(t, "C", lookup.Data[1].Name)

	// A's record, tracklist, and details marker are gone with it
	assert.Equal(t, domain.LookupMissing, s.PlaylistDetails("pa").State)
	assert.False(t, s.hasMarker(KeyPlaylistDetails, Fingerprint("pa")))

	// Songs that were on A are still known
	assert.Len(t, s.AllSongs(), 1)
}

func TestIngestPlaylistDetailsPreservesOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s1, s2 := makeSong("s1"), makeSong("s2")

	// The same song can appear twice; order and repetition both survive
	details := makeDetails("p1", "Mix", s2, s1, s2)
	require.NoError(t, s.IngestPlaylistDetails(details))

	lookup := s.PlaylistDetails("p1")
	require.Equal(t, domain.LookupFound, lookup.State)
	assert.Equal(t, []string{"s2", "s1", "s2"}, lookup.Data.SongIDs())
	assert.Equal(t, "Mix", lookup.Data.Name)
}

func TestIngestSongDetailsUpsertsReferences(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestSongDetails(makeSong("s1")))

	albums := s.AllAlbums()
	require.Len(t, albums, 1)
	assert.Equal(t, "al-1", albums[0].ID)
	assert.Equal(t, "Album One", albums[0].Name)
	assert.Equal(t, "Artist One", albums[0].Artist)

	artists := s.AllArtists()
	require.Len(t, artists, 1)
	assert.Equal(t, "ar-1", artists[0].ID)

	// Genre rows ride along but the genre listing has no marker of its own
	genres := s.Genres()
	require.Equal(t, domain.LookupStale, genres.State)
	require.Len(t, genres.Data, 1)
	assert.Equal(t, "Rock", genres.Data[0].Name)
}

func TestRepeatIngestKeepsSingleRecord(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestSongDetails(makeSong("s1")))
	require.NoError(t, s.IngestSongDetails(makeSong("s1")))

	assert.Len(t, s.AllSongs(), 1)
	assert.Len(t, s.AllAlbums(), 1)
	assert.Len(t, s.AllArtists(), 1)
}

func TestSparseReferenceMergeKeepsKnownFields(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestSongDetails(makeSong("s1")))

	// A later song on the same album carries less about it; merging must
	// not blank out what the first ingestion established.
	sparse := makeSong("s2")
	sparse.Year = 0
	sparse.Genre = ""
	sparse.CoverArtID = ""
	require.NoError(t, s.IngestSongDetails(sparse))

	albums := s.AllAlbums()
	require.Len(t, albums, 1)
	assert.Equal(t, 1999, albums[0].Year)
	assert.Equal(t, "Rock", albums[0].Genre)
	assert.Equal(t, "cover-s1", albums[0].CoverArtID)
}

func TestIngestGenresReplacesCollection(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	require.NoError(t, s.IngestGenres([]domain.Genre{
		{Name: "Rock", SongCount: 10},
		{Name: "Jazz", SongCount: 5},
	}))
	require.NoError(t, s.IngestGenres([]domain.Genre{
		{Name: "Jazz", SongCount: 6},
	}))

	lookup := s.Genres()
	require.Equal(t, domain.LookupFound, lookup.State)
	require.Len(t, lookup.Data, 1)
	assert.Equal(t, "Jazz", lookup.Data[0].Name)
	assert.Equal(t, 6, lookup.Data[0].SongCount)
}

func TestIngestSongFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	song := makeSong("s1")
	src := writeTempBlob(t, "audio-bytes")

	path, err := s.IngestSongFile(song, src)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(content))

	// Source is consumed by the move
	assert.NoFileExists(t, src)

	// The music tree mirrors the server-side path
	assert.True(t, strings.HasSuffix(path, filepath.Join("Artist One", "Album One", "s1.mp3")))

	lookup := s.SongFile(song)
	require.Equal(t, domain.LookupFound, lookup.State)
	assert.Equal(t, path, lookup.Data)
	assert.Equal(t, domain.Cached, s.CachedStatus(song))

	// Metadata rides along with the file, but only as unverified rows
	assert.Equal(t, domain.LookupStale, s.SongDetails("s1").State)
}

func TestIngestCoverArtFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	assert.Equal(t, domain.LookupMissing, s.CoverArtFile("cover-1").State)

	path, err := s.IngestCoverArtFile("cover-1", writeTempBlob(t, "png-bytes"))
	require.NoError(t, err)

	lookup := s.CoverArtFile("cover-1")
	require.Equal(t, domain.LookupFound, lookup.State)
	assert.Equal(t, path, lookup.Data)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}
