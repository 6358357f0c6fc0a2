package subsonic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/descant/descant/internal/domain"
	"github.com/descant/descant/internal/log"
)

const testPassword = "sesame"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "alice", testPassword, "descant-test", log.NullLogger())
}

func okEnvelope(payload string) string {
	return `{"subsonic-response":{"status":"ok","version":"1.15.0"` + payload + `}}`
}

func failEnvelope(code int, msg string) string {
	return fmt.Sprintf(`{"subsonic-response":{"status":"failed","error":{"code":%d,"message":"%s"}}}`, code, msg)
}

func TestClientAuthParams(t *testing.T) {
	t.Parallel()

	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		w.Write([]byte(okEnvelope("")))
	})

	require.NoError(t, c.Ping(context.Background()))

	assert.Equal(t, "alice", got.Get("u"))
	assert.Equal(t, "json", got.Get("f"))
	assert.Equal(t, "1.15.0", got.Get("v"))
	assert.Equal(t, "descant-test", got.Get("c"))

	salt := got.Get("s")
	require.NotEmpty(t, salt)
	want := md5.Sum([]byte(testPassword + salt))
	assert.Equal(t, hex.EncodeToString(want[:]), got.Get("t"),
		"token must be md5(password+salt)")
	assert.Empty(t, got.Get("p"), "password must never travel")
}

func TestGetPlaylists(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/getPlaylists.view", r.URL.Path)
		w.Write([]byte(okEnvelope(`,"playlists":{"playlist":[
			{"id":"pl-1","name":"Morning","songCount":12,"duration":2712,"owner":"alice"},
			{"id":"pl-2","name":"Focus","songCount":4,"duration":900}
		]}`)))
	})

	playlists, err := c.GetPlaylists(context.Background())
	require.NoError(t, err)
	require.Len(t, playlists, 2)
	assert.Equal(t, "pl-1", playlists[0].ID)
	assert.Equal(t, "Morning", playlists[0].Name)
	assert.Equal(t, 12, playlists[0].SongCount)
	assert.Equal(t, 2712*time.Second, playlists[0].Duration)
	assert.Equal(t, "alice", playlists[0].Owner)
}

func TestGetPlaylistDetails(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/getPlaylist.view", r.URL.Path)
		require.Equal(t, "pl-1", r.URL.Query().Get("id"))
		w.Write([]byte(okEnvelope(`,"playlist":{"id":"pl-1","name":"Morning","songCount":2,"entry":[
			{"id":"s-2","title":"Second","duration":120,"path":"a/second.mp3"},
			{"id":"s-1","title":"First","duration":200,"path":"a/first.mp3"}
		]}`)))
	})

	details, err := c.GetPlaylistDetails(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Equal(t, "Morning", details.Name)
	require.Len(t, details.Songs, 2)
	// Tracklist order is the server's order, not sorted
	assert.Equal(t, []string{"s-2", "s-1"}, details.SongIDs())
}

func TestGetSongDetails(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okEnvelope(`,"song":{
			"id":"s-1","parent":"d-9","title":"Aria","album":"Goldberg","albumId":"al-3",
			"artist":"Gould","artistId":"ar-7","genre":"Classical","coverArt":"co-5",
			"duration":243,"track":1,"suffix":"flac","path":"Gould/Goldberg/01 Aria.flac"
		}`)))
	})

	song, err := c.GetSongDetails(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Aria", song.Title)
	assert.Equal(t, "al-3", song.AlbumID)
	assert.Equal(t, "ar-7", song.ArtistID)
	assert.Equal(t, "Classical", song.Genre)
	assert.Equal(t, "d-9", song.ParentID)
	assert.Equal(t, 243*time.Second, song.Duration)
	assert.Equal(t, "Gould/Goldberg/01 Aria.flac", song.Path)
}

func TestGetSongDetailsNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(failEnvelope(70, "The requested data was not found.")))
	})

	_, err := c.GetSongDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAuthRejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(failEnvelope(40, "Wrong username or password.")))
	})

	err := c.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuthFailed)
}

func TestServerUnreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, "alice", testPassword, "descant-test", log.NullLogger())
	_, err := c.GetGenres(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerUnreachable)
}

func TestGetGenres(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/getGenres.view", r.URL.Path)
		w.Write([]byte(okEnvelope(`,"genres":{"genre":[
			{"value":"Rock","songCount":420,"albumCount":40},
			{"value":"Jazz","songCount":100,"albumCount":12}
		]}`)))
	})

	genres, err := c.GetGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Rock", genres[0].Name)
	assert.Equal(t, 420, genres[0].SongCount)
}

func TestStreamURL(t *testing.T) {
	t.Parallel()

	c := NewClient("http://music.example/", "alice", testPassword, "descant-test", log.NullLogger())

	got, err := c.StreamURL(context.Background(), "s-1")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/rest/stream.view", u.Path)
	assert.Equal(t, "s-1", u.Query().Get("id"))
	assert.NotEmpty(t, u.Query().Get("t"), "stream URL must carry auth")
}

func TestDownloadSong(t *testing.T) {
	t.Parallel()

	audio := []byte("ID3\x04fake flac bytes")
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/download.view", r.URL.Path)
		w.Header().Set("Content-Type", "audio/flac")
		w.Write(audio)
	})

	song := &domain.Song{ID: "s-1", Suffix: "flac"}
	path, err := c.DownloadSong(context.Background(), song)
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(path) })

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestDownloadSongServerError(t *testing.T) {
	t.Parallel()

	// Binary endpoints report errors as a JSON envelope inside a 200
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(failEnvelope(70, "The requested data was not found.")))
	})

	_, err := c.DownloadSong(context.Background(), &domain.Song{ID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePlaylist(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/createPlaylist.view", r.URL.Path)
		q := r.URL.Query()
		require.Equal(t, "Evening", q.Get("name"))
		require.Equal(t, []string{"s-1", "s-2"}, q["songId"])
		w.Write([]byte(okEnvelope(`,"playlist":{"id":"pl-9","name":"Evening","songCount":2,"entry":[
			{"id":"s-1","title":"One"},{"id":"s-2","title":"Two"}
		]}`)))
	})

	details, err := c.CreatePlaylist(context.Background(), "Evening", []string{"s-1", "s-2"})
	require.NoError(t, err)
	assert.Equal(t, "pl-9", details.ID)
	assert.Equal(t, []string{"s-1", "s-2"}, details.SongIDs())
}

func TestUpdatePlaylist(t *testing.T) {
	t.Parallel()

	var paths []string
	var tracklistCall url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/rest/createPlaylist.view" {
			tracklistCall = r.URL.Query()
		}
		w.Write([]byte(okEnvelope("")))
	})

	name := "Renamed"
	err := c.UpdatePlaylist(context.Background(), "pl-1", domain.PlaylistChanges{
		Name:    &name,
		SongIDs: []string{"s-3"},
	})
	require.NoError(t, err)

	// Metadata first, then the tracklist replace
	require.Equal(t, []string{"/rest/updatePlaylist.view", "/rest/createPlaylist.view"}, paths)
	assert.Equal(t, "pl-1", tracklistCall.Get("playlistId"))
	assert.Equal(t, []string{"s-3"}, tracklistCall["songId"])
}

func TestUpdatePlaylistMetadataOnly(t *testing.T) {
	t.Parallel()

	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(okEnvelope("")))
	})

	comment := "new comment"
	err := c.UpdatePlaylist(context.Background(), "pl-1", domain.PlaylistChanges{Comment: &comment})
	require.NoError(t, err)

	// No tracklist given, so no createPlaylist call
	assert.Equal(t, []string{"/rest/updatePlaylist.view"}, paths)
}

func TestDeletePlaylist(t *testing.T) {
	t.Parallel()

	var gotID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/deletePlaylist.view", r.URL.Path)
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(okEnvelope("")))
	})

	require.NoError(t, c.DeletePlaylist(context.Background(), "pl-1"))
	assert.Equal(t, "pl-1", gotID)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/search3.view", r.URL.Path)
		require.Equal(t, "aria", r.URL.Query().Get("query"))
		w.Write([]byte(okEnvelope(`,"searchResult3":{
			"artist":[{"id":"ar-7","name":"Gould","albumCount":3}],
			"album":[{"id":"al-3","name":"Goldberg","artistId":"ar-7"}],
			"song":[{"id":"s-1","title":"Aria"}]
		}`)))
	})

	results, err := c.Search(context.Background(), "aria")
	require.NoError(t, err)
	assert.Equal(t, 3, results.Count())
	require.Len(t, results.Artists, 1)
	assert.Equal(t, "Gould", results.Artists[0].Name)
	require.Len(t, results.Songs, 1)
	assert.Equal(t, "Aria", results.Songs[0].Title)
}

func TestEnvelopeParseError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	_, err := c.GetPlaylists(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
