package store

import (
	"strings"

	"github.com/opencontainers/go-digest"
)

// CacheKey identifies one cacheable operation. Together with a params
// fingerprint it addresses a single freshness marker.
type CacheKey string

const (
	// KeyPlaylists marks the playlist listing
	KeyPlaylists CacheKey = "playlists"

	// KeyPlaylistDetails marks one playlist's tracklist (params: playlist id)
	KeyPlaylistDetails CacheKey = "playlist_details"

	// KeySongDetails marks one song's metadata (params: song id)
	KeySongDetails CacheKey = "song_details"

	// KeySongFile marks one song's cached audio file (params: song id)
	KeySongFile CacheKey = "song_file"

	// KeyCoverArtFile marks one cached cover art image (params: cover art id)
	KeyCoverArtFile CacheKey = "cover_art_file"

	// KeyGenres marks the genre listing
	KeyGenres CacheKey = "genres"
)

// Fingerprint hashes an ordered parameter tuple. Identical tuples always
// hash identically; terminating every element keeps ("ab") distinct from
// ("a", "b") and the empty tuple distinct from (""). Parameterless
// operations fingerprint the empty tuple.
func Fingerprint(params ...string) string {
	var b strings.Builder
	for _, p := range params {
		b.WriteString(p)
		b.WriteByte(0x1f)
	}
	return digest.FromString(b.String()).Encoded()
}

// markerKey is the cacheinfo bucket key for (operation, fingerprint)
func markerKey(key CacheKey, fingerprint string) string {
	return string(key) + ":" + fingerprint
}
