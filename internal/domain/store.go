package domain

// CacheStore is the local cache: entity records, blob files, and the
// freshness markers that vouch for them. A read is Found only when its
// marker exists; markers never expire on their own. Reads never fail;
// internal store errors degrade to Missing and are logged inside.
type CacheStore interface {
	// === Reads ===
	Playlists() Lookup[[]Playlist]
	PlaylistDetails(playlistID string) Lookup[*PlaylistDetails]
	SongDetails(songID string) Lookup[*Song]
	Genres() Lookup[[]Genre]

	// SongFile and CoverArtFile resolve to local file paths. A file on
	// disk without its marker is Stale: usable, but must be re-fetched.
	SongFile(song *Song) Lookup[string]
	CoverArtFile(coverArtID string) Lookup[string]

	// === Ingestion ===
	// Idempotent upserts running in one serializable transaction each,
	// stamping a fresh marker. Embedded references (a song's album,
	// artist, genre, directory) are upserted before the owning record.
	IngestPlaylists(playlists []Playlist) error
	IngestPlaylistDetails(details *PlaylistDetails) error
	IngestSongDetails(song *Song) error
	IngestGenres(genres []Genre) error

	// IngestSongFile and IngestCoverArtFile move a downloaded temp file
	// into the blob tree and return the final path.
	IngestSongFile(song *Song, srcPath string) (string, error)
	IngestCoverArtFile(coverArtID, srcPath string) (string, error)

	// === Invalidation ===
	// Removes markers only; records and files stay as stale data.
	InvalidatePlaylists() error
	InvalidatePlaylistDetails(playlistID string) error
	InvalidateSongDetails(songID string) error
	InvalidateGenres() error
	InvalidateSongFile(song *Song) error
	InvalidateCoverArtFile(coverArtID string) error
	InvalidateAll() error

	// === Deletion ===
	// Removes markers, records, and exclusively owned blob files.
	DeletePlaylist(playlistID string) error
	DeleteSongFile(song *Song) error

	// === Local listings ===
	// Raw dumps of every cached record, markers ignored. Feed the local
	// search index and the UI while offline.
	AllSongs() []Song
	AllPlaylists() []Playlist
	AllAlbums() []Album
	AllArtists() []Artist

	// CachedStatus reports Cached only when the song's audio file exists
	// on disk and its marker vouches for it.
	CachedStatus(song *Song) CachedStatus

	Close() error
}
