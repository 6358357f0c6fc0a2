package domain

import (
	"context"
)

// CatalogRepository provides read access to the server's music catalog.
// Every method fails with ErrNotFound when the identifier is unknown
// upstream and ErrServerUnreachable when the server cannot be reached.
type CatalogRepository interface {
	// GetPlaylists returns all playlists visible to the user
	GetPlaylists(ctx context.Context) ([]Playlist, error)

	// GetPlaylistDetails returns a playlist with its ordered songs
	GetPlaylistDetails(ctx context.Context, playlistID string) (*PlaylistDetails, error)

	// GetSongDetails returns full metadata for a single song
	GetSongDetails(ctx context.Context, songID string) (*Song, error)

	// GetGenres returns all genres known to the server
	GetGenres(ctx context.Context) ([]Genre, error)
}

// MediaRepository resolves and transfers media blobs.
type MediaRepository interface {
	// StreamURL returns a direct playback URL for a song
	StreamURL(ctx context.Context, songID string) (string, error)

	// CoverArtURL returns a direct URL for a cover art image
	CoverArtURL(ctx context.Context, coverArtID string) (string, error)

	// DownloadSong fetches a song's audio into a temporary file and
	// returns its path. The caller owns the file.
	DownloadSong(ctx context.Context, song *Song) (string, error)

	// DownloadCoverArt fetches a cover art image into a temporary file
	// and returns its path. The caller owns the file.
	DownloadCoverArt(ctx context.Context, coverArtID string) (string, error)
}

// PlaylistChanges describes a partial playlist update. Nil fields are left
// unchanged; a non-nil SongIDs replaces the entire tracklist.
type PlaylistChanges struct {
	Name    *string
	Comment *string
	Public  *bool
	SongIDs []string
}

// PlaylistWriter manages playlists upstream.
type PlaylistWriter interface {
	// CreatePlaylist creates a playlist with an optional initial tracklist
	CreatePlaylist(ctx context.Context, name string, songIDs []string) (*PlaylistDetails, error)

	// UpdatePlaylist applies the given changes to an existing playlist
	UpdatePlaylist(ctx context.Context, playlistID string, changes PlaylistChanges) error

	// DeletePlaylist removes a playlist from the server
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// SearchRepository provides server-side search across the catalog.
type SearchRepository interface {
	Search(ctx context.Context, query string) (*SearchResults, error)
}

// ServerRepository is the full ground-truth surface of a music server.
// It holds no cache state; a miss here means the data does not exist.
type ServerRepository interface {
	// Ping verifies the server is reachable and the credentials work
	Ping(ctx context.Context) error

	CatalogRepository
	MediaRepository
	PlaylistWriter
	SearchRepository
}
