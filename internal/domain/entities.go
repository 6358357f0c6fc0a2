package domain

import (
	"fmt"
	"time"
)

// Song represents a single track as known to the server.
// References to the album, artist, genre and parent directory are weak:
// identifiers only, resolved through the store when needed.
type Song struct {
	ID          string        // Server-assigned unique identifier
	Title       string        // Display title
	Album       string        // Album name as reported alongside the song
	AlbumID     string        // Weak reference to the album
	Artist      string        // Artist name as reported alongside the song
	ArtistID    string        // Weak reference to the artist
	Genre       string        // Genre name (genres are keyed by name)
	ParentID    string        // Weak reference to the containing directory
	CoverArtID  string        // Cover art identifier, empty if none
	Duration    time.Duration // Track length
	Track       int           // Track number within the album (0 = unknown)
	Disc        int           // Disc number (0 = unknown)
	Year        int           // Release year (0 = unknown)
	Size        int64         // File size in bytes as reported by the server
	ContentType string        // MIME type, e.g. "audio/mpeg"
	Suffix      string        // File extension without the dot
	BitRate     int           // Bitrate in kbps
	Path        string        // Server-side relative path, also the local layout
}

// FormattedDuration returns the track length in a human-readable format
func (s Song) FormattedDuration() string {
	mins := int(s.Duration.Minutes())
	secs := int(s.Duration.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// AlbumRef returns the album this song belongs to, built from the
// denormalized fields the server sends with every song. Used at ingestion
// time to upsert the album before the song itself.
func (s Song) AlbumRef() *Album {
	if s.AlbumID == "" {
		return nil
	}
	return &Album{
		ID:         s.AlbumID,
		Name:       s.Album,
		Artist:     s.Artist,
		ArtistID:   s.ArtistID,
		CoverArtID: s.CoverArtID,
		Year:       s.Year,
		Genre:      s.Genre,
	}
}

// ArtistRef returns the artist reference carried by this song, if any.
func (s Song) ArtistRef() *Artist {
	if s.ArtistID == "" {
		return nil
	}
	return &Artist{ID: s.ArtistID, Name: s.Artist}
}

// GenreRef returns the genre reference carried by this song, if any.
func (s Song) GenreRef() *Genre {
	if s.Genre == "" {
		return nil
	}
	return &Genre{Name: s.Genre}
}

// DirectoryRef returns the parent directory reference, if any.
func (s Song) DirectoryRef() *Directory {
	if s.ParentID == "" {
		return nil
	}
	return &Directory{ID: s.ParentID}
}

// Album represents an album container
type Album struct {
	ID         string        // Server-assigned unique identifier
	Name       string        // Album title
	Artist     string        // Album artist name
	ArtistID   string        // Weak reference to the artist
	CoverArtID string        // Cover art identifier, empty if none
	SongCount  int           // Number of songs on the album
	Duration   time.Duration // Total album length
	Year       int           // Release year (0 = unknown)
	Genre      string        // Genre name
	Created    time.Time     // When the server added the album
}

// Artist represents a recording artist
type Artist struct {
	ID         string // Server-assigned unique identifier
	Name       string // Display name
	AlbumCount int    // Number of albums by this artist
	CoverArtID string // Cover art identifier, empty if none
}

// Genre is keyed by name; the server does not assign genre identifiers.
type Genre struct {
	Name       string // Genre name, the identifier
	SongCount  int    // Number of songs in this genre
	AlbumCount int    // Number of albums in this genre
}

// Directory represents a node in the server's browse hierarchy
type Directory struct {
	ID       string // Server-assigned unique identifier
	Name     string // Directory display name
	ParentID string // Weak reference to the parent directory, empty at root
}

// Playlist represents a playlist as seen in listings, without its songs
type Playlist struct {
	ID         string        // Server-assigned unique identifier
	Name       string        // Display name
	Comment    string        // Optional free-text comment
	Owner      string        // Username of the owner
	Public     bool          // Whether the playlist is visible to other users
	SongCount  int           // Number of songs in the playlist
	Duration   time.Duration // Total playlist length
	CoverArtID string        // Cover art identifier, empty if none
	Created    time.Time     // When the playlist was created
	Changed    time.Time     // When the playlist was last modified
}

// FormattedDuration returns the playlist length in a human-readable format
func (p Playlist) FormattedDuration() string {
	h := int(p.Duration.Hours())
	mins := int(p.Duration.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// PlaylistDetails is a playlist together with its ordered songs.
// The song order is owned by the playlist; everything else about each song
// is a snapshot of the song entity at fetch time.
type PlaylistDetails struct {
	Playlist
	Songs []Song // Ordered tracklist
}

// SongIDs returns the ordered song identifiers of the tracklist
func (p PlaylistDetails) SongIDs() []string {
	ids := make([]string, len(p.Songs))
	for i, s := range p.Songs {
		ids[i] = s.ID
	}
	return ids
}

// CachedStatus reports whether a song's audio file is fully cached
type CachedStatus int

const (
	NotCached CachedStatus = iota
	Cached
)

// String returns a human-readable representation of the cached status
func (c CachedStatus) String() string {
	switch c {
	case Cached:
		return "Cached"
	default:
		return "Not Cached"
	}
}
