package subsonic

import "time"

// envelope is the top-level wrapper every Subsonic endpoint responds with
type envelope struct {
	Response subsonicResponse `json:"subsonic-response"`
}

// subsonicResponse carries the status plus exactly one payload field,
// depending on the endpoint that was called
type subsonicResponse struct {
	Status        string         `json:"status"` // "ok" or "failed"
	Version       string         `json:"version,omitempty"`
	Error         *errorResponse `json:"error,omitempty"`
	Playlists     *playlistsBody `json:"playlists,omitempty"`
	Playlist      *playlistBody  `json:"playlist,omitempty"`
	Song          *child         `json:"song,omitempty"`
	Genres        *genresBody    `json:"genres,omitempty"`
	SearchResult3 *searchResult3 `json:"searchResult3,omitempty"`
}

// errorResponse is the server-reported failure inside a 200 response
type errorResponse struct {
	Code    int    `json:"code"` // 40/41 auth, 70 not found
	Message string `json:"message,omitempty"`
}

// Subsonic error codes that matter to callers
const (
	errCodeWrongAuth    = 40
	errCodeTokenAuth    = 41
	errCodeUnauthorized = 50
	errCodeDataNotFound = 70
)

// child represents a song (the API calls any browsable leaf a "child")
type child struct {
	ID          string    `json:"id"`
	Parent      string    `json:"parent,omitempty"`
	Title       string    `json:"title"`
	Album       string    `json:"album,omitempty"`
	AlbumID     string    `json:"albumId,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	ArtistID    string    `json:"artistId,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	CoverArt    string    `json:"coverArt,omitempty"`
	Duration    int       `json:"duration,omitempty"` // seconds
	Track       int       `json:"track,omitempty"`
	DiscNumber  int       `json:"discNumber,omitempty"`
	Year        int       `json:"year,omitempty"`
	Size        int64     `json:"size,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Suffix      string    `json:"suffix,omitempty"`
	BitRate     int       `json:"bitRate,omitempty"`
	Path        string    `json:"path,omitempty"`
	Created     time.Time `json:"created,omitempty"`
}

// playlistsBody wraps the playlist listing
type playlistsBody struct {
	Playlist []playlistBody `json:"playlist,omitempty"`
}

// playlistBody represents a playlist; Entry is populated only by getPlaylist
type playlistBody struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment,omitempty"`
	Owner     string    `json:"owner,omitempty"`
	Public    bool      `json:"public,omitempty"`
	SongCount int       `json:"songCount,omitempty"`
	Duration  int       `json:"duration,omitempty"` // seconds
	CoverArt  string    `json:"coverArt,omitempty"`
	Created   time.Time `json:"created,omitempty"`
	Changed   time.Time `json:"changed,omitempty"`
	Entry     []child   `json:"entry,omitempty"`
}

// genresBody wraps the genre listing
type genresBody struct {
	Genre []genre `json:"genre,omitempty"`
}

// genre names are the identifier; the API assigns no genre IDs
type genre struct {
	Value      string `json:"value"`
	SongCount  int    `json:"songCount,omitempty"`
	AlbumCount int    `json:"albumCount,omitempty"`
}

// searchResult3 groups ID3-organized search matches
type searchResult3 struct {
	Artist []artistID3 `json:"artist,omitempty"`
	Album  []albumID3  `json:"album,omitempty"`
	Song   []child     `json:"song,omitempty"`
}

// artistID3 represents an artist in the ID3 browse hierarchy
type artistID3 struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CoverArt   string `json:"coverArt,omitempty"`
	AlbumCount int    `json:"albumCount,omitempty"`
}

// albumID3 represents an album in the ID3 browse hierarchy
type albumID3 struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Artist    string    `json:"artist,omitempty"`
	ArtistID  string    `json:"artistId,omitempty"`
	CoverArt  string    `json:"coverArt,omitempty"`
	SongCount int       `json:"songCount,omitempty"`
	Duration  int       `json:"duration,omitempty"` // seconds
	Year      int       `json:"year,omitempty"`
	Genre     string    `json:"genre,omitempty"`
	Created   time.Time `json:"created,omitempty"`
}
