package subsonic

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/descant/descant/internal/domain"
)

const (
	apiVersion     = "1.15.0"
	defaultTimeout = 30 * time.Second
	pingTimeout    = 2 * time.Second
	userAgent      = "Descant/1.0"
)

// Client implements domain.ServerRepository against a Subsonic-compatible
// server. It holds no cache state; a miss here means the data does not
// exist upstream.
type Client struct {
	baseURL    string
	username   string
	password   string
	clientName string
	httpClient *http.Client
	// Blob transfers can outlast any fixed timeout; the context governs them.
	downloadClient *http.Client
	logger         *slog.Logger
}

// NewClient creates a new Subsonic API client
func NewClient(baseURL, username, password, clientName string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if clientName == "" {
		clientName = "descant"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		clientName: clientName,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		downloadClient: &http.Client{},
		logger:         logger,
	}
}

// authParams returns the query parameters every request must carry.
// The token is salted per request so the password never travels.
func (c *Client) authParams() url.Values {
	salt := randomSalt()
	token := md5.Sum([]byte(c.password + salt))

	q := url.Values{}
	q.Set("u", c.username)
	q.Set("t", hex.EncodeToString(token[:]))
	q.Set("s", salt)
	q.Set("v", apiVersion)
	q.Set("c", c.clientName)
	q.Set("f", "json")
	return q
}

// randomSalt returns a fresh random hex string for token auth
func randomSalt() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

// endpointURL builds the full URL for an endpoint, auth included
func (c *Client) endpointURL(endpoint string, query url.Values) string {
	q := c.authParams()
	for key, vals := range query {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	return fmt.Sprintf("%s/rest/%s.view?%s", c.baseURL, endpoint, q.Encode())
}

// doRequest performs an authenticated API request and returns the raw body
func (c *Client) doRequest(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	reqURL := c.endpointURL(endpoint, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("subsonic request", "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("subsonic request failed", "endpoint", endpoint, "error", err)
		return nil, domain.ErrServerUnreachable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, domain.ErrAuthFailed
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("subsonic request error", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return body, nil
}

// parseResponse unwraps the subsonic-response envelope and maps
// server-reported failures to domain errors
func (c *Client) parseResponse(body []byte) (*subsonicResponse, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	r := &env.Response
	if r.Status != "ok" {
		return nil, c.envelopeError(r.Error)
	}
	return r, nil
}

// envelopeError converts a server-reported error to a domain error
func (c *Client) envelopeError(e *errorResponse) error {
	if e == nil {
		return fmt.Errorf("server reported failure without detail")
	}
	switch e.Code {
	case errCodeWrongAuth, errCodeTokenAuth, errCodeUnauthorized:
		c.logger.Error("subsonic auth rejected", "code", e.Code, "message", e.Message)
		return domain.ErrAuthFailed
	case errCodeDataNotFound:
		return domain.ErrNotFound
	default:
		return fmt.Errorf("server error %d: %s", e.Code, e.Message)
	}
}

// Ping verifies the server is reachable and the credentials work
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	body, err := c.doRequest(ctx, "ping", nil)
	if err != nil {
		return err
	}
	_, err = c.parseResponse(body)
	return err
}

// GetPlaylists returns all playlists visible to the user
func (c *Client) GetPlaylists(ctx context.Context) ([]domain.Playlist, error) {
	body, err := c.doRequest(ctx, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return mapPlaylists(resp.Playlists), nil
}

// GetPlaylistDetails returns a playlist with its ordered songs
func (c *Client) GetPlaylistDetails(ctx context.Context, playlistID string) (*domain.PlaylistDetails, error) {
	query := url.Values{}
	query.Set("id", playlistID)

	body, err := c.doRequest(ctx, "getPlaylist", query)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}
	if resp.Playlist == nil {
		return nil, domain.ErrNotFound
	}

	return mapPlaylistDetails(*resp.Playlist), nil
}

// GetSongDetails returns full metadata for a single song
func (c *Client) GetSongDetails(ctx context.Context, songID string) (*domain.Song, error) {
	query := url.Values{}
	query.Set("id", songID)

	body, err := c.doRequest(ctx, "getSong", query)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}
	if resp.Song == nil {
		return nil, domain.ErrNotFound
	}

	song := mapSong(*resp.Song)
	return &song, nil
}

// GetGenres returns all genres known to the server
func (c *Client) GetGenres(ctx context.Context) ([]domain.Genre, error) {
	body, err := c.doRequest(ctx, "getGenres", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return mapGenres(resp.Genres), nil
}

// Search performs a server-side search across artists, albums and songs
func (c *Client) Search(ctx context.Context, query string) (*domain.SearchResults, error) {
	params := url.Values{}
	params.Set("query", query)

	body, err := c.doRequest(ctx, "search3", params)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}

	return mapSearchResults(resp.SearchResult3), nil
}

// StreamURL returns a direct playback URL for a song. The URL carries its
// own salted token, so handing it to an external player needs no session.
func (c *Client) StreamURL(ctx context.Context, songID string) (string, error) {
	query := url.Values{}
	query.Set("id", songID)
	return c.endpointURL("stream", query), nil
}

// CoverArtURL returns a direct URL for a cover art image
func (c *Client) CoverArtURL(ctx context.Context, coverArtID string) (string, error) {
	query := url.Values{}
	query.Set("id", coverArtID)
	return c.endpointURL("getCoverArt", query), nil
}

// DownloadSong fetches the original audio file into a temporary file.
// The download endpoint returns the file untranscoded.
func (c *Client) DownloadSong(ctx context.Context, song *domain.Song) (string, error) {
	query := url.Values{}
	query.Set("id", song.ID)

	pattern := "descant-song-*"
	if song.Suffix != "" {
		pattern += "." + song.Suffix
	}
	return c.download(ctx, "download", query, pattern)
}

// DownloadCoverArt fetches a cover art image into a temporary file
func (c *Client) DownloadCoverArt(ctx context.Context, coverArtID string) (string, error) {
	query := url.Values{}
	query.Set("id", coverArtID)
	return c.download(ctx, "getCoverArt", query, "descant-cover-*")
}

// download streams a binary endpoint to a temp file and returns its path.
// Binary endpoints report failures as a JSON envelope inside a 200, so the
// content type decides whether the body is payload or error.
func (c *Client) download(ctx context.Context, endpoint string, query url.Values, pattern string) (string, error) {
	reqURL := c.endpointURL(endpoint, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("subsonic download", "endpoint", endpoint)

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		c.logger.Error("subsonic download failed", "endpoint", endpoint, "error", err)
		return "", domain.ErrServerUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", domain.ErrAuthFailed
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}
		if _, err := c.parseResponse(body); err != nil {
			return "", err
		}
		return "", fmt.Errorf("expected binary response from %s", endpoint)
	}

	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		c.logger.Error("subsonic download interrupted", "endpoint", endpoint, "error", err)
		return "", domain.ErrServerUnreachable
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return tmp.Name(), nil
}

// CreatePlaylist creates a playlist with an optional initial tracklist
func (c *Client) CreatePlaylist(ctx context.Context, name string, songIDs []string) (*domain.PlaylistDetails, error) {
	query := url.Values{}
	query.Set("name", name)
	for _, id := range songIDs {
		query.Add("songId", id)
	}

	body, err := c.doRequest(ctx, "createPlaylist", query)
	if err != nil {
		return nil, err
	}

	resp, err := c.parseResponse(body)
	if err != nil {
		return nil, err
	}
	if resp.Playlist == nil {
		return nil, fmt.Errorf("no playlist returned from server")
	}

	return mapPlaylistDetails(*resp.Playlist), nil
}

// UpdatePlaylist applies the given changes to an existing playlist.
// Metadata changes go through updatePlaylist; a new tracklist goes through
// createPlaylist with playlistId, which the API defines as a full replace.
func (c *Client) UpdatePlaylist(ctx context.Context, playlistID string, changes domain.PlaylistChanges) error {
	if changes.Name != nil || changes.Comment != nil || changes.Public != nil {
		query := url.Values{}
		query.Set("playlistId", playlistID)
		if changes.Name != nil {
			query.Set("name", *changes.Name)
		}
		if changes.Comment != nil {
			query.Set("comment", *changes.Comment)
		}
		if changes.Public != nil {
			query.Set("public", fmt.Sprintf("%t", *changes.Public))
		}

		body, err := c.doRequest(ctx, "updatePlaylist", query)
		if err != nil {
			return err
		}
		if _, err := c.parseResponse(body); err != nil {
			return err
		}
	}

	if changes.SongIDs != nil {
		query := url.Values{}
		query.Set("playlistId", playlistID)
		for _, id := range changes.SongIDs {
			query.Add("songId", id)
		}

		body, err := c.doRequest(ctx, "createPlaylist", query)
		if err != nil {
			return err
		}
		if _, err := c.parseResponse(body); err != nil {
			return err
		}
	}

	return nil
}

// DeletePlaylist removes a playlist from the server
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) error {
	query := url.Values{}
	query.Set("id", playlistID)

	body, err := c.doRequest(ctx, "deletePlaylist", query)
	if err != nil {
		return err
	}
	_, err = c.parseResponse(body)
	return err
}
