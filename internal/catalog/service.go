package catalog

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/descant/descant/internal/domain"
)

const defaultWorkers = 4

// Service orchestrates reads and mutations against the server, routed
// through the cache store when one is configured. Reads deliver in up to
// two phases: a synchronous cached phase and, when the cache cannot vouch
// for its answer, an asynchronous ground-truth refresh that ingests
// before delivering. Without a store every read is a plain server call.
type Service struct {
	server  domain.ServerRepository
	store   domain.CacheStore // nil when caching is disabled
	workers int
	logger  *slog.Logger

	fetchGroup singleflight.Group
}

// NewService creates a catalog service. A nil store disables caching;
// workers bounds concurrent audio downloads.
func NewService(server domain.ServerRepository, store domain.CacheStore, workers int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Service{server: server, store: store, workers: workers, logger: logger}
}

// Cached reports whether a cache store is configured
func (s *Service) Cached() bool { return s.store != nil }

// Ping verifies the server is reachable with the configured credentials
func (s *Service) Ping(ctx context.Context) error {
	return s.server.Ping(ctx)
}

// Close releases the cache store, if any
func (s *Service) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Playlists delivers the playlist listing
func (s *Service) Playlists(ctx context.Context, force bool, deliver domain.DeliverFunc[[]domain.Playlist]) {
	readThrough(s, ctx, "playlists", nil, force, deliver,
		func() domain.Lookup[[]domain.Playlist] { return s.store.Playlists() },
		func(ctx context.Context) ([]domain.Playlist, error) { return s.server.GetPlaylists(ctx) },
		func(data []domain.Playlist) error { return s.store.IngestPlaylists(data) },
	)
}

// PlaylistDetails delivers one playlist with its ordered songs
func (s *Service) PlaylistDetails(ctx context.Context, playlistID string, force bool, deliver domain.DeliverFunc[*domain.PlaylistDetails]) {
	readThrough(s, ctx, "playlist_details", []string{playlistID}, force, deliver,
		func() domain.Lookup[*domain.PlaylistDetails] { return s.store.PlaylistDetails(playlistID) },
		func(ctx context.Context) (*domain.PlaylistDetails, error) {
			return s.server.GetPlaylistDetails(ctx, playlistID)
		},
		func(data *domain.PlaylistDetails) error { return s.store.IngestPlaylistDetails(data) },
	)
}

// SongDetails delivers one song's metadata
func (s *Service) SongDetails(ctx context.Context, songID string, force bool, deliver domain.DeliverFunc[*domain.Song]) {
	readThrough(s, ctx, "song_details", []string{songID}, force, deliver,
		func() domain.Lookup[*domain.Song] { return s.store.SongDetails(songID) },
		func(ctx context.Context) (*domain.Song, error) { return s.server.GetSongDetails(ctx, songID) },
		func(data *domain.Song) error { return s.store.IngestSongDetails(data) },
	)
}

// Genres delivers the genre listing
func (s *Service) Genres(ctx context.Context, force bool, deliver domain.DeliverFunc[[]domain.Genre]) {
	readThrough(s, ctx, "genres", nil, force, deliver,
		func() domain.Lookup[[]domain.Genre] { return s.store.Genres() },
		func(ctx context.Context) ([]domain.Genre, error) { return s.server.GetGenres(ctx) },
		func(data []domain.Genre) error { return s.store.IngestGenres(data) },
	)
}

// InvalidateCache drops every freshness marker, forcing reads back to the
// server while keeping records and files as stale data
func (s *Service) InvalidateCache() error {
	if s.store == nil {
		return domain.ErrNotCacheable
	}
	return s.store.InvalidateAll()
}

// readThrough runs a cached read: synchronous cached phase, then a
// refresh in the background when the cache could not vouch for its
// answer or the caller forced one. Identical in-flight refreshes are
// collapsed. Cancelling the context stops deliveries, never cache
// writes.
func readThrough[T any](
	s *Service,
	ctx context.Context,
	op string,
	params []string,
	force bool,
	deliver domain.DeliverFunc[T],
	lookup func() domain.Lookup[T],
	fetch func(ctx context.Context) (T, error),
	ingest func(T) error,
) {
	cached := domain.Missing[T]()
	if s.store != nil {
		cached = lookup()
	}

	if cached.Fresh() && !force {
		deliver(domain.Update[T]{Data: cached.Data, Final: true})
		return
	}
	if cached.HasData() {
		deliver(domain.Update[T]{Data: cached.Data, Partial: true})
	}

	go func() {
		// The refresh and its cache writes run to completion even if the
		// caller goes away mid-flight.
		bg := context.WithoutCancel(ctx)
		result, err, shared := s.fetchGroup.Do(flightKey(op, params), func() (any, error) {
			data, err := fetch(bg)
			if err != nil {
				return nil, err
			}
			if s.store != nil {
				if err := ingest(data); err != nil {
					s.logger.Error("cache ingestion failed", "operation", op, "error", err)
				}
			}
			return data, nil
		})
		if shared {
			s.logger.Debug("refresh collapsed into in-flight fetch", "operation", op)
		}

		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Error("refresh failed", "operation", op, "error", err)
			deliver(domain.Update[T]{Data: cached.Data, Err: err, Final: true})
			return
		}
		deliver(domain.Update[T]{Data: result.(T), Final: true})
	}()
}

// flightKey names one (operation, params) fetch for deduplication
func flightKey(op string, params []string) string {
	if len(params) == 0 {
		return op
	}
	return op + "\x1f" + strings.Join(params, "\x1f")
}
