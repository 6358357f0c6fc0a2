package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sahilm "github.com/sahilm/fuzzy"

	"github.com/descant/descant/internal/domain"
)

// Service searches the music catalog in two phases: the local cache
// answers synchronously from whatever it holds, markers or not, and the
// server's results follow asynchronously when it can be reached.
type Service struct {
	server domain.SearchRepository
	store  domain.CacheStore // nil disables the local phase
	logger *slog.Logger
}

// NewService creates a search service. A nil store skips local results.
func NewService(server domain.SearchRepository, store domain.CacheStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{server: server, store: store, logger: logger}
}

// Search delivers local results first, then the server's. The final
// delivery keeps the local results when the server cannot improve on
// them, with Err reporting why.
func (s *Service) Search(ctx context.Context, query string, deliver domain.DeliverFunc[*domain.SearchResults]) {
	query = strings.TrimSpace(query)
	if query == "" {
		deliver(domain.Update[*domain.SearchResults]{Data: &domain.SearchResults{}, Final: true})
		return
	}

	local := s.Local(query)
	deliver(domain.Update[*domain.SearchResults]{Data: local, Partial: true})

	go func() {
		remote, err := s.server.Search(ctx, query)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("server search failed, local results stand", "query", query, "error", err)
			deliver(domain.Update[*domain.SearchResults]{Data: local, Err: err, Final: true})
			return
		}
		deliver(domain.Update[*domain.SearchResults]{Data: remote, Final: true})
	}()
}

// Local ranks everything the cache holds against the query
func (s *Service) Local(query string) *domain.SearchResults {
	results := &domain.SearchResults{}
	query = strings.TrimSpace(query)
	if s.store == nil || query == "" {
		return results
	}

	results.Songs = s.matchSongs(query)
	results.Albums = matchByName(query, s.store.AllAlbums(), func(a domain.Album) string { return a.Name })
	results.Artists = matchByName(query, s.store.AllArtists(), func(a domain.Artist) string { return a.Name })
	results.Playlists = matchByName(query, s.store.AllPlaylists(), func(p domain.Playlist) string { return p.Name })

	s.logger.Debug("local search", "query", query, "results", results.Count())
	return results
}

// songIndex implements sahilm/fuzzy.Source over "title artist" strings,
// so a query can hit either field without a second pass
type songIndex struct {
	songs  []domain.Song
	titles []string
}

func newSongIndex(songs []domain.Song) *songIndex {
	idx := &songIndex{songs: songs, titles: make([]string, len(songs))}
	for i, song := range songs {
		idx.titles[i] = strings.ToLower(song.Title + " " + song.Artist)
	}
	return idx
}

func (idx *songIndex) String(i int) string { return idx.titles[i] }
func (idx *songIndex) Len() int            { return len(idx.songs) }

// matchSongs ranks cached songs; songs are the big collection, so the
// pre-built source index avoids re-lowering titles per comparison
func (s *Service) matchSongs(query string) []domain.Song {
	idx := newSongIndex(s.store.AllSongs())
	if idx.Len() == 0 {
		return nil
	}

	matches := sahilm.FindFrom(strings.ToLower(query), idx)
	songs := make([]domain.Song, len(matches))
	for i, match := range matches {
		songs[i] = idx.songs[match.Index]
	}
	return songs
}

// matchByName ranks a slice by fuzzy distance of the name field
func matchByName[T any](query string, items []T, name func(T) string) []T {
	if len(items) == 0 {
		return nil
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = name(item)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	matched := make([]T, len(ranks))
	for i, rank := range ranks {
		matched[i] = items[rank.OriginalIndex]
	}
	return matched
}
