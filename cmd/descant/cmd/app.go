package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/descant/descant/internal/catalog"
	"github.com/descant/descant/internal/config"
	"github.com/descant/descant/internal/coordinator"
	"github.com/descant/descant/internal/domain"
	"github.com/descant/descant/internal/log"
	"github.com/descant/descant/internal/search"
	"github.com/descant/descant/internal/store"
	"github.com/descant/descant/internal/subsonic"
)

const refreshNote = "cache out of date, refreshing..."

// app bundles the wired services behind a command
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store // nil when caching is disabled
	catalog *catalog.Service
	search  *search.Service
	coord   *coordinator.Coordinator
}

// newApp loads configuration and wires the service stack: config, logger,
// subsonic client, store, catalog, search, coordinator.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.Setup(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	if !cfg.IsConfigured() {
		return nil, errors.New(`no server configured, run "descant setup" first`)
	}

	client := subsonic.NewClient(cfg.Server.URL, cfg.Server.Username, cfg.Server.Password, cfg.Server.ClientName, logger)

	a := &app{cfg: cfg, logger: logger}
	var cache domain.CacheStore
	if cfg.Cache.Enabled {
		st, err := store.Open(cfg.Cache.Dir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		a.store = st
		cache = st
	}

	a.catalog = catalog.NewService(client, cache, cfg.Cache.Workers, logger)
	a.search = search.NewService(client, cache, logger)
	a.coord = coordinator.New(logger)
	return a, nil
}

func (a *app) close() {
	if err := a.catalog.Close(); err != nil {
		a.logger.Error("failed to close cache store", "error", err)
	}
}

// resolve drives a cached-then-fresh read to completion and returns the
// final phase. When a stale cached phase lands first, note is printed to
// stderr so a slow refresh does not look like a hang. A failed refresh
// still returns whatever data the final phase carried, alongside the
// error, so callers can fall back to the cached copy.
func resolve[T any](ctx context.Context, note string, start func(deliver domain.DeliverFunc[T])) (T, error) {
	updates := make(chan domain.Update[T], 2)
	start(func(u domain.Update[T]) { updates <- u })

	for {
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case u := <-updates:
			if u.Final {
				return u.Data, u.Err
			}
			if note != "" {
				fmt.Fprintln(os.Stderr, note)
			}
		}
	}
}
