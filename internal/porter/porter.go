package porter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"smartplaylist/internal/adapters"
	"smartplaylist/internal/cache"
	"smartplaylist/internal/config"
	"smartplaylist/internal/playlist"
	"smartplaylist/internal/utils"
)

// Porter turns directive text into playlists
// using the catalog and charts adapters
type Porter struct {
	catalog    adapters.Catalog
	charts     adapters.Charts
	logger     *zap.Logger
	lastfmUser string
	dispatch   []playlist.Option
	closers    []io.Closer
}

// Options overrides what the directives set. Empty values keep the
// directive settings.
type Options struct {
	Grouping   string
	Ordering   string
	Unique     *bool
	LastfmUser string
	// Trace receives the console trace of the rendered tracks.
	Trace io.Writer
	// SkipFailures drops entries that fail to resolve instead of failing.
	SkipFailures bool
}

// NewPorter creates a new Porter using the given services. charts may be nil.
func NewPorter(catalog adapters.Catalog, charts adapters.Charts, logger *zap.Logger, opts ...playlist.Option) *Porter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Porter{
		catalog:  catalog,
		charts:   charts,
		logger:   logger,
		dispatch: opts,
	}
}

// NewPorterWithConfig creates a new Porter with the adapters, cache and
// resolver settings from cfg. Close releases the cache.
func NewPorterWithConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Porter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, err := adapters.NewCatalog(ctx, cfg.Spotify, logger)
	if err != nil {
		return nil, err
	}

	var charts adapters.Charts
	if cfg.HasLastfmConfig() {
		charts, err = adapters.NewCharts(cfg.Lastfm, logger)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Debug("last.fm is not configured, #TOP, #SIMILAR and lastfm ordering are unavailable")
	}

	var closers []io.Closer
	cacheCfg := cfg.GetCacheConfig()
	if *cacheCfg.Enabled {
		store, err := openCache(cacheCfg, logger)
		if err != nil {
			return nil, err
		}
		closers = append(closers, store)
		catalog = adapters.NewCachedCatalog(catalog, store, logger)
		if charts != nil {
			charts = adapters.NewCachedCharts(charts, store, logger)
		}
	}

	resolver := cfg.GetResolverConfig()
	p := NewPorter(catalog, charts, logger,
		playlist.WithMaxPasses(resolver.MaxPasses),
		playlist.WithConcurrency(resolver.Concurrency),
		playlist.WithPolicy(playlist.ParseFailurePolicy(resolver.PartialFailures)),
	)
	p.lastfmUser = cfg.Lastfm.User
	p.closers = closers
	return p, nil
}

func openCache(cfg config.CacheConfig, logger *zap.Logger) (*cache.Cache, error) {
	path := cfg.Path
	if path == "" {
		var err error
		if path, err = cache.DefaultPath(); err != nil {
			return nil, fmt.Errorf("cache path: %w", err)
		}
	}
	store, err := cache.Open(path, cfg.TTLDays)
	if err != nil {
		return nil, err
	}
	purged, err := store.Purge()
	if err != nil {
		logger.Warn("failed to purge expired cache entries", zap.Error(err))
	}
	logger.Debug("opened lookup cache", zap.String("path", path), zap.Int64("purged", purged))
	return store, nil
}

// Close releases the resources held by the porter
func (p *Porter) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c.Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// Build parses text and runs the pipeline up to rendering
func (p *Porter) Build(ctx context.Context, text string, opts Options) (*playlist.Playlist, error) {
	pl := playlist.Parse(text)
	p.apply(pl, opts)

	p.logger.Info("generating playlist",
		zap.Int("entries", pl.Entries.Len()),
		zap.String("ordering", pl.Ordering),
		zap.String("grouping", pl.Grouping),
		zap.Bool("unique", pl.Unique))

	if err := pl.Prepare(ctx, p.dispatcher(opts)); err != nil {
		return nil, err
	}
	p.logger.Debug("playlist prepared", zap.String("tracks", pl.String()))
	return pl, nil
}

// Generate returns the newline-separated URIs of the playlist described by text
func (p *Porter) Generate(ctx context.Context, text string, opts Options) (string, error) {
	pl, err := p.Build(ctx, text, opts)
	if err != nil {
		return "", err
	}
	out, err := pl.Render()
	if err != nil {
		return "", err
	}
	p.logger.Info("playlist generated", zap.Int("tracks", len(pl.Tracks())))
	return out, nil
}

// ExportCSV writes the playlist described by text to w as CSV
func (p *Porter) ExportCSV(ctx context.Context, text string, opts Options, w io.Writer) error {
	pl, err := p.Build(ctx, text, opts)
	if err != nil {
		return err
	}
	if _, err := pl.Render(); err != nil {
		return err
	}

	headers := utils.StructToCsvHeader(reflect.TypeOf(playlist.Row{}))
	if err := utils.WriteCsv(w, headers, pl.Rows()); err != nil {
		return fmt.Errorf("error writing CSV: %w", err)
	}
	return nil
}

func (p *Porter) apply(pl *playlist.Playlist, opts Options) {
	if g := strings.ToLower(strings.TrimSpace(opts.Grouping)); g != "" {
		pl.Grouping = g
	}
	if o := strings.ToLower(strings.TrimSpace(opts.Ordering)); o != "" {
		pl.Ordering = o
	}
	if opts.Unique != nil {
		pl.Unique = *opts.Unique
	}
	pl.LastfmUser = p.lastfmUser
	if opts.LastfmUser != "" {
		pl.LastfmUser = opts.LastfmUser
	}
	pl.Trace = opts.Trace
}

func (p *Porter) dispatcher(opts Options) *playlist.Dispatcher {
	dopts := append([]playlist.Option{playlist.WithLogger(p.logger)}, p.dispatch...)
	if opts.SkipFailures {
		dopts = append(dopts, playlist.WithPolicy(playlist.BestEffort))
	}
	return playlist.NewDispatcher(p.catalog, p.charts, dopts...)
}
