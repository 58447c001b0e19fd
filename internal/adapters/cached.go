package adapters

import (
	"context"
	"strings"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// Store is a key/value lookup cache. *cache.Cache implements it.
type Store interface {
	Get(kind, key string, dst any) (bool, error)
	Set(kind, key string, value any) error
}

const (
	kindTrack     = "spotify.track"
	kindSearch    = "spotify.search"
	kindTrackInfo = "lastfm.trackinfo"
)

// CachedCatalog reads track lookups and searches through a Store.
// Listings are not cached; they are cheap relative to per-track lookups.
type CachedCatalog struct {
	Catalog
	store  Store
	logger *zap.Logger
}

// NewCachedCatalog wraps catalog with a read-through cache
func NewCachedCatalog(catalog Catalog, store Store, logger *zap.Logger) *CachedCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCatalog{Catalog: catalog, store: store, logger: logger}
}

// GetTrack returns the cached track or looks it up
func (c *CachedCatalog) GetTrack(ctx context.Context, id string) (*spotify.FullTrack, error) {
	var track spotify.FullTrack
	if c.load(kindTrack, id, &track) {
		return &track, nil
	}
	found, err := c.Catalog.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	c.save(kindTrack, id, found)
	return found, nil
}

// SearchTrack returns cached search results or runs the search.
// Empty results are not cached.
func (c *CachedCatalog) SearchTrack(ctx context.Context, query string) ([]spotify.FullTrack, error) {
	key := strings.ToLower(strings.TrimSpace(query))
	var tracks []spotify.FullTrack
	if c.load(kindSearch, key, &tracks) {
		return tracks, nil
	}
	found, err := c.Catalog.SearchTrack(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 {
		c.save(kindSearch, key, found)
	}
	return found, nil
}

func (c *CachedCatalog) load(kind, key string, dst any) bool {
	ok, err := c.store.Get(kind, key, dst)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("kind", kind), zap.Error(err))
		return false
	}
	return ok
}

func (c *CachedCatalog) save(kind, key string, value any) {
	if err := c.store.Set(kind, key, value); err != nil {
		c.logger.Warn("cache write failed", zap.String("kind", kind), zap.Error(err))
	}
}

// CachedCharts reads play counts through a Store.
type CachedCharts struct {
	Charts
	store  Store
	logger *zap.Logger
}

// NewCachedCharts wraps charts with a read-through cache
func NewCachedCharts(charts Charts, store Store, logger *zap.Logger) *CachedCharts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCharts{Charts: charts, store: store, logger: logger}
}

// TrackInfo returns cached play counts or fetches them
func (c *CachedCharts) TrackInfo(ctx context.Context, artist, title, user string) (*TrackInfo, error) {
	key := strings.ToLower(artist + "\x00" + title + "\x00" + user)

	var info TrackInfo
	ok, err := c.store.Get(kindTrackInfo, key, &info)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("kind", kindTrackInfo), zap.Error(err))
	}
	if ok {
		return &info, nil
	}

	found, err := c.Charts.TrackInfo(ctx, artist, title, user)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(kindTrackInfo, key, found); err != nil {
		c.logger.Warn("cache write failed", zap.String("kind", kindTrackInfo), zap.Error(err))
	}
	return found, nil
}
