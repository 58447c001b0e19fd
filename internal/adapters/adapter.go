package adapters

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"smartplaylist/internal/config"
)

// Catalog defines the track metadata service the resolver looks tracks up in.
// Listing methods return an empty slice, not an error, when the seed is unknown.
type Catalog interface {
	// GetTrack looks a track up by its catalog ID.
	GetTrack(ctx context.Context, id string) (*spotify.FullTrack, error)
	// SearchTrack runs a free-text search. The first result is the best match.
	SearchTrack(ctx context.Context, query string) ([]spotify.FullTrack, error)
	// ArtistTopTracks returns the top tracks of the best matching artist.
	ArtistTopTracks(ctx context.Context, artist string, limit int) ([]spotify.FullTrack, error)
	// AlbumTracks returns the name and tracks of the best matching album.
	AlbumTracks(ctx context.Context, album string, limit int) (string, []spotify.SimpleTrack, error)
}

// Charts defines the listening-statistics service used for charts,
// similarity lookups and play counts.
type Charts interface {
	TopTracks(ctx context.Context, artist string, limit int) ([]ChartTrack, error)
	SimilarTracks(ctx context.Context, artist, title string, limit int) ([]ChartTrack, error)
	SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error)
	// TrackInfo returns play counts. UserPlaycount is only filled when user is set.
	TrackInfo(ctx context.Context, artist, title, user string) (*TrackInfo, error)
}

// ChartTrack is a track listed by a chart or similarity lookup.
type ChartTrack struct {
	Title     string
	Artist    string
	Playcount int
}

// String returns the track on the form `Title - Artist`.
func (t ChartTrack) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Title + " - " + t.Artist
}

// TrackInfo holds play counts. A count of -1 means unknown.
type TrackInfo struct {
	Playcount     int `json:"playcount"`
	UserPlaycount int `json:"userplaycount"`
}

// PlatformType represents the supported metadata platforms
type PlatformType string

const (
	SpotifyPlatform PlatformType = "spotify"
	LastfmPlatform  PlatformType = "lastfm"
)

// NewCatalog is a factory function that creates the catalog adapter from configuration
func NewCatalog(ctx context.Context, cfg config.SpotifyConfig, logger *zap.Logger) (Catalog, error) {
	adapter, err := NewSpotifyAdapter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", SpotifyPlatform, err)
	}
	return adapter, nil
}

// NewCharts is a factory function that creates the charts adapter from configuration
func NewCharts(cfg config.LastfmConfig, logger *zap.Logger) (Charts, error) {
	adapter, err := NewLastfmAdapter(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s adapter: %w", LastfmPlatform, err)
	}
	return adapter, nil
}
