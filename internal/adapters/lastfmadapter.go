package adapters

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shkh/lastfm-go/lastfm"
	"go.uber.org/zap"

	"smartplaylist/internal/config"
)

// lastfmNotFound is the Last.fm error code for an unknown artist or track.
const lastfmNotFound = 6

// LastfmAdapter adapts the Last.fm API to the Charts interface.
// The underlying client takes no context, so cancellation is only
// checked before each call.
type LastfmAdapter struct {
	BaseAdapter
	api *lastfm.Api
}

// NewLastfmAdapter creates a new LastfmAdapter
func NewLastfmAdapter(cfg config.LastfmConfig, logger *zap.Logger) (*LastfmAdapter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("last.fm API key must be provided or set in environment variables: %w", ErrNotConfigured)
	}
	return &LastfmAdapter{
		BaseAdapter: NewBaseAdapter(string(LastfmPlatform), logger),
		api:         lastfm.New(cfg.APIKey, cfg.APISecret),
	}, nil
}

// TopTracks fetches the top tracks chart of an artist
func (a *LastfmAdapter) TopTracks(ctx context.Context, artist string, limit int) ([]ChartTrack, error) {
	if err := a.CheckContext(ctx); err != nil {
		return nil, err
	}

	params := lastfm.P{
		"artist":      artist,
		"autocorrect": 1,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	result, err := a.api.Artist.GetTopTracks(params)
	if a.notFound(err, "artist top tracks", params) {
		return nil, nil
	}
	if err != nil {
		return nil, a.Wrap("artist top tracks", err)
	}

	tracks := make([]ChartTrack, 0, len(result.Tracks))
	for _, t := range result.Tracks {
		tracks = append(tracks, ChartTrack{
			Title:     t.Name,
			Artist:    artist,
			Playcount: parseCount(t.PlayCount),
		})
	}
	return truncate(tracks, limit), nil
}

// SimilarTracks fetches tracks similar to the given track
func (a *LastfmAdapter) SimilarTracks(ctx context.Context, artist, title string, limit int) ([]ChartTrack, error) {
	if err := a.CheckContext(ctx); err != nil {
		return nil, err
	}

	params := lastfm.P{
		"artist":      artist,
		"track":       title,
		"autocorrect": 1,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	result, err := a.api.Track.GetSimilar(params)
	if a.notFound(err, "similar tracks", params) {
		return nil, nil
	}
	if err != nil {
		return nil, a.Wrap("similar tracks", err)
	}

	tracks := make([]ChartTrack, 0, len(result.Tracks))
	for _, t := range result.Tracks {
		tracks = append(tracks, ChartTrack{
			Title:     t.Name,
			Artist:    t.Artist.Name,
			Playcount: parseCount(t.PlayCount),
		})
	}
	return truncate(tracks, limit), nil
}

// SimilarArtists fetches artists similar to the given artist, best match first
func (a *LastfmAdapter) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	if err := a.CheckContext(ctx); err != nil {
		return nil, err
	}

	params := lastfm.P{
		"artist":      artist,
		"autocorrect": 1,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	result, err := a.api.Artist.GetSimilar(params)
	if a.notFound(err, "similar artists", params) {
		return nil, nil
	}
	if err != nil {
		return nil, a.Wrap("similar artists", err)
	}

	names := make([]string, 0, len(result.Similars))
	for _, s := range result.Similars {
		names = append(names, s.Name)
	}
	return truncate(names, limit), nil
}

// TrackInfo fetches global and, when user is set, personal play counts
func (a *LastfmAdapter) TrackInfo(ctx context.Context, artist, title, user string) (*TrackInfo, error) {
	if err := a.CheckContext(ctx); err != nil {
		return nil, err
	}

	params := lastfm.P{
		"artist":      artist,
		"track":       title,
		"autocorrect": 1,
	}
	if user != "" {
		params["username"] = user
	}

	result, err := a.api.Track.GetInfo(params)
	if a.notFound(err, "track info", params) {
		return &TrackInfo{Playcount: -1, UserPlaycount: -1}, nil
	}
	if err != nil {
		return nil, a.Wrap("track info", err)
	}

	info := &TrackInfo{
		Playcount:     parseCount(result.PlayCount),
		UserPlaycount: -1,
	}
	if user != "" {
		info.UserPlaycount = parseCount(result.UserPlayCount)
	}
	return info, nil
}

// notFound reports whether err is Last.fm's answer for an unknown seed.
// Such seeds give empty results rather than errors.
func (a *LastfmAdapter) notFound(err error, op string, params lastfm.P) bool {
	var lfmErr *lastfm.LastfmError
	if !errors.As(err, &lfmErr) || lfmErr.Code != lastfmNotFound {
		return false
	}
	a.Logger().Debug("unknown seed",
		zap.String("op", op),
		zap.Any("artist", params["artist"]),
		zap.Any("track", params["track"]))
	return true
}

// parseCount parses a Last.fm count. Missing or malformed counts are -1.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return -1
	}
	return n
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
