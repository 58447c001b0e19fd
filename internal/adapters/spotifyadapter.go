package adapters

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"smartplaylist/internal/config"
)

const (
	// spotifyPageSize is the Spotify API maximum per request
	spotifyPageSize = 50
	// spotifySearchSize is how many candidates a free-text search asks for
	spotifySearchSize = 5
)

// SpotifyAdapter adapts the Spotify Web API to the Catalog interface
type SpotifyAdapter struct {
	BaseAdapter // Embed the BaseAdapter
	client      *spotify.Client
	market      string
}

// NewSpotifyAdapter creates a new SpotifyAdapter authenticated with an app token
// (client credentials). No user session is involved.
func NewSpotifyAdapter(ctx context.Context, cfg config.SpotifyConfig, logger *zap.Logger) (*SpotifyAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret must be provided or set in environment variables: %w", ErrNotConfigured)
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	return NewSpotifyAdapterWithClient(spotify.New(creds.Client(ctx)), cfg.GetMarket(), logger), nil
}

// NewSpotifyAdapterWithClient wraps an existing client
func NewSpotifyAdapterWithClient(client *spotify.Client, market string, logger *zap.Logger) *SpotifyAdapter {
	return &SpotifyAdapter{
		BaseAdapter: NewBaseAdapter(string(SpotifyPlatform), logger),
		client:      client,
		market:      market,
	}
}

// GetTrack retrieves the full track object for a Spotify ID
func (a *SpotifyAdapter) GetTrack(ctx context.Context, id string) (*spotify.FullTrack, error) {
	track, err := a.client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, a.Wrap("get track "+id, ErrNotFound)
		}
		return nil, a.Wrap("get track "+id, err)
	}
	return track, nil
}

// SearchTrack searches for tracks on Spotify
func (a *SpotifyAdapter) SearchTrack(ctx context.Context, query string) ([]spotify.FullTrack, error) {
	results, err := a.client.Search(
		ctx,
		query,
		spotify.SearchTypeTrack,
		spotify.Limit(spotifySearchSize),
		spotify.Market(a.market),
	)
	if err != nil {
		return nil, a.Wrap("search track", err)
	}
	if results.Tracks == nil {
		return nil, nil
	}
	return results.Tracks.Tracks, nil
}

// ArtistTopTracks finds the artist and returns its top tracks in the configured market
func (a *SpotifyAdapter) ArtistTopTracks(ctx context.Context, artist string, limit int) ([]spotify.FullTrack, error) {
	results, err := a.client.Search(ctx, artist, spotify.SearchTypeArtist, spotify.Limit(1))
	if err != nil {
		return nil, a.Wrap("search artist", err)
	}
	if results.Artists == nil || len(results.Artists.Artists) == 0 {
		a.Logger().Debug("artist not found", zap.String("artist", artist))
		return nil, nil
	}

	found := results.Artists.Artists[0]
	tracks, err := a.client.GetArtistsTopTracks(ctx, found.ID, a.market)
	if err != nil {
		return nil, a.Wrap("artist top tracks "+found.Name, err)
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return tracks, nil
}

// AlbumTracks finds the album and retrieves all of its tracks, following pages
func (a *SpotifyAdapter) AlbumTracks(ctx context.Context, album string, limit int) (string, []spotify.SimpleTrack, error) {
	results, err := a.client.Search(ctx, album, spotify.SearchTypeAlbum, spotify.Limit(1), spotify.Market(a.market))
	if err != nil {
		return "", nil, a.Wrap("search album", err)
	}
	if results.Albums == nil || len(results.Albums.Albums) == 0 {
		a.Logger().Debug("album not found", zap.String("album", album))
		return "", nil, nil
	}

	found := results.Albums.Albums[0]
	page, err := a.client.GetAlbumTracks(ctx, found.ID, spotify.Limit(spotifyPageSize), spotify.Market(a.market))
	if err != nil {
		return "", nil, a.Wrap("album tracks "+found.Name, err)
	}

	var tracks []spotify.SimpleTrack
	for {
		tracks = append(tracks, page.Tracks...)
		if limit > 0 && len(tracks) >= limit {
			tracks = tracks[:limit]
			break
		}
		err = a.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return "", nil, a.Wrap("album tracks "+found.Name, err)
		}
	}
	return found.Name, tracks, nil
}

func isStatus(err error, status int) bool {
	var value spotify.Error
	if errors.As(err, &value) {
		return value.Status == status
	}
	var ptr *spotify.Error
	if errors.As(err, &ptr) {
		return ptr.Status == status
	}
	return false
}
