package playlist

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zmb3/spotify/v2"

	"smartplaylist/internal/adapters"
)

var errBoom = errors.New("boom")

// jitter sleeps a random short time so that concurrent lookups complete out
// of order.
func jitter(ctx context.Context) error {
	select {
	case <-time.After(rand.N(3 * time.Millisecond)):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func fullTrack(id, title, artist string, popularity int) spotify.FullTrack {
	return spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:      spotify.ID(id),
			URI:     spotify.URI("spotify:track:" + id),
			Name:    title,
			Artists: []spotify.SimpleArtist{{Name: artist}},
		},
		Popularity: spotify.Numeric(popularity),
	}
}

func fullTrackOn(id, title, artist, album string, popularity int) spotify.FullTrack {
	t := fullTrack(id, title, artist, popularity)
	t.Album = spotify.SimpleAlbum{Name: album}
	return t
}

func simpleTrack(id, title, artist string) spotify.SimpleTrack {
	return spotify.SimpleTrack{
		ID:          spotify.ID(id),
		URI:         spotify.URI("spotify:track:" + id),
		Name:        title,
		Artists:     []spotify.SimpleArtist{{Name: artist}},
		TrackNumber: 1,
		DiscNumber:  1,
	}
}

type fakeCatalog struct {
	tracks  map[string]spotify.FullTrack
	search  map[string][]spotify.FullTrack
	artists map[string][]spotify.FullTrack
	albums  map[string][]spotify.SimpleTrack
	fail    map[string]error

	gets     atomic.Int32
	searches atomic.Int32
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:  make(map[string]spotify.FullTrack),
		search:  make(map[string][]spotify.FullTrack),
		artists: make(map[string][]spotify.FullTrack),
		albums:  make(map[string][]spotify.SimpleTrack),
		fail:    make(map[string]error),
	}
}

// addSearch registers a track both as a search result for query and by ID.
func (c *fakeCatalog) addSearch(query string, track spotify.FullTrack) {
	c.search[strings.ToLower(query)] = []spotify.FullTrack{track}
	c.tracks[string(track.ID)] = track
}

func (c *fakeCatalog) GetTrack(ctx context.Context, id string) (*spotify.FullTrack, error) {
	c.gets.Add(1)
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	if err, ok := c.fail[id]; ok {
		return nil, err
	}
	t, ok := c.tracks[id]
	if !ok {
		return nil, &adapters.ServiceError{Service: "fake", Op: "get track", Err: adapters.ErrNotFound}
	}
	return &t, nil
}

func (c *fakeCatalog) SearchTrack(ctx context.Context, query string) ([]spotify.FullTrack, error) {
	c.searches.Add(1)
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	key := strings.ToLower(query)
	if err, ok := c.fail[key]; ok {
		return nil, &adapters.ServiceError{Service: "fake", Op: "search", Err: err}
	}
	return c.search[key], nil
}

func (c *fakeCatalog) ArtistTopTracks(ctx context.Context, artist string, limit int) ([]spotify.FullTrack, error) {
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	return c.artists[strings.ToLower(artist)], nil
}

func (c *fakeCatalog) AlbumTracks(ctx context.Context, album string, limit int) (string, []spotify.SimpleTrack, error) {
	if err := jitter(ctx); err != nil {
		return "", nil, err
	}
	tracks, ok := c.albums[strings.ToLower(album)]
	if !ok {
		return "", nil, nil
	}
	return album, tracks, nil
}

type fakeCharts struct {
	top            map[string][]adapters.ChartTrack
	similarTracks  map[string][]adapters.ChartTrack
	similarArtists map[string][]string
	info           map[string]*adapters.TrackInfo
	fail           map[string]error

	users atomic.Value
}

func newFakeCharts() *fakeCharts {
	return &fakeCharts{
		top:            make(map[string][]adapters.ChartTrack),
		similarTracks:  make(map[string][]adapters.ChartTrack),
		similarArtists: make(map[string][]string),
		info:           make(map[string]*adapters.TrackInfo),
		fail:           make(map[string]error),
	}
}

func chartKey(artist, title string) string {
	return strings.ToLower(title + " - " + artist)
}

func (c *fakeCharts) TopTracks(ctx context.Context, artist string, limit int) ([]adapters.ChartTrack, error) {
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	return c.top[strings.ToLower(artist)], nil
}

func (c *fakeCharts) SimilarTracks(ctx context.Context, artist, title string, limit int) ([]adapters.ChartTrack, error) {
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	return c.similarTracks[chartKey(artist, title)], nil
}

func (c *fakeCharts) SimilarArtists(ctx context.Context, artist string, limit int) ([]string, error) {
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	return c.similarArtists[strings.ToLower(artist)], nil
}

func (c *fakeCharts) TrackInfo(ctx context.Context, artist, title, user string) (*adapters.TrackInfo, error) {
	if err := jitter(ctx); err != nil {
		return nil, err
	}
	c.users.Store(user)
	key := chartKey(artist, title)
	if err, ok := c.fail[key]; ok {
		return nil, err
	}
	if info, ok := c.info[key]; ok {
		return info, nil
	}
	return &adapters.TrackInfo{Playcount: -1, UserPlaycount: -1}, nil
}

// uris returns the URIs of the top-level tracks of q.
func uris(q *Queue) []string {
	var out []string
	for _, t := range q.Tracks() {
		out = append(out, t.URI())
	}
	return out
}

func playcounts(global, personal int) *adapters.TrackInfo {
	return &adapters.TrackInfo{Playcount: global, UserPlaycount: personal}
}
