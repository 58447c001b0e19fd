package porter

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"smartplaylist/internal/adapters"
	"smartplaylist/internal/config"
)

type stubCatalog struct {
	list   []spotify.FullTrack
	tracks map[string]spotify.FullTrack
	fail   map[string]error
}

func newStubCatalog(tracks ...spotify.FullTrack) *stubCatalog {
	c := &stubCatalog{list: tracks, tracks: make(map[string]spotify.FullTrack), fail: make(map[string]error)}
	for _, t := range tracks {
		c.tracks[strings.ToLower(t.Name+" - "+t.Artists[0].Name)] = t
		c.tracks[string(t.ID)] = t
	}
	return c
}

func (c *stubCatalog) GetTrack(_ context.Context, id string) (*spotify.FullTrack, error) {
	t, ok := c.tracks[id]
	if !ok {
		return nil, adapters.ErrNotFound
	}
	return &t, nil
}

func (c *stubCatalog) SearchTrack(_ context.Context, query string) ([]spotify.FullTrack, error) {
	key := strings.ToLower(query)
	if err, ok := c.fail[key]; ok {
		return nil, err
	}
	if t, ok := c.tracks[key]; ok {
		return []spotify.FullTrack{t}, nil
	}
	return nil, nil
}

func (c *stubCatalog) ArtistTopTracks(_ context.Context, artist string, limit int) ([]spotify.FullTrack, error) {
	var out []spotify.FullTrack
	for _, t := range c.list {
		if strings.EqualFold(t.Artists[0].Name, artist) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *stubCatalog) AlbumTracks(context.Context, string, int) (string, []spotify.SimpleTrack, error) {
	return "", nil, nil
}

func track(id, title, artist, album string, popularity int) spotify.FullTrack {
	return spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			ID:       spotify.ID(id),
			URI:      spotify.URI("spotify:track:" + id),
			Name:     title,
			Artists:  []spotify.SimpleArtist{{Name: artist}},
			Duration: 200000,
		},
		Album:      spotify.SimpleAlbum{Name: album},
		Popularity: spotify.Numeric(popularity),
	}
}

func testPorter() *Porter {
	catalog := newStubCatalog(
		track("a", "Alpha", "X", "One", 10),
		track("b", "Beta", "Y", "Two", 90),
		track("c", "Gamma", "X", "One", 50),
	)
	return NewPorter(catalog, nil, zap.NewNop())
}

const directives = "Alpha - X\nBeta - Y\nGamma - X\nalpha - x"

func TestPorter_Generate(t *testing.T) {
	out, err := testPorter().Generate(context.Background(), directives, Options{})
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:a\nspotify:track:b\nspotify:track:c", out)
}

func TestPorter_GenerateOverrides(t *testing.T) {
	notUnique := false

	out, err := testPorter().Generate(context.Background(), directives, Options{Ordering: "Popularity", Unique: &notUnique})
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:b\nspotify:track:c\nspotify:track:a\nspotify:track:a", out)

	out, err = testPorter().Generate(context.Background(), "#ORDER BY popularity\n"+directives, Options{Grouping: "artist"})
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:b\nspotify:track:c\nspotify:track:a", out)
}

func TestPorter_GenerateTrace(t *testing.T) {
	var trace bytes.Buffer

	_, err := testPorter().Generate(context.Background(), "Beta - Y", Options{Trace: &trace})
	require.NoError(t, err)
	assert.Equal(t, "Beta - Y\n90 (-1)\n", trace.String())
}

func TestPorter_LogsPreparedTracks(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := testPorter()
	p.logger = zap.New(core)

	_, err := p.Generate(context.Background(), "#ORDER BY popularity\nAlpha - X\nBeta - Y", Options{})
	require.NoError(t, err)

	entries := logs.FilterMessage("playlist prepared").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Beta - Y\nAlpha - X", entries[0].ContextMap()["tracks"])
}

func TestPorter_SkipFailures(t *testing.T) {
	p := testPorter()
	p.catalog.(*stubCatalog).fail["broken"] = errors.New("service unavailable")

	_, err := p.Generate(context.Background(), "Alpha - X\nbroken", Options{})
	require.Error(t, err)

	out, err := p.Generate(context.Background(), "Alpha - X\nbroken", Options{SkipFailures: true})
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:a", out)
}

func TestPorter_ArtistEntry(t *testing.T) {
	out, err := testPorter().Generate(context.Background(), "#ARTIST X\n#ORDER BY popularity", Options{})
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:c\nspotify:track:a", out)
}

func TestPorter_ExportCSV(t *testing.T) {
	var buf bytes.Buffer

	err := testPorter().ExportCSV(context.Background(), "Beta - Y\nUnknown - Z", Options{}, &buf)
	require.NoError(t, err)

	assert.Equal(t,
		"uri,title,artist,album,disc_number,track_number,duration_ms,popularity,lastfm\n"+
			"spotify:track:b,Beta,Y,Two,,,200000,90,\n"+
			",,,,,,,,\n",
		buf.String())
}

func TestNewPorterWithConfig_RequiresSpotify(t *testing.T) {
	_, err := NewPorterWithConfig(context.Background(), &config.Config{}, nil)
	assert.ErrorIs(t, err, adapters.ErrNotConfigured)
}

func TestNewPorterWithConfig(t *testing.T) {
	cfg := &config.Config{
		Spotify:  config.SpotifyConfig{ClientID: "id", ClientSecret: "secret"},
		Lastfm:   config.LastfmConfig{APIKey: "key", User: "listener"},
		Cache:    config.CacheConfig{Path: filepath.Join(t.TempDir(), "cache.db")},
		Resolver: config.ResolverConfig{PartialFailures: "skip"},
	}

	p, err := NewPorterWithConfig(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Close()) })

	assert.IsType(t, &adapters.CachedCatalog{}, p.catalog)
	assert.IsType(t, &adapters.CachedCharts{}, p.charts)
	assert.Equal(t, "listener", p.lastfmUser)
	assert.Len(t, p.closers, 1)
}

func TestNewPorterWithConfig_CacheDisabled(t *testing.T) {
	disabled := false
	cfg := &config.Config{
		Spotify: config.SpotifyConfig{ClientID: "id", ClientSecret: "secret"},
		Cache:   config.CacheConfig{Enabled: &disabled},
	}

	p, err := NewPorterWithConfig(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.IsType(t, &adapters.SpotifyAdapter{}, p.catalog)
	assert.Nil(t, p.charts)
	assert.NoError(t, p.Close())
}
