package playlist

import (
	"context"
	"fmt"
	"strings"

	"smartplaylist/internal/adapters"
)

// Element is anything a Queue holds: a Track, an unresolved Entry or a
// nested Queue. Resolving an element yields a Track or a Queue.
type Element interface {
	Resolve(ctx context.Context, d *Dispatcher) (Element, error)
}

// EntryKind identifies the directive an entry came from.
type EntryKind int

const (
	KindTrack EntryKind = iota
	KindArtist
	KindAlbum
	KindTop
	KindSimilar
)

func (k EntryKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindArtist:
		return "artist"
	case KindAlbum:
		return "album"
	case KindTop:
		return "top"
	case KindSimilar:
		return "similar"
	default:
		return fmt.Sprintf("EntryKind(%d)", int(k))
	}
}

// Entry is a directive-derived producer of tracks.
type Entry interface {
	Element
	Kind() EntryKind
	// Seed is the artist, album, chart or track the entry expands.
	Seed() string
	// Limit caps the number of results. Zero means unlimited.
	Limit() int
}

type entry struct {
	seed  string
	limit int
}

func (e entry) Seed() string { return e.seed }
func (e entry) Limit() int   { return e.limit }

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// Artist expands to an artist's top tracks.
type Artist struct{ entry }

// NewArtist creates an artist entry. A limit of zero means unlimited.
func NewArtist(name string, limit int) *Artist {
	return &Artist{entry{seed: strings.TrimSpace(name), limit: limit}}
}

func (a *Artist) Kind() EntryKind { return KindArtist }

func (a *Artist) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	tracks, err := d.catalog.ArtistTopTracks(ctx, a.seed, a.limit)
	if err != nil {
		return nil, fmt.Errorf("artist %q: %w", a.seed, err)
	}
	tracks = truncate(tracks, a.limit)

	q := NewQueue()
	for i := range tracks {
		q.Add(newTrackFromFull(&tracks[i]))
	}
	return q, nil
}

// Album expands to the tracks of an album.
type Album struct{ entry }

// NewAlbum creates an album entry. A limit of zero means unlimited.
func NewAlbum(name string, limit int) *Album {
	return &Album{entry{seed: strings.TrimSpace(name), limit: limit}}
}

func (a *Album) Kind() EntryKind { return KindAlbum }

// Resolve lists the album tracks. Listings carry simplified track objects,
// so each track keeps the album name as an override.
func (a *Album) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	name, tracks, err := d.catalog.AlbumTracks(ctx, a.seed, a.limit)
	if err != nil {
		return nil, fmt.Errorf("album %q: %w", a.seed, err)
	}
	tracks = truncate(tracks, a.limit)

	q := NewQueue()
	for i := range tracks {
		q.Add(newTrackFromSimple(&tracks[i], name))
	}
	return q, nil
}

// Top expands to the Last.fm top tracks chart of an artist.
type Top struct{ entry }

// NewTop creates a top chart entry. A limit of zero means unlimited.
func NewTop(name string, limit int) *Top {
	return &Top{entry{seed: strings.TrimSpace(name), limit: limit}}
}

func (t *Top) Kind() EntryKind { return KindTop }

func (t *Top) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	charts, err := d.requireCharts()
	if err != nil {
		return nil, fmt.Errorf("top %q: %w", t.seed, err)
	}
	tracks, err := charts.TopTracks(ctx, t.seed, t.limit)
	if err != nil {
		return nil, fmt.Errorf("top %q: %w", t.seed, err)
	}
	return chartQueue(truncate(tracks, t.limit)), nil
}

// Similar expands to tracks similar to a seed. A seed on the form
// `Title - Artist` is a track; anything else is an artist, which expands to
// one top track per similar artist.
type Similar struct{ entry }

// NewSimilar creates a similarity entry. A limit of zero means unlimited.
func NewSimilar(seed string, limit int) *Similar {
	return &Similar{entry{seed: strings.TrimSpace(seed), limit: limit}}
}

func (s *Similar) Kind() EntryKind { return KindSimilar }

func (s *Similar) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	charts, err := d.requireCharts()
	if err != nil {
		return nil, fmt.Errorf("similar %q: %w", s.seed, err)
	}

	if title, artist, ok := splitTitleArtist(s.seed); ok {
		tracks, err := charts.SimilarTracks(ctx, artist, title, s.limit)
		if err != nil {
			return nil, fmt.Errorf("similar %q: %w", s.seed, err)
		}
		return chartQueue(truncate(tracks, s.limit)), nil
	}

	artists, err := charts.SimilarArtists(ctx, s.seed, s.limit)
	if err != nil {
		return nil, fmt.Errorf("similar %q: %w", s.seed, err)
	}
	q := NewQueue()
	for _, name := range truncate(artists, s.limit) {
		q.Add(NewArtist(name, 1))
	}
	return q, nil
}

func chartQueue(tracks []adapters.ChartTrack) *Queue {
	q := NewQueue()
	for _, t := range tracks {
		q.Add(NewTrack(t.String()))
	}
	return q
}

// splitTitleArtist splits `Title - Artist` at the last separator.
func splitTitleArtist(s string) (title, artist string, ok bool) {
	i := strings.LastIndex(s, " - ")
	if i < 0 {
		return "", "", false
	}
	title = strings.TrimSpace(s[:i])
	artist = strings.TrimSpace(s[i+len(" - "):])
	if title == "" || artist == "" {
		return "", "", false
	}
	return title, artist, true
}
