package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// State is a step of the playlist pipeline. Steps run in a fixed sequence.
type State int

const (
	StateParsed State = iota
	StateResolved
	StateDeduplicated
	StateOrdered
	StateGrouped
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateResolved:
		return "resolved"
	case StateDeduplicated:
		return "deduplicated"
	case StateOrdered:
		return "ordered"
	case StateGrouped:
		return "grouped"
	case StateRendered:
		return "rendered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrOutOfOrder is returned when a pipeline step runs before its predecessor.
var ErrOutOfOrder = errors.New("pipeline step out of order")

// Supported ordering and grouping modes. Other values are ignored.
const (
	OrderPopularity = "popularity"
	OrderLastfm     = "lastfm"

	GroupAlbum  = "album"
	GroupArtist = "artist"
	GroupEntry  = "entry"
)

// Playlist holds the parsed entries and the settings read from the
// directives. It is turned into a list of URIs by running the pipeline.
type Playlist struct {
	Entries  *Queue
	Grouping string
	Ordering string
	Unique   bool

	// LastfmUser selects personal playcounts when ordering by Last.fm.
	LastfmUser string
	// Trace receives the display string and counts of every rendered track.
	Trace io.Writer

	state State
}

// New returns an empty playlist.
func New() *Playlist {
	return &Playlist{
		Entries: NewQueue(),
		Unique:  true,
	}
}

// State returns the last completed pipeline step.
func (p *Playlist) State() State { return p.state }

func (p *Playlist) expect(to State) error {
	if p.state != to-1 {
		return fmt.Errorf("%w: cannot go from %s to %s", ErrOutOfOrder, p.state, to)
	}
	return nil
}

func (p *Playlist) advance(to State) error {
	if err := p.expect(to); err != nil {
		return err
	}
	p.state = to
	return nil
}

// Tracks returns the tracks currently in the playlist.
func (p *Playlist) Tracks() []*Track {
	return p.Entries.Tracks()
}

// FetchTracks resolves every entry into tracks.
func (p *Playlist) FetchTracks(ctx context.Context, d *Dispatcher) error {
	if err := p.expect(StateResolved); err != nil {
		return err
	}
	resolved, err := d.Resolve(ctx, p.Entries)
	if err != nil {
		return err
	}
	p.Entries = resolved
	return p.advance(StateResolved)
}

// Dedup removes duplicate tracks when the playlist is unique.
func (p *Playlist) Dedup() error {
	if err := p.advance(StateDeduplicated); err != nil {
		return err
	}
	if p.Unique {
		p.Entries.Dedup()
	}
	return nil
}

// Order sorts the tracks according to the ordering mode, fetching what
// the sort key needs first.
func (p *Playlist) Order(ctx context.Context, d *Dispatcher) error {
	if err := p.expect(StateOrdered); err != nil {
		return err
	}

	switch p.Ordering {
	case OrderPopularity:
		if err := p.refresh(ctx, d); err != nil {
			return err
		}
		p.Entries.OrderByPopularity()
	case OrderLastfm, "last.fm", "playcount":
		charts, err := d.requireCharts()
		if err != nil {
			return fmt.Errorf("order by %s: %w", p.Ordering, err)
		}
		err = d.Each(ctx, p.Tracks(), func(ctx context.Context, t *Track) error {
			return t.FetchLastfm(ctx, charts, p.LastfmUser)
		})
		if err != nil {
			return fmt.Errorf("order by %s: %w", p.Ordering, err)
		}
		p.Entries.OrderByLastfm()
	}
	return p.advance(StateOrdered)
}

// Group clusters the tracks according to the grouping mode.
func (p *Playlist) Group(ctx context.Context, d *Dispatcher) error {
	if err := p.expect(StateGrouped); err != nil {
		return err
	}

	switch p.Grouping {
	case GroupAlbum:
		if err := p.refresh(ctx, d); err != nil {
			return err
		}
		p.Entries.GroupByAlbum()
	case GroupArtist:
		p.Entries.GroupByArtist()
	case GroupEntry:
		p.Entries.GroupByEntry()
	}
	return p.advance(StateGrouped)
}

func (p *Playlist) refresh(ctx context.Context, d *Dispatcher) error {
	err := d.Each(ctx, p.Tracks(), func(ctx context.Context, t *Track) error {
		return t.Refresh(ctx, d.catalog)
	})
	if err != nil {
		return fmt.Errorf("refresh tracks: %w", err)
	}
	return nil
}

// Render returns the newline-separated URIs of the tracks. Tracks without
// a URI are left out. Every track is written to Trace when set.
func (p *Playlist) Render() (string, error) {
	if err := p.advance(StateRendered); err != nil {
		return "", err
	}

	uris := make([]string, 0, p.Entries.Len())
	for _, t := range p.Tracks() {
		if p.Trace != nil {
			fmt.Fprintln(p.Trace, t.String())
			fmt.Fprintf(p.Trace, "%d (%d)\n", t.Popularity(), t.Lastfm())
		}
		if uri := t.URI(); uri != "" {
			uris = append(uris, uri)
		}
	}
	return strings.Join(uris, "\n"), nil
}

// Run drives a freshly parsed playlist through the whole pipeline and
// returns the rendered URIs.
func (p *Playlist) Run(ctx context.Context, d *Dispatcher) (string, error) {
	if err := p.Prepare(ctx, d); err != nil {
		return "", err
	}
	return p.Render()
}

// Prepare runs the pipeline up to, but not including, rendering.
func (p *Playlist) Prepare(ctx context.Context, d *Dispatcher) error {
	if err := p.FetchTracks(ctx, d); err != nil {
		return fmt.Errorf("fetch tracks: %w", err)
	}
	if err := p.Dedup(); err != nil {
		return err
	}
	if err := p.Order(ctx, d); err != nil {
		return err
	}
	return p.Group(ctx, d)
}

// String returns the display string of every track, one per line.
func (p *Playlist) String() string {
	tracks := p.Tracks()
	lines := make([]string, 0, len(tracks))
	for _, t := range tracks {
		lines = append(lines, t.String())
	}
	return strings.Join(lines, "\n")
}
