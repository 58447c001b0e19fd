package playlist

import (
	"cmp"
	"context"
	"slices"
	"strings"
)

// Queue is an ordered, possibly nested collection of elements.
// Insertion order is kept until an explicit reorder.
type Queue struct {
	elements []Element
}

// NewQueue creates a queue holding elements.
func NewQueue(elements ...Element) *Queue {
	q := &Queue{}
	q.Add(elements...)
	return q
}

// Add appends elements to the queue.
func (q *Queue) Add(elements ...Element) {
	q.elements = append(q.elements, elements...)
}

// Len returns the number of top-level elements.
func (q *Queue) Len() int {
	return len(q.elements)
}

// Elements returns a copy of the top-level elements.
func (q *Queue) Elements() []Element {
	return slices.Clone(q.elements)
}

// Tracks returns the top-level tracks, skipping other elements.
func (q *Queue) Tracks() []*Track {
	tracks := make([]*Track, 0, len(q.elements))
	for _, el := range q.elements {
		if t, ok := el.(*Track); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// Resolve dispatches the queue, so that a nested queue is resolved as part
// of its parent's pass.
func (q *Queue) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	resolved, err := d.Dispatch(ctx, q)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// IsResolved reports whether the queue holds only resolved tracks.
func (q *Queue) IsResolved() bool {
	for _, el := range q.elements {
		t, ok := el.(*Track)
		if !ok || !t.IsResolved() {
			return false
		}
	}
	return true
}

// Flatten returns a queue where nested queues are expanded in place,
// depth first, keeping relative order.
func (q *Queue) Flatten() *Queue {
	flat := NewQueue()
	flat.elements = appendFlat(make([]Element, 0, len(q.elements)), q)
	return flat
}

func appendFlat(dst []Element, q *Queue) []Element {
	for _, el := range q.elements {
		if nested, ok := el.(*Queue); ok {
			dst = appendFlat(dst, nested)
			continue
		}
		dst = append(dst, el)
	}
	return dst
}

// The operations below work on a flattened, resolved queue.
// Elements that are not tracks are dropped.

// Dedup removes tracks similar to an earlier track, keeping the first.
func (q *Queue) Dedup() {
	var kept []*Track
	for _, t := range q.Tracks() {
		if !slices.ContainsFunc(kept, t.SimilarTo) {
			kept = append(kept, t)
		}
	}
	q.setTracks(kept)
}

// OrderBy stable sorts tracks by score, highest first.
func (q *Queue) OrderBy(score func(*Track) int) {
	tracks := q.Tracks()
	slices.SortStableFunc(tracks, func(a, b *Track) int {
		return cmp.Compare(score(b), score(a))
	})
	q.setTracks(tracks)
}

// OrderByPopularity orders tracks by Spotify popularity, unknown last.
func (q *Queue) OrderByPopularity() {
	q.OrderBy((*Track).Popularity)
}

// OrderByLastfm orders tracks by Last.fm playcount, unknown last.
func (q *Queue) OrderByLastfm() {
	q.OrderBy((*Track).Lastfm)
}

// Group clusters tracks sharing a key. Groups appear in the order their key
// is first seen; tracks keep their relative order within a group.
func (q *Queue) Group(key func(*Track) string) {
	var order []string
	groups := make(map[string][]*Track)
	for _, t := range q.Tracks() {
		k := key(t)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], t)
	}

	tracks := make([]*Track, 0, q.Len())
	for _, k := range order {
		tracks = append(tracks, groups[k]...)
	}
	q.setTracks(tracks)
}

// GroupByAlbum groups tracks by lower-cased album name.
func (q *Queue) GroupByAlbum() {
	q.Group(func(t *Track) string { return strings.ToLower(t.Album()) })
}

// GroupByArtist groups tracks by lower-cased main artist.
func (q *Queue) GroupByArtist() {
	q.Group(func(t *Track) string { return strings.ToLower(t.Artist()) })
}

// GroupByEntry groups tracks by lower-cased entry text.
func (q *Queue) GroupByEntry() {
	q.Group(func(t *Track) string { return strings.ToLower(t.Entry()) })
}

func (q *Queue) setTracks(tracks []*Track) {
	elements := make([]Element, len(tracks))
	for i, t := range tracks {
		elements[i] = t
	}
	q.elements = elements
}
