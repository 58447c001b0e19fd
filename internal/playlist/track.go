package playlist

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/zmb3/spotify/v2"

	"smartplaylist/internal/adapters"
)

var (
	spotifyURIRegex   = regexp.MustCompile(`(?i)^spotify:track:([a-zA-Z0-9]+)`)
	spotifyTrackRegex = regexp.MustCompile(`(?i)^https?://open\.spotify\.com/(?:intl-[a-z-]+/)?track/([a-zA-Z0-9]+)`)
)

// Track represents a single song. It starts out as the raw entry text and
// memoizes the metadata fetched for it. A full response always takes
// precedence over a simplified one.
type Track struct {
	entry     string
	albumName string

	full   *spotify.FullTrack
	simple *spotify.SimpleTrack
	lastfm *adapters.TrackInfo

	// searched is set when a free-text search returned nothing.
	searched bool
}

// NewTrack creates a track from an entry: a Spotify URI, a Spotify link
// or a search query such as `Title - Artist`.
func NewTrack(entry string) *Track {
	return &Track{entry: strings.TrimSpace(entry)}
}

func newTrackFromFull(full *spotify.FullTrack) *Track {
	t := &Track{}
	t.SetFull(full)
	t.entry = t.String()
	return t
}

func newTrackFromSimple(simple *spotify.SimpleTrack, album string) *Track {
	t := &Track{albumName: album}
	t.SetSimple(simple)
	t.entry = t.String()
	return t
}

// Entry returns the raw entry text.
func (t *Track) Entry() string { return t.entry }

// Kind implements Entry.
func (t *Track) Kind() EntryKind { return KindTrack }

// Seed implements Entry.
func (t *Track) Seed() string { return t.entry }

// Limit implements Entry. A track always yields itself.
func (t *Track) Limit() int { return 1 }

// SetFull sets the full track object.
func (t *Track) SetFull(full *spotify.FullTrack) { t.full = full }

// SetSimple sets the simplified track object.
func (t *Track) SetSimple(simple *spotify.SimpleTrack) { t.simple = simple }

// SetLastfm sets the Last.fm play counts.
func (t *Track) SetLastfm(info *adapters.TrackInfo) { t.lastfm = info }

// HasFull reports whether the full track object is present.
func (t *Track) HasFull() bool { return t.full != nil }

// HasMetadata reports whether any track object is present.
func (t *Track) HasMetadata() bool { return t.full != nil || t.simple != nil }

// HasLastfm reports whether Last.fm play counts were fetched.
func (t *Track) HasLastfm() bool { return t.lastfm != nil }

// IsResolved reports whether dispatching the track would do nothing:
// it holds metadata, or a search for it came back empty.
func (t *Track) IsResolved() bool { return t.HasMetadata() || t.searched }

// Resolve dispatches the track: a resolved track returns itself untouched,
// otherwise it is looked up by ID or searched for.
func (t *Track) Resolve(ctx context.Context, d *Dispatcher) (Element, error) {
	if t.IsResolved() {
		return t, nil
	}
	if err := t.fetch(ctx, d.catalog); err != nil {
		return nil, err
	}
	return t, nil
}

// Refresh upgrades the track to a full track object.
func (t *Track) Refresh(ctx context.Context, catalog adapters.Catalog) error {
	if t.HasFull() || (t.searched && !t.HasMetadata()) {
		return nil
	}
	return t.fetch(ctx, catalog)
}

func (t *Track) fetch(ctx context.Context, catalog adapters.Catalog) error {
	if id := t.ID(); id != "" {
		full, err := catalog.GetTrack(ctx, id)
		if err != nil {
			return fmt.Errorf("track %q: %w", t.entry, err)
		}
		t.SetFull(full)
		return nil
	}

	results, err := catalog.SearchTrack(ctx, t.entry)
	if err != nil {
		return fmt.Errorf("search %q: %w", t.entry, err)
	}
	t.searched = true
	if len(results) > 0 {
		t.SetFull(&results[0])
	}
	return nil
}

// FetchLastfm fetches Last.fm play counts, personal ones when user is set.
// Tracks without a title or artist are skipped.
func (t *Track) FetchLastfm(ctx context.Context, charts adapters.Charts, user string) error {
	artist, title := t.Artist(), t.Title()
	if artist == "" || title == "" {
		return nil
	}
	info, err := charts.TrackInfo(ctx, artist, title, user)
	if err != nil {
		return fmt.Errorf("last.fm info %q: %w", t.String(), err)
	}
	t.SetLastfm(info)
	return nil
}

// response returns the authoritative track object, or nil.
func (t *Track) response() *spotify.SimpleTrack {
	if t.full != nil {
		return &t.full.SimpleTrack
	}
	return t.simple
}

// ID returns the Spotify ID of the track, or the empty string if not available.
func (t *Track) ID() string {
	if r := t.response(); r != nil && r.ID != "" {
		return string(r.ID)
	}
	if m := spotifyURIRegex.FindStringSubmatch(t.entry); m != nil {
		return m[1]
	}
	if m := spotifyTrackRegex.FindStringSubmatch(t.entry); m != nil {
		return m[1]
	}
	return ""
}

// URI returns the Spotify URI, or the empty string if not available.
func (t *Track) URI() string {
	if r := t.response(); r != nil {
		return string(r.URI)
	}
	return ""
}

// Title returns the track title.
func (t *Track) Title() string {
	if r := t.response(); r != nil {
		return r.Name
	}
	return ""
}

// Artist returns the main artist.
func (t *Track) Artist() string {
	if r := t.response(); r != nil && len(r.Artists) > 0 {
		return strings.TrimSpace(r.Artists[0].Name)
	}
	return ""
}

// Artists returns all the track artists, separated by `, `.
func (t *Track) Artists() string {
	r := t.response()
	if r == nil {
		return ""
	}
	names := make([]string, 0, len(r.Artists))
	for _, a := range r.Artists {
		names = append(names, strings.TrimSpace(a.Name))
	}
	return strings.Join(names, ", ")
}

// HasArtist reports whether any artist name contains artist, ignoring case.
func (t *Track) HasArtist(artist string) bool {
	r := t.response()
	if r == nil {
		return false
	}
	artist = strings.ToLower(strings.TrimSpace(artist))
	for _, a := range r.Artists {
		if strings.Contains(strings.ToLower(strings.TrimSpace(a.Name)), artist) {
			return true
		}
	}
	return false
}

// Album returns the album name, or the empty string if not available.
func (t *Track) Album() string {
	if t.albumName != "" {
		return t.albumName
	}
	if t.full != nil {
		return t.full.Album.Name
	}
	return ""
}

// Duration returns the track duration in ms, or -1.
func (t *Track) Duration() int {
	if r := t.response(); r != nil && r.Duration > 0 {
		return int(r.Duration)
	}
	return -1
}

// DiscNumber returns the disc number, or -1.
func (t *Track) DiscNumber() int {
	if r := t.response(); r != nil && r.DiscNumber > 0 {
		return int(r.DiscNumber)
	}
	return -1
}

// TrackNumber returns the track number, or -1.
func (t *Track) TrackNumber() int {
	if r := t.response(); r != nil && r.TrackNumber > 0 {
		return int(r.TrackNumber)
	}
	return -1
}

// Popularity returns the Spotify popularity, or -1 if not available.
// Only full track objects carry it.
func (t *Track) Popularity() int {
	if t.full != nil {
		return int(t.full.Popularity)
	}
	return -1
}

// Lastfm returns the personal playcount if known, else the global one, else -1.
func (t *Track) Lastfm() int {
	if personal := t.LastfmPersonal(); personal > -1 {
		return personal
	}
	return t.LastfmGlobal()
}

// LastfmGlobal returns the global playcount, or -1.
func (t *Track) LastfmGlobal() int {
	if t.lastfm == nil {
		return -1
	}
	return t.lastfm.Playcount
}

// LastfmPersonal returns the personal playcount, or -1.
func (t *Track) LastfmPersonal() int {
	if t.lastfm == nil {
		return -1
	}
	return t.lastfm.UserPlaycount
}

// Name returns the track name on the form `Title - Artist`.
func (t *Track) Name() string {
	title := t.Title()
	if title == "" {
		return ""
	}
	if artist := t.Artist(); artist != "" {
		return title + " - " + artist
	}
	return title
}

// String returns the name, falling back to the entry text.
func (t *Track) String() string {
	if name := t.Name(); name != "" {
		return name
	}
	return t.entry
}

// Equals reports whether both tracks resolved to the same URI.
func (t *Track) Equals(other *Track) bool {
	uri := t.URI()
	return uri != "" && uri == other.URI()
}

// SimilarTo reports whether the tracks are equal, or failing that,
// whether their display strings match ignoring case.
func (t *Track) SimilarTo(other *Track) bool {
	if t.Equals(other) {
		return true
	}
	return strings.EqualFold(t.String(), other.String())
}
