package playlist

import "strconv"

// Row is the flat, CSV-ready view of a track.
type Row struct {
	URI         string `csv:"uri"`
	Title       string `csv:"title"`
	Artist      string `csv:"artist"`
	Album       string `csv:"album"`
	DiscNumber  string `csv:"disc_number"`
	TrackNumber string `csv:"track_number"`
	Duration    string `csv:"duration_ms"`
	Popularity  string `csv:"popularity"`
	Lastfm      string `csv:"lastfm"`
}

// Row returns the track as a CSV row. Unknown numbers are left empty.
func (t *Track) Row() Row {
	return Row{
		URI:         t.URI(),
		Title:       t.Title(),
		Artist:      t.Artist(),
		Album:       t.Album(),
		DiscNumber:  formatCount(t.DiscNumber()),
		TrackNumber: formatCount(t.TrackNumber()),
		Duration:    formatCount(t.Duration()),
		Popularity:  formatCount(t.Popularity()),
		Lastfm:      formatCount(t.Lastfm()),
	}
}

// Rows returns one row per track, in playlist order.
func (p *Playlist) Rows() []Row {
	tracks := p.Tracks()
	rows := make([]Row, len(tracks))
	for i, t := range tracks {
		rows[i] = t.Row()
	}
	return rows
}

func formatCount(n int) string {
	if n < 0 {
		return ""
	}
	return strconv.Itoa(n)
}
