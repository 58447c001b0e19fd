package playlist

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	lineBreakRegex = regexp.MustCompile(`\r\n|\r|\n`)
	orderRegex     = regexp.MustCompile(`(?i)^#(?:SORT|ORDER)\s+BY\b\s*(.*)$`)
	groupRegex     = regexp.MustCompile(`(?i)^#GROUP\s+BY\b\s*(.*)$`)
	uniqueRegex    = regexp.MustCompile(`(?i)^#UNIQUE\b`)
	commentRegex   = regexp.MustCompile(`(?i)^(?:##|#EXTM3U)`)
	entryRegex     = regexp.MustCompile(`(?i)^#(ALBUM|ARTIST|TOP|SIMILAR)([0-9]*)\s+(.*)$`)
	extinfRegex    = regexp.MustCompile(`(?i)^#EXTINF:-?[0-9.]+,(.*)$`)
)

// Parse builds a playlist from directive text. Parsing never fails:
// unknown directives are dropped.
func Parse(text string) *Playlist {
	p := New()
	lines := lineBreakRegex.Split(text, -1)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case line == "":
		case commentRegex.MatchString(line):
		case orderRegex.MatchString(line):
			p.Ordering = strings.ToLower(strings.TrimSpace(orderRegex.FindStringSubmatch(line)[1]))
		case groupRegex.MatchString(line):
			p.Grouping = strings.ToLower(strings.TrimSpace(groupRegex.FindStringSubmatch(line)[1]))
		case uniqueRegex.MatchString(line):
			p.Unique = true
		case entryRegex.MatchString(line):
			m := entryRegex.FindStringSubmatch(line)
			if e := newEntry(m[1], m[2], m[3]); e != nil {
				p.Entries.Add(e)
			}
		case extinfRegex.MatchString(line):
			title := strings.TrimSpace(extinfRegex.FindStringSubmatch(line)[1])
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if next != "" && !strings.HasPrefix(next, "#") {
					i++
					if title == "" {
						title = next
					}
				}
			}
			if title != "" {
				p.Entries.Add(NewTrack(title))
			}
		case strings.HasPrefix(line, "#"):
		default:
			p.Entries.Add(NewTrack(line))
		}
	}
	return p
}

func newEntry(kind, limit, seed string) Entry {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return nil
	}
	n, _ := strconv.Atoi(limit)

	switch strings.ToUpper(kind) {
	case "ALBUM":
		return NewAlbum(seed, n)
	case "ARTIST":
		return NewArtist(seed, n)
	case "TOP":
		return NewTop(seed, n)
	case "SIMILAR":
		return NewSimilar(seed, n)
	}
	return nil
}
