// Package stats counts artists, genres and years over a set of tracks and
// reports the most common ones.
package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.uber.org/zap"

	"gmusicplaylist/internal/playlist"
)

// TopN is how many entries per category get reported.
const TopN = 3

// Count is one counted value.
type Count struct {
	Key   string
	Count int
}

// Counter counts occurrences of strings, remembering first-seen order so
// ties come out in the order they were met.
type Counter struct {
	counts map[string]int
	order  []string
}

// Add counts key once.
func (c *Counter) Add(key string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Get returns how often key was added.
func (c *Counter) Get(key string) int {
	return c.counts[key]
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return len(c.order)
}

// MostCommon returns the n most frequent keys, highest count first.
func (c *Counter) MostCommon(n int) []Count {
	out := make([]Count, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, Count{Key: k, Count: c.counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Stats accumulates listening statistics.
type Stats struct {
	Genres         Counter
	Artists        Counter
	Years          Counter
	TotalPlaycount int
}

// Add records a track. Every track counts toward its artist, even an unnamed
// one. Missing genre or year is normal and simply not counted.
func (s *Stats) Add(t playlist.Track) {
	s.Artists.Add(t.Artist)
	if t.Genre != "" {
		s.Genres.Add(t.Genre)
	}
	if t.Year > 0 {
		s.Years.Add(strconv.Itoa(t.Year))
	}
	s.TotalPlaycount += t.PlayCount
}

// AddDetails records a line read from a playlist file.
func (s *Stats) AddDetails(d playlist.Details) {
	s.Artists.Add(d.Get(playlist.FieldArtist))
	if v := d.Get(playlist.FieldGenre); v != "" {
		s.Genres.Add(v)
	}
	if v := d.Get(playlist.FieldYear); v != "" {
		s.Years.Add(v)
	}
}

// Results are the computed statistics for a set of tracks.
type Results struct {
	Genres        []Count
	Artists       []Count
	Years         []Count
	PlaybackRatio float64
	Tracks        int
}

// Calculate returns the top entries per category and the playback ratio,
// total play count divided by the number of tracks.
func (s *Stats) Calculate(totalTracks int) Results {
	r := Results{
		Genres:  s.Genres.MostCommon(TopN),
		Artists: s.Artists.MostCommon(TopN),
		Years:   s.Years.MostCommon(TopN),
		Tracks:  totalTracks,
	}
	if totalTracks > 0 {
		r.PlaybackRatio = float64(s.TotalPlaycount) / float64(totalTracks)
	}
	return r
}

// Log writes the results the way export and import report them.
func Log(logger *zap.Logger, r Results) {
	logger.Info(fmt.Sprintf("top %d genres: %s", TopN, formatCounts(r.Genres)))
	logger.Info(fmt.Sprintf("top %d artists: %s", TopN, formatCounts(r.Artists)))
	logger.Info(fmt.Sprintf("top %d years: %s", TopN, formatCounts(r.Years)))
	logger.Info(fmt.Sprintf("playlist playback ratio: %s", strconv.FormatFloat(r.PlaybackRatio, 'f', -1, 64)))
}

func formatCounts(counts []Count) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Key, c.Count)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Render draws the results as a table.
func Render(r Results) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Category", "Value", "Tracks"})

	sections := []struct {
		name   string
		counts []Count
	}{
		{"Genre", r.Genres},
		{"Artist", r.Artists},
		{"Year", r.Years},
	}
	for _, sec := range sections {
		if len(sec.counts) == 0 {
			tw.AppendRow(table.Row{sec.name, "-", ""})
		}
		for _, c := range sec.counts {
			tw.AppendRow(table.Row{sec.name, c.Key, c.Count})
		}
		tw.AppendSeparator()
	}
	tw.AppendFooter(table.Row{"Total", "", r.Tracks})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render()
}
