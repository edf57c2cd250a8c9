package porter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/stats"
)

const (
	// addBatchSize is the most ids one AddItemsToPlaylist call takes.
	addBatchSize = 100
	// searchResults is how many catalog results are considered per line.
	searchResults = 10
)

// ErrNothingToImport is returned when no line of the file matched a track.
var ErrNothingToImport = errors.New("no tracks found to import")

// ImportResult summarizes an import run.
type ImportResult struct {
	Playlist playlist.Playlist
	Found    int
	NotFound int
}

// library indexes the personal library for lookups by id and by name.
type library struct {
	byID   map[string]playlist.Track
	byName map[string]playlist.Track
}

func newLibrary(tracks []playlist.Track) library {
	lib := library{
		byID:   make(map[string]playlist.Track, len(tracks)),
		byName: make(map[string]playlist.Track, len(tracks)),
	}
	for _, t := range tracks {
		for _, id := range []string{t.StoreID, t.LibraryID} {
			if id != "" {
				lib.byID[id] = t
			}
		}
		if key := nameKey(t.Artist, t.Title); key != "" {
			if _, ok := lib.byName[key]; !ok {
				lib.byName[key] = t
			}
		}
	}
	return lib
}

func nameKey(artist, title string) string {
	artist = strings.ToLower(strings.TrimSpace(artist))
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return ""
	}
	return artist + "\x00" + title
}

// PlaylistName derives a playlist name from the input file name.
func PlaylistName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ImportPlaylist creates a playlist named name from the file at path.
// Each line is matched by song id, then against the personal library by
// artist and title, then by a catalog search.
func (p *Porter) ImportPlaylist(ctx context.Context, path, name string) (ImportResult, error) {
	var result ImportResult
	if name == "" {
		name = PlaylistName(path)
	}

	lines, err := playlist.ReadFile(path, p.opts.Codec, p.opts.Order)
	if err != nil {
		return result, err
	}
	p.log().Info(fmt.Sprintf("%d tracks to import from %s", len(lines), path))

	tracks, err := p.LoadLibrary(ctx)
	if err != nil {
		return result, err
	}
	lib := newLibrary(tracks)

	var ids []string
	var s stats.Stats
	for _, line := range lines {
		if line.Details.IsEmpty() {
			result.NotFound++
			p.log().Warn(fmt.Sprintf("skipping malformed line %d: %s", line.Number, line.Raw))
			continue
		}

		track, ok := p.resolve(ctx, line.Details, lib)
		if !ok {
			result.NotFound++
			p.log().Info(fmt.Sprintf("- not found: %s", line.Raw))
			continue
		}

		result.Found++
		ids = append(ids, track.SongID())
		s.Add(track)
		p.log().Info("+ " + playlist.EncodeDetails(p.opts.Codec, track.Details(), p.opts.Order, true))
	}

	p.log().Info(fmt.Sprintf("%d/%d tracks found", result.Found, len(lines)))
	if len(ids) == 0 {
		return result, ErrNothingToImport
	}

	description := fmt.Sprintf("Playlist imported via gmusic-playlist on %s", time.Now().Format("2006-01-02"))
	pl, err := p.adapter.CreateNewPlaylist(ctx, name, description)
	if err != nil {
		return result, fmt.Errorf("error creating playlist: %w", err)
	}
	result.Playlist = pl

	for start := 0; start < len(ids); start += addBatchSize {
		end := min(start+addBatchSize, len(ids))
		if err := p.adapter.AddItemsToPlaylist(ctx, pl.ID, ids[start:end]); err != nil {
			return result, fmt.Errorf("error adding tracks to playlist: %w", err)
		}
	}

	p.log().Info(fmt.Sprintf("Successfully imported playlist '%s' with %d tracks", name, result.Found))
	if result.NotFound > 0 {
		p.log().Info(fmt.Sprintf("Skipped %d lines that could not be matched", result.NotFound))
	}
	stats.Log(p.log(), s.Calculate(result.Found))
	return result, nil
}

// resolve finds the track a line describes.
func (p *Porter) resolve(ctx context.Context, d playlist.Details, lib library) (playlist.Track, bool) {
	if id := d.Get(playlist.FieldSongID); id != "" {
		if t, ok := lib.byID[id]; ok {
			return t, true
		}
		// ids are trusted as given even when the library doesn't hold them
		return playlist.Track{
			Title:   d.Get(playlist.FieldTitle),
			Artist:  d.Get(playlist.FieldArtist),
			Album:   d.Get(playlist.FieldAlbum),
			StoreID: id,
		}, true
	}

	title := d.Get(playlist.FieldTitle)
	if t, ok := lib.byName[nameKey(d.Get(playlist.FieldArtist), title)]; ok {
		return t, true
	}

	query := d.SearchString()
	if query == "" {
		return playlist.Track{}, false
	}
	results := p.Search(ctx, query, searchResults)
	if len(results) == 0 {
		return playlist.Track{}, false
	}
	for _, r := range results {
		if strings.EqualFold(strings.TrimSpace(r.Title), title) {
			return r, true
		}
	}
	return results[0], true
}
