package porter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/stats"
	"gmusicplaylist/internal/utils"
)

// ExportResult summarizes an export run.
type ExportResult struct {
	Files  []string
	Tracks int
}

// ExportPlaylists writes every playlist of the user to its own file in dir
// and logs statistics per playlist and for all of them together.
func (p *Porter) ExportPlaylists(ctx context.Context, dir string) (ExportResult, error) {
	var result ExportResult

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create output directory: %w", err)
	}

	p.log().Info("Loading playlists...")
	playlists, err := p.adapter.GetUserPlaylists(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to get playlists: %w", err)
	}
	p.log().Info(fmt.Sprintf("done. %d playlists loaded.", len(playlists)))

	var overall stats.Stats
	taken := make(map[string]bool)

	for _, pl := range playlists {
		var tracks []playlist.Track
		err := p.opts.Spinner(ctx, "Exporting "+pl.Name+"...", func(ctx context.Context) error {
			var err error
			tracks, err = p.adapter.GetPlaylistItems(ctx, pl.ID)
			return err
		})
		if err != nil {
			return result, fmt.Errorf("failed to get tracks for playlist %s: %w", pl.Name, err)
		}

		path := filepath.Join(dir, exportFileName(pl, taken))
		if err := playlist.WriteFile(path, p.opts.Codec, p.opts.Order, tracks); err != nil {
			return result, err
		}
		result.Files = append(result.Files, path)
		result.Tracks += len(tracks)

		var s stats.Stats
		for _, t := range tracks {
			s.Add(t)
			overall.Add(t)
		}
		p.log().Info(fmt.Sprintf("exported %d tracks from %s", len(tracks), pl.Name), zap.String("file", path))
		stats.Log(p.log(), s.Calculate(len(tracks)))
	}

	p.log().Info(fmt.Sprintf("%d playlists exported, %d tracks total", len(result.Files), result.Tracks))
	if result.Tracks > 0 {
		p.log().Info("overall stats")
		stats.Log(p.log(), overall.Calculate(result.Tracks))
	}
	return result, nil
}

// exportFileName picks a file name for pl that no earlier playlist got,
// numbering it when needed. Names are compared ignoring case so exports to
// case-insensitive filesystems don't overwrite each other.
func exportFileName(pl playlist.Playlist, taken map[string]bool) string {
	base := utils.SanitizeFileName(pl.Name, utils.SanitizeFileName(pl.ID, "playlist"))
	name := base + ".csv"
	for n := 2; taken[strings.ToLower(name)]; n++ {
		name = base + " (" + strconv.Itoa(n) + ").csv"
	}
	taken[strings.ToLower(name)] = true
	return name
}
