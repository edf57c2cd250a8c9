package actions

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"gmusicplaylist/internal/config"
	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/stats"
)

// ShowStats prints statistics for a playlist file without logging in.
// Only the file format settings are read from the config file.
func ShowStats(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("missing input-file argument")
	}

	settings := config.LoadSettings(ImportProgram, c.String("config-file"))
	lines, err := playlist.ReadFile(path, settings.Codec, settings.Order)
	if err != nil {
		return err
	}

	var s stats.Stats
	tracks := 0
	for _, line := range lines {
		if line.Details.IsEmpty() {
			continue
		}
		s.AddDetails(line.Details)
		tracks++
	}

	fmt.Fprintln(c.App.Writer, stats.Render(s.Calculate(tracks)))
	return nil
}
