package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"gmusicplaylist/internal/actions"
)

func main() {
	app := &cli.App{
		Name:  "gmusic-playlist",
		Usage: "Export playlists from a music service to text files and import them back.",
		Before: func(c *cli.Context) error {
			// client ids and secrets may live in a .env file
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "Export all playlists into a directory, one file per playlist",
				ArgsUsage: "<output-directory>",
				Flags:     actions.CommonFlags(),
				Action:    actions.ExportPlaylists,
			},
			{
				Name:      "import",
				Usage:     "Create a playlist from a playlist file",
				ArgsUsage: "<input-file>",
				Flags:     actions.ImportFlags(),
				Action:    actions.ImportList,
			},
			{
				Name:      "stats",
				Usage:     "Show genre, artist and year statistics of a playlist file",
				ArgsUsage: "<input-file>",
				Flags:     []cli.Flag{actions.ConfigFileFlag()},
				Action:    actions.ShowStats,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
