package actions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"gmusicplaylist/internal/adapters"
	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/porter"
	"gmusicplaylist/internal/utils"
)

// ExportPlaylists writes every playlist of the account into the output
// directory, one file per playlist.
func ExportPlaylists(c *cli.Context) error {
	args, err := ParseArgs(c, ExportProgram, "output-directory")
	if err != nil {
		return err
	}
	defer logging.Sync()

	if err := os.MkdirAll(args.Target, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	p, err := newPorter(args)
	if err != nil {
		return err
	}
	defer p.Close()

	logName := fmt.Sprintf("export-%s.log", time.Now().Format("2006-01-02-150405"))
	if err := p.OpenLog(filepath.Join(args.Target, logName)); err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.Open(ctx, args.Username, args.DeviceID); err != nil {
		return err
	}

	_, err = p.ExportPlaylists(ctx, args.Target)
	return err
}

func newPorter(args Args) (*porter.Porter, error) {
	return porter.NewPorterWithCredentials(args.Platform,
		adapters.Options{
			Tokens:      adapters.DefaultTokenCache(),
			OpenBrowser: utils.OpenBrowser,
		},
		porter.Options{
			Codec: args.Settings.Codec,
			Order: args.Settings.Order,
		})
}
