package actions

import (
	"context"

	"github.com/urfave/cli/v2"

	"gmusicplaylist/internal/logging"
)

// ImportFlags are the flags of the import command besides the common ones.
func ImportFlags() []cli.Flag {
	return append(CommonFlags(), &cli.StringFlag{
		Name:  "name",
		Usage: "name of the new playlist (defaults to the file name)",
	})
}

// ImportList creates a playlist from a playlist file. The session log is
// written next to the input as <input-file>.log.
func ImportList(c *cli.Context) error {
	args, err := ParseArgs(c, ImportProgram, "input-file")
	if err != nil {
		return err
	}
	defer logging.Sync()

	p, err := newPorter(args)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.OpenLog(args.Target + ".log"); err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if err := p.Open(ctx, args.Username, args.DeviceID); err != nil {
		return err
	}

	_, err = p.ImportPlaylist(ctx, args.Target, c.String("name"))
	return err
}
