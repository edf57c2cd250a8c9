package actions

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"

	"gmusicplaylist/internal/adapters"
	"gmusicplaylist/internal/config"
	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/utils"
)

// Config file sections read by each command.
const (
	ExportProgram = "ExportPlaylists"
	ImportProgram = "ImportList"
)

// Args are the resolved settings of one export or import run.
type Args struct {
	ConfigFile string
	Username   string
	DeviceID   string
	Platform   string
	Target     string
	Debug      bool
	Settings   config.Settings
}

// CommonFlags returns the flags shared by commands that log in.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFileFlag(),
		&cli.StringFlag{
			Name:  "username",
			Usage: "service username",
		},
		&cli.StringFlag{
			Name:  "android-id",
			Usage: "device id to log in with",
		},
		&cli.BoolFlag{
			Name:  "create-android-id",
			Usage: "generate a new device id and save it in the config file",
		},
		&cli.StringFlag{
			Name:  "platform",
			Usage: "music service to use (spotify or youtube)",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
}

// ConfigFileFlag is the --config-file flag.
func ConfigFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config-file",
		Aliases: []string{"cf"},
		Usage:   "config file to read settings from",
		Value:   config.DefaultPath(),
	}
}

var errDeviceIDConflict = errors.New("--android-id and --create-android-id can't be used together")

// ParseArgs resolves the settings for program from the command line and the
// config file. target names the positional argument for error messages.
func ParseArgs(c *cli.Context, program, target string) (Args, error) {
	args := Args{
		ConfigFile: c.String("config-file"),
		Target:     c.Args().First(),
		Debug:      c.Bool("debug"),
	}
	if args.Target == "" {
		return args, fmt.Errorf("missing %s argument", target)
	}
	if c.IsSet("android-id") && c.Bool("create-android-id") {
		return args, errDeviceIDConflict
	}

	level := "info"
	if args.Debug {
		level = "debug"
	}
	if err := logging.Initialize(level); err != nil {
		return args, err
	}

	var err error
	if args.Username, err = config.ResolveUsername(program, args.ConfigFile, c.String("username")); err != nil {
		return args, err
	}
	if args.DeviceID, err = config.ResolveDeviceID(program, args.ConfigFile, c.String("android-id"), c.Bool("create-android-id")); err != nil {
		return args, err
	}

	args.Settings = config.LoadSettings(program, args.ConfigFile)
	args.Platform, err = choosePlatform(c.String("platform"), args.Settings.Platform)
	if err != nil {
		return args, err
	}
	logging.Debug(fmt.Sprintf("using %s as %s on %s", args.ConfigFile, args.Username, args.Platform))
	return args, nil
}

// choosePlatform prefers the flag, then the config file. With neither the
// user is asked when a terminal is attached.
func choosePlatform(flag, configured string) (string, error) {
	platform := strings.ToLower(strings.TrimSpace(flag))
	if platform == "" {
		platform = configured
	}
	if platform != "" {
		return platform, nil
	}
	if !utils.IsInteractive() {
		return string(adapters.DefaultPlatform), nil
	}

	err := huh.NewSelect[string]().
		Title("Choose the music service").
		Options(
			huh.NewOption("Spotify", string(adapters.SpotifyPlatform)),
			huh.NewOption("YouTube Music", string(adapters.YoutubePlatform)),
		).
		Value(&platform).
		Run()
	if err != nil {
		return "", fmt.Errorf("platform prompt: %w", err)
	}
	return platform, nil
}
