package config

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-ini/ini"

	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/utils"
)

const (
	// DefaultsSection is consulted when a program section lacks a setting.
	DefaultsSection = "defaults"

	defaultFileName = ".gmusic-playlist.ini"

	SettingUsername   = "username"
	SettingDeviceID   = "android_id"
	SettingPlatform   = "platform"
	SettingSeparator  = "separator"
	SettingFieldOrder = "field_order"
)

// DeviceIDLength is the number of hex digits in a generated device id.
const DeviceIDLength = 16

const hexDigits = "0123456789abcdef"

// MissingSettingError is returned when a required setting is neither given
// on the command line nor found in the config file.
type MissingSettingError struct {
	Program string
	Path    string
	Setting string
	Hint    string
}

func (e *MissingSettingError) Error() string {
	return fmt.Sprintf("Specify %s on command line or put it in %q or %q section of %s",
		e.Hint, e.Program, DefaultsSection, e.Path)
}

// DefaultPath returns ~/.gmusic-playlist.ini, or the bare file name when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFileName
	}
	return filepath.Join(home, defaultFileName)
}

func load(path string) (*ini.File, error) {
	return ini.LoadSources(ini.LoadOptions{
		Loose:               true,
		InsensitiveKeys:     true,
		IgnoreInlineComment: true,
	}, path)
}

// Lookup returns setting from the program section of the config file,
// falling back to the defaults section. Any failure, including an unreadable
// file, reads as "not set".
func Lookup(program, path, setting string) (string, bool) {
	cfg, err := load(path)
	if err != nil {
		return "", false
	}
	return lookup(cfg, program, setting)
}

func lookup(cfg *ini.File, program, setting string) (string, bool) {
	for _, name := range []string{program, DefaultsSection} {
		sec, err := cfg.GetSection(name)
		if err != nil {
			continue
		}
		key, err := sec.GetKey(setting)
		if err != nil {
			continue
		}
		return key.Value(), true
	}
	return "", false
}

// ResolveUsername returns the username given on the command line, or the one
// from the config file.
func ResolveUsername(program, path, cli string) (string, error) {
	if cli != "" {
		return cli, nil
	}
	if v, ok := Lookup(program, path, SettingUsername); ok && v != "" {
		return v, nil
	}
	return "", &MissingSettingError{Program: program, Path: path, Setting: SettingUsername, Hint: "username"}
}

// ResolveDeviceID returns the device id to log in with. With create set a new
// id is generated and stored in the defaults section before it is returned.
func ResolveDeviceID(program, path, cli string, create bool) (string, error) {
	if create {
		id := GenerateDeviceID(nil)
		if err := storeDefault(path, SettingDeviceID, id); err != nil {
			return "", err
		}
		return id, nil
	}
	if cli != "" {
		return cli, nil
	}
	if v, ok := Lookup(program, path, SettingDeviceID); ok && v != "" {
		return v, nil
	}
	return "", &MissingSettingError{
		Program: program,
		Path:    path,
		Setting: SettingDeviceID,
		Hint:    "android ID or --create-android-id",
	}
}

// GenerateDeviceID builds a device id from DeviceIDLength digits, each picked
// as int(rnd()*16). rnd defaults to math/rand.
func GenerateDeviceID(rnd func() float64) string {
	if rnd == nil {
		rnd = rand.Float64
	}
	var b strings.Builder
	b.Grow(DeviceIDLength)
	for range DeviceIDLength {
		n := int(rnd() * 16)
		// rnd is expected in [0,1); clamp anything outside it onto a digit
		n = min(max(n, 0), 15)
		b.WriteByte(hexDigits[n])
	}
	return b.String()
}

// storeDefault sets key in the defaults section and rewrites the whole file,
// keeping every other section.
func storeDefault(path, key, value string) error {
	cfg, err := load(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	sec, err := cfg.GetSection(DefaultsSection)
	if err != nil {
		if sec, err = cfg.NewSection(DefaultsSection); err != nil {
			return fmt.Errorf("failed to add %s section: %w", DefaultsSection, err)
		}
	}
	sec.Key(key).SetValue(value)

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// Settings holds the file format options read once at start.
type Settings struct {
	Codec    utils.Codec
	Order    []string
	Platform string
}

// LoadSettings reads separator, field order and platform for program.
func LoadSettings(program, path string) Settings {
	s := Settings{
		Codec: utils.NewCodec(utils.DefaultSeparator),
		Order: append([]string(nil), playlist.DefaultOrder...),
	}
	cfg, err := load(path)
	if err != nil {
		return s
	}
	if v, ok := lookup(cfg, program, SettingSeparator); ok {
		s.Codec = utils.NewCodec(parseSeparator(v))
	}
	if v, ok := lookup(cfg, program, SettingFieldOrder); ok {
		s.Order = playlist.ParseOrder(v)
	}
	if v, ok := lookup(cfg, program, SettingPlatform); ok {
		s.Platform = strings.ToLower(strings.TrimSpace(v))
	}
	return s
}

// parseSeparator accepts a literal character or the escape \t.
func parseSeparator(v string) rune {
	switch v {
	case "":
		return 0
	case `\t`, "tab":
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(v)
	return r
}
