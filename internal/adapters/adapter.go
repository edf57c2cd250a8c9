package adapters

import (
	"context"
	"fmt"
	"strings"

	"gmusicplaylist/internal/playlist"
)

// Credentials identify the account and device a session logs in with.
// For OAuth platforms Password carries the application client secret; it is
// asked for on every run so it never has to be written down.
type Credentials struct {
	Username string
	Password string
	DeviceID string
}

// ApiAdapter defines the interface for adapting different music platform APIs
// to a common interface that can be used by the application
type ApiAdapter interface {
	// Authentication methods
	Login(ctx context.Context, creds Credentials) error
	Logout() error
	IsAuthenticated() bool
	PlatformName() string

	// Library and playlist methods
	GetLibraryTracks(ctx context.Context) ([]playlist.Track, error)
	GetUserPlaylists(ctx context.Context) ([]playlist.Playlist, error)
	GetPlaylistItems(ctx context.Context, playlistID string) ([]playlist.Track, error)
	CreateNewPlaylist(ctx context.Context, name string, description string) (playlist.Playlist, error)
	AddItemsToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error

	// Search functionality
	SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error)
}

// PlatformType represents the supported music platforms
type PlatformType string

const (
	SpotifyPlatform PlatformType = "spotify"
	YoutubePlatform PlatformType = "youtube"
)

// DefaultPlatform is used when neither the command line nor the config file
// names one.
const DefaultPlatform = SpotifyPlatform

// Options carry what adapters need besides the user's credentials.
type Options struct {
	// ClientID overrides the client id read from the environment.
	ClientID string
	// Tokens caches OAuth tokens between runs. The zero value disables caching.
	Tokens TokenCache
	// OpenBrowser opens the authorization page. Defaults to the system browser.
	OpenBrowser func(url string) error
}

// NewApiAdapter is a factory function that creates a new adapter for the specified platform
func NewApiAdapter(platform string, opts Options) (ApiAdapter, error) {
	p := PlatformType(strings.ToLower(strings.TrimSpace(platform)))
	if p == "" {
		p = DefaultPlatform
	}
	switch p {
	case SpotifyPlatform:
		return NewSpotifyAdapter(opts)
	case YoutubePlatform:
		return NewYouTubeAdapter(opts)
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}
