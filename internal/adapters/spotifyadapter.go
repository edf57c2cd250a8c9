package adapters

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"

	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/playlist"
)

// spotifyPageLimit is the Spotify API maximum per request.
const spotifyPageLimit = 50

// SpotifyAdapter adapts the Spotify API to our common adapter interface
type SpotifyAdapter struct {
	BaseAdapter // Embed the BaseAdapter
	client      *spotify.Client
	clientID    string
	userID      string
}

// NewSpotifyAdapter creates a new SpotifyAdapter. The client id comes from
// opts or the SPOTIFY_ID environment variable.
func NewSpotifyAdapter(opts Options) (*SpotifyAdapter, error) {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = os.Getenv("SPOTIFY_ID")
	}
	if clientID == "" {
		return nil, fmt.Errorf("spotify client ID must be provided or set in the SPOTIFY_ID environment variable")
	}

	return &SpotifyAdapter{
		BaseAdapter: NewBaseAdapter("Spotify", opts),
		clientID:    clientID,
	}, nil
}

// Login authorizes the adapter for creds.Username. A token cached for the
// same user and device is tried first; otherwise the browser flow runs.
func (a *SpotifyAdapter) Login(ctx context.Context, creds Credentials) error {
	secret := creds.Password
	if secret == "" {
		secret = os.Getenv("SPOTIFY_SECRET")
	}
	if secret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	auth := spotifyauth.New(
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserReadEmail,
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopePlaylistReadPrivate,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
		spotifyauth.WithClientID(a.clientID),
		spotifyauth.WithClientSecret(secret),
	)

	platform := string(SpotifyPlatform)
	if tok, ok := a.tokens.Load(platform, creds); ok {
		client := spotify.New(auth.Client(ctx, tok))
		if err := a.verifyUser(ctx, client, creds.Username); err == nil {
			logging.Debug("Using cached Spotify token", zap.String("device_id", creds.DeviceID))
			return nil
		}
		a.tokens.Remove(platform, creds)
	}

	state, err := newState()
	if err != nil {
		return err
	}
	code, err := a.awaitAuthCode(ctx, auth.AuthURL(state), state)
	if err != nil {
		return fmt.Errorf("spotify authorization failed: %w", err)
	}
	tok, err := auth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("spotify token exchange failed: %w", err)
	}

	client := spotify.New(auth.Client(ctx, tok))
	if err := a.verifyUser(ctx, client, creds.Username); err != nil {
		return err
	}
	if err := a.tokens.Save(platform, creds, tok); err != nil {
		logging.Warn("Could not cache Spotify token", zap.Error(err))
	}
	return nil
}

// verifyUser checks that the token belongs to username (matched against the
// account id or email) and marks the adapter authenticated.
func (a *SpotifyAdapter) verifyUser(ctx context.Context, client *spotify.Client, username string) error {
	user, err := client.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if username != "" && !strings.EqualFold(user.ID, username) && !strings.EqualFold(user.Email, username) {
		return fmt.Errorf("authorized as %s, not %s", user.ID, username)
	}

	a.client = client
	a.userID = user.ID
	a.SetAuthenticated(true)
	logging.Debug("Spotify user", zap.String("id", user.ID))
	return nil
}

// Logout drops the authorized client.
func (a *SpotifyAdapter) Logout() error {
	a.client = nil
	a.userID = ""
	a.SetAuthenticated(false)
	return nil
}

// GetLibraryTracks retrieves the user's saved tracks
func (a *SpotifyAdapter) GetLibraryTracks(ctx context.Context) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var tracks []playlist.Track
	offset := 0
	for {
		page, err := a.client.CurrentUsersTracks(ctx, spotify.Limit(spotifyPageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("error getting saved tracks: %w", err)
		}
		for _, saved := range page.Tracks {
			tracks = append(tracks, spotifyTrack(saved.FullTrack))
		}
		if len(page.Tracks) < spotifyPageLimit {
			break
		}
		offset += spotifyPageLimit
	}
	return tracks, nil
}

// GetUserPlaylists retrieves all playlists for the authenticated user
func (a *SpotifyAdapter) GetUserPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var allPlaylists []playlist.Playlist
	offset := 0
	for {
		playlistPage, err := a.client.CurrentUsersPlaylists(ctx, spotify.Limit(spotifyPageLimit), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("error getting playlists: %w", err)
		}

		for _, p := range playlistPage.Playlists {
			allPlaylists = append(allPlaylists, playlist.Playlist{
				ID:          string(p.ID),
				Name:        p.Name,
				Description: p.Description,
				TrackCount:  int(p.Tracks.Total),
			})
		}

		if len(playlistPage.Playlists) < spotifyPageLimit {
			break
		}
		offset += spotifyPageLimit
	}

	return allPlaylists, nil
}

// GetPlaylistItems retrieves all tracks in a playlist. Podcast episodes are skipped.
func (a *SpotifyAdapter) GetPlaylistItems(ctx context.Context, playlistID string) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var tracks []playlist.Track
	offset := 0
	for {
		playlistItems, err := a.client.GetPlaylistItems(
			ctx,
			spotify.ID(playlistID),
			spotify.Limit(spotifyPageLimit),
			spotify.Offset(offset),
		)
		if err != nil {
			return nil, fmt.Errorf("error getting playlist items: %w", err)
		}

		for _, item := range playlistItems.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, spotifyTrack(*item.Track.Track))
		}

		if len(playlistItems.Items) < spotifyPageLimit {
			break
		}
		offset += spotifyPageLimit
	}

	return tracks, nil
}

// CreateNewPlaylist creates a new private Spotify playlist
func (a *SpotifyAdapter) CreateNewPlaylist(ctx context.Context, name string, description string) (playlist.Playlist, error) {
	if err := a.CheckAuth(); err != nil {
		return playlist.Playlist{}, err
	}

	p, err := a.client.CreatePlaylistForUser(ctx, a.userID, name, description, false, false)
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("error creating playlist: %w", err)
	}

	return playlist.Playlist{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   time.Now(),
	}, nil
}

// AddItemsToPlaylist adds tracks to a Spotify playlist. Callers keep
// batches at or below 100 ids.
func (a *SpotifyAdapter) AddItemsToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := a.CheckAuth(); err != nil {
		return err
	}

	ids := make([]spotify.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotify.ID(id))
	}

	if _, err := a.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids...); err != nil {
		return fmt.Errorf("error adding tracks to playlist: %w", err)
	}
	return nil
}

// SearchTracks searches the Spotify catalog for tracks
func (a *SpotifyAdapter) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > spotifyPageLimit {
		limit = spotifyPageLimit
	}

	results, err := a.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("error searching tracks: %w", err)
	}
	if results.Tracks == nil {
		return nil, nil
	}

	tracks := make([]playlist.Track, 0, len(results.Tracks.Tracks))
	for _, item := range results.Tracks.Tracks {
		tracks = append(tracks, spotifyTrack(item))
	}
	return tracks, nil
}

// spotifyTrack keeps the fields playlist files care about. Spotify has no
// per-track genre or play count.
func spotifyTrack(t spotify.FullTrack) playlist.Track {
	artists := make([]string, 0, len(t.Artists))
	for _, artist := range t.Artists {
		artists = append(artists, artist.Name)
	}

	return playlist.Track{
		Title:   t.Name,
		Artist:  strings.Join(artists, ", "),
		Album:   t.Album.Name,
		Year:    releaseYear(t.Album.ReleaseDate),
		StoreID: string(t.ID),
	}
}

// releaseYear reads the year out of "1991", "1991-11" or "1991-11-18".
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
