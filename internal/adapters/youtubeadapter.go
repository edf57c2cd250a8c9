package adapters

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/playlist"
)

// youtubePageLimit is the YouTube API maximum per request.
const youtubePageLimit = 50

// youtubeInsertDelay spaces out playlist inserts to stay inside the API quota.
var youtubeInsertDelay = 100 * time.Millisecond

// YouTubeAdapter adapts the YouTube API to our common adapter interface
type YouTubeAdapter struct {
	BaseAdapter
	service  *youtube.Service
	clientID string
}

// NewYouTubeAdapter creates a new YouTubeAdapter. The client id comes from
// opts or the YOUTUBE_CLIENT_ID environment variable.
func NewYouTubeAdapter(opts Options) (*YouTubeAdapter, error) {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = os.Getenv("YOUTUBE_CLIENT_ID")
	}
	if clientID == "" {
		return nil, fmt.Errorf("youtube client ID must be provided or set in the YOUTUBE_CLIENT_ID environment variable")
	}

	return &YouTubeAdapter{
		BaseAdapter: NewBaseAdapter("YouTube", opts),
		clientID:    clientID,
	}, nil
}

// Login authorizes the adapter with the YouTube Data API. YouTube doesn't
// expose the account email, so the username only keys the token cache.
func (a *YouTubeAdapter) Login(ctx context.Context, creds Credentials) error {
	secret := creds.Password
	if secret == "" {
		secret = os.Getenv("YOUTUBE_CLIENT_SECRET")
	}
	if secret == "" {
		return fmt.Errorf("youtube client secret is required")
	}

	config := &oauth2.Config{
		ClientID:     a.clientID,
		ClientSecret: secret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			youtube.YoutubeReadonlyScope,
			youtube.YoutubeScope,
		},
		Endpoint: google.Endpoint,
	}

	platform := string(YoutubePlatform)
	if tok, ok := a.tokens.Load(platform, creds); ok {
		if err := a.connect(ctx, config, tok); err == nil {
			logging.Debug("Using cached YouTube token", zap.String("device_id", creds.DeviceID))
			return nil
		}
		a.tokens.Remove(platform, creds)
	}

	state, err := newState()
	if err != nil {
		return err
	}
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	code, err := a.awaitAuthCode(ctx, authURL, state)
	if err != nil {
		return fmt.Errorf("youtube authorization failed: %w", err)
	}
	tok, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("error exchanging code for token: %w", err)
	}

	if err := a.connect(ctx, config, tok); err != nil {
		return err
	}
	if err := a.tokens.Save(platform, creds, tok); err != nil {
		logging.Warn("Could not cache YouTube token", zap.Error(err))
	}
	return nil
}

// connect builds the service for tok and checks it by reading the user's channel.
func (a *YouTubeAdapter) connect(ctx context.Context, config *oauth2.Config, tok *oauth2.Token) error {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(config.Client(ctx, tok)))
	if err != nil {
		return fmt.Errorf("error creating YouTube client: %w", err)
	}

	channels, err := service.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	if len(channels.Items) > 0 {
		logging.Debug("YouTube channel", zap.String("title", channels.Items[0].Snippet.Title))
	}

	a.service = service
	a.SetAuthenticated(true)
	return nil
}

// Logout drops the authorized service.
func (a *YouTubeAdapter) Logout() error {
	a.service = nil
	a.SetAuthenticated(false)
	return nil
}

// GetLibraryTracks retrieves the videos the user liked
func (a *YouTubeAdapter) GetLibraryTracks(ctx context.Context) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var tracks []playlist.Track
	var nextPageToken string
	for {
		call := a.service.Videos.List([]string{"snippet"}).
			MyRating("like").
			MaxResults(youtubePageLimit).
			Context(ctx)
		if nextPageToken != "" {
			call = call.PageToken(nextPageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("error fetching liked videos: %w", err)
		}
		for _, item := range response.Items {
			tracks = append(tracks, playlist.Track{
				Title:     item.Snippet.Title,
				Artist:    item.Snippet.ChannelTitle,
				LibraryID: item.Id,
			})
		}

		nextPageToken = response.NextPageToken
		if nextPageToken == "" {
			break
		}
	}
	return tracks, nil
}

// GetUserPlaylists retrieves all playlists for the authenticated user
func (a *YouTubeAdapter) GetUserPlaylists(ctx context.Context) ([]playlist.Playlist, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var playlists []playlist.Playlist
	var nextPageToken string

	for {
		call := a.service.Playlists.List([]string{"snippet", "contentDetails"}).
			Mine(true).
			MaxResults(youtubePageLimit).
			Context(ctx)

		if nextPageToken != "" {
			call = call.PageToken(nextPageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("error fetching playlists: %w", err)
		}

		for _, item := range response.Items {
			publishedTime, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
			playlists = append(playlists, playlist.Playlist{
				ID:          item.Id,
				Name:        item.Snippet.Title,
				Description: item.Snippet.Description,
				TrackCount:  int(item.ContentDetails.ItemCount),
				CreatedAt:   publishedTime,
			})
		}

		nextPageToken = response.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	return playlists, nil
}

// GetPlaylistItems retrieves all tracks (videos) in a playlist
func (a *YouTubeAdapter) GetPlaylistItems(ctx context.Context, playlistID string) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	var tracks []playlist.Track
	var nextPageToken string

	for {
		call := a.service.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(youtubePageLimit).
			Context(ctx)

		if nextPageToken != "" {
			call = call.PageToken(nextPageToken)
		}

		response, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("error fetching playlist items: %w", err)
		}

		for _, item := range response.Items {
			tracks = append(tracks, playlist.Track{
				Title:   item.Snippet.Title,
				Artist:  item.Snippet.VideoOwnerChannelTitle,
				StoreID: item.ContentDetails.VideoId,
			})
		}

		nextPageToken = response.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	return tracks, nil
}

// CreateNewPlaylist creates a new private YouTube playlist
func (a *YouTubeAdapter) CreateNewPlaylist(ctx context.Context, name string, description string) (playlist.Playlist, error) {
	if err := a.CheckAuth(); err != nil {
		return playlist.Playlist{}, err
	}

	p := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{
			Title:       name,
			Description: description,
		},
		Status: &youtube.PlaylistStatus{
			PrivacyStatus: "private",
		},
	}

	response, err := a.service.Playlists.Insert([]string{"snippet", "status"}, p).Context(ctx).Do()
	if err != nil {
		return playlist.Playlist{}, fmt.Errorf("error creating playlist: %w", err)
	}
	publishedTime, _ := time.Parse(time.RFC3339, response.Snippet.PublishedAt)
	return playlist.Playlist{
		ID:          response.Id,
		Name:        response.Snippet.Title,
		Description: response.Snippet.Description,
		CreatedAt:   publishedTime,
	}, nil
}

// AddItemsToPlaylist adds videos to a YouTube playlist, one insert per video
func (a *YouTubeAdapter) AddItemsToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if err := a.CheckAuth(); err != nil {
		return err
	}

	for _, id := range trackIDs {
		videoID := VideoID(id)
		playlistItem := &youtube.PlaylistItem{
			Snippet: &youtube.PlaylistItemSnippet{
				PlaylistId: playlistID,
				ResourceId: &youtube.ResourceId{
					Kind:    "youtube#video",
					VideoId: videoID,
				},
			},
		}

		if _, err := a.service.PlaylistItems.Insert([]string{"snippet"}, playlistItem).Context(ctx).Do(); err != nil {
			return fmt.Errorf("error adding video %s to playlist: %w", videoID, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(youtubeInsertDelay):
		}
	}

	return nil
}

// SearchTracks searches for videos on YouTube
func (a *YouTubeAdapter) SearchTracks(ctx context.Context, query string, limit int) ([]playlist.Track, error) {
	if err := a.CheckAuth(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > youtubePageLimit {
		limit = youtubePageLimit
	}

	response, err := a.service.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("error searching for videos: %w", err)
	}

	tracks := make([]playlist.Track, 0, len(response.Items))
	for _, item := range response.Items {
		tracks = append(tracks, playlist.Track{
			Title:   item.Snippet.Title,
			Artist:  item.Snippet.ChannelTitle,
			StoreID: item.Id.VideoId,
		})
	}

	return tracks, nil
}

// VideoID extracts the video id from a watch or youtu.be URL. Anything else
// is returned unchanged.
func VideoID(s string) string {
	switch {
	case strings.Contains(s, "youtube.com/watch?v="):
		parts := strings.SplitN(s, "v=", 2)
		return strings.Split(parts[1], "&")[0]
	case strings.Contains(s, "youtu.be/"):
		parts := strings.SplitN(s, "youtu.be/", 2)
		return strings.Split(parts[1], "?")[0]
	}
	return s
}
