package porter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"gmusicplaylist/internal/adapters"
	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/playlist"
	"gmusicplaylist/internal/utils"
)

// LoginFailurePause is how long Open waits after a rejected login, so the
// message stays readable before the program exits.
const LoginFailurePause = 3 * time.Second

// ErrLoginFailed is returned by Open when the service rejects the login.
var ErrLoginFailed = errors.New("unable to login")

// Options configure a Porter. Zero values pick the interactive defaults.
type Options struct {
	// Logger overrides the global logger, which follows the open log file.
	Logger *zap.Logger
	Codec  utils.Codec
	Order  []string
	// ReadPassword prompts for the password. Defaults to utils.ReadPassword.
	ReadPassword func(prompt string) (string, error)
	// Spinner wraps slow calls. Defaults to utils.WithSpinner.
	Spinner func(ctx context.Context, title string, action func(context.Context) error) error
	// LoginFailurePause overrides LoginFailurePause; negative disables it.
	LoginFailurePause time.Duration
}

// Porter owns one session with a music service: the logged in adapter, the
// log file and whether catalog search is available.
type Porter struct {
	adapter   adapters.ApiAdapter
	opts      Options
	allAccess bool
	logOpen   bool
}

// NewPorter creates a new session using the specified adapter
func NewPorter(adapter adapters.ApiAdapter, opts Options) *Porter {
	if opts.Codec.Sep == 0 {
		opts.Codec = utils.NewCodec(utils.DefaultSeparator)
	}
	if len(opts.Order) == 0 {
		opts.Order = playlist.DefaultOrder
	}
	if opts.ReadPassword == nil {
		opts.ReadPassword = utils.ReadPassword
	}
	if opts.Spinner == nil {
		opts.Spinner = utils.WithSpinner
	}
	if opts.LoginFailurePause == 0 {
		opts.LoginFailurePause = LoginFailurePause
	}
	return &Porter{
		adapter:   adapter,
		opts:      opts,
		allAccess: true,
	}
}

// NewPorterWithCredentials creates a new Porter for the named platform.
func NewPorterWithCredentials(platform string, adapterOpts adapters.Options, opts Options) (*Porter, error) {
	adapter, err := adapters.NewApiAdapter(platform, adapterOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter for platform %s: %w", platform, err)
	}
	return NewPorter(adapter, opts), nil
}

func (p *Porter) log() *zap.Logger {
	if p.opts.Logger != nil {
		return p.opts.Logger
	}
	return logging.GetLogger()
}

// OpenLog starts copying session messages to the file at path.
func (p *Porter) OpenLog(path string) error {
	if err := logging.OpenLog(path); err != nil {
		return err
	}
	p.logOpen = true
	return nil
}

// Open asks for the password and logs in. The password is dropped as soon
// as the adapter has used it.
func (p *Porter) Open(ctx context.Context, username, deviceID string) error {
	p.log().Info(fmt.Sprintf("Logging into %s...", p.adapter.PlatformName()))

	password, err := p.opts.ReadPassword(username + "'s password: ")
	if err != nil {
		return err
	}

	err = p.adapter.Login(ctx, adapters.Credentials{
		Username: username,
		Password: password,
		DeviceID: deviceID,
	})
	password = ""
	if err != nil {
		p.log().Error("unable to login", zap.Error(err))
		p.pause(ctx)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	p.log().Info("Login Successful.")
	if p.log().Core().Enabled(zap.DebugLevel) {
		p.logTrackDetails(ctx)
	}
	return nil
}

func (p *Porter) pause(ctx context.Context) {
	if p.opts.LoginFailurePause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.opts.LoginFailurePause):
	}
}

// logTrackDetails shows which fields a catalog search fills in.
func (p *Porter) logTrackDetails(ctx context.Context) {
	results := p.Search(ctx, "one u2", 1)
	if len(results) == 0 {
		p.log().Debug("Available track details", zap.Strings("fields", []string{playlist.FieldTitle, playlist.FieldArtist, playlist.FieldAlbum}))
		return
	}
	var fields []string
	for name := range results[0].Details() {
		fields = append(fields, name)
	}
	p.log().Debug("Available track details", zap.Strings("fields", fields))
}

// Close logs out and closes the log file. Calling it twice is harmless.
func (p *Porter) Close() error {
	var err error
	if p.adapter != nil && p.adapter.IsAuthenticated() {
		err = p.adapter.Logout()
	}
	if p.logOpen {
		p.logOpen = false
		err = errors.Join(err, logging.CloseLog())
	}
	return err
}

// AllAccess reports whether catalog search is still enabled.
func (p *Porter) AllAccess() bool {
	return p.allAccess
}

// Search queries the service catalog. The first failure means the account
// can't search the catalog; searching is switched off for the rest of the
// session and no results are returned.
func (p *Porter) Search(ctx context.Context, query string, maxResults int) []playlist.Track {
	if !p.allAccess {
		return nil
	}
	results, err := p.adapter.SearchTracks(ctx, query, maxResults)
	if err != nil {
		p.allAccess = false
		p.log().Warn("no all access subscription detected.  all access search disabled.", zap.Error(err))
		return nil
	}
	return results
}

// LoadLibrary loads the user's personal library.
func (p *Porter) LoadLibrary(ctx context.Context) ([]playlist.Track, error) {
	p.log().Info("Loading personal library... ")

	var library []playlist.Track
	err := p.opts.Spinner(ctx, "Loading personal library...", func(ctx context.Context) error {
		var err error
		library, err = p.adapter.GetLibraryTracks(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load personal library: %w", err)
	}

	p.log().Info(fmt.Sprintf("done. %d personal tracks loaded.", len(library)))
	return library, nil
}
