package adapters

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gmusicplaylist/internal/logging"
	"gmusicplaylist/internal/utils"
)

const (
	callbackAddr = "localhost:8080"
	redirectURI  = "http://" + callbackAddr + "/callback"
)

// ErrNotAuthenticated is returned by adapter calls made before Login.
var ErrNotAuthenticated = errors.New("not authenticated")

// BaseAdapter provides common functionality for platform adapters
type BaseAdapter struct {
	authenticated bool
	platformName  string
	tokens        TokenCache
	openBrowser   func(string) error
}

// NewBaseAdapter creates a new BaseAdapter
func NewBaseAdapter(platformName string, opts Options) BaseAdapter {
	open := opts.OpenBrowser
	if open == nil {
		open = utils.OpenBrowser
	}
	return BaseAdapter{
		platformName: platformName,
		tokens:       opts.Tokens,
		openBrowser:  open,
	}
}

// SetAuthenticated updates the authentication status
func (b *BaseAdapter) SetAuthenticated(status bool) {
	b.authenticated = status
}

// IsAuthenticated checks if the adapter is authenticated
func (b *BaseAdapter) IsAuthenticated() bool {
	return b.authenticated
}

// CheckAuth ensures the adapter is authenticated before making API calls
func (b *BaseAdapter) CheckAuth() error {
	if !b.IsAuthenticated() {
		return fmt.Errorf("%w with %s, log in first", ErrNotAuthenticated, b.platformName)
	}
	return nil
}

// PlatformName returns the name of the platform
func (b *BaseAdapter) PlatformName() string {
	return b.platformName
}

// newState returns a random string for the OAuth state parameter.
func newState() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// awaitAuthCode sends the user to authURL and waits for the redirect to
// come back to the local callback server with an authorization code.
func (b *BaseAdapter) awaitAuthCode(ctx context.Context, authURL, state string) (string, error) {
	codes := make(chan string, 1)
	failures := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if st := r.FormValue("state"); st != state {
			http.NotFound(w, r)
			notify(failures, fmt.Errorf("state mismatch: %s != %s", st, state))
			return
		}
		code := r.FormValue("code")
		if code == "" {
			http.Error(w, "Couldn't get token", http.StatusForbidden)
			notify(failures, fmt.Errorf("authorization refused: %s", r.FormValue("error")))
			return
		}
		fmt.Fprintf(w, "Login Completed! You can now close this window.")
		notify(codes, code)
	})

	ln, err := net.Listen("tcp", callbackAddr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go srv.Serve(ln)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.Info(fmt.Sprintf("Please log in to %s by visiting the following page in your browser:", b.platformName))
	logging.Info(authURL)
	if err := b.openBrowser(authURL); err != nil {
		logging.Debug("Browser not opened", zap.Error(err))
	}

	select {
	case code := <-codes:
		return code, nil
	case err := <-failures:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func notify[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}
