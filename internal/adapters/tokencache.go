package adapters

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"gmusicplaylist/internal/utils"
)

// TokenCache keeps OAuth tokens on disk, one file per platform, user and
// device. An empty Dir turns caching off.
type TokenCache struct {
	Dir string
}

// DefaultTokenCache stores tokens under the user cache directory.
func DefaultTokenCache() TokenCache {
	dir, err := os.UserCacheDir()
	if err != nil {
		return TokenCache{}
	}
	return TokenCache{Dir: filepath.Join(dir, "gmusic-playlist")}
}

func (c TokenCache) path(platform string, creds Credentials) string {
	name := strings.ToLower(strings.Join([]string{platform, creds.Username, creds.DeviceID}, "-"))
	return filepath.Join(c.Dir, utils.SanitizeFileName(name, platform)+".json")
}

// Load returns the cached token, if any.
func (c TokenCache) Load(platform string, creds Credentials) (*oauth2.Token, bool) {
	if c.Dir == "" {
		return nil, false
	}
	data, err := os.ReadFile(c.path(platform, creds))
	if err != nil {
		return nil, false
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, false
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, false
	}
	return &tok, true
}

// Save writes tok to the cache with user-only permissions.
func (c TokenCache) Save(platform string, creds Credentials, tok *oauth2.Token) error {
	if c.Dir == "" || tok == nil {
		return nil
	}
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return fmt.Errorf("failed to create token cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(c.path(platform, creds), data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return nil
}

// Remove forgets the cached token.
func (c TokenCache) Remove(platform string, creds Credentials) {
	if c.Dir == "" {
		return
	}
	_ = os.Remove(c.path(platform, creds))
}
