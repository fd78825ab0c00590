package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"golang.org/x/oauth2"

	"github.com/nboxhq/nbox/internal/output"
	"github.com/nboxhq/nbox/internal/secrets"
)

// tokenKey is the secrets-store key the bearer token lives under
const tokenKey = "api_token"

// ErrNoToken is returned when no token has been stored yet
var ErrNoToken = errors.New("no authentication token found")

// TokenStore persists the Nbox bearer token in the secrets store and keeps
// non-sensitive session metadata in a cache file. Writes are guarded by a
// file lock so concurrent nbox invocations don't clobber each other.
type TokenStore struct {
	store     secrets.Store
	cachePath string
	lockPath  string
}

// sessionInfo is the metadata structure stored in the cache file.
// The token itself never touches this file.
type sessionInfo struct {
	Server   string    `json:"server"`
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

// NewTokenStore creates a token store backed by the given secrets store
func NewTokenStore(store secrets.Store) (*TokenStore, error) {
	cachePath := filepath.Join(xdg.CacheHome, "nbox", "session.json")
	lockPath := cachePath + ".lock"

	// Ensure cache directory exists
	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &TokenStore{
		store:     store,
		cachePath: cachePath,
		lockPath:  lockPath,
	}, nil
}

// withLock runs fn while holding the session file lock
func (ts *TokenStore) withLock(fn func() error) error {
	lock := flock.New(ts.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock: timeout")
	}
	defer lock.Unlock()

	return fn()
}

// Save stores the bearer token and records session metadata
func (ts *TokenStore) Save(token, server, username string) error {
	return ts.withLock(func() error {
		if err := ts.store.Set(tokenKey, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		info := sessionInfo{
			Server:   server,
			Username: username,
			SavedAt:  time.Now().UTC(),
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(ts.cachePath, data, 0600)
	})
}

// Load returns the stored bearer token, or ErrNoToken if absent
func (ts *TokenStore) Load() (string, error) {
	token, err := ts.store.Get(tokenKey)
	if err != nil {
		if err == secrets.ErrNotFound {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// Session returns the stored session metadata, if any
func (ts *TokenStore) Session() (server, username string, savedAt time.Time, err error) {
	data, err := os.ReadFile(ts.cachePath)
	if err != nil {
		return "", "", time.Time{}, err
	}

	var info sessionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return "", "", time.Time{}, err
	}

	return info.Server, info.Username, info.SavedAt, nil
}

// Clear removes the stored token and session metadata (used by logout)
func (ts *TokenStore) Clear() error {
	return ts.withLock(func() error {
		if err := ts.store.Delete(tokenKey); err != nil && err != secrets.ErrNotFound {
			return fmt.Errorf("failed to delete token: %w", err)
		}

		if err := os.Remove(ts.cachePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}

		return nil
	})
}

// Source returns an oauth2.TokenSource backed by this store.
// The API client pulls the token through this on every request, so a token
// saved by a concurrent login is picked up without restarting.
func (ts *TokenStore) Source() oauth2.TokenSource {
	return &storeTokenSource{ts: ts}
}

type storeTokenSource struct {
	ts *TokenStore
}

// Token implements oauth2.TokenSource
func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.ts.Load()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return nil, &output.CLIError{
				Message:  "No authentication token found. Run: nbox auth login",
				ExitCode: output.ExitAuth,
			}
		}
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}
