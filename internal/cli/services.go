package cli

import (
	"fmt"
	"sync"

	"github.com/nboxhq/nbox/internal/auth"
	"github.com/nboxhq/nbox/internal/config"
	"github.com/nboxhq/nbox/internal/nbox"
	"github.com/nboxhq/nbox/internal/output"
	"github.com/nboxhq/nbox/internal/secrets"
)

// ServiceProvider lazily creates and caches the token store and API client.
type ServiceProvider struct {
	cfg *config.Config

	tokensOnce sync.Once
	tokens     *auth.TokenStore
	tokensErr  error

	entriesOnce sync.Once
	entries     nbox.EntryService
	entriesErr  error
}

// NewServiceProvider creates a ServiceProvider with the given config.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{cfg: cfg}
}

// Tokens returns the TokenStore, creating it on first call.
func (sp *ServiceProvider) Tokens() (*auth.TokenStore, error) {
	sp.tokensOnce.Do(func() {
		store, err := secrets.NewStore()
		if err != nil {
			sp.tokensErr = &output.CLIError{
				ExitCode: output.ExitGeneral,
				Message:  fmt.Sprintf("Failed to initialize secrets store: %v", err),
			}
			return
		}

		tokens, err := auth.NewTokenStore(store)
		if err != nil {
			sp.tokensErr = &output.CLIError{
				ExitCode: output.ExitGeneral,
				Message:  fmt.Sprintf("Failed to initialize token store: %v", err),
			}
			return
		}

		sp.tokens = tokens
	})
	return sp.tokens, sp.tokensErr
}

// Entries returns the EntryService, creating it on first call.
func (sp *ServiceProvider) Entries() (nbox.EntryService, error) {
	sp.entriesOnce.Do(func() {
		tokens, err := sp.Tokens()
		if err != nil {
			sp.entriesErr = err
			return
		}

		if sp.cfg.ServerURL == "" {
			sp.entriesErr = &output.CLIError{
				ExitCode: output.ExitConfigError,
				Message:  "Server URL not configured.\n\nRun: nbox config set server_url https://nbox.example.com",
			}
			return
		}

		client, err := nbox.NewClient(sp.cfg, tokens.Source())
		if err != nil {
			sp.entriesErr = &output.CLIError{
				ExitCode: output.ExitConfigError,
				Message:  fmt.Sprintf("Failed to create API client: %v", err),
			}
			return
		}

		sp.entries = client
	})
	return sp.entries, sp.entriesErr
}
