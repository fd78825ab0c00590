package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/nboxhq/nbox/internal/config"
	"github.com/nboxhq/nbox/internal/nbox"
	"github.com/nboxhq/nbox/internal/output"
	"github.com/nboxhq/nbox/internal/secrets"
)

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	Username string `help:"Username" short:"u"`
	Password string `help:"Password (prompted when omitted)" short:"p"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(cfg *config.Config, sp *ServiceProvider, globals *Globals) error {
	if cfg.ServerURL == "" {
		return &output.CLIError{
			Message: "Server URL not configured.\n\n" +
				"Run: nbox config set server_url https://nbox.example.com",
			ExitCode: output.ExitConfigError,
		}
	}

	username := cmd.Username
	if username == "" {
		if globals.NoInput {
			return &output.CLIError{
				Message:  "Username required (prompts disabled)",
				ExitCode: output.ExitUsage,
			}
		}
		fmt.Fprint(os.Stderr, "Username: ")
		reader := bufio.NewReader(os.Stdin)
		line, _ := reader.ReadString('\n')
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return &output.CLIError{
			Message:  "Username is required",
			ExitCode: output.ExitUsage,
		}
	}

	password := cmd.Password
	if password == "" {
		if globals.NoInput {
			return &output.CLIError{
				Message:  "Password required (prompts disabled)",
				ExitCode: output.ExitUsage,
			}
		}
		fmt.Fprint(os.Stderr, "Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return &output.CLIError{
				Message:  fmt.Sprintf("Failed to read password: %v", err),
				ExitCode: output.ExitGeneral,
			}
		}
		password = string(raw)
	}

	ctx := context.Background()
	token, err := nbox.Login(ctx, cfg.ServerURL, username, password)
	if err != nil {
		if errors.Is(err, nbox.ErrUnauthorized) {
			return &output.CLIError{
				Message:  "Login failed: invalid credentials",
				ExitCode: output.ExitAuth,
			}
		}
		return &output.CLIError{
			Message:  fmt.Sprintf("Login failed: %v", err),
			ExitCode: output.ExitAuth,
		}
	}

	tokens, err := sp.Tokens()
	if err != nil {
		return err
	}
	if err := tokens.Save(token, cfg.ServerURL, username); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to save token: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(os.Stderr, "Authenticated successfully\n")
	fmt.Fprintf(os.Stderr, "Server: %s\n", cfg.ServerURL)

	// Report storage backend
	storageType := "keyring"
	if secrets.IsWSL() || secrets.IsHeadless() {
		storageType = "encrypted file"
	}
	fmt.Fprintf(os.Stderr, "Token stored in %s\n", storageType)

	return nil
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct{}

// Run executes the logout command
func (cmd *AuthLogoutCmd) Run(sp *ServiceProvider) error {
	tokens, err := sp.Tokens()
	if err != nil {
		return err
	}

	if err := tokens.Clear(); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to clear token: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	fmt.Fprintf(os.Stderr, "Logged out, token removed\n")
	return nil
}

// AuthStatusCmd implements the auth status command
type AuthStatusCmd struct {
	Check bool `help:"Validate the stored token against the server" short:"c"`
}

// Run executes the status command
func (cmd *AuthStatusCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	tokens, err := sp.Tokens()
	if err != nil {
		return err
	}

	server, username, savedAt, err := tokens.Session()
	if err != nil {
		return &output.CLIError{
			Message:  "No active session found",
			ExitCode: output.ExitAuth,
			Hint:     "Run: nbox auth login",
		}
	}

	status := struct {
		Server   string
		Username string
		LoggedIn string
		Valid    string
	}{
		Server:   server,
		Username: username,
		LoggedIn: savedAt.Format(time.RFC3339),
		Valid:    "unknown",
	}

	if cmd.Check {
		entries, err := sp.Entries()
		if err != nil {
			return err
		}
		if err := entries.ValidateToken(context.Background()); err != nil {
			if errors.Is(err, nbox.ErrUnauthorized) {
				status.Valid = "no"
			} else {
				return apiError(err)
			}
		} else {
			status.Valid = "yes"
		}
	}

	return fp.Formatter.Print(status)
}
