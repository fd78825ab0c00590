package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/nboxhq/nbox/internal/config"
	"github.com/nboxhq/nbox/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
}

// CLI is the root command structure
type CLI struct {
	Globals

	Auth    AuthCmd    `cmd:"" help:"Authentication commands"`
	Config  ConfigCmd  `cmd:"" help:"Configuration commands"`
	Entry   EntryCmd   `cmd:"" help:"Read and write single entries"`
	Load    LoadCmd    `cmd:"" help:"Bulk-load entries from a manifest or .env file"`
	Version VersionCmd `cmd:"" help:"Show version information"`

	InstallCompletions kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
}

// BeforeApply hook runs before any command execution.
// It loads config, creates the formatter, and binds dependencies.
func (c *CLI) BeforeApply(ctx *kong.Context) error {
	// Load config from XDG path (returns defaults if missing)
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Create output formatter
	formatter := &FormatterProvider{
		Formatter: output.New(c.ResolvedOutput(cfg)),
	}

	// Bind dependencies to kong context
	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(NewServiceProvider(cfg))

	return nil
}

// AuthCmd holds authentication subcommands
type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Log in to the Nbox server"`
	Logout AuthLogoutCmd `cmd:"" help:"Log out and remove the stored token"`
	Status AuthStatusCmd `cmd:"" help:"Show and validate the current session"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd   `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd   `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd `cmd:"" help:"Remove a configuration value"`
	List  ConfigListCmd  `cmd:"" help:"List all configuration values"`
	Path  ConfigPathCmd  `cmd:"" help:"Show config file path"`
}

// EntryCmd holds entry subcommands
type EntryCmd struct {
	Get    EntryGetCmd    `cmd:"" help:"Get a single entry by key"`
	List   EntryListCmd   `cmd:"" help:"List entries under a path prefix"`
	Create EntryCreateCmd `cmd:"" help:"Create or update a single entry"`
	Delete EntryDeleteCmd `cmd:"" help:"Delete an entry permanently"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context) error {
	version := ctx.Model.Vars()["version"]
	fmt.Println("nbox version " + version)
	return nil
}
