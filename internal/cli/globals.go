package cli

import (
	"os"

	"golang.org/x/term"

	"github.com/nboxhq/nbox/internal/config"
)

// Globals holds global flags available to all commands
type Globals struct {
	Output  string `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"NBOX_OUTPUT"`
	Verbose bool   `help:"Verbose output" short:"v" env:"NBOX_VERBOSE"`
	NoInput bool   `help:"Disable interactive prompts (fail instead)" env:"NBOX_NO_INPUT"`
	Yes     bool   `help:"Skip confirmation prompts" short:"y" env:"NBOX_YES"`
}

// ResolvedOutput returns the effective output mode.
// Priority: flag > config default > TTY detection (TTY -> rich, else plain).
func (g *Globals) ResolvedOutput(cfg *config.Config) string {
	if g.Output != "auto" {
		return g.Output
	}

	if cfg != nil && cfg.DefaultOutput != "" {
		return cfg.DefaultOutput
	}

	// Detect if stdout is a TTY
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return "rich"
	}

	return "plain"
}
