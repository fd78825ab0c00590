package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/nboxhq/nbox/internal/core"
	"github.com/nboxhq/nbox/internal/output"
)

// LoadCmd implements the load command: bulk-create entries from a file
// through the parse -> snapshot -> plan -> confirm -> execute pipeline.
type LoadCmd struct {
	File        string `arg:"" help:"Manifest or .env file to load" predictor:"file"`
	Path        string `help:"Base path for dotenv entries and snapshot scope"`
	Format      string `help:"Input format" default:"manifest" enum:"manifest,dotenv"`
	NoChangeset bool   `help:"Skip the remote diff, preview raw values only" name:"no-changeset"`
}

// Run executes the load command
func (cmd *LoadCmd) Run(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		if os.IsNotExist(err) {
			return &output.CLIError{
				Message:  fmt.Sprintf("File does not exist: %s", cmd.File),
				ExitCode: output.ExitNotFound,
			}
		}
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			ExitCode: output.ExitGeneral,
		}
	}

	candidates, err := cmd.parse(data)
	if err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Fprintf(os.Stderr, "No entries found in %s\n", cmd.File)
		return nil
	}

	entries, err := sp.Entries()
	if err != nil {
		return err
	}

	ctx := context.Background()

	// Snapshot-fetch failures abort before any plan is computed; parse
	// errors above abort before any remote call at all.
	snapshot := core.Snapshot{}
	if !cmd.NoChangeset {
		snapshot, err = cmd.buildSnapshot(ctx, entries, candidates)
		if err != nil {
			return apiError(err)
		}
	}

	cs := core.Plan(candidates, snapshot)

	if err := renderPlan(fp, globals, cs); err != nil {
		return err
	}

	if !cs.RequiresConfirmation {
		fmt.Fprintf(os.Stderr, "Nothing to do, all entries unchanged\n")
		return nil
	}

	confirm, err := confirmGate(globals)
	if err != nil {
		return err
	}

	report := core.Execute(ctx, cs, confirm, applyWith(entries))
	if report.Aborted {
		fmt.Fprintf(os.Stderr, "Operation cancelled, no changes applied\n")
		return nil
	}

	if err := renderReport(fp, report); err != nil {
		return err
	}

	succeeded, failed, skipped := report.Counts()
	if failed > 0 {
		return &output.CLIError{
			Message:  fmt.Sprintf("Completed with failures: %d succeeded, %d failed, %d skipped", succeeded, failed, skipped),
			ExitCode: output.ExitPartial,
		}
	}

	fmt.Fprintf(os.Stderr, "Applied %d actions (%d skipped)\n", succeeded, skipped)
	return nil
}

// parse turns the file contents into candidates per the selected format
func (cmd *LoadCmd) parse(data []byte) ([]core.Candidate, error) {
	switch cmd.Format {
	case "dotenv":
		if cmd.Path == "" {
			return nil, &output.CLIError{
				Message:  "No base path provided; --path is required to load an environment file",
				ExitCode: output.ExitUsage,
			}
		}
		base, err := parsePathArg(cmd.Path)
		if err != nil {
			return nil, err
		}
		candidates, err := core.ParseDotenv(data, base)
		if err != nil {
			return nil, &output.CLIError{
				Message:  err.Error(),
				ExitCode: output.ExitUsage,
			}
		}
		return candidates, nil

	default:
		candidates, err := core.ParseManifest(data)
		if err != nil {
			return nil, &output.CLIError{
				Message:  err.Error(),
				ExitCode: output.ExitUsage,
			}
		}
		return candidates, nil
	}
}

// buildSnapshot fetches the remote state the plan diffs against: one prefix
// query scoped to --path when given, or to the candidates' common prefix.
// When candidates share no prefix at all, it falls back to per-key lookups.
func (cmd *LoadCmd) buildSnapshot(ctx context.Context, r core.Reader, candidates []core.Candidate) (core.Snapshot, error) {
	if cmd.Path != "" {
		prefix, err := parsePathArg(cmd.Path)
		if err != nil {
			return nil, err
		}
		return core.FetchPrefix(ctx, r, prefix)
	}

	keys := make([]core.PathKey, len(candidates))
	for i, c := range candidates {
		keys[i] = c.Key
	}

	if prefix, ok := core.CommonPrefix(keys); ok {
		return core.FetchPrefix(ctx, r, prefix)
	}

	snapshot := make(core.Snapshot, len(candidates))
	for _, c := range candidates {
		entry, err := core.FetchOne(ctx, r, c.Key)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			snapshot[c.Key] = *entry
		}
	}
	return snapshot, nil
}
