package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/nboxhq/nbox/internal/core"
	"github.com/nboxhq/nbox/internal/output"
)

var entryColumns = []output.Column{
	{Name: "KEY", Key: "Key"},
	{Name: "VALUE", Key: "Value", Width: 60},
	{Name: "SECURE", Key: "Secure"},
}

// EntryGetCmd implements the entry get command
type EntryGetCmd struct {
	Key     string `arg:"" help:"Entry path (e.g., /global/db/host)"`
	Decrypt bool   `help:"Decrypt a secure value" short:"d"`
}

// Run executes the get command
func (cmd *EntryGetCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	key, err := parsePathArg(cmd.Key)
	if err != nil {
		return err
	}

	entries, err := sp.Entries()
	if err != nil {
		return err
	}

	ctx := context.Background()
	entry, err := core.FetchOne(ctx, entries, key)
	if err != nil {
		return apiError(err)
	}
	if entry == nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("No entry found with key: %s", key),
			ExitCode: output.ExitNotFound,
		}
	}

	display := core.Reveal(ctx, entries, *entry, cmd.Decrypt)
	if display.DecryptError != "" {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to decrypt %s: %s", key, display.DecryptError),
			ExitCode: output.ExitAPIError,
		}
	}

	return fp.Formatter.Print(display)
}

// EntryListCmd implements the entry list command
type EntryListCmd struct {
	Prefix  string `arg:"" help:"Path prefix (e.g., /global/db)"`
	Decrypt bool   `help:"Decrypt secure values" short:"d"`
}

// Run executes the list command
func (cmd *EntryListCmd) Run(sp *ServiceProvider, fp *FormatterProvider) error {
	prefix, err := parsePathArg(cmd.Prefix)
	if err != nil {
		return err
	}

	entries, err := sp.Entries()
	if err != nil {
		return err
	}

	ctx := context.Background()
	snapshot, err := core.FetchPrefix(ctx, entries, prefix)
	if err != nil {
		return apiError(err)
	}

	if len(snapshot) == 0 {
		return &output.CLIError{
			Message:  fmt.Sprintf("No entries found with prefix: %s", prefix),
			ExitCode: output.ExitNotFound,
		}
	}

	keys := make([]core.PathKey, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rows := make([]core.DisplayEntry, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, core.Reveal(ctx, entries, snapshot[key], cmd.Decrypt))
	}

	return fp.Formatter.PrintList(rows, entryColumns)
}

// EntryCreateCmd implements the entry create command
type EntryCreateCmd struct {
	Key    string `arg:"" help:"Entry path"`
	Value  string `arg:"" help:"Entry value"`
	Secure bool   `help:"Mark entry as secure (server-side encrypted)" short:"s"`
}

// Run executes the create command
func (cmd *EntryCreateCmd) Run(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	key, err := parsePathArg(cmd.Key)
	if err != nil {
		return err
	}

	entries, err := sp.Entries()
	if err != nil {
		return err
	}

	ctx := context.Background()
	existing, err := core.FetchOne(ctx, entries, key)
	if err != nil {
		return apiError(err)
	}

	snapshot := core.Snapshot{}
	if existing != nil {
		snapshot[key] = *existing
	}

	candidate := core.Candidate{Key: key, Value: cmd.Value, Secure: cmd.Secure}
	cs := core.Plan([]core.Candidate{candidate}, snapshot)

	if !cs.RequiresConfirmation {
		fmt.Fprintf(os.Stderr, "Entry already up to date: %s\n", key)
		return nil
	}

	if err := renderPlan(fp, globals, cs); err != nil {
		return err
	}

	confirm, err := confirmGate(globals)
	if err != nil {
		return err
	}

	report := core.Execute(ctx, cs, confirm, applyWith(entries))
	if report.Aborted {
		fmt.Fprintf(os.Stderr, "Operation cancelled\n")
		return nil
	}

	if _, failed, _ := report.Counts(); failed > 0 {
		return &output.CLIError{
			Message:  fmt.Sprintf("Failed to write entry: %s", report.Results[0].Err),
			ExitCode: output.ExitAPIError,
		}
	}

	fmt.Fprintf(os.Stderr, "Entry written successfully: %s\n", key)
	return nil
}

// EntryDeleteCmd implements the entry delete command
type EntryDeleteCmd struct {
	Key string `arg:"" help:"Entry path"`
}

// Run executes the delete command
func (cmd *EntryDeleteCmd) Run(sp *ServiceProvider, fp *FormatterProvider, globals *Globals) error {
	key, err := parsePathArg(cmd.Key)
	if err != nil {
		return err
	}

	entries, err := sp.Entries()
	if err != nil {
		return err
	}

	ctx := context.Background()
	entry, err := core.FetchOne(ctx, entries, key)
	if err != nil {
		return apiError(err)
	}
	if entry == nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("No entry found with key: %s", key),
			ExitCode: output.ExitNotFound,
		}
	}

	if !globals.Yes {
		fmt.Fprintf(os.Stderr, "You are about to remove the following entry:\n")
		display := core.Reveal(ctx, entries, *entry, false)
		if err := fp.Formatter.PrintList([]core.DisplayEntry{display}, entryColumns); err != nil {
			return err
		}

		if globals.NoInput {
			return &output.CLIError{
				Message:  "Confirmation required but prompts are disabled",
				ExitCode: output.ExitUsage,
				Hint:     "Pass --yes to skip confirmation",
			}
		}
		if !promptYes("Do you want to proceed? [y/N]: ") {
			fmt.Fprintf(os.Stderr, "Operation cancelled\n")
			return nil
		}
	}

	if err := entries.DeleteEntry(ctx, key.String()); err != nil {
		return apiError(err)
	}

	fmt.Fprintf(os.Stderr, "Entry removed successfully: %s\n", key)
	return nil
}
