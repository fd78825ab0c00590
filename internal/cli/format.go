package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/nboxhq/nbox/internal/core"
	"github.com/nboxhq/nbox/internal/nbox"
	"github.com/nboxhq/nbox/internal/output"
)

// apiError maps client errors to CLIErrors with the right exit code
func apiError(err error) error {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case errors.Is(err, nbox.ErrUnauthorized):
		return &output.CLIError{
			Message:  fmt.Sprintf("Authentication failed: %v", err),
			ExitCode: output.ExitAuth,
			Hint:     "Run: nbox auth login",
		}
	case errors.Is(err, nbox.ErrUnavailable):
		return &output.CLIError{
			Message:  fmt.Sprintf("Server unreachable: %v", err),
			ExitCode: output.ExitNetworkError,
		}
	default:
		return &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitAPIError,
		}
	}
}

// parsePathArg validates a user-supplied path argument
func parsePathArg(raw string) (core.PathKey, error) {
	key, err := core.ParsePath(raw)
	if err != nil {
		return "", &output.CLIError{
			Message:  err.Error(),
			ExitCode: output.ExitUsage,
		}
	}
	return key, nil
}

// confirmGate builds the confirmation strategy for mutating commands.
// --yes opts out of confirmation entirely; --no-input fails instead of
// prompting.
func confirmGate(globals *Globals) (core.ConfirmFunc, error) {
	if globals.Yes {
		return nil, nil
	}
	if globals.NoInput {
		return nil, &output.CLIError{
			Message:  "Confirmation required but prompts are disabled",
			ExitCode: output.ExitUsage,
			Hint:     "Pass --yes to skip confirmation",
		}
	}
	return func() bool {
		return promptYes("Do you want to proceed? [y/N]: ")
	}, nil
}

// promptYes asks a yes/no question on stderr and reads the answer from stdin
func promptYes(question string) bool {
	fmt.Fprint(os.Stderr, question)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// displayValue redacts secure values for previews and reports
func displayValue(value string, secure bool) string {
	if secure {
		return core.Redacted
	}
	return value
}

// diffValues renders a compact character-level diff between two values
func diffValues(oldValue, newValue string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(oldValue, newValue, false)
	dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// planRow is one row of a changeset preview table
type planRow struct {
	Key      string `json:"key"`
	Action   string `json:"action"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
	Secure   bool   `json:"secure"`
}

var planColumns = []output.Column{
	{Name: "KEY", Key: "Key"},
	{Name: "ACTION", Key: "Action"},
	{Name: "OLD VALUE", Key: "OldValue", Width: 40},
	{Name: "NEW VALUE", Key: "NewValue", Width: 40},
	{Name: "SECURE", Key: "Secure"},
}

// renderPlan prints a changeset preview and warns about sensitive transitions
func renderPlan(fp *FormatterProvider, globals *Globals, cs core.Changeset) error {
	rows := make([]planRow, 0, len(cs.Actions))
	for _, a := range cs.Actions {
		row := planRow{
			Key:      a.Candidate.Key.String(),
			Action:   a.Type.String(),
			NewValue: displayValue(a.Candidate.Value, a.Candidate.Secure),
			Secure:   a.Candidate.Secure,
		}
		if a.Type == core.ActionUpdate {
			row.OldValue = displayValue(a.PrevValue, a.PrevSecure)
		}
		rows = append(rows, row)
	}

	if err := fp.Formatter.PrintList(rows, planColumns); err != nil {
		return err
	}

	for _, a := range cs.Actions {
		if !a.SensitiveTransition {
			continue
		}
		from, to := "plaintext", "secure"
		if a.PrevSecure {
			from, to = "secure", "plaintext"
		}
		fmt.Fprintf(os.Stderr, "WARNING: %s changes from %s to %s\n", a.Candidate.Key, from, to)
	}

	if globals.Verbose {
		for _, a := range cs.Actions {
			if a.Type != core.ActionUpdate || a.Candidate.Secure || a.PrevSecure {
				continue
			}
			fmt.Fprintf(os.Stderr, "  %s: %s\n", a.Candidate.Key, diffValues(a.PrevValue, a.Candidate.Value))
		}
	}

	return nil
}

// reportRow is one row of an execution summary table
type reportRow struct {
	Key    string `json:"key"`
	Action string `json:"action"`
	Status string `json:"status"`
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}

var reportColumns = []output.Column{
	{Name: "KEY", Key: "Key"},
	{Name: "ACTION", Key: "Action"},
	{Name: "STATUS", Key: "Status"},
	{Name: "SOURCE", Key: "Source"},
	{Name: "ERROR", Key: "Error"},
}

// renderReport prints the per-action execution summary
func renderReport(fp *FormatterProvider, report core.Report) error {
	rows := make([]reportRow, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, reportRow{
			Key:    res.Action.Candidate.Key.String(),
			Action: res.Action.Type.String(),
			Status: res.Status.String(),
			Source: res.Action.Candidate.Provenance(),
			Error:  res.Err,
		})
	}
	return fp.Formatter.PrintList(rows, reportColumns)
}

// applyWith adapts the entry service to the executor's ApplyFunc
func applyWith(svc nbox.EntryService) core.ApplyFunc {
	return func(ctx context.Context, action core.Action) error {
		return svc.PutEntries(ctx, []nbox.Entry{{
			Key:    action.Candidate.Key.String(),
			Value:  action.Candidate.Value,
			Secure: action.Candidate.Secure,
		}})
	}
}
