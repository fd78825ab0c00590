package core

import "context"

// Status is the terminal state of one executed action
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusSkipped
)

// String returns the status as a display word
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ActionResult records the outcome of one changeset action
type ActionResult struct {
	Action Action
	Status Status
	Err    string
}

// Report is the outcome of executing a changeset. Aborted means the
// confirmation gate declined and zero mutations were applied; a completed
// report may still contain failed actions (partial failure is a valid
// terminal state, not a retry trigger).
type Report struct {
	ChangesetID string
	Aborted     bool
	Results     []ActionResult
}

// Counts returns the number of succeeded, failed and skipped actions
func (r *Report) Counts() (succeeded, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusSucceeded:
			succeeded++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}

// ConfirmFunc is the confirmation gate strategy. Passing nil to Execute
// opts out of confirmation entirely.
type ConfirmFunc func() bool

// ApplyFunc performs one create or update against the remote store
type ApplyFunc func(ctx context.Context, action Action) error

// Execute applies a changeset action by action, in planned order, one remote
// call per create/update. Skips are recorded without a remote call. A failed
// action is recorded with its error and execution continues: a bulk load is
// not all-or-nothing, and the sequential order lets an operator predict
// exactly what was applied up to any failure.
func Execute(ctx context.Context, cs Changeset, confirm ConfirmFunc, apply ApplyFunc) Report {
	report := Report{ChangesetID: cs.ID}

	if cs.RequiresConfirmation && confirm != nil && !confirm() {
		report.Aborted = true
		return report
	}

	for _, action := range cs.Actions {
		if action.Type == ActionSkip {
			report.Results = append(report.Results, ActionResult{
				Action: action,
				Status: StatusSkipped,
			})
			continue
		}

		if err := apply(ctx, action); err != nil {
			report.Results = append(report.Results, ActionResult{
				Action: action,
				Status: StatusFailed,
				Err:    err.Error(),
			})
			continue
		}

		report.Results = append(report.Results, ActionResult{
			Action: action,
			Status: StatusSucceeded,
		})
	}

	return report
}
