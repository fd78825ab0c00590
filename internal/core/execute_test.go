package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingApply remembers the keys it was called with, optionally failing
// a chosen one.
type recordingApply struct {
	applied []PathKey
	failKey PathKey
}

func (r *recordingApply) apply(_ context.Context, action Action) error {
	r.applied = append(r.applied, action.Candidate.Key)
	if r.failKey != "" && action.Candidate.Key == r.failKey {
		return errors.New("server error")
	}
	return nil
}

func TestExecuteConfirmDeclined(t *testing.T) {
	cs := Changeset{
		ID:                   "cs-1",
		RequiresConfirmation: true,
		Actions: []Action{
			{Type: ActionCreate, Candidate: Candidate{Key: "/a/x", Value: "1"}},
		},
	}
	rec := &recordingApply{}

	report := Execute(context.Background(), cs, func() bool { return false }, rec.apply)

	assert.True(t, report.Aborted)
	assert.Empty(t, report.Results)
	assert.Empty(t, rec.applied, "aborted execution must apply nothing")
	assert.Equal(t, "cs-1", report.ChangesetID)
}

func TestExecuteNilConfirmSkipsGate(t *testing.T) {
	cs := Changeset{
		RequiresConfirmation: true,
		Actions: []Action{
			{Type: ActionCreate, Candidate: Candidate{Key: "/a/x", Value: "1"}},
		},
	}
	rec := &recordingApply{}

	report := Execute(context.Background(), cs, nil, rec.apply)

	assert.False(t, report.Aborted)
	assert.Equal(t, []PathKey{"/a/x"}, rec.applied)
}

func TestExecuteAllSkipsNeverConfirms(t *testing.T) {
	cs := Changeset{
		Actions: []Action{
			{Type: ActionSkip, Candidate: Candidate{Key: "/a/x"}, Reason: "unchanged"},
		},
	}
	rec := &recordingApply{}
	confirmed := false

	report := Execute(context.Background(), cs, func() bool { confirmed = true; return true }, rec.apply)

	assert.False(t, confirmed, "all-skip changesets need no confirmation")
	assert.False(t, report.Aborted)
	assert.Empty(t, rec.applied)
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusSkipped, report.Results[0].Status)
}

func TestExecuteContinuesPastFailure(t *testing.T) {
	cs := Changeset{
		RequiresConfirmation: true,
		Actions: []Action{
			{Type: ActionCreate, Candidate: Candidate{Key: "/a/x", Value: "1"}},
			{Type: ActionUpdate, Candidate: Candidate{Key: "/a/y", Value: "2"}},
			{Type: ActionCreate, Candidate: Candidate{Key: "/a/z", Value: "3"}},
		},
	}
	rec := &recordingApply{failKey: "/a/y"}

	report := Execute(context.Background(), cs, func() bool { return true }, rec.apply)

	assert.False(t, report.Aborted)
	assert.Equal(t, []PathKey{"/a/x", "/a/y", "/a/z"}, rec.applied)

	succeeded, failed, skipped := report.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, skipped)

	require.Len(t, report.Results, 3)
	assert.Equal(t, StatusFailed, report.Results[1].Status)
	assert.Equal(t, "server error", report.Results[1].Err)
}

func TestExecutePreservesOrder(t *testing.T) {
	cs := Changeset{
		RequiresConfirmation: true,
		Actions: []Action{
			{Type: ActionCreate, Candidate: Candidate{Key: "/a/x"}},
			{Type: ActionSkip, Candidate: Candidate{Key: "/a/y"}, Reason: "unchanged"},
			{Type: ActionUpdate, Candidate: Candidate{Key: "/a/z"}},
		},
	}
	rec := &recordingApply{}

	report := Execute(context.Background(), cs, func() bool { return true }, rec.apply)

	// Skips are recorded in place without a remote call
	assert.Equal(t, []PathKey{"/a/x", "/a/z"}, rec.applied)
	require.Len(t, report.Results, 3)
	assert.Equal(t, PathKey("/a/x"), report.Results[0].Action.Candidate.Key)
	assert.Equal(t, PathKey("/a/y"), report.Results[1].Action.Candidate.Key)
	assert.Equal(t, PathKey("/a/z"), report.Results[2].Action.Candidate.Key)
}
