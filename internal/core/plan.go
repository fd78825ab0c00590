package core

import "github.com/google/uuid"

// ActionType discriminates changeset actions
type ActionType int

const (
	ActionCreate ActionType = iota
	ActionUpdate
	ActionSkip
)

// String returns the action type as a lowercase verb
func (t ActionType) String() string {
	switch t {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Action is one step of a changeset. For updates, PrevValue and PrevSecure
// carry the remote state being replaced; SensitiveTransition marks updates
// that flip the secure flag in either direction, since downgrading a secure
// value to plaintext is policy-significant and must never pass silently.
type Action struct {
	Type      ActionType
	Candidate Candidate

	PrevValue  string
	PrevSecure bool

	SensitiveTransition bool
	Reason              string // populated for skips
}

// Changeset is the ordered reconciliation plan for one batch of candidates.
// It is a pure function of (candidates, snapshot): re-planning after a full
// apply yields all-skip.
type Changeset struct {
	ID                   string
	Actions              []Action
	RequiresConfirmation bool
}

// Plan compares candidates against the snapshot and produces the minimal
// ordered create/update/skip plan. Candidates are assumed deduplicated
// (the parsers guarantee last-write-wins); actions preserve candidate order.
func Plan(candidates []Candidate, snapshot Snapshot) Changeset {
	cs := Changeset{ID: uuid.NewString()}

	for _, c := range candidates {
		existing, ok := snapshot[c.Key]
		switch {
		case !ok:
			cs.Actions = append(cs.Actions, Action{
				Type:      ActionCreate,
				Candidate: c,
			})
		case existing.Value == c.Value && existing.Secure == c.Secure:
			cs.Actions = append(cs.Actions, Action{
				Type:      ActionSkip,
				Candidate: c,
				Reason:    "unchanged",
			})
		default:
			cs.Actions = append(cs.Actions, Action{
				Type:                ActionUpdate,
				Candidate:           c,
				PrevValue:           existing.Value,
				PrevSecure:          existing.Secure,
				SensitiveTransition: existing.Secure != c.Secure,
			})
		}
	}

	for _, a := range cs.Actions {
		if a.Type != ActionSkip {
			cs.RequiresConfirmation = true
			break
		}
	}

	return cs
}

// Counts returns the number of creates, updates and skips in the plan
func (cs Changeset) Counts() (creates, updates, skips int) {
	for _, a := range cs.Actions {
		switch a.Type {
		case ActionCreate:
			creates++
		case ActionUpdate:
			updates++
		case ActionSkip:
			skips++
		}
	}
	return
}
