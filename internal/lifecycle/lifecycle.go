// Package lifecycle defines the status machine shared by suggestions, edits
// and reviews.
//
//	pending_screen ──screen valid──▶ pending_approval ──threshold or approve──▶ approved
//	       │                                │
//	       └──────screen rejected──────▶ rejected ◀──────── reject ─┘
//
// approved and rejected are terminal. Reviews start in pending and skip the
// screen and the confirmation path.
package lifecycle

import (
	dErrors "masjid/pkg/domain-errors"
)

// Status is a submission or review state.
type Status string

const (
	StatusPendingScreen   Status = "pending_screen"
	StatusPendingApproval Status = "pending_approval"
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
)

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsPending reports whether s still awaits a decision.
func (s Status) IsPending() bool {
	return s == StatusPendingApproval || s == StatusPending || s == StatusPendingScreen
}

// ParseStatus validates a status filter.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPendingScreen, StatusPendingApproval, StatusPending, StatusApproved, StatusRejected:
		return Status(raw), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown status")
}

// AfterScreen is the status a new submission takes once screened.
func AfterScreen(valid bool) Status {
	if valid {
		return StatusPendingApproval
	}
	return StatusRejected
}

// Transition is the outcome of applying a moderator or threshold action.
type Transition struct {
	From Status
	To   Status
	// Noop is set when the action leaves the status unchanged without error.
	Noop bool
}

// Approve moves a pending item to approved. Approving an approved item is a
// no-op; approving a rejected one is a conflict.
func Approve(current Status) (Transition, error) {
	switch current {
	case StatusApproved:
		return Transition{From: current, To: current, Noop: true}, nil
	case StatusRejected:
		return Transition{}, dErrors.New(dErrors.CodeConflict, "submission was rejected")
	}
	return Transition{From: current, To: StatusApproved}, nil
}

// Reject moves a pending item to rejected. Rejecting a rejected item is a
// no-op; rejecting an approved one is a conflict and the item stays approved.
func Reject(current Status) (Transition, error) {
	switch current {
	case StatusRejected:
		return Transition{From: current, To: current, Noop: true}, nil
	case StatusApproved:
		return Transition{}, dErrors.New(dErrors.CodeConflict, "submission is already approved")
	}
	return Transition{From: current, To: StatusRejected}, nil
}

// CanConfirm returns a conflict when current no longer accepts confirmations.
func CanConfirm(current Status) error {
	if current != StatusPendingApproval {
		if current.IsTerminal() {
			return dErrors.New(dErrors.CodeConflict, "submission is already "+string(current))
		}
		return dErrors.New(dErrors.CodeConflict, "submission is not open for confirmation")
	}
	return nil
}

// ReachedThreshold reports whether count confirmations promote the submission.
func ReachedThreshold(count, threshold int) bool {
	return threshold > 0 && count >= threshold
}
