// Package workflow drives justification-gated status changes on a
// solution. Each tracked field moves through a small per-field state
// machine while the user edits: it is unchanged, has a pending change
// awaiting commit, or has been committed. A pending change always keeps
// the field's value at the start of the edit as its old value, so a
// sequence of changes nets out to a single before/after pair carrying
// the most recent justification.
package workflow

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/radarhq/compass"
)

const (
	textCodeChangeCancelled   = "STATUS_CHANGE_CANCELLED"
	textCodeInvalidTransition = "INVALID_CHANGE_TRANSITION"
)

// ErrChangeCancelled is returned when the user dismisses the justification
// prompt. The field's displayed value reverts; earlier confirmed pending
// changes are untouched.
var ErrChangeCancelled = goerrors.New("status change cancelled", goerrors.CategoryOperation).
	WithTextCode(textCodeChangeCancelled)

// ErrInvalidTransition is returned when a field is asked to move between
// change states in a way the machine does not allow.
var ErrInvalidTransition = goerrors.New("invalid change state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// IsCancelled reports whether err is a dismissed justification prompt.
func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == textCodeChangeCancelled
	}
	return false
}

// ChangeState is the per-field position in the edit lifecycle.
type ChangeState string

const (
	// StateUnchanged means the field holds its value from the start of
	// the edit, with nothing pending.
	StateUnchanged ChangeState = "unchanged"
	// StatePendingJustification means a new value and its justification
	// are staged, awaiting commit.
	StatePendingJustification ChangeState = "pending_justification"
	// StateCommitted means the staged change was accepted by the server.
	StateCommitted ChangeState = "committed"
)

// transitions is the set of legal moves. Pending may loop on itself (a
// re-proposed value replaces the staged one) or fall back to Unchanged
// (the user returned the field to its starting value).
var transitions = map[ChangeState]map[ChangeState]struct{}{
	StateUnchanged: {
		StatePendingJustification: {},
	},
	StatePendingJustification: {
		StatePendingJustification: {},
		StateUnchanged:            {},
		StateCommitted:            {},
	},
	StateCommitted: {
		StatePendingJustification: {},
	},
}

func canTransition(from, to ChangeState) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// PendingChange is a staged change to one tracked field. OldValue is the
// field's value when the edit began, never an intermediate value.
type PendingChange struct {
	Field         compass.TrackedField
	OldValue      string
	NewValue      string
	Justification string
}

// Prompter collects a justification for one proposed change. A UI shows a
// dialog; a CLI asks on the terminal. Returning ErrChangeCancelled (or any
// error satisfying IsCancelled) abandons the proposal. An empty
// justification is not accepted; the prompter is asked again until it
// returns a non-blank justification or cancels.
type Prompter interface {
	JustifyChange(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error)

func (f PrompterFunc) JustifyChange(ctx context.Context, field compass.TrackedField, oldValue, newValue string) (string, error) {
	return f(ctx, field, oldValue, newValue)
}

// Committer persists a set of staged changes for a solution.
// *client.SolutionsService satisfies it.
type Committer interface {
	CommitStatusChanges(ctx context.Context, slug string, changes []compass.ChangedField) error
}

// blankJustification reports whether j carries no content.
func blankJustification(j string) bool {
	return strings.TrimSpace(j) == ""
}
