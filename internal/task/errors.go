package task

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Each typed error below wraps the
// matching sentinel so callers can branch on category without unpacking the
// concrete type.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrAlreadyInProgress = errors.New("already in progress")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyDeleted    = errors.New("already deleted")
)

// NotFoundError reports that an identifier (exact or prefix) did not resolve
// to exactly one live record. An ambiguous prefix is deliberately reported
// the same way as a missing one.
type NotFoundError struct {
	Kind string // "task", "edge"
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports malformed input: an empty title, an unknown status
// value, a blank output reference.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AlreadyInProgressError reports a lost claim race: the task was ready when
// the caller looked but another worker claimed it first.
type AlreadyInProgressError struct {
	ID       string
	Assignee string
}

func (e *AlreadyInProgressError) Error() string {
	if e.Assignee != "" {
		return fmt.Sprintf("task %s already claimed by %s", e.ID, e.Assignee)
	}
	return fmt.Sprintf("task %s already claimed", e.ID)
}

func (e *AlreadyInProgressError) Unwrap() error { return ErrAlreadyInProgress }

// InvalidTransitionError reports an attempt to apply a lifecycle step that is
// not legal from the task's current status.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("task %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// AlreadyDeletedError reports a soft delete of a task that already carries a
// tombstone.
type AlreadyDeletedError struct {
	ID string
}

func (e *AlreadyDeletedError) Error() string {
	return fmt.Sprintf("task %s is already deleted", e.ID)
}

func (e *AlreadyDeletedError) Unwrap() error { return ErrAlreadyDeleted }
