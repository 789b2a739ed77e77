package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the lifecycle, ledger and quote operations.
// Typed errors below wrap them so callers can branch with errors.Is.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrAlreadyTerminal        = errors.New("entity already in terminal state")
	ErrDuplicateApproval      = errors.New("approval level already decided")
	ErrMissingComments        = errors.New("rejection requires comments")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrNoItems                = errors.New("quote has no items")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrNotFound               = errors.New("not found")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// Unwrap links the error to ErrValidation.
func (e ValidationError) Unwrap() error { return ErrValidation }

// TransitionError reports a state change refused by the lifecycle table.
// Cause is ErrInvalidTransition or ErrAlreadyTerminal.
type TransitionError struct {
	Entity EntityType
	From   string
	Role   Role
	Action string
	Cause  error
}

func (e TransitionError) Error() string {
	cause := e.Cause
	if cause == nil {
		cause = ErrInvalidTransition
	}
	if e.Role == "" {
		return fmt.Sprintf("%s: cannot %s %s from %s", cause, e.Action, e.Entity, e.From)
	}
	return fmt.Sprintf("%s: role %s cannot %s %s in %s", cause, e.Role, e.Action, e.Entity, e.From)
}

// Unwrap returns the classifying sentinel.
func (e TransitionError) Unwrap() error {
	if e.Cause == nil {
		return ErrInvalidTransition
	}
	return e.Cause
}

// NotFoundError indicates a missing entity.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// Unwrap links the error to ErrNotFound.
func (e NotFoundError) Unwrap() error { return ErrNotFound }

// Retryable reports whether a caller may retry the operation after re-reading state.
func Retryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
