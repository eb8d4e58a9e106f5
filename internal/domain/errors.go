package domain

import "errors"

// Error taxonomy for the review engine. Services wrap these with %w so the
// transport layer can map them to status codes without leaking internals.
var (
	// ErrNotFound covers both true absence and lack of visibility, so that
	// unauthorized callers cannot probe for existence.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is authenticated but not allowed to act
	// on this entity.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidStateTransition means a status precondition was not met.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrEmptyMessage rejects a conversation message that is blank after
	// trimming.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrValidationFailed rejects malformed caller input.
	ErrValidationFailed = errors.New("validation failed")

	// ErrConflict means a concurrent mutation lost a race, e.g. a double
	// resubmission.
	ErrConflict = errors.New("conflict")

	// ErrTransientStore means the datastore was unavailable or timed out.
	// This is the only error safe for automatic caller retry.
	ErrTransientStore = errors.New("transient store failure")
)
