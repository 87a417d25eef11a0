package merging

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies why a merge was rejected.
type ErrorKind string

const (
	// ErrMissingArgument means the source or destination id was absent or
	// the two ids were the same entity.
	ErrMissingArgument ErrorKind = "missing_argument"
	// ErrExtensionMismatch means the entities have different primary
	// extensions and can never be merged.
	ErrExtensionMismatch ErrorKind = "extension_mismatch"
	// ErrAlreadyMerged means the source was already absorbed or deleted.
	ErrAlreadyMerged ErrorKind = "already_merged"
	// ErrValidationFailure means a staged write failed field validation.
	ErrValidationFailure ErrorKind = "validation_failure"
	// ErrReferenceInvalid means a staged reference points at a missing
	// document.
	ErrReferenceInvalid ErrorKind = "reference_invalid"
)

// MergeError is a rejected merge. Kind drives the HTTP status; Field and
// Reason are set for validation failures.
type MergeError struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *MergeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("merge rejected (%s): field %q: %s", e.Kind, e.Field, e.Reason)
	}
	return fmt.Sprintf("merge rejected (%s): %s", e.Kind, e.Reason)
}

// HTTPStatus maps the error kind to a response status.
func (e *MergeError) HTTPStatus() int {
	switch e.Kind {
	case ErrMissingArgument:
		return http.StatusBadRequest
	case ErrExtensionMismatch, ErrValidationFailure, ErrReferenceInvalid:
		return http.StatusUnprocessableEntity
	case ErrAlreadyMerged:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newMergeError(kind ErrorKind, format string, args ...any) *MergeError {
	return &MergeError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func newValidationError(field, format string, args ...any) *MergeError {
	return &MergeError{Kind: ErrValidationFailure, Field: field, Reason: fmt.Sprintf(format, args...)}
}
