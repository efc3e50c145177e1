package store

import (
	"errors"
	"fmt"
)

// Error kinds raised by the isolation layer. Handlers map these to HTTP
// status codes; everything else is an internal storage failure.
var (
	// ErrAuthenticationRequired is returned when an operation is attempted
	// without a valid tenant context.
	ErrAuthenticationRequired = errors.New("authentication required")

	// ErrAccessDenied marks an explicit tenant-boundary violation detected
	// before a statement runs (middleware cross-check, boundary checker).
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFoundOrForbidden collapses "row does not exist" and "row belongs
	// to another tenant" into one error. The two cases are indistinguishable
	// on purpose: responses must not act as a resource-existence oracle.
	ErrNotFoundOrForbidden = errors.New("record not found")

	// ErrUnscopableQuery is returned when a raw statement's target table
	// cannot be unambiguously bound to a registered owner column. The
	// statement is never executed.
	ErrUnscopableQuery = errors.New("query cannot be tenant-scoped")
)

// IsDenial reports whether an error represents a tenant-boundary refusal,
// as opposed to bad input or a storage failure.
func IsDenial(err error) bool {
	return errors.Is(err, ErrAccessDenied) || errors.Is(err, ErrNotFoundOrForbidden)
}

// ValidationError reports a disallowed column or malformed input. It names
// the offending field to aid debugging; the allowlists it checks against are
// already public to API consumers.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %q: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InternalError wraps a downstream storage failure. The cause is preserved
// for logs but must not leak into user-facing denial responses.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// NewInternalError wraps a storage failure with the operation that hit it.
func NewInternalError(op string, err error) error {
	return &InternalError{Op: op, Err: err}
}
