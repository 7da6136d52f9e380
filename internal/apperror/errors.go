// Package apperror defines the error taxonomy shared across the application
// and transport layers. Each type maps to exactly one HTTP status, so
// handlers never inspect error strings.
package apperror

import "fmt"

// ValidationError indicates malformed or incomplete input. It is never
// retried automatically and surfaces as 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidation creates a ValidationError.
func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates an unknown or cross-tenant resource id. The
// message deliberately carries no tenant information: a 404 must never
// reveal whether the id exists in another tenant.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// NewNotFound creates a NotFoundError.
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InvalidStateError indicates a mutation attempt against a record whose
// lifecycle forbids it, e.g. a status write to an already-terminal task.
// Surfaces as 409.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string {
	return e.Msg
}

// NewInvalidState creates an InvalidStateError.
func NewInvalidState(format string, args ...any) *InvalidStateError {
	return &InvalidStateError{Msg: fmt.Sprintf(format, args...)}
}

// TransitionError carries an expected transition failure kind
// (ILLEGAL_TRANSITION, FORBIDDEN_TRANSITION, STALE_STATE_CONFLICT) across
// the service boundary when the orchestrator must surface it to the caller.
// Surfaces as 409.
type TransitionError struct {
	Kind string
}

func (e *TransitionError) Error() string {
	return e.Kind
}

// NewTransition creates a TransitionError.
func NewTransition(kind string) *TransitionError {
	return &TransitionError{Kind: kind}
}

// PersistenceError indicates a durable-store failure. Surfaces as 500 and
// is logged with the request's correlation id.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistence creates a PersistenceError wrapping err.
func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
