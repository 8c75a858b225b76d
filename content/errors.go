package content

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by this package, except
// ErrInvalidCredentials from Users.Authenticate, matches exactly one of them
// under errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStore      = errors.New("store failure")
)

// ErrDuplicateKey is what Create reports when a uniqueness guard trips.
var ErrDuplicateKey = ErrConflict

// Error carries a client-safe Message alongside its kind and the
// underlying cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message returns the text that is safe to show a client. Store failures
// never expose their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && !errors.Is(e.Kind, ErrStore) {
		return e.Message
	}
	return "Internal server error"
}

func notFound(entity string) error {
	return &Error{Kind: ErrNotFound, Message: entity + " not found"}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func storeErr(op string, err error) error {
	return &Error{Kind: ErrStore, Message: op, Err: err}
}

// missingFields reports a validation error naming every empty field.
func missingFields(entity string, fields []string) error {
	return &Error{
		Kind:    ErrValidation,
		Message: fmt.Sprintf("%s: missing required fields: %s", entity, strings.Join(fields, ", ")),
	}
}

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}
