package shared

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNotFound indicates a referenced record is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateName indicates a customer name collision.
	ErrDuplicateName = errors.New("name already exists")
)

// ValidationError reports a missing or out-of-range input field. The field
// name is surfaced to the caller unchanged.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError identifies which record was absent. Unwraps to ErrNotFound so
// callers can match with errors.Is.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConsistencyWarning flags a stored value that disagrees with its recomputed
// form. It is logged, never returned as a failure; the recomputed value wins.
type ConsistencyWarning struct {
	Entity   string
	ID       string
	Field    string
	Stored   float64
	Computed float64
}

// LogValue renders the warning as structured slog attributes.
func (w ConsistencyWarning) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("entity", w.Entity),
		slog.String("id", w.ID),
		slog.String("field", w.Field),
		slog.Float64("stored", w.Stored),
		slog.Float64("computed", w.Computed),
	)
}
