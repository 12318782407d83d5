package timeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConventionNotFound = errors.New("convention not found")
	ErrNoDays             = errors.New("no schedule days to anchor a new day to")
	ErrOfficialDay        = errors.New("official schedule days cannot be deleted")
	ErrDayNotFound        = errors.New("schedule day not found")
	ErrDayExists          = errors.New("schedule day already exists")
	ErrEventNotFound      = errors.New("schedule event not found")
	ErrGestureActive      = errors.New("a gesture is already in progress")
	ErrNoGesture          = errors.New("no gesture in progress")
	ErrNotEmpty           = errors.New("schedule days already initialized")
	ErrStaleDays          = errors.New("schedule days could not be reloaded")
)

// FieldError describes one invalid field of an event.
type FieldError struct {
	EventKey string `json:"eventKey,omitempty"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// ValidationError is returned before any persistence call is made.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// SaveError aggregates the events whose update failed during a batched save.
// Events that were persisted are not rolled back.
type SaveError struct {
	Failed []FailedSave
}

// FailedSave is one event that could not be persisted.
type FailedSave struct {
	EventKey string
	Title    string
	Err      error
}

func (e *SaveError) Error() string {
	names := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		name := f.Title
		if name == "" {
			name = f.EventKey
		}
		names = append(names, fmt.Sprintf("%q", name))
	}
	return fmt.Sprintf("failed to save %d event(s): %s", len(e.Failed), strings.Join(names, ", "))
}

func (e *SaveError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
