package submissions

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no submission matches.
	ErrNotFound = errors.New("submission not found")
	// ErrOwnerConflict is returned when assigning an owner to an already owned submission.
	ErrOwnerConflict = errors.New("submission already has an owner")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem of one request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid submission: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Pipeline steps reported by StepError.
const (
	StepUpload  = "upload"
	StepAnalyze = "analyze"
	StepPersist = "persist"
)

// StepError marks the pipeline step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }

func (e *StepError) Unwrap() error { return e.Err }
