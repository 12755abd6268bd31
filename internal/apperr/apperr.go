// Package apperr defines the error taxonomy shared by the course-generation
// and progress services. Transports classify errors with Kind.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrAlreadyCompleted = errors.New("module already completed")
	ErrInvalidState     = errors.New("invalid state")
)

// NotFound wraps ErrNotFound with the missing entity.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

// FieldError is a single violated constraint on an input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field constraint, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// GenerationError means the text-generation capability replied, but the reply
// could not be turned into a curriculum.
type GenerationError struct {
	Reason  string
	Content string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("curriculum generation: %s: %v", e.Reason, e.Err)
	}
	return "curriculum generation: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExternalServiceError means an external capability never produced a usable
// reply. Timeout is set when the caller's deadline expired.
type ExternalServiceError struct {
	Service string
	Timeout bool
	Err     error
}

func (e *ExternalServiceError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s timed out: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// PersistenceError wraps a storage failure. The operation was not applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err as a PersistenceError unless it is nil or already
// carries a domain classification.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != KindInternal {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// ErrorKind classifies an error for transports.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindGeneration       ErrorKind = "generation"
	KindExternal         ErrorKind = "external_service"
	KindTimeout          ErrorKind = "timeout"
	KindNotFound         ErrorKind = "not_found"
	KindForbidden        ErrorKind = "forbidden"
	KindAlreadyCompleted ErrorKind = "already_completed"
	KindInvalidState     ErrorKind = "invalid_state"
	KindPersistence      ErrorKind = "persistence"
	KindInternal         ErrorKind = "internal"
)

// Kind returns the most specific classification of err.
func Kind(err error) ErrorKind {
	var (
		valErr *ValidationError
		genErr *GenerationError
		extErr *ExternalServiceError
		perErr *PersistenceError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrAlreadyCompleted):
		return KindAlreadyCompleted
	case errors.Is(err, ErrInvalidState):
		return KindInvalidState
	case errors.As(err, &genErr):
		return KindGeneration
	case errors.As(err, &extErr):
		if extErr.Timeout {
			return KindTimeout
		}
		return KindExternal
	case errors.As(err, &perErr):
		return KindPersistence
	default:
		return KindInternal
	}
}
