package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when the email is already registered
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned when the username is already taken
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidInput is the sentinel matched by every ValidationError
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials covers both unknown email and wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPollClosed is returned when voting on an expired poll
	ErrPollClosed = errors.New("poll is closed")
	// ErrOptionNotInPoll is returned when the option belongs to another poll
	ErrOptionNotInPoll = errors.New("option not found in poll")
	// ErrTooManyAttempts is returned when login attempts are throttled
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// NotFound wraps ErrNotFound with the name of the missing entity
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// ThrottledError is returned while login attempts for an email are blocked.
// RetryAfter is zero when the remaining window is unknown.
type ThrottledError struct {
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return ErrTooManyAttempts.Error()
}

// Is makes errors.Is(err, ErrTooManyAttempts) match any ThrottledError
func (e *ThrottledError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

// IsDuplicate reports whether err is a uniqueness violation
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUsername)
}

// ValidationError carries field-level messages for invalid input
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field unless one is already present
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// OrNil returns e when it has errors and nil otherwise
func (e *ValidationError) OrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidInput, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrInvalidInput) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
