// Package temperrors holds the error values shared by the gateway, the
// message service and the bot frontends.
package temperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyList is returned by the message service when a table has nothing to show.
	ErrEmptyList = errors.New("empty list")

	// ErrInvalidQuery marks every input error. Input errors are never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrUnknownKind is returned for a resource name the gateway does not serve.
	ErrUnknownKind = errors.New("unknown resource kind")

	// ErrExhausted marks a fetch whose every attempt failed.
	ErrExhausted = errors.New("retries exhausted")
)

// InputError describes a query field that is missing or out of range.
type InputError struct {
	Kind   string
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("query: field %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s query: field %s %s", e.Kind, e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// NewMissingFieldError reports a required field that was not set.
func NewMissingFieldError(kind, field string) error {
	return &InputError{Kind: kind, Field: field, Reason: "is required"}
}

// HTTPError represents a non-success HTTP response
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for URL %s: %s", e.StatusCode, e.URL, e.Message)
}

// NewHTTPError creates a new HTTP error
func NewHTTPError(statusCode int, url, message string) error {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Message:    message,
	}
}

// ValidationError is a response body that does not match the expected schema.
type ValidationError struct {
	URL string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response from %s does not match schema: %v", e.URL, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ExhaustedError carries the last failure observed once all attempts are spent.
type ExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}
