// Package errors defines common error types used throughout the pymments client.
package errors

import (
	"errors"
	"fmt"
)

// ErrDone is returned by a comment list once its last page has been delivered.
// It is not a failure; callers should simply stop asking for pages.
var ErrDone = errors.New("done")

// ValidationError indicates caller input was rejected before any request was made.
type ValidationError struct {
	// Field contains the name of the argument that failed validation
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConfigError indicates a problem with the client configuration.
type ConfigError struct {
	// Field contains the name of the configuration field that caused the error
	Field string
	// Message contains the detailed error message
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// StateError indicates an operation was attempted on an entity that cannot perform it.
type StateError struct {
	// Operation is the name of the operation that was attempted
	Operation string
	// Message contains the detailed error message
	Message string
}

func (e *StateError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("state error during %s: %s", e.Operation, e.Message)
	}
	return fmt.Sprintf("state error: %s", e.Message)
}

// RequestError indicates a problem with making a request to the comment service.
type RequestError struct {
	// Operation is the service op that failed (user, comment, comments, ...)
	Operation string
	// URL is the URL that was being accessed
	URL string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" && e.URL != "" {
		return fmt.Sprintf("request error during %s to %s: %s", e.Operation, e.URL, msg)
	} else if e.Operation != "" {
		return fmt.Sprintf("request error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("request error: %s", msg)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ParseError indicates a response did not have the expected shape.
type ParseError struct {
	// Operation is the service op whose response failed to parse
	Operation string
	// Message contains the detailed error message
	Message string
	// Err contains the underlying error if available
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}

	if e.Operation != "" {
		return fmt.Sprintf("parse error during %s: %s", e.Operation, msg)
	}
	return fmt.Sprintf("parse error: %s", msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// APIError represents a non-success response from the comment service.
// A wrong password is reported by the service this way.
type APIError struct {
	// Operation is the service op that was rejected
	Operation string
	// StatusCode is the HTTP status code
	StatusCode int
	// Message is the response body, truncated
	Message string
}

func (e *APIError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("API request %s failed with status %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Message)
}

// SessionError indicates the session store could not be read or written.
type SessionError struct {
	// Operation is get, set or remove
	Operation string
	// Err contains the underlying store error
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session error during %s: %v", e.Operation, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
