package internal

import (
	"fmt"
	"strconv"
	"strings"

	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/validation"
)

const (
	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for caller-supplied arguments.
// Every check runs before any request is made.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateItemID checks that id is a non-negative integer literal and
// returns its numeric value.
func (v *Validator) ValidateItemID(id string) (int64, error) {
	if !validation.IsNumericID(id) {
		return 0, &pkgerrs.ValidationError{Field: "itemId", Message: fmt.Sprintf("id must be numeric, got %q", id)}
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, &pkgerrs.ValidationError{Field: "itemId", Message: fmt.Sprintf("id %q is out of range", id)}
	}
	return n, nil
}

// ValidateEntityID checks a numeric id handed in by the caller.
func (v *Validator) ValidateEntityID(field string, id int64) error {
	if id < 0 {
		return &pkgerrs.ValidationError{Field: field, Message: fmt.Sprintf("id cannot be negative (%d)", id)}
	}
	return nil
}

// ValidateUserName rejects empty or blank user names.
func (v *Validator) ValidateUserName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &pkgerrs.ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	return nil
}

// ValidateMessage rejects empty or blank comment messages.
func (v *Validator) ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return &pkgerrs.ValidationError{Field: "message", Message: "message cannot be empty"}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection attacks.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return fmt.Errorf("user agent cannot be empty")
	}

	if strings.ContainsAny(ua, "\r\n") {
		return fmt.Errorf("user agent cannot contain newline characters")
	}

	if len(ua) > maxUserAgentLength {
		return fmt.Errorf("user agent too long (max %d characters)", maxUserAgentLength)
	}

	return nil
}
