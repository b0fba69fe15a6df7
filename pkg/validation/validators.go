package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jamesprial/go-pymments/pkg/types"
)

// Regular expressions for validating identifiers
var (
	// numericIDRegex matches a non-negative integer literal
	numericIDRegex = regexp.MustCompile(`^\d+$`)
)

// IsNumericID checks if a string is a non-negative integer literal.
func IsNumericID(s string) bool {
	return numericIDRegex.MatchString(s)
}

// ValidateUserRecord checks that a user record carries an id and a name.
// Password is optional on the wire.
func ValidateUserRecord(u *types.UserRecord) error {
	if u == nil {
		return fmt.Errorf("user record is nil")
	}

	var errs []error
	if u.ID == nil {
		errs = append(errs, fmt.Errorf("id is required"))
	} else if *u.ID < 0 {
		errs = append(errs, fmt.Errorf("id cannot be negative (%d)", *u.ID))
	}
	if u.Name == nil {
		errs = append(errs, fmt.Errorf("name is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("user validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// ValidateCommentRecord checks a comment record and, recursively, its
// embedded user and parent.
func ValidateCommentRecord(c *types.CommentRecord) error {
	if c == nil {
		return fmt.Errorf("comment record is nil")
	}

	var errs []error
	if c.ID == nil {
		errs = append(errs, fmt.Errorf("id is required"))
	} else if *c.ID < 0 {
		errs = append(errs, fmt.Errorf("id cannot be negative (%d)", *c.ID))
	}

	if c.User == nil {
		errs = append(errs, fmt.Errorf("user is required"))
	} else if err := ValidateUserRecord(c.User); err != nil {
		errs = append(errs, err)
	}

	if c.Message == nil {
		errs = append(errs, fmt.Errorf("message is required"))
	}
	if c.Time == nil {
		errs = append(errs, fmt.Errorf("time is required"))
	}

	if c.Parent != nil {
		if c.ID != nil && c.Parent.ID != nil && *c.Parent.ID == *c.ID {
			errs = append(errs, fmt.Errorf("comment %d cannot be its own parent", *c.ID))
		} else if err := ValidateCommentRecord(c.Parent); err != nil {
			errs = append(errs, fmt.Errorf("parent: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("comment validation failed: %w", joinValidationErrors(errs))
	}
	return nil
}

// joinValidationErrors combines multiple errors into a single error message
func joinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
