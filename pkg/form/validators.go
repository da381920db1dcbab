package form

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validator checks a single field value.
type Validator interface {
	// Validate returns nil if value is valid, or a ValidationError.
	Validate(value string) error
}

// ValidatorFunc is a function that implements Validator.
type ValidatorFunc func(value string) error

func (f ValidatorFunc) Validate(value string) error {
	return f(value)
}

// ValidationError represents a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// Required fails when the trimmed value is empty.
func Required(msg string) Validator {
	if msg == "" {
		msg = "This field is required"
	}
	return ValidatorFunc(func(value string) error {
		if strings.TrimSpace(value) == "" {
			return ValidationError{Message: msg}
		}
		return nil
	})
}

// MinLength fails when the value has fewer than n characters. Unlike
// Required it does not trim, and an empty value counts as too short.
func MinLength(n int, msg string) Validator {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return ValidatorFunc(func(value string) error {
		if utf8.RuneCountInString(value) < n {
			return ValidationError{Message: msg}
		}
		return nil
	})
}
