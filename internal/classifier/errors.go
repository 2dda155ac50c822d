package classifier

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the sentinel wrapped by every InvalidInputError.
var ErrInvalidInput = errors.New("invalid URL")

// InvalidInputError is returned when the input is empty or is not a URL with
// both a scheme and a host. It is the only error the classifier returns.
type InvalidInputError struct {
	// Input is the rejected input.
	Input string

	// Reason describes what is wrong with the input.
	Reason string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid URL %q: %s: %v", e.Input, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid URL %q: %s", e.Input, e.Reason)
}

// Unwrap lets errors.Is match both ErrInvalidInput and the parse error.
func (e *InvalidInputError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// UserMessage is the text shown to users for invalid input.
func (e *InvalidInputError) UserMessage() string {
	return "Please enter a valid URL (for example https://example.com)"
}

func newInvalidInputError(input, reason string, err error) *InvalidInputError {
	return &InvalidInputError{Input: input, Reason: reason, Err: err}
}
