package release

import (
	"errors"
	"fmt"
)

// ErrorClass classifies release failures for exit handling.
type ErrorClass string

const (
	// ErrorClassPrecondition indicates a violated invariant before
	// any build started: unknown board type, naming-convention
	// mismatch, unresolvable board-type symbol, missing variant.
	ErrorClassPrecondition ErrorClass = "precondition"

	// ErrorClassToolchain indicates a failed external tool
	// invocation or a missing expected artifact after one.
	ErrorClassToolchain ErrorClass = "toolchain"

	// ErrorClassPackaging indicates a failure writing the release
	// archive.
	ErrorClassPackaging ErrorClass = "packaging"
)

// Error is a classified release failure. Every class is fatal to the
// whole run; the class only records where in the sequence the run
// died.
type Error struct {
	// Class is the failure classification.
	Class ErrorClass

	// Message is the human-readable failure description.
	Message string

	// Variant is the variant being processed, when applicable.
	Variant string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Variant != "" {
		if e.Err != nil {
			return fmt.Sprintf("[%s] %s (variant=%s): %v", e.Class, e.Message, e.Variant, e.Err)
		}
		return fmt.Sprintf("[%s] %s (variant=%s)", e.Class, e.Message, e.Variant)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Class, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Class, e.Message)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewPreconditionError creates a precondition violation error.
func NewPreconditionError(message string) *Error {
	return &Error{Class: ErrorClassPrecondition, Message: message}
}

// NewToolchainError wraps a failed toolchain invocation.
func NewToolchainError(message string, err error) *Error {
	return &Error{Class: ErrorClassToolchain, Message: message, Err: err}
}

// NewPackagingError wraps a failed archive-writing step.
func NewPackagingError(message string, err error) *Error {
	return &Error{Class: ErrorClassPackaging, Message: message, Err: err}
}

// WithVariant adds variant context to an error.
func (e *Error) WithVariant(name string) *Error {
	e.Variant = name
	return e
}

// IsPrecondition reports whether err is a precondition violation.
func IsPrecondition(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == ErrorClassPrecondition
	}
	return false
}
