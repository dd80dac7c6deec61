package dragparser

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are meant to be generic and map well to transport-level errors
// (HTTP status codes, CLI exit codes). Pipeline stages attach the code
// describing why an extraction failed.
const (
	EINTERNAL    = "internal"     // unexpected internal failure
	EINVALID     = "invalid"      // invalid input or argument
	EINVALIDRULE = "invalid_rule" // malformed transformation rule set
	ENOCONTENT   = "no_content"   // no region cleared the selection threshold
	ERESOURCE    = "resource"     // size/time budget exceeded
	ETOODEEP     = "too_deep"     // markup nesting exceeds the configured limit
	EUNAVAILABLE = "unavailable"  // upstream source could not be fetched
	EUNPARSEABLE = "unparseable"  // input could not be tokenized at all
)

// Error represents an application-specific error. Errors can be
// unwrapped to inspect the code of a wrapped failure.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("dragparser error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
