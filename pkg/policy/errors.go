package policy

import "fmt"

// ParseError indicates a malformed policy document. It identifies the
// offending field and source line where possible.
type ParseError struct {
	// Field is the document field that failed to parse (e.g. "severity",
	// "conditions.keywords").
	Field string

	// Line is the 1-based source line of the offending node (0 if unknown).
	Line int

	// Message describes what is wrong with the field.
	Message string

	// Cause is the underlying decode error, if any.
	Cause error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("policy parse error: field %q: %s", e.Field, e.Message)
	if e.Line > 0 {
		msg = fmt.Sprintf("policy parse error: field %q (line %d): %s", e.Field, e.Line, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
