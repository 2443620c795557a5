package evaluators

import (
	"fmt"
	"time"
)

// UnavailableError indicates the remote evaluation service could not be
// reached: connection failure or timeout. These failures are transient
// and eligible for retry at the condition evaluator boundary.
type UnavailableError struct {
	// Check is the name of the check whose service was unreachable.
	Check string

	// Endpoint is the URL that was called.
	Endpoint string

	// Timeout is true when the failure was a deadline expiry rather than
	// a connection error.
	Timeout bool

	// Elapsed is how long the attempt ran before failing.
	Elapsed time.Duration

	// Cause is the underlying transport error.
	Cause error
}

// Error returns the error message.
func (e *UnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("evaluator %q unavailable: timeout after %s calling %s", e.Check, e.Elapsed, e.Endpoint)
	}
	return fmt.Sprintf("evaluator %q unavailable: %v", e.Check, e.Cause)
}

// Unwrap returns the underlying transport error.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RejectedError indicates the remote service answered with a non-2xx
// status. The rejection is treated as deterministic and is not retried.
type RejectedError struct {
	// Check is the name of the check that was rejected.
	Check string

	// Endpoint is the URL that was called.
	Endpoint string

	// StatusCode is the HTTP status returned.
	StatusCode int

	// Body is the response body, kept for diagnosis.
	Body string
}

// Error returns the error message.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("evaluator %q rejected request (status %d): %s", e.Check, e.StatusCode, e.Body)
}

// MalformedError indicates a 2xx response that could not be parsed or is
// missing required fields. The full payload is kept for diagnosis.
type MalformedError struct {
	// Check is the name of the check that returned the malformed response.
	Check string

	// Endpoint is the URL that was called.
	Endpoint string

	// RawResponse is the raw response body.
	RawResponse string

	// Cause is the underlying parse error, if any.
	Cause error
}

// Error returns the error message.
func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("evaluator %q returned malformed response: %v", e.Check, e.Cause)
	}
	return fmt.Sprintf("evaluator %q returned malformed response", e.Check)
}

// Unwrap returns the underlying cause.
func (e *MalformedError) Unwrap() error {
	return e.Cause
}
