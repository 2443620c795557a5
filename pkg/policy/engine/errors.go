package engine

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNilPolicy indicates Evaluate was called without a policy.
	ErrNilPolicy = errors.New("policy cannot be nil")

	// ErrInvalidConfig indicates invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")
)

// CancelledError indicates the overall evaluation call was cancelled or
// timed out before all conditions completed. It is distinct from a
// blocked verdict: in-flight condition calls were cancelled and no
// partial verdict is reported.
type CancelledError struct {
	PolicyID string
	Cause    error
}

// Error returns the error message.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("policy %s: evaluation cancelled: %v", e.PolicyID, e.Cause)
}

// Unwrap returns the underlying context error.
func (e *CancelledError) Unwrap() error {
	return e.Cause
}
