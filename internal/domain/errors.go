package domain

import (
	"context"
	"errors"
	"fmt"
)

// SigningInputError marks credentials or messages that cannot be signed.
// It is raised at construction time and is never recoverable.
type SigningInputError struct {
	Field  string
	Reason string
}

func (e *SigningInputError) Error() string {
	return fmt.Sprintf("signing input %s: %s", e.Field, e.Reason)
}

// ProbeError is a failed or timed-out health probe.
type ProbeError struct {
	Err error
}

func (e *ProbeError) Error() string {
	if e.Err == nil {
		return "gateway unreachable"
	}
	return "gateway unreachable: " + e.Err.Error()
}

func (e *ProbeError) Unwrap() error { return e.Err }

// PostProbeError is raised while reacting to a successful probe.
// The monitor absorbs it without changing state.
type PostProbeError struct {
	Step string
	Err  error
}

func (e *PostProbeError) Error() string {
	return fmt.Sprintf("after probe (%s): %v", e.Step, e.Err)
}

func (e *PostProbeError) Unwrap() error { return e.Err }

// IsCancellation reports whether err stems from a cancelled context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
