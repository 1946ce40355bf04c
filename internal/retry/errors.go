package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrRetriesExhausted marks a run whose final attempt still failed
	// with a retryable outcome.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrFatal marks a run stopped by a non-retryable outcome.
	ErrFatal = errors.New("fatal outcome")
)

// Error is the single terminal error for a failed run. It carries the last
// outcome's reason and the full attempt history so callers can log or
// branch on why retries stopped.
type Error struct {
	Reason   string
	Attempts []Attempt

	exhausted bool
}

func (e *Error) Error() string {
	kind := "fatal outcome"
	if e.exhausted {
		kind = "retries exhausted"
	}
	return fmt.Sprintf("%s after %d attempt(s): %s", kind, len(e.Attempts), e.Reason)
}

func (e *Error) Is(target error) bool {
	if e.exhausted {
		return target == ErrRetriesExhausted
	}
	return target == ErrFatal
}

func newExhausted(reason string, attempts []Attempt) *Error {
	return &Error{Reason: reason, Attempts: attempts, exhausted: true}
}

func newFatal(reason string, attempts []Attempt) *Error {
	return &Error{Reason: reason, Attempts: attempts}
}
