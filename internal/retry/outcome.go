// Package retry drives webhook delivery attempts: it classifies responses,
// computes inter-attempt delays, and honors server-directed delay hints.
package retry

import "time"

// OutcomeKind describes the executor's decision about an attempt result.
type OutcomeKind int

const (
	KindSuccess OutcomeKind = iota
	KindRetryable
	KindFatal
)

// Outcome is the classification of a single attempt's result. It is
// produced once per attempt and never mutated.
type Outcome struct {
	Kind   OutcomeKind
	Reason string

	// Body carries the response body on success.
	Body string

	// SuggestedDelay, when non-zero, is a server-directed delay for the
	// next attempt (e.g. from a Retry-After header).
	SuggestedDelay time.Duration
}

// Success wraps a delivered response body.
func Success(body string) Outcome {
	return Outcome{Kind: KindSuccess, Body: body}
}

// Retryable marks a transient failure. suggested may be zero.
func Retryable(reason string, suggested time.Duration) Outcome {
	return Outcome{Kind: KindRetryable, Reason: reason, SuggestedDelay: suggested}
}

// Fatal marks a failure that retrying cannot fix.
func Fatal(reason string) Outcome {
	return Outcome{Kind: KindFatal, Reason: reason}
}

// Attempt records one execution of a retried operation.
type Attempt struct {
	Index     int
	StartedAt time.Time
	Outcome   Outcome

	// Delay is the wait chosen after this attempt; zero on the final one.
	Delay time.Duration
}
