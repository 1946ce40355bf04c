package retry

import (
	"context"
	"time"
)

// Operation runs one attempt and reports its classified outcome. The
// operation itself must not retry; that is the executor's job.
type Operation func(ctx context.Context) Outcome

// Result describes a completed run. Attempts is the ordered record of
// every attempt made, including the final one.
type Result struct {
	Body     string
	Attempts []Attempt
}

// Executor drives the attempt loop for retried operations. The clock and
// sleeper are injectable so the loop is testable without real waiting.
type Executor struct {
	state *State
	clock func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewExecutor creates an Executor sharing the given override state. A nil
// state gets a fresh one.
func NewExecutor(state *State) *Executor {
	if state == nil {
		state = NewState()
	}
	return &Executor{
		state: state,
		clock: time.Now,
		sleep: sleepContext,
	}
}

// State returns the override slot shared between this executor and the
// operations it runs.
func (e *Executor) State() *State {
	return e.state
}

// WithClock replaces the executor's clock. Intended for tests.
func (e *Executor) WithClock(f func() time.Time) *Executor {
	e.clock = f
	return e
}

// WithSleep replaces the executor's sleeper. Intended for tests.
func (e *Executor) WithSleep(f func(context.Context, time.Duration) error) *Executor {
	e.sleep = f
	return e
}

// Run executes op under pol, sleeping between transient failures. id scopes
// server-directed delay overrides to this logical callable. On failure the
// returned error is a *Error carrying the full attempt history; the partial
// Result still holds the attempts for inspection.
//
// Cancellation aborts before the next attempt starts and during any pending
// delay; an in-flight operation is left to finish on its own timeout.
func (e *Executor) Run(ctx context.Context, id string, op Operation, pol Policy) (Result, error) {
	pol = pol.normalized()
	attempts := make([]Attempt, 0, pol.MaxAttempts)

	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempts}, err
		}

		att := Attempt{Index: i, StartedAt: e.clock()}
		att.Outcome = op(ctx)

		switch {
		case att.Outcome.Kind == KindSuccess:
			attempts = append(attempts, att)
			return Result{Body: att.Outcome.Body, Attempts: attempts}, nil

		case att.Outcome.Kind == KindFatal || !pol.RetryIf(att.Outcome):
			attempts = append(attempts, att)
			return Result{Attempts: attempts}, newFatal(att.Outcome.Reason, attempts)

		case i == pol.MaxAttempts:
			attempts = append(attempts, att)
			return Result{Attempts: attempts}, newExhausted(att.Outcome.Reason, attempts)
		}

		delay := pol.Wait.Delay(i)
		if override, ok := e.state.TakeAndClear(id); ok {
			delay = override
		}
		att.Delay = delay
		attempts = append(attempts, att)

		if err := e.sleep(ctx, delay); err != nil {
			return Result{Attempts: attempts}, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
