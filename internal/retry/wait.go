package retry

import (
	"math"
	"time"
)

// WaitStrategy computes the delay before the next attempt. Implementations
// must be deterministic for a given attempt index.
type WaitStrategy interface {
	Delay(attempt int) time.Duration
}

// FixedChain steps through a fixed sequence of delays, one per attempt.
// Once the chain is exhausted the last step repeats.
type FixedChain []time.Duration

func (c FixedChain) Delay(attempt int) time.Duration {
	if len(c) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c) {
		idx = len(c) - 1
	}
	return c[idx]
}

// DefaultChain is the stock schedule: two short waits, two medium, then long.
func DefaultChain() FixedChain {
	return FixedChain{
		1 * time.Second,
		1 * time.Second,
		3 * time.Second,
		3 * time.Second,
		6 * time.Second,
	}
}

// Exponential grows the delay by Multiplier per attempt, clamped to
// [Min, Max]. Max of zero means uncapped.
type Exponential struct {
	Initial    time.Duration
	Multiplier float64
	Min        time.Duration
	Max        time.Duration
}

func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	mult := e.Multiplier
	if mult <= 0 {
		mult = 2.0
	}
	d := time.Duration(float64(e.Initial) * math.Pow(mult, float64(attempt-1)))
	if e.Max > 0 && d > e.Max {
		d = e.Max
	}
	if d < e.Min {
		d = e.Min
	}
	return d
}
