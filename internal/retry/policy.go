package retry

// Policy governs one caller type: attempt budget, wait schedule, and which
// outcomes are worth retrying. Policies are immutable and safe to share.
type Policy struct {
	MaxAttempts int
	Wait        WaitStrategy
	RetryIf     func(Outcome) bool
}

// DefaultPolicy retries transient outcomes up to four attempts on the
// default fixed chain.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		Wait:        DefaultChain(),
		RetryIf:     RetryTransient,
	}
}

// RetryTransient is the stock retry predicate.
func RetryTransient(out Outcome) bool {
	return out.Kind == KindRetryable
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Wait == nil {
		p.Wait = DefaultChain()
	}
	if p.RetryIf == nil {
		p.RetryIf = RetryTransient
	}
	return p
}
