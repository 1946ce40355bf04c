// Package notify delivers messages to webhook targets with retries.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	"github.com/dispatchd/dispatchd/internal/metrics"
	"github.com/dispatchd/dispatchd/internal/retry"
)

// Notifier delivers messages to a single webhook target. It is the only
// component aware of transport-level details; the retry executor and wait
// strategies stay transport-agnostic.
//
// Deliveries to one Notifier must run one at a time; independent Notifiers
// may run concurrently, each with its own override state.
type Notifier struct {
	target    domain.Target
	transport Transport
	exec      *retry.Executor
	policy    retry.Policy
}

// NewNotifier creates a Notifier for target. A nil transport gets the
// default HTTP transport with a 30s per-request timeout.
func NewNotifier(target domain.Target, transport Transport, policy retry.Policy) *Notifier {
	if transport == nil {
		transport = NewHTTPTransport(30 * time.Second)
	}
	return &Notifier{
		target:    target,
		transport: transport,
		exec:      retry.NewExecutor(retry.NewState()),
		policy:    policy,
	}
}

// Executor exposes the notifier's retry executor, mainly so callers and
// tests can reach the override state and timing hooks.
func (n *Notifier) Executor() *retry.Executor {
	return n.exec
}

// Notify posts msg to the target's webhook, retrying transient failures per
// the notifier's policy, and returns the delivered response body. On failure
// the error wraps a *retry.Error carrying the full attempt history.
func (n *Notifier) Notify(ctx context.Context, msg domain.Message) (string, error) {
	payload := BuildPayload(n.target, msg)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	op := func(ctx context.Context) retry.Outcome {
		metrics.AttemptsTotal.WithLabelValues(n.target.Name).Inc()
		out := n.attempt(ctx, body, header)
		if out.SuggestedDelay > 0 {
			// Queue the server's hint so the executor uses it for the
			// immediately following attempt.
			n.exec.State().Set(n.target.Name, out.SuggestedDelay)
		}
		return out
	}

	res, err := n.exec.Run(ctx, n.target.Name, op, n.policy)
	observeDelays(n.target.Name, res.Attempts)
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues(n.target.Name, deliveryResult(err)).Inc()
		return "", fmt.Errorf("notify %s: %w", n.target.Name, err)
	}

	metrics.DeliveriesTotal.WithLabelValues(n.target.Name, "delivered").Inc()
	return res.Body, nil
}

func (n *Notifier) attempt(ctx context.Context, body []byte, header http.Header) retry.Outcome {
	resp, err := n.transport.Send(ctx, n.target.URL, body, header)
	if err != nil {
		// Connection-level failures carry no status; treat them as
		// transient and let the attempt budget bound them.
		return retry.Retryable("transport_error", 0)
	}
	return retry.ClassifyResponse(resp.StatusCode, resp.Header, resp.Body)
}

func observeDelays(target string, attempts []retry.Attempt) {
	for _, a := range attempts {
		if a.Delay > 0 {
			metrics.RetryDelaySeconds.WithLabelValues(target).Observe(a.Delay.Seconds())
		}
	}
}

func deliveryResult(err error) string {
	switch {
	case errors.Is(err, retry.ErrRetriesExhausted):
		return "exhausted"
	case errors.Is(err, retry.ErrFatal):
		return "rejected"
	default:
		return "canceled"
	}
}
