package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	"github.com/dispatchd/dispatchd/internal/retry"
)

// scripted answers each request from a fixed sequence of responses,
// repeating the last one once the script runs out.
type scripted struct {
	hits      int32
	responses []func(w http.ResponseWriter)
}

func (s *scripted) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&s.hits, 1))
		idx := n - 1
		if idx >= len(s.responses) {
			idx = len(s.responses) - 1
		}
		s.responses[idx](w)
	}
}

func respond(status int, body string, header map[string]string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		for k, v := range header {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

// testNotifier wires a notifier to url with a recording sleeper so tests
// observe chosen delays without waiting.
func testNotifier(url string, pol retry.Policy) (*Notifier, *[]time.Duration) {
	target := domain.Target{Name: "alerts", URL: url, Channel: "oncall"}
	n := NewNotifier(target, nil, pol)

	slept := &[]time.Duration{}
	n.Executor().WithSleep(func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	})
	return n, slept
}

func TestNotify_RetryAfterHint(t *testing.T) {
	script := &scripted{responses: []func(http.ResponseWriter){
		respond(429, "rate limited", map[string]string{"Retry-After": "2"}),
		respond(200, "ok", nil),
	}}
	srv := httptest.NewServer(script.handler())
	defer srv.Close()

	n, slept := testNotifier(srv.URL, retry.DefaultPolicy())

	body, err := n.Notify(context.Background(), domain.Message{Text: "hello"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if body != "ok" {
		t.Errorf("expected body ok, got %q", body)
	}
	if script.hits != 2 {
		t.Errorf("expected 2 attempts, got %d", script.hits)
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Errorf("expected the server-directed 2s delay, got %v", *slept)
	}
	if _, ok := n.Executor().State().TakeAndClear("alerts"); ok {
		t.Error("override should be empty once consumed")
	}
}

func TestNotify_DefaultScheduleOn5xx(t *testing.T) {
	script := &scripted{responses: []func(http.ResponseWriter){
		respond(503, "unavailable", nil),
		respond(503, "unavailable", nil),
		respond(503, "unavailable", nil),
		respond(200, "ok", nil),
	}}
	srv := httptest.NewServer(script.handler())
	defer srv.Close()

	n, slept := testNotifier(srv.URL, retry.DefaultPolicy())

	body, err := n.Notify(context.Background(), domain.Message{Text: "hello"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if body != "ok" {
		t.Errorf("expected body ok, got %q", body)
	}
	if script.hits != 4 {
		t.Errorf("expected 4 attempts, got %d", script.hits)
	}
	want := []time.Duration{time.Second, time.Second, 3 * time.Second}
	if len(*slept) != len(want) {
		t.Fatalf("expected %d delays, got %v", len(want), *slept)
	}
	for i, d := range want {
		if (*slept)[i] != d {
			t.Errorf("delay %d: expected %v, got %v", i, d, (*slept)[i])
		}
	}
}

func TestNotify_ClientErrorFailsFast(t *testing.T) {
	script := &scripted{responses: []func(http.ResponseWriter){
		respond(404, "no such channel", nil),
	}}
	srv := httptest.NewServer(script.handler())
	defer srv.Close()

	n, slept := testNotifier(srv.URL, retry.DefaultPolicy())

	_, err := n.Notify(context.Background(), domain.Message{Text: "hello"})
	if !errors.Is(err, retry.ErrFatal) {
		t.Fatalf("expected ErrFatal, got %v", err)
	}
	if script.hits != 1 {
		t.Errorf("expected 1 attempt, got %d", script.hits)
	}
	if len(*slept) != 0 {
		t.Errorf("expected no delays, got %v", *slept)
	}

	var terminal *retry.Error
	if !errors.As(err, &terminal) {
		t.Fatalf("expected *retry.Error, got %T", err)
	}
	if terminal.Reason != "http_404" {
		t.Errorf("expected reason http_404, got %s", terminal.Reason)
	}
}

func TestNotify_ExhaustsOnPersistent5xx(t *testing.T) {
	script := &scripted{responses: []func(http.ResponseWriter){
		respond(500, "boom", nil),
	}}
	srv := httptest.NewServer(script.handler())
	defer srv.Close()

	n, _ := testNotifier(srv.URL, retry.DefaultPolicy())

	_, err := n.Notify(context.Background(), domain.Message{Text: "hello"})
	if !errors.Is(err, retry.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if script.hits != 4 {
		t.Errorf("expected 4 attempts, got %d", script.hits)
	}

	var terminal *retry.Error
	if !errors.As(err, &terminal) {
		t.Fatalf("expected *retry.Error, got %T", err)
	}
	if len(terminal.Attempts) != 4 {
		t.Errorf("expected 4 recorded attempts, got %d", len(terminal.Attempts))
	}
}

func TestNotify_TransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // every attempt now fails at the connection level

	n, _ := testNotifier(srv.URL, retry.DefaultPolicy())

	_, err := n.Notify(context.Background(), domain.Message{Text: "hello"})
	if !errors.Is(err, retry.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}

	var terminal *retry.Error
	if !errors.As(err, &terminal) {
		t.Fatalf("expected *retry.Error, got %T", err)
	}
	if terminal.Reason != "transport_error" {
		t.Errorf("expected reason transport_error, got %s", terminal.Reason)
	}
}

func TestNotify_RequestShape(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	n, _ := testNotifier(srv.URL, retry.DefaultPolicy())

	if _, err := n.Notify(context.Background(), domain.Message{Text: "hello"}); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", gotContentType)
	}
	want := `{"channel":"#oncall","text":"hello"}`
	if string(gotBody) != want {
		t.Errorf("payload = %s, want %s", gotBody, want)
	}
}
