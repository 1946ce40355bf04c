package control

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	"github.com/dispatchd/dispatchd/internal/retry"
)

func testDispatcher(t *testing.T, hookURL string) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(Config{
		Port:     0,
		Targets:  []domain.Target{{Name: "alerts", URL: hookURL, Channel: "oncall"}},
		Policies: map[string]retry.Policy{"alerts": retry.DefaultPolicy()},
	})
	if err != nil {
		t.Fatalf("NewDispatcher failed: %v", err)
	}
	return d
}

func TestDispatcher_DeliversAccepted(t *testing.T) {
	var hits int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("ok"))
	}))
	defer hook.Close()

	d := testDispatcher(t, hook.URL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for name := range d.notifiers {
		d.wg.Add(1)
		go d.worker(ctx, name)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/notifications",
		strings.NewReader(`{"target":"alerts","text":"hello"}`))
	rec := httptest.NewRecorder()
	d.handleNotify(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp["id"] == "" {
		t.Error("expected a delivery id")
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&hits) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("expected 1 webhook delivery, got %d", hits)
	}

	cancel()
	done := make(chan struct{})
	go func() { d.wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("workers did not stop after cancellation")
	}
}

func TestDispatcher_RejectsBadRequests(t *testing.T) {
	d := testDispatcher(t, "http://127.0.0.1:0")

	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, `{"target":"alerts"}`, http.StatusBadRequest},
		{"unknown target", http.MethodPost, `{"target":"nope","text":"x"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/notifications", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			d.handleNotify(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestDispatcher_DispatchUnknownTarget(t *testing.T) {
	d := testDispatcher(t, "http://127.0.0.1:0")

	err := d.Dispatch(context.Background(), domain.Delivery{ID: "x", Target: "nope"})
	if err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestDispatcher_QueueFull(t *testing.T) {
	d := testDispatcher(t, "http://127.0.0.1:0")

	// No worker is draining, so the buffer eventually fills.
	var err error
	for i := 0; i <= jobBuffer; i++ {
		err = d.Dispatch(context.Background(), domain.Delivery{ID: "x", Target: "alerts"})
	}
	if err == nil {
		t.Error("expected queue-full error once the buffer is exhausted")
	}
}

func TestNewDispatcher_Validation(t *testing.T) {
	if _, err := NewDispatcher(Config{}); err == nil {
		t.Error("expected error for empty target list")
	}

	_, err := NewDispatcher(Config{
		Targets: []domain.Target{
			{Name: "alerts", URL: "http://a"},
			{Name: "alerts", URL: "http://b"},
		},
	})
	if err == nil {
		t.Error("expected error for duplicate targets")
	}
}
