// Package control wires the dispatchd service: ingest API, per-target
// delivery workers, and the health/metrics server.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchd/dispatchd/internal/core/domain"
	"github.com/dispatchd/dispatchd/internal/health"
	redisqueue "github.com/dispatchd/dispatchd/internal/infra/redis"
	"github.com/dispatchd/dispatchd/internal/metrics"
	"github.com/dispatchd/dispatchd/internal/notify"
	"github.com/dispatchd/dispatchd/internal/retry"
)

const jobBuffer = 64

// Config assembles a Dispatcher from loaded application configuration.
type Config struct {
	Port     int
	Targets  []domain.Target
	Policies map[string]retry.Policy
	Timeouts map[string]time.Duration

	// Queue, when set, backs pending deliveries with Redis instead of
	// in-process channels.
	Queue *redisqueue.Client
}

// Dispatcher owns the ingest API and one sequential delivery worker per
// target. Deliveries to one target run strictly one retry loop at a time;
// independent targets proceed concurrently.
type Dispatcher struct {
	cfg       Config
	notifiers map[string]*notify.Notifier
	monitor   *health.Monitor
	server    *health.Server
	jobs      map[string]chan domain.Delivery

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher for the configured targets.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if len(cfg.Targets) == 0 {
		return nil, errors.New("no targets configured")
	}

	names := make([]string, 0, len(cfg.Targets))
	notifiers := make(map[string]*notify.Notifier, len(cfg.Targets))
	jobs := make(map[string]chan domain.Delivery, len(cfg.Targets))

	for _, t := range cfg.Targets {
		if _, dup := notifiers[t.Name]; dup {
			return nil, fmt.Errorf("duplicate target %q", t.Name)
		}

		timeout := cfg.Timeouts[t.Name]
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		pol, ok := cfg.Policies[t.Name]
		if !ok {
			pol = retry.DefaultPolicy()
		}

		notifiers[t.Name] = notify.NewNotifier(t, notify.NewHTTPTransport(timeout), pol)
		jobs[t.Name] = make(chan domain.Delivery, jobBuffer)
		names = append(names, t.Name)
	}

	d := &Dispatcher{
		cfg:       cfg,
		notifiers: notifiers,
		monitor:   health.NewMonitor(names),
		jobs:      jobs,
	}
	d.server = health.NewServer(d.monitor, cfg.Port)
	d.server.Handle("/v1/notifications", http.HandlerFunc(d.handleNotify))

	return d, nil
}

// Start launches the workers and the HTTP server.
func (d *Dispatcher) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)

	for name := range d.notifiers {
		d.wg.Add(1)
		go d.worker(ctx, name)
	}

	go func() {
		if err := d.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
		}
	}()

	slog.Info("Dispatcher started", "targets", len(d.notifiers), "port", d.cfg.Port)
	return nil
}

// Stop shuts down the server and waits for in-flight deliveries, bounded
// by ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	err := d.server.Stop(ctx)

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// Dispatch accepts a delivery for asynchronous processing.
func (d *Dispatcher) Dispatch(ctx context.Context, del domain.Delivery) error {
	if _, ok := d.notifiers[del.Target]; !ok {
		return fmt.Errorf("unknown target %q", del.Target)
	}

	if d.cfg.Queue != nil {
		return d.cfg.Queue.PushDelivery(ctx, del)
	}

	select {
	case d.jobs[del.Target] <- del:
		return nil
	default:
		return fmt.Errorf("queue full for target %q", del.Target)
	}
}

func (d *Dispatcher) worker(ctx context.Context, target string) {
	defer d.wg.Done()

	for {
		del, ok, err := d.next(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("Queue read failed", "target", target, "error", err)
			time.Sleep(time.Second)
			continue
		}
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		d.deliver(ctx, del)
	}
}

func (d *Dispatcher) next(ctx context.Context, target string) (domain.Delivery, bool, error) {
	if d.cfg.Queue != nil {
		del, found, err := d.cfg.Queue.PopDelivery(ctx, target, time.Second)
		if err == nil {
			if depth, derr := d.cfg.Queue.QueueDepth(ctx, target); derr == nil {
				metrics.QueueDepth.WithLabelValues(target).Set(float64(depth))
			}
		}
		return del, found, err
	}

	select {
	case <-ctx.Done():
		return domain.Delivery{}, false, nil
	case del := <-d.jobs[target]:
		metrics.QueueDepth.WithLabelValues(target).Set(float64(len(d.jobs[target])))
		return del, true, nil
	}
}

func (d *Dispatcher) deliver(ctx context.Context, del domain.Delivery) {
	body, err := d.notifiers[del.Target].Notify(ctx, del.Message)
	if err != nil {
		d.monitor.RecordFailure(del.Target, err.Error())
		slog.Error("Delivery failed", "id", del.ID, "target", del.Target, "error", err)
		return
	}
	d.monitor.RecordSuccess(del.Target)
	slog.Info("Delivery succeeded", "id", del.ID, "target", del.Target, "response", body)
}

type notifyRequest struct {
	Target  string `json:"target"`
	Channel string `json:"channel"`
	Header  string `json:"header"`
	Text    string `json:"text"`
}

func (d *Dispatcher) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" && req.Header == "" {
		http.Error(w, "text or header is required", http.StatusBadRequest)
		return
	}
	if _, ok := d.notifiers[req.Target]; !ok {
		http.Error(w, fmt.Sprintf("unknown target %q", req.Target), http.StatusNotFound)
		return
	}

	del := domain.Delivery{
		ID:     uuid.NewString(),
		Target: req.Target,
		Message: domain.Message{
			Channel: req.Channel,
			Header:  req.Header,
			Text:    req.Text,
		},
		EnqueuedAt: time.Now(),
	}

	if err := d.Dispatch(r.Context(), del); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": del.ID, "status": "accepted"})
}
