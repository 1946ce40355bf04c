package health

import (
	"sync"
	"time"
)

const (
	degradedAfter = 1
	criticalAfter = 5
)

type targetStats struct {
	delivered           int64
	failed              int64
	consecutiveFailures int
	lastError           string
	lastSuccess         time.Time
}

// Monitor aggregates per-target delivery results into health status.
type Monitor struct {
	mu      sync.RWMutex
	targets map[string]*targetStats
}

// NewMonitor creates a monitor tracking the given targets.
func NewMonitor(targets []string) *Monitor {
	m := &Monitor{targets: make(map[string]*targetStats, len(targets))}
	for _, t := range targets {
		m.targets[t] = &targetStats{}
	}
	return m
}

// RecordSuccess notes a delivered notification for target.
func (m *Monitor) RecordSuccess(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats(target)
	s.delivered++
	s.consecutiveFailures = 0
	s.lastError = ""
	s.lastSuccess = time.Now()
}

// RecordFailure notes a terminally failed delivery for target.
func (m *Monitor) RecordFailure(target, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats(target)
	s.failed++
	s.consecutiveFailures++
	s.lastError = reason
}

func (m *Monitor) stats(target string) *targetStats {
	s, ok := m.targets[target]
	if !ok {
		s = &targetStats{}
		m.targets[target] = s
	}
	return s
}

// CheckHealth reports the current health of every tracked target.
func (m *Monitor) CheckHealth() map[string]TargetHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := make(map[string]TargetHealth, len(m.targets))
	for name, s := range m.targets {
		h := TargetHealth{
			Target:              name,
			Status:              StatusHealthy,
			ConsecutiveFailures: s.consecutiveFailures,
			Delivered:           s.delivered,
			Failed:              s.failed,
			LastError:           s.lastError,
		}
		if s.consecutiveFailures >= criticalAfter {
			h.Status = StatusCritical
		} else if s.consecutiveFailures >= degradedAfter {
			h.Status = StatusDegraded
		}
		report[name] = h
	}
	return report
}
