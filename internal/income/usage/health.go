package usage

import (
	"sync"
	"time"
)

// State is the consumer's lifecycle state.
type State string

const (
	// StateRunning: consuming normally.
	StateRunning State = "Running"
	// StateGrace: consumption stopped after a store failure, but still within
	// the grace window. Health reports up so a transient store outage does
	// not bounce the whole process.
	StateGrace State = "Grace"
	// StateDown: the grace window elapsed without recovery.
	StateDown State = "Down"
)

// Health is the consumer's grace-period state machine. Running moves to Grace
// when consumption stops on a store failure; Grace reports healthy until the
// grace duration has passed since the failure, then reports Down. Stopping
// the consumer is a terminal transition independent of the machine.
type Health struct {
	mu       sync.Mutex
	grace    time.Duration
	degraded *time.Time
	stopped  bool
}

// NewHealth creates a health tracker in the Running state.
func NewHealth(grace time.Duration) *Health {
	return &Health{grace: grace}
}

// NewHealthDegradedAt creates a tracker already in the grace window, counted
// from the given time. Used when reconstructing state and in tests.
func NewHealthDegradedAt(from time.Time, grace time.Duration) *Health {
	h := &Health{grace: grace}
	h.degraded = &from
	return h
}

// MarkDegraded starts the grace timer. Later calls keep the original start so
// repeated failures never extend the window.
func (h *Health) MarkDegraded(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.degraded == nil {
		h.degraded = &at
	}
}

// MarkStopped records the terminal shutdown transition.
func (h *Health) MarkStopped() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}

// StateAt reports the machine state at the given time.
func (h *Health) StateAt(now time.Time) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.degraded == nil {
		return StateRunning
	}
	if now.Sub(*h.degraded) < h.grace {
		return StateGrace
	}
	return StateDown
}

// IsAlive reports liveness: Running and Grace are up, Down is not.
func (h *Health) IsAlive(now time.Time) bool {
	return h.StateAt(now) != StateDown
}

// Stopped reports whether the consumer has been shut down.
func (h *Health) Stopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}
