package sync

import (
	"strings"
	"sync"
	"time"
)

// DefaultRetryDelay is how long after a network failure the tracker
// waits before letting callers probe the remote store again. This is an
// unconditional probe-on-timeout policy: once the window elapses every
// caller reattempts the remote, regardless of how many failures came
// before. It is deliberately not exponential backoff.
const DefaultRetryDelay = 30 * time.Second

// networkErrorHints is the substring heuristic used to decide whether an
// error from the remote store is transient connectivity trouble or a
// permanent logical failure. Matching is case-insensitive. Known
// limitation: any error whose message happens to contain one of these
// phrases gets retried, and a genuine outage with an unrecognized
// message fails the record permanently. Extend via WithClassifier, do
// not second-guess individual messages here.
var networkErrorHints = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"network",
	"timeout",
	"timed out",
	"broken pipe",
	"fetch failed",
	"dial tcp",
	"i/o timeout",
	"eof",
}

// Classifier reports whether an error is transient (network-shaped) and
// therefore worth retrying through the pending queue.
type Classifier func(error) bool

// IsNetworkError is the default Classifier.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, hint := range networkErrorHints {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

// Health is the single source of truth for "is it worth trying the
// remote store right now". Unlike the single-threaded runtime this was
// ported from, gin serves requests on many goroutines, so the state is
// mutex-guarded.
// gaugeSetter is the slice of prometheus.Gauge the tracker needs to
// publish its state.
type gaugeSetter interface {
	Set(float64)
}

type Health struct {
	mu            sync.Mutex
	healthy       bool
	lastFailureAt time.Time
	retryDelay    time.Duration
	classify      Classifier
	now           func() time.Time
	gauge         gaugeSetter
}

type HealthOption func(*Health)

// WithRetryDelay overrides the probe window.
func WithRetryDelay(d time.Duration) HealthOption {
	return func(h *Health) { h.retryDelay = d }
}

// WithClassifier swaps the transient-error heuristic.
func WithClassifier(c Classifier) HealthOption {
	return func(h *Health) { h.classify = c }
}

// WithClock injects the clock, for tests.
func WithClock(now func() time.Time) HealthOption {
	return func(h *Health) { h.now = now }
}

// WithHealthGauge publishes the healthy flag as a 0/1 gauge on every
// transition.
func WithHealthGauge(g gaugeSetter) HealthOption {
	return func(h *Health) { h.gauge = g }
}

// NewHealth returns a tracker that starts healthy.
func NewHealth(opts ...HealthOption) *Health {
	h := &Health{
		healthy:    true,
		retryDelay: DefaultRetryDelay,
		classify:   IsNetworkError,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.gauge != nil {
		h.gauge.Set(1)
	}
	return h
}

// MarkHealthy records a successful remote operation.
func (h *Health) MarkHealthy() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthy = true
	if h.gauge != nil {
		h.gauge.Set(1)
	}
}

// MarkFailure records a network-classified failure and opens the
// breaker.
func (h *Health) MarkFailure(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.healthy = false
	h.lastFailureAt = h.now()
	if h.gauge != nil {
		h.gauge.Set(0)
	}
}

// ShouldPreferRemote reports whether new operations should attempt the
// remote store directly. True while healthy, or once the retry delay
// has elapsed since the last failure.
func (h *Health) ShouldPreferRemote() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.healthy {
		return true
	}
	return h.now().Sub(h.lastFailureAt) >= h.retryDelay
}

// IsTransient classifies an error with the configured heuristic.
func (h *Health) IsTransient(err error) bool {
	return h.classify(err)
}

// LastFailureAt returns when the breaker last opened, zero if never.
func (h *Health) LastFailureAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastFailureAt
}

// Healthy reports the raw flag without the probe-window grace.
func (h *Health) Healthy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.healthy
}
