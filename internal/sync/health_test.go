package sync

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthStartsHealthy(t *testing.T) {
	h := NewHealth()
	assert.True(t, h.Healthy())
	assert.True(t, h.ShouldPreferRemote())
	assert.True(t, h.LastFailureAt().IsZero())
}

func TestHealthFailureOpensBreaker(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealth(WithClock(func() time.Time { return now }))

	h.MarkFailure(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.False(t, h.Healthy())
	assert.False(t, h.ShouldPreferRemote())
	assert.Equal(t, now, h.LastFailureAt())
}

func TestHealthProbesAfterRetryDelay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealth(
		WithRetryDelay(30*time.Second),
		WithClock(func() time.Time { return now }),
	)

	h.MarkFailure(errors.New("i/o timeout"))
	assert.False(t, h.ShouldPreferRemote())

	now = now.Add(29 * time.Second)
	assert.False(t, h.ShouldPreferRemote())

	// The probe window is unconditional: once elapsed, callers retry
	// regardless of how many failures preceded.
	now = now.Add(time.Second)
	assert.True(t, h.ShouldPreferRemote())
	assert.False(t, h.Healthy())
}

func TestHealthRepeatedFailuresKeepSameWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	h := NewHealth(
		WithRetryDelay(30*time.Second),
		WithClock(func() time.Time { return now }),
	)

	h.MarkFailure(errors.New("network is unreachable"))
	now = now.Add(20 * time.Second)
	h.MarkFailure(errors.New("network is unreachable"))

	// Window restarts from the most recent failure, it never grows.
	now = now.Add(29 * time.Second)
	assert.False(t, h.ShouldPreferRemote())
	now = now.Add(time.Second)
	assert.True(t, h.ShouldPreferRemote())
}

func TestHealthRecovers(t *testing.T) {
	h := NewHealth()
	h.MarkFailure(errors.New("broken pipe"))
	assert.False(t, h.Healthy())

	h.MarkHealthy()
	assert.True(t, h.Healthy())
	assert.True(t, h.ShouldPreferRemote())
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"io timeout", errors.New("read tcp 10.1.2.3:44: i/o timeout"), true},
		{"no such host", errors.New("dial tcp: lookup db.internal: no such host"), true},
		{"eof mid stream", errors.New("unexpected EOF"), true},
		{"case insensitive", errors.New("Connection Reset by peer"), true},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "orders_pkey"`), false},
		{"check violation", errors.New("new row violates check constraint"), false},
		{"syntax error", errors.New("pq: syntax error at or near SELECT"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsNetworkError(tt.err))
		})
	}
}

func TestHealthCustomClassifier(t *testing.T) {
	sentinel := errors.New("scheduled maintenance")
	h := NewHealth(WithClassifier(func(err error) bool {
		return errors.Is(err, sentinel)
	}))

	assert.True(t, h.IsTransient(sentinel))
	assert.False(t, h.IsTransient(errors.New("connection refused")))
}

type fakeGauge struct {
	values []float64
}

func (g *fakeGauge) Set(v float64) { g.values = append(g.values, v) }

func TestHealthPublishesGaugeOnTransitions(t *testing.T) {
	gauge := &fakeGauge{}
	h := NewHealth(WithHealthGauge(gauge))

	h.MarkFailure(errors.New("connection refused"))
	h.MarkHealthy()

	assert.Equal(t, []float64{1, 0, 1}, gauge.values)
}
