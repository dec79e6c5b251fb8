package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBreaker returns a breaker on a controllable clock.
func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker(cfg)
	cb.now = func() time.Time { return now }

	return cb, &now
}

func TestCircuitBreaker_InitialState(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 5, Timeout: 30 * time.Second, HalfOpenLimit: 3})

	assert.Equal(t, StateClosed, cb.State())
	require.NoError(t, cb.Allow())
}

func TestCircuitBreaker_ZeroConfigStillTrips(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Timeout: time.Second})

	cb.RecordFailure()

	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_ClosedToOpen(t *testing.T) {
	cb, now := newTestBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: 30 * time.Second, HalfOpenLimit: 2})

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	*now = now.Add(10 * time.Second)

	err := cb.Allow()

	var open *CircuitOpenError
	require.ErrorAs(t, err, &open)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 20*time.Second, open.RetryAfter)
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: 30 * time.Second, HalfOpenLimit: 2})

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpen(t *testing.T) {
	cfg := CircuitBreakerConfig{MaxFailures: 1, Timeout: 100 * time.Millisecond, HalfOpenLimit: 2}

	t.Run("probe after timeout", func(t *testing.T) {
		cb, now := newTestBreaker(cfg)

		cb.RecordFailure()
		require.Error(t, cb.Allow())

		*now = now.Add(150 * time.Millisecond)

		require.NoError(t, cb.Allow())
		assert.Equal(t, StateHalfOpen, cb.State())
	})

	t.Run("probes are limited", func(t *testing.T) {
		cb, now := newTestBreaker(cfg)

		cb.RecordFailure()
		*now = now.Add(150 * time.Millisecond)

		require.NoError(t, cb.Allow())
		require.NoError(t, cb.Allow())
		require.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
	})

	t.Run("successes close", func(t *testing.T) {
		cb, now := newTestBreaker(cfg)

		cb.RecordFailure()
		*now = now.Add(150 * time.Millisecond)
		require.NoError(t, cb.Allow())

		cb.RecordSuccess()
		assert.Equal(t, StateHalfOpen, cb.State())

		cb.RecordSuccess()
		assert.Equal(t, StateClosed, cb.State())
	})

	t.Run("failure reopens", func(t *testing.T) {
		cb, now := newTestBreaker(cfg)

		cb.RecordFailure()
		*now = now.Add(150 * time.Millisecond)
		require.NoError(t, cb.Allow())

		cb.RecordFailure()
		assert.Equal(t, StateOpen, cb.State())
	})
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	changes := make(chan [2]State, 1)

	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, Timeout: time.Second, HalfOpenLimit: 1})
	cb.OnStateChange(func(from, to State) { changes <- [2]State{from, to} })

	cb.RecordFailure()

	select {
	case got := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, got)
	case <-time.After(time.Second):
		t.Fatal("state change callback was not called")
	}
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenLimit: 10})

	var wg sync.WaitGroup

	for i := range 1000 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if cb.Allow() != nil {
				return
			}

			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		}()
	}

	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}
