package resilience

import (
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/quantfold/orderflow-core/src/collections"
)

var CircuitOpenErr = fmt.Errorf("circuit breaker is open, trading halted")

const (
	DefaultFailureThreshold = 5
	DefaultFailureWindow    = 60 * time.Second
)

// CircuitBreaker counts failures in a sliding time window and trips once
// the threshold is reached. Tripping is a fail-safe: it halts further
// trading activity and stays tripped until an operator calls Reset.
// Constructed and injected explicitly, never shared module state.
type CircuitBreaker struct {
	FailureThreshold int
	Window           time.Duration

	mu       sync.Mutex
	failures *collections.Ring[time.Time]
	tripped  bool
	now      func() time.Time
}

func NewCircuitBreaker(failureThreshold int, window time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if window <= 0 {
		window = DefaultFailureWindow
	}

	return &CircuitBreaker{
		FailureThreshold: failureThreshold,
		Window:           window,
		failures:         collections.NewRing[time.Time](failureThreshold),
		now:              time.Now,
	}
}

// NewCircuitBreakerWithClock pins the clock for window tests.
func NewCircuitBreakerWithClock(failureThreshold int, window time.Duration, now func() time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(failureThreshold, window)
	cb.now = now
	return cb
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures.Push(cb.now())

	if cb.recentFailures() >= cb.FailureThreshold && !cb.tripped {
		cb.tripped = true
		log.Errorf("CircuitBreaker: tripped after %d failures within %v", cb.FailureThreshold, cb.Window)
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	// a success does not untrip the breaker: once capital safety demanded
	// a halt, only an explicit Reset resumes trading
}

func (cb *CircuitBreaker) recentFailures() int {
	cutoff := cb.now().Add(-cb.Window)

	count := 0
	for _, ts := range cb.failures.Values() {
		if !ts.Before(cutoff) {
			count++
		}
	}

	return count
}

func (cb *CircuitBreaker) ShouldTrip() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.tripped
}

// Reset clears all recorded failures. Intended for operator intervention
// and test isolation.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = collections.NewRing[time.Time](cb.FailureThreshold)
	cb.tripped = false
}

// Guard wraps an external call: it refuses to run once tripped and records
// the outcome otherwise.
func (cb *CircuitBreaker) Guard(name string, op func() error) error {
	if cb.ShouldTrip() {
		return fmt.Errorf("CircuitBreaker.Guard: %s refused: %w", name, CircuitOpenErr)
	}

	if err := op(); err != nil {
		cb.RecordFailure()
		return err
	}

	cb.RecordSuccess()
	return nil
}
