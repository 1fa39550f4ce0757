package errors

import (
	"errors"
	"sync"
	"time"
)

// State is the position of a CircuitBreaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen   = errors.New("circuit breaker is open")
	ErrTooManyProbes = errors.New("circuit breaker is probing")
)

var defaultBreakerOptions = BreakerOptions{
	FailureRatio:   0.5,
	MinRequests:    10,
	OpenFor:        30 * time.Second,
	HalfOpenProbes: 3,
}

// BreakerOptions tune when a CircuitBreaker trips and how it recovers.
type BreakerOptions struct {
	// FailureRatio trips the breaker once at least MinRequests were observed.
	FailureRatio float64
	MinRequests  int
	OpenFor      time.Duration

	// HalfOpenProbes successful calls close the breaker again.
	HalfOpenProbes int

	// OnStateChange runs with the breaker locked and must not call back into it.
	OnStateChange func(from, to State)
}

// DefaultBreakerOptions returns the settings used by NewCircuitBreaker.
func DefaultBreakerOptions() BreakerOptions {
	return defaultBreakerOptions
}

// CircuitBreaker stops calling a failing dependency for a while so callers fail fast.
type CircuitBreaker struct {
	opts BreakerOptions
	now  func() time.Time

	mu       sync.Mutex
	state    State
	total    int
	failed   int
	inFlight int
	probesOK int
	openedAt time.Time
}

// NewCircuitBreaker creates a closed breaker with the default options.
func NewCircuitBreaker() *CircuitBreaker {
	return NewCircuitBreakerWithOptions(defaultBreakerOptions)
}

// NewCircuitBreakerWithOptions creates a closed breaker. Zero fields take their defaults.
func NewCircuitBreakerWithOptions(opts BreakerOptions) *CircuitBreaker {
	if opts.FailureRatio <= 0 {
		opts.FailureRatio = defaultBreakerOptions.FailureRatio
	}
	if opts.MinRequests <= 0 {
		opts.MinRequests = defaultBreakerOptions.MinRequests
	}
	if opts.OpenFor <= 0 {
		opts.OpenFor = defaultBreakerOptions.OpenFor
	}
	if opts.HalfOpenProbes <= 0 {
		opts.HalfOpenProbes = defaultBreakerOptions.HalfOpenProbes
	}
	return &CircuitBreaker{opts: opts, now: time.Now}
}

// Call runs fn unless the breaker is open. The error of fn is returned unchanged.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if fn == nil {
		return nil
	}
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.record(err == nil)
	return err
}

// State reports the current position, moving an expired open breaker to half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.expireLocked()
	return cb.state
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.expireLocked()
	switch cb.state {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.inFlight+cb.probesOK >= cb.opts.HalfOpenProbes {
			return ErrTooManyProbes
		}
	}
	cb.inFlight++
	return nil
}

func (cb *CircuitBreaker) record(ok bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.inFlight > 0 {
		cb.inFlight--
	}

	if cb.state == StateHalfOpen {
		if !ok {
			cb.setStateLocked(StateOpen)
			return
		}
		cb.probesOK++
		if cb.probesOK >= cb.opts.HalfOpenProbes {
			cb.setStateLocked(StateClosed)
		}
		return
	}

	cb.total++
	if !ok {
		cb.failed++
	}
	if cb.total >= cb.opts.MinRequests && float64(cb.failed)/float64(cb.total) >= cb.opts.FailureRatio {
		cb.setStateLocked(StateOpen)
	}
}

func (cb *CircuitBreaker) expireLocked() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.opts.OpenFor {
		cb.setStateLocked(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) setStateLocked(next State) {
	prev := cb.state
	cb.state = next
	cb.total, cb.failed, cb.probesOK = 0, 0, 0
	if next == StateOpen {
		cb.openedAt = cb.now()
	}
	if prev != next && cb.opts.OnStateChange != nil {
		cb.opts.OnStateChange(prev, next)
	}
}
