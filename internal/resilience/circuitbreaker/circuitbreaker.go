// Package circuitbreaker keeps a failing model service or record store from
// being called for every remaining record of a run. It is a thin layer over
// github.com/sony/gobreaker that adds ratio-based tripping, logging and the
// summarizer_circuit_breaker_state gauge.
package circuitbreaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"transcript-summarizer/internal/observability/metrics"
)

// Config holds the configuration for a circuit breaker.
type Config struct {
	// Name labels logs and the state gauge.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before going half-open.
	Timeout time.Duration

	// FailureThreshold is the failure ratio (0..1] that trips the breaker
	// once MinRequests have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

// CompletionConfig returns the breaker settings for a chat completion provider.
// A run makes at most a few calls per minute, so five calls with three
// failures are enough evidence that the provider is down.
func CompletionConfig(provider string) Config {
	return Config{
		Name:             provider + "-api",
		MaxRequests:      1,
		Interval:         5 * time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
}

// New creates a circuit breaker. Every state change is logged and exported.
func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.RecordCircuitBreakerState(name, int(to))
		},
	}
	metrics.RecordCircuitBreakerState(cfg.Name, int(gobreaker.StateClosed))

	return &CircuitBreaker{breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Run executes fn through cb. While the breaker is open it returns
// gobreaker.ErrOpenState (or ErrTooManyRequests when half-open) without calling fn.
func Run[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var out T
	_, err := cb.breaker.Execute(func() (interface{}, error) {
		var err error
		out, err = fn()
		return nil, err
	})
	return out, err
}

// IsRejection reports whether err means the breaker refused the call.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State returns the current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.breaker.Name()
}
