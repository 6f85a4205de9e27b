package completion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"transcript-summarizer/internal/resilience/circuitbreaker"
	"transcript-summarizer/internal/resilience/retry"
)

// guard applies pacing, retry and circuit breaking around one provider call.
type guard struct {
	name        string
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	limiter     *rate.Limiter
	timeout     time.Duration
}

func newGuard(cbConfig circuitbreaker.Config, cfg Config) *guard {
	return &guard{
		name:        cbConfig.Name,
		breaker:     circuitbreaker.New(cbConfig),
		retryConfig: cfg.retryConfig(),
		limiter:     newLimiter(cfg.RequestsPerMinute),
		timeout:     cfg.Timeout,
	}
}

// newLimiter allows requestsPerMinute calls per minute with no burst.
func newLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// call runs fn with a timeout, through the limiter and breaker, retrying retryable errors.
func (g *guard) call(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var result string
	retryErr := retry.WithBackoff(ctx, g.retryConfig, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		text, err := circuitbreaker.Run(g.breaker, func() (string, error) {
			return fn(ctx)
		})
		if err != nil {
			if circuitbreaker.IsRejection(err) {
				slog.Warn("circuit breaker open, request rejected",
					slog.String("service", g.name),
					slog.String("state", g.breaker.State().String()))
				return fmt.Errorf("%s unavailable: %w", g.name, err)
			}
			return err
		}

		result = text
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("%s completion failed: %w", g.name, retryErr)
	}
	return result, nil
}
