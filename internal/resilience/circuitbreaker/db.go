package circuitbreaker

import (
	"context"
	"database/sql"
	"time"
)

// DBCircuitBreaker guards the record store connection. It satisfies the
// querier of the SQL record repository and the worker's readiness Pinger.
type DBCircuitBreaker struct {
	cb *CircuitBreaker
	db *sql.DB
}

// DBConfig opens after five consecutive failures and lets a trial call through after 30 seconds.
func DBConfig() Config {
	return Config{
		Name:             "record-store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 1.0,
		MinRequests:      5,
	}
}

// NewDBCircuitBreaker wraps db with DBConfig.
func NewDBCircuitBreaker(db *sql.DB) *DBCircuitBreaker {
	return NewDBCircuitBreakerWithConfig(db, DBConfig())
}

// NewDBCircuitBreakerWithConfig wraps db with a custom configuration.
func NewDBCircuitBreakerWithConfig(db *sql.DB, cfg Config) *DBCircuitBreaker {
	return &DBCircuitBreaker{cb: New(cfg), db: db}
}

// QueryContext runs a query unless the breaker is open.
func (d *DBCircuitBreaker) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return Run(d.cb, func() (*sql.Rows, error) {
		return d.db.QueryContext(ctx, query, args...)
	})
}

// ExecContext runs a statement unless the breaker is open.
func (d *DBCircuitBreaker) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return Run(d.cb, func() (sql.Result, error) {
		return d.db.ExecContext(ctx, query, args...)
	})
}

// PingContext checks the connection unless the breaker is open.
func (d *DBCircuitBreaker) PingContext(ctx context.Context) error {
	_, err := Run(d.cb, func() (struct{}, error) {
		return struct{}{}, d.db.PingContext(ctx)
	})
	return err
}

// State returns the breaker state.
func (d *DBCircuitBreaker) State() string {
	return d.cb.State().String()
}
