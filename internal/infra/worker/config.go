// Package worker runs summarization on a cron schedule and serves the
// health and metrics endpoints of the long-running process.
package worker

import (
	"fmt"
	"log/slog"
	"time"

	"transcript-summarizer/internal/infra/confirm"
	"transcript-summarizer/internal/pkg/config"
)

// WorkerConfig holds the configuration of the scheduled worker.
//
// Environment variables:
//   - CRON_SCHEDULE: five-field cron expression (default "0 * * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default "UTC")
//   - RUN_TIMEOUT: upper bound of one run, 1m-12h (default 30m)
//   - WORKER_CONFIRM_MODE: auto or skip (default auto)
//   - WORKER_HEALTH_PORT: 1024-65535 (default 9091)
type WorkerConfig struct {
	CronSchedule string
	Timezone     string
	RunTimeout   time.Duration

	// ConfirmMode answers large-record confirmations without a terminal.
	ConfirmMode string

	// HealthPort serves /health, /health/ready and /metrics.
	HealthPort int
}

// DefaultConfig returns an hourly schedule in UTC with auto-approval.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule: "0 * * * *",
		Timezone:     "UTC",
		RunTimeout:   30 * time.Minute,
		ConfirmMode:  confirm.ModeAuto,
		HealthPort:   9091,
	}
}

func validateConfirmMode(mode string) error {
	// Interactive confirmation needs a terminal the worker does not have.
	return config.ValidateOneOf(mode, confirm.ModeAuto, confirm.ModeSkip)
}

func validateRunTimeout(d time.Duration) error {
	return config.ValidateDuration(d, time.Minute, 12*time.Hour)
}

func validateHealthPort(port int) error {
	return config.ValidateIntRange(port, 1024, 65535)
}

// Validate checks every field and aggregates the failures.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := validateRunTimeout(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := validateConfirmMode(c.ConfirmMode); err != nil {
		errs = append(errs, fmt.Errorf("confirm mode: %w", err))
	}
	if err := validateHealthPort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration with fail-open fallback:
// an invalid value is replaced by its default, logged and counted in metrics.
// The returned configuration is always valid; the error is always nil.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	fallbackApplied = metrics.Observe(logger, "cron_schedule", result) || fallbackApplied

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	fallbackApplied = metrics.Observe(logger, "timezone", result) || fallbackApplied

	result = config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, validateRunTimeout)
	cfg.RunTimeout = result.Value.(time.Duration)
	fallbackApplied = metrics.Observe(logger, "run_timeout", result) || fallbackApplied

	result = config.LoadEnvWithFallback("WORKER_CONFIRM_MODE", cfg.ConfirmMode, validateConfirmMode)
	cfg.ConfirmMode = result.Value.(string)
	fallbackApplied = metrics.Observe(logger, "confirm_mode", result) || fallbackApplied

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, validateHealthPort)
	cfg.HealthPort = result.Value.(int)
	fallbackApplied = metrics.Observe(logger, "health_port", result) || fallbackApplied

	metrics.SetFallbackActive(fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
