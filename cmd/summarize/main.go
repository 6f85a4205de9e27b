// Command summarize runs one batch of transcript summarization.
//
// Records in the videos table with a transcription and no summary are
// processed one at a time, smallest first. Large records are split into
// chunks and, above the auto-confirm threshold, the operator is asked
// whether to proceed.
//
// Usage:
//
//	summarize [-config file.yaml] [-confirm interactive|auto|skip] [-dry-run] [-migrate]
//
// Without -migrate the videos table must already exist; a missing
// summarize_attempts column is added in place. -dry-run generates summaries
// locally and leaves the store untouched.
//
// Only one summarize or worker process should run against a record store
// at a time.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"transcript-summarizer/internal/config"
	"transcript-summarizer/internal/infra/adapter/persistence/sqlstore"
	"transcript-summarizer/internal/infra/completion"
	"transcript-summarizer/internal/infra/confirm"
	"transcript-summarizer/internal/infra/db"
	"transcript-summarizer/internal/observability/logging"
	"transcript-summarizer/internal/observability/metrics"
	"transcript-summarizer/internal/resilience/circuitbreaker"
	"transcript-summarizer/internal/usecase/summarize"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
// Prompts go to stdout; logs go to stderr.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("summarize", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	confirmMode := flags.String("confirm", "", "confirmation mode: interactive, auto or skip (overrides config)")
	dryRun := flags.Bool("dry-run", false, "answer completions locally and write nothing to the record store")
	migrate := flags.Bool("migrate", false, "create the videos table and index before running")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := logging.New(stderr, logging.FormatJSON)

	cfg, err := config.LoadSummarizeConfig(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		return 1
	}
	if *confirmMode != "" {
		cfg.ConfirmMode = *confirmMode
	}
	if *dryRun {
		cfg.Provider = completion.ProviderDryRun
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		return 1
	}

	logger = logging.New(stderr, cfg.LogFormat)
	slog.SetDefault(logger)

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	ctx = logging.WithLogger(ctx, logger)

	svc, cleanup, err := setup(ctx, cfg, *migrate, stdin, stdout)
	if err != nil {
		logger.Error("failed to initialize", slog.String("run_id", runID), slog.Any("error", err))
		return 1
	}
	defer cleanup()

	stats, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run interrupted", slog.String("run_id", runID), slog.Int("summarized", stats.Summarized))
			return 130
		}
		logger.Error("run failed", slog.String("run_id", runID), slog.Any("error", err))
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "summarized %d, skipped %d, invalid %d, failed %d\n",
		stats.Summarized, stats.Skipped, stats.Invalid, stats.Failed+stats.PersistFailures)
	if stats.Previewed > 0 {
		_, _ = fmt.Fprintf(stdout, "dry run: %d summaries generated, none written\n", stats.Previewed)
	}
	return 0
}

// setup wires the record store, model service and input provider.
// Configuration problems surface here, before the first record is fetched.
func setup(ctx context.Context, cfg *config.SummarizeConfig, migrate bool, stdin io.Reader, stdout io.Writer) (*summarize.Service, func(), error) {
	apiKey, err := config.LoadAPIKey(cfg)
	if err != nil {
		return nil, nil, err
	}

	completer, err := completion.New(cfg.Provider, apiKey, cfg.Completion())
	if err != nil {
		return nil, nil, &config.ConfigurationError{Field: "provider", Err: err}
	}

	input, err := confirm.FromMode(cfg.ConfirmMode, stdin, stdout)
	if err != nil {
		return nil, nil, &config.ConfigurationError{Field: "confirm_mode", Err: err}
	}

	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("error", err))
		}
	}

	if migrate {
		err = db.MigrateUp(ctx, database, cfg.Database.Driver)
	} else {
		err = db.EnsureAttemptsColumn(ctx, database, cfg.Database.Driver)
	}
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("prepare schema: %w", err)
	}

	store := circuitbreaker.NewDBCircuitBreaker(database)
	repo := sqlstore.NewRecordRepo(store, sqlstore.Dialect(cfg.Database.Driver))

	svc := summarize.NewService(repo, completer, nil, input, metrics.NewRecorder(cfg.Provider), cfg.Usecase())
	return svc, cleanup, nil
}
