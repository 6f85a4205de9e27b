// Command worker runs summarization unattended on a cron schedule.
//
// Confirmation of large records is answered by WORKER_CONFIRM_MODE (auto or
// skip). The process serves /health, /health/ready and /metrics on
// WORKER_HEALTH_PORT and stops on SIGINT or SIGTERM after the running job
// finishes.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"transcript-summarizer/internal/config"
	"transcript-summarizer/internal/infra/adapter/persistence/sqlstore"
	"transcript-summarizer/internal/infra/completion"
	"transcript-summarizer/internal/infra/confirm"
	"transcript-summarizer/internal/infra/db"
	workerPkg "transcript-summarizer/internal/infra/worker"
	"transcript-summarizer/internal/observability/logging"
	"transcript-summarizer/internal/observability/metrics"
	"transcript-summarizer/internal/resilience/circuitbreaker"
	"transcript-summarizer/internal/usecase/summarize"
)

const dbStatsInterval = 15 * time.Second

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.String("confirm_mode", workerConfig.ConfirmMode),
		slog.Int("health_port", workerConfig.HealthPort))

	cfg, err := config.LoadSummarizeConfig("")
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	cfg.ConfirmMode = workerConfig.ConfirmMode

	database := initDatabase(ctx, logger, cfg)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	store := circuitbreaker.NewDBCircuitBreaker(database)
	svc := setupService(logger, cfg, store)

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger, store)
	scheduler := workerPkg.NewScheduler(svc, *workerConfig, workerMetrics, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error {
		reportDBStats(gctx, database)
		return nil
	})

	healthServer.SetReady(true)

	if err := g.Wait(); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// initDatabase opens the record store and applies the schema. It exits on failure.
func initDatabase(ctx context.Context, logger *slog.Logger, cfg *config.SummarizeConfig) *sql.DB {
	database, err := db.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database, cfg.Database.Driver); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		_ = database.Close()
		os.Exit(1)
	}
	return database
}

// setupService wires the summarization service. It exits on configuration errors.
func setupService(logger *slog.Logger, cfg *config.SummarizeConfig, store *circuitbreaker.DBCircuitBreaker) *summarize.Service {
	apiKey, err := config.LoadAPIKey(cfg)
	if err != nil {
		logger.Error("failed to load API key", slog.Any("error", err))
		os.Exit(1)
	}

	completer, err := completion.New(cfg.Provider, apiKey, cfg.Completion())
	if err != nil {
		logger.Error("failed to create completion client", slog.Any("error", err))
		os.Exit(1)
	}

	input, err := confirm.FromMode(cfg.ConfirmMode, nil, nil)
	if err != nil {
		logger.Error("invalid confirm mode", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("summarization service initialized",
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
		slog.String("database_driver", cfg.Database.Driver))

	repo := sqlstore.NewRecordRepo(store, sqlstore.Dialect(cfg.Database.Driver))
	return summarize.NewService(repo, completer, nil, input, metrics.NewRecorder(cfg.Provider), cfg.Usecase())
}

// reportDBStats publishes connection pool gauges until ctx is done.
func reportDBStats(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()

	for {
		stats := database.Stats()
		metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
