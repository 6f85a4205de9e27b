package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"transcript-summarizer/internal/domain/entity"
	"transcript-summarizer/internal/observability/metrics"
	"transcript-summarizer/internal/repository"
	"transcript-summarizer/internal/resilience/retry"
)

// Querier is the subset of *sql.DB the repository needs.
// *sql.DB and *circuitbreaker.DBCircuitBreaker both satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// RecordRepo implements repository.RecordRepository on a SQL database.
type RecordRepo struct {
	db           Querier
	queryBuilder *RecordQueryBuilder
	retryConfig  retry.Config
}

var _ repository.RecordRepository = (*RecordRepo)(nil)

// NewRecordRepo creates a record repository for the given dialect.
func NewRecordRepo(db Querier, dialect Dialect) *RecordRepo {
	return &RecordRepo{
		db:           db,
		queryBuilder: NewRecordQueryBuilder(dialect),
		retryConfig:  retry.DBConfig(),
	}
}

// NextPending returns the pending record with the smallest chunk-count hint,
// or (nil, nil) when none matches.
func (repo *RecordRepo) NextPending(ctx context.Context, filter repository.PendingFilter) (*entity.Record, error) {
	query, args, err := repo.queryBuilder.NextPending(filter)
	if err != nil {
		return nil, fmt.Errorf("NextPending: build: %w", err)
	}

	start := time.Now()
	rows, err := repo.db.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("next_pending", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("NextPending: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}

	var (
		record        entity.Record
		title         sql.NullString
		transcription sql.NullString
		summary       sql.NullString
		chunkHint     sql.NullInt64
		attempts      sql.NullInt64
	)
	if err := rows.Scan(&record.ExternalID, &title, &transcription, &summary, &chunkHint, &attempts); err != nil {
		return nil, fmt.Errorf("NextPending: Scan: %w", err)
	}

	record.Title = title.String
	record.Transcription = transcription.String
	if summary.Valid {
		record.Summary = &summary.String
	}
	record.ChunkCountHint = int(chunkHint.Int64)
	record.Attempts = int(attempts.Int64)

	return &record, rows.Err()
}

// SetSummary writes the summary with a single parameterized UPDATE.
// Transient connection errors are retried; zero affected rows is reported as
// repository.ErrNoRowsUpdated.
func (repo *RecordRepo) SetSummary(ctx context.Context, externalID, summary string) error {
	query, args, err := repo.queryBuilder.SetSummary(externalID, summary)
	if err != nil {
		return fmt.Errorf("SetSummary: build: %w", err)
	}

	var affected int64
	start := time.Now()
	err = retry.WithBackoff(ctx, repo.retryConfig, func() error {
		res, execErr := repo.db.ExecContext(ctx, query, args...)
		if execErr != nil {
			return execErr
		}
		affected, execErr = res.RowsAffected()
		return execErr
	})
	metrics.RecordDBQuery("set_summary", time.Since(start))
	if err != nil {
		return fmt.Errorf("SetSummary: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("SetSummary: %s: %w", externalID, repository.ErrNoRowsUpdated)
	}
	return nil
}

// RecordFailure increments the failed-attempt counter of a record.
func (repo *RecordRepo) RecordFailure(ctx context.Context, externalID string) error {
	query, args, err := repo.queryBuilder.RecordFailure(externalID)
	if err != nil {
		return fmt.Errorf("RecordFailure: build: %w", err)
	}

	start := time.Now()
	_, err = repo.db.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery("record_failure", time.Since(start))
	if err != nil {
		return fmt.Errorf("RecordFailure: %w", err)
	}
	return nil
}
