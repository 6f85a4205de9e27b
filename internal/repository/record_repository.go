package repository

import (
	"context"

	"transcript-summarizer/internal/domain/entity"
)

// PendingFilter narrows pending-record selection.
type PendingFilter struct {
	// ExcludeIDs lists external ids that must not be returned (skipped earlier in the run).
	ExcludeIDs []string
	// MaxAttempts excludes records whose failed attempts reached the limit. 0 disables the limit.
	MaxAttempts int
}

// RecordRepository is the record store used by the summarization run.
// Callers must assume a single writer: NextPending and SetSummary are not
// wrapped in a transaction or row lock.
type RecordRepository interface {
	// NextPending returns the pending record with the smallest chunk-count hint.
	// Returns (nil, nil) when no pending record matches the filter.
	NextPending(ctx context.Context, filter PendingFilter) (*entity.Record, error)
	// SetSummary writes the summary of exactly one pending record, matched by external id.
	// Returns an error wrapping ErrNoRowsUpdated when no row was updated.
	SetSummary(ctx context.Context, externalID, summary string) error
	// RecordFailure increments the failed-attempt counter of a record.
	RecordFailure(ctx context.Context, externalID string) error
}
