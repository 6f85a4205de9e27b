// Package sqlstore provides the SQL implementation of the record repository.
// One implementation serves PostgreSQL and SQLite; the dialect only changes
// the placeholder format squirrel renders.
package sqlstore

import (
	sq "github.com/Masterminds/squirrel"

	"transcript-summarizer/internal/repository"
)

const (
	recordsTable = "videos"

	colExternalID    = "yt_id"
	colTitle         = "title"
	colTranscription = "transcription"
	colSummary       = "summary"
	colChunkHint     = "chunks"
	colAttempts      = "summarize_attempts"
)

// Dialect selects the SQL placeholder style.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// RecordQueryBuilder renders the record store statements for one dialect.
type RecordQueryBuilder struct {
	builder sq.StatementBuilderType
}

// NewRecordQueryBuilder creates a builder using $N placeholders for Postgres and ? otherwise.
func NewRecordQueryBuilder(dialect Dialect) *RecordQueryBuilder {
	var format sq.PlaceholderFormat = sq.Question
	if dialect == DialectPostgres {
		format = sq.Dollar
	}
	return &RecordQueryBuilder{builder: sq.StatementBuilder.PlaceholderFormat(format)}
}

// NextPending selects at most one pending record ordered by chunk-count hint.
//
// Example output (Postgres, MaxAttempts=3, one excluded id):
//
//	SELECT yt_id, title, transcription, summary, chunks, summarize_attempts FROM videos
//	WHERE transcription IS NOT NULL AND summary IS NULL AND summarize_attempts < $1
//	AND yt_id NOT IN ($2) ORDER BY chunks ASC LIMIT 1
func (qb *RecordQueryBuilder) NextPending(filter repository.PendingFilter) (string, []interface{}, error) {
	query := qb.builder.
		Select(colExternalID, colTitle, colTranscription, colSummary, colChunkHint, colAttempts).
		From(recordsTable).
		Where(sq.NotEq{colTranscription: nil}).
		Where(sq.Eq{colSummary: nil})

	if filter.MaxAttempts > 0 {
		query = query.Where(sq.Lt{colAttempts: filter.MaxAttempts})
	}
	if len(filter.ExcludeIDs) > 0 {
		query = query.Where(sq.NotEq{colExternalID: filter.ExcludeIDs})
	}

	return query.OrderBy(colChunkHint + " ASC").Limit(1).ToSql()
}

// SetSummary writes the summary of one still-pending record.
// The summary IS NULL guard keeps the write-once invariant.
func (qb *RecordQueryBuilder) SetSummary(externalID, summary string) (string, []interface{}, error) {
	return qb.builder.
		Update(recordsTable).
		Set(colSummary, summary).
		Where(sq.Eq{colExternalID: externalID}).
		Where(sq.Eq{colSummary: nil}).
		ToSql()
}

// RecordFailure increments the failed-attempt counter.
func (qb *RecordQueryBuilder) RecordFailure(externalID string) (string, []interface{}, error) {
	return qb.builder.
		Update(recordsTable).
		Set(colAttempts, sq.Expr("COALESCE("+colAttempts+", 0) + 1")).
		Where(sq.Eq{colExternalID: externalID}).
		ToSql()
}
