package sqlstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-summarizer/internal/infra/adapter/persistence/sqlstore"
	"transcript-summarizer/internal/infra/db"
	"transcript-summarizer/internal/repository"
)

func newSQLiteRepo(t *testing.T) (*sqlstore.RecordRepo, func(query string, args ...interface{})) {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.MigrateUp(ctx, conn, db.DriverSQLite))

	exec := func(query string, args ...interface{}) {
		_, err := conn.ExecContext(ctx, query, args...)
		require.NoError(t, err)
	}
	return sqlstore.NewRecordRepo(conn, sqlstore.DialectSQLite), exec
}

func TestRecordRepo_SQLite_PendingOrderAndWriteOnce(t *testing.T) {
	repo, exec := newSQLiteRepo(t)
	ctx := context.Background()

	exec(`INSERT INTO videos (yt_id, title, transcription, chunks) VALUES ('big', 'Big', 'a b c', 5)`)
	exec(`INSERT INTO videos (yt_id, title, transcription, chunks) VALUES ('small', 'Small', 'a', 1)`)
	exec(`INSERT INTO videos (yt_id, title, transcription, summary, chunks) VALUES ('done', 'Done', 'a', 'old', 0)`)
	exec(`INSERT INTO videos (yt_id, title, chunks) VALUES ('notext', 'No text', 0)`)

	rec, err := repo.NextPending(ctx, repository.PendingFilter{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "small", rec.ExternalID)

	require.NoError(t, repo.SetSummary(ctx, "small", "tiny"))

	// Second write to the same record is refused.
	err = repo.SetSummary(ctx, "small", "again")
	assert.ErrorIs(t, err, repository.ErrNoRowsUpdated)

	rec, err = repo.NextPending(ctx, repository.PendingFilter{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "big", rec.ExternalID)

	rec, err = repo.NextPending(ctx, repository.PendingFilter{ExcludeIDs: []string{"big"}})
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestRecordRepo_SQLite_AttemptsLimit(t *testing.T) {
	repo, exec := newSQLiteRepo(t)
	ctx := context.Background()

	exec(`INSERT INTO videos (yt_id, title, transcription, chunks) VALUES ('flaky', 'Flaky', 'words', 1)`)

	require.NoError(t, repo.RecordFailure(ctx, "flaky"))
	require.NoError(t, repo.RecordFailure(ctx, "flaky"))

	rec, err := repo.NextPending(ctx, repository.PendingFilter{MaxAttempts: 3})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 2, rec.Attempts)

	require.NoError(t, repo.RecordFailure(ctx, "flaky"))

	rec, err = repo.NextPending(ctx, repository.PendingFilter{MaxAttempts: 3})
	require.NoError(t, err)
	assert.Nil(t, rec)

	// Unlimited attempts still returns it.
	rec, err = repo.NextPending(ctx, repository.PendingFilter{})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 3, rec.Attempts)
}
