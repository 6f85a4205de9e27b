package main

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcript-summarizer/internal/infra/db"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SUMMARIZER_CONFIG", "SUMMARIZER_PROVIDER", "SUMMARIZER_MODEL", "SUMMARIZER_CONFIRM_MODE",
		"SUMMARIZER_KEY_FILE", "SUMMARIZER_MAX_ATTEMPTS", "SUMMARIZER_CONTEXT_LIMIT",
		"SUMMARIZER_OUTPUT_RESERVE", "SUMMARIZER_CHUNK_TOKEN_BUDGET", "SUMMARIZER_AUTO_CONFIRM_THRESHOLD",
		"SUMMARIZER_CHUNK_OUTPUT_TOKENS", "SUMMARIZER_TEMPERATURE", "SUMMARIZER_TIMEOUT",
		"SUMMARIZER_REQUESTS_PER_MINUTE", "SUMMARIZER_BASE_URL",
		"DATABASE_DRIVER", "DATABASE_URL", "LOG_FORMAT", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

// seedStore creates a SQLite store with the given transcriptions keyed by id.
func seedStore(t *testing.T, transcripts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "videos.db")

	database, err := db.Open(context.Background(), db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	require.NoError(t, db.MigrateUp(context.Background(), database, db.DriverSQLite))
	for id, text := range transcripts {
		_, err := database.Exec(`INSERT INTO videos (yt_id, title, transcription, chunks) VALUES (?, ?, ?, 1)`, id, "Title "+id, text)
		require.NoError(t, err)
	}
	return path
}

func summaries(t *testing.T, path string) map[string]sql.NullString {
	t.Helper()
	database, err := db.Open(context.Background(), db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	rows, err := database.Query(`SELECT yt_id, summary FROM videos`)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	out := map[string]sql.NullString{}
	for rows.Next() {
		var id string
		var summary sql.NullString
		require.NoError(t, rows.Scan(&id, &summary))
		out[id] = summary
	}
	require.NoError(t, rows.Err())
	return out
}

// seedUpstreamStore creates only the columns upstream ingestion writes.
func seedUpstreamStore(t *testing.T, transcripts map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upstream.db")

	database, err := db.Open(context.Background(), db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	_, err = database.Exec(`CREATE TABLE videos (yt_id TEXT PRIMARY KEY, title TEXT, transcription TEXT, summary TEXT, chunks INTEGER)`)
	require.NoError(t, err)
	for id, text := range transcripts {
		_, err := database.Exec(`INSERT INTO videos (yt_id, title, transcription, chunks) VALUES (?, ?, ?, 1)`, id, "Title "+id, text)
		require.NoError(t, err)
	}
	return path
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	clearEnv(t)
	path := seedStore(t, map[string]string{
		"abc": "a short transcript about go",
		"def": "another short transcript",
	})
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", "-confirm", "auto"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "summarized 0, skipped 0, invalid 0, failed 0")
	assert.Contains(t, stdout.String(), "dry run: 2 summaries generated, none written")

	got := summaries(t, path)
	require.Len(t, got, 2)
	for id, summary := range got {
		assert.False(t, summary.Valid, id)
	}
}

func TestRun_UpstreamSchemaWithoutMigrate(t *testing.T) {
	clearEnv(t)
	path := seedUpstreamStore(t, map[string]string{"abc": "a short transcript"})
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "dry run: 1 summaries generated, none written")

	database, err := db.Open(context.Background(), db.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	var attempts int
	require.NoError(t, database.QueryRow(`SELECT summarize_attempts FROM videos WHERE yt_id = 'abc'`).Scan(&attempts))
	assert.Equal(t, 0, attempts)
}

func TestRun_MissingTableWithoutMigrate(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "empty.db"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "videos table does not exist")
}

func TestRun_MigrateCreatesSchema(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "fresh.db"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", "-migrate"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "summarized 0")
}

func TestRun_MissingAPIKeyExitsBeforeTouchingStore(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUMMARIZER_KEY_FILE", filepath.Join(t.TempDir(), ".openAI_KEY"))
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(t.TempDir(), "untouched.db"))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "api key not configured")
	assert.Empty(t, stdout.String())
}

func TestRun_InvalidConfirmFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "unused")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", "-confirm", "sometimes"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "confirm_mode")
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"-verbose"}, strings.NewReader(""), &stdout, &stderr)

	assert.Equal(t, 2, code)
}

func TestRun_InterruptedRun(t *testing.T) {
	clearEnv(t)
	path := seedStore(t, map[string]string{"abc": "text"})
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-dry-run"}, strings.NewReader(""), &stdout, &stderr)

	// The ping in db.Open already fails on a cancelled context.
	assert.NotEqual(t, 0, code)
	assert.False(t, summaries(t, path)["abc"].Valid)
}
