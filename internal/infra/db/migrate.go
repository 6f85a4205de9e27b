package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MigrateUp creates the videos table and its pending-selection index when missing.
// Tables created by upstream ingestion without the attempts column get it
// added in place.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS videos (
    yt_id              TEXT PRIMARY KEY,
    title              TEXT NOT NULL DEFAULT '',
    transcription      TEXT,
    summary            TEXT,
    chunks             INTEGER,
    summarize_attempts INTEGER NOT NULL DEFAULT 0
)`); err != nil {
		return err
	}

	if err := EnsureAttemptsColumn(ctx, db, driver); err != nil {
		return err
	}

	indexes := []string{
		// FETCH: WHERE transcription IS NOT NULL AND summary IS NULL ORDER BY chunks
		`CREATE INDEX IF NOT EXISTS idx_videos_pending ON videos(chunks) WHERE summary IS NULL AND transcription IS NOT NULL`,
	}
	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return err
		}
	}

	return nil
}

const addAttemptsColumn = `ALTER TABLE videos ADD COLUMN summarize_attempts INTEGER NOT NULL DEFAULT 0`

// ErrNoVideosTable is returned when the videos table does not exist.
var ErrNoVideosTable = errors.New("videos table does not exist")

// EnsureAttemptsColumn adds the summarize_attempts column to an existing
// videos table that lacks it. It never creates the table itself.
func EnsureAttemptsColumn(ctx context.Context, db *sql.DB, driver string) error {
	switch driver {
	case DriverPostgres:
		if _, err := db.ExecContext(ctx, `ALTER TABLE videos ADD COLUMN IF NOT EXISTS summarize_attempts INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add summarize_attempts column: %w", err)
		}
		return nil
	case DriverSQLite:
		return ensureSQLiteAttemptsColumn(ctx, db)
	default:
		_, err := sqlDriverName(driver)
		return err
	}
}

func ensureSQLiteAttemptsColumn(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('videos')`)
	if err != nil {
		return fmt.Errorf("inspect videos table: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns int
	found := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("inspect videos table: %w", err)
		}
		columns++
		if name == "summarize_attempts" {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect videos table: %w", err)
	}
	if columns == 0 {
		return ErrNoVideosTable
	}
	if found {
		return nil
	}
	// Single connection pool: release it before the ALTER.
	_ = rows.Close()

	if _, err := db.ExecContext(ctx, addAttemptsColumn); err != nil {
		return fmt.Errorf("add summarize_attempts column: %w", err)
	}
	return nil
}
