package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one ordered schema change. Statements must be written so that
// re-running a partially applied migration is harmless.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `
		CREATE TABLE IF NOT EXISTS playlists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			thumbnail_path TEXT NOT NULL DEFAULT ''
		);
	`},
	{2, `
		CREATE TABLE IF NOT EXISTS songs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			file_path TEXT NOT NULL,
			thumbnail_path TEXT NOT NULL DEFAULT '',
			duration REAL NOT NULL DEFAULT 0,
			playlist_id INTEGER NOT NULL DEFAULT 1
				REFERENCES playlists(id) ON DELETE CASCADE
		);
	`},
	{3, `
		CREATE INDEX IF NOT EXISTS idx_songs_playlist ON songs(playlist_id);
	`},
}

// runMigrations applies every pending migration in order, recording each
// applied version in schema_migrations. Each migration runs in its own
// transaction together with its version record.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && m.version <= int(current.Int64) {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
		_, err = tx.Exec(`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().Format(time.RFC3339))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
		}
		slog.Info("Applied schema migration", "version", m.version)
	}
	return nil
}
