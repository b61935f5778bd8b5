package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"vaulted/src/music"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteLibrary is a SQLite implementation of the music.Library interface.
//
// Every insert/update first normalizes the entity's asset paths through the
// file manager so that committed rows only ever reference files inside the
// managed folder tree.
type SqliteLibrary struct {
	db    *sql.DB
	files music.FileManager
}

// NewSqliteLibrary opens (or creates) the database at path, applies pending
// schema migrations and seeds the default playlist. A migration failure is
// returned to the caller and must abort startup.
func NewSqliteLibrary(path string, files music.FileManager) (*SqliteLibrary, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	lib := &SqliteLibrary{db: db, files: files}
	if err := lib.seedDefaultPlaylist(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return lib, nil
}

// Close closes the underlying database handle.
func (d *SqliteLibrary) Close() error {
	return d.db.Close()
}

// seedDefaultPlaylist guarantees the permanent "Unreleased" playlist exists.
// Safe to invoke on every startup.
func (d *SqliteLibrary) seedDefaultPlaylist(ctx context.Context) error {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlists WHERE id = ?`, music.DefaultPlaylistID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check default playlist: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO playlists (id, title, thumbnail_path)
		VALUES (?, ?, '')
	`, music.DefaultPlaylistID, music.DefaultPlaylistTitle)
	if err != nil {
		return fmt.Errorf("failed to seed default playlist: %w", err)
	}
	slog.Info("Seeded default playlist", "id", music.DefaultPlaylistID, "title", music.DefaultPlaylistTitle)
	return nil
}

// normalizePlaylistAssets relocates the playlist thumbnail into the managed
// tree when it lives elsewhere, rewriting the stored path before commit.
func (d *SqliteLibrary) normalizePlaylistAssets(ctx context.Context, playlist *music.Playlist) error {
	if playlist.ThumbnailPath == "" || d.files.InThumbnailsFolder(playlist.ThumbnailPath, playlist.ID) {
		return nil
	}
	newPath, err := d.files.CopyThumbnail(ctx, playlist.ThumbnailPath, playlist.ID)
	if err != nil {
		return fmt.Errorf("failed to relocate playlist thumbnail: %w", err)
	}
	slog.Debug("Relocated playlist thumbnail", "playlistID", playlist.ID, "from", playlist.ThumbnailPath, "to", newPath)
	playlist.ThumbnailPath = newPath
	return nil
}

// normalizeSongAssets relocates the song's media file and thumbnail into the
// managed tree when they live elsewhere.
func (d *SqliteLibrary) normalizeSongAssets(ctx context.Context, song *music.Song) error {
	if song.FilePath != "" && !d.files.InSongsFolder(song.FilePath, song.PlaylistID) {
		newPath, err := d.files.CopySongFile(ctx, song.FilePath, song.PlaylistID)
		if err != nil {
			return fmt.Errorf("failed to relocate song file: %w", err)
		}
		slog.Debug("Relocated song file", "songID", song.ID, "from", song.FilePath, "to", newPath)
		song.FilePath = newPath
	}
	if song.ThumbnailPath != "" && !d.files.InThumbnailsFolder(song.ThumbnailPath, song.PlaylistID) {
		newPath, err := d.files.CopyThumbnail(ctx, song.ThumbnailPath, song.PlaylistID)
		if err != nil {
			return fmt.Errorf("failed to relocate song thumbnail: %w", err)
		}
		song.ThumbnailPath = newPath
	}
	return nil
}

// AddPlaylist inserts a playlist. The row is created first so the generated
// id can name the playlist's managed folder; the thumbnail is relocated and
// the stored path rewritten inside the same transaction.
func (d *SqliteLibrary) AddPlaylist(ctx context.Context, playlist *music.Playlist) error {
	if err := playlist.Validate(); err != nil {
		slog.Error("AddPlaylist: validation failed", "error", err)
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO playlists (title, thumbnail_path)
		VALUES (?, '')
	`, playlist.Title)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	playlist.ID = id

	if err := d.normalizePlaylistAssets(ctx, playlist); err != nil {
		return err
	}
	if playlist.ThumbnailPath != "" {
		_, err = tx.ExecContext(ctx,
			`UPDATE playlists SET thumbnail_path = ? WHERE id = ?`,
			playlist.ThumbnailPath, playlist.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetPlaylist gets a playlist from the database. Returns (nil, nil) when absent.
func (d *SqliteLibrary) GetPlaylist(ctx context.Context, id int64) (*music.Playlist, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, thumbnail_path FROM playlists WHERE id = ?
	`, id)

	playlist := &music.Playlist{}
	err := row.Scan(&playlist.ID, &playlist.Title, &playlist.ThumbnailPath)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return playlist, nil
}

// GetPlaylists returns all playlists ordered by title.
func (d *SqliteLibrary) GetPlaylists(ctx context.Context) ([]*music.Playlist, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, thumbnail_path FROM playlists ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*music.Playlist
	for rows.Next() {
		playlist := &music.Playlist{}
		if err := rows.Scan(&playlist.ID, &playlist.Title, &playlist.ThumbnailPath); err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, rows.Err()
}

// UpdatePlaylist updates a playlist, normalizing its thumbnail path first so
// the committed row reflects the final managed location.
func (d *SqliteLibrary) UpdatePlaylist(ctx context.Context, playlist *music.Playlist) error {
	if err := playlist.Validate(); err != nil {
		slog.Error("UpdatePlaylist: validation failed", "error", err, "playlistID", playlist.ID)
		return err
	}
	if err := d.normalizePlaylistAssets(ctx, playlist); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE playlists SET title = ?, thumbnail_path = ? WHERE id = ?
	`, playlist.Title, playlist.ThumbnailPath, playlist.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePlaylist removes the playlist and all its songs in one transaction,
// then removes the playlist folder from disk. The folder removal is
// best-effort: a failure after commit is logged, never rolled back.
func (d *SqliteLibrary) DeletePlaylist(ctx context.Context, id int64) error {
	if id == music.DefaultPlaylistID {
		return fmt.Errorf("the default playlist cannot be deleted: %w", music.ErrForbidden)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE playlist_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if err := d.files.DeletePlaylistFolder(ctx, id); err != nil {
		// Rows are already gone; the orphaned folder is reported, not fatal.
		slog.Warn("Failed to delete playlist folder from filesystem", "playlistID", id, "error", err)
	}
	return nil
}

// AddSong inserts a single song in its own transaction.
func (d *SqliteLibrary) AddSong(ctx context.Context, song *music.Song) error {
	return d.AddSongs(ctx, []*music.Song{song})
}

// AddSongs inserts all songs in a single transaction: either every row
// commits or none do. Files relocated before a failure stay on disk as
// orphans, never referenced by a committed row.
func (d *SqliteLibrary) AddSongs(ctx context.Context, songs []*music.Song) error {
	if len(songs) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, song := range songs {
		if err := song.Validate(); err != nil {
			slog.Error("AddSongs: validation failed", "error", err, "title", song.Title)
			return err
		}
		if err := d.normalizeSongAssets(ctx, song); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO songs (title, artist, file_path, thumbnail_path, duration, playlist_id)
			VALUES (?, ?, ?, ?, ?, ?)
		`, song.Title, song.Artist, song.FilePath, song.ThumbnailPath, song.Duration, song.PlaylistID)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		song.ID = id
	}

	return tx.Commit()
}

// GetSong gets a song from the database. Returns (nil, nil) when absent.
func (d *SqliteLibrary) GetSong(ctx context.Context, id int64) (*music.Song, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, title, artist, file_path, thumbnail_path, duration, playlist_id
		FROM songs WHERE id = ?
	`, id)

	song := &music.Song{}
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.FilePath,
		&song.ThumbnailPath, &song.Duration, &song.PlaylistID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return song, nil
}

// GetSongs returns all songs of a playlist in declaration (insertion) order.
func (d *SqliteLibrary) GetSongs(ctx context.Context, playlistID int64) ([]*music.Song, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, artist, file_path, thumbnail_path, duration, playlist_id
		FROM songs WHERE playlist_id = ? ORDER BY id
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*music.Song
	for rows.Next() {
		song := &music.Song{}
		err := rows.Scan(&song.ID, &song.Title, &song.Artist, &song.FilePath,
			&song.ThumbnailPath, &song.Duration, &song.PlaylistID)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// UpdateSong updates a song, normalizing its asset paths first.
func (d *SqliteLibrary) UpdateSong(ctx context.Context, song *music.Song) error {
	if err := song.Validate(); err != nil {
		slog.Error("UpdateSong: validation failed", "error", err, "songID", song.ID)
		return err
	}
	if err := d.normalizeSongAssets(ctx, song); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE songs
		SET title = ?, artist = ?, file_path = ?, thumbnail_path = ?, duration = ?, playlist_id = ?
		WHERE id = ?
	`, song.Title, song.Artist, song.FilePath, song.ThumbnailPath,
		song.Duration, song.PlaylistID, song.ID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteSong removes the song row. The media file on disk is left alone;
// files are reclaimed only through playlist folder deletion.
func (d *SqliteLibrary) DeleteSong(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	return err
}

// CountPlaylists returns the number of playlists in the store.
func (d *SqliteLibrary) CountPlaylists(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists`).Scan(&count)
	return count, err
}

// CountSongs returns the number of songs in the store.
func (d *SqliteLibrary) CountSongs(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}
