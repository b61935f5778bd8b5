package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"vaulted/src/infra/files"
	"vaulted/src/music"
)

func newTestLibrary(t *testing.T) (*SqliteLibrary, string) {
	t.Helper()
	dir := t.TempDir()
	layout := files.NewLayout(filepath.Join(dir, "media"))
	lib, err := NewSqliteLibrary(filepath.Join(dir, "library.db"), layout)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib, dir
}

func writeAudioFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("not really audio: "+path), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestSeedDefaultPlaylist(t *testing.T) {
	dir := t.TempDir()
	layout := files.NewLayout(filepath.Join(dir, "media"))
	dbPath := filepath.Join(dir, "library.db")
	ctx := context.Background()

	lib, err := NewSqliteLibrary(dbPath, layout)
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}

	playlists, err := lib.GetPlaylists(ctx)
	if err != nil {
		t.Fatalf("GetPlaylists failed: %v", err)
	}
	if len(playlists) != 1 {
		t.Fatalf("expected exactly one seeded playlist, got %d", len(playlists))
	}
	if playlists[0].ID != music.DefaultPlaylistID || playlists[0].Title != music.DefaultPlaylistTitle {
		t.Errorf("unexpected seed: id=%d title=%q", playlists[0].ID, playlists[0].Title)
	}
	lib.Close()

	// Re-opening must be a no-op, no duplicate seed.
	lib2, err := NewSqliteLibrary(dbPath, layout)
	if err != nil {
		t.Fatalf("failed to reopen library: %v", err)
	}
	defer lib2.Close()

	playlists, err = lib2.GetPlaylists(ctx)
	if err != nil {
		t.Fatalf("GetPlaylists failed: %v", err)
	}
	if len(playlists) != 1 {
		t.Errorf("expected one playlist after reopen, got %d", len(playlists))
	}
}

func TestAddSongNormalizesFilePath(t *testing.T) {
	lib, dir := newTestLibrary(t)
	ctx := context.Background()
	source := writeAudioFile(t, "demo.mp3")

	song := &music.Song{
		Title:      "Demo",
		Artist:     "Someone",
		FilePath:   source,
		Duration:   120,
		PlaylistID: music.DefaultPlaylistID,
	}
	if err := lib.AddSong(ctx, song); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}

	got, err := lib.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("GetSong failed: %v", err)
	}
	if got.FilePath == source {
		t.Error("stored path must not equal the external source path")
	}
	wantPrefix := filepath.Join(dir, "media", "Playlist_1", "Songs")
	if !strings.HasPrefix(got.FilePath, wantPrefix) {
		t.Errorf("expected stored path under %s, got %s", wantPrefix, got.FilePath)
	}
	if _, err := os.Stat(source); err != nil {
		t.Errorf("source file must be left untouched: %v", err)
	}
}

func TestAddSongsSameBasenameDistinctPaths(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	first := writeAudioFile(t, "track.mp3")
	second := writeAudioFile(t, "track.mp3")

	songs := []*music.Song{
		{Title: "A", Artist: "X", FilePath: first, PlaylistID: 1},
		{Title: "B", Artist: "Y", FilePath: second, PlaylistID: 1},
	}
	if err := lib.AddSongs(ctx, songs); err != nil {
		t.Fatalf("AddSongs failed: %v", err)
	}

	if songs[0].FilePath == songs[1].FilePath {
		t.Fatalf("same basename must yield distinct stored paths, both %s", songs[0].FilePath)
	}
	a, _ := os.ReadFile(songs[0].FilePath)
	b, _ := os.ReadFile(songs[1].FilePath)
	if string(a) == string(b) {
		t.Error("one copy overwrote the other's content")
	}
}

func TestAddSongsBatchRollsBack(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	good := writeAudioFile(t, "good.mp3")
	songs := []*music.Song{
		{Title: "Good", Artist: "X", FilePath: good, PlaylistID: 1},
		{Title: "Broken", Artist: "X", FilePath: filepath.Join(t.TempDir(), "missing.mp3"), PlaylistID: 1},
	}

	err := lib.AddSongs(ctx, songs)
	if !errors.Is(err, music.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored, err := lib.GetSongs(ctx, 1)
	if err != nil {
		t.Fatalf("GetSongs failed: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("expected zero committed songs after rollback, got %d", len(stored))
	}
}

func TestDeletePlaylistCascades(t *testing.T) {
	lib, dir := newTestLibrary(t)
	ctx := context.Background()

	playlist := &music.Playlist{Title: "Mix"}
	if err := lib.AddPlaylist(ctx, playlist); err != nil {
		t.Fatalf("AddPlaylist failed: %v", err)
	}

	song := &music.Song{
		Title:      "Track",
		Artist:     "X",
		FilePath:   writeAudioFile(t, "track.mp3"),
		PlaylistID: playlist.ID,
	}
	if err := lib.AddSong(ctx, song); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	folder := filepath.Join(dir, "media", "Playlist_"+strconv.FormatInt(playlist.ID, 10))
	if _, err := os.Stat(folder); err != nil {
		t.Fatalf("expected playlist folder to exist: %v", err)
	}

	if err := lib.DeletePlaylist(ctx, playlist.ID); err != nil {
		t.Fatalf("DeletePlaylist failed: %v", err)
	}

	songs, err := lib.GetSongs(ctx, playlist.ID)
	if err != nil {
		t.Fatalf("GetSongs failed: %v", err)
	}
	if len(songs) != 0 {
		t.Errorf("expected cascade to remove songs, got %d", len(songs))
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Errorf("expected playlist folder to be removed from disk")
	}
}

func TestDeleteDefaultPlaylistForbidden(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	err := lib.DeletePlaylist(ctx, music.DefaultPlaylistID)
	if !errors.Is(err, music.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	playlist, err := lib.GetPlaylist(ctx, music.DefaultPlaylistID)
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	if playlist == nil {
		t.Error("default playlist must still exist")
	}
}

func TestUpdatePlaylistRelocatesThumbnail(t *testing.T) {
	lib, dir := newTestLibrary(t)
	ctx := context.Background()

	source := filepath.Join(t.TempDir(), "cover.png")
	if err := os.WriteFile(source, []byte("png"), 0644); err != nil {
		t.Fatalf("failed to write thumbnail: %v", err)
	}

	playlist, err := lib.GetPlaylist(ctx, music.DefaultPlaylistID)
	if err != nil {
		t.Fatalf("GetPlaylist failed: %v", err)
	}
	// Programmatic field mutation bypassing any import flow must still be
	// normalized on save.
	playlist.ThumbnailPath = source
	if err := lib.UpdatePlaylist(ctx, playlist); err != nil {
		t.Fatalf("UpdatePlaylist failed: %v", err)
	}

	got, _ := lib.GetPlaylist(ctx, music.DefaultPlaylistID)
	wantPrefix := filepath.Join(dir, "media", "Playlist_1", "Thumbnails")
	if !strings.HasPrefix(got.ThumbnailPath, wantPrefix) {
		t.Errorf("expected thumbnail under %s, got %s", wantPrefix, got.ThumbnailPath)
	}
}

func TestDeleteSongKeepsFile(t *testing.T) {
	lib, _ := newTestLibrary(t)
	ctx := context.Background()

	song := &music.Song{
		Title:      "Keep",
		Artist:     "X",
		FilePath:   writeAudioFile(t, "keep.mp3"),
		PlaylistID: 1,
	}
	if err := lib.AddSong(ctx, song); err != nil {
		t.Fatalf("AddSong failed: %v", err)
	}
	stored := song.FilePath

	if err := lib.DeleteSong(ctx, song.ID); err != nil {
		t.Fatalf("DeleteSong failed: %v", err)
	}

	if got, err := lib.GetSong(ctx, song.ID); err != nil || got != nil {
		t.Errorf("expected song row gone, got %v (err %v)", got, err)
	}
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("media file must survive song deletion: %v", err)
	}
}
