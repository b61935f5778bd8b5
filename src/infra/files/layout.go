package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"vaulted/src/music"
)

const (
	songsDirName      = "Songs"
	thumbnailsDirName = "Thumbnails"
)

// Layout is the infrastructure implementation of the music.FileManager
// interface. It owns the managed folder tree under basePath.
type Layout struct {
	basePath string
}

// NewLayout creates a new managed folder layout rooted at basePath.
func NewLayout(basePath string) *Layout {
	return &Layout{basePath: basePath}
}

// BaseFolder returns the root managed directory, creating it if absent.
func (l *Layout) BaseFolder() (string, error) {
	if err := os.MkdirAll(l.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create base folder: %w", err)
	}
	return l.basePath, nil
}

// PlaylistFolder returns Playlist_{id} under the base folder, creating it if absent.
func (l *Layout) PlaylistFolder(playlistID int64) (string, error) {
	base, err := l.BaseFolder()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, fmt.Sprintf("Playlist_%d", playlistID))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create playlist folder: %w", err)
	}
	return dir, nil
}

// SongsFolder returns the playlist's Songs subfolder, creating it if absent.
func (l *Layout) SongsFolder(playlistID int64) (string, error) {
	return l.subfolder(playlistID, songsDirName)
}

// ThumbnailsFolder returns the playlist's Thumbnails subfolder, creating it if absent.
func (l *Layout) ThumbnailsFolder(playlistID int64) (string, error) {
	return l.subfolder(playlistID, thumbnailsDirName)
}

func (l *Layout) subfolder(playlistID int64, name string) (string, error) {
	dir, err := l.PlaylistFolder(playlistID)
	if err != nil {
		return "", err
	}
	sub := filepath.Join(dir, name)
	if err := os.MkdirAll(sub, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s folder: %w", name, err)
	}
	return sub, nil
}

// CopySongFile copies a media file into the playlist's Songs folder.
func (l *Layout) CopySongFile(ctx context.Context, sourcePath string, playlistID int64) (string, error) {
	dir, err := l.SongsFolder(playlistID)
	if err != nil {
		return "", err
	}
	return l.copyInto(sourcePath, dir)
}

// CopyThumbnail copies an image file into the playlist's Thumbnails folder.
func (l *Layout) CopyThumbnail(ctx context.Context, sourcePath string, playlistID int64) (string, error) {
	dir, err := l.ThumbnailsFolder(playlistID)
	if err != nil {
		return "", err
	}
	return l.copyInto(sourcePath, dir)
}

// copyInto copies sourcePath into destDir keeping the original basename.
// When a file of the same name already exists, an incrementing numeric
// suffix (name_1.ext, name_2.ext, ...) finds a free name; an existing file
// is never overwritten. The source file is left untouched.
func (l *Layout) copyInto(sourcePath, destDir string) (string, error) {
	if _, err := os.Stat(sourcePath); os.IsNotExist(err) {
		return "", fmt.Errorf("source file %s: %w", sourcePath, music.ErrNotFound)
	}

	fileName := filepath.Base(sourcePath)
	ext := filepath.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	dest := filepath.Join(destDir, fileName)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		dest = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}

	if err := copyFile(sourcePath, dest); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	return dest, nil
}

// InSongsFolder reports whether path already lives under the playlist's Songs folder.
func (l *Layout) InSongsFolder(path string, playlistID int64) bool {
	return l.inSubfolder(path, playlistID, songsDirName)
}

// InThumbnailsFolder reports whether path already lives under the playlist's Thumbnails folder.
func (l *Layout) InThumbnailsFolder(path string, playlistID int64) bool {
	return l.inSubfolder(path, playlistID, thumbnailsDirName)
}

func (l *Layout) inSubfolder(path string, playlistID int64, name string) bool {
	dir := filepath.Join(l.basePath, fmt.Sprintf("Playlist_%d", playlistID), name)
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// DeletePlaylistFolder removes the playlist's folder subtree from disk.
func (l *Layout) DeletePlaylistFolder(ctx context.Context, playlistID int64) error {
	dir := filepath.Join(l.basePath, fmt.Sprintf("Playlist_%d", playlistID))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete playlist folder %s: %w", dir, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFileStat, err := os.Stat(src)
	if err != nil {
		return err
	}

	if !sourceFileStat.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	source, err := os.Open(src)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destination.Close()
	_, err = io.Copy(destination, source)
	return err
}
