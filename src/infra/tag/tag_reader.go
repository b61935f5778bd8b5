package tag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vaulted/src/features/importing"
	"vaulted/src/music"

	"github.com/dhowden/tag"
)

// TagReader reads metadata from audio files using the dhowden/tag library.
type TagReader struct{}

// NewTagReader creates a new TagReader.
func NewTagReader() importing.TagReader {
	return &TagReader{}
}

// ReadFileTags reads title, artist, duration and embedded cover art from an
// audio file. A file whose container cannot be parsed fails with
// music.ErrUnreadable; a valid file without tags yields empty fields for the
// caller to fill with fallbacks.
func (r *TagReader) ReadFileTags(ctx context.Context, filePath string) (*importing.FileTags, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("audio file %s: %w", filePath, music.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	result := &importing.FileTags{}

	// Duration comes from the container itself; a file whose frames cannot
	// be parsed is not a valid audio file.
	duration, err := fileDuration(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", filePath, err, music.ErrUnreadable)
	}
	result.Duration = duration

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) || isWav(filePath) {
			// No tags is fine; the importer falls back to the filename stem
			// and "Unknown Artist".
			return result, nil
		}
		return nil, fmt.Errorf("failed to read tags from %s: %v: %w", filePath, err, music.ErrUnreadable)
	}

	result.Title = strings.TrimSpace(meta.Title())
	result.Artist = strings.TrimSpace(meta.Artist())
	if pic := meta.Picture(); pic != nil && len(pic.Data) > 0 {
		result.Picture = pic.Data
	}
	return result, nil
}

func isWav(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}
