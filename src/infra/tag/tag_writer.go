package tag

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"vaulted/src/features/library"

	"github.com/bogem/id3v2/v2"
)

// TagWriter writes edited title/artist back into the audio file's tags so
// the file stays consistent with the library when copied elsewhere.
type TagWriter struct{}

// NewTagWriter creates a new TagWriter.
func NewTagWriter() library.TagWriter {
	return &TagWriter{}
}

// WriteFileTags updates the ID3v2 title and artist frames of an mp3 file.
// Formats without a writable tag container (wav) are skipped silently.
func (w *TagWriter) WriteFileTags(ctx context.Context, filePath, title, artist string) error {
	if !strings.EqualFold(filepath.Ext(filePath), ".mp3") {
		slog.Debug("Skipping tag write-back for non-mp3 file", "path", filePath)
		return nil
	}

	file, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open mp3 for tag writing: %w", err)
	}
	defer file.Close()

	file.SetTitle(title)
	file.SetArtist(artist)

	if err := file.Save(); err != nil {
		return fmt.Errorf("failed to save tags: %w", err)
	}
	return nil
}
