package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
)

// maxThumbnailSize bounds the longer edge of exported thumbnails in pixels.
const maxThumbnailSize = 500

// Exporter turns embedded cover-art bytes into thumbnail PNG files that the
// store can relocate into a playlist's Thumbnails folder.
type Exporter struct {
	tempDir string
}

// NewExporter creates a new cover-art exporter writing temp files under the
// system temp directory.
func NewExporter() *Exporter {
	return &Exporter{tempDir: filepath.Join(os.TempDir(), "vaulted-artwork")}
}

// ExportThumbnail decodes the embedded picture, scales it down to a bounded
// size and writes it as a temporary PNG. The returned cleanup removes the
// temp file after the store has copied it into the managed tree.
func (e *Exporter) ExportThumbnail(data []byte) (string, func(), error) {
	if len(data) == 0 {
		return "", nil, fmt.Errorf("empty cover art data")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode cover art: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxThumbnailSize || bounds.Dy() > maxThumbnailSize {
		img = resize.Thumbnail(maxThumbnailSize, maxThumbnailSize, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(e.tempDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	tempPath := filepath.Join(e.tempDir, uuid.New().String()+".png")

	file, err := os.Create(tempPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp thumbnail: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(tempPath)
		return "", nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return "", nil, err
	}

	cleanup := func() { os.Remove(tempPath) }
	return tempPath, cleanup, nil
}
