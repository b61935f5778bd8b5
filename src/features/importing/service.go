package importing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"vaulted/src/features/config"
	"vaulted/src/features/metrics"
	"vaulted/src/music"
)

var supportedExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
}

// FileTags is the structured result of reading an audio file's metadata.
// Empty Title/Artist mean the file carried no usable tag for that field.
type FileTags struct {
	Title    string
	Artist   string
	Duration float64 // seconds
	Picture  []byte  // embedded cover art, nil if none
}

// TagReader is the interface for reading metadata from an audio file.
type TagReader interface {
	ReadFileTags(ctx context.Context, filePath string) (*FileTags, error)
}

// CoverExporter turns embedded cover-art bytes into a temporary image file
// the store can relocate. The returned cleanup removes the temp file.
type CoverExporter interface {
	ExportThumbnail(data []byte) (path string, cleanup func(), err error)
}

// Service is the domain service for the importing feature.
type Service struct {
	library music.Library
	tags    TagReader
	covers  CoverExporter
	config  *config.Manager

	watcherMu     sync.Mutex
	watcher       Watcher
	events        <-chan FileEvent
	watcherCancel context.CancelFunc
}

// NewService creates a new importing service. The watcher and its event
// channel may be nil when drop-folder watching is not wired up.
func NewService(lib music.Library, tags TagReader, covers CoverExporter, cfg *config.Manager, watcher Watcher, events <-chan FileEvent) *Service {
	return &Service{
		library: lib,
		tags:    tags,
		covers:  covers,
		config:  cfg,
		watcher: watcher,
		events:  events,
	}
}

// IsSupported reports whether the file extension names an accepted audio type.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// ImportFiles imports the given source files into a playlist. Unsupported
// extensions are skipped silently. All imported songs commit in a single
// transaction: a failed tag read or file copy aborts the whole batch, and
// files already copied for earlier entries stay on disk as orphans no
// committed row references.
func (s *Service) ImportFiles(ctx context.Context, paths []string, playlistID int64) ([]*music.Song, error) {
	if playlistID == 0 {
		playlistID = music.DefaultPlaylistID
	}

	playlist, err := s.library.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %d: %w", playlistID, err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, music.ErrNotFound)
	}

	var songs []*music.Song
	var cleanups []func()
	defer func() {
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	for _, path := range paths {
		if !IsSupported(path) {
			slog.Debug("Skipping unsupported file", "path", path)
			continue
		}

		tags, err := s.tags.ReadFileTags(ctx, path)
		if err != nil {
			slog.Error("ImportFiles: tag read failed, aborting batch", "path", path, "error", err)
			return nil, fmt.Errorf("failed to read tags from %s: %w", path, err)
		}

		song := &music.Song{
			Title:      tags.Title,
			Artist:     tags.Artist,
			FilePath:   path,
			Duration:   tags.Duration,
			PlaylistID: playlistID,
		}
		song.EnsureDefaults()

		if len(tags.Picture) > 0 {
			thumbPath, cleanup, err := s.covers.ExportThumbnail(tags.Picture)
			if err != nil {
				// Cover art is best-effort; a broken embedded picture does
				// not block the import.
				slog.Warn("Failed to export embedded cover art", "path", path, "error", err)
			} else {
				song.ThumbnailPath = thumbPath
				cleanups = append(cleanups, cleanup)
			}
		}

		songs = append(songs, song)
	}

	if len(songs) == 0 {
		slog.Debug("ImportFiles: nothing to import", "candidates", len(paths))
		return nil, nil
	}

	if err := s.library.AddSongs(ctx, songs); err != nil {
		return nil, fmt.Errorf("failed to import songs: %w", err)
	}

	metrics.SongsImported.Add(float64(len(songs)))
	slog.Info("Imported songs", "count", len(songs), "playlistID", playlistID)
	return songs, nil
}
