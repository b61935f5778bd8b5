package importing

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated  FileEventType = "created"
	FileRemoved  FileEventType = "removed"
	FileModified FileEventType = "modified"
)

// FileEvent represents a file system event
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}

// Watcher defines the interface for file system watchers
type Watcher interface {
	Start(ctx context.Context, watchPath string) error
	Stop()
}

// StartWatcher begins watching the configured drop folder, importing new
// audio files into the default playlist as they settle. Idempotent.
func (s *Service) StartWatcher() error {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()
	if s.watcher == nil {
		return fmt.Errorf("no watcher configured")
	}
	if s.watcherCancel != nil {
		return nil
	}
	watchPath := s.config.Get().Import.WatchPath
	ctx, cancel := context.WithCancel(context.Background())
	if err := s.watcher.Start(ctx, watchPath); err != nil {
		cancel()
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	s.watcherCancel = cancel
	go s.WatchEvents(ctx, s.events)
	slog.Info("Drop folder watcher started", "path", watchPath)
	return nil
}

// StopWatcher stops the drop folder watcher. Idempotent.
func (s *Service) StopWatcher() {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()
	if s.watcherCancel == nil {
		return
	}
	s.watcherCancel()
	s.watcherCancel = nil
	s.watcher.Stop()
	slog.Info("Drop folder watcher stopped")
}

// WatcherRunning reports whether the drop folder watcher is active.
func (s *Service) WatcherRunning() bool {
	s.watcherMu.Lock()
	defer s.watcherMu.Unlock()
	return s.watcherCancel != nil
}

// WatchEvents consumes watcher events and imports newly dropped audio files
// into the default playlist. Runs until ctx is cancelled or the channel
// closes.
func (s *Service) WatchEvents(ctx context.Context, events <-chan FileEvent) {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.EventType != FileCreated || !IsSupported(event.Path) {
				continue
			}
			slog.Info("Watcher picked up new file", "path", event.Path)
			if _, err := s.ImportFiles(ctx, []string{event.Path}, 0); err != nil {
				slog.Error("Watcher import failed", "path", event.Path, "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
