package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"vaulted/src/features/importing"

	"github.com/fsnotify/fsnotify"
)

// settleDelay is how long a file must stay quiet before its create event is
// emitted; copies into the watch folder arrive as a burst of writes.
const settleDelay = 2 * time.Second

// Watcher monitors the drop folder for new files and emits events.
type Watcher struct {
	watcher   *fsnotify.Watcher
	watchPath string
	pending   map[string]*time.Timer
	pendingMu sync.Mutex
	running   bool
	stopChan  chan struct{}
	eventChan chan<- importing.FileEvent
}

// NewWatcher creates a new file system watcher.
func NewWatcher(eventChan chan<- importing.FileEvent) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   fsw,
		eventChan: eventChan,
		pending:   make(map[string]*time.Timer),
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the drop folder for file changes. A stopped watcher
// can be started again; Stop closes the fsnotify instance, so a fresh one is
// built here along with a fresh stop channel.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	if w.running {
		return nil
	}

	if w.watcher == nil {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		w.watcher = fsw
		w.stopChan = make(chan struct{})
	}

	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.watcher.Add(watchPath); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx, w.watcher, w.stopChan)
	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.pendingMu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.pendingMu.Unlock()

	w.watcher.Close()
	w.watcher = nil
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, stop <-chan struct{}) {
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-stop:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent debounces per file: every write resets the timer, and only a
// file that has settled is reported as created.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.pendingMu.Lock()
		delete(w.pending, path)
		w.pendingMu.Unlock()

		w.eventChan <- importing.FileEvent{
			Path:      path,
			EventType: importing.FileCreated,
			Timestamp: time.Now(),
		}
	})
}
