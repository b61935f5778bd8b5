package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"

	"vaulted/src/features/config"
	"vaulted/src/features/hosting"
	"vaulted/src/features/importing"
	"vaulted/src/features/library"
	"vaulted/src/features/logging"
	"vaulted/src/features/playback"
	"vaulted/src/infra/artwork"
	"vaulted/src/infra/database"
	"vaulted/src/infra/files"
	"vaulted/src/infra/player"
	"vaulted/src/infra/tag"
	"vaulted/src/infra/watcher"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	layout := files.NewLayout(cfgManager.Get().LibraryPath)

	// Create the database library. A migration failure here is fatal.
	db, err := database.NewSqliteLibrary(cfgManager.Get().Database.Path, layout)
	if err != nil {
		log.Fatalf("failed to create library: %v", err)
	}
	defer db.Close()

	// Create the library service
	tagWriter := tag.NewTagWriter()
	libraryService := library.NewService(db, tagWriter, cfgManager)

	// Create the importing service with its drop folder watcher
	tagReader := tag.NewTagReader()
	coverExporter := artwork.NewExporter()

	events := make(chan importing.FileEvent, 16)
	dropWatcher, err := watcher.NewWatcher(events)
	if err != nil {
		log.Fatalf("failed to create drop folder watcher: %v", err)
	}
	importingService := importing.NewService(db, tagReader, coverExporter, cfgManager, dropWatcher, events)
	if cfgManager.Get().Import.AutoStartWatcher {
		if err := importingService.StartWatcher(); err != nil {
			slog.Error("Failed to auto-start watcher", "error", err)
		}
	}
	defer importingService.StopWatcher()

	// Create the playback session on the audio device
	device := player.NewBeepDevice(cfgManager)
	session := playback.NewSession(device)
	playbackService := playback.NewService(session, libraryService)

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, importingService, libraryService, playbackService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	session.Stop()

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	slog.Info("Server gracefully shut down.")
}
