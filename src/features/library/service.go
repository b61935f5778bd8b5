package library

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

// TagWriter writes edited metadata back into the audio file on disk.
type TagWriter interface {
	WriteFileTags(ctx context.Context, filePath, title, artist string) error
}

var allowedThumbnailExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// Service is the domain service for the library feature.
type Service struct {
	library       music.Library
	tagWriter     TagWriter
	configManager *config.Manager

	// mu guards ordering. Orderings are per-session display arrangements,
	// never persisted; they reset on restart.
	mu       sync.Mutex
	ordering map[int64][]int64
}

// NewService creates a new library service.
func NewService(lib music.Library, tagWriter TagWriter, cfgManager *config.Manager) *Service {
	return &Service{
		library:       lib,
		tagWriter:     tagWriter,
		configManager: cfgManager,
		ordering:      make(map[int64][]int64),
	}
}

// validateThumbnailSource checks that a thumbnail path has an accepted image
// extension. An empty path is fine, it means no thumbnail.
func validateThumbnailSource(path string) error {
	if path == "" {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedThumbnailExtensions[ext] {
		return fmt.Errorf("unsupported thumbnail extension %q: %w", ext, music.ErrValidation)
	}
	return nil
}

// CreatePlaylist creates a new playlist, copying the thumbnail into the
// playlist's managed folder when one is given.
func (s *Service) CreatePlaylist(ctx context.Context, title, thumbnailSource string) (*music.Playlist, error) {
	slog.Debug("CreatePlaylist service called", "title", title)
	if err := validateThumbnailSource(thumbnailSource); err != nil {
		return nil, err
	}
	playlist := &music.Playlist{
		Title:         title,
		ThumbnailPath: thumbnailSource,
	}
	if err := s.library.AddPlaylist(ctx, playlist); err != nil {
		slog.Error("CreatePlaylist failed", "title", title, "error", err)
		return nil, err
	}
	metrics.PlaylistsCreated.Inc()
	slog.Info("Playlist created", "id", playlist.ID, "title", playlist.Title)
	return playlist, nil
}

// EditPlaylist updates a playlist's title and/or thumbnail. Empty arguments
// leave the corresponding field untouched. The default playlist is editable
// like any other.
func (s *Service) EditPlaylist(ctx context.Context, id int64, title, thumbnailSource string) (*music.Playlist, error) {
	slog.Debug("EditPlaylist service called", "id", id)
	playlist, err := s.library.GetPlaylist(ctx, id)
	if err != nil {
		slog.Error("EditPlaylist failed", "id", id, "error", err)
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %d: %w", id, music.ErrNotFound)
	}
	if title != "" {
		playlist.Title = title
	}
	if thumbnailSource != "" {
		if err := validateThumbnailSource(thumbnailSource); err != nil {
			return nil, err
		}
		playlist.ThumbnailPath = thumbnailSource
	}
	if err := s.library.UpdatePlaylist(ctx, playlist); err != nil {
		slog.Error("EditPlaylist failed", "id", id, "error", err)
		return nil, err
	}
	return playlist, nil
}

// DeletePlaylist removes a playlist, its songs and its folder on disk.
func (s *Service) DeletePlaylist(ctx context.Context, id int64) error {
	slog.Debug("DeletePlaylist service called", "id", id)
	if err := s.library.DeletePlaylist(ctx, id); err != nil {
		slog.Error("DeletePlaylist failed", "id", id, "error", err)
		return err
	}
	s.mu.Lock()
	delete(s.ordering, id)
	s.mu.Unlock()
	metrics.PlaylistsDeleted.Inc()
	slog.Info("Playlist deleted", "id", id)
	return nil
}

// GetPlaylists returns all playlists ordered by title.
func (s *Service) GetPlaylists(ctx context.Context) ([]*music.Playlist, error) {
	slog.Debug("GetPlaylists service called")
	playlists, err := s.library.GetPlaylists(ctx)
	if err != nil {
		slog.Error("GetPlaylists failed", "error", err)
		return nil, err
	}
	slog.Debug("GetPlaylists completed", "count", len(playlists))
	return playlists, nil
}

// GetPlaylist returns a single playlist with its songs loaded in display
// order.
func (s *Service) GetPlaylist(ctx context.Context, id int64) (*music.Playlist, error) {
	slog.Debug("GetPlaylist service called", "id", id)
	playlist, err := s.library.GetPlaylist(ctx, id)
	if err != nil {
		slog.Error("GetPlaylist failed", "id", id, "error", err)
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %d: %w", id, music.ErrNotFound)
	}
	songs, err := s.GetSongs(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist.Songs = songs
	return playlist, nil
}

// GetSongs returns the songs of a playlist in display order. Songs without
// a thumbnail of their own inherit the playlist's thumbnail for display.
func (s *Service) GetSongs(ctx context.Context, playlistID int64) ([]*music.Song, error) {
	slog.Debug("GetSongs service called", "playlistID", playlistID)
	playlist, err := s.library.GetPlaylist(ctx, playlistID)
	if err != nil {
		slog.Error("GetSongs failed", "playlistID", playlistID, "error", err)
		return nil, err
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %d: %w", playlistID, music.ErrNotFound)
	}
	songs, err := s.library.GetSongs(ctx, playlistID)
	if err != nil {
		slog.Error("GetSongs failed", "playlistID", playlistID, "error", err)
		return nil, err
	}
	for _, song := range songs {
		if song.ThumbnailPath == "" {
			song.ThumbnailPath = playlist.ThumbnailPath
		}
	}
	return s.arrange(playlistID, songs), nil
}

// GetSong returns a single song by id.
func (s *Service) GetSong(ctx context.Context, id int64) (*music.Song, error) {
	slog.Debug("GetSong service called", "id", id)
	song, err := s.library.GetSong(ctx, id)
	if err != nil {
		slog.Error("GetSong failed", "id", id, "error", err)
		return nil, err
	}
	if song == nil {
		return nil, fmt.Errorf("song %d: %w", id, music.ErrNotFound)
	}
	return song, nil
}

// EditSong updates a song's title, artist and/or thumbnail. Empty arguments
// leave the corresponding field untouched. When tag write-back is enabled in
// the config, the new title and artist are also written into the file's tags.
func (s *Service) EditSong(ctx context.Context, id int64, title, artist, thumbnailSource string) (*music.Song, error) {
	slog.Debug("EditSong service called", "id", id)
	song, err := s.library.GetSong(ctx, id)
	if err != nil {
		slog.Error("EditSong failed", "id", id, "error", err)
		return nil, err
	}
	if song == nil {
		return nil, fmt.Errorf("song %d: %w", id, music.ErrNotFound)
	}
	if title != "" {
		song.Title = title
	}
	if artist != "" {
		song.Artist = artist
	}
	if thumbnailSource != "" {
		if err := validateThumbnailSource(thumbnailSource); err != nil {
			return nil, err
		}
		song.ThumbnailPath = thumbnailSource
	}
	if err := s.library.UpdateSong(ctx, song); err != nil {
		slog.Error("EditSong failed", "id", id, "error", err)
		return nil, err
	}
	if s.tagWriter != nil && s.configManager != nil && s.configManager.Get().Import.WriteTags {
		if err := s.tagWriter.WriteFileTags(ctx, song.FilePath, song.Title, song.Artist); err != nil {
			slog.Warn("Tag write-back failed, library row updated anyway", "id", id, "path", song.FilePath, "error", err)
		}
	}
	return song, nil
}

// DeleteSong removes a song from its playlist. The media file stays on disk
// until the playlist folder is deleted.
func (s *Service) DeleteSong(ctx context.Context, id int64) error {
	slog.Debug("DeleteSong service called", "id", id)
	if err := s.library.DeleteSong(ctx, id); err != nil {
		slog.Error("DeleteSong failed", "id", id, "error", err)
		return err
	}
	metrics.SongsDeleted.Inc()
	slog.Info("Song deleted", "id", id)
	return nil
}

// Reorder moves a song to the position of another song within the playlist's
// display order. The arrangement lives in memory only and resets on restart.
func (s *Service) Reorder(ctx context.Context, playlistID, movedID, targetID int64) error {
	slog.Debug("Reorder service called", "playlistID", playlistID, "movedID", movedID, "targetID", targetID)
	if movedID == targetID {
		return nil
	}
	songs, err := s.library.GetSongs(ctx, playlistID)
	if err != nil {
		slog.Error("Reorder failed", "playlistID", playlistID, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := s.currentOrderLocked(playlistID, songs)
	movedIdx, targetIdx := -1, -1
	for i, id := range order {
		switch id {
		case movedID:
			movedIdx = i
		case targetID:
			targetIdx = i
		}
	}
	if movedIdx < 0 {
		return fmt.Errorf("song %d not in playlist %d: %w", movedID, playlistID, music.ErrNotFound)
	}
	if targetIdx < 0 {
		return fmt.Errorf("song %d not in playlist %d: %w", targetID, playlistID, music.ErrNotFound)
	}

	order = append(order[:movedIdx], order[movedIdx+1:]...)
	for i, id := range order {
		if id == targetID {
			targetIdx = i
			break
		}
	}
	if movedIdx <= targetIdx {
		targetIdx++
	}
	order = append(order[:targetIdx], append([]int64{movedID}, order[targetIdx:]...)...)
	s.ordering[playlistID] = order
	return nil
}

// Stats returns overall library counts.
func (s *Service) Stats(ctx context.Context) (playlists, songs int, err error) {
	playlists, err = s.library.CountPlaylists(ctx)
	if err != nil {
		return 0, 0, err
	}
	songs, err = s.library.CountSongs(ctx)
	if err != nil {
		return 0, 0, err
	}
	return playlists, songs, nil
}

// currentOrderLocked returns the display order for a playlist, seeding it
// from the canonical order when no arrangement exists yet and pruning ids of
// deleted songs. Caller holds s.mu.
func (s *Service) currentOrderLocked(playlistID int64, songs []*music.Song) []int64 {
	present := make(map[int64]bool, len(songs))
	for _, song := range songs {
		present[song.ID] = true
	}
	seen := make(map[int64]bool, len(songs))
	var order []int64
	for _, id := range s.ordering[playlistID] {
		if present[id] && !seen[id] {
			order = append(order, id)
			seen[id] = true
		}
	}
	for _, song := range songs {
		if !seen[song.ID] {
			order = append(order, song.ID)
			seen[song.ID] = true
		}
	}
	return order
}

// arrange applies the playlist's display order to a canonical song slice.
func (s *Service) arrange(playlistID int64, songs []*music.Song) []*music.Song {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ordering[playlistID]) == 0 {
		return songs
	}
	byID := make(map[int64]*music.Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}
	arranged := make([]*music.Song, 0, len(songs))
	for _, id := range s.currentOrderLocked(playlistID, songs) {
		arranged = append(arranged, byID[id])
	}
	return arranged
}
