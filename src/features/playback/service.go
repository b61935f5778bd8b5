package playback

import (
	"context"
	"log/slog"

	"vaulted/src/features/library"
)

// Service loads playlists into the playback session. The session plays
// whatever ordered song list the library produced for the selected playlist.
type Service struct {
	session *Session
	library *library.Service
}

// NewService creates a new playback service.
func NewService(session *Session, lib *library.Service) *Service {
	return &Service{
		session: session,
		library: lib,
	}
}

// Session exposes the underlying transport session.
func (s *Service) Session() *Session {
	return s.session
}

// PlaySong loads the playlist's songs in display order into the session and
// starts playing the given song.
func (s *Service) PlaySong(ctx context.Context, playlistID, songID int64) error {
	slog.Debug("PlaySong service called", "playlistID", playlistID, "songID", songID)
	songs, err := s.library.GetSongs(ctx, playlistID)
	if err != nil {
		slog.Error("PlaySong failed", "playlistID", playlistID, "error", err)
		return err
	}
	s.session.SetQueue(songs)
	return s.session.SelectSong(songID)
}
