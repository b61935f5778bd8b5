package music

import (
	"fmt"
	"path/filepath"
	"strings"
)

// UnknownArtist is the artist a song falls back to when the file carries no
// artist tag.
const UnknownArtist = "Unknown Artist"

// Song represents a single playable audio file owned by a playlist.
type Song struct {
	ID            int64
	Title         string
	Artist        string
	FilePath      string
	ThumbnailPath string
	Duration      float64 // seconds
	PlaylistID    int64
}

// Validate validates the song fields.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("song title cannot be empty: %w", ErrValidation)
	}
	if len(s.Title) > 500 {
		return fmt.Errorf("song title cannot exceed 500 characters, got %d: %w", len(s.Title), ErrValidation)
	}
	if strings.TrimSpace(s.Artist) == "" {
		return fmt.Errorf("song artist cannot be empty: %w", ErrValidation)
	}
	if strings.TrimSpace(s.FilePath) == "" {
		return fmt.Errorf("song file path cannot be empty: %w", ErrValidation)
	}
	if s.Duration < 0 {
		return fmt.Errorf("song duration cannot be negative, got %f: %w", s.Duration, ErrValidation)
	}
	if s.PlaylistID <= 0 {
		return fmt.Errorf("song playlist id must be positive, got %d: %w", s.PlaylistID, ErrValidation)
	}
	return nil
}

// EnsureDefaults fills fallback values for fields the file's tags did not
// provide: the filename stem for the title and UnknownArtist for the artist.
// The playlist defaults to the permanent "Unreleased" playlist.
func (s *Song) EnsureDefaults() {
	if strings.TrimSpace(s.Title) == "" {
		base := filepath.Base(s.FilePath)
		s.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if strings.TrimSpace(s.Artist) == "" {
		s.Artist = UnknownArtist
	}
	if s.PlaylistID == 0 {
		s.PlaylistID = DefaultPlaylistID
	}
}
