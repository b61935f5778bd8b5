package music

import (
	"fmt"
	"strings"
)

// DefaultPlaylistID is the reserved id of the permanent "Unreleased"
// playlist. It is seeded on first run and can be edited but never deleted.
const DefaultPlaylistID int64 = 1

// DefaultPlaylistTitle is the title the default playlist is seeded with.
const DefaultPlaylistTitle = "Unreleased"

// Playlist represents a named collection of songs. Songs reference their
// playlist through Song.PlaylistID; the Songs slice is derived state loaded
// on demand, never stored redundantly.
type Playlist struct {
	ID            int64
	Title         string
	ThumbnailPath string
	Songs         []*Song
}

// IsDefault reports whether this is the permanent default playlist.
func (p *Playlist) IsDefault() bool {
	return p.ID == DefaultPlaylistID
}

// Validate validates the playlist fields.
func (p *Playlist) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("playlist title cannot be empty: %w", ErrValidation)
	}
	if len(p.Title) > 200 {
		return fmt.Errorf("playlist title cannot exceed 200 characters, got %d: %w", len(p.Title), ErrValidation)
	}
	return nil
}

// TotalDuration returns the combined duration of the loaded songs in seconds.
func (p *Playlist) TotalDuration() float64 {
	var total float64
	for _, song := range p.Songs {
		total += song.Duration
	}
	return total
}
