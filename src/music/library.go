package music

import (
	"context"
)

// Library is the interface for the playlist/song persistent store.
// It's our primary repository interface for the library domain.
//
// Get methods return (nil, nil) when the entity does not exist.
// Add and Update normalize asset paths into the managed folder tree before
// committing, so committed rows always reference managed locations.
type Library interface {
	// Playlist methods
	AddPlaylist(ctx context.Context, playlist *Playlist) error
	GetPlaylist(ctx context.Context, id int64) (*Playlist, error)
	GetPlaylists(ctx context.Context) ([]*Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *Playlist) error
	// DeletePlaylist removes the playlist and all its songs in one
	// transaction, then best-effort removes the playlist folder from disk.
	// Deleting the default playlist fails with ErrForbidden.
	DeletePlaylist(ctx context.Context, id int64) error

	// Song methods
	AddSong(ctx context.Context, song *Song) error
	// AddSongs inserts all songs in a single transaction; either every row
	// commits or none do.
	AddSongs(ctx context.Context, songs []*Song) error
	GetSong(ctx context.Context, id int64) (*Song, error)
	GetSongs(ctx context.Context, playlistID int64) ([]*Song, error)
	UpdateSong(ctx context.Context, song *Song) error
	// DeleteSong removes the row only; the media file on disk is reclaimed
	// when its playlist folder is deleted.
	DeleteSong(ctx context.Context, id int64) error

	// Count methods
	CountPlaylists(ctx context.Context) (int, error)
	CountSongs(ctx context.Context) (int, error)
}
