package music

import (
	"context"
)

// FileManager handles the managed on-disk folder tree that mirrors
// playlists: {base}/Playlist_{id}/Songs and {base}/Playlist_{id}/Thumbnails.
// Folder methods create the directory when it is absent.
type FileManager interface {
	// BaseFolder returns the root managed directory.
	BaseFolder() (string, error)
	// PlaylistFolder returns the folder owned by the given playlist.
	PlaylistFolder(playlistID int64) (string, error)
	// SongsFolder returns the playlist's media subfolder.
	SongsFolder(playlistID int64) (string, error)
	// ThumbnailsFolder returns the playlist's cover-art subfolder.
	ThumbnailsFolder(playlistID int64) (string, error)

	// CopySongFile copies a media file into the playlist's Songs folder and
	// returns the destination path. The source is left untouched. Fails with
	// ErrNotFound when the source does not exist. Name collisions resolve by
	// numeric suffix, never by overwriting.
	CopySongFile(ctx context.Context, sourcePath string, playlistID int64) (string, error)
	// CopyThumbnail is CopySongFile for the Thumbnails folder.
	CopyThumbnail(ctx context.Context, sourcePath string, playlistID int64) (string, error)

	// InSongsFolder reports whether path already lives under the playlist's
	// Songs folder; InThumbnailsFolder likewise for Thumbnails.
	InSongsFolder(path string, playlistID int64) bool
	InThumbnailsFolder(path string, playlistID int64) bool

	// DeletePlaylistFolder removes the playlist's folder subtree.
	DeletePlaylistFolder(ctx context.Context, playlistID int64) error
}
