package importing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"vaulted/src/music"
)

// MockLibrary is a mock implementation of music.Library
type MockLibrary struct {
	music.Library // Embed interface to avoid implementing all methods, will panic if unused methods called
	playlists     map[int64]*music.Playlist
	songs         []*music.Song
	nextID        int64
}

func NewMockLibrary() *MockLibrary {
	m := &MockLibrary{
		playlists: make(map[int64]*music.Playlist),
		nextID:    music.DefaultPlaylistID + 1,
	}
	m.playlists[music.DefaultPlaylistID] = &music.Playlist{
		ID:    music.DefaultPlaylistID,
		Title: music.DefaultPlaylistTitle,
	}
	return m
}

func (m *MockLibrary) GetPlaylist(ctx context.Context, id int64) (*music.Playlist, error) {
	return m.playlists[id], nil
}

func (m *MockLibrary) AddSongs(ctx context.Context, songs []*music.Song) error {
	for _, song := range songs {
		if err := song.Validate(); err != nil {
			return err
		}
	}
	for _, song := range songs {
		song.ID = m.nextID
		m.nextID++
		m.songs = append(m.songs, song)
	}
	return nil
}

// fakeTagReader serves canned tags per path and fails for paths in bad.
type fakeTagReader struct {
	tags map[string]*FileTags
	bad  map[string]bool
}

func (r *fakeTagReader) ReadFileTags(ctx context.Context, filePath string) (*FileTags, error) {
	if r.bad[filePath] {
		return nil, fmt.Errorf("not a valid audio container %s: %w", filePath, music.ErrUnreadable)
	}
	if tags, ok := r.tags[filePath]; ok {
		return tags, nil
	}
	return &FileTags{}, nil
}

// fakeCoverExporter records exports and hands out fixed temp paths.
type fakeCoverExporter struct {
	exports  int
	cleanups int
}

func (e *fakeCoverExporter) ExportThumbnail(data []byte) (string, func(), error) {
	e.exports++
	return fmt.Sprintf("/tmp/cover_%d.png", e.exports), func() { e.cleanups++ }, nil
}

func newTestService(lib *MockLibrary, tags *fakeTagReader) (*Service, *fakeCoverExporter) {
	covers := &fakeCoverExporter{}
	return NewService(lib, tags, covers, nil, nil, nil), covers
}

func TestImportFiles_UsesTagsAndDefaults(t *testing.T) {
	lib := NewMockLibrary()
	reader := &fakeTagReader{
		tags: map[string]*FileTags{
			"/downloads/tagged.mp3": {Title: "Night Drive", Artist: "Neon", Duration: 213.4},
		},
	}
	service, _ := newTestService(lib, reader)

	songs, err := service.ImportFiles(context.Background(), []string{"/downloads/tagged.mp3", "/downloads/untagged.wav"}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(songs))
	}

	tagged := songs[0]
	if tagged.Title != "Night Drive" || tagged.Artist != "Neon" {
		t.Errorf("expected tag metadata, got %q by %q", tagged.Title, tagged.Artist)
	}
	if tagged.PlaylistID != music.DefaultPlaylistID {
		t.Errorf("expected default playlist, got %d", tagged.PlaylistID)
	}

	untagged := songs[1]
	if untagged.Title != "untagged" {
		t.Errorf("expected filename stem title, got %q", untagged.Title)
	}
	if untagged.Artist != music.UnknownArtist {
		t.Errorf("expected %q, got %q", music.UnknownArtist, untagged.Artist)
	}
}

func TestImportFiles_SkipsUnsupportedExtensions(t *testing.T) {
	lib := NewMockLibrary()
	service, _ := newTestService(lib, &fakeTagReader{})

	songs, err := service.ImportFiles(context.Background(), []string{"/downloads/notes.txt", "/downloads/track.flac"}, 0)
	if err != nil {
		t.Fatalf("expected unsupported files to be skipped silently, got %v", err)
	}
	if len(songs) != 0 {
		t.Errorf("expected nothing imported, got %d songs", len(songs))
	}
	if len(lib.songs) != 0 {
		t.Errorf("expected no committed songs, got %d", len(lib.songs))
	}
}

func TestImportFiles_CaseInsensitiveExtensions(t *testing.T) {
	lib := NewMockLibrary()
	service, _ := newTestService(lib, &fakeTagReader{})

	songs, err := service.ImportFiles(context.Background(), []string{"/downloads/LOUD.MP3"}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(songs) != 1 {
		t.Fatalf("expected 1 song, got %d", len(songs))
	}
}

func TestImportFiles_UnreadableFileAbortsBatch(t *testing.T) {
	lib := NewMockLibrary()
	reader := &fakeTagReader{bad: map[string]bool{"/downloads/b.mp3": true}}
	service, _ := newTestService(lib, reader)

	paths := []string{"/downloads/a.mp3", "/downloads/b.mp3", "/downloads/c.mp3"}
	_, err := service.ImportFiles(context.Background(), paths, 0)
	if !errors.Is(err, music.ErrUnreadable) {
		t.Fatalf("expected unreadable error, got %v", err)
	}
	if len(lib.songs) != 0 {
		t.Errorf("expected zero committed songs after aborted batch, got %d", len(lib.songs))
	}
}

func TestImportFiles_UnknownPlaylist(t *testing.T) {
	lib := NewMockLibrary()
	service, _ := newTestService(lib, &fakeTagReader{})

	_, err := service.ImportFiles(context.Background(), []string{"/downloads/a.mp3"}, 99)
	if !errors.Is(err, music.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestImportFiles_ExportsEmbeddedCover(t *testing.T) {
	lib := NewMockLibrary()
	reader := &fakeTagReader{
		tags: map[string]*FileTags{
			"/downloads/art.mp3": {Title: "Art", Artist: "Someone", Picture: []byte{0x89, 0x50}},
		},
	}
	service, covers := newTestService(lib, reader)

	songs, err := service.ImportFiles(context.Background(), []string{"/downloads/art.mp3"}, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if covers.exports != 1 {
		t.Errorf("expected one cover export, got %d", covers.exports)
	}
	if songs[0].ThumbnailPath == "" {
		t.Error("expected thumbnail path set from exported cover")
	}
	if covers.cleanups != 1 {
		t.Errorf("expected temp cover cleaned up after commit, got %d cleanups", covers.cleanups)
	}
}
