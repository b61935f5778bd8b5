package playback

import (
	"testing"

	"vaulted/src/music"
)

// mockDevice records transport calls without touching any audio output.
type mockDevice struct {
	opened   []string
	playing  bool
	position float64
	duration float64
	onEnded  func()
}

func (d *mockDevice) Open(path string) error {
	d.opened = append(d.opened, path)
	d.position = 0
	return nil
}

func (d *mockDevice) Play()  { d.playing = true }
func (d *mockDevice) Pause() { d.playing = false }
func (d *mockDevice) Stop()  { d.playing = false }

func (d *mockDevice) Seek(seconds float64) error {
	d.position = seconds
	return nil
}

func (d *mockDevice) Position() float64        { return d.position }
func (d *mockDevice) NaturalDuration() float64 { return d.duration }
func (d *mockDevice) OnEnded(fn func())        { d.onEnded = fn }

// finish simulates the device reporting natural end of the current track.
func (d *mockDevice) finish() {
	if d.onEnded != nil {
		d.onEnded()
	}
}

func threeSongQueue() []*music.Song {
	return []*music.Song{
		{ID: 1, Title: "A", FilePath: "/media/a.mp3"},
		{ID: 2, Title: "B", FilePath: "/media/b.mp3"},
		{ID: 3, Title: "C", FilePath: "/media/c.mp3"},
	}
}

func newTestSession(t *testing.T) (*Session, *mockDevice) {
	t.Helper()
	device := &mockDevice{}
	session := NewSession(device)
	session.SetQueue(threeSongQueue())
	return session, device
}

func currentID(t *testing.T, s *Session) int64 {
	t.Helper()
	song := s.Status().Song
	if song == nil {
		t.Fatal("expected a current song")
	}
	return song.ID
}

func TestSelectSong_StartsPlaying(t *testing.T) {
	session, device := newTestSession(t)

	if err := session.SelectSong(2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := session.Status().State; got != Playing {
		t.Errorf("expected state %v, got %v", Playing, got)
	}
	if len(device.opened) != 1 || device.opened[0] != "/media/b.mp3" {
		t.Errorf("expected device to open b.mp3, got %v", device.opened)
	}
}

func TestSelectSong_UnknownID(t *testing.T) {
	session, _ := newTestSession(t)

	err := session.SelectSong(42)
	if err == nil {
		t.Fatal("expected error for unknown song")
	}
}

func TestPlayPause_TogglesAndIgnoresStopped(t *testing.T) {
	session, device := newTestSession(t)

	session.PlayPause()
	if got := session.Status().State; got != Stopped {
		t.Errorf("expected toggle with nothing selected to stay stopped, got %v", got)
	}

	if err := session.SelectSong(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	session.PlayPause()
	if got := session.Status().State; got != Paused {
		t.Errorf("expected state %v, got %v", Paused, got)
	}
	if device.playing {
		t.Error("expected device paused")
	}
	session.PlayPause()
	if got := session.Status().State; got != Playing {
		t.Errorf("expected state %v, got %v", Playing, got)
	}
}

func TestSkip_WrapsOnlyWithRepeatAll(t *testing.T) {
	session, _ := newTestSession(t)
	if err := session.SelectSong(3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// RepeatNone: skip at the tail is a no-op.
	if err := session.Skip(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := currentID(t, session); got != 3 {
		t.Errorf("expected to stay on song 3, got %d", got)
	}

	if err := session.SetRepeat(RepeatAll); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := session.Skip(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := currentID(t, session); got != 1 {
		t.Errorf("expected wrap to song 1, got %d", got)
	}
}

func TestBack_NoOpAtHead(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := session.Back(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := currentID(t, session); got != 1 {
		t.Errorf("expected to stay on song 1, got %d", got)
	}
	if len(device.opened) != 1 {
		t.Errorf("expected no reopen on no-op back, got %v", device.opened)
	}
}

func TestBack_RetreatsOnePosition(t *testing.T) {
	session, _ := newTestSession(t)
	if err := session.SelectSong(2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := session.Back(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := currentID(t, session); got != 1 {
		t.Errorf("expected song 1, got %d", got)
	}
}

func TestTrackEnded_AdvancesToNext(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	device.finish()
	if got := currentID(t, session); got != 2 {
		t.Errorf("expected song 2 after track end, got %d", got)
	}
	if got := session.Status().State; got != Playing {
		t.Errorf("expected state %v, got %v", Playing, got)
	}
}

func TestTrackEnded_AtTailWithRepeatNoneStops(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	device.finish()
	status := session.Status()
	if status.State != Stopped {
		t.Errorf("expected state %v, got %v", Stopped, status.State)
	}
	if status.Song != nil {
		t.Errorf("expected no current song after stop, got %+v", status.Song)
	}
}

func TestTrackEnded_RepeatSingleRestartsCurrent(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := session.SetRepeat(RepeatSingleTrack); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	device.position = 180
	device.finish()
	if got := currentID(t, session); got != 2 {
		t.Errorf("expected to stay on song 2, got %d", got)
	}
	if device.position != 0 {
		t.Errorf("expected restart at position 0, got %f", device.position)
	}
	if got := session.Status().State; got != Playing {
		t.Errorf("expected state %v, got %v", Playing, got)
	}
}

func TestTrackEnded_RepeatAllWrapsAtTail(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := session.SetRepeat(RepeatAll); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	device.finish()
	if got := currentID(t, session); got != 1 {
		t.Errorf("expected wrap to song 1 after track end, got %d", got)
	}
}

func TestToggleShuffle_KeepsCurrentAndCoversQueue(t *testing.T) {
	session, _ := newTestSession(t)
	if err := session.SelectSong(2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if on := session.ToggleShuffle(); !on {
		t.Fatal("expected shuffle on")
	}
	if got := currentID(t, session); got != 2 {
		t.Errorf("expected current song unchanged by shuffle toggle, got %d", got)
	}

	// Walking the whole shuffled ordering visits every song exactly once.
	if err := session.SetRepeat(RepeatAll); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	seen := map[int64]int{currentID(t, session): 1}
	for i := 0; i < 2; i++ {
		if err := session.Skip(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		seen[currentID(t, session)]++
	}
	for id := int64(1); id <= 3; id++ {
		if seen[id] != 1 {
			t.Errorf("expected song %d visited once, got %d visits (%v)", id, seen[id], seen)
		}
	}

	if on := session.ToggleShuffle(); on {
		t.Fatal("expected shuffle off")
	}
}

func TestSetQueue_StopsPlayback(t *testing.T) {
	session, device := newTestSession(t)
	if err := session.SelectSong(1); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	session.SetQueue([]*music.Song{{ID: 9, Title: "Z", FilePath: "/media/z.mp3"}})
	status := session.Status()
	if status.State != Stopped {
		t.Errorf("expected state %v after queue replacement, got %v", Stopped, status.State)
	}
	if device.playing {
		t.Error("expected device stopped")
	}
}

func TestCycleRepeat(t *testing.T) {
	session, _ := newTestSession(t)

	if got := session.CycleRepeat(); got != RepeatAll {
		t.Errorf("expected %v, got %v", RepeatAll, got)
	}
	if got := session.CycleRepeat(); got != RepeatSingleTrack {
		t.Errorf("expected %v, got %v", RepeatSingleTrack, got)
	}
	if got := session.CycleRepeat(); got != RepeatNone {
		t.Errorf("expected %v, got %v", RepeatNone, got)
	}
}
