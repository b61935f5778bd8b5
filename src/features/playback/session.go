package playback

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"vaulted/src/music"
)

// State is the transport state of the session.
type State string

const (
	Stopped State = "stopped"
	Playing State = "playing"
	Paused  State = "paused"
)

// RepeatMode controls what happens when the end of the queue is reached.
type RepeatMode string

const (
	RepeatNone        RepeatMode = "none"
	RepeatAll         RepeatMode = "all"
	RepeatSingleTrack RepeatMode = "single"
)

// Device is the audio output the session drives. Implementations report
// natural end of a track through the OnEnded callback.
type Device interface {
	Open(path string) error
	Play()
	Pause()
	Stop()
	Seek(seconds float64) error
	Position() float64
	NaturalDuration() float64
	OnEnded(fn func())
}

// Session holds the in-memory transport state: the queue, the cursor into
// the active ordering, repeat and shuffle modes. It owns no storage; the
// queue is whatever ordered song list was loaded into it.
type Session struct {
	mu      sync.Mutex
	device  Device
	queue   []*music.Song
	order   []int // active ordering as indices into queue; nil means declaration order
	cursor  int   // position within the active ordering, -1 when nothing selected
	state   State
	repeat  RepeatMode
	shuffle bool
}

// NewSession creates a session bound to a playback device.
func NewSession(device Device) *Session {
	s := &Session{
		device: device,
		cursor: -1,
		state:  Stopped,
		repeat: RepeatNone,
	}
	device.OnEnded(s.handleTrackEnded)
	return s
}

// SetQueue replaces the queue with a new ordered song list, stopping any
// current playback. Loading a new queue invalidates the shuffle permutation;
// a fresh one is drawn if shuffle is still on.
func (s *Session) SetQueue(songs []*music.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.queue = songs
	s.cursor = -1
	if s.shuffle {
		s.order = rand.Perm(len(s.queue))
	} else {
		s.order = nil
	}
}

// SelectSong starts playing the song with the given id from the queue.
func (s *Session) SelectSong(songID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pos := 0; pos < len(s.queue); pos++ {
		if s.songAt(pos).ID == songID {
			return s.startAtLocked(pos)
		}
	}
	return fmt.Errorf("song %d not in playback queue: %w", songID, music.ErrNotFound)
}

// PlayPause toggles between Playing and Paused. No-op when nothing is
// selected.
func (s *Session) PlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Playing:
		s.device.Pause()
		s.state = Paused
	case Paused:
		s.device.Play()
		s.state = Playing
	}
}

// Skip advances one position in the active ordering. At the end of the
// ordering it wraps to the head only when repeat is set to all; otherwise
// it is a no-op.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipLocked()
}

// Back retreats one position in the active ordering. At the head it is
// always a no-op.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor <= 0 {
		return nil
	}
	return s.startAtLocked(s.cursor - 1)
}

// Seek moves the playback position of the current track.
func (s *Session) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		return nil
	}
	return s.device.Seek(seconds)
}

// Stop halts playback and clears the selection.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// ToggleShuffle turns shuffle on or off. Turning it on draws one fresh
// random permutation of the queue that stays fixed until shuffle is toggled
// off or the queue is replaced. The current track keeps playing; the cursor
// follows it into the new ordering.
func (s *Session) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.currentLocked()
	s.shuffle = !s.shuffle
	if s.shuffle {
		s.order = rand.Perm(len(s.queue))
	} else {
		s.order = nil
	}
	if current != nil {
		for pos := 0; pos < len(s.queue); pos++ {
			if s.songAt(pos).ID == current.ID {
				s.cursor = pos
				break
			}
		}
	}
	return s.shuffle
}

// SetRepeat sets the repeat mode.
func (s *Session) SetRepeat(mode RepeatMode) error {
	switch mode {
	case RepeatNone, RepeatAll, RepeatSingleTrack:
	default:
		return fmt.Errorf("unknown repeat mode %q: %w", mode, music.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = mode
	return nil
}

// CycleRepeat advances the repeat mode none -> all -> single -> none.
func (s *Session) CycleRepeat() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.repeat {
	case RepeatNone:
		s.repeat = RepeatAll
	case RepeatAll:
		s.repeat = RepeatSingleTrack
	default:
		s.repeat = RepeatNone
	}
	return s.repeat
}

// Status is a snapshot of the session's transport state.
type Status struct {
	State    State       `json:"state"`
	Repeat   RepeatMode  `json:"repeat"`
	Shuffle  bool        `json:"shuffle"`
	Song     *music.Song `json:"song,omitempty"`
	Position float64     `json:"position"`
	Duration float64     `json:"duration"`
}

// Status returns a snapshot of the current transport state. It never blocks
// on anything but the session's own mutex, so it is safe to poll on a timer.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{
		State:   s.state,
		Repeat:  s.repeat,
		Shuffle: s.shuffle,
		Song:    s.currentLocked(),
	}
	if s.state != Stopped {
		status.Position = s.device.Position()
		status.Duration = s.device.NaturalDuration()
	}
	return status
}

// handleTrackEnded reacts to the device reporting natural end of a track.
// Single-track repeat restarts the current track; otherwise it behaves like
// Skip, except that where Skip would be a no-op the session stops.
func (s *Session) handleTrackEnded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		return
	}
	if s.repeat == RepeatSingleTrack {
		if err := s.device.Seek(0); err != nil {
			slog.Error("Failed to restart track", "error", err)
			s.stopLocked()
			return
		}
		s.device.Play()
		s.state = Playing
		return
	}
	if s.cursor+1 >= len(s.queue) && s.repeat != RepeatAll {
		s.stopLocked()
		return
	}
	if err := s.skipLocked(); err != nil {
		slog.Error("Failed to advance after track end", "error", err)
		s.stopLocked()
	}
}

// songAt resolves a position in the active ordering to a song.
func (s *Session) songAt(pos int) *music.Song {
	if s.order != nil {
		return s.queue[s.order[pos]]
	}
	return s.queue[pos]
}

func (s *Session) currentLocked() *music.Song {
	if s.cursor < 0 || s.cursor >= len(s.queue) {
		return nil
	}
	return s.songAt(s.cursor)
}

func (s *Session) skipLocked() error {
	if s.cursor < 0 || len(s.queue) == 0 {
		return nil
	}
	next := s.cursor + 1
	if next >= len(s.queue) {
		if s.repeat != RepeatAll {
			return nil
		}
		next = 0
	}
	return s.startAtLocked(next)
}

func (s *Session) startAtLocked(pos int) error {
	song := s.songAt(pos)
	if err := s.device.Open(song.FilePath); err != nil {
		return fmt.Errorf("failed to open %s: %w", song.FilePath, err)
	}
	s.cursor = pos
	s.device.Play()
	s.state = Playing
	slog.Debug("Playback started", "songID", song.ID, "title", song.Title)
	return nil
}

func (s *Session) stopLocked() {
	if s.state != Stopped {
		s.device.Stop()
	}
	s.state = Stopped
	s.cursor = -1
}
