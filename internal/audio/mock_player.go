package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// MockPlayer is a silent ttypes.AudioPlayer for tests. A clip "plays" for
// its PCM duration multiplied by TimeScale; with Hold set it plays until
// Stop is called.
type MockPlayer struct {
	// TimeScale shortens or stretches simulated playback. Zero finishes
	// every clip immediately.
	TimeScale float64

	// Hold keeps clips playing until Stop.
	Hold bool

	// PlayErr, when set, is returned by Play.
	PlayErr error

	mu       sync.Mutex
	playing  bool
	started  time.Time
	duration time.Duration
	volume   float64
	closed   bool

	plays     [][]byte
	volumes   []float64
	stopCount int
}

var _ ttypes.AudioPlayer = (*MockPlayer)(nil)

// NewMockPlayer returns a mock that finishes clips immediately.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{volume: 1.0}
}

// Play records the clip and starts simulated playback.
func (mp *MockPlayer) Play(audio []byte) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.closed {
		return ErrPlayerClosed
	}
	if len(audio) == 0 {
		return ErrEmptyClip
	}
	if mp.PlayErr != nil {
		return mp.PlayErr
	}

	mp.plays = append(mp.plays, append([]byte(nil), audio...))
	mp.volumes = append(mp.volumes, mp.volume)
	mp.playing = true
	mp.started = time.Now()
	mp.duration = time.Duration(float64(ttypes.PCMDuration(audio, ttypes.DefaultSampleRate)) * mp.TimeScale)
	return nil
}

// Stop ends simulated playback.
func (mp *MockPlayer) Stop() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopCount++
	mp.playing = false
	return nil
}

// IsPlaying reports whether the simulated clip is still running.
func (mp *MockPlayer) IsPlaying() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if !mp.playing {
		return false
	}
	if mp.Hold {
		return true
	}
	if time.Since(mp.started) >= mp.duration {
		mp.playing = false
	}
	return mp.playing
}

// GetPosition returns the simulated position.
func (mp *MockPlayer) GetPosition() time.Duration {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if !mp.playing {
		return 0
	}
	return time.Since(mp.started)
}

// SetVolume records the volume applied to following clips.
func (mp *MockPlayer) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return errors.New("volume out of range")
	}
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.volume = volume
	return nil
}

// Close marks the player closed.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.closed = true
	mp.playing = false
	return nil
}

// Plays returns a copy of every clip passed to Play.
func (mp *MockPlayer) Plays() [][]byte {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([][]byte(nil), mp.plays...)
}

// Volumes returns the volume in effect for each recorded Play.
func (mp *MockPlayer) Volumes() []float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]float64(nil), mp.volumes...)
}

// StopCount returns how many times Stop was called.
func (mp *MockPlayer) StopCount() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.stopCount
}
