package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/ttypes"
	"github.com/ebitengine/oto/v3"
)

var (
	// ErrEmptyClip is returned when Play is given no audio.
	ErrEmptyClip = errors.New("audio data is empty")

	// ErrPlayerClosed is returned after Close.
	ErrPlayerClosed = errors.New("player is closed")
)

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate int
	Channels   int
	BufferSize time.Duration
}

// DefaultPlayerConfig returns the configuration matching engine output.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate: ttypes.DefaultSampleRate,
		Channels:   ttypes.Channels,
		BufferSize: 100 * time.Millisecond,
	}
}

// Player plays PCM clips with oto. It satisfies ttypes.AudioPlayer.
type Player struct {
	context *oto.Context
	player  *oto.Player

	// oto reads from the clip while it plays, so the bytes are held here.
	clip    []byte
	started time.Time

	sampleRate int

	volume float64
	closed bool
	mu     sync.Mutex
}

var _ ttypes.AudioPlayer = (*Player)(nil)

// NewPlayer opens the audio device and waits until it is ready or ctx is done.
func NewPlayer(ctx context.Context, config PlayerConfig) (*Player, error) {
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   config.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("audio device not ready: %w", ctx.Err())
	}

	log.Debug("audio device ready", "sample_rate", config.SampleRate, "channels", config.Channels)
	return &Player{context: otoCtx, volume: 1.0, sampleRate: config.SampleRate}, nil
}

func validateConfig(config PlayerConfig) error {
	if config.SampleRate != 22050 && config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("unsupported sample rate %d", config.SampleRate)
	}
	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", config.Channels)
	}
	if config.BufferSize < 0 {
		return errors.New("buffer size must not be negative")
	}
	return nil
}

// Play starts a clip, replacing whatever was playing.
func (p *Player) Play(audio []byte) error {
	if len(audio) == 0 {
		return ErrEmptyClip
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPlayerClosed
	}
	p.stopLocked()

	p.clip = append([]byte(nil), audio...)
	p.player = p.context.NewPlayer(bytes.NewReader(p.clip))
	p.player.SetVolume(p.volume)
	p.started = time.Now()
	p.player.Play()
	return nil
}

// Stop halts the current clip.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *Player) stopLocked() error {
	if p.player == nil {
		return nil
	}
	p.player.Pause()
	err := p.player.Close()
	p.player = nil
	p.clip = nil
	return err
}

// IsPlaying reports whether the current clip has not finished yet.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player != nil && p.player.IsPlaying()
}

// GetPosition returns the time since the clip started, capped at its length.
func (p *Player) GetPosition() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return 0
	}
	return min(time.Since(p.started), ttypes.PCMDuration(p.clip, p.sampleRate))
}

// SetVolume sets the volume of the current and following clips.
func (p *Player) SetVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.volume = volume
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	return nil
}

// Close stops playback. oto contexts cannot be closed, so the device stays
// open until the process exits.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.stopLocked()
}
