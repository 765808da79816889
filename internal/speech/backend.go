package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/cache"
	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// Speech parameters of every phrase.
const (
	DefaultRate   = 0.98
	DefaultPitch  = 1.0
	DefaultVolume = 1.0
)

// Utterance is a request to speak text.
type Utterance struct {
	Text   string
	Lang   string
	Voice  *Voice
	Rate   float64
	Pitch  float64
	Volume float64
}

// Backend is the platform text-to-speech service.
type Backend interface {
	// Voices lists the available voices. It may be empty until the
	// backend has finished loading them.
	Voices() []Voice

	// Speak plays u and returns when it has finished or ctx is done.
	Speak(ctx context.Context, u Utterance) error

	// Cancel stops whatever is being spoken.
	Cancel()
}

// Prefetcher is implemented by backends that can prepare audio ahead of time.
type Prefetcher interface {
	Prefetch(ctx context.Context, u Utterance) error
}

// ErrNoCache is returned by Prefetch when the backend has no audio cache.
var ErrNoCache = errors.New("no audio cache configured")

// defaultPoll is how often playback completion is checked.
const defaultPoll = 20 * time.Millisecond

// EngineBackend speaks with a TTS engine and an audio player. Synthesized
// clips are kept in an optional cache.
type EngineBackend struct {
	engine ttypes.TTSEngine
	player ttypes.AudioPlayer
	cache  ttypes.AudioCache
	poll   time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

var (
	_ Backend    = (*EngineBackend)(nil)
	_ Prefetcher = (*EngineBackend)(nil)
)

// NewEngineBackend returns a backend over engine and player. c may be nil.
func NewEngineBackend(engine ttypes.TTSEngine, player ttypes.AudioPlayer, c ttypes.AudioCache) *EngineBackend {
	return &EngineBackend{engine: engine, player: player, cache: c, poll: defaultPoll}
}

// Voices returns the engine voices.
func (b *EngineBackend) Voices() []Voice {
	return b.engine.Voices()
}

func (b *EngineBackend) key(u Utterance) string {
	voice := b.engine.GetInfo().Name
	if u.Voice != nil && u.Voice.ID != "" {
		voice = u.Voice.ID
	}
	return cache.GenerateCacheKey(u.Text, voice, u.Rate)
}

// audio returns the clip for u from the cache or the engine.
func (b *EngineBackend) audio(ctx context.Context, u Utterance) ([]byte, error) {
	if b.cache != nil {
		if clip, ok := b.cache.Get(b.key(u)); ok {
			return clip, nil
		}
	}

	clip, err := b.engine.Synthesize(ctx, u.Text, u.Rate)
	if err != nil {
		return nil, err
	}
	if b.cache != nil {
		if err := b.cache.Put(b.key(u), clip); err != nil {
			log.Debug("audio not cached", "text", u.Text, "err", err)
		}
	}
	return clip, nil
}

// Prefetch synthesizes u into the cache without playing it.
func (b *EngineBackend) Prefetch(ctx context.Context, u Utterance) error {
	if b.cache == nil {
		return ErrNoCache
	}
	_, err := b.audio(ctx, u)
	return err
}

// Speak synthesizes and plays u, blocking until playback ends. Cancelling
// ctx stops the clip.
func (b *EngineBackend) Speak(ctx context.Context, u Utterance) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b.mu.Lock()
	b.cancel = cancel
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		b.cancel = nil
		b.mu.Unlock()
	}()

	clip, err := b.audio(ctx, u)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.player.SetVolume(u.Volume); err != nil {
		return err
	}
	if err := b.player.Play(clip); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	ticker := time.NewTicker(b.poll)
	defer ticker.Stop()
	for b.player.IsPlaying() {
		select {
		case <-ctx.Done():
			_ = b.player.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Cancel stops the utterance in flight.
func (b *EngineBackend) Cancel() {
	b.mu.Lock()
	cancel := b.cancel
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	_ = b.player.Stop()
}

// Silent accepts every utterance and plays nothing. It backs runs without a
// TTS engine so phrases are still counted.
type Silent struct {
	VoiceList []Voice

	mu     sync.Mutex
	spoken []Utterance
}

var _ Backend = (*Silent)(nil)

func (s *Silent) Voices() []Voice {
	return s.VoiceList
}

func (s *Silent) Speak(ctx context.Context, u Utterance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, u)
	return nil
}

func (s *Silent) Cancel() {}

// Spoken returns the utterances received so far.
func (s *Silent) Spoken() []Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Utterance(nil), s.spoken...)
}
