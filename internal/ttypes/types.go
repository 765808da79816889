// Package ttypes contains the contracts shared by the speech stack.
// It exists so engines, the audio player, the cache and the speech adapter can
// depend on each other's shapes without import cycles.
package ttypes

import (
	"context"
	"time"
)

// EngineType represents the TTS engine selection.
type EngineType string

const (
	// EnginePiper is the offline Piper engine.
	EnginePiper EngineType = "piper"

	// EngineGoogle is Google Translate TTS through gtts-cli.
	EngineGoogle EngineType = "gtts"

	// EngineNone disables speech. Phrases are still counted.
	EngineNone EngineType = "none"
)

// PCM layout produced by every engine. The sample rate is the engine's
// (see EngineInfo); DefaultSampleRate is what Piper's medium and low quality
// models and the gTTS conversion produce.
const (
	DefaultSampleRate = 22050
	Channels          = 1
	BitDepth          = 16
)

// EngineInfo describes engine capabilities and configuration.
type EngineInfo struct {
	Name        string
	Version     string
	SampleRate  int
	Channels    int
	BitDepth    int
	MaxTextSize int
	IsOnline    bool
}

// Voice is a voice an engine can speak with.
type Voice struct {
	ID   string // engine specific identifier, e.g. a model path
	Name string // human readable, e.g. "Piper riccardo"
	Lang string // BCP 47 tag, e.g. "it-IT"
}

// TTSEngine converts text to PCM audio.
type TTSEngine interface {
	// Synthesize converts text to 16-bit mono PCM at the engine's sample
	// rate. A rate of 1.0 is the engine's normal speed.
	Synthesize(ctx context.Context, text string, rate float64) ([]byte, error)

	// Voices lists the voices the engine can use.
	Voices() []Voice

	// GetInfo returns engine capabilities and configuration.
	GetInfo() EngineInfo

	// Validate checks if the engine is properly configured and available.
	Validate() error

	// Close releases any resources held by the engine.
	Close() error
}

// AudioPlayer plays PCM clips.
type AudioPlayer interface {
	// Play starts playback, replacing whatever was playing.
	Play(audio []byte) error

	// Stop halts playback.
	Stop() error

	// IsPlaying reports whether a clip is still playing.
	IsPlaying() bool

	// GetPosition returns the playback position within the current clip.
	GetPosition() time.Duration

	// SetVolume sets the playback volume (0.0 to 1.0).
	SetVolume(volume float64) error

	// Close releases the audio device.
	Close() error
}

// AudioCache caches synthesized clips.
type AudioCache interface {
	Get(key string) ([]byte, bool)
	Put(key string, audio []byte) error
	Delete(key string) error
	Clear() error
	Size() int64
	Stats() CacheStats
}

// CacheStats provides cache performance metrics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int64 // bytes
	Capacity  int64 // bytes
}

// PCMDuration returns the playing time of a 16-bit mono clip.
func PCMDuration(audio []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	bytesPerSecond := sampleRate * Channels * BitDepth / 8
	return time.Duration(len(audio)) * time.Second / time.Duration(bytesPerSecond)
}
