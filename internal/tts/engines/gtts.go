package engines

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dgnsrekt/frasi/internal/ttypes"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"golang.org/x/time/rate"
)

const (
	gttsMaxText    = 5000
	gttsMaxMP3     = 50 << 20
	gttsTimeout    = 30 * time.Second
	ffmpegTimeout  = 15 * time.Second
	gttsDefaultRPM = 50
)

// GTTSConfig holds configuration for the gTTS engine.
type GTTSConfig struct {
	// Language is the gTTS language code, "it" when empty.
	Language string

	// Slow selects gTTS's slow mode.
	Slow bool

	// SampleRate of the converted PCM, ttypes.DefaultSampleRate when zero.
	SampleRate int

	// RequestsPerMinute limits calls to Google to avoid being blocked.
	RequestsPerMinute int

	// GTTSBinary and FFmpegBinary default to gtts-cli and ffmpeg.
	GTTSBinary   string
	FFmpegBinary string
}

// GTTSEngine speaks with Google Translate TTS. gtts-cli writes MP3 which
// ffmpeg converts to PCM.
type GTTSEngine struct {
	language   string
	slow       bool
	sampleRate int
	gtts       string
	ffmpeg     string

	limiter *rate.Limiter

	mu sync.RWMutex
}

var _ ttypes.TTSEngine = (*GTTSEngine)(nil)

// NewGTTSEngine creates a gTTS engine.
func NewGTTSEngine(config GTTSConfig) (*GTTSEngine, error) {
	if config.Language == "" {
		config.Language = "it"
	}
	if _, err := language.Parse(config.Language); err != nil {
		return nil, fmt.Errorf("invalid gTTS language %q: %w", config.Language, err)
	}
	if config.SampleRate == 0 {
		config.SampleRate = ttypes.DefaultSampleRate
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = gttsDefaultRPM
	}
	if config.GTTSBinary == "" {
		config.GTTSBinary = "gtts-cli"
	}
	if config.FFmpegBinary == "" {
		config.FFmpegBinary = "ffmpeg"
	}

	return &GTTSEngine{
		language:   config.Language,
		slow:       config.Slow,
		sampleRate: config.SampleRate,
		gtts:       config.GTTSBinary,
		ffmpeg:     config.FFmpegBinary,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}, nil
}

// Synthesize converts text to PCM: text → gtts-cli → MP3 → ffmpeg → PCM.
func (e *GTTSEngine) Synthesize(ctx context.Context, text string, speed float64) ([]byte, error) {
	if err := checkText(text, gttsMaxText); err != nil {
		return nil, err
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	mp3, err := e.synthesizeToMP3(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("MP3 generation failed: %w", err)
	}
	pcm, err := e.convertMP3ToPCM(ctx, mp3, speed)
	if err != nil {
		return nil, fmt.Errorf("MP3 to PCM conversion failed: %w", err)
	}
	return pcm, nil
}

func (e *GTTSEngine) synthesizeToMP3(ctx context.Context, text string) ([]byte, error) {
	e.mu.RLock()
	args := []string{text, "-l", e.language}
	if e.slow {
		args = append(args, "--slow")
	}
	binary := e.gtts
	e.mu.RUnlock()
	args = append(args, "-o", "-")

	mp3, err := runCommand(ctx, gttsTimeout, nil, binary, args...)
	if err != nil {
		return nil, err
	}
	if len(mp3) > gttsMaxMP3 {
		return nil, fmt.Errorf("gtts-cli MP3 output too large: %d bytes (max %d)", len(mp3), gttsMaxMP3)
	}
	return mp3, nil
}

// ffmpegArgs builds the conversion to mono s16le at the engine's rate. The
// atempo filter handles speeds in 0.5..2.0.
func (e *GTTSEngine) ffmpegArgs(speed float64) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprint(e.sampleRate),
		"-ac", "1",
	}
	if speed > 0 && speed != 1.0 {
		args = append(args, "-filter:a", fmt.Sprintf("atempo=%.2f", min(max(speed, 0.5), 2.0)))
	}
	return append(args, "pipe:1")
}

func (e *GTTSEngine) convertMP3ToPCM(ctx context.Context, mp3 []byte, speed float64) ([]byte, error) {
	e.mu.RLock()
	args := e.ffmpegArgs(speed)
	binary := e.ffmpeg
	e.mu.RUnlock()

	return runCommand(ctx, ffmpegTimeout, bytes.NewReader(mp3), binary, args...)
}

// Voices returns the Google Translate voice of the configured language.
func (e *GTTSEngine) Voices() []ttypes.Voice {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tag := language.Make(e.language)
	return []ttypes.Voice{{
		ID:   "gtts-" + e.language,
		Name: "Google Translate " + display.Languages(language.English).Name(tag),
		Lang: tag.String(),
	}}
}

// GetInfo returns engine capabilities and configuration.
func (e *GTTSEngine) GetInfo() ttypes.EngineInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return ttypes.EngineInfo{
		Name:        "gtts",
		Version:     "1",
		SampleRate:  e.sampleRate,
		Channels:    ttypes.Channels,
		BitDepth:    ttypes.BitDepth,
		MaxTextSize: gttsMaxText,
		IsOnline:    true,
	}
}

// Validate checks that gtts-cli and ffmpeg run. It does not reach Google.
func (e *GTTSEngine) Validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx := context.Background()
	if _, err := runCommand(ctx, 5*time.Second, nil, e.gtts, "--help"); err != nil {
		return fmt.Errorf("cannot execute gtts-cli: %w\n\nInstall with: pipx install gtts", err)
	}
	if _, err := runCommand(ctx, 5*time.Second, nil, e.ffmpeg, "-version"); err != nil {
		return fmt.Errorf("cannot execute ffmpeg: %w", err)
	}
	return nil
}

// SetSlow enables or disables slow speech.
func (e *GTTSEngine) SetSlow(slow bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.slow = slow
}

// Close releases resources held by the engine.
func (e *GTTSEngine) Close() error {
	return nil
}
