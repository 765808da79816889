package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/frasi/internal/ttypes"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

const (
	piperMaxText     = 5000
	piperMaxAudio    = 10 << 20
	piperTimeout     = 10 * time.Second
	piperDefaultLang = "it-IT"
)

// PiperError represents Piper-specific errors.
type PiperError struct {
	Type    string
	Message string
	Cause   error
}

func (e *PiperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("piper %s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("piper %s: %s", e.Type, e.Message)
}

func (e *PiperError) Unwrap() error {
	return e.Cause
}

// PiperConfig holds configuration for the Piper engine.
type PiperConfig struct {
	// Binary is the piper executable, "piper" when empty.
	Binary string

	// ModelPath is the .onnx voice model (required).
	ModelPath string

	// ConfigPath defaults to ModelPath + ".json".
	ConfigPath string

	// Speaker selects a speaker of multi-speaker models.
	Speaker string
}

// PiperEngine speaks with Piper. Every phrase runs a fresh process with the
// text already attached to stdin.
type PiperEngine struct {
	binary     string
	modelPath  string
	configPath string
	speaker    string
	sampleRate int
	voice      ttypes.Voice

	mu sync.RWMutex
}

var _ ttypes.TTSEngine = (*PiperEngine)(nil)

// piperModelConfig is the part of a model's JSON config frasi reads.
type piperModelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
	Language struct {
		Code string `json:"code"`
	} `json:"language"`
}

// NewPiperEngine creates a Piper engine. The model must exist; its JSON
// config, when present, provides the sample rate and language.
func NewPiperEngine(config PiperConfig) (*PiperEngine, error) {
	if config.ModelPath == "" {
		return nil, &PiperError{Type: "config", Message: "model path is required"}
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, &PiperError{Type: "config", Message: "model file not found", Cause: err}
	}
	if config.Binary == "" {
		config.Binary = "piper"
	}
	if config.ConfigPath == "" {
		config.ConfigPath = config.ModelPath + ".json"
	}

	e := &PiperEngine{
		binary:     config.Binary,
		modelPath:  config.ModelPath,
		configPath: config.ConfigPath,
		speaker:    config.Speaker,
		sampleRate: ttypes.DefaultSampleRate,
	}

	lang := ""
	if mc, err := readPiperModelConfig(config.ConfigPath); err == nil {
		if mc.Audio.SampleRate > 0 {
			e.sampleRate = mc.Audio.SampleRate
		}
		lang = mc.Language.Code
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, &PiperError{Type: "config", Message: "unreadable model config", Cause: err}
	}
	e.voice = piperVoice(config.ModelPath, lang)
	return e, nil
}

func readPiperModelConfig(path string) (piperModelConfig, error) {
	var mc piperModelConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return mc, err
	}
	if err := json.Unmarshal(data, &mc); err != nil {
		return mc, err
	}
	return mc, nil
}

// piperVoice derives a voice from a model named like it_IT-riccardo-x_low.
func piperVoice(modelPath, langCode string) ttypes.Voice {
	base := filepath.Base(modelPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.Split(base, "-")

	if langCode == "" {
		langCode = parts[0]
	}
	name := base
	if len(parts) > 1 {
		name = parts[1]
	}

	lang := piperDefaultLang
	langName := ""
	if tag, err := language.Parse(langCode); err == nil {
		lang = tag.String()
		langName = display.Tags(language.English).Name(tag)
	}

	v := ttypes.Voice{ID: modelPath, Name: "Piper " + name, Lang: lang}
	if langName != "" {
		v.Name += " (" + langName + ")"
	}
	return v
}

// Synthesize converts text to raw PCM at the model's sample rate.
func (e *PiperEngine) Synthesize(ctx context.Context, text string, rate float64) ([]byte, error) {
	if err := checkText(text, piperMaxText); err != nil {
		return nil, &PiperError{Type: "input", Message: "invalid text", Cause: err}
	}
	if rate <= 0 {
		rate = 1.0
	}

	e.mu.RLock()
	args := []string{
		"--model", e.modelPath,
		"--output-raw",
		"--length-scale", fmt.Sprintf("%.2f", 1.0/rate),
	}
	if _, err := os.Stat(e.configPath); err == nil {
		args = append(args, "--config", e.configPath)
	}
	if e.speaker != "" {
		args = append(args, "--speaker", e.speaker)
	}
	binary := e.binary
	e.mu.RUnlock()

	audio, err := runCommand(ctx, piperTimeout, strings.NewReader(text), binary, args...)
	if err != nil {
		return nil, &PiperError{Type: "synthesis", Message: "piper run failed", Cause: err}
	}
	if len(audio) > piperMaxAudio {
		return nil, &PiperError{Type: "synthesis", Message: fmt.Sprintf("output too large: %d bytes (max %d)", len(audio), piperMaxAudio)}
	}
	return audio, nil
}

// Voices returns the single voice of the loaded model.
func (e *PiperEngine) Voices() []ttypes.Voice {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return []ttypes.Voice{e.voice}
}

// GetInfo returns engine capabilities and configuration.
func (e *PiperEngine) GetInfo() ttypes.EngineInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return ttypes.EngineInfo{
		Name:        "piper",
		Version:     "1",
		SampleRate:  e.sampleRate,
		Channels:    ttypes.Channels,
		BitDepth:    ttypes.BitDepth,
		MaxTextSize: piperMaxText,
		IsOnline:    false,
	}
}

// Validate checks the binary runs and the model is readable.
func (e *PiperEngine) Validate() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := runCommand(ctx, 5*time.Second, nil, e.binary, "--version"); err != nil {
		return &PiperError{Type: "binary", Message: "cannot execute piper", Cause: err}
	}
	if _, err := os.Stat(e.modelPath); err != nil {
		return &PiperError{Type: "config", Message: "model file not accessible", Cause: err}
	}
	return nil
}

// SetSpeaker changes the speaker of multi-speaker models.
func (e *PiperEngine) SetSpeaker(speaker string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speaker = speaker
}

// Close releases resources held by the engine.
func (e *PiperEngine) Close() error {
	return nil
}
