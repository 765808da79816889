package tts

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// ValidationResult contains the result of engine validation.
type ValidationResult struct {
	Engine    ttypes.EngineType
	Available bool
	Error     error

	// Guidance provides setup instructions if validation failed.
	Guidance string

	Details map[string]string
}

// ParseEngine normalizes an engine name. "google" is an alias of gtts and
// an empty name or "none" disables speech.
func ParseEngine(name string) (ttypes.EngineType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "off":
		return ttypes.EngineNone, nil
	case "piper":
		return ttypes.EnginePiper, nil
	case "gtts", "google":
		return ttypes.EngineGoogle, nil
	default:
		return ttypes.EngineNone, fmt.Errorf("%w: %s\n\nSupported engines:\n  - piper (offline TTS)\n  - gtts (Google TTS)\n  - none (silent, revisions are still counted)", ErrInvalidEngine, name)
	}
}

// ValidateEngineSelection resolves the engine from the --tts flag, then the
// config file. No selection means silent mode, which is not an error.
func ValidateEngineSelection(cliArg string, config Config) (ttypes.EngineType, error) {
	engine := strings.TrimSpace(cliArg)
	if engine == "" {
		engine = string(config.Engine)
	}
	return ParseEngine(engine)
}

// ValidateEngine checks that the binaries and model an engine needs exist.
func ValidateEngine(engineType ttypes.EngineType, config Config) *ValidationResult {
	result := &ValidationResult{
		Engine:  engineType,
		Details: make(map[string]string),
	}

	switch engineType {
	case ttypes.EnginePiper:
		validatePiperEngine(config.Piper, result)
	case ttypes.EngineGoogle:
		validateGoogleEngine(config.Normalize().GTTS, result)
	case ttypes.EngineNone:
		result.Error = ErrNoEngineConfigured
		result.Guidance = NoEngineGuidance()
	default:
		result.Error = fmt.Errorf("%w: %s", ErrInvalidEngine, engineType)
		result.Guidance = "Supported engines: piper, gtts, none"
	}
	return result
}

func validatePiperEngine(config PiperConfig, result *ValidationResult) {
	result.Details["engine"] = "Piper (Offline TTS)"

	binary := config.Binary
	if binary == "" {
		binary = "piper"
	}
	piperPath, err := exec.LookPath(binary)
	if err != nil {
		result.Error = fmt.Errorf("Piper TTS not found: %w", err)
		result.Guidance = buildPiperInstallGuidance()
		return
	}
	result.Details["binary_path"] = piperPath

	if config.ModelPath == "" {
		result.Error = fmt.Errorf("Piper model path not configured")
		result.Guidance = buildPiperModelGuidance()
		return
	}
	if _, err := os.Stat(config.ModelPath); err != nil {
		result.Error = fmt.Errorf("model file not accessible: %w", err)
		result.Guidance = buildPiperModelGuidance()
		return
	}
	result.Details["model_path"] = config.ModelPath

	configPath := config.ConfigPath
	if configPath == "" {
		configPath = config.ModelPath + ".json"
	}
	if _, err := os.Stat(configPath); err == nil {
		result.Details["config_path"] = configPath
	} else {
		result.Details["config_note"] = "model config not found, Piper will use its defaults"
	}

	result.Available = true
	result.Details["status"] = "Ready"
}

func validateGoogleEngine(config GTTSConfig, result *ValidationResult) {
	result.Details["engine"] = "Google TTS (gTTS)"

	gttsPath, err := exec.LookPath("gtts-cli")
	if err != nil {
		result.Error = fmt.Errorf("gTTS not found in PATH: %w", err)
		result.Guidance = buildGTTSInstallGuidance()
		return
	}
	result.Details["gtts_path"] = gttsPath

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		result.Error = fmt.Errorf("ffmpeg not found in PATH: %w", err)
		result.Guidance = buildFFmpegInstallGuidance()
		return
	}
	result.Details["ffmpeg_path"] = ffmpegPath
	result.Details["language"] = config.Language
	if config.Slow {
		result.Details["speed"] = "slow"
	} else {
		result.Details["speed"] = "normal"
	}

	result.Available = true
	result.Details["status"] = "Ready (requires network access)"
}

// NoEngineGuidance explains how to turn speech on.
func NoEngineGuidance() string {
	return `Speech is off. Pick an engine:
  frasi --tts piper    # offline, needs an Italian voice model
  frasi --tts gtts     # online, needs gtts-cli and ffmpeg

Or set a default in frasi.yml (frasi config):
  tts:
    engine: piper  # or "gtts"`
}

func buildPiperInstallGuidance() string {
	return `Piper TTS is not installed. To install:

1. Download Piper from: https://github.com/rhasspy/piper/releases
2. Extract it and add it to PATH, or set tts.piper.binary in frasi.yml
3. Download an Italian voice from https://huggingface.co/rhasspy/piper-voices`
}

func buildPiperModelGuidance() string {
	return `Piper needs an Italian voice model. To configure:

1. Download a model and its config:
   mkdir -p ~/.local/share/piper/models
   cd ~/.local/share/piper/models
   wget https://huggingface.co/rhasspy/piper-voices/resolve/v1.0.0/it/it_IT/riccardo/x_low/it_IT-riccardo-x_low.onnx
   wget https://huggingface.co/rhasspy/piper-voices/resolve/v1.0.0/it/it_IT/riccardo/x_low/it_IT-riccardo-x_low.onnx.json

2. Point frasi.yml at it:
   tts:
     engine: piper
     piper:
       model_path: ~/.local/share/piper/models/it_IT-riccardo-x_low.onnx`
}

func buildGTTSInstallGuidance() string {
	return `gTTS (Google Text-to-Speech) is not installed. To install:

   pipx install gtts

No API key is required, but gTTS needs an internet connection.`
}

func buildFFmpegInstallGuidance() string {
	return `ffmpeg is required for gTTS audio conversion. To install:

# Ubuntu/Debian
sudo apt install ffmpeg

# macOS (Homebrew)
brew install ffmpeg

# Arch Linux
sudo pacman -S ffmpeg`
}

// QuickValidation checks only that the engine's binaries are in PATH.
func QuickValidation(engineType ttypes.EngineType) error {
	switch engineType {
	case ttypes.EnginePiper:
		if _, err := exec.LookPath("piper"); err != nil {
			return fmt.Errorf("Piper not found: %w", err)
		}
		return nil
	case ttypes.EngineGoogle:
		if _, err := exec.LookPath("gtts-cli"); err != nil {
			return fmt.Errorf("gTTS not found: %w", err)
		}
		if _, err := exec.LookPath("ffmpeg"); err != nil {
			return fmt.Errorf("ffmpeg not found: %w", err)
		}
		return nil
	case ttypes.EngineNone:
		return nil
	default:
		return ErrInvalidEngine
	}
}
