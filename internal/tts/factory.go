package tts

import (
	"fmt"

	"github.com/dgnsrekt/frasi/internal/tts/engines"
	"github.com/dgnsrekt/frasi/internal/ttypes"
	"github.com/dgnsrekt/frasi/utils"
)

// fallbackAfter is the number of consecutive failures before the fallback
// engine takes over.
const fallbackAfter = 2

// NewEngine builds the configured engine, wrapped with the fallback engine
// when one is set. EngineNone yields a nil engine and no error.
func NewEngine(config Config) (ttypes.TTSEngine, error) {
	config = config.Normalize()

	primary, err := newSingleEngine(config.Engine, config, 0)
	if err != nil || primary == nil {
		return primary, err
	}
	if config.Fallback == "" || config.Fallback == ttypes.EngineNone || config.Fallback == config.Engine {
		return primary, nil
	}

	secondary, err := newSingleEngine(config.Fallback, config, primary.GetInfo().SampleRate)
	if err != nil {
		_ = primary.Close()
		return nil, fmt.Errorf("fallback engine: %w", err)
	}
	return engines.NewFallbackEngine(primary, secondary, fallbackAfter), nil
}

// newSingleEngine creates one engine. A non-zero sampleRate forces the gTTS
// conversion to match a primary engine.
func newSingleEngine(engine ttypes.EngineType, config Config, sampleRate int) (ttypes.TTSEngine, error) {
	switch engine {
	case ttypes.EngineNone, "":
		return nil, nil
	case ttypes.EnginePiper:
		e, err := engines.NewPiperEngine(engines.PiperConfig{
			Binary:     config.Piper.Binary,
			ModelPath:  utils.ExpandPath(config.Piper.ModelPath),
			ConfigPath: utils.ExpandPath(config.Piper.ConfigPath),
			Speaker:    config.Piper.Speaker,
		})
		if err != nil {
			return nil, NewTTSError(ErrorCodeEngineUnavailable, "piper", "cannot create engine", err)
		}
		return e, nil
	case ttypes.EngineGoogle:
		e, err := engines.NewGTTSEngine(engines.GTTSConfig{
			Language:          config.GTTS.Language,
			Slow:              config.GTTS.Slow,
			SampleRate:        sampleRate,
			RequestsPerMinute: config.GTTS.RequestsPerMinute,
		})
		if err != nil {
			return nil, NewTTSError(ErrorCodeEngineUnavailable, "gtts", "cannot create engine", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEngine, engine)
	}
}
