package tts

import (
	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// Default speech parameters for Italian phrases.
const (
	DefaultLanguage = "it"
	DefaultRate     = 0.98
	DefaultStrategy = "prime"
)

// Config represents the speech section of frasi.yml.
type Config struct {
	// Engine is the selected TTS engine. Empty means no speech.
	Engine ttypes.EngineType `mapstructure:"engine"`

	// Fallback is tried once Engine keeps failing. Empty disables it.
	Fallback ttypes.EngineType `mapstructure:"fallback"`

	// Language is the two letter language of the phrases.
	Language string `mapstructure:"language"`

	// Rate is the speaking rate multiplier (0.5 to 2.0).
	Rate float64 `mapstructure:"rate"`

	// Strategy selects how audio is unlocked: none, prime, queue, preload
	// or gesture.
	Strategy string `mapstructure:"strategy"`

	Piper PiperConfig `mapstructure:"piper"`
	GTTS  GTTSConfig  `mapstructure:"gtts"`
	Cache CacheConfig `mapstructure:"cache"`
}

// PiperConfig contains Piper engine configuration.
type PiperConfig struct {
	// Binary is the piper executable, looked up in PATH when relative.
	Binary string `mapstructure:"binary"`

	// ModelPath is the path to the .onnx voice model.
	ModelPath string `mapstructure:"model_path"`

	// ConfigPath is the model's JSON config, defaults to ModelPath + ".json".
	ConfigPath string `mapstructure:"config_path"`

	// Speaker is the speaker id of multi-speaker models.
	Speaker string `mapstructure:"speaker"`
}

// GTTSConfig contains gTTS configuration.
type GTTSConfig struct {
	Language          string `mapstructure:"language"`
	Slow              bool   `mapstructure:"slow"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// CacheConfig sizes the synthesized clip cache.
type CacheConfig struct {
	// Dir holds compressed clips, defaults to the user cache directory.
	Dir string `mapstructure:"dir"`

	// MaxSizeMB bounds the disk cache.
	MaxSizeMB int `mapstructure:"max_size_mb"`

	// Disabled turns caching off.
	Disabled bool `mapstructure:"disabled"`
}

// DefaultConfig returns the configuration used when frasi.yml has no speech
// section.
func DefaultConfig() Config {
	return Config{
		Language: DefaultLanguage,
		Rate:     DefaultRate,
		Strategy: DefaultStrategy,
		Piper: PiperConfig{
			Binary: "piper",
		},
		GTTS: GTTSConfig{
			Language:          DefaultLanguage,
			RequestsPerMinute: 50,
		},
		Cache: CacheConfig{
			MaxSizeMB: 100,
		},
	}
}

// Normalize fills zero values from DefaultConfig and clamps the rate.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	if c.Language == "" {
		c.Language = def.Language
	}
	if c.Rate == 0 {
		c.Rate = def.Rate
	}
	c.Rate = ClampRate(c.Rate)
	if c.Strategy == "" {
		c.Strategy = def.Strategy
	}
	if c.Piper.Binary == "" {
		c.Piper.Binary = def.Piper.Binary
	}
	if c.GTTS.Language == "" {
		c.GTTS.Language = c.Language
	}
	if c.GTTS.RequestsPerMinute <= 0 {
		c.GTTS.RequestsPerMinute = def.GTTS.RequestsPerMinute
	}
	if c.Cache.MaxSizeMB <= 0 {
		c.Cache.MaxSizeMB = def.Cache.MaxSizeMB
	}
	return c
}
