package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	EnableMouse bool

	// Deck file, for reloading after an edit. Empty for URLs and the
	// embedded deck.
	Path string

	// Engine names the TTS engine in the status bar.
	Engine string

	// Number of fuzzy suggestions shown when the filter matches nothing.
	Suggestions int `env:"FRASI_SUGGESTIONS" envDefault:"5"`

	// Delay before the next question after a correct answer.
	AdvanceDelay time.Duration `env:"FRASI_QUIZ_DELAY" envDefault:"500ms"`

	// How long status bar messages stay up.
	StatusTimeout time.Duration `env:"FRASI_STATUS_TIMEOUT" envDefault:"3s"`

	// Copy through OSC 52 as well as the system clipboard.
	OSC52 bool `env:"FRASI_OSC52" envDefault:"true"`
}
