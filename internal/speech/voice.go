// Package speech speaks Italian phrases. It picks a voice, holds playback
// until audio is unlocked according to a strategy, and counts a revision for
// every phrase it accepts.
package speech

import (
	"regexp"

	"github.com/dgnsrekt/frasi/internal/ttypes"
)

// Voice is a voice offered by a backend.
type Voice = ttypes.Voice

// FallbackLang is the utterance language when no voice is known.
const FallbackLang = "it-IT"

var (
	italianLang = regexp.MustCompile(`(?i)it-|Italian`)
	italianName = regexp.MustCompile(`(?i)Italian`)
)

// PickVoice returns the first Italian voice, else the first voice, else nil.
func PickVoice(voices []Voice) *Voice {
	for i := range voices {
		if italianLang.MatchString(voices[i].Lang) || italianName.MatchString(voices[i].Name) {
			v := voices[i]
			return &v
		}
	}
	if len(voices) > 0 {
		v := voices[0]
		return &v
	}
	return nil
}

// LangOf returns the language an utterance spoken with v carries.
func LangOf(v *Voice) string {
	if v == nil || v.Lang == "" {
		return FallbackLang
	}
	return v.Lang
}
