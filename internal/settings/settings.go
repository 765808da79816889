// Package settings reads and writes the user's display preferences: theme,
// French visibility and quiz mode.
package settings

import (
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/store"
)

// Storage keys.
const (
	KeyTheme  = "it-theme"
	KeyShowFR = "it-show-fr"
	KeyQuiz   = "it-quiz-enabled"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Settings is a view over a store. It holds no state of its own, so two
// Settings over the same store always agree.
type Settings struct {
	store store.Store
}

// New returns the settings kept in s.
func New(s store.Store) *Settings {
	return &Settings{store: s}
}

// ThemeName normalizes a stored theme for rendering: "light" stays light,
// anything else is dark.
func ThemeName(v string) string {
	if v == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (s *Settings) get(key, def string) string {
	v, ok, err := s.store.Get(key)
	if err != nil {
		log.Warn("cannot read setting", "key", key, "error", err)
		return def
	}
	if !ok {
		return def
	}
	return v
}

func encodeBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// Theme returns the stored theme, "dark" when unset. The value is returned
// as stored; use ThemeName to render it.
func (s *Settings) Theme() string {
	v := s.get(KeyTheme, ThemeDark)
	if v == "" {
		return ThemeDark
	}
	return v
}

// SetTheme persists the theme.
func (s *Settings) SetTheme(v string) error {
	return s.store.Set(KeyTheme, v)
}

// ToggleTheme switches between dark and light and returns the new theme.
func (s *Settings) ToggleTheme() (string, error) {
	next := ThemeLight
	if s.Theme() != ThemeDark {
		next = ThemeDark
	}
	return next, s.SetTheme(next)
}

// ShowFR reports whether French translations are shown. Default true.
func (s *Settings) ShowFR() bool {
	return s.get(KeyShowFR, "1") == "1"
}

// SetShowFR persists French visibility.
func (s *Settings) SetShowFR(v bool) error {
	return s.store.Set(KeyShowFR, encodeBool(v))
}

// ToggleShowFR flips French visibility and returns the new value.
func (s *Settings) ToggleShowFR() (bool, error) {
	next := !s.ShowFR()
	return next, s.SetShowFR(next)
}

// Quiz reports whether quiz mode is on. Default false.
func (s *Settings) Quiz() bool {
	return s.get(KeyQuiz, "0") == "1"
}

// SetQuiz persists quiz mode.
func (s *Settings) SetQuiz(v bool) error {
	return s.store.Set(KeyQuiz, encodeBool(v))
}

// ToggleQuiz flips quiz mode and returns the new value.
func (s *Settings) ToggleQuiz() (bool, error) {
	next := !s.Quiz()
	return next, s.SetQuiz(next)
}

// ThemeLabel names the action the theme toggle performs.
func ThemeLabel(theme string) string {
	if theme == ThemeDark {
		return "☀️ Mode clair"
	}
	return "🌙 Mode sombre"
}

// FRLabel names the action the French toggle performs.
func FRLabel(show bool) string {
	if show {
		return "Masquer FR"
	}
	return "Afficher FR"
}

// QuizLabel names the action the quiz toggle performs.
func QuizLabel(on bool) string {
	if on {
		return "🎯 Quitter le quiz"
	}
	return "🎯 Mode Quiz"
}
