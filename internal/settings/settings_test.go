package settings

import (
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/frasi/internal/store"
)

func TestSettings_Defaults(t *testing.T) {
	s := New(store.NewMemory())

	if got := s.Theme(); got != ThemeDark {
		t.Errorf("Theme() = %q, want dark", got)
	}
	if !s.ShowFR() {
		t.Error("ShowFR should default to true")
	}
	if s.Quiz() {
		t.Error("Quiz should default to false")
	}
}

func TestSettings_RoundTripAfterReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")

	st, err := store.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	s := New(st)
	if err := s.SetTheme("sepia"); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}
	if err := s.SetShowFR(false); err != nil {
		t.Fatalf("SetShowFR failed: %v", err)
	}
	if err := s.SetQuiz(true); err != nil {
		t.Fatalf("SetQuiz failed: %v", err)
	}
	_ = st.Close()

	st, err = store.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()
	s = New(st)

	if got := s.Theme(); got != "sepia" {
		t.Errorf("Theme() = %q, want the stored value verbatim", got)
	}
	if got := ThemeName(s.Theme()); got != ThemeDark {
		t.Errorf("ThemeName(sepia) = %q, want dark", got)
	}
	if s.ShowFR() {
		t.Error("ShowFR should read back false")
	}
	if !s.Quiz() {
		t.Error("Quiz should read back true")
	}
}

func TestSettings_Encoding(t *testing.T) {
	st := store.NewMemory()
	s := New(st)

	_ = s.SetShowFR(false)
	_ = s.SetQuiz(true)
	if v, _, _ := st.Get(KeyShowFR); v != "0" {
		t.Errorf("it-show-fr = %q, want 0", v)
	}
	if v, _, _ := st.Get(KeyQuiz); v != "1" {
		t.Errorf("it-quiz-enabled = %q, want 1", v)
	}

	// Only "1" is true.
	_ = st.Set(KeyShowFR, "true")
	if s.ShowFR() {
		t.Error(`"true" is not "1" and should read as false`)
	}
}

func TestSettings_Toggles(t *testing.T) {
	s := New(store.NewMemory())

	theme, err := s.ToggleTheme()
	if err != nil || theme != ThemeLight {
		t.Errorf("ToggleTheme = %q, %v; want light", theme, err)
	}
	if theme, _ = s.ToggleTheme(); theme != ThemeDark {
		t.Errorf("second ToggleTheme = %q, want dark", theme)
	}

	if show, _ := s.ToggleShowFR(); show {
		t.Error("ToggleShowFR from default should hide French")
	}
	if on, _ := s.ToggleQuiz(); !on {
		t.Error("ToggleQuiz from default should enable the quiz")
	}
}

func TestSettings_ReadErrorFallsBack(t *testing.T) {
	st := store.NewMemory()
	s := New(st)
	_ = s.SetQuiz(true)
	_ = st.Close()

	if s.Quiz() {
		t.Error("A failing store should fall back to the default")
	}
	if s.Theme() != ThemeDark {
		t.Error("A failing store should fall back to dark")
	}
}

func TestLabels(t *testing.T) {
	tests := []struct{ got, want string }{
		{ThemeLabel(ThemeDark), "☀️ Mode clair"},
		{ThemeLabel(ThemeLight), "🌙 Mode sombre"},
		{FRLabel(true), "Masquer FR"},
		{FRLabel(false), "Afficher FR"},
		{QuizLabel(true), "🎯 Quitter le quiz"},
		{QuizLabel(false), "🎯 Mode Quiz"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("label = %q, want %q", tt.got, tt.want)
		}
	}
}
