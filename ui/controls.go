package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/dgnsrekt/frasi/internal/settings"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func (m model) controlsView() string {
	s := m.styles

	quiz := s.button
	if m.quizOn {
		quiz = s.buttonOn
	}
	badge := s.badge
	if m.badge.Warn() {
		badge = s.badgeWarn
	}

	parts := []string{
		s.button.Render("t " + settings.ThemeLabel(m.theme)),
		s.button.Render("f " + settings.FRLabel(m.showFR)),
		quiz.Render("z " + settings.QuizLabel(m.quizOn)),
		badge.Render(m.badge.Label),
		s.dim.Render(revision.Label(m.total)),
	}
	if m.speaking > 0 {
		parts = append(parts, m.spinner.View())
	}
	return truncate.StringWithTail(strings.Join(parts, " "), uint(max(0, m.width)), ellipsis) //nolint:gosec
}

func (m model) statusBarView() string {
	s := m.styles
	bar := s.statusBar
	if m.statusMessage != "" {
		bar = s.statusMsg
	}

	logo := bar.Bold(true).Render(" frasi ")
	help := bar.Render(" ? Aide ")

	var note string
	if m.statusMessage != "" {
		note = m.statusMessage
	} else {
		note = fmt.Sprintf("%s · %d phrases", m.app.Deck.Page, m.app.Deck.Len())
		if q := strings.TrimSpace(m.search.Value()); q != "" {
			note += fmt.Sprintf(" · %d résultats", len(m.results))
		}
		if m.cfg.Engine != "" {
			note += " · " + m.cfg.Engine
		}
		if n := m.app.Speaker.Pending(); n > 0 {
			note += fmt.Sprintf(" · %d en attente", n)
		}
	}
	room := max(0, m.width-ansi.PrintableRuneWidth(logo)-ansi.PrintableRuneWidth(help))
	note = truncate.StringWithTail(" "+note+" ", uint(room), ellipsis) //nolint:gosec
	padding := strings.Repeat(" ", max(0, room-ansi.PrintableRuneWidth(note)))

	return logo + bar.Render(note+padding) + help
}

func (m model) helpView() string {
	s := "\n"
	s += "k/↑      haut                 enter    écouter la phrase\n"
	s += "j/↓      bas                  espace   activer l'audio\n"
	s += "ctrl+u   page précédente      y        copier l'italien\n"
	s += "ctrl+d   page suivante        e        éditer le paquet\n"
	s += "g/home   début                t        thème\n"
	s += "G/end    fin                  f        afficher/masquer FR\n"
	s += "/        filtrer              z        mode quiz\n"
	s += "esc      effacer le filtre    q        quitter\n"
	if m.quizOn {
		s += "\n"
		s += "1-9      répondre             l        écouter la question\n"
		s += "s        inverser le sens     n        passer\n"
	}
	s = indent(s, 2)

	// Fill up empty cells with spaces for background coloring
	if m.width > 0 {
		lines := strings.Split(s, "\n")
		for i := range lines {
			lines[i] += strings.Repeat(" ", max(m.width-runewidth.StringWidth(lines[i]), 0))
		}
		s = strings.Join(lines, "\n")
	}
	return lipgloss.NewStyle().Foreground(m.styles.dim.GetForeground()).Render(s)
}
