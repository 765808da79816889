package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/frasi/internal/settings"
)

// palette holds the colors of one theme.
type palette struct {
	fg, dim, subtle lipgloss.Color
	barBg, barFg    lipgloss.Color
	accent, accent2 lipgloss.Color
	mark, markFg    lipgloss.Color
	ok, warn, bad   lipgloss.Color
	cursorBg        lipgloss.Color
}

var palettes = map[string]palette{
	settings.ThemeDark: {
		fg:       "#DDDADA",
		dim:      "#777777",
		subtle:   "#4A4A4A",
		barBg:    "#242424",
		barFg:    "#7D7D7D",
		accent:   "#04B575",
		accent2:  "#EE6FF8",
		mark:     "#F1E05A",
		markFg:   "#1B1B1B",
		ok:       "#04B575",
		warn:     "#FF8800",
		bad:      "#FE5F86",
		cursorBg: "#323232",
	},
	settings.ThemeLight: {
		fg:       "#1A1A1A",
		dim:      "#8F8F8F",
		subtle:   "#C2C2C2",
		barBg:    "#E6E6E6",
		barFg:    "#656565",
		accent:   "#1C8760",
		accent2:  "#A020A8",
		mark:     "#FFE066",
		markFg:   "#1A1A1A",
		ok:       "#1C8760",
		warn:     "#C45500",
		bad:      "#D6204A",
		cursorBg: "#DCDCDC",
	},
}

type styles struct {
	text       lipgloss.Style
	dim        lipgloss.Style
	subtle     lipgloss.Style
	french     lipgloss.Style
	cursor     lipgloss.Style
	mark       lipgloss.Style
	fuzzyMark  lipgloss.Style
	button     lipgloss.Style
	buttonOn   lipgloss.Style
	badge      lipgloss.Style
	badgeWarn  lipgloss.Style
	prompt     lipgloss.Style
	choice     lipgloss.Style
	correct    lipgloss.Style
	wrong      lipgloss.Style
	quizBox    lipgloss.Style
	statusBar  lipgloss.Style
	statusMsg  lipgloss.Style
	spinner    lipgloss.Style
	errorTitle lipgloss.Style
}

func newStyles(theme string) styles {
	p := palettes[settings.ThemeName(theme)]
	return styles{
		text:       lipgloss.NewStyle().Foreground(p.fg),
		dim:        lipgloss.NewStyle().Foreground(p.dim),
		subtle:     lipgloss.NewStyle().Foreground(p.subtle),
		french:     lipgloss.NewStyle().Foreground(p.dim).Italic(true),
		cursor:     lipgloss.NewStyle().Background(p.cursorBg).Foreground(p.accent).Bold(true),
		mark:       lipgloss.NewStyle().Background(p.mark).Foreground(p.markFg),
		fuzzyMark:  lipgloss.NewStyle().Foreground(p.accent2).Underline(true),
		button:     lipgloss.NewStyle().Foreground(p.barFg).Background(p.barBg).Padding(0, 1),
		buttonOn:   lipgloss.NewStyle().Foreground(p.markFg).Background(p.accent).Padding(0, 1),
		badge:      lipgloss.NewStyle().Foreground(p.ok).Padding(0, 1),
		badgeWarn:  lipgloss.NewStyle().Foreground(p.warn).Padding(0, 1),
		prompt:     lipgloss.NewStyle().Foreground(p.fg).Bold(true),
		choice:     lipgloss.NewStyle().Foreground(p.fg).Padding(0, 1),
		correct:    lipgloss.NewStyle().Foreground(p.markFg).Background(p.ok).Padding(0, 1),
		wrong:      lipgloss.NewStyle().Foreground(p.markFg).Background(p.bad).Padding(0, 1).Strikethrough(true),
		quizBox:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1),
		statusBar:  lipgloss.NewStyle().Foreground(p.barFg).Background(p.barBg),
		statusMsg:  lipgloss.NewStyle().Foreground(lipgloss.Color("#89F0CB")).Background(lipgloss.Color("#1C8760")),
		spinner:    lipgloss.NewStyle().Foreground(p.accent2),
		errorTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFDF5")).Background(p.bad).Padding(0, 1),
	}
}
