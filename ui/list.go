package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/highlight"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	statusBarHeight = 1
	controlsHeight  = 1
	searchHeight    = 1
	columnGap       = 3
	cursorMark      = "▌ "
)

// row is one line of the phrase list.
type row struct {
	phrase  deck.Phrase
	suggest *deck.Suggestion
}

// refilter recomputes the visible phrases from the search field. When the
// filter matches nothing, fuzzy suggestions are offered instead.
func (m *model) refilter() {
	query := strings.TrimSpace(m.search.Value())
	m.results = m.app.Deck.Filter(query)
	m.suggestions = nil
	if len(m.results) == 0 && query != "" {
		m.suggestions = m.app.Deck.Suggest(query, m.cfg.Suggestions)
	}
	m.cursor = min(m.cursor, max(0, len(m.rows())-1))
	m.refreshContent()
}

func (m model) rows() []row {
	if len(m.results) > 0 {
		rows := make([]row, len(m.results))
		for i, p := range m.results {
			rows[i] = row{phrase: p}
		}
		return rows
	}
	rows := make([]row, len(m.suggestions))
	for i := range m.suggestions {
		rows[i] = row{phrase: m.suggestions[i].Phrase, suggest: &m.suggestions[i]}
	}
	return rows
}

func (m model) selected() (deck.Phrase, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return deck.Phrase{}, false
	}
	return rows[m.cursor].phrase, true
}

func (m *model) moveCursor(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(n-1, m.cursor+delta))
	m.refreshContent()
}

// layout sizes the list to whatever the other panels leave.
func (m *model) layout() {
	h := m.height - statusBarHeight - controlsHeight - searchHeight
	if m.quizOn {
		h -= lipgloss.Height(m.quizView())
	}
	if m.showHelp {
		h -= lipgloss.Height(m.helpView())
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(1, h)
	m.refreshContent()
}

func (m *model) refreshContent() {
	m.viewport.SetContent(m.listView())

	// Keep the cursor on screen.
	line := m.cursor
	if len(m.suggestions) > 0 {
		line++
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m model) listView() string {
	rows := m.rows()
	if len(rows) == 0 {
		if m.search.Value() != "" {
			return m.styles.dim.Render("  Aucune phrase ne correspond.")
		}
		return m.styles.dim.Render("  Aucune phrase.")
	}

	itWidth := 0
	for _, r := range rows {
		itWidth = max(itWidth, runewidth.StringWidth(r.phrase.IT))
	}
	avail := max(10, m.width-runewidth.StringWidth(cursorMark))
	if m.showFR {
		itWidth = min(itWidth, avail/2)
	} else {
		itWidth = avail
	}
	frWidth := max(0, avail-itWidth-columnGap)

	query := strings.TrimSpace(m.search.Value())
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = m.rowView(r, i == m.cursor, query, itWidth, frWidth)
	}
	if len(m.suggestions) > 0 {
		lines = append([]string{m.styles.dim.Render("  Vouliez-vous dire :")}, lines...)
	}
	return strings.Join(lines, "\n")
}

func (m model) rowView(r row, selected bool, query string, itWidth, frWidth int) string {
	it := truncate.StringWithTail(r.phrase.IT, uint(itWidth), ellipsis) //nolint:gosec
	fr := truncate.StringWithTail(r.phrase.FR, uint(frWidth), ellipsis) //nolint:gosec
	pad := strings.Repeat(" ", max(0, itWidth-runewidth.StringWidth(it)))

	textStyle := m.styles.text
	prefix := "  "
	if selected {
		textStyle = m.styles.cursor
		prefix = m.styles.cursor.Render(cursorMark)
	}

	// Highlight only untruncated text, offsets would not survive the cut.
	itView := textStyle.Render(it)
	frView := m.styles.french.Render(fr)
	switch {
	case r.suggest != nil && r.suggest.Side == deck.SideIT && it == r.phrase.IT:
		itView = highlight.RenderIndexes(it, r.suggest.Indexes, m.styles.fuzzyMark)
	case r.suggest != nil && r.suggest.Side == deck.SideFR && fr == r.phrase.FR:
		frView = highlight.RenderIndexes(fr, r.suggest.Indexes, m.styles.fuzzyMark)
	case r.suggest == nil && query != "":
		itView = highlight.Render(it, query, m.styles.mark)
		frView = highlight.Render(fr, query, m.styles.mark)
	}

	if !m.showFR {
		return prefix + itView
	}
	return prefix + itView + pad + strings.Repeat(" ", columnGap) + frView
}
