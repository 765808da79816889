// Package ui provides the terminal interface of frasi: the phrase list, the
// controls bar and the quiz panel.
package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/quiz"
	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/dgnsrekt/frasi/internal/settings"
	"github.com/dgnsrekt/frasi/internal/speech"
	"github.com/dgnsrekt/frasi/internal/store"
	"github.com/muesli/termenv"
)

const (
	keyEsc   = "esc"
	ellipsis = "…"

	searchPlaceholder = "Filtrer (italien ou français)..."
)

// App bundles what the interface drives.
type App struct {
	Deck     *deck.Deck
	Settings *settings.Settings
	Counter  *revision.Counter
	Speaker  *speech.Speaker
	Quiz     *quiz.Host

	// Watcher, when set, reports writes made by other processes.
	Watcher store.Watcher
}

// NewProgram returns a new Tea program. Watching the store stops when ctx
// is done.
func NewProgram(ctx context.Context, cfg Config, app App) *tea.Program {
	log.Debug("starting frasi", "page", app.Deck.Page, "phrases", app.Deck.Len(), "strategy", app.Speaker.Strategy())

	m := newModel(ctx, cfg, app)
	if app.Watcher != nil {
		ch := make(chan struct{}, 1)
		m.changes = ch
		go func() {
			defer close(ch)
			err := app.Watcher.Watch(ctx, func() {
				select {
				case ch <- struct{}{}:
				default:
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("store watch stopped", "err", err)
			}
		}()
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(m, opts...)
}

type focus int

const (
	focusList focus = iota
	focusSearch
)

type model struct {
	ctx      context.Context
	cfg      Config
	app      App
	width    int
	height   int
	fatalErr error

	styles styles
	theme  string
	showFR bool
	quizOn bool
	total  int
	badge  speech.Status

	search      textinput.Model
	focus       focus
	results     []deck.Phrase
	suggestions []deck.Suggestion
	cursor      int
	viewport    viewport.Model
	showHelp    bool

	spinner  spinner.Model
	speaking int
	gestured bool

	question   quiz.Question
	advanceSeq int

	statusMessage string
	statusSeq     int

	changes <-chan struct{}
}

func newModel(ctx context.Context, cfg Config, app App) model {
	ti := textinput.New()
	ti.Placeholder = searchPlaceholder
	ti.Prompt = "/ "
	ti.CharLimit = 80

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := model{
		ctx:      ctx,
		cfg:      cfg,
		app:      app,
		search:   ti,
		spinner:  sp,
		viewport: viewport.New(0, 0),
		badge:    app.Speaker.Status(),
	}
	m.loadSettings()
	m.refreshTotal()
	m.refilter()
	if m.quizOn {
		m.question = app.Quiz.Question()
	}
	return m
}

// loadSettings reads theme, French visibility and quiz mode from storage.
func (m *model) loadSettings() {
	m.theme = m.app.Settings.Theme()
	m.styles = newStyles(m.theme)
	m.spinner.Style = m.styles.spinner
	m.search.PromptStyle = m.styles.dim
	m.search.PlaceholderStyle = m.styles.subtle
	m.showFR = m.app.Settings.ShowFR()
	m.quizOn = m.app.Settings.Quiz()
}

func (m *model) refreshTotal() {
	total, err := m.app.Counter.Total()
	if err != nil {
		log.Warn("failed to read revisions", "err", err)
		return
	}
	m.total = total
}

func (m model) Init() tea.Cmd {
	texts := make([]string, 0, m.app.Deck.Len())
	for _, p := range m.app.Deck.Phrases {
		texts = append(texts, p.IT)
	}
	m.app.Speaker.Start(m.ctx, texts)

	return tea.Batch(
		waitForStoreChange(m.changes),
		func() tea.Msg { return gestureDoneMsg{} },
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.focus == focusSearch {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(10, msg.Width-4)
		m.layout()

	case QuizToggledMsg:
		m.quizOn = msg.Enabled
		if m.quizOn {
			m.question = m.app.Quiz.Question()
		}
		log.Debug("quiz toggled", "enabled", msg.Enabled)
		m.layout()

	case speechDoneMsg:
		m.speaking = max(0, m.speaking-1)
		m.badge = m.app.Speaker.Status()
		m.refreshTotal()
		if errors.Is(msg.err, speech.ErrLocked) {
			cmds = append(cmds, m.showStatusMessage(speech.BadgeLocked))
		}

	case gestureDoneMsg:
		m.badge = m.app.Speaker.Status()
		m.refreshTotal()
		if msg.err != nil && !m.app.Speaker.Ready() {
			log.Debug("audio unlock failed", "err", msg.err)
			m.gestured = false
		}

	case advanceMsg:
		if msg.seq == m.advanceSeq && m.question.Answered {
			m.app.Quiz.Next()
			m.question = m.app.Quiz.Question()
			m.layout()
		}

	case storeChangedMsg:
		cmds = append(cmds, m.storeChanged(), waitForStoreChange(m.changes))

	case statusMessageTimeoutMsg:
		if msg.seq == m.statusSeq {
			m.statusMessage = ""
		}

	case spinner.TickMsg:
		if m.speaking > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case editorFinishedMsg:
		if msg.err != nil {
			log.Error("editor failed", "err", msg.err)
			cmds = append(cmds, m.showStatusMessage("Éditeur : "+msg.err.Error()))
			break
		}
		cmds = append(cmds, reloadDeck(m.ctx, m.cfg.Path))

	case deckReloadedMsg:
		if msg.err != nil {
			log.Error("unable to reload deck", "err", msg.err)
			cmds = append(cmds, m.showStatusMessage("Impossible de charger "+m.cfg.Path))
			break
		}
		cmds = append(cmds, m.setDeck(msg.deck))

	case errMsg:
		m.fatalErr = msg.err
	}

	return m, tea.Batch(cmds...)
}

func (m model) quit() tea.Cmd {
	m.app.Speaker.Close()
	return tea.Quit
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusList
		m.refilter()
		return m, nil
	case "enter", "tab", "up", "down":
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.cursor = 0
		m.refilter()
	}
	return m, cmd
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch key := msg.String(); key {
	case "q":
		return m, m.quit()

	case "ctrl+z":
		return m, tea.Suspend

	case "/":
		m.focus = focusSearch
		return m, m.search.Focus()

	case keyEsc:
		if m.showHelp {
			m.showHelp = false
			m.layout()
		} else if m.search.Value() != "" {
			m.search.SetValue("")
			m.refilter()
		}

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup", "ctrl+u":
		m.moveCursor(-max(1, m.viewport.Height))
	case "pgdown", "ctrl+d":
		m.moveCursor(max(1, m.viewport.Height))
	case "home", "g":
		m.moveCursor(-len(m.rows()))
	case "end", "G":
		m.moveCursor(len(m.rows()))

	case "enter":
		if p, ok := m.selected(); ok {
			cmds = append(cmds, m.speak(p.IT))
		} else {
			cmds = append(cmds, m.gesture())
		}

	case " ":
		cmds = append(cmds, m.gesture())

	case "y":
		if p, ok := m.selected(); ok {
			cmds = append(cmds, m.copy(p))
		}

	case "t":
		theme, err := m.app.Settings.ToggleTheme()
		if err != nil {
			return m, m.showStatusMessage("Erreur : " + err.Error())
		}
		m.theme = theme
		m.styles = newStyles(theme)
		m.spinner.Style = m.styles.spinner
		m.refreshContent()

	case "f":
		show, err := m.app.Settings.ToggleShowFR()
		if err != nil {
			return m, m.showStatusMessage("Erreur : " + err.Error())
		}
		m.showFR = show
		m.refreshContent()

	case "z":
		on, err := m.app.Settings.ToggleQuiz()
		if err != nil {
			return m, m.showStatusMessage("Erreur : " + err.Error())
		}
		return m, toggledCmd(on)

	case "e":
		if m.cfg.Path != "" && !deck.IsURL(m.cfg.Path) {
			return m, openEditor(m.cfg.Path)
		}

	case "?":
		m.showHelp = !m.showHelp
		m.layout()

	case "l", "s", "n", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.quizOn {
			cmds = append(cmds, m.updateQuiz(key))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.moveCursor(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.moveCursor(1)
	case msg.Action == tea.MouseActionPress:
		return *m, m.gesture()
	}
	return *m, nil
}

// gesture unlocks audio on the first key press or click.
func (m *model) gesture() tea.Cmd {
	if m.gestured {
		return nil
	}
	m.gestured = true
	return gestureCmd(m.ctx, m.app.Speaker)
}

// speak speaks text, unlocking audio first if this is the first gesture.
func (m *model) speak(text string) tea.Cmd {
	var spin tea.Cmd
	if m.speaking == 0 {
		spin = m.spinner.Tick
	}
	m.speaking++

	say := speakCmd(m.ctx, m.app.Speaker, text)
	if g := m.gesture(); g != nil {
		return tea.Batch(spin, tea.Sequence(g, say))
	}
	return tea.Batch(spin, say)
}

func (m *model) copy(p deck.Phrase) tea.Cmd {
	if m.cfg.OSC52 {
		termenv.Copy(p.IT)
	}
	if err := clipboard.WriteAll(p.IT); err != nil {
		log.Debug("system clipboard unavailable", "err", err)
	}
	return m.showStatusMessage(fmt.Sprintf("Copié : %s", p.IT))
}

// storeChanged picks up settings and counters written elsewhere.
func (m *model) storeChanged() tea.Cmd {
	wasQuiz := m.quizOn
	m.loadSettings()
	m.refreshTotal()
	m.refreshContent()
	if m.quizOn != wasQuiz {
		m.quizOn = wasQuiz
		return toggledCmd(!wasQuiz)
	}
	return nil
}

func (m *model) setDeck(d *deck.Deck) tea.Cmd {
	host, err := quiz.New(d.Phrases, quiz.WithRecorder(m.app.Counter), quiz.WithDirection(m.app.Quiz.Direction()))
	if err != nil {
		return m.showStatusMessage("Erreur : " + err.Error())
	}
	m.app.Deck = d
	m.app.Quiz = host
	m.advanceSeq++
	if m.quizOn {
		m.question = host.Question()
	}
	m.refilter()
	m.layout()
	return m.showStatusMessage(fmt.Sprintf("%d phrases rechargées", d.Len()))
}

// showStatusMessage shows msg in the status bar for a while.
func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	m.statusSeq++
	return statusMessageTimeoutCmd(m.cfg.StatusTimeout, m.statusSeq)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.styles, m.fatalErr)
	}

	var b strings.Builder
	b.WriteString(m.controlsView())
	b.WriteString("\n")
	if m.quizOn {
		b.WriteString(m.quizView())
		b.WriteString("\n")
	}
	b.WriteString(m.search.View())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(m.helpView())
		b.WriteString("\n")
	}
	b.WriteString(m.statusBarView())
	return b.String()
}

func errorView(s styles, err error) string {
	msg := fmt.Sprintf("%s\n\n%v\n\n%s",
		s.errorTitle.Render("ERREUR"),
		err,
		s.subtle.Render("appuyez sur une touche pour quitter"),
	)
	return "\n" + indent(msg, 3)
}

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(s, "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
