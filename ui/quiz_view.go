package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/quiz"
)

func (m *model) updateQuiz(key string) tea.Cmd {
	switch key {
	case "l":
		return m.speak(m.app.Quiz.ListenText())

	case "s":
		dir := m.app.Quiz.Swap()
		m.advanceSeq++
		m.question = m.app.Quiz.Question()
		m.layout()
		log.Debug("quiz direction", "dir", dir)
		return nil

	case "n":
		m.app.Quiz.Next()
		m.advanceSeq++
		m.question = m.app.Quiz.Question()
		m.layout()
		return nil
	}

	res, err := m.app.Quiz.Answer(int(key[0] - '1'))
	switch {
	case errors.Is(err, quiz.ErrAnswered), errors.Is(err, quiz.ErrChoiceRange):
		return nil
	case err != nil:
		m.question = m.app.Quiz.Question()
		m.refreshContent()
		return m.showStatusMessage("Révision non enregistrée : " + err.Error())
	}

	m.question = m.app.Quiz.Question()
	if !res.Correct {
		return nil
	}
	m.total = res.Total
	m.advanceSeq++
	return advanceCmd(m.cfg.AdvanceDelay, m.advanceSeq)
}

func (m model) quizView() string {
	s := m.styles
	q := m.question

	var b strings.Builder
	b.WriteString(s.prompt.Render(q.Prompt))
	b.WriteString("\n")

	tools := []string{
		s.button.Render("l 🔊 Écouter"),
		s.button.Render("s " + q.Direction.SwapLabel()),
		s.button.Render("n ⏭️ Passer"),
	}
	b.WriteString(strings.Join(tools, " "))
	b.WriteString("\n\n")

	for i, c := range q.Choices {
		style := s.choice
		switch c.Mark {
		case quiz.Correct:
			style = s.correct
		case quiz.Wrong:
			style = s.wrong
		}
		b.WriteString(style.Render(fmt.Sprintf("%d. %s", i+1, c.Text)))
		if i < len(q.Choices)-1 {
			b.WriteString("\n")
		}
	}

	box := s.quizBox
	if m.width > 4 {
		box = box.Width(m.width - 2)
	}
	return box.Render(b.String())
}
