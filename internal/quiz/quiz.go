// Package quiz runs the multiple-choice translation quiz over a deck.
package quiz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/frasi/internal/deck"
)

const (
	// DefaultChoices is the number of answers offered per question.
	DefaultChoices = 4

	// CorrectPoints is the number of revisions a correct answer is worth.
	CorrectPoints = 2
)

var (
	// ErrAnswered is returned when answering a question already solved.
	ErrAnswered = errors.New("question already answered")

	// ErrChoiceRange is returned for a choice index outside the question.
	ErrChoiceRange = errors.New("choice out of range")

	// ErrNoPhrases is returned by New for an empty pool.
	ErrNoPhrases = errors.New("quiz needs at least one phrase")
)

// Direction selects which side of a phrase is asked.
type Direction int

const (
	// AskFR shows the French phrase and offers Italian answers.
	AskFR Direction = iota
	// AskIT shows the Italian phrase and offers French answers.
	AskIT
)

func (d Direction) String() string {
	if d == AskIT {
		return "it"
	}
	return "fr"
}

// SwapLabel is the caption of the control that switches direction.
func (d Direction) SwapLabel() string {
	if d == AskIT {
		return "Question en FR"
	}
	return "Question en IT"
}

// Prompt returns the question text for p.
func Prompt(d Direction, p deck.Phrase) string {
	if d == AskIT {
		return fmt.Sprintf("Traduire en français : « %s »", p.IT)
	}
	return fmt.Sprintf("Traduire en italien : « %s »", p.FR)
}

// Recorder receives the revisions earned by correct answers.
type Recorder interface {
	Inc(n int) (int, error)
}

// Mark is the state of a choice.
type Mark int

const (
	Unmarked Mark = iota
	Correct
	Wrong
)

// Choice is one of the answers offered.
type Choice struct {
	Index int // into the pool
	Text  string
	Mark  Mark
}

// Question is a snapshot of the current question.
type Question struct {
	Phrase    deck.Phrase
	Index     int
	Direction Direction
	Prompt    string
	Choices   []Choice
	Answered  bool
}

// Result is the outcome of an answer.
type Result struct {
	Correct bool
	Total   int // revisions after the answer, when a recorder is set
}

// Option configures a Host.
type Option func(*Host)

// WithRand sets the random source.
func WithRand(rng *rand.Rand) Option {
	return func(h *Host) { h.rng = rng }
}

// WithChoices sets the number of answers per question.
func WithChoices(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.choices = n
		}
	}
}

// WithRecorder sets where correct answers are counted.
func WithRecorder(r Recorder) Option {
	return func(h *Host) { h.recorder = r }
}

// WithDirection sets the initial direction.
func WithDirection(d Direction) Option {
	return func(h *Host) { h.dir = d }
}

// Host holds the quiz state. It is safe for concurrent use.
type Host struct {
	items    []deck.Phrase
	rng      *rand.Rand
	choices  int
	recorder Recorder

	mu  sync.Mutex
	dir Direction
	cur *Question
}

// New returns a host over items.
func New(items []deck.Phrase, opts ...Option) (*Host, error) {
	if len(items) == 0 {
		return nil, ErrNoPhrases
	}
	h := &Host{
		items:   append([]deck.Phrase(nil), items...),
		choices: DefaultChoices,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return h, nil
}

// Len returns the pool size.
func (h *Host) Len() int {
	return len(h.items)
}

// Direction returns the current direction.
func (h *Host) Direction() Direction {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dir
}

// Question returns the current question, drawing a new one when none is
// active.
func (h *Host) Question() Question {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentLocked().clone()
}

func (h *Host) currentLocked() *Question {
	if h.cur != nil {
		return h.cur
	}

	idx := h.rng.IntN(len(h.items))
	p := h.items[idx]
	q := &Question{
		Phrase:    p,
		Index:     idx,
		Direction: h.dir,
		Prompt:    Prompt(h.dir, p),
	}
	for _, i := range BuildChoices(len(h.items), idx, h.choices, h.rng) {
		c := Choice{Index: i, Text: h.items[i].IT}
		if h.dir == AskIT {
			c.Text = h.items[i].FR
		}
		q.Choices = append(q.Choices, c)
	}
	h.cur = q
	log.Debug("quiz question", "index", idx, "direction", h.dir, "choices", len(q.Choices))
	return q
}

func (q *Question) clone() Question {
	c := *q
	c.Choices = append([]Choice(nil), q.Choices...)
	return c
}

// Answer picks choice i of the current question. A correct answer records
// CorrectPoints revisions and locks the question until Next. A wrong answer
// is marked and may be followed by another try.
func (h *Host) Answer(i int) (Result, error) {
	h.mu.Lock()
	q := h.currentLocked()
	if q.Answered {
		h.mu.Unlock()
		return Result{}, ErrAnswered
	}
	if i < 0 || i >= len(q.Choices) {
		h.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %d of %d", ErrChoiceRange, i+1, len(q.Choices))
	}

	if q.Choices[i].Index != q.Index {
		q.Choices[i].Mark = Wrong
		h.mu.Unlock()
		return Result{}, nil
	}
	q.Choices[i].Mark = Correct
	q.Answered = true
	h.mu.Unlock()

	res := Result{Correct: true}
	if h.recorder == nil {
		return res, nil
	}
	total, err := h.recorder.Inc(CorrectPoints)
	if err != nil {
		log.Warn("failed to record quiz revision", "err", err)
		return res, err
	}
	res.Total = total
	return res, nil
}

// Swap flips the direction and drops the current question.
func (h *Host) Swap() Direction {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dir == AskFR {
		h.dir = AskIT
	} else {
		h.dir = AskFR
	}
	h.cur = nil
	return h.dir
}

// Next drops the current question, answered or not.
func (h *Host) Next() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = nil
}

// ListenText returns the Italian text of the current question.
func (h *Host) ListenText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentLocked().Phrase.IT
}

// BuildChoices returns the correct index and up to n-1 distinct other indices
// of a pool of the given size, in random order.
func BuildChoices(size, correct, n int, rng *rand.Rand) []int {
	if size <= 0 || correct < 0 || correct >= size || n <= 0 {
		return nil
	}

	others := make([]int, 0, size-1)
	for i := range size {
		if i != correct {
			others = append(others, i)
		}
	}

	out := []int{correct}
	for len(out) < n && len(others) > 0 {
		j := rng.IntN(len(others))
		out = append(out, others[j])
		others[j] = others[len(others)-1]
		others = others[:len(others)-1]
	}

	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
