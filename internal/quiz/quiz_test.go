package quiz

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/dgnsrekt/frasi/internal/deck"
	"github.com/dgnsrekt/frasi/internal/revision"
	"github.com/dgnsrekt/frasi/internal/store"
)

var phrases = []deck.Phrase{
	{IT: "uno", FR: "un"},
	{IT: "due", FR: "deux"},
	{IT: "tre", FR: "trois"},
	{IT: "quattro", FR: "quatre"},
	{IT: "cinque", FR: "cinq"},
	{IT: "sei", FR: "six"},
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type countingRecorder struct {
	total int
	calls []int
	err   error
}

func (r *countingRecorder) Inc(n int) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.calls = append(r.calls, n)
	r.total += n
	return r.total, nil
}

func TestBuildChoices_Properties(t *testing.T) {
	rng := seeded(1)
	for size := 1; size <= 9; size++ {
		for n := 1; n <= 6; n++ {
			for trial := 0; trial < 50; trial++ {
				correct := rng.IntN(size)
				got := BuildChoices(size, correct, n, rng)

				want := min(n, size)
				if len(got) != want {
					t.Fatalf("size %d n %d: got %d choices, want %d", size, n, len(got), want)
				}
				seen := map[int]bool{}
				hits := 0
				for _, c := range got {
					if c < 0 || c >= size {
						t.Fatalf("choice %d outside pool of %d", c, size)
					}
					if seen[c] {
						t.Fatalf("duplicate choice %d in %v", c, got)
					}
					seen[c] = true
					if c == correct {
						hits++
					}
				}
				if hits != 1 {
					t.Fatalf("correct answer appears %d times in %v", hits, got)
				}
			}
		}
	}
}

func TestBuildChoices_Shuffled(t *testing.T) {
	rng := seeded(7)
	positions := map[int]int{}
	for range 400 {
		got := BuildChoices(10, 3, 4, rng)
		for i, c := range got {
			if c == 3 {
				positions[i]++
			}
		}
	}
	for i := range 4 {
		if positions[i] == 0 {
			t.Errorf("correct answer never landed at position %d: %v", i, positions)
		}
	}
}

func TestBuildChoices_Invalid(t *testing.T) {
	rng := seeded(1)
	if got := BuildChoices(0, 0, 4, rng); got != nil {
		t.Errorf("expected nil for an empty pool, got %v", got)
	}
	if got := BuildChoices(3, 5, 4, rng); got != nil {
		t.Errorf("expected nil for an out of range answer, got %v", got)
	}
}

func TestNew_EmptyPool(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoPhrases) {
		t.Errorf("expected ErrNoPhrases, got %v", err)
	}
}

func TestPrompt(t *testing.T) {
	p := deck.Phrase{IT: "Ciao", FR: "Salut"}
	if got := Prompt(AskFR, p); got != "Traduire en italien : « Salut »" {
		t.Errorf("AskFR prompt = %q", got)
	}
	if got := Prompt(AskIT, p); got != "Traduire en français : « Ciao »" {
		t.Errorf("AskIT prompt = %q", got)
	}
}

func correctIndex(q Question) int {
	for i, c := range q.Choices {
		if c.Index == q.Index {
			return i
		}
	}
	return -1
}

func TestHost_QuestionIsStableUntilNext(t *testing.T) {
	h, err := New(phrases, WithRand(seeded(3)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	q1 := h.Question()
	q2 := h.Question()
	if q1.Index != q2.Index || len(q1.Choices) != DefaultChoices {
		t.Fatalf("question changed between draws: %+v / %+v", q1, q2)
	}
	for i := range q1.Choices {
		if q1.Choices[i] != q2.Choices[i] {
			t.Fatalf("choices rebuilt between draws: %v / %v", q1.Choices, q2.Choices)
		}
	}
	if q1.Direction != AskFR || !strings.Contains(q1.Prompt, q1.Phrase.FR) {
		t.Errorf("default direction should ask the French side: %+v", q1)
	}
	for _, c := range q1.Choices {
		if c.Text != phrases[c.Index].IT {
			t.Errorf("AskFR choices should be Italian, got %q", c.Text)
		}
	}
	if h.ListenText() != q1.Phrase.IT {
		t.Errorf("ListenText = %q, want %q", h.ListenText(), q1.Phrase.IT)
	}
}

func TestHost_Answer(t *testing.T) {
	rec := &countingRecorder{}
	h, _ := New(phrases, WithRand(seeded(5)), WithRecorder(rec))

	q := h.Question()
	right := correctIndex(q)
	wrong := (right + 1) % len(q.Choices)

	res, err := h.Answer(wrong)
	if err != nil || res.Correct {
		t.Fatalf("wrong answer: res %+v err %v", res, err)
	}
	if got := h.Question().Choices[wrong].Mark; got != Wrong {
		t.Errorf("wrong choice mark = %v, want Wrong", got)
	}
	if len(rec.calls) != 0 {
		t.Errorf("wrong answer must not count revisions: %v", rec.calls)
	}

	res, err = h.Answer(right)
	if err != nil || !res.Correct || res.Total != CorrectPoints {
		t.Fatalf("right answer: res %+v err %v", res, err)
	}
	after := h.Question()
	if !after.Answered || after.Choices[right].Mark != Correct {
		t.Errorf("question should be locked and marked: %+v", after)
	}

	if _, err := h.Answer(right); !errors.Is(err, ErrAnswered) {
		t.Errorf("expected ErrAnswered, got %v", err)
	}
	if rec.total != CorrectPoints {
		t.Errorf("total = %d, want %d", rec.total, CorrectPoints)
	}

	h.Next()
	if h.Question().Answered {
		t.Error("Next should draw an unanswered question")
	}
}

func TestHost_AnswerOutOfRange(t *testing.T) {
	h, _ := New(phrases, WithRand(seeded(1)))
	for _, i := range []int{-1, DefaultChoices} {
		if _, err := h.Answer(i); !errors.Is(err, ErrChoiceRange) {
			t.Errorf("Answer(%d): expected ErrChoiceRange, got %v", i, err)
		}
	}
}

func TestHost_RecorderError(t *testing.T) {
	boom := errors.New("disk full")
	h, _ := New(phrases, WithRand(seeded(2)), WithRecorder(&countingRecorder{err: boom}))

	res, err := h.Answer(correctIndex(h.Question()))
	if !errors.Is(err, boom) || !res.Correct {
		t.Errorf("expected a correct result with the recorder error, got %+v %v", res, err)
	}
	if !h.Question().Answered {
		t.Error("question should stay locked after a recorder failure")
	}
}

func TestHost_Swap(t *testing.T) {
	h, _ := New(phrases, WithRand(seeded(9)))
	if h.Direction().SwapLabel() != "Question en IT" {
		t.Errorf("unexpected label %q", h.Direction().SwapLabel())
	}

	if d := h.Swap(); d != AskIT {
		t.Fatalf("Swap = %v, want AskIT", d)
	}
	q := h.Question()
	if q.Direction != AskIT || !strings.HasPrefix(q.Prompt, "Traduire en français") {
		t.Errorf("unexpected swapped question %+v", q)
	}
	for _, c := range q.Choices {
		if c.Text != phrases[c.Index].FR {
			t.Errorf("AskIT choices should be French, got %q", c.Text)
		}
	}
	if h.Direction().SwapLabel() != "Question en FR" {
		t.Errorf("unexpected label %q", h.Direction().SwapLabel())
	}
}

func TestHost_SmallPool(t *testing.T) {
	h, _ := New(phrases[:2], WithRand(seeded(4)))
	if n := len(h.Question().Choices); n != 2 {
		t.Errorf("expected every member of a small pool, got %d", n)
	}

	h, _ = New(phrases, WithChoices(6), WithRand(seeded(4)))
	if n := len(h.Question().Choices); n != 6 {
		t.Errorf("WithChoices(6) gave %d choices", n)
	}
}

func TestHost_DrawsEveryPhrase(t *testing.T) {
	h, _ := New(phrases, WithRand(seeded(11)))
	seen := map[int]bool{}
	for range 300 {
		seen[h.Question().Index] = true
		h.Next()
	}
	if len(seen) != len(phrases) {
		t.Errorf("uniform draw missed phrases: %v", seen)
	}
}

func TestHost_RevisionCounter(t *testing.T) {
	counter := revision.New(store.NewMemory(), "numeri")
	h, _ := New(phrases, WithRand(seeded(6)), WithRecorder(counter))

	for range 3 {
		if _, err := h.Answer(correctIndex(h.Question())); err != nil {
			t.Fatalf("Answer failed: %v", err)
		}
		h.Next()
	}
	if total, err := counter.Total(); err != nil || total != 3*CorrectPoints {
		t.Errorf("Total = %d, %v, want %d", total, err, 3*CorrectPoints)
	}
	if page, err := counter.Page("numeri"); err != nil || page != 3*CorrectPoints {
		t.Errorf("Page = %d, %v, want %d", page, err, 3*CorrectPoints)
	}
}
