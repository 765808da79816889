// Package highlight marks the occurrences of a search query in phrases.
package highlight

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
)

type span struct{ start, end int }

// matches returns the byte spans of text matching query under full Unicode
// case folding, the comparison the deck filter uses. A match that covers
// part of a rune which folds to several (ß to ss) spans the whole rune.
func matches(text, query string) []span {
	c := cases.Fold()
	q := c.String(query)
	if q == "" || text == "" {
		return nil
	}

	var folded strings.Builder
	owner := make([]int, 0, len(text)) // source rune offset of each folded byte
	for i, r := range text {
		f := c.String(string(r))
		folded.WriteString(f)
		for range len(f) {
			owner = append(owner, i)
		}
	}
	ft := folded.String()

	var out []span
	for from := 0; from < len(ft); {
		k := strings.Index(ft[from:], q)
		if k < 0 {
			break
		}
		first, last := owner[from+k], owner[from+k+len(q)-1]
		_, size := utf8.DecodeRuneInString(text[last:])
		from += k + len(q)
		if n := len(out); n > 0 && first < out[n-1].end {
			continue
		}
		out = append(out, span{first, last + size})
	}
	return out
}

// Wrap surrounds every caseless occurrence of query in text with
// open and close. The matched text keeps its casing. An empty query returns
// text unchanged.
func Wrap(text, query, open, close string) string {
	return Apply(text, query, func(m string) string {
		return open + m + close
	})
}

// Mark wraps matches in <mark> tags.
func Mark(text, query string) string {
	return Wrap(text, query, "<mark>", "</mark>")
}

// Render styles matches for the terminal.
func Render(text, query string, style lipgloss.Style) string {
	return Apply(text, query, func(m string) string {
		return style.Render(m)
	})
}

// Piece is a run of text, either a match or the text between two.
type Piece struct {
	Text  string
	Match bool
}

// Split cuts text into alternating runs of unmatched and matched text.
// Joining the pieces gives back text.
func Split(text, query string) []Piece {
	spans := matches(text, query)
	if len(spans) == 0 {
		if text == "" {
			return nil
		}
		return []Piece{{Text: text}}
	}
	out := make([]Piece, 0, 2*len(spans)+1)
	prev := 0
	for _, sp := range spans {
		if sp.start > prev {
			out = append(out, Piece{Text: text[prev:sp.start]})
		}
		out = append(out, Piece{Text: text[sp.start:sp.end], Match: true})
		prev = sp.end
	}
	if prev < len(text) {
		out = append(out, Piece{Text: text[prev:]})
	}
	return out
}

// Apply replaces every match of query in text by fn(match).
func Apply(text, query string, fn func(string) string) string {
	var b strings.Builder
	for _, p := range Split(text, query) {
		if p.Match {
			b.WriteString(fn(p.Text))
		} else {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// Count returns the number of non-overlapping matches of query in text.
func Count(text, query string) int {
	return len(matches(text, query))
}

// RenderIndexes styles the runes of text starting at the given byte
// offsets, as reported by fuzzy matchers.
func RenderIndexes(text string, indexes []int, style lipgloss.Style) string {
	if len(indexes) == 0 {
		return text
	}
	marked := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		marked[i] = true
	}

	var b strings.Builder
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			b.WriteString(style.Render(run.String()))
			run.Reset()
		}
	}
	for i, r := range text {
		if marked[i] {
			run.WriteRune(r)
			continue
		}
		flush()
		b.WriteRune(r)
	}
	flush()
	return b.String()
}
