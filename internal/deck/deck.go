// Package deck loads and searches the Italian/French phrase lists that the
// trainer speaks and quizzes on.
package deck

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultPage is the page name used when a deck does not carry one.
const DefaultPage = "home"

var (
	// ErrEmpty is returned for decks without phrases.
	ErrEmpty = errors.New("deck has no phrases")

	// ErrLoad is returned when a deck source cannot be read.
	ErrLoad = errors.New("unable to load")

	// ErrFormat is returned for unknown deck formats.
	ErrFormat = errors.New("unknown deck format")
)

//go:embed default.yaml
var defaultDeck []byte

// Phrase is an Italian phrase and its French translation.
type Phrase struct {
	IT string `json:"it" yaml:"it"`
	FR string `json:"fr" yaml:"fr"`
}

// Deck is a named list of phrases. Page names the revision counter the deck
// contributes to.
type Deck struct {
	Page    string   `json:"page" yaml:"page"`
	Phrases []Phrase `json:"phrases" yaml:"phrases"`
	Source  string   `json:"-" yaml:"-"`
}

// Default returns the embedded starter deck.
func Default() *Deck {
	d, err := Parse(defaultDeck, "default.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded deck: %v", err))
	}
	d.Page = DefaultPage
	d.Source = "embedded"
	return d
}

// Len returns the number of phrases.
func (d *Deck) Len() int {
	return len(d.Phrases)
}

// validate trims every phrase and rejects blank fields.
func (d *Deck) validate() error {
	if len(d.Phrases) == 0 {
		return ErrEmpty
	}
	for i := range d.Phrases {
		p := &d.Phrases[i]
		p.IT = strings.TrimSpace(p.IT)
		p.FR = strings.TrimSpace(p.FR)
		switch {
		case p.IT == "":
			return fmt.Errorf("phrase %d: missing italian text", i)
		case p.FR == "":
			return fmt.Errorf("phrase %d: missing french text", i)
		}
	}
	return nil
}

// pageFromSource derives a page name from a file name or URL path:
// "lessons/verbi.yaml.zst" becomes "verbi".
func pageFromSource(src string) string {
	base := filepath.Base(filepath.ToSlash(src))
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return DefaultPage
	}
	return base
}

// fold normalizes s for caseless comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Filter returns the phrases whose Italian or French side contains query,
// ignoring case. A blank query returns every phrase.
func (d *Deck) Filter(query string) []Phrase {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return append([]Phrase(nil), d.Phrases...)
	}

	var out []Phrase
	for _, p := range d.Phrases {
		if strings.Contains(fold(p.IT), q) || strings.Contains(fold(p.FR), q) {
			out = append(out, p)
		}
	}
	return out
}
