package deck

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/sahilm/fuzzy"
)

// Side names which half of a phrase a suggestion matched.
type Side string

const (
	SideIT Side = "it"
	SideFR Side = "fr"
)

// Suggestion is a phrase close to a query that Filter did not match.
type Suggestion struct {
	Phrase Phrase
	Side   Side

	// Indexes are the byte offsets of the matched characters in the
	// matched side. They are empty for typo matches.
	Indexes []int
}

// Text returns the matched side of the phrase.
func (s Suggestion) Text() string {
	if s.Side == SideFR {
		return s.Phrase.FR
	}
	return s.Phrase.IT
}

type side struct {
	phrases []Phrase
	fr      bool
}

func (s side) String(i int) string {
	if s.fr {
		return s.phrases[i].FR
	}
	return s.phrases[i].IT
}

func (s side) Len() int { return len(s.phrases) }

// Suggest returns up to n phrases ranked by fuzzy match against either side.
// When no phrase contains the query characters in order, phrases with a word
// within a small edit distance of the query are returned instead.
func (d *Deck) Suggest(query string, n int) []Suggestion {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return nil
	}

	type ranked struct {
		Suggestion
		score int
		index int
	}
	best := map[int]ranked{}
	for _, fr := range []bool{false, true} {
		for _, m := range fuzzy.FindFrom(query, side{phrases: d.Phrases, fr: fr}) {
			if cur, ok := best[m.Index]; ok && cur.score >= m.Score {
				continue
			}
			s := Suggestion{Phrase: d.Phrases[m.Index], Side: SideIT, Indexes: m.MatchedIndexes}
			if fr {
				s.Side = SideFR
			}
			best[m.Index] = ranked{Suggestion: s, score: m.Score, index: m.Index}
		}
	}

	if len(best) == 0 {
		return d.typos(query, n)
	}

	all := make([]ranked, 0, len(best))
	for _, r := range best {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		return all[i].index < all[j].index
	})

	out := make([]Suggestion, 0, min(n, len(all)))
	for _, r := range all[:min(n, len(all))] {
		out = append(out, r.Suggestion)
	}
	return out
}

// typos ranks phrases by the edit distance between the query and their
// closest word. Distances above a third of the query length are dropped.
func (d *Deck) typos(query string, n int) []Suggestion {
	q := fold(query)
	limit := max(1, utf8.RuneCountInString(q)/3)

	type ranked struct {
		Suggestion
		dist  int
		index int
	}
	var all []ranked
	for i, p := range d.Phrases {
		bestDist, bestSide := limit+1, SideIT
		for _, s := range []Side{SideIT, SideFR} {
			text := p.IT
			if s == SideFR {
				text = p.FR
			}
			if dist := closestWord(q, text); dist < bestDist {
				bestDist, bestSide = dist, s
			}
		}
		if bestDist <= limit {
			all = append(all, ranked{Suggestion{Phrase: p, Side: bestSide}, bestDist, i})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].index < all[j].index
	})

	out := make([]Suggestion, 0, min(n, len(all)))
	for _, r := range all[:min(n, len(all))] {
		out = append(out, r.Suggestion)
	}
	return out
}

// closestWord returns the smallest edit distance between q and a run of
// words of text as long as q.
func closestWord(q, text string) int {
	words := strings.FieldsFunc(fold(text), func(r rune) bool {
		return strings.ContainsRune(" \t,.;:!?¿¡«»\"'’", r)
	})
	span := max(1, len(strings.Fields(q)))

	best := -1
	for i := 0; i+span <= len(words); i++ {
		dist := levenshtein.ComputeDistance(q, strings.Join(words[i:i+span], " "))
		if best < 0 || dist < best {
			best = dist
		}
	}
	if best < 0 {
		return levenshtein.ComputeDistance(q, fold(text))
	}
	return best
}
