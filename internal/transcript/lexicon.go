package transcript

import (
	"slices"
	"strings"
)

// Match is one lexicon phrase found in a token sequence.
type Match struct {
	// Phrase is the canonical lexicon entry ("you know").
	Phrase string

	// Pos is the index of the first matched token in the searched slice.
	Pos int

	// Len is the number of tokens the phrase covers.
	Len int
}

// Lexicon is an immutable set of single- and multi-word phrases matched on
// token boundaries. It is safe for concurrent use.
type Lexicon struct {
	// byFirst maps a phrase's first word to its token forms, longest first.
	byFirst map[string][][]string
	size    int
}

// NewLexicon compiles phrases. Entries are normalised the same way tokens
// are; duplicates and empty entries are ignored.
func NewLexicon(phrases ...string) *Lexicon {
	l := &Lexicon{byFirst: make(map[string][][]string)}
	seen := make(map[string]bool)
	for _, p := range phrases {
		words := phraseWords(p)
		if len(words) == 0 {
			continue
		}
		key := strings.Join(words, " ")
		if seen[key] {
			continue
		}
		seen[key] = true
		l.byFirst[words[0]] = append(l.byFirst[words[0]], words)
		l.size++
	}
	for _, forms := range l.byFirst {
		slices.SortStableFunc(forms, func(a, b []string) int { return len(b) - len(a) })
	}
	return l
}

// With returns a new lexicon holding the receiver's phrases plus extra.
func (l *Lexicon) With(extra ...string) *Lexicon {
	if len(extra) == 0 {
		return l
	}
	return NewLexicon(append(l.Phrases(), extra...)...)
}

// Phrases returns every phrase in the lexicon, sorted.
func (l *Lexicon) Phrases() []string {
	out := make([]string, 0, l.size)
	for _, forms := range l.byFirst {
		for _, f := range forms {
			out = append(out, strings.Join(f, " "))
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of phrases.
func (l *Lexicon) Len() int { return l.size }

// FindAll scans tokens left to right. At each position the longest phrase
// that matches wins and its tokens are consumed, so a token is never part of
// two matches ("you know" is one match, not a match for "you know" plus a
// match for "know").
func (l *Lexicon) FindAll(tokens []Token) []Match {
	var out []Match
	for i := 0; i < len(tokens); {
		if n, phrase := l.matchAt(tokens, i); n > 0 {
			out = append(out, Match{Phrase: phrase, Pos: i, Len: n})
			i += n
			continue
		}
		i++
	}
	return out
}

// Count returns len(FindAll(tokens)).
func (l *Lexicon) Count(tokens []Token) int { return len(l.FindAll(tokens)) }

// Distinct returns the set of phrases that occur at least once, sorted.
func (l *Lexicon) Distinct(tokens []Token) []string {
	seen := make(map[string]bool)
	for _, m := range l.FindAll(tokens) {
		seen[m.Phrase] = true
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Contains reports whether any phrase occurs in tokens.
func (l *Lexicon) Contains(tokens []Token) bool {
	for i := range tokens {
		if n, _ := l.matchAt(tokens, i); n > 0 {
			return true
		}
	}
	return false
}

// Has reports whether word (normalised) is a single-word entry.
func (l *Lexicon) Has(word string) bool {
	for _, f := range l.byFirst[Normalize(word)] {
		if len(f) == 1 {
			return true
		}
	}
	return false
}

func (l *Lexicon) matchAt(tokens []Token, i int) (int, string) {
	for _, form := range l.byFirst[tokens[i].Norm] {
		if i+len(form) > len(tokens) {
			continue
		}
		ok := true
		for k := 1; k < len(form); k++ {
			if tokens[i+k].Norm != form[k] {
				ok = false
				break
			}
		}
		if ok {
			return len(form), strings.Join(form, " ")
		}
	}
	return 0, ""
}

func phraseWords(p string) []string {
	fields := strings.Fields(p)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			out = append(out, n)
		}
	}
	return out
}
