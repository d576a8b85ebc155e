// Package phonetic matches spoken words against topic keywords, tolerating
// the spelling drift speech-to-text introduces ("fotosynthesis" for
// "photosynthesis", "climat" for "climate").
//
// The algorithm proceeds in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     the spoken word and for each keyword. A keyword whose codes overlap
//     the word's codes becomes a phonetic candidate.
//
//  2. Jaro-Winkler ranking: among phonetic candidates, the keyword with the
//     highest Jaro-Winkler similarity (case-insensitive) is selected,
//     provided its score reaches the phonetic threshold. When no phonetic
//     candidate qualifies, pure Jaro-Winkler similarity is tested against a
//     stricter fuzzy threshold.
//
// Multi-word keywords ("climate change") are compared token by token as well
// as on the full and space-stripped strings.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.85
	defaultFuzzyThreshold    = 0.92

	// minFuzzyLen keeps short function words from fuzzily matching keywords.
	minFuzzyLen = 4
)

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched keyword to be accepted. Default: 0.85.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic match is found. Default: 0.92.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// Matcher is a phonetic keyword matcher. It is read-only after construction
// and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// New returns a new [Matcher] configured with the supplied options.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match finds the keyword most similar to word. word may be a single word or
// a space-separated phrase. When matched is false, keyword is "" and
// confidence is 0. An exact (case-insensitive) match always wins with
// confidence 1.
func (m *Matcher) Match(word string, keywords []string) (keyword string, confidence float64, matched bool) {
	wordLower := strings.ToLower(strings.TrimSpace(word))
	if len(keywords) == 0 || wordLower == "" {
		return "", 0, false
	}
	wordTokens := strings.Fields(wordLower)
	inputCodes := codesForTokens(wordTokens)

	type candidate struct {
		keyword  string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, kw := range keywords {
		kwLower := strings.ToLower(strings.TrimSpace(kw))
		if kwLower == "" {
			continue
		}
		if kwLower == wordLower {
			return kw, 1, true
		}
		if len(wordLower) < minFuzzyLen {
			continue
		}
		kwTokens := strings.Fields(kwLower)

		phoneticMatch := codesOverlap(inputCodes, codesForTokens(kwTokens))
		jwScore := bestJWScore(wordTokens, kwTokens, wordLower, kwLower)

		if phoneticMatch {
			if jwScore >= m.phoneticThreshold && (!best.phonetic || jwScore > best.score) {
				best = candidate{keyword: kw, score: jwScore, phonetic: true}
			}
		} else if !best.phonetic {
			if jwScore >= m.fuzzyThreshold && jwScore > best.score {
				best = candidate{keyword: kw, score: jwScore}
			}
		}
	}

	if best.keyword != "" {
		return best.keyword, best.score, true
	}
	return "", 0, false
}

// Covered returns the keywords that at least one of words matches, in the
// order the keywords were given. Multi-word keywords are also tested against
// consecutive word pairs and triples.
func (m *Matcher) Covered(words []string, keywords []string) []string {
	hit := make(map[string]bool, len(keywords))
	try := func(w string) {
		if kw, _, ok := m.Match(w, keywords); ok {
			hit[kw] = true
		}
	}
	for i, w := range words {
		try(w)
		if i+1 < len(words) {
			try(w + " " + words[i+1])
		}
		if i+2 < len(words) {
			try(w + " " + words[i+1] + " " + words[i+2])
		}
		if len(hit) == len(keywords) {
			break
		}
	}

	out := make([]string, 0, len(hit))
	for _, kw := range keywords {
		if hit[kw] {
			out = append(out, kw)
			delete(hit, kw)
		}
	}
	return out
}

// codesForTokens returns the union of all Double Metaphone codes for the
// given tokens. Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap returns true if the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore is the highest Jaro-Winkler similarity over the full strings,
// the space-stripped strings and, when both sides have the same number of
// tokens, the weakest of the aligned token pairs.
func bestJWScore(inputTokens, kwTokens []string, inputFull, kwFull string) float64 {
	score := matchr.JaroWinkler(inputFull, kwFull, false)

	if len(inputTokens) > 1 || len(kwTokens) > 1 {
		if s := matchr.JaroWinkler(strings.Join(inputTokens, ""), strings.Join(kwTokens, ""), false); s > score {
			score = s
		}
	}

	if len(inputTokens) == len(kwTokens) && len(inputTokens) > 1 {
		weakest := 1.0
		for i := range inputTokens {
			weakest = min(weakest, matchr.JaroWinkler(inputTokens[i], kwTokens[i], false))
		}
		score = max(score, weakest)
	}
	return score
}
