// Package transcript turns a word-aligned STT result into the units the
// feature extractors reason about: normalised tokens, sentences, inter-word
// gaps, time spans and phrase matches.
//
// Everything here is a pure function of its input. The word slice produced by
// ingestion is treated as read-only and is shared by all extractors, so
// nothing in this package mutates it.
package transcript

import (
	"strings"
	"time"
	"unicode"

	"github.com/MrWong99/orator/pkg/types"
)

// Token is a word with its comparison form.
type Token struct {
	// Text is the word exactly as the STT backend produced it.
	Text string

	// Norm is Text lower-cased with leading and trailing punctuation removed.
	// Inner apostrophes and hyphens are kept ("don't", "well-known").
	Norm string

	// Index is the position of the source word in the transcript.
	Index int

	Start time.Duration
	End   time.Duration
}

// Normalize lower-cases s and strips surrounding punctuation.
func Normalize(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.ToLower(s)
}

// Tokenize converts words to tokens. Words that are pure punctuation are
// dropped; Index still refers to the original position.
func Tokenize(words []types.Word) []Token {
	out := make([]Token, 0, len(words))
	for i, w := range words {
		norm := Normalize(w.Text)
		if norm == "" {
			continue
		}
		out = append(out, Token{Text: w.Text, Norm: norm, Index: i, Start: w.Start, End: w.End})
	}
	return out
}

// Norms returns the comparison form of every token.
func Norms(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Norm
	}
	return out
}

// Text joins the original token texts with single spaces.
func Text(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// Span returns the tokens whose start falls in [from, to). When last is true
// the upper bound is inclusive so the final token of a recording is never
// lost to rounding.
func Span(tokens []Token, from, to time.Duration, last bool) []Token {
	var out []Token
	for _, t := range tokens {
		if t.Start < from {
			continue
		}
		if t.Start < to || (last && t.Start <= to) {
			out = append(out, t)
		}
	}
	return out
}

// SpeechDuration returns the time from the first word's start to the last
// word's end. Zero for an empty transcript.
func SpeechDuration(words []types.Word) time.Duration {
	if len(words) == 0 {
		return 0
	}
	return words[len(words)-1].End - words[0].Start
}
