package transcript

import (
	"strings"
	"time"
)

// DefaultSentenceGap is the silence after a word that ends a sentence even
// when the backend emitted no terminal punctuation.
const DefaultSentenceGap = time.Second

// Sentence is a run of tokens ending in terminal punctuation or a long gap.
type Sentence struct {
	Tokens []Token
}

// Start returns the start of the first token.
func (s Sentence) Start() time.Duration {
	if len(s.Tokens) == 0 {
		return 0
	}
	return s.Tokens[0].Start
}

// End returns the end of the last token.
func (s Sentence) End() time.Duration {
	if len(s.Tokens) == 0 {
		return 0
	}
	return s.Tokens[len(s.Tokens)-1].End
}

// Text returns the sentence as spoken.
func (s Sentence) Text() string { return Text(s.Tokens) }

// Len returns the number of tokens.
func (s Sentence) Len() int { return len(s.Tokens) }

// Sentences groups tokens into sentences. A sentence ends after a token whose
// text ends in '.', '!' or '?', or when the next token starts at least gap
// after it. A gap of zero uses DefaultSentenceGap.
func Sentences(tokens []Token, gap time.Duration) []Sentence {
	if gap <= 0 {
		gap = DefaultSentenceGap
	}
	var (
		out []Sentence
		cur []Token
	)
	for i, t := range tokens {
		cur = append(cur, t)
		end := endsSentence(t.Text)
		if !end && i+1 < len(tokens) && tokens[i+1].Start-t.End >= gap {
			end = true
		}
		if end {
			out = append(out, Sentence{Tokens: cur})
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, Sentence{Tokens: cur})
	}
	return out
}

// IsQuestion reports whether the sentence was punctuated as a question.
func (s Sentence) IsQuestion() bool {
	if len(s.Tokens) == 0 {
		return false
	}
	return strings.HasSuffix(strings.TrimRight(s.Tokens[len(s.Tokens)-1].Text, `"')`), "?")
}

func endsSentence(text string) bool {
	text = strings.TrimRight(text, `"')]`)
	if text == "" {
		return false
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
