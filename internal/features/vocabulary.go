package features

import (
	"slices"
	"unicode"
)

const (
	// advancedMinLen is the length a word must exceed to count as advanced.
	advancedMinLen = 7

	// repeatedOver is the use count a content word must exceed to be
	// reported as repeated.
	repeatedOver = 3

	maxAdvancedExamples = 10
)

// VocabStats measures lexical richness over content words (alphabetic
// tokens that are not stopwords).
type VocabStats struct {
	// Words is the number of content words.
	Words  int
	Unique int

	// Diversity is Unique/Words, 0 when there are no content words.
	Diversity float64

	// Advanced is the number of distinct advanced words.
	Advanced      int
	AdvancedRatio float64

	// AdvancedExamples lists up to ten advanced words in first-use order.
	AdvancedExamples []string

	// Repeated lists content words used more than three times, most
	// frequent first.
	Repeated []string
}

// Vocabulary measures diversity and advanced-word use.
func (e *Extractor) Vocabulary(in Input) VocabStats {
	var st VocabStats
	counts := make(map[string]int)
	var order []string
	for _, t := range in.Tokens {
		if !alphabetic(t.Norm) || stopwords[t.Norm] {
			continue
		}
		st.Words++
		if counts[t.Norm] == 0 {
			order = append(order, t.Norm)
		}
		counts[t.Norm]++
	}
	if st.Words == 0 {
		return st
	}

	st.Unique = len(counts)
	st.Diversity = float64(st.Unique) / float64(st.Words)

	for _, w := range order {
		if e.isAdvanced(w) {
			st.Advanced++
			if len(st.AdvancedExamples) < maxAdvancedExamples {
				st.AdvancedExamples = append(st.AdvancedExamples, w)
			}
		}
		if counts[w] > repeatedOver {
			st.Repeated = append(st.Repeated, w)
		}
	}
	st.AdvancedRatio = float64(st.Advanced) / float64(st.Words)
	slices.SortStableFunc(st.Repeated, func(a, b string) int { return counts[b] - counts[a] })
	return st
}

func (e *Extractor) isAdvanced(w string) bool {
	if e.advanced[w] {
		return true
	}
	return len([]rune(w)) > advancedMinLen && !basicWords[w]
}

// alphabetic reports whether s consists of letters, allowing inner
// apostrophes and hyphens.
func alphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}
