package scoring

import (
	"strings"

	"github.com/MrWong99/orator/internal/features"
)

// DiversityBands maps unique/total content words to the 0-8 diversity points.
var DiversityBands = Descending{
	{Min: 0.7, Hi: 8, Label: "Excellent diversity"},
	{Min: 0.5, Hi: 6, Label: "Good vocabulary diversity"},
	{Min: 0.3, Hi: 4, Label: "Moderate vocabulary diversity. Vary your word choice"},
	{Min: 0, Hi: 2, Label: "Limited vocabulary diversity. Try using synonyms"},
}

// AdvancedBands maps the advanced-word ratio to the 0-6 advanced points.
var AdvancedBands = Descending{
	{Min: 0.2, Hi: 6, Label: "Excellent use of advanced vocabulary"},
	{Min: 0.1, Hi: 5, Label: "Good use of complex words"},
	{Min: 0.05, Hi: 3, Label: "Some advanced vocabulary used"},
	{Min: 0, Hi: 1, Label: "Consider using more sophisticated vocabulary where appropriate"},
}

// repetitionPenalty is subtracted from the advanced points for the number of
// over-used words.
var repetitionPenalty = Descending{
	{Min: 6, Hi: 2},
	{Min: 4, Hi: 1},
	{Min: 0, Hi: 0},
}

// GrammarBands maps issues per sentence to the 0-6 grammar points.
var GrammarBands = Ascending{
	{Min: 0.1, Hi: 6, Label: "Grammar is generally correct and well-structured"},
	{Min: 0.2, Hi: 5, Label: "Grammar is generally correct and well-structured"},
	{Min: 0.3, Hi: 4, Label: "Some grammatical issues detected. Review sentence construction"},
	{Min: 0.5, Hi: 2, Label: "Some grammatical issues detected. Review sentence construction"},
	{Min: 1e308, Hi: 1, Label: "Several grammatical errors detected. Consider reviewing basic grammar rules"},
}

// maxRepeatedShown caps the words named in the repetition message.
const maxRepeatedShown = 3

// VocabScore is the graded vocabulary and grammar analysis.
type VocabScore struct {
	Diversity float64
	Advanced  float64
	Grammar   float64
	Total     float64
	Feedback  []string
}

// ScoreVocabulary grades lexical diversity, advanced-word use and grammar.
func ScoreVocabulary(v features.VocabStats, g features.GrammarStats) VocabScore {
	var s VocabScore
	if v.Words > 0 {
		d := DiversityBands.Band(v.Diversity)
		s.Diversity = d.Hi
		s.Feedback = append(s.Feedback, d.Label)

		a := AdvancedBands.Band(v.AdvancedRatio)
		s.Advanced = max(0, a.Hi-repetitionPenalty.Band(float64(len(v.Repeated))).Hi)
		s.Feedback = append(s.Feedback, a.Label)
		if len(v.Repeated) > 0 {
			s.Feedback = append(s.Feedback, repetitionMessage(v.Repeated))
		}
	}
	if g.Sentences > 0 {
		b := GrammarBands.Band(g.Ratio())
		s.Grammar = b.Hi
		s.Feedback = append(s.Feedback, b.Label)
	}
	s.Total = clamp(s.Diversity+s.Advanced+s.Grammar, 0, MaxCategory)
	return s
}

func repetitionMessage(words []string) string {
	shown := words
	suffix := ""
	if len(shown) > maxRepeatedShown {
		shown = shown[:maxRepeatedShown]
		suffix = "..."
	}
	return "Repetitive use of words detected: " + strings.Join(shown, ", ") + suffix
}
