package features

import (
	"strings"

	"github.com/MrWong99/orator/internal/transcript"
)

// EffectivenessStats holds the rhetorical signals behind purpose clarity,
// organisation, audience engagement and goal achievement. Marker counts are
// the number of distinct markers present.
type EffectivenessStats struct {
	// PurposeEarly is set when a purpose statement appears in the first
	// fifth of the sentences; PurposeStated when it appears anywhere.
	PurposeEarly  bool
	PurposeStated bool

	AvgSentenceLen float64
	OrgMarkers     int
	FlowMarkers    int

	Questions          int
	DirectAddressRatio float64
	EngagingWords      int
	Examples           int
	StoryWords         int

	// ConcludesLate is set when a concluding marker appears in the last
	// fifth of the sentences.
	ConcludesLate bool
	ActionWords   int
	Evidence      int
}

// Effectiveness collects the rhetorical signals of the transcript.
func (e *Extractor) Effectiveness(in Input) EffectivenessStats {
	var st EffectivenessStats
	if len(in.Tokens) == 0 {
		return st
	}

	n := len(in.Sentences)
	fifth := max(1, n/5)
	st.PurposeStated = purposeKeywords.Contains(in.Tokens)
	st.PurposeEarly = purposeKeywords.Contains(sentenceTokens(in.Sentences[:min(fifth, n)]))
	st.ConcludesLate = conclusionMarkers.Contains(sentenceTokens(in.Sentences[max(0, n-fifth):]))

	if n > 0 {
		st.AvgSentenceLen = float64(len(in.Tokens)) / float64(n)
	}
	st.OrgMarkers = len(orgMarkers.Distinct(in.Tokens))
	st.FlowMarkers = len(flowMarkers.Distinct(in.Tokens))

	for _, t := range in.Tokens {
		st.Questions += strings.Count(t.Text, "?")
	}
	st.DirectAddressRatio = float64(directAddress.Count(in.Tokens)) / float64(len(in.Tokens))
	st.EngagingWords = len(engagingWords.Distinct(in.Tokens))
	st.Examples = len(exampleMarkers.Distinct(in.Tokens))
	st.StoryWords = len(storyWords.Distinct(in.Tokens))

	st.ActionWords = len(actionWords.Distinct(in.Tokens))
	st.Evidence = len(evidenceMarkers.Distinct(in.Tokens))
	return st
}

func sentenceTokens(sentences []transcript.Sentence) []transcript.Token {
	var out []transcript.Token
	for _, s := range sentences {
		out = append(out, s.Tokens...)
	}
	return out
}
