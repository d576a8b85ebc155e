package features

import (
	"math"
	"time"

	"github.com/MrWong99/orator/internal/transcript"
	"github.com/MrWong99/orator/pkg/types"
)

// Grade is the qualitative rating of one section of a speech.
type Grade string

const (
	GradeExcellent Grade = "Excellent"
	GradeGood      Grade = "Good"
	GradeFair      Grade = "Fair"
	GradeWeak      Grade = "Weak"
)

// Section thresholds.
const (
	introMinWords      = 15
	conclusionMinWords = 10
	bodyExcellent      = 5
	bodyGood           = 3

	// minSentences below which structure cannot be judged.
	minSentences = 3
)

// Section is one of the three time spans of a recording.
type Section struct {
	From, To time.Duration

	Words     int
	Sentences int

	// Markers are the distinct framing, transition or closing phrases found.
	Markers []string

	// Share is the fraction of all spoken time that falls in this section.
	Share float64

	Grade Grade
}

// Span returns To-From.
func (s Section) Span() time.Duration { return s.To - s.From }

// StructureStats holds the intro, body and conclusion analysis plus the
// inputs to time utilisation.
type StructureStats struct {
	Intro, Body, Conclusion Section

	// TooShort is set when the transcript has fewer than three sentences.
	TooShort bool

	Split Split

	// Actual is the recording length; Expected the declared bucket.
	Actual   time.Duration
	Expected types.DurationBucket

	// ShareDeviation is the total variation distance between the spoken-time
	// shares and the configured split, 0 (perfect) to 1.
	ShareDeviation float64
}

// Structure divides the recording into introduction, body and conclusion by
// the configured split and grades each span from its lexical content.
func (e *Extractor) Structure(in Input) StructureStats {
	split := e.split
	total := in.Duration
	introEnd := time.Duration(float64(total) * split.Intro)
	bodyEnd := total - time.Duration(float64(total)*split.Conclusion)

	st := StructureStats{
		Split:      split,
		Actual:     total,
		Expected:   in.Expected,
		TooShort:   len(in.Sentences) < minSentences,
		Intro:      Section{From: 0, To: introEnd},
		Body:       Section{From: introEnd, To: bodyEnd},
		Conclusion: Section{From: bodyEnd, To: total},
	}

	intro := transcript.Span(in.Tokens, 0, introEnd, false)
	body := transcript.Span(in.Tokens, introEnd, bodyEnd, false)
	concl := transcript.Span(in.Tokens, bodyEnd, total, true)
	// Tokens past the nominal end (STT timestamps can overrun the decoded
	// length slightly) belong to the conclusion.
	for _, t := range in.Tokens {
		if t.Start > total {
			concl = append(concl, t)
		}
	}

	st.Intro.Words, st.Body.Words, st.Conclusion.Words = len(intro), len(body), len(concl)
	st.Intro.Markers = introPhrases.Distinct(intro)
	st.Body.Markers = transitionWords.Distinct(body)
	st.Conclusion.Markers = closingPhrases.Distinct(concl)

	for _, s := range in.Sentences {
		switch at := s.Start(); {
		case at < introEnd:
			st.Intro.Sentences++
		case at < bodyEnd:
			st.Body.Sentences++
		default:
			st.Conclusion.Sentences++
		}
	}

	if st.TooShort {
		st.Intro.Grade, st.Body.Grade, st.Conclusion.Grade = GradeWeak, GradeWeak, GradeWeak
	} else {
		st.Intro.Grade = gradeFraming(len(st.Intro.Markers) > 0, st.Intro.Words >= introMinWords)
		st.Body.Grade = gradeBody(len(st.Body.Markers))
		st.Conclusion.Grade = gradeFraming(len(st.Conclusion.Markers) > 0, st.Conclusion.Words >= conclusionMinWords)
	}

	spoken := [3]time.Duration{speakingTime(intro), speakingTime(body), speakingTime(concl)}
	sum := spoken[0] + spoken[1] + spoken[2]
	if sum > 0 {
		st.Intro.Share = float64(spoken[0]) / float64(sum)
		st.Body.Share = float64(spoken[1]) / float64(sum)
		st.Conclusion.Share = float64(spoken[2]) / float64(sum)
		st.ShareDeviation = (math.Abs(st.Intro.Share-split.Intro) +
			math.Abs(st.Body.Share-split.Body()) +
			math.Abs(st.Conclusion.Share-split.Conclusion)) / 2
	} else {
		st.ShareDeviation = 1
	}
	return st
}

// gradeFraming grades an opening or closing span: the phrase matters more
// than the length.
func gradeFraming(phrase, longEnough bool) Grade {
	switch {
	case phrase && longEnough:
		return GradeExcellent
	case phrase:
		return GradeGood
	case longEnough:
		return GradeFair
	default:
		return GradeWeak
	}
}

func gradeBody(transitions int) Grade {
	switch {
	case transitions >= bodyExcellent:
		return GradeExcellent
	case transitions >= bodyGood:
		return GradeGood
	case transitions >= 1:
		return GradeFair
	default:
		return GradeWeak
	}
}

func speakingTime(tokens []transcript.Token) time.Duration {
	var d time.Duration
	for _, t := range tokens {
		d += max(t.End-t.Start, 0)
	}
	return d
}
