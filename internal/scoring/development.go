package scoring

import (
	"fmt"
	"time"

	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/pkg/types"
)

// gradeRow is the points and feedback for one section grade.
type gradeRow struct {
	Points  float64
	Message string
}

var (
	introGrades = map[features.Grade]gradeRow{
		features.GradeExcellent: {4, "Strong introduction with clear opening"},
		features.GradeGood:      {3, "Introduction present but could be stronger"},
		features.GradeFair:      {2, "Introduction present but could be stronger"},
		features.GradeWeak:      {0, "Introduction needs improvement - be more direct"},
	}
	bodyGrades = map[features.Grade]gradeRow{
		features.GradeExcellent: {6, "Excellent body development with clear transitions"},
		features.GradeGood:      {4, "Good body development with logical flow"},
		features.GradeFair:      {2, "Body needs more transition words for clarity"},
		features.GradeWeak:      {0, "Body lacks structure - use more transitions"},
	}
	conclusionGrades = map[features.Grade]gradeRow{
		features.GradeExcellent: {4, "Strong conclusion with clear closing"},
		features.GradeGood:      {3, "Conclusion present but could be more impactful"},
		features.GradeFair:      {2, "Conclusion present but could be more impactful"},
		features.GradeWeak:      {0, "Conclusion needs improvement - summarize key points"},
	}
)

const structureTooShort = "Speech is too short to properly analyze structure."

// StructureScore is the graded introduction/body/conclusion analysis.
type StructureScore struct {
	Intro, Body, Conclusion features.Grade

	// Score is in [0, 14].
	Score    float64
	Feedback []string
}

// ScoreStructure maps each section grade to points.
func ScoreStructure(st features.StructureStats) StructureScore {
	s := StructureScore{Intro: st.Intro.Grade, Body: st.Body.Grade, Conclusion: st.Conclusion.Grade}
	if st.TooShort {
		s.Feedback = []string{structureTooShort}
		return s
	}
	for _, row := range []gradeRow{introGrades[s.Intro], bodyGrades[s.Body], conclusionGrades[s.Conclusion]} {
		s.Score += row.Points
		s.Feedback = append(s.Feedback, row.Message)
	}
	s.Score = clamp(s.Score, 0, 14)
	return s
}

const (
	// durationTolerance widens the expected range on both sides.
	durationTolerance = 0.2

	// rushedSection is the span below which an intro or conclusion is rushed.
	rushedSection = 15 * time.Second

	outOfRangePenalty = 3
	rushedPenalty     = 1
)

// shareDeviation penalises an unbalanced use of time across the sections.
var shareDeviation = Ascending{
	{Min: 0.1, Hi: 0},
	{Min: 0.2, Hi: 1, Label: "Balance your speaking time better across introduction, body and conclusion"},
	{Min: 1.01, Hi: 2, Label: "Most of your speaking time falls in one section. Plan time for each part"},
}

// TimeScore is the graded time utilisation.
type TimeScore struct {
	// Score is in [0, 6].
	Score float64

	Total, Intro, Body, Conclusion time.Duration

	// InRange reports whether Total fits the declared bucket with tolerance.
	InRange  bool
	Feedback []string
}

// ScoreTime compares the recording length with the declared bucket and
// checks how time is distributed across sections.
func ScoreTime(st features.StructureStats) TimeScore {
	s := TimeScore{
		Score:      6,
		Total:      st.Actual,
		Intro:      st.Intro.Span(),
		Body:       st.Body.Span(),
		Conclusion: st.Conclusion.Span(),
	}

	lo, hi := st.Expected.Range()
	minOK := time.Duration(float64(lo) * (1 - durationTolerance))
	maxOK := time.Duration(float64(hi) * (1 + durationTolerance))
	switch {
	case st.Actual < minOK:
		s.Score -= outOfRangePenalty
		s.Feedback = append(s.Feedback, "Speech is too short. "+aimFor(st.Expected))
	case hi > 0 && st.Actual > maxOK:
		s.Score -= outOfRangePenalty
		s.Feedback = append(s.Feedback, fmt.Sprintf("Speech is too long. Keep within %s", bucketText(st.Expected)))
	default:
		s.InRange = true
		s.Feedback = append(s.Feedback, "Good time management - within expected range")
	}

	if b := shareDeviation.Band(st.ShareDeviation); b.Hi > 0 {
		s.Score -= b.Hi
		s.Feedback = append(s.Feedback, b.Label)
	}
	if s.Intro < rushedSection {
		s.Score -= rushedPenalty
		s.Feedback = append(s.Feedback, "Introduction seems rushed - take more time to set up")
	}
	if s.Conclusion < rushedSection {
		s.Score -= rushedPenalty
		s.Feedback = append(s.Feedback, "Conclusion seems rushed - strengthen your closing")
	}
	s.Score = clamp(s.Score, 0, 6)
	return s
}

func aimFor(b types.DurationBucket) string {
	if _, hi := b.Range(); hi == 0 {
		return "Aim for at least " + bucketText(b)
	}
	return "Aim for " + bucketText(b)
}

// bucketText renders a bucket's range, "5-7 minutes" or "15 minutes".
func bucketText(b types.DurationBucket) string {
	lo, hi := b.Range()
	if hi == 0 {
		return fmt.Sprintf("%d minutes", int(lo.Minutes()))
	}
	return fmt.Sprintf("%d-%d minutes", int(lo.Minutes()), int(hi.Minutes()))
}
