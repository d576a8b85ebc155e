package scoring

import (
	"fmt"

	"github.com/MrWong99/orator/internal/features"
)

// Component feedback bands, keyed on the component score.
var (
	purposeFeedback = Descending{
		{Min: 18, Label: "Excellent clarity of purpose"},
		{Min: 15, Label: "Good purpose clarity"},
		{Min: 0, Label: "State your purpose more clearly in the introduction"},
	}
	organizationFeedback = Descending{
		{Min: 18, Label: "Well-organized content with clear structure"},
		{Min: 15, Label: "Good organization with room for improvement"},
		{Min: 0, Label: "Use more transition words to improve organization"},
	}
	engagementFeedback = Descending{
		{Min: 18, Label: "Highly engaging delivery style"},
		{Min: 15, Label: "Good audience engagement techniques"},
		{Min: 0, Label: "Add more questions or direct address to engage audience"},
	}
	goalFeedback = Descending{
		{Min: 18, Label: "Successfully achieves speech goals"},
		{Min: 15, Label: "Generally achieves intended goals"},
		{Min: 0, Label: "Strengthen conclusion and add clearer takeaways"},
	}
)

// Component adjustments. Hi carries the delta.
var (
	sentenceLength = func(avg float64) float64 {
		switch {
		case avg < 8 || avg > 35:
			return -5
		case avg >= 15 && avg <= 25:
			return 0
		default:
			return -2
		}
	}
	orgMarkerDelta    = Descending{{Min: 4, Hi: 0}, {Min: 2, Hi: -3}, {Min: 0, Hi: -6}}
	flowMarkerDelta   = Descending{{Min: 3, Hi: 0}, {Min: 1, Hi: -2}, {Min: 0, Hi: -4}}
	questionDelta     = Descending{{Min: 3, Hi: 3}, {Min: 1, Hi: 1}, {Min: 0, Hi: 0}}
	examplesDelta     = Descending{{Min: 2, Hi: 2}, {Min: 1, Hi: 1}, {Min: 0, Hi: 0}}
	directAddressGain = func(ratio float64) float64 {
		switch {
		case ratio > 0.02:
			return 3
		case ratio > 0.01:
			return 1
		default:
			return 0
		}
	}
)

// lowTopicCoverage is the keyword coverage below which purpose loses points.
const lowTopicCoverage = 0.3

// EffectivenessScore is the graded rhetorical analysis. Each component is in
// [0, 20]; Total is their mean.
type EffectivenessScore struct {
	Purpose      float64
	Organization float64
	Engagement   float64
	Goal         float64
	Total        float64
	Feedback     []string
}

// ScoreEffectiveness grades purpose clarity, organisation, engagement and
// goal achievement.
func ScoreEffectiveness(e features.EffectivenessStats, topic features.TopicStats) EffectivenessScore {
	var s EffectivenessScore

	switch {
	case e.PurposeEarly:
		s.Purpose = 20
	case e.PurposeStated:
		s.Purpose = 15
	default:
		s.Purpose = 10
	}
	if topic.HasTopic() && topic.Coverage() < lowTopicCoverage {
		s.Purpose -= 5
	}

	s.Organization = 20 + sentenceLength(e.AvgSentenceLen) +
		orgMarkerDelta.Band(float64(e.OrgMarkers)).Hi +
		flowMarkerDelta.Band(float64(e.FlowMarkers)).Hi

	s.Engagement = 15 + questionDelta.Band(float64(e.Questions)).Hi +
		directAddressGain(e.DirectAddressRatio) +
		examplesDelta.Band(float64(e.Examples)).Hi
	if e.EngagingWords >= 3 {
		s.Engagement += 2
	}
	if e.StoryWords >= 3 {
		s.Engagement += 2
	}

	s.Goal = 15
	if e.ConcludesLate {
		s.Goal += 5
	} else {
		s.Goal -= 3
	}
	if e.ActionWords >= 2 {
		s.Goal += 3
	}
	if e.Evidence >= 2 {
		s.Goal += 2
	}

	s.Purpose = clamp(s.Purpose, 0, MaxCategory)
	s.Organization = clamp(s.Organization, 0, MaxCategory)
	s.Engagement = clamp(s.Engagement, 0, MaxCategory)
	s.Goal = clamp(s.Goal, 0, MaxCategory)
	s.Total = (s.Purpose + s.Organization + s.Engagement + s.Goal) / 4

	s.Feedback = []string{
		purposeFeedback.Band(s.Purpose).Label,
		organizationFeedback.Band(s.Organization).Label,
		engagementFeedback.Band(s.Engagement).Label,
		goalFeedback.Band(s.Goal).Label,
	}
	return s
}

// TopicRatings maps the 0-20 relevance score to its rating.
var TopicRatings = Descending{
	{Min: 16, Label: "Highly Relevant"},
	{Min: 12, Label: "Relevant"},
	{Min: 8, Label: "Moderately Relevant"},
	{Min: 0, Label: "Needs Focus"},
}

// RatingNA is the rating reported when no topic was given.
const RatingNA = "N/A"

// TopicScore is the graded topic relevance.
type TopicScore struct {
	Relevance float64
	Focus     float64
	Rating    string
	Feedback  []string
}

// ScoreTopic grades how well the speech stays on its declared topic.
func ScoreTopic(t features.TopicStats) TopicScore {
	if !t.HasTopic() {
		return TopicScore{Rating: RatingNA, Feedback: []string{"No topic specified for comparison"}}
	}
	s := TopicScore{Focus: t.FocusShare * 20}
	s.Relevance = min(20, (float64(t.Matches)*10+s.Focus)/2)
	s.Rating = TopicRatings.Band(s.Relevance).Label

	switch {
	case t.Matches < 3:
		s.Feedback = append(s.Feedback, fmt.Sprintf("Include more references to '%s' throughout your speech", t.Topic))
	case t.Matches > 7:
		s.Feedback = append(s.Feedback, fmt.Sprintf("Excellent focus on the topic '%s'", t.Topic))
	}
	switch {
	case s.Focus < 10:
		s.Feedback = append(s.Feedback, "Try to maintain consistent focus on your main topic")
	case s.Focus > 15:
		s.Feedback = append(s.Feedback, "Great consistency in staying on topic!")
	}
	if len(s.Feedback) == 0 {
		s.Feedback = []string{"Good topic relevance"}
	}
	return s
}
