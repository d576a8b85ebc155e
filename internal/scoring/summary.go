package scoring

// Performance levels by overall score.
var Levels = Descending{
	{Min: 90, Label: "Excellent"},
	{Min: 80, Label: "Advanced"},
	{Min: 70, Label: "Proficient"},
	{Min: 60, Label: "Intermediate"},
	{Min: 50, Label: "Developing"},
	{Min: 0, Label: "Needs Improvement"},
}

// Coaching thresholds on the category percentage.
const (
	strengthFrom   = 75
	improveBelow   = 60
	tipsBelow      = 70
	fillerPraiseAt = 80

	lowFillerDensity  = 0.03
	highFillerDensity = 0.05

	maxStrengths   = 4
	maxAreas       = 4
	maxSuggestions = 5
	maxTips        = 3
)

// Tip is a group of concrete exercises for one area.
type Tip struct {
	Area  string
	Items []string
}

// Summary is the coaching block derived from the category scores.
type Summary struct {
	Level       string
	Overall     float64
	Percent     map[Category]float64
	Strengths   []string
	Areas       []string
	Suggestions []string
	Tips        []Tip
}

// Percent returns a category score as a percentage of MaxCategory.
func Percent(score float64) float64 { return round1(score / MaxCategory * 100) }

// Summarize builds the coaching summary. fillerDensity separates filler
// control from general fluency, which share the proficiency score.
func Summarize(scores Scores, overall, fillerDensity float64) Summary {
	pct := make(map[Category]float64, numCategories)
	for _, c := range Categories() {
		pct[c] = Percent(scores[c])
	}
	s := Summary{Level: Levels.Band(overall).Label, Overall: overall, Percent: pct}

	add := func(list *[]string, limit int, ok bool, msg string) {
		if ok && len(*list) < limit {
			*list = append(*list, msg)
		}
	}

	add(&s.Strengths, maxStrengths, pct[VoiceModulation] >= strengthFrom, "Excellent voice modulation and pitch variation")
	add(&s.Strengths, maxStrengths, pct[Vocabulary] >= strengthFrom, "Strong grammar and diverse vocabulary")
	add(&s.Strengths, maxStrengths, pct[Proficiency] >= strengthFrom, "High speaking fluency and confidence")
	add(&s.Strengths, maxStrengths, fillerDensity < lowFillerDensity && pct[Proficiency] > 0, "Exceptional control over filler words")
	add(&s.Strengths, maxStrengths, pct[SpeechDevelopment] >= strengthFrom, "Well-organized speech structure")
	add(&s.Strengths, maxStrengths, pct[Effectiveness] >= strengthFrom, "Clear and impactful message delivery")
	if len(s.Strengths) == 0 {
		s.Strengths = []string{"Clear communication and good effort"}
	}

	add(&s.Areas, maxAreas, pct[VoiceModulation] < improveBelow, "Voice modulation and pitch variation")
	add(&s.Areas, maxAreas, pct[Vocabulary] < improveBelow, "Grammar accuracy and vocabulary diversity")
	add(&s.Areas, maxAreas, pct[Proficiency] < improveBelow, "Speaking fluency and confidence")
	add(&s.Areas, maxAreas, fillerDensity > highFillerDensity, "Reducing filler word usage")
	add(&s.Areas, maxAreas, pct[SpeechDevelopment] < improveBelow, "Speech organization and structure")
	add(&s.Areas, maxAreas, pct[Effectiveness] < improveBelow, "Message clarity and impact")
	if len(s.Areas) == 0 {
		s.Areas = []string{"Continue refining overall delivery"}
	}

	add(&s.Suggestions, maxSuggestions, pct[VoiceModulation] < improveBelow,
		"Practice varying your pitch and tone to make your speech more engaging.")
	add(&s.Suggestions, maxSuggestions, pct[Vocabulary] < improveBelow,
		"Focus on using more diverse vocabulary and proper grammar structures.")
	switch {
	case fillerDensity > highFillerDensity:
		add(&s.Suggestions, maxSuggestions, true,
			"Reduce filler words like 'um', 'uh', and 'like'. Practice pausing instead.")
	case pct[Proficiency] >= fillerPraiseAt:
		add(&s.Suggestions, maxSuggestions, true, "Great job minimizing filler words! Keep it up.")
	}
	add(&s.Suggestions, maxSuggestions, pct[SpeechDevelopment] < improveBelow,
		"Work on organizing your speech with a clear introduction, body, and conclusion.")
	add(&s.Suggestions, maxSuggestions, pct[Effectiveness] < improveBelow,
		"Make your main message clearer and ensure all points support your goal.")
	add(&s.Suggestions, maxSuggestions, pct[Proficiency] < improveBelow,
		"Practice speaking more fluently with fewer pauses and hesitations.")
	if len(s.Suggestions) == 0 {
		s.Suggestions = []string{"Excellent speech! Continue practicing to maintain your high performance."}
	}

	tip := func(ok bool, area string, items ...string) {
		if ok && len(s.Tips) < maxTips {
			s.Tips = append(s.Tips, Tip{Area: area, Items: items})
		}
	}
	tip(pct[VoiceModulation] < tipsBelow, "Voice Modulation",
		"Record yourself and listen back to identify monotone sections",
		"Practice emphasizing key words in each sentence")
	tip(pct[SpeechDevelopment] < tipsBelow, "Speech Structure",
		"Write an outline before speaking: Intro → 3 Main Points → Conclusion",
		"Use transition phrases like 'First', 'Additionally', 'In conclusion'")
	tip(pct[Proficiency] < tipsBelow, "Filler Words",
		"Pause briefly instead of saying 'um' or 'uh'",
		"Practice speaking slower to reduce filler words")
	return s
}
