package scoring

import (
	"errors"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/pkg/types"
)

func TestFillerTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		density float64
		want    float64
	}{
		{0, 10},
		{0.03, 8},
		{0.04, 7.5},
		{0.05, 6},
		{0.10, 3},
		{0.15, 1},
		{0.30, 0},
		{0.9, 0},
	}
	for _, tt := range tests {
		if got := FillerTable.Score(tt.density); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FillerTable.Score(%v) = %v, want %v", tt.density, got, tt.want)
		}
	}
}

func TestScoreFiller_Monotone(t *testing.T) {
	t.Parallel()

	prev := math.Inf(1)
	for i := 0; i <= 500; i++ {
		d := float64(i) / 1000
		s := ScoreFiller(features.FillerStats{Density: d})
		if s.Score > prev+1e-9 {
			t.Fatalf("score rose from %v to %v at density %v", prev, s.Score, d)
		}
		prev = s.Score

		band := FillerTable.Band(d)
		if s.Feedback[0] != band.Label {
			t.Errorf("density %v: feedback %q, want band label %q", d, s.Feedback[0], band.Label)
		}
		if s.Score < band.Lo-1e-9 || s.Score > band.Hi+1e-9 {
			t.Errorf("density %v: score %v outside band [%v, %v]", d, s.Score, band.Lo, band.Hi)
		}
	}
}

func TestScoreFiller_MinutePenaltyStaysInBand(t *testing.T) {
	t.Parallel()

	f := features.FillerStats{
		Density:   0.04,
		PerMinute: []features.MinuteCount{{Minute: 0, Count: 6}},
		Occurrences: []features.FillerOccurrence{
			{Phrase: "um"}, {Phrase: "um"}, {Phrase: "like"},
		},
	}
	s := ScoreFiller(f)
	if s.Score != 7 {
		t.Errorf("Score = %v, want 7 (band floor)", s.Score)
	}
	if !slices.Contains(s.Feedback, "Filler words cluster in Minute 1 (6)") {
		t.Errorf("Feedback = %q, want minute cluster message", s.Feedback)
	}
	if !slices.Contains(s.Feedback, `Most frequent filler: "um" (2 times)`) {
		t.Errorf("Feedback = %q, want most frequent filler", s.Feedback)
	}
}

func TestScorePause(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts [4]int
		want   float64
	}{
		{name: "none", counts: [4]int{20, 0, 0, 0}, want: 10},
		{name: "mixed", counts: [4]int{5, 2, 1, 0}, want: 7.5},
		{name: "capped", counts: [4]int{0, 10, 5, 4}, want: 0},
		{name: "medium cap", counts: [4]int{0, 100, 0, 0}, want: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := ScorePause(features.PauseStats{Counts: tt.counts})
			if s.Score != tt.want {
				t.Errorf("Score = %v, want %v", s.Score, tt.want)
			}
		})
	}

	if fb := ScorePause(features.PauseStats{}).Feedback; len(fb) != 1 || fb[0] != pauseGood {
		t.Errorf("no pauses: Feedback = %q", fb)
	}
}

func TestScoreVoice(t *testing.T) {
	t.Parallel()

	v := features.VoiceStats{
		PitchVariation: 5,
		PitchRange:     30,
		IntensityStd:   12,
		IntensityRange: 30,
		Duration:       time.Minute,
		VoicedFrames:   1000,
	}
	s := ScoreVoice(v)
	if s.PitchScore != 2 {
		t.Errorf("PitchScore = %v, want 2", s.PitchScore)
	}
	if s.VolumeScore != 10 {
		t.Errorf("VolumeScore = %v, want 10", s.VolumeScore)
	}
	if s.PitchAndVolume != 6 {
		t.Errorf("PitchAndVolume = %v, want 6", s.PitchAndVolume)
	}
	if s.Emphasis != 7 {
		t.Errorf("Emphasis = %v, want 7", s.Emphasis)
	}
	if s.Total != 13 {
		t.Errorf("Total = %v, want 13", s.Total)
	}
}

func TestScoreVoice_Clustered(t *testing.T) {
	t.Parallel()

	v := features.VoiceStats{
		PitchVariation: 30,
		PitchRange:     100,
		IntensityStd:   12,
		IntensityRange: 30,
		Duration:       20 * time.Second,
		Emphasis:       []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
		Distribution:   [3]int{4, 0, 0},
		VoicedFrames:   500,
	}
	s := ScoreVoice(v)
	// ratio 4/5 earns +1, clustering costs -2.
	if s.Emphasis != 9 {
		t.Errorf("Emphasis = %v, want 9", s.Emphasis)
	}
	if !slices.Contains(s.Feedback, "Spread emphasis across the whole speech instead of one section") {
		t.Errorf("Feedback = %q, want spread message", s.Feedback)
	}
}

func structureWith(g features.Grade) features.StructureStats {
	sec := func(from, to time.Duration) features.Section {
		return features.Section{From: from, To: to, Grade: g}
	}
	return features.StructureStats{
		Intro:      sec(0, 72*time.Second),
		Body:       sec(72*time.Second, 288*time.Second),
		Conclusion: sec(288*time.Second, 360*time.Second),
		Split:      features.DefaultSplit,
		Actual:     6 * time.Minute,
		Expected:   types.Duration5To7,
	}
}

func TestScoreStructure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		grade features.Grade
		want  float64
	}{
		{features.GradeExcellent, 14},
		{features.GradeGood, 10},
		{features.GradeFair, 6},
		{features.GradeWeak, 0},
	}
	for _, tt := range tests {
		s := ScoreStructure(structureWith(tt.grade))
		if s.Score != tt.want {
			t.Errorf("%s: Score = %v, want %v", tt.grade, s.Score, tt.want)
		}
		if len(s.Feedback) != 3 {
			t.Errorf("%s: Feedback = %q, want one line per section", tt.grade, s.Feedback)
		}
	}

	st := structureWith(features.GradeWeak)
	st.TooShort = true
	s := ScoreStructure(st)
	if s.Score != 0 || len(s.Feedback) != 1 || s.Feedback[0] != structureTooShort {
		t.Errorf("too short: %+v", s)
	}
}

func TestScoreTime(t *testing.T) {
	t.Parallel()

	t.Run("within range", func(t *testing.T) {
		t.Parallel()
		s := ScoreTime(structureWith(features.GradeGood))
		if s.Score != 6 {
			t.Errorf("Score = %v, want 6 (%q)", s.Score, s.Feedback)
		}
		if s.Feedback[0] != "Good time management - within expected range" {
			t.Errorf("Feedback = %q", s.Feedback)
		}
	})

	t.Run("too short and rushed", func(t *testing.T) {
		t.Parallel()
		st := structureWith(features.GradeGood)
		st.Actual = 2 * time.Minute
		st.Intro.To = 10 * time.Second
		s := ScoreTime(st)
		if s.Score != 2 {
			t.Errorf("Score = %v, want 2 (%q)", s.Score, s.Feedback)
		}
		if s.Feedback[0] != "Speech is too short. Aim for 5-7 minutes" {
			t.Errorf("Feedback[0] = %q", s.Feedback[0])
		}
		if !slices.Contains(s.Feedback, "Introduction seems rushed - take more time to set up") {
			t.Errorf("Feedback = %q, want rushed intro", s.Feedback)
		}
	})

	t.Run("open ended bucket", func(t *testing.T) {
		t.Parallel()
		st := structureWith(features.GradeGood)
		st.Expected = types.Duration15Plus
		st.Actual = 40 * time.Minute
		if s := ScoreTime(st); s.Score != 6 {
			t.Errorf("Score = %v, want 6 (%q)", s.Score, s.Feedback)
		}
		st.Actual = 5 * time.Minute
		if s := ScoreTime(st); s.Feedback[0] != "Speech is too short. Aim for at least 15 minutes" {
			t.Errorf("Feedback[0] = %q", s.Feedback[0])
		}
	})

	t.Run("unbalanced", func(t *testing.T) {
		t.Parallel()
		st := structureWith(features.GradeGood)
		st.ShareDeviation = 0.5
		if s := ScoreTime(st); s.Score != 4 {
			t.Errorf("Score = %v, want 4 (%q)", s.Score, s.Feedback)
		}
	})
}

func TestScoreEffectiveness(t *testing.T) {
	t.Parallel()

	best := features.EffectivenessStats{
		PurposeEarly:       true,
		PurposeStated:      true,
		AvgSentenceLen:     20,
		OrgMarkers:         4,
		FlowMarkers:        3,
		Questions:          3,
		DirectAddressRatio: 0.05,
		EngagingWords:      3,
		Examples:           2,
		StoryWords:         3,
		ConcludesLate:      true,
		ActionWords:        2,
		Evidence:           2,
	}
	s := ScoreEffectiveness(best, features.TopicStats{})
	if s.Total != 20 {
		t.Errorf("best Total = %v, want 20 (%+v)", s.Total, s)
	}
	if s.Feedback[0] != "Excellent clarity of purpose" {
		t.Errorf("Feedback = %q", s.Feedback)
	}

	s = ScoreEffectiveness(features.EffectivenessStats{}, features.TopicStats{})
	if s.Purpose != 10 || s.Organization != 5 || s.Engagement != 15 || s.Goal != 12 {
		t.Errorf("empty components = %+v", s)
	}
	if s.Total != 10.5 {
		t.Errorf("empty Total = %v, want 10.5", s.Total)
	}

	offTopic := features.TopicStats{Topic: "climate change", Keywords: []string{"climate", "change"}}
	if s := ScoreEffectiveness(best, offTopic); s.Purpose != 15 {
		t.Errorf("off-topic Purpose = %v, want 15", s.Purpose)
	}
}

func TestScoreTopic(t *testing.T) {
	t.Parallel()

	if s := ScoreTopic(features.TopicStats{}); s.Rating != RatingNA || s.Relevance != 0 {
		t.Errorf("no topic = %+v", s)
	}

	kw := []string{"climate"}
	s := ScoreTopic(features.TopicStats{Topic: "climate", Keywords: kw, Matches: 10, FocusShare: 1})
	if s.Relevance != 20 || s.Rating != "Highly Relevant" {
		t.Errorf("focused = %+v", s)
	}

	s = ScoreTopic(features.TopicStats{Topic: "climate", Keywords: kw, Matches: 1, FocusShare: 0.2})
	if s.Relevance != 7 || s.Rating != "Needs Focus" {
		t.Errorf("unfocused = %+v", s)
	}
	want := []string{
		"Include more references to 'climate' throughout your speech",
		"Try to maintain consistent focus on your main topic",
	}
	if !slices.Equal(s.Feedback, want) {
		t.Errorf("Feedback = %q, want %q", s.Feedback, want)
	}
}

func TestScoreVocabulary(t *testing.T) {
	t.Parallel()

	v := features.VocabStats{Words: 100, Diversity: 0.75, AdvancedRatio: 0.25}
	g := features.GrammarStats{Sentences: 10}
	if s := ScoreVocabulary(v, g); s.Total != 20 {
		t.Errorf("Total = %v, want 20 (%+v)", s.Total, s)
	}

	v.Repeated = []string{"really", "thing", "people", "stuff", "going", "think"}
	s := ScoreVocabulary(v, g)
	if s.Advanced != 4 {
		t.Errorf("Advanced = %v, want 4", s.Advanced)
	}
	if !slices.Contains(s.Feedback, "Repetitive use of words detected: really, thing, people...") {
		t.Errorf("Feedback = %q", s.Feedback)
	}

	g.Issues = make([]features.GrammarIssue, 10)
	if s := ScoreVocabulary(v, g); s.Grammar != 1 {
		t.Errorf("Grammar = %v, want 1", s.Grammar)
	}

	if s := ScoreVocabulary(features.VocabStats{}, features.GrammarStats{}); s.Total != 0 || len(s.Feedback) != 0 {
		t.Errorf("empty = %+v", s)
	}
}

func fullInput() Input {
	return Input{
		Filler:     features.FillerStats{Total: 2, Words: 200, Density: 0.01},
		Pause:      features.PauseStats{Counts: [4]int{150, 3, 1, 0}, Total: 154},
		Structure:  structureWith(features.GradeGood),
		Vocabulary: features.VocabStats{Words: 120, Unique: 70, Diversity: 70.0 / 120, AdvancedRatio: 0.12},
		Grammar:    features.GrammarStats{Sentences: 12, Issues: make([]features.GrammarIssue, 1)},
		Topic:      features.TopicStats{Topic: "climate", Keywords: []string{"climate"}, Matches: 5, FocusShare: 0.5},
		Effectiveness: features.EffectivenessStats{
			PurposeStated: true, AvgSentenceLen: 17, OrgMarkers: 2, FlowMarkers: 1,
			Questions: 1, ConcludesLate: true,
		},
		Voice: &features.VoiceStats{
			PitchVariation: 25, PitchRange: 120, IntensityStd: 12, IntensityRange: 30,
			Duration: 6 * time.Minute, VoicedFrames: 9000,
			Emphasis:     make([]time.Duration, 60),
			Distribution: [3]int{20, 20, 20},
		},
	}
}

func TestScore_OverallIsSum(t *testing.T) {
	t.Parallel()

	r := Score(fullInput())
	var sum float64
	for _, c := range Categories() {
		v := r.Scores.Get(c)
		if v < 0 || v > MaxCategory {
			t.Errorf("%s = %v out of range", c.Key(), v)
		}
		sum += v
	}
	if r.Overall != round1(sum) {
		t.Errorf("Overall = %v, want %v", r.Overall, round1(sum))
	}
	if r.Partial() {
		t.Errorf("Unavailable = %v, want none", r.Unavailable)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if r.Summary.Level == "" {
		t.Error("Summary.Level is empty")
	}
}

func TestScore_EmptyTranscriptIsPartial(t *testing.T) {
	t.Parallel()

	r := Score(Input{EmptyTranscript: true})
	want := []Category{Proficiency, VoiceModulation, SpeechDevelopment, Effectiveness, Vocabulary}
	if !slices.Equal(r.Unavailable, want) {
		t.Errorf("Unavailable = %v, want %v", r.Unavailable, want)
	}
	if r.Overall != 0 {
		t.Errorf("Overall = %v, want 0", r.Overall)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if r.Voice.Feedback[0] != voiceUnavailable {
		t.Errorf("Voice.Feedback = %q", r.Voice.Feedback)
	}
	if r.Pause.Score != 0 || r.Filler.Score != 0 || r.Structure.Score != 0 || r.Time.Score != 0 {
		t.Errorf("proficiency/development sub-scores = %v %v %v %v, want 0",
			r.Filler.Score, r.Pause.Score, r.Structure.Score, r.Time.Score)
	}
	if e := r.Effect; e.Purpose != 0 || e.Organization != 0 || e.Engagement != 0 || e.Goal != 0 || e.Total != 0 {
		t.Errorf("Effect = %+v, want zero scores", r.Effect)
	}
	if r.Topic.Rating != RatingNA || r.Vocabulary.Total != 0 {
		t.Errorf("Topic = %+v, Vocabulary = %+v", r.Topic, r.Vocabulary)
	}
	for name, fb := range map[string][]string{
		"filler": r.Filler.Feedback, "pause": r.Pause.Feedback, "structure": r.Structure.Feedback,
		"time": r.Time.Feedback, "effectiveness": r.Effect.Feedback, "topic": r.Topic.Feedback,
		"vocabulary": r.Vocabulary.Feedback,
	} {
		if !slices.Equal(fb, []string{transcriptUnavailable}) {
			t.Errorf("%s feedback = %q", name, fb)
		}
	}
}

func TestScore_VoiceFailureOnlyAffectsVoice(t *testing.T) {
	t.Parallel()

	in := fullInput()
	in.Voice = nil
	r := Score(in)
	if !slices.Equal(r.Unavailable, []Category{VoiceModulation}) {
		t.Errorf("Unavailable = %v", r.Unavailable)
	}
	if r.Scores.Get(Proficiency) == 0 {
		t.Error("proficiency dropped with voice")
	}
}

func TestResult_Validate(t *testing.T) {
	t.Parallel()

	bad := Result{Scores: Scores{25}, Overall: 25}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("out of range: err = %v", err)
	}

	mismatch := Result{Scores: Scores{10, 10}, Overall: 30}
	err := mismatch.Validate()
	if !errors.Is(err, ErrInvalidScore) || !strings.Contains(err.Error(), "sum") {
		t.Errorf("mismatch: err = %v", err)
	}

	nan := Result{Scores: Scores{math.NaN()}, Overall: 0}
	if err := nan.Validate(); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("NaN: err = %v", err)
	}
}

func TestCategoryKeys(t *testing.T) {
	t.Parallel()

	want := []string{"proficiency", "voice_modulation", "speech_development", "speech_effectiveness", "vocabulary"}
	var got []string
	for _, c := range Categories() {
		got = append(got, c.Key())
	}
	if !slices.Equal(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

func TestScorePronunciation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		stats        features.PronunciationStats
		clarity      float64
		articulation float64
		rating       string
		feedback     []string
	}{
		{
			name:     "silent",
			rating:   "Needs Improvement",
			feedback: []string{"Focus on clearer enunciation of words", "Work on articulating consonants more distinctly"},
		},
		{
			name:         "middle of both scales",
			stats:        features.PronunciationStats{SpectralCentroid: 1200, ZeroCrossingRate: 0.06},
			clarity:      12,
			articulation: 12,
			rating:       "Good",
			feedback:     []string{"Good pronunciation overall"},
		},
		{
			name:         "bright and crisp, capped",
			stats:        features.PronunciationStats{SpectralCentroid: 5000, ZeroCrossingRate: 0.3},
			clarity:      20,
			articulation: 20,
			rating:       "Excellent",
			feedback:     []string{"Excellent speech clarity!", "Great articulation!"},
		},
		{
			name:         "dull but crisp",
			stats:        features.PronunciationStats{SpectralCentroid: 800, ZeroCrossingRate: 0.09},
			clarity:      8,
			articulation: 18,
			rating:       "Good",
			feedback:     []string{"Focus on clearer enunciation of words", "Great articulation!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ScorePronunciation(tt.stats)
			if got.Clarity != tt.clarity || got.Articulation != tt.articulation {
				t.Errorf("clarity/articulation = %v/%v, want %v/%v", got.Clarity, got.Articulation, tt.clarity, tt.articulation)
			}
			if want := round1((tt.clarity + tt.articulation) / 2); got.Total != want {
				t.Errorf("Total = %v, want %v", got.Total, want)
			}
			if got.Rating != tt.rating {
				t.Errorf("Rating = %q, want %q", got.Rating, tt.rating)
			}
			if !slices.Equal(got.Feedback, tt.feedback) {
				t.Errorf("Feedback = %q, want %q", got.Feedback, tt.feedback)
			}
		})
	}
}

func TestScore_PronunciationDoesNotChangeOverall(t *testing.T) {
	t.Parallel()

	in := fullInput()
	without := Score(in)
	in.Pronunciation = &features.PronunciationStats{SpectralCentroid: 1500, ZeroCrossingRate: 0.08}
	with := Score(in)

	if without.Pronunciation != nil {
		t.Error("Pronunciation scored without measurements")
	}
	if with.Pronunciation == nil || with.Pronunciation.Total != 15.5 {
		t.Errorf("Pronunciation = %+v, want total 15.5", with.Pronunciation)
	}
	if with.Overall != without.Overall {
		t.Errorf("Overall = %v, want %v", with.Overall, without.Overall)
	}
}
