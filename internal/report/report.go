// Package report assembles the typed analysis outcome into the JSON response
// contract.
//
// Everything upstream works with typed features and scores; this package is
// the only place that knows wire names, rounding and the verbatim pause
// labels. A [Report] is built once per analysis and never mutated.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/internal/scoring"
	"github.com/MrWong99/orator/internal/transcript"
	"github.com/MrWong99/orator/pkg/types"
)

// PauseMarkerMin is the shortest gap annotated in transcription_with_pauses.
const PauseMarkerMin = features.PauseMediumFrom

// Meta describes the request and recording an analysis belongs to.
type Meta struct {
	AnalysisID string
	UserID     string
	Title      string
	Topic      string
	Expected   types.DurationBucket
	Depth      types.Depth
	Gender     types.Gender

	// Format is the detected container; Size the upload size in bytes.
	Format     string
	Size       int64
	SampleRate int

	// Provider names the STT backend that produced the transcript.
	Provider string

	Text  string
	Words []types.Word

	CreatedAt time.Time
	Elapsed   time.Duration
}

// Report is the full analysis response.
type Report struct {
	AnalysisID  string       `json:"analysis_id"`
	UserID      string       `json:"user_id"`
	Status      types.Status `json:"status"`
	SpeechTitle string       `json:"speech_title,omitempty"`
	Topic       string       `json:"topic"`

	OverallScore float64 `json:"overall_score"`
	Scores       Scores  `json:"scores"`

	FillerAnalysis       FillerAnalysis       `json:"filler_analysis"`
	PauseAnalysis        PauseAnalysis        `json:"pause_analysis"`
	ProficiencyDetails   ProficiencyDetails   `json:"proficiency_details"`
	VoiceModulation      VoiceDetails         `json:"voice_modulation_details"`
	SpeechDevelopment    DevelopmentDetails   `json:"speech_development_details"`
	SpeechEffectiveness  EffectivenessDetails `json:"speech_effectiveness_details"`
	VocabularyDetails    VocabularyDetails    `json:"vocabulary_details"`
	Pronunciation        *Pronunciation       `json:"pronunciation,omitempty"`
	Summary              Summary              `json:"summary"`
	Confidence           Confidence           `json:"confidence"`
	Transcription        string               `json:"transcription"`
	TranscriptionPauses  string               `json:"transcription_with_pauses"`
	WordCount            int                  `json:"word_count"`
	Words                []WordTiming         `json:"words,omitempty"`
	Duration             Duration             `json:"duration"`
	Recording            Recording            `json:"recording"`
	UnavailableSubscores []string             `json:"unavailable_subscores,omitempty"`
	Metadata             Metadata             `json:"metadata"`
}

// Scores are the five sub-scores, each in [0, 20].
type Scores struct {
	Proficiency         float64 `json:"proficiency"`
	VoiceModulation     float64 `json:"voice_modulation"`
	SpeechDevelopment   float64 `json:"speech_development"`
	SpeechEffectiveness float64 `json:"speech_effectiveness"`
	Vocabulary          float64 `json:"vocabulary"`
}

// FillerAnalysis is the filler-word evidence.
type FillerAnalysis struct {
	TotalFillerWords int          `json:"total_filler_words"`
	FillerDensity    float64      `json:"filler_density"`
	FillerPerMinute  MinuteCounts `json:"filler_per_minute"`
	Score            float64      `json:"score"`
	Feedback         []string     `json:"feedback"`
	Occurrences      []FillerHit  `json:"occurrences,omitempty"`
}

// FillerHit is one detected filler phrase.
type FillerHit struct {
	Word string  `json:"word"`
	Time float64 `json:"time"`
}

// PauseAnalysis holds the gap counts under their verbatim labels.
type PauseAnalysis struct {
	Short    int `json:"Pauses under 1.5 seconds"`
	Medium   int `json:"Pauses between 1.5-3 seconds"`
	Long     int `json:"Pauses exceeding 3 seconds"`
	VeryLong int `json:"Pauses exceeding 5 seconds"`
}

// ProficiencyDetails splits the proficiency score into its two halves.
type ProficiencyDetails struct {
	FillerScore   float64  `json:"filler_score"`
	PauseScore    float64  `json:"pause_score"`
	TotalPauses   int      `json:"total_pauses"`
	LongestPause  float64  `json:"longest_pause"`
	PauseFeedback []string `json:"pause_feedback"`
	Score         float64  `json:"score"`
}

// VoiceDetails is the pitch, volume and emphasis evidence.
type VoiceDetails struct {
	PitchAnalysis    PitchAnalysis    `json:"pitch_analysis"`
	VolumeAnalysis   VolumeAnalysis   `json:"volume_analysis"`
	EmphasisAnalysis EmphasisAnalysis `json:"emphasis_analysis"`
	Scores           VoiceScores      `json:"scores"`
	AudioQuality     float64          `json:"audio_quality"`
	Feedback         []string         `json:"feedback"`
}

type PitchAnalysis struct {
	MeanPitch      float64 `json:"mean_pitch"`
	PitchRange     float64 `json:"pitch_range"`
	PitchVariation float64 `json:"pitch_variation"`
}

type VolumeAnalysis struct {
	MeanIntensity  float64 `json:"mean_intensity"`
	IntensityRange float64 `json:"intensity_range"`
}

type EmphasisAnalysis struct {
	EmphasisPointsCount int `json:"emphasis_points_count"`

	// Distribution counts points in the first, middle and last third.
	Distribution EmphasisThirds `json:"distribution"`
	Points       []float64      `json:"emphasis_points,omitempty"`
}

type EmphasisThirds struct {
	Beginning int `json:"beginning"`
	Middle    int `json:"middle"`
	End       int `json:"end"`
}

type VoiceScores struct {
	PitchAndVolumeScore float64 `json:"pitch_and_volume_score"`
	EmphasisScore       float64 `json:"emphasis_score"`
	TotalScore          float64 `json:"total_score"`
}

// DevelopmentDetails is the structure and time evidence.
type DevelopmentDetails struct {
	Structure       StructureDetails `json:"structure"`
	TimeUtilization TimeDetails      `json:"time_utilization"`
	Score           float64          `json:"score"`
}

type StructureDetails struct {
	IntroductionQuality string          `json:"introduction_quality"`
	BodyDevelopment     string          `json:"body_development"`
	ConclusionQuality   string          `json:"conclusion_quality"`
	SectionSentences    SectionCounts   `json:"section_sentences"`
	Split               SectionFraction `json:"split"`
	Score               float64         `json:"score"`
	Feedback            []string        `json:"feedback"`
}

type SectionCounts struct {
	Introduction int `json:"introduction"`
	Body         int `json:"body"`
	Conclusion   int `json:"conclusion"`
}

type SectionFraction struct {
	Introduction float64 `json:"introduction"`
	Body         float64 `json:"body"`
	Conclusion   float64 `json:"conclusion"`
}

// TimeDetails reports section spans in seconds.
type TimeDetails struct {
	TotalTime      float64  `json:"total_time"`
	IntroTime      float64  `json:"intro_time"`
	BodyTime       float64  `json:"body_time"`
	ConclusionTime float64  `json:"conclusion_time"`
	Score          float64  `json:"score"`
	Feedback       []string `json:"feedback"`
}

// EffectivenessDetails is the rhetorical and topic evidence.
type EffectivenessDetails struct {
	PurposeClarity     float64        `json:"purpose_clarity"`
	Organization       float64        `json:"organization"`
	AudienceEngagement float64        `json:"audience_engagement"`
	GoalAchievement    float64        `json:"goal_achievement"`
	Score              float64        `json:"score"`
	Feedback           []string       `json:"feedback"`
	TopicRelevance     TopicRelevance `json:"topic_relevance"`
}

type TopicRelevance struct {
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords"`
	MatchedKeywords []string `json:"matched_keywords"`
	KeywordMatches  int      `json:"keyword_matches"`
	RelevanceScore  float64  `json:"relevance_score"`
	FocusScore      float64  `json:"focus_score"`
	Rating          string   `json:"rating"`
	Feedback        []string `json:"feedback"`
}

// VocabularyDetails is the lexical and grammar evidence.
type VocabularyDetails struct {
	TotalWords         int            `json:"total_words"`
	UniqueWords        int            `json:"unique_words"`
	LexicalDiversity   float64        `json:"lexical_diversity"`
	AdvancedVocabCount int            `json:"advanced_vocab_count"`
	AdvancedExamples   []string       `json:"advanced_examples"`
	RepeatedWords      []string       `json:"repeated_words"`
	GrammarIssues      int            `json:"grammar_issues"`
	GrammarDetails     []GrammarIssue `json:"grammar_details,omitempty"`
	DiversityScore     float64        `json:"diversity_score"`
	AdvancedScore      float64        `json:"advanced_score"`
	GrammarScore       float64        `json:"grammar_score"`
	Score              float64        `json:"score"`
	Feedback           []string       `json:"feedback"`
}

type GrammarIssue struct {
	Kind     string `json:"kind"`
	Sentence int    `json:"sentence"`
	Text     string `json:"text"`
}

// Pronunciation is the clarity and articulation block, attached above basic
// depth. It is informational and not part of the overall score.
type Pronunciation struct {
	PronunciationScore float64  `json:"pronunciation_score"`
	ClarityScore       float64  `json:"clarity_score"`
	ArticulationScore  float64  `json:"articulation_score"`
	SpectralCentroid   float64  `json:"spectral_centroid"`
	ZeroCrossingRate   float64  `json:"zero_crossing_rate"`
	Rating             string   `json:"rating"`
	Feedback           []string `json:"feedback"`
}

// Summary is the coaching block.
type Summary struct {
	PerformanceLevel    string             `json:"performance_level"`
	CategoryPercentages map[string]float64 `json:"category_percentages"`
	Strengths           []string           `json:"strengths"`
	AreasForImprovement []string           `json:"areas_for_improvement"`
	Suggestions         []string           `json:"suggestions"`
	SpecificTips        []Tip              `json:"specific_tips"`
}

type Tip struct {
	Area string   `json:"area"`
	Tips []string `json:"tips"`
}

// Confidence flags extractors whose output rests on too little input. A true
// value means low confidence.
type Confidence struct {
	Transcription bool `json:"transcription"`
	Voice         bool `json:"voice"`
	Structure     bool `json:"structure"`
	Vocabulary    bool `json:"vocabulary"`
	Grammar       bool `json:"grammar"`

	// MeanWordConfidence averages the provider's word confidences, 0 when the
	// provider reports none.
	MeanWordConfidence float64 `json:"mean_word_confidence"`
}

// WordTiming is one transcript word with offsets in seconds.
type WordTiming struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Duration reports the recording length. Actual is formatted as m:ss.
type Duration struct {
	Actual        string  `json:"actual"`
	ActualSeconds float64 `json:"actual_seconds"`
	Expected      string  `json:"expected"`
	WithinRange   bool    `json:"within_range"`
}

type Recording struct {
	Format     string `json:"format"`
	SizeBytes  int64  `json:"size_bytes"`
	SampleRate int    `json:"sample_rate"`
}

type Metadata struct {
	AnalysisDepth  string    `json:"analysis_depth"`
	Gender         string    `json:"gender"`
	STTProvider    string    `json:"stt_provider"`
	ProcessingTime float64   `json:"processing_time"`
	Timestamp      time.Time `json:"timestamp"`
}

// Build assembles the report for one scored recording. The depth controls
// how much raw evidence is attached: basic omits per-item lists, advanced adds
// the word timings.
func Build(m Meta, in scoring.Input, r scoring.Result) Report {
	status := types.StatusCompleted
	if r.Partial() {
		status = types.StatusPartial
	}
	detailed := m.Depth != types.DepthBasic

	rep := Report{
		AnalysisID:   m.AnalysisID,
		UserID:       m.UserID,
		Status:       status,
		SpeechTitle:  m.Title,
		Topic:        m.Topic,
		OverallScore: r.Overall,
		Scores: Scores{
			Proficiency:         r.Scores.Get(scoring.Proficiency),
			VoiceModulation:     r.Scores.Get(scoring.VoiceModulation),
			SpeechDevelopment:   r.Scores.Get(scoring.SpeechDevelopment),
			SpeechEffectiveness: r.Scores.Get(scoring.Effectiveness),
			Vocabulary:          r.Scores.Get(scoring.Vocabulary),
		},
		FillerAnalysis:      fillerAnalysis(in.Filler, r.Filler, detailed),
		PauseAnalysis:       pauseAnalysis(in.Pause),
		ProficiencyDetails:  proficiencyDetails(in.Pause, r),
		VoiceModulation:     voiceDetails(in.Voice, r.Voice, detailed),
		SpeechDevelopment:   developmentDetails(in.Structure, r),
		SpeechEffectiveness: effectivenessDetails(in.Topic, r),
		VocabularyDetails:   vocabularyDetails(in.Vocabulary, in.Grammar, r.Vocabulary, detailed),
		Summary:             summary(r.Summary),
		Confidence:          confidence(m.Words, in),
		Transcription:       m.Text,
		TranscriptionPauses: transcript.WithPauses(m.Words, PauseMarkerMin),
		WordCount:           len(m.Words),
		Duration: Duration{
			Actual:        clock(in.Structure.Actual),
			ActualSeconds: seconds(in.Structure.Actual),
			Expected:      string(m.Expected),
			WithinRange:   r.Time.InRange,
		},
		Recording: Recording{Format: m.Format, SizeBytes: m.Size, SampleRate: m.SampleRate},
		Metadata: Metadata{
			AnalysisDepth:  string(m.Depth),
			Gender:         string(m.Gender),
			STTProvider:    m.Provider,
			ProcessingTime: round(m.Elapsed.Seconds(), 2),
			Timestamp:      m.CreatedAt.UTC(),
		},
	}
	for _, c := range r.Unavailable {
		rep.UnavailableSubscores = append(rep.UnavailableSubscores, c.Key())
	}
	if detailed && in.Pronunciation != nil && r.Pronunciation != nil {
		rep.Pronunciation = pronunciation(*in.Pronunciation, *r.Pronunciation)
	}
	if m.Depth == types.DepthAdvanced {
		rep.Words = wordTimings(m.Words)
	}
	return rep
}

func pronunciation(p features.PronunciationStats, s scoring.PronunciationScore) *Pronunciation {
	return &Pronunciation{
		PronunciationScore: s.Total,
		ClarityScore:       s.Clarity,
		ArticulationScore:  s.Articulation,
		SpectralCentroid:   round(p.SpectralCentroid, 1),
		ZeroCrossingRate:   round(p.ZeroCrossingRate, 4),
		Rating:             s.Rating,
		Feedback:           nonNil(s.Feedback),
	}
}

func fillerAnalysis(f features.FillerStats, s scoring.FillerScore, detailed bool) FillerAnalysis {
	fa := FillerAnalysis{
		TotalFillerWords: f.Total,
		FillerDensity:    round(f.Density, 4),
		FillerPerMinute:  minuteCounts(f.PerMinute),
		Score:            round(s.Score, 1),
		Feedback:         nonNil(s.Feedback),
	}
	if detailed {
		for _, o := range f.Occurrences {
			fa.Occurrences = append(fa.Occurrences, FillerHit{Word: o.Phrase, Time: seconds(o.At)})
		}
	}
	return fa
}

func pauseAnalysis(p features.PauseStats) PauseAnalysis {
	return PauseAnalysis{
		Short:    p.Count(features.PauseShort),
		Medium:   p.Count(features.PauseMedium),
		Long:     p.Count(features.PauseLong),
		VeryLong: p.Count(features.PauseVeryLong),
	}
}

func proficiencyDetails(p features.PauseStats, r scoring.Result) ProficiencyDetails {
	return ProficiencyDetails{
		FillerScore:   round(r.Filler.Score, 1),
		PauseScore:    round(r.Pause.Score, 1),
		TotalPauses:   p.Total,
		LongestPause:  seconds(p.Longest),
		PauseFeedback: nonNil(r.Pause.Feedback),
		Score:         r.Scores.Get(scoring.Proficiency),
	}
}

func voiceDetails(v *features.VoiceStats, s scoring.VoiceScore, detailed bool) VoiceDetails {
	d := VoiceDetails{
		Scores: VoiceScores{
			PitchAndVolumeScore: round(s.PitchAndVolume, 1),
			EmphasisScore:       round(s.Emphasis, 1),
			TotalScore:          round(s.Total, 1),
		},
		Feedback: nonNil(s.Feedback),
	}
	if v == nil {
		return d
	}
	d.PitchAnalysis = PitchAnalysis{
		MeanPitch:      round(v.MeanPitch, 2),
		PitchRange:     round(v.PitchRange, 2),
		PitchVariation: round(v.PitchVariation, 2),
	}
	d.VolumeAnalysis = VolumeAnalysis{
		MeanIntensity:  round(v.MeanIntensity, 2),
		IntensityRange: round(v.IntensityRange, 2),
	}
	d.EmphasisAnalysis = EmphasisAnalysis{
		EmphasisPointsCount: v.EmphasisCount(),
		Distribution: EmphasisThirds{
			Beginning: v.Distribution[0],
			Middle:    v.Distribution[1],
			End:       v.Distribution[2],
		},
	}
	if detailed {
		for _, at := range v.Emphasis {
			d.EmphasisAnalysis.Points = append(d.EmphasisAnalysis.Points, seconds(at))
		}
	}
	d.AudioQuality = round(v.Quality, 2)
	return d
}

func developmentDetails(st features.StructureStats, r scoring.Result) DevelopmentDetails {
	return DevelopmentDetails{
		Structure: StructureDetails{
			IntroductionQuality: string(r.Structure.Intro),
			BodyDevelopment:     string(r.Structure.Body),
			ConclusionQuality:   string(r.Structure.Conclusion),
			SectionSentences: SectionCounts{
				Introduction: st.Intro.Sentences,
				Body:         st.Body.Sentences,
				Conclusion:   st.Conclusion.Sentences,
			},
			Split: SectionFraction{
				Introduction: st.Split.Intro,
				Body:         round(st.Split.Body(), 4),
				Conclusion:   st.Split.Conclusion,
			},
			Score:    round(r.Structure.Score, 1),
			Feedback: nonNil(r.Structure.Feedback),
		},
		TimeUtilization: TimeDetails{
			TotalTime:      seconds(r.Time.Total),
			IntroTime:      seconds(r.Time.Intro),
			BodyTime:       seconds(r.Time.Body),
			ConclusionTime: seconds(r.Time.Conclusion),
			Score:          round(r.Time.Score, 1),
			Feedback:       nonNil(r.Time.Feedback),
		},
		Score: r.Scores.Get(scoring.SpeechDevelopment),
	}
}

func effectivenessDetails(t features.TopicStats, r scoring.Result) EffectivenessDetails {
	e := r.Effect
	return EffectivenessDetails{
		PurposeClarity:     round(e.Purpose, 1),
		Organization:       round(e.Organization, 1),
		AudienceEngagement: round(e.Engagement, 1),
		GoalAchievement:    round(e.Goal, 1),
		Score:              r.Scores.Get(scoring.Effectiveness),
		Feedback:           nonNil(e.Feedback),
		TopicRelevance: TopicRelevance{
			Topic:           t.Topic,
			Keywords:        nonNil(t.Keywords),
			MatchedKeywords: nonNil(t.Covered),
			KeywordMatches:  t.Matches,
			RelevanceScore:  round(r.Topic.Relevance, 1),
			FocusScore:      round(r.Topic.Focus, 1),
			Rating:          r.Topic.Rating,
			Feedback:        nonNil(r.Topic.Feedback),
		},
	}
}

func vocabularyDetails(v features.VocabStats, g features.GrammarStats, s scoring.VocabScore, detailed bool) VocabularyDetails {
	d := VocabularyDetails{
		TotalWords:         v.Words,
		UniqueWords:        v.Unique,
		LexicalDiversity:   round(v.Diversity, 4),
		AdvancedVocabCount: v.Advanced,
		AdvancedExamples:   nonNil(v.AdvancedExamples),
		RepeatedWords:      nonNil(v.Repeated),
		GrammarIssues:      len(g.Issues),
		DiversityScore:     s.Diversity,
		AdvancedScore:      s.Advanced,
		GrammarScore:       s.Grammar,
		Score:              round(s.Total, 1),
		Feedback:           nonNil(s.Feedback),
	}
	if detailed {
		for _, is := range g.Issues {
			d.GrammarDetails = append(d.GrammarDetails, GrammarIssue{Kind: string(is.Kind), Sentence: is.Sentence, Text: is.Text})
		}
	}
	return d
}

func summary(s scoring.Summary) Summary {
	out := Summary{
		PerformanceLevel:    s.Level,
		CategoryPercentages: make(map[string]float64, len(s.Percent)),
		Strengths:           nonNil(s.Strengths),
		AreasForImprovement: nonNil(s.Areas),
		Suggestions:         nonNil(s.Suggestions),
		SpecificTips:        []Tip{},
	}
	for c, p := range s.Percent {
		out.CategoryPercentages[c.Key()] = p
	}
	for _, t := range s.Tips {
		out.SpecificTips = append(out.SpecificTips, Tip{Area: t.Area, Tips: t.Items})
	}
	return out
}

func confidence(words []types.Word, in scoring.Input) Confidence {
	c := Confidence{
		Transcription: in.EmptyTranscript,
		Voice:         in.Voice == nil || in.Voice.LowConfidence,
		Structure:     in.Structure.TooShort,
		Vocabulary:    in.Vocabulary.Words == 0,
		Grammar:       in.Grammar.Sentences == 0,
	}
	var sum float64
	var n int
	for _, w := range words {
		if w.Confidence > 0 {
			sum += w.Confidence
			n++
		}
	}
	if n > 0 {
		c.MeanWordConfidence = round(sum/float64(n), 3)
	}
	return c
}

func wordTimings(words []types.Word) []WordTiming {
	out := make([]WordTiming, len(words))
	for i, w := range words {
		out[i] = WordTiming{Word: w.Text, Start: seconds(w.Start), End: seconds(w.End), Confidence: round(w.Confidence, 3)}
	}
	return out
}

// seconds converts d to seconds with two decimals.
func seconds(d time.Duration) float64 { return round(d.Seconds(), 2) }

// clock formats d as m:ss, rounded to the nearest second.
func clock(d time.Duration) string {
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// nonNil keeps empty lists as [] on the wire.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
