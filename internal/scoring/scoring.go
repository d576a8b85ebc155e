// Package scoring turns feature measurements into bounded sub-scores, the
// 0-100 overall score and the feedback that explains them.
//
// Every score and every feedback sentence is read from the same threshold
// table, so a message can never contradict the number next to it. Scoring is
// total: any input, including an empty transcript, yields a result.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/MrWong99/orator/internal/features"
)

// MaxCategory is the ceiling of each of the five sub-scores.
const MaxCategory = 20

// Category is one of the five scored dimensions.
type Category int

const (
	Proficiency Category = iota
	VoiceModulation
	SpeechDevelopment
	Effectiveness
	Vocabulary

	numCategories
)

// Categories returns all categories in report order.
func Categories() []Category {
	return []Category{Proficiency, VoiceModulation, SpeechDevelopment, Effectiveness, Vocabulary}
}

// Key returns the wire name of the category.
func (c Category) Key() string {
	switch c {
	case Proficiency:
		return "proficiency"
	case VoiceModulation:
		return "voice_modulation"
	case SpeechDevelopment:
		return "speech_development"
	case Effectiveness:
		return "speech_effectiveness"
	case Vocabulary:
		return "vocabulary"
	default:
		return "unknown"
	}
}

// String returns the display name.
func (c Category) String() string {
	switch c {
	case Proficiency:
		return "Proficiency"
	case VoiceModulation:
		return "Voice Modulation"
	case SpeechDevelopment:
		return "Speech Development"
	case Effectiveness:
		return "Speech Effectiveness"
	case Vocabulary:
		return "Vocabulary"
	default:
		return "Unknown"
	}
}

// Input is the complete feature set of one recording.
type Input struct {
	Filler        features.FillerStats
	Pause         features.PauseStats
	Structure     features.StructureStats
	Vocabulary    features.VocabStats
	Grammar       features.GrammarStats
	Topic         features.TopicStats
	Effectiveness features.EffectivenessStats

	// Voice is nil when voice analysis failed.
	Voice *features.VoiceStats

	// Pronunciation is nil when it was not measured.
	Pronunciation *features.PronunciationStats

	// EmptyTranscript marks a recording in which no words were recognised.
	// Every transcript-derived category is then unavailable.
	EmptyTranscript bool
}

// Scores holds the five sub-scores, each in [0, 20].
type Scores [numCategories]float64

// Get returns the score of c.
func (s Scores) Get(c Category) float64 { return s[c] }

// Overall is the sum of the sub-scores, in [0, 100].
func (s Scores) Overall() float64 {
	var sum float64
	for _, v := range s {
		sum += v
	}
	return clamp(round1(sum), 0, float64(numCategories)*MaxCategory)
}

// Result is the full scoring outcome.
type Result struct {
	Filler     FillerScore
	Pause      PauseScore
	Voice      VoiceScore
	Structure  StructureScore
	Time       TimeScore
	Effect     EffectivenessScore
	Topic      TopicScore
	Vocabulary VocabScore
	Scores     Scores
	Overall    float64
	Summary    Summary

	// Pronunciation is set only when Input.Pronunciation was.
	Pronunciation *PronunciationScore

	// Unavailable lists the categories that scored 0 because their inputs
	// were missing.
	Unavailable []Category
}

// Partial reports whether any category was unavailable.
func (r Result) Partial() bool { return len(r.Unavailable) > 0 }

// Score grades every category. The overall score is always the sum of the
// five sub-scores.
func Score(in Input) Result {
	var r Result
	unavailable := make(map[Category]bool)

	if in.EmptyTranscript {
		for _, c := range []Category{Proficiency, SpeechDevelopment, Effectiveness, Vocabulary} {
			unavailable[c] = true
		}
	}
	if in.Voice == nil || in.Voice.VoicedFrames == 0 {
		unavailable[VoiceModulation] = true
	}

	if in.EmptyTranscript {
		r.scoreNoTranscript(in)
	} else {
		r.Filler = ScoreFiller(in.Filler)
		r.Pause = ScorePause(in.Pause)
		r.Structure = ScoreStructure(in.Structure)
		r.Time = ScoreTime(in.Structure)
		r.Effect = ScoreEffectiveness(in.Effectiveness, in.Topic)
		r.Topic = ScoreTopic(in.Topic)
		r.Vocabulary = ScoreVocabulary(in.Vocabulary, in.Grammar)
	}
	if unavailable[VoiceModulation] {
		r.Voice.Feedback = []string{voiceUnavailable}
	} else {
		r.Voice = ScoreVoice(*in.Voice)
	}

	if in.Pronunciation != nil {
		p := ScorePronunciation(*in.Pronunciation)
		r.Pronunciation = &p
	}

	r.Scores[Proficiency] = clamp(r.Filler.Score+r.Pause.Score, 0, MaxCategory)
	r.Scores[VoiceModulation] = r.Voice.Total
	r.Scores[SpeechDevelopment] = clamp(r.Structure.Score+r.Time.Score, 0, MaxCategory)
	r.Scores[Effectiveness] = r.Effect.Total
	r.Scores[Vocabulary] = r.Vocabulary.Total

	for _, c := range Categories() {
		if unavailable[c] {
			r.Scores[c] = 0
			r.Unavailable = append(r.Unavailable, c)
		}
		r.Scores[c] = round1(r.Scores[c])
	}
	r.Overall = r.Scores.Overall()
	r.Summary = Summarize(r.Scores, r.Overall, in.Filler.Density)
	return r
}

// transcriptUnavailable replaces the feedback of every transcript-derived
// block when no words were recognised.
const transcriptUnavailable = "No speech was recognised in this recording, so this could not be assessed"

// scoreNoTranscript fills the transcript-derived blocks with zero scores.
// Section timings are kept because they come from the recording length.
func (r *Result) scoreNoTranscript(in Input) {
	na := []string{transcriptUnavailable}
	r.Filler = FillerScore{Feedback: na}
	r.Pause = PauseScore{Feedback: na}
	r.Structure = StructureScore{
		Intro:      features.GradeWeak,
		Body:       features.GradeWeak,
		Conclusion: features.GradeWeak,
		Feedback:   na,
	}
	r.Time = ScoreTime(in.Structure)
	r.Time.Score, r.Time.Feedback = 0, na
	r.Effect = EffectivenessScore{Feedback: na}
	r.Topic = TopicScore{Rating: RatingNA, Feedback: na}
	r.Vocabulary = VocabScore{Feedback: na}
}

// ErrInvalidScore is wrapped by Validate.
var ErrInvalidScore = errors.New("scoring: invalid score")

// Validate checks the range invariants of a result. A failure indicates a
// bug, never bad input.
func (r Result) Validate() error {
	var errs []error
	var sum float64
	for _, c := range Categories() {
		v := r.Scores[c]
		if math.IsNaN(v) || v < 0 || v > MaxCategory {
			errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalidScore, c.Key(), v))
		}
		sum += v
	}
	if math.IsNaN(r.Overall) || r.Overall < 0 || r.Overall > 100 {
		errs = append(errs, fmt.Errorf("%w: overall = %v", ErrInvalidScore, r.Overall))
	}
	if math.Abs(round1(sum)-r.Overall) > 1e-9 {
		errs = append(errs, fmt.Errorf("%w: overall %v != sum %v", ErrInvalidScore, r.Overall, sum))
	}
	return errors.Join(errs...)
}
