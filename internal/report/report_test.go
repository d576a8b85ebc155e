package report_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/MrWong99/orator/internal/features"
	"github.com/MrWong99/orator/internal/report"
	"github.com/MrWong99/orator/internal/scoring"
	"github.com/MrWong99/orator/pkg/types"
)

func sampleWords() []types.Word {
	return []types.Word{
		{Text: "hello", Start: 0, End: 400 * time.Millisecond, Confidence: 0.9},
		{Text: "everyone", Start: 500 * time.Millisecond, End: time.Second, Confidence: 0.7},
		{Text: "today", Start: 3 * time.Second, End: 3400 * time.Millisecond},
	}
}

func sampleInput() scoring.Input {
	return scoring.Input{
		Filler: features.FillerStats{
			Total:   12,
			Words:   240,
			Density: 0.05,
			PerMinute: []features.MinuteCount{
				{Minute: 1, Count: 4},
				{Minute: 9, Count: 8},
			},
			Occurrences: []features.FillerOccurrence{{Phrase: "um", At: 90 * time.Second}},
		},
		Pause: features.PauseStats{Counts: [4]int{1, 1, 1, 1}, Longest: 6 * time.Second, Total: 4},
		Structure: features.StructureStats{
			Split:    features.DefaultSplit,
			Actual:   6 * time.Minute,
			Expected: types.Duration5To7,
		},
		Vocabulary: features.VocabStats{Words: 100, Unique: 60, Diversity: 0.6},
		Grammar:    features.GrammarStats{Sentences: 10},
		Voice: &features.VoiceStats{
			MeanPitch: 150.456, PitchRange: 100, PitchVariation: 25,
			IntensityStd: 12, IntensityRange: 30,
			Emphasis:     []time.Duration{2 * time.Second},
			Duration:     6 * time.Minute,
			VoicedFrames: 1000,
		},
	}
}

func meta(depth types.Depth) report.Meta {
	return report.Meta{
		AnalysisID: "a-1",
		UserID:     "user-7",
		Topic:      "climate",
		Expected:   types.Duration5To7,
		Depth:      depth,
		Gender:     types.GenderAuto,
		Format:     "wav",
		Text:       "hello everyone today",
		Words:      sampleWords(),
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Elapsed:    1500 * time.Millisecond,
	}
}

func build(t *testing.T, depth types.Depth, in scoring.Input) (report.Report, map[string]any) {
	t.Helper()
	rep := report.Build(meta(depth), in, scoring.Score(in))
	data, err := json.Marshal(rep)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return rep, doc
}

func TestBuild_WireContract(t *testing.T) {
	t.Parallel()

	rep, doc := build(t, types.DepthStandard, sampleInput())

	for _, key := range []string{
		"analysis_id", "overall_score", "scores", "filler_analysis", "pause_analysis",
		"voice_modulation_details", "speech_development_details", "vocabulary_details",
		"transcription", "duration", "topic", "status", "summary", "confidence",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	pauses := doc["pause_analysis"].(map[string]any)
	for _, label := range []string{
		"Pauses under 1.5 seconds",
		"Pauses between 1.5-3 seconds",
		"Pauses exceeding 3 seconds",
		"Pauses exceeding 5 seconds",
	} {
		if pauses[label] != float64(1) {
			t.Errorf("pause_analysis[%q] = %v, want 1", label, pauses[label])
		}
	}

	if rep.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed", rep.Status)
	}
	if rep.FillerAnalysis.FillerDensity != 0.05 {
		t.Errorf("FillerDensity = %v", rep.FillerAnalysis.FillerDensity)
	}
	if rep.VoiceModulation.PitchAnalysis.MeanPitch != 150.46 {
		t.Errorf("MeanPitch = %v, want 150.46", rep.VoiceModulation.PitchAnalysis.MeanPitch)
	}
	if len(rep.FillerAnalysis.Occurrences) != 1 {
		t.Errorf("Occurrences = %v, want 1 at standard depth", rep.FillerAnalysis.Occurrences)
	}
	if rep.Words != nil {
		t.Error("Words attached below advanced depth")
	}
	if rep.Duration.Actual != "6:00" || rep.Duration.ActualSeconds != 360 || !rep.Duration.WithinRange {
		t.Errorf("Duration = %+v", rep.Duration)
	}
	dur := doc["duration"].(map[string]any)
	if _, ok := dur["actual"].(string); !ok {
		t.Errorf("duration.actual = %T, want string", dur["actual"])
	}
	if _, ok := dur["actual_seconds"].(float64); !ok {
		t.Errorf("duration.actual_seconds = %T, want number", dur["actual_seconds"])
	}
	if rep.Confidence.MeanWordConfidence != 0.8 {
		t.Errorf("MeanWordConfidence = %v, want 0.8", rep.Confidence.MeanWordConfidence)
	}

	var sum float64
	for _, v := range doc["scores"].(map[string]any) {
		sum += v.(float64)
	}
	if diff := sum - rep.OverallScore; diff > 1e-6 || diff < -1e-6 {
		t.Errorf("overall %v != sum of scores %v", rep.OverallScore, sum)
	}
}

func TestBuild_FillerPerMinuteOrder(t *testing.T) {
	t.Parallel()

	rep := report.Build(meta(types.DepthStandard), sampleInput(), scoring.Score(sampleInput()))
	data, err := json.Marshal(rep.FillerAnalysis)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"filler_per_minute":{"Minute 2":4,"Minute 10":8}`) {
		t.Errorf("filler_analysis = %s", got)
	}
}

func TestBuild_TranscriptionWithPauses(t *testing.T) {
	t.Parallel()

	rep, _ := build(t, types.DepthStandard, sampleInput())
	want := "hello everyone [2.0 second pause] today"
	if rep.TranscriptionPauses != want {
		t.Errorf("TranscriptionPauses = %q, want %q", rep.TranscriptionPauses, want)
	}
}

func TestBuild_Depth(t *testing.T) {
	t.Parallel()

	basic, _ := build(t, types.DepthBasic, sampleInput())
	if basic.FillerAnalysis.Occurrences != nil || basic.VoiceModulation.EmphasisAnalysis.Points != nil {
		t.Error("basic depth attached per-item evidence")
	}

	adv, _ := build(t, types.DepthAdvanced, sampleInput())
	if len(adv.Words) != 3 || adv.Words[1].Word != "everyone" || adv.Words[1].Start != 0.5 {
		t.Errorf("Words = %+v", adv.Words)
	}
}

func TestBuild_PronunciationAboveBasic(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Pronunciation = &features.PronunciationStats{SpectralCentroid: 1234.56, ZeroCrossingRate: 0.08123}

	basic, doc := build(t, types.DepthBasic, in)
	if basic.Pronunciation != nil {
		t.Error("basic depth attached pronunciation")
	}
	if _, ok := doc["pronunciation"]; ok {
		t.Error("basic depth serialised a pronunciation key")
	}

	std, doc := build(t, types.DepthStandard, in)
	p := std.Pronunciation
	if p == nil {
		t.Fatal("standard depth has no pronunciation block")
	}
	if p.SpectralCentroid != 1234.6 || p.ZeroCrossingRate != 0.0812 {
		t.Errorf("measurements = %v, %v", p.SpectralCentroid, p.ZeroCrossingRate)
	}
	if p.ClarityScore != 12.3 || p.ArticulationScore != 16.2 || p.Rating != "Good" {
		t.Errorf("Pronunciation = %+v", p)
	}
	block := doc["pronunciation"].(map[string]any)
	for _, key := range []string{"pronunciation_score", "clarity_score", "articulation_score", "rating", "feedback"} {
		if _, ok := block[key]; !ok {
			t.Errorf("pronunciation missing %q", key)
		}
	}
}

func TestBuild_DurationClock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		actual time.Duration
		want   string
	}{
		{0, "0:00"},
		{9 * time.Second, "0:09"},
		{89600 * time.Millisecond, "1:30"},
		{16*time.Minute + 5*time.Second, "16:05"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			in := sampleInput()
			in.Structure.Actual = tt.actual
			rep, _ := build(t, types.DepthBasic, in)
			if rep.Duration.Actual != tt.want {
				t.Errorf("Actual = %q, want %q", rep.Duration.Actual, tt.want)
			}
		})
	}
}

func TestBuild_EmptyTranscriptIsPartial(t *testing.T) {
	t.Parallel()

	in := scoring.Input{EmptyTranscript: true, Structure: features.StructureStats{TooShort: true}}
	rep, doc := build(t, types.DepthStandard, in)

	if rep.Status != types.StatusPartial {
		t.Errorf("Status = %q, want partial", rep.Status)
	}
	if rep.OverallScore != 0 {
		t.Errorf("OverallScore = %v", rep.OverallScore)
	}
	if !rep.Confidence.Transcription || !rep.Confidence.Voice {
		t.Errorf("Confidence = %+v", rep.Confidence)
	}
	fa := doc["filler_analysis"].(map[string]any)
	if fa["filler_density"] != float64(0) {
		t.Errorf("filler_density = %v", fa["filler_density"])
	}
	if _, ok := fa["filler_per_minute"].(map[string]any); !ok {
		t.Errorf("filler_per_minute = %v, want empty object", fa["filler_per_minute"])
	}
	if len(rep.UnavailableSubscores) != 5 {
		t.Errorf("UnavailableSubscores = %v", rep.UnavailableSubscores)
	}

	pd := rep.ProficiencyDetails
	if pd.FillerScore != 0 || pd.PauseScore != 0 {
		t.Errorf("ProficiencyDetails = %+v, want zero sub-scores", pd)
	}
	if rep.SpeechDevelopment.Structure.Score != 0 || rep.SpeechDevelopment.TimeUtilization.Score != 0 {
		t.Errorf("SpeechDevelopment = %+v, want zero sub-scores", rep.SpeechDevelopment)
	}
	se := rep.SpeechEffectiveness
	if se.PurposeClarity != 0 || se.Organization != 0 || se.AudienceEngagement != 0 || se.GoalAchievement != 0 {
		t.Errorf("SpeechEffectiveness = %+v, want zero sub-scores", se)
	}
	if se.TopicRelevance.Rating != scoring.RatingNA {
		t.Errorf("topic rating = %q, want %q", se.TopicRelevance.Rating, scoring.RatingNA)
	}
	vd := rep.VocabularyDetails
	if vd.DiversityScore != 0 || vd.AdvancedScore != 0 || vd.GrammarScore != 0 {
		t.Errorf("VocabularyDetails = %+v, want zero sub-scores", vd)
	}

	for name, fb := range map[string][]string{
		"filler":        rep.FillerAnalysis.Feedback,
		"pause":         pd.PauseFeedback,
		"structure":     rep.SpeechDevelopment.Structure.Feedback,
		"time":          rep.SpeechDevelopment.TimeUtilization.Feedback,
		"effectiveness": se.Feedback,
		"topic":         se.TopicRelevance.Feedback,
		"vocabulary":    vd.Feedback,
	} {
		if len(fb) != 1 || !strings.Contains(fb[0], "No speech was recognised") {
			t.Errorf("%s feedback = %q, want the unavailable message", name, fb)
		}
	}
}

func TestQuick(t *testing.T) {
	t.Parallel()

	rep, _ := build(t, types.DepthBasic, sampleInput())
	q := report.Quick(rep)
	if q.WordCount != 3 || q.FillerCount != 12 || q.OverallScore != rep.OverallScore {
		t.Errorf("Quick = %+v", q)
	}
	if q.Duration != "6:00" || q.DurationSecs != 360 {
		t.Errorf("Duration = %q (%v), want 6:00 (360)", q.Duration, q.DurationSecs)
	}
	if q.VoiceScore != rep.Scores.VoiceModulation {
		t.Errorf("VoiceScore = %v, want %v", q.VoiceScore, rep.Scores.VoiceModulation)
	}
}

func TestMinuteCounts_RoundTrip(t *testing.T) {
	t.Parallel()

	in := report.NewMinuteCounts(
		report.MinuteCount{Label: "Minute 3", Count: 2},
		report.MinuteCount{Label: "Minute 12", Count: 5},
	)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"Minute 3":2,"Minute 12":5}` {
		t.Errorf("Marshal = %s", data)
	}
	var out report.MinuteCounts
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := []report.MinuteCount{{Label: "Minute 3", Count: 2}, {Label: "Minute 12", Count: 5}}
	if got := out.Entries(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
	if out.Get("Minute 12") != 5 || out.Get("Minute 1") != 0 {
		t.Errorf("Get = %d, %d", out.Get("Minute 12"), out.Get("Minute 1"))
	}
	if err := json.Unmarshal([]byte(`[1]`), &out); err == nil {
		t.Error("Unmarshal of array succeeded")
	}

	var zero report.MinuteCounts
	if data, err := json.Marshal(zero); err != nil || string(data) != "{}" {
		t.Errorf("zero value = %s, %v; want {}", data, err)
	}
}
