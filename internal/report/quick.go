package report

import "github.com/MrWong99/orator/pkg/types"

// QuickReport is the reduced response of the quick-analyze endpoint.
type QuickReport struct {
	AnalysisID    string       `json:"analysis_id"`
	Status        types.Status `json:"status"`
	OverallScore  float64      `json:"overall_score"`
	Scores        Scores       `json:"scores"`
	Transcription string       `json:"transcription"`
	Duration      string       `json:"duration"`
	DurationSecs  float64      `json:"duration_seconds"`
	WordCount     int          `json:"word_count"`
	FillerCount   int          `json:"filler_count"`
	PitchScore    float64      `json:"pitch_score"`
	VoiceScore    float64      `json:"voice_score"`
	Summary       Summary      `json:"summary"`
}

// Quick projects a full report onto the quick-analyze contract.
func Quick(r Report) QuickReport {
	return QuickReport{
		AnalysisID:    r.AnalysisID,
		Status:        r.Status,
		OverallScore:  r.OverallScore,
		Scores:        r.Scores,
		Transcription: r.Transcription,
		Duration:      r.Duration.Actual,
		DurationSecs:  r.Duration.ActualSeconds,
		WordCount:     r.WordCount,
		FillerCount:   r.FillerAnalysis.TotalFillerWords,
		PitchScore:    r.VoiceModulation.Scores.PitchAndVolumeScore,
		VoiceScore:    r.VoiceModulation.Scores.TotalScore,
		Summary:       r.Summary,
	}
}
