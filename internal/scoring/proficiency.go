package scoring

import (
	"fmt"

	"github.com/MrWong99/orator/internal/features"
)

// FillerTable maps filler density to the 0-10 filler score.
var FillerTable = Table{
	Bands: []Band{
		{Min: 0, Hi: 10, Lo: 9, Label: "Excellent control of filler words"},
		{Min: 0.03, Hi: 8, Lo: 7, Label: "Good control of filler words, with a few slips"},
		{Min: 0.05, Hi: 6, Lo: 4, Label: "Noticeable filler words. Pause silently instead of filling the gap"},
		{Min: 0.10, Hi: 3, Lo: 2, Label: "Frequent filler words distract from your message"},
		{Min: 0.15, Hi: 1, Lo: 0, Label: "Filler words dominate the speech. Practise pausing instead of saying 'um' or 'uh'"},
	},
	End: 0.30,
}

// fillerMinutePenalty is subtracted for the worst minute's filler count.
var fillerMinutePenalty = Descending{
	{Min: 9, Hi: 3, Lo: 3},
	{Min: 6, Hi: 2, Lo: 2},
	{Min: 3, Hi: 1, Lo: 1},
	{Min: 0, Hi: 0, Lo: 0},
}

// FillerScore is the graded filler analysis.
type FillerScore struct {
	Score    float64
	Band     Band
	Feedback []string
}

// ScoreFiller grades filler density, then subtracts a penalty for a burst of
// fillers in a single minute without leaving the density band.
func ScoreFiller(f features.FillerStats) FillerScore {
	band := FillerTable.Band(f.Density)
	score := FillerTable.Score(f.Density)
	fb := []string{band.Label}

	if pen := fillerMinutePenalty.Band(float64(f.WorstMinute())).Hi; pen > 0 {
		score = max(score-pen, band.Lo)
		for _, m := range f.PerMinute {
			if m.Count == f.WorstMinute() {
				fb = append(fb, fmt.Sprintf("Filler words cluster in %s (%d)", m.Label(), m.Count))
				break
			}
		}
	}
	if top, n := mostUsed(f.Occurrences); n > 1 {
		fb = append(fb, fmt.Sprintf("Most frequent filler: %q (%d times)", top, n))
	}
	return FillerScore{Score: clamp(score, 0, 10), Band: band, Feedback: fb}
}

func mostUsed(occ []features.FillerOccurrence) (string, int) {
	counts := make(map[string]int)
	var best string
	for _, o := range occ {
		counts[o.Phrase]++
		if c := counts[o.Phrase]; c > counts[best] || (c == counts[best] && o.Phrase < best) {
			best = o.Phrase
		}
	}
	return best, counts[best]
}

// pauseRule penalises each pause in a bucket up to a cap.
type pauseRule struct {
	Bucket  features.PauseBucket
	Each    float64
	Cap     float64
	Message string
}

// PauseRules are the per-bucket penalties of the 0-10 pause score. Pauses
// under 1.5 s are free.
var PauseRules = []pauseRule{
	{Bucket: features.PauseMedium, Each: 0.5, Cap: 3, Message: "Several 1.5-3 second pauses. Use them deliberately, for emphasis"},
	{Bucket: features.PauseLong, Each: 1.5, Cap: 6, Message: "Pauses of 3-5 seconds break your flow. Keep pauses shorter"},
	{Bucket: features.PauseVeryLong, Each: 2.5, Cap: 8, Message: "Pauses over 5 seconds lose the audience. Prepare transitions to avoid them"},
}

const pauseGood = "Good pacing with natural pauses"

// PauseScore is the graded pause analysis.
type PauseScore struct {
	Score    float64
	Feedback []string
}

// ScorePause starts at 10 and subtracts each bucket's capped penalty.
func ScorePause(p features.PauseStats) PauseScore {
	score := 10.0
	var fb []string
	for _, r := range PauseRules {
		n := p.Count(r.Bucket)
		if n == 0 {
			continue
		}
		score -= min(float64(n)*r.Each, r.Cap)
		fb = append(fb, r.Message)
	}
	if len(fb) == 0 {
		fb = []string{pauseGood}
	}
	return PauseScore{Score: clamp(score, 0, 10), Feedback: fb}
}
