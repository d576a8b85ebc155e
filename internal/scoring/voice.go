package scoring

import (
	"time"

	"github.com/MrWong99/orator/internal/features"
)

const voiceUnavailable = "Voice characteristics could not be measured from this recording"

// rule adjusts a score by Delta when its condition holds.
type rule struct {
	When    func(a, b float64) bool
	Delta   float64
	Message string
}

// apply starts at base, adds every matching rule's delta and collects its
// message. Within a group only the first matching rule applies.
func apply(base, a, b float64, groups ...[]rule) (float64, []string) {
	score := base
	var fb []string
	for _, g := range groups {
		for _, r := range g {
			if r.When(a, b) {
				score += r.Delta
				if r.Message != "" {
					fb = append(fb, r.Message)
				}
				break
			}
		}
	}
	return score, fb
}

// Pitch rules take (standard deviation, range) in Hz.
var (
	pitchVariationRules = []rule{
		{When: func(std, _ float64) bool { return std < 8 }, Delta: -5, Message: "Your delivery is monotone. Vary your pitch to hold attention"},
		{When: func(std, _ float64) bool { return std < 15 }, Delta: -3, Message: "Add more pitch variation to sound expressive"},
		{When: func(std, _ float64) bool { return std > 60 }, Delta: -4, Message: "Pitch swings are erratic. Keep variation purposeful"},
	}
	pitchRangeRules = []rule{
		{When: func(_, rng float64) bool { return rng < 40 }, Delta: -3, Message: "Your pitch range is narrow. Let your voice rise and fall"},
		{When: func(_, rng float64) bool { return rng > 250 }, Delta: -2, Message: "Your pitch range is extreme. Avoid sudden jumps"},
	}
	pitchBonus = []rule{
		{When: func(std, rng float64) bool { return std >= 15 && std <= 50 && rng >= 50 && rng <= 200 }, Delta: 1, Message: "Good, natural pitch variation"},
	}
)

// Volume rules take (intensity standard deviation, intensity range) in dB.
var (
	volumeVariationRules = []rule{
		{When: func(std, _ float64) bool { return std > 20 }, Delta: -2, Message: "Volume is inconsistent. Keep a steadier level"},
	}
	volumeRangeRules = []rule{
		{When: func(_, rng float64) bool { return rng > 50 }, Delta: -2, Message: "Avoid sudden volume spikes and drops"},
	}
	volumeBonus = []rule{
		{When: func(std, _ float64) bool { return std >= 10 && std <= 18 }, Delta: 1, Message: "Good dynamic volume control"},
	}
)

// Emphasis rules take (points / ideal count, clustered as 0 or 1).
var (
	emphasisRateRules = []rule{
		{When: func(ratio, _ float64) bool { return ratio < 0.4 }, Delta: -3, Message: "Emphasise key points more often with pitch and volume"},
		{When: func(ratio, _ float64) bool { return ratio > 2.5 }, Delta: -2, Message: "Too many emphasised moments dilute their impact"},
		{When: func(float64, float64) bool { return true }, Delta: 1, Message: "Good use of vocal emphasis"},
	}
	emphasisSpreadRules = []rule{
		{When: func(_, clustered float64) bool { return clustered > 0 }, Delta: -2, Message: "Spread emphasis across the whole speech instead of one section"},
	}
)

// emphasisInterval is the ideal time between emphasis points.
const emphasisInterval = 4 * time.Second

// clusterShare is the share of points one third may hold before emphasis
// counts as clustered; it applies from clusterMinPoints points.
const (
	clusterShare     = 0.6
	clusterMinPoints = 3
)

// VoiceScore is the graded voice analysis.
type VoiceScore struct {
	PitchScore     float64
	VolumeScore    float64
	PitchAndVolume float64
	Emphasis       float64
	Total          float64
	Feedback       []string
}

// ScoreVoice grades pitch and volume (mean of the two, 0-10) and emphasis
// (0-10).
func ScoreVoice(v features.VoiceStats) VoiceScore {
	var s VoiceScore
	var fb, more []string

	s.PitchScore, fb = apply(10, v.PitchVariation, v.PitchRange, pitchVariationRules, pitchRangeRules, pitchBonus)
	s.PitchScore = clamp(s.PitchScore, 0, 10)

	s.VolumeScore, more = apply(10, v.IntensityStd, v.IntensityRange, volumeVariationRules, volumeRangeRules, volumeBonus)
	s.VolumeScore = clamp(s.VolumeScore, 0, 10)
	fb = append(fb, more...)

	s.PitchAndVolume = clamp((s.PitchScore+s.VolumeScore)/2, 0, 10)

	s.Emphasis, more = apply(10, emphasisRatio(v), boolf(clustered(v)), emphasisRateRules, emphasisSpreadRules)
	s.Emphasis = clamp(s.Emphasis, 0, 10)
	fb = append(fb, more...)

	s.Total = clamp(s.PitchAndVolume+s.Emphasis, 0, MaxCategory)
	s.Feedback = fb
	return s
}

func emphasisRatio(v features.VoiceStats) float64 {
	ideal := float64(v.Duration) / float64(emphasisInterval)
	if ideal <= 0 {
		return 0
	}
	return float64(v.EmphasisCount()) / ideal
}

func clustered(v features.VoiceStats) bool {
	n := v.EmphasisCount()
	if n < clusterMinPoints {
		return false
	}
	for _, c := range v.Distribution {
		if float64(c) > clusterShare*float64(n) {
			return true
		}
	}
	return false
}

func boolf(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
