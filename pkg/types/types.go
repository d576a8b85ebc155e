// Package types defines the shared types used across all Orator packages.
//
// These types form the lingua franca between the HTTP surface, the STT
// providers, the feature extractors and the scoring engine. Each package owns
// its own domain types; cross-cutting request enums and the word-level
// transcript unit live here to avoid circular imports.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Word is one recognised token with its position in the recording.
// Start is always strictly before End for words produced by a provider.
type Word struct {
	// Text is the word as recognised, including any trailing punctuation the
	// provider emits (e.g. "today.").
	Text string

	// Start is the offset of the first sample of the word from the start of
	// the recording.
	Start time.Duration

	// End is the offset of the last sample of the word.
	End time.Duration

	// Confidence is the provider's confidence (0.0–1.0). Zero when unreported.
	Confidence float64
}

// Duration returns End-Start.
func (w Word) Duration() time.Duration { return w.End - w.Start }

// DurationBucket is the speaker's declared target length, one of a fixed set
// of human-readable labels such as "5-7 minutes".
type DurationBucket string

const (
	Duration1To2   DurationBucket = "1-2 minutes"
	Duration2To3   DurationBucket = "2-3 minutes"
	Duration3To5   DurationBucket = "3-5 minutes"
	Duration5To7   DurationBucket = "5-7 minutes"
	Duration7To10  DurationBucket = "7-10 minutes"
	Duration10To15 DurationBucket = "10-15 minutes"
	Duration15Plus DurationBucket = "15+ minutes"

	// DefaultDurationBucket is used when a request omits expected_duration.
	DefaultDurationBucket = Duration5To7
)

var durationBuckets = []DurationBucket{
	Duration1To2, Duration2To3, Duration3To5, Duration5To7,
	Duration7To10, Duration10To15, Duration15Plus,
}

// DurationBuckets returns every accepted bucket in ascending order.
func DurationBuckets() []DurationBucket {
	out := make([]DurationBucket, len(durationBuckets))
	copy(out, durationBuckets)
	return out
}

// ParseDurationBucket normalises s (case, whitespace, en-dash) and returns the
// matching bucket. An empty string yields DefaultDurationBucket.
func ParseDurationBucket(s string) (DurationBucket, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return DefaultDurationBucket, nil
	}
	norm = strings.ReplaceAll(norm, "–", "-")
	norm = strings.Join(strings.Fields(norm), " ")
	norm = strings.ReplaceAll(norm, " - ", "-")
	for _, b := range durationBuckets {
		if string(b) == norm {
			return b, nil
		}
	}
	return "", fmt.Errorf("types: unknown expected duration %q", s)
}

// Range returns the bucket's bounds. The open-ended "15+ minutes" bucket
// reports hi == 0.
func (b DurationBucket) Range() (lo, hi time.Duration) {
	switch b {
	case Duration1To2:
		return 1 * time.Minute, 2 * time.Minute
	case Duration2To3:
		return 2 * time.Minute, 3 * time.Minute
	case Duration3To5:
		return 3 * time.Minute, 5 * time.Minute
	case Duration5To7:
		return 5 * time.Minute, 7 * time.Minute
	case Duration7To10:
		return 7 * time.Minute, 10 * time.Minute
	case Duration10To15:
		return 10 * time.Minute, 15 * time.Minute
	case Duration15Plus:
		return 15 * time.Minute, 0
	default:
		return DefaultDurationBucket.Range()
	}
}

// Gender is the optional voice-model hint used to narrow the pitch search.
type Gender string

const (
	GenderAuto   Gender = "auto"
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender accepts "", "auto", "male" or "female" (case-insensitive).
func ParseGender(s string) (Gender, error) {
	switch g := Gender(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GenderAuto, nil
	case GenderAuto, GenderMale, GenderFemale:
		return g, nil
	default:
		return "", fmt.Errorf("types: unknown gender %q", s)
	}
}

// PitchRange returns the fundamental-frequency search window in Hz.
func (g Gender) PitchRange() (minHz, maxHz float64) {
	switch g {
	case GenderMale:
		return 75, 300
	case GenderFemale:
		return 100, 400
	default:
		return 75, 400
	}
}

// Depth selects how much of the pipeline runs for a request.
type Depth string

const (
	DepthBasic    Depth = "basic"
	DepthStandard Depth = "standard"
	DepthAdvanced Depth = "advanced"
)

// ParseDepth accepts "", "basic", "standard" or "advanced". Empty means
// standard.
func ParseDepth(s string) (Depth, error) {
	switch d := Depth(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return DepthStandard, nil
	case DepthBasic, DepthStandard, DepthAdvanced:
		return d, nil
	default:
		return "", fmt.Errorf("types: unknown analysis depth %q", s)
	}
}

// Status is the completion state reported with every analysis result.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// VADEvent represents a voice activity detection result for a single audio frame.
type VADEvent struct {
	// Type is the detection result.
	Type VADEventType

	// Probability is the speech probability score (0.0–1.0).
	Probability float64
}

// VADEventType enumerates VAD detection states.
type VADEventType int

const (
	// VADSpeechStart indicates speech has just begun.
	VADSpeechStart VADEventType = iota

	// VADSpeechContinue indicates ongoing speech.
	VADSpeechContinue

	// VADSpeechEnd indicates speech has just ended.
	VADSpeechEnd

	// VADSilence indicates no speech detected.
	VADSilence
)

// IsSpeech reports whether the event marks a frame that contains speech.
func (t VADEventType) IsSpeech() bool {
	return t == VADSpeechStart || t == VADSpeechContinue
}
