package features

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/vad"
)

const (
	// emphasisBaseline is the trailing window the local pitch and intensity
	// baselines are averaged over.
	emphasisBaseline = 2 * time.Second

	// emphasisMinHistory is the number of voiced frames a baseline needs
	// before it is trusted.
	emphasisMinHistory = 10

	// emphasisLoudnessDB is how far intensity must exceed its baseline.
	emphasisLoudnessDB = 3.0

	// minVoicedFrames below which the voice contours are flagged as
	// low-confidence (half a second of pitched speech).
	minVoicedFrames = 25
)

// VoiceStats describes pitch, loudness and emphasis over the speech frames
// of a recording.
type VoiceStats struct {
	MeanPitch      float64
	PitchRange     float64
	PitchVariation float64 // standard deviation, Hz

	MeanIntensity  float64
	IntensityRange float64
	IntensityStd   float64

	// Emphasis holds the time of every emphasis point.
	Emphasis []time.Duration

	// Distribution counts emphasis points in the first, middle and last
	// third of the recording.
	Distribution [3]int

	// Quality is a 0-1 signal-to-noise estimate of the recording.
	Quality float64

	VoicedFrames int
	Duration     time.Duration

	LowConfidence bool
}

// EmphasisCount returns len(Emphasis).
func (v VoiceStats) EmphasisCount() int { return len(v.Emphasis) }

// Voice estimates the pitch and intensity contours of the recording and the
// points where the speaker stressed a word. The pitch search range follows
// the gender hint. It fails only when ctx ends or the VAD rejects its
// configuration; silent or very short input yields zero stats flagged as
// low-confidence.
func (e *Extractor) Voice(ctx context.Context, in Input) (VoiceStats, error) {
	st := VoiceStats{Duration: in.Audio.Duration()}
	if in.Audio.Empty() || in.Audio.SampleRate <= 0 {
		st.LowConfidence = true
		return st, nil
	}

	var mask []bool
	if e.vad != nil {
		m, err := vad.SpeechMask(e.vad, vad.Config{
			SampleRate:       in.Audio.SampleRate,
			FrameSizeMs:      contourHopMs,
			SpeechThreshold:  0.5,
			SilenceThreshold: 0.35,
		}, in.Audio.Samples)
		if err != nil {
			return st, fmt.Errorf("features: voice activity: %w", err)
		}
		mask = m
	}
	if err := ctx.Err(); err != nil {
		return st, err
	}

	samples := audio.Resample(in.Audio.Samples, in.Audio.SampleRate, contourRate)
	minHz, maxHz := in.Gender.PitchRange()
	frames := contour(samples, minHz, maxHz, mask)
	if err := ctx.Err(); err != nil {
		return st, err
	}

	var pitches, levels []float64
	for _, f := range frames {
		if !f.Speech {
			continue
		}
		levels = append(levels, f.Intensity)
		if f.Pitch > 0 {
			pitches = append(pitches, f.Pitch)
		}
	}

	var lo, hi float64
	st.MeanPitch, st.PitchVariation, lo, hi = stats(pitches)
	st.PitchRange = hi - lo
	st.MeanIntensity, st.IntensityStd, lo, hi = stats(levels)
	st.IntensityRange = hi - lo
	st.VoicedFrames = len(pitches)
	st.LowConfidence = st.VoicedFrames < minVoicedFrames
	st.Quality = quality(frames)

	st.Emphasis = emphasisPoints(frames, e.margin, e.minSpacing)
	for _, at := range st.Emphasis {
		st.Distribution[third(at, st.Duration)]++
	}
	return st, nil
}

// emphasisPoints returns the frames where pitch exceeds the trailing
// baseline by margin and intensity exceeds it by emphasisLoudnessDB. Points
// closer than spacing to the previous one are dropped.
func emphasisPoints(frames []frame, margin float64, spacing time.Duration) []time.Duration {
	hop := time.Duration(contourHopMs) * time.Millisecond
	window := int(emphasisBaseline / hop)

	var (
		out  []time.Duration
		last = time.Duration(-1)
	)
	for i, f := range frames {
		if f.Pitch <= 0 || !f.Speech {
			continue
		}
		var pSum, iSum float64
		var n int
		for j := max(0, i-window); j < i; j++ {
			if frames[j].Pitch > 0 && frames[j].Speech {
				pSum += frames[j].Pitch
				iSum += frames[j].Intensity
				n++
			}
		}
		if n < emphasisMinHistory {
			continue
		}
		pBase, iBase := pSum/float64(n), iSum/float64(n)
		if f.Pitch <= pBase*(1+margin) || f.Intensity <= iBase+emphasisLoudnessDB {
			continue
		}
		at := time.Duration(i) * hop
		if last >= 0 && at-last < spacing {
			continue
		}
		out = append(out, at)
		last = at
	}
	return out
}

// third returns 0, 1 or 2 for the third of total that at falls in.
func third(at, total time.Duration) int {
	if total <= 0 {
		return 0
	}
	return min(2, max(0, int(3*at/total)))
}

// quality maps the spread between loud and quiet frames to 0-1. A recording
// whose 90th-percentile frame is 30 dB above its 10th-percentile frame scores
// 1.
func quality(frames []frame) float64 {
	if len(frames) == 0 {
		return 0
	}
	levels := make([]float64, len(frames))
	for i, f := range frames {
		levels[i] = f.RMS
	}
	slices.Sort(levels)
	noise := stat.Quantile(0.1, stat.Empirical, levels, nil)
	signal := stat.Quantile(0.9, stat.Empirical, levels, nil)
	if signal <= 0 {
		return 0
	}
	snr := 20 * math.Log10(signal/math.Max(noise, 1e-6))
	return math.Max(0, math.Min(1, snr/30))
}
