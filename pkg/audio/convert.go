package audio

import (
	"fmt"
	"log/slog"
)

// Format describes the sample rate and channel count of an audio stream.
type Format struct {
	SampleRate int
	Channels   int
}

func (f Format) String() string { return formatString(f.SampleRate, f.Channels) }

// Normalize converts interleaved samples in src format to mono at dstRate.
// Conversion order: downmix first, then resample (avoids resampling every
// channel when the target is mono).
func Normalize(interleaved []float32, src Format, dstRate int) PCM {
	mono := interleaved
	if src.Channels > 1 {
		mono = Downmix(interleaved, src.Channels)
	}
	if src.SampleRate != dstRate {
		slog.Debug("audio: resampling",
			"from", formatString(src.SampleRate, 1),
			"to", formatString(dstRate, 1),
			"samples", len(mono),
		)
		mono = Resample(mono, src.SampleRate, dstRate)
	}
	return PCM{Samples: mono, SampleRate: dstRate}
}

// Downmix averages each interleaved frame of channels samples into one mono
// sample. A trailing partial frame is dropped.
func Downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		return interleaved
	}
	frames := len(interleaved) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}

// Resample converts mono samples from srcRate to dstRate using linear
// interpolation. If srcRate == dstRate, the input is returned unchanged.
func Resample(in []float32, srcRate, dstRate int) []float32 {
	if srcRate <= 0 || dstRate <= 0 {
		return in
	}
	if srcRate == dstRate || len(in) < 2 {
		return in
	}
	dstSamples := int(int64(len(in)) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]float32, dstSamples)
	ratio := float64(srcRate) / float64(dstRate)

	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := float32(srcPos - float64(srcIdx))

		s0 := in[srcIdx]
		s1 := s0
		if srcIdx+1 < len(in) {
			s1 = in[srcIdx+1]
		}
		out[i] = s0*(1-frac) + s1*frac
	}
	return out
}

// formatString returns a human-readable string for a sample rate and channel count,
// e.g. "48000Hz stereo".
func formatString(rate, channels int) string {
	ch := "mono"
	if channels == 2 {
		ch = "stereo"
	} else if channels > 2 {
		ch = fmt.Sprintf("%dch", channels)
	}
	return fmt.Sprintf("%dHz %s", rate, ch)
}
