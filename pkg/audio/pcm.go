package audio

import (
	"math"
	"time"
)

// PCM is a decoded mono recording. Samples are normalised to [-1, 1].
// A PCM value is never mutated after decoding; extractors read it
// concurrently.
type PCM struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the playback length of the buffer.
func (p PCM) Duration() time.Duration {
	if p.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(p.Samples)) / float64(p.SampleRate) * float64(time.Second))
}

// Empty reports whether the buffer holds no samples.
func (p PCM) Empty() bool { return len(p.Samples) == 0 }

// Slice returns the samples between from and to, clamped to the buffer.
func (p PCM) Slice(from, to time.Duration) []float32 {
	if p.SampleRate <= 0 {
		return nil
	}
	i := int(from.Seconds() * float64(p.SampleRate))
	j := int(to.Seconds() * float64(p.SampleRate))
	i = max(0, min(i, len(p.Samples)))
	j = max(i, min(j, len(p.Samples)))
	return p.Samples[i:j]
}

// RMS returns the root mean square of samples. Returns 0 for empty input.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		if v := math.Abs(float64(s)); v > peak {
			peak = v
		}
	}
	return peak
}

// Int16ToFloat converts signed 16-bit samples to normalised floats.
func Int16ToFloat(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32768
	}
	return out
}

// FloatToInt16LE converts normalised samples to little-endian int16 PCM bytes,
// clamping to the int16 range.
func FloatToInt16LE(in []float32) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		v := int32(math.Round(float64(s) * 32767))
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
