package features

import (
	"context"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"
)

// Spectral frames follow the usual speech-analysis layout: 2048-point FFT
// with a quarter-frame hop.
const (
	spectralFrame = 2048
	spectralHop   = 512

	// ctxCheckFrames is how many frames are processed between context checks.
	ctxCheckFrames = 256
)

// PronunciationStats describes the spectral brightness and the articulation
// rate of a recording.
type PronunciationStats struct {
	// SpectralCentroid is the mean centre of mass of the magnitude spectrum
	// in Hz, over frames that carry any energy.
	SpectralCentroid float64

	// ZeroCrossingRate is the mean fraction of adjacent samples that change
	// sign, over all frames.
	ZeroCrossingRate float64

	Frames int
}

// Pronunciation measures spectral centroid and zero-crossing rate over the
// decoded audio. Recordings shorter than one frame yield zero stats.
func (e *Extractor) Pronunciation(ctx context.Context, in Input) (PronunciationStats, error) {
	var st PronunciationStats
	samples := in.Audio.Samples
	if len(samples) < spectralFrame || in.Audio.SampleRate <= 0 {
		return st, nil
	}

	fft := fourier.NewFFT(spectralFrame)
	buf := make([]float64, spectralFrame)
	var coeff []complex128
	binHz := float64(in.Audio.SampleRate) / spectralFrame
	freqs := make([]float64, spectralFrame/2+1)
	for k := range freqs {
		freqs[k] = float64(k) * binHz
	}
	mags := make([]float64, len(freqs))

	n := (len(samples)-spectralFrame)/spectralHop + 1
	centroids := make([]float64, 0, n)
	zcrs := make([]float64, n)
	for i := range n {
		if i%ctxCheckFrames == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
		}
		win := samples[i*spectralHop : i*spectralHop+spectralFrame]
		zcrs[i] = zeroCrossingRate(win)

		for j, s := range win {
			buf[j] = float64(s)
		}
		coeff = fft.Coefficients(coeff, window.Hann(buf))
		if c, ok := centroid(coeff, freqs, mags); ok {
			centroids = append(centroids, c)
		}
	}

	st.Frames = n
	st.ZeroCrossingRate = stat.Mean(zcrs, nil)
	if len(centroids) > 0 {
		st.SpectralCentroid = stat.Mean(centroids, nil)
	}
	return st, nil
}

// centroid returns the magnitude-weighted mean frequency of a one-sided
// spectrum. mags is scratch space of len(coeff). ok is false for a frame
// without energy.
func centroid(coeff []complex128, freqs, mags []float64) (hz float64, ok bool) {
	var total float64
	for k, c := range coeff {
		mags[k] = cmplx.Abs(c)
		total += mags[k]
	}
	if total == 0 {
		return 0, false
	}
	return stat.Mean(freqs, mags), true
}

func zeroCrossingRate(win []float32) float64 {
	if len(win) < 2 {
		return 0
	}
	var crossings int
	for j := 1; j < len(win); j++ {
		if (win[j-1] >= 0) != (win[j] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(win))
}
