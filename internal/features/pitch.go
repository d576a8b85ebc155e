package features

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MrWong99/orator/pkg/audio"
)

// Contour analysis runs on telephone-band audio; 8 kHz keeps the YIN
// difference function cheap and is plenty for F0 up to 400 Hz.
const (
	contourRate    = 8000
	contourFrameMs = 40
	contourHopMs   = 20
	yinThreshold   = 0.15

	// referencePressure is the 0 dB point for intensity, matching the usual
	// sound-pressure convention with samples read as pascals.
	referencePressure = 2e-5

	// silentRMS frames are never voiced, whatever the VAD says.
	silentRMS = 1e-4
)

// frame is one analysis window of the contour.
type frame struct {
	// Pitch is the F0 estimate in Hz, 0 when the frame is unvoiced.
	Pitch float64

	// Intensity is the frame level in dB.
	Intensity float64

	// RMS is the raw level.
	RMS float64

	// Speech is true when the VAD marked the frame as speech.
	Speech bool
}

// contour splits samples at contourRate into overlapping frames and estimates
// pitch and intensity for each. speech, when non-nil, holds one entry per
// hop and masks out non-speech frames.
func contour(samples []float32, minHz, maxHz float64, speech []bool) []frame {
	frameLen := contourRate * contourFrameMs / 1000
	hop := contourRate * contourHopMs / 1000
	if len(samples) < frameLen {
		return nil
	}

	tauMin := int(math.Floor(contourRate / maxHz))
	tauMax := int(math.Ceil(contourRate / minHz))
	tauMax = min(tauMax, frameLen/2)
	tauMin = max(tauMin, 2)

	diff := make([]float64, tauMax+1)
	n := (len(samples)-frameLen)/hop + 1
	out := make([]frame, n)
	for i := range n {
		win := samples[i*hop : i*hop+frameLen]
		rms := audio.RMS(win)
		f := frame{RMS: rms, Intensity: toDB(rms), Speech: rms >= silentRMS}
		if speech != nil {
			f.Speech = f.Speech && maskAt(speech, i)
		}
		if f.Speech {
			f.Pitch = yin(win, tauMin, tauMax, diff)
		}
		out[i] = f
	}
	return out
}

func maskAt(mask []bool, i int) bool {
	if i < len(mask) && mask[i] {
		return true
	}
	return i+1 < len(mask) && mask[i+1]
}

// yin returns the fundamental frequency of win in Hz using the cumulative
// mean normalised difference function, or 0 when no period below the
// threshold exists in [tauMin, tauMax]. diff is scratch space of length
// tauMax+1.
func yin(win []float32, tauMin, tauMax int, diff []float64) float64 {
	w := len(win) - tauMax
	if w <= 0 || tauMin >= tauMax {
		return 0
	}

	diff[0] = 1
	var running float64
	for tau := 1; tau <= tauMax; tau++ {
		var sum float64
		for j := range w {
			d := float64(win[j]) - float64(win[j+tau])
			sum += d * d
		}
		running += sum
		if running == 0 {
			diff[tau] = 1
			continue
		}
		diff[tau] = sum * float64(tau) / running
	}

	tau := -1
	for t := tauMin; t <= tauMax; t++ {
		if diff[t] < yinThreshold {
			for t+1 <= tauMax && diff[t+1] < diff[t] {
				t++
			}
			tau = t
			break
		}
	}
	if tau < 0 {
		return 0
	}

	// Parabolic interpolation around the minimum.
	period := float64(tau)
	if tau > 1 && tau < tauMax {
		a, b, c := diff[tau-1], diff[tau], diff[tau+1]
		if den := a - 2*b + c; den != 0 {
			period += 0.5 * (a - c) / den
		}
	}
	if period <= 0 {
		return 0
	}
	return contourRate / period
}

func toDB(rms float64) float64 {
	if rms <= 0 {
		return 0
	}
	return 20 * math.Log10(rms/referencePressure)
}

// stats returns mean, population standard deviation, min and max of xs.
func stats(xs []float64) (mean, std, lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(xs, nil)
	return mean, std, floats.Min(xs), floats.Max(xs)
}
