// Package vad defines the Engine interface for Voice Activity Detection backends.
//
// A VAD engine wraps a frame-level speech detector and surfaces it as a
// stateful, per-stream session. Each session maintains its own internal state
// (noise floor, hysteresis) so that multiple recordings can be processed
// independently.
//
// Orator uses VAD offline, over a fully decoded recording: to reject
// silence-only uploads before paying for transcription, and to restrict the
// pitch and intensity contours to frames that actually carry voice.
//
// Implementations must be safe for concurrent use across different sessions.
// A single SessionHandle should not be shared across goroutines.
package vad

import (
	"errors"
	"fmt"

	"github.com/MrWong99/orator/pkg/types"
)

// ErrFrameSize is returned by ProcessFrame when a frame does not match the
// configured frame length.
var ErrFrameSize = errors.New("vad: frame size mismatch")

// Config holds the parameters for a VAD session.
type Config struct {
	// SampleRate is the audio sample rate in Hz. Must match the rate of the
	// frames passed to ProcessFrame.
	SampleRate int

	// FrameSizeMs is the duration of each audio frame in milliseconds.
	// ProcessFrame returns ErrFrameSize if the supplied frame does not match.
	FrameSizeMs int

	// SpeechThreshold is the probability above which a frame is classified as
	// speech. Range: [0.0, 1.0]. Typical: 0.5.
	SpeechThreshold float64

	// SilenceThreshold is the probability below which an active speech
	// segment is considered ended. Must be ≤ SpeechThreshold. Typical: 0.35.
	SilenceThreshold float64
}

// FrameSamples returns the number of samples in one frame.
func (c Config) FrameSamples() int {
	return c.SampleRate * c.FrameSizeMs / 1000
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("vad: sample rate must be positive, got %d", c.SampleRate))
	}
	if c.FrameSizeMs <= 0 {
		errs = append(errs, fmt.Errorf("vad: frame size must be positive, got %dms", c.FrameSizeMs))
	}
	if c.SpeechThreshold < 0 || c.SpeechThreshold > 1 {
		errs = append(errs, fmt.Errorf("vad: speech threshold %.2f out of range [0,1]", c.SpeechThreshold))
	}
	if c.SilenceThreshold > c.SpeechThreshold {
		errs = append(errs, fmt.Errorf("vad: silence threshold %.2f exceeds speech threshold %.2f", c.SilenceThreshold, c.SpeechThreshold))
	}
	return errors.Join(errs...)
}

// SessionHandle represents an active VAD session for a single audio stream.
type SessionHandle interface {
	// ProcessFrame analyses a single frame of normalised mono samples and
	// returns the detection result.
	ProcessFrame(frame []float32) (types.VADEvent, error)

	// Reset clears all accumulated detection state without closing the session.
	Reset()

	// Close releases all resources associated with the session. Calling Close
	// more than once is safe and returns nil.
	Close() error
}

// Engine is the factory for VAD sessions.
type Engine interface {
	// NewSession creates a new VAD session with the given configuration.
	NewSession(cfg Config) (SessionHandle, error)
}

// SpeechMask runs a fresh session over samples and returns one entry per
// complete frame, true where the frame carries speech. A trailing partial
// frame is ignored.
func SpeechMask(eng Engine, cfg Config, samples []float32) ([]bool, error) {
	sess, err := eng.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	n := cfg.FrameSamples()
	if n <= 0 {
		return nil, ErrFrameSize
	}
	mask := make([]bool, 0, len(samples)/n)
	for off := 0; off+n <= len(samples); off += n {
		ev, err := sess.ProcessFrame(samples[off : off+n])
		if err != nil {
			return nil, err
		}
		mask = append(mask, ev.Type.IsSpeech())
	}
	return mask, nil
}

// SpeechRatio returns the share of true entries in mask.
func SpeechRatio(mask []bool) float64 {
	if len(mask) == 0 {
		return 0
	}
	var n int
	for _, m := range mask {
		if m {
			n++
		}
	}
	return float64(n) / float64(len(mask))
}
