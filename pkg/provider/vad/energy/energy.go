// Package energy implements a dependency-free VAD engine based on short-term
// frame energy relative to an adaptive noise floor.
//
// It is not a neural detector, but for single-speaker recordings made on a
// phone it separates voiced frames from room tone well enough to reject
// silent uploads and to mask non-speech frames out of the voice contours.
package energy

import (
	"math"
	"sync"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/vad"
	"github.com/MrWong99/orator/pkg/types"
)

const (
	// absoluteFloorDB is the level (dBFS) below which a frame is always silence.
	absoluteFloorDB = -55.0

	// initialNoiseDB seeds the adaptive noise floor.
	initialNoiseDB = -60.0

	// dynamicRangeDB maps "noise floor + dynamicRangeDB" to probability 1.
	dynamicRangeDB = 20.0

	// noiseAdapt is the smoothing factor applied on non-speech frames;
	// speechAdapt lets the floor creep up under sustained speech so that a
	// steady noise source cannot hold a segment open forever.
	noiseAdapt  = 0.05
	speechAdapt = 0.005

	// hangoverFrames keeps a segment open across short dips (consonants).
	hangoverFrames = 4
)

var _ vad.Engine = (*Engine)(nil)

// Engine creates energy-based VAD sessions. The zero value is ready to use.
type Engine struct{}

// New returns an Engine.
func New() *Engine { return &Engine{} }

// NewSession validates cfg and returns a fresh session.
func (e *Engine) NewSession(cfg vad.Config) (vad.SessionHandle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &session{cfg: cfg, frameLen: cfg.FrameSamples(), noiseDB: initialNoiseDB}, nil
}

type session struct {
	mu       sync.Mutex
	cfg      vad.Config
	frameLen int
	noiseDB  float64
	seeded   bool
	speaking bool
	hangover int
	closed   bool
}

// ProcessFrame classifies one frame.
func (s *session) ProcessFrame(frame []float32) (types.VADEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return types.VADEvent{Type: types.VADSilence}, nil
	}
	if len(frame) != s.frameLen {
		return types.VADEvent{}, vad.ErrFrameSize
	}

	db := toDBFS(audio.RMS(frame))
	if !s.seeded {
		s.noiseDB = math.Min(math.Max(db, initialNoiseDB), absoluteFloorDB+dynamicRangeDB)
		s.seeded = true
	}
	prob := 0.0
	if db > absoluteFloorDB {
		prob = math.Max(0, math.Min(1, (db-s.noiseDB)/dynamicRangeDB))
	}

	ev := types.VADEvent{Probability: prob}
	switch {
	case !s.speaking && prob >= s.cfg.SpeechThreshold:
		s.speaking = true
		s.hangover = hangoverFrames
		ev.Type = types.VADSpeechStart
	case s.speaking && prob < s.cfg.SilenceThreshold:
		if s.hangover > 0 {
			s.hangover--
			ev.Type = types.VADSpeechContinue
		} else {
			s.speaking = false
			ev.Type = types.VADSpeechEnd
		}
	case s.speaking:
		s.hangover = hangoverFrames
		ev.Type = types.VADSpeechContinue
	default:
		ev.Type = types.VADSilence
	}

	// The floor follows quieter frames immediately and louder ones slowly.
	switch {
	case db < s.noiseDB:
		s.noiseDB = math.Max(db, -100)
	case s.speaking:
		s.noiseDB += speechAdapt * (db - s.noiseDB)
	default:
		s.noiseDB += noiseAdapt * (db - s.noiseDB)
	}
	return ev, nil
}

// Reset restores the initial detector state.
func (s *session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noiseDB = initialNoiseDB
	s.seeded = false
	s.speaking = false
	s.hangover = 0
}

// Close marks the session closed. Idempotent.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func toDBFS(rms float64) float64 {
	if rms <= 0 {
		return -120
	}
	return 20 * math.Log10(rms)
}
