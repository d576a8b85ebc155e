// Package audio turns uploaded recordings into the mono PCM buffer the
// feature extractors consume.
//
// WAV and FLAC are decoded in-process (go-audio/wav, tphakala/flac), Ogg/Opus
// through libopus (gopus) behind a small Ogg demuxer, and everything else
// (MP3, M4A, Ogg/Vorbis) through an ffmpeg subprocess. All paths end in
// [Normalize], so every caller sees the same canonical sample rate.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultSampleRate is the canonical analysis rate. It matches what every
// supported STT backend expects.
const DefaultSampleRate = 16000

// Decoder converts container bytes into a canonical [PCM] buffer.
// A Decoder is immutable after construction and safe for concurrent use.
type Decoder struct {
	sampleRate int
	ffmpegPath string
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithSampleRate overrides the canonical output rate.
func WithSampleRate(hz int) DecoderOption {
	return func(d *Decoder) {
		if hz > 0 {
			d.sampleRate = hz
		}
	}
}

// WithFFmpegPath sets the ffmpeg binary used for MP3/M4A/Vorbis input.
func WithFFmpegPath(path string) DecoderOption {
	return func(d *Decoder) { d.ffmpegPath = path }
}

// NewDecoder returns a Decoder with the given options applied.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{sampleRate: DefaultSampleRate, ffmpegPath: "ffmpeg"}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SampleRate returns the canonical output rate.
func (d *Decoder) SampleRate() int { return d.sampleRate }

// Decode decodes data of container c. Errors wrap [ErrDecode],
// [ErrUnsupportedFormat] or the context error.
func (d *Decoder) Decode(ctx context.Context, data []byte, c Container) (PCM, error) {
	if err := ctx.Err(); err != nil {
		return PCM{}, err
	}
	if len(data) == 0 {
		return PCM{}, fmt.Errorf("%w: empty upload", ErrDecode)
	}

	var (
		samples []float32
		format  Format
		err     error
	)
	switch c {
	case ContainerWAV:
		samples, format, err = decodeWAV(data)
	case ContainerFLAC:
		samples, format, err = decodeFLAC(data)
	case ContainerOGG:
		samples, format, err = decodeOggOpus(data)
		if errors.Is(err, errNotOpus) {
			slog.Debug("audio: ogg stream is not opus, using ffmpeg")
			return d.viaFFmpeg(ctx, data)
		}
	case ContainerMP3, ContainerM4A:
		return d.viaFFmpeg(ctx, data)
	default:
		return PCM{}, fmt.Errorf("%w: container %q", ErrUnsupportedFormat, c)
	}
	if err != nil {
		return PCM{}, err
	}
	return Normalize(samples, format, d.sampleRate), nil
}

func (d *Decoder) viaFFmpeg(ctx context.Context, data []byte) (PCM, error) {
	samples, err := ffmpegDecode(ctx, d.ffmpegPath, data, d.sampleRate)
	if err != nil {
		if errors.Is(err, ErrFFmpegUnavailable) {
			return PCM{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return PCM{}, err
	}
	return PCM{Samples: samples, SampleRate: d.sampleRate}, nil
}
