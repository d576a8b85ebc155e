package audio

import (
	"bytes"
	"fmt"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// wavChunkSamples is the number of interleaved samples pulled per PCMBuffer
// call (~1s of 48 kHz stereo).
const wavChunkSamples = 96_000

// decodeWAV decodes a RIFF/WAVE file into interleaved normalised samples.
func decodeWAV(data []byte) ([]float32, Format, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, Format{}, fmt.Errorf("%w: invalid WAV header", ErrDecode)
	}

	divisor, err := sampleDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, Format{}, err
	}
	if decoder.NumChans == 0 || decoder.SampleRate == 0 {
		return nil, Format{}, fmt.Errorf("%w: WAV reports %d channels at %d Hz", ErrDecode, decoder.NumChans, decoder.SampleRate)
	}
	format := Format{SampleRate: int(decoder.SampleRate), Channels: int(decoder.NumChans)}

	buf := &goaudio.IntBuffer{
		Data:   make([]int, wavChunkSamples),
		Format: &goaudio.Format{SampleRate: format.SampleRate, NumChannels: format.Channels},
	}

	var out []float32
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, Format{}, fmt.Errorf("%w: read WAV samples: %v", ErrDecode, err)
		}
		if n == 0 {
			break
		}
		for _, s := range buf.Data[:n] {
			out = append(out, float32(s)/divisor)
		}
	}
	return out, format, nil
}

// sampleDivisor returns the full-scale value for integer PCM of the given
// bit depth.
func sampleDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768, nil
	case 24:
		return 8388608, nil
	case 32:
		return 2147483648, nil
	default:
		return 0, fmt.Errorf("%w: unsupported bit depth %d", ErrDecode, bitDepth)
	}
}
