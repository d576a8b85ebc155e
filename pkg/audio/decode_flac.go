package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tphakala/flac"
)

// decodeFLAC decodes a FLAC stream into interleaved normalised samples.
func decodeFLAC(data []byte) ([]float32, Format, error) {
	decoder, err := flac.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, Format{}, fmt.Errorf("%w: open FLAC stream: %v", ErrDecode, err)
	}

	divisor, err := sampleDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, Format{}, err
	}
	if decoder.NChannels == 0 || decoder.SampleRate == 0 {
		return nil, Format{}, fmt.Errorf("%w: FLAC reports %d channels at %d Hz", ErrDecode, decoder.NChannels, decoder.SampleRate)
	}
	format := Format{SampleRate: decoder.SampleRate, Channels: decoder.NChannels}
	width := decoder.BitsPerSample / 8

	out := make([]float32, 0, int(decoder.TotalSamples)*decoder.NChannels)
	for {
		frame, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Format{}, fmt.Errorf("%w: read FLAC frame: %v", ErrDecode, err)
		}

		for i := 0; i+width <= len(frame); i += width {
			var sample int32
			switch decoder.BitsPerSample {
			case 16:
				sample = int32(int16(binary.LittleEndian.Uint16(frame[i:])))
			case 24:
				sample = int32(frame[i]) | int32(frame[i+1])<<8 | int32(frame[i+2])<<16
				// Sign-extend from 24 bits.
				sample = sample << 8 >> 8
			case 32:
				sample = int32(binary.LittleEndian.Uint32(frame[i:]))
			}
			out = append(out, float32(sample)/divisor)
		}
	}
	return out, format, nil
}
