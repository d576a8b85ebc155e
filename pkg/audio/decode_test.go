package audio_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/MrWong99/orator/pkg/audio"
)

// writeWAV encodes a sine wave with go-audio's encoder and returns the file
// bytes.
func writeWAV(t *testing.T, sampleRate, channels, bitDepth int, seconds, freq float64) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	enc := wav.NewEncoder(f, sampleRate, bitDepth, channels, 1)

	frames := int(seconds * float64(sampleRate))
	full := float64(int(1)<<(bitDepth-1) - 1)
	data := make([]int, 0, frames*channels)
	for i := range frames {
		v := int(0.5 * full * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for range channels {
			data = append(data, v)
		}
	}
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return b
}

func TestDecoder_WAV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		sampleRate int
		channels   int
		bitDepth   int
	}{
		{"16k mono 16bit", 16000, 1, 16},
		{"44.1k stereo 16bit", 44100, 2, 16},
		{"48k mono 24bit", 48000, 1, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data := writeWAV(t, tt.sampleRate, tt.channels, tt.bitDepth, 1.0, 220)

			dec := audio.NewDecoder()
			pcm, err := dec.Decode(context.Background(), data, audio.ContainerWAV)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if pcm.SampleRate != audio.DefaultSampleRate {
				t.Errorf("SampleRate = %d, want %d", pcm.SampleRate, audio.DefaultSampleRate)
			}
			if d := pcm.Duration().Seconds(); math.Abs(d-1.0) > 0.01 {
				t.Errorf("Duration = %.3fs, want ~1s", d)
			}
			peak := audio.Peak(pcm.Samples)
			if peak < 0.45 || peak > 0.55 {
				t.Errorf("peak = %.3f, want ~0.5", peak)
			}
		})
	}
}

func TestDecoder_EncodeWAVRoundTrip(t *testing.T) {
	t.Parallel()

	in := audio.PCM{Samples: make([]float32, 16000), SampleRate: 16000}
	for i := range in.Samples {
		in.Samples[i] = float32(0.25 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	pcm, err := audio.NewDecoder().Decode(context.Background(), audio.EncodeWAV(in), audio.ContainerWAV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(pcm.Samples) != len(in.Samples) {
		t.Fatalf("len = %d, want %d", len(pcm.Samples), len(in.Samples))
	}
	for i := 0; i < len(in.Samples); i += 997 {
		if math.Abs(float64(pcm.Samples[i]-in.Samples[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, pcm.Samples[i], in.Samples[i])
		}
	}
}

func TestDecoder_CorruptWAV(t *testing.T) {
	t.Parallel()

	data := []byte("RIFF\x00\x00\x00\x00WAVEgarbage")
	_, err := audio.NewDecoder().Decode(context.Background(), data, audio.ContainerWAV)
	if !errors.Is(err, audio.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestDecoder_EmptyUpload(t *testing.T) {
	t.Parallel()

	_, err := audio.NewDecoder().Decode(context.Background(), nil, audio.ContainerWAV)
	if !errors.Is(err, audio.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}

func TestDecoder_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := audio.NewDecoder().Decode(ctx, []byte("RIFF"), audio.ContainerWAV)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestDecoder_FFmpegMissing(t *testing.T) {
	t.Parallel()

	dec := audio.NewDecoder(audio.WithFFmpegPath("/nonexistent/ffmpeg-binary"))
	_, err := dec.Decode(context.Background(), []byte("ID3\x03\x00"), audio.ContainerMP3)
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDecoder_OggNotOpusFallsBack(t *testing.T) {
	t.Parallel()

	// A single Ogg page carrying a Vorbis identification packet.
	payload := []byte("\x01vorbis")
	page := []byte("OggS")
	page = append(page, 0, 2)                   // version, BOS
	page = append(page, make([]byte, 8)...)     // granule
	page = append(page, 1, 0, 0, 0)             // serial
	page = append(page, make([]byte, 8)...)     // sequence + crc
	page = append(page, 1, byte(len(payload))) // one segment
	page = append(page, payload...)

	dec := audio.NewDecoder(audio.WithFFmpegPath("/nonexistent/ffmpeg-binary"))
	_, err := dec.Decode(context.Background(), page, audio.ContainerOGG)
	if !errors.Is(err, audio.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat from ffmpeg fallback", err)
	}
}

func TestDecoder_TruncatedOgg(t *testing.T) {
	t.Parallel()

	_, err := audio.NewDecoder().Decode(context.Background(), []byte("OggS\x00\x02"), audio.ContainerOGG)
	if !errors.Is(err, audio.ErrDecode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
}
