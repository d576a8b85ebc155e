package whisper_test

import (
	"context"
	"os"
	"testing"

	"github.com/MrWong99/orator/pkg/audio"
	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/provider/stt/whisper"
)

// testModelPath returns the path to a whisper model for integration tests.
// It reads from the WHISPER_MODEL_PATH environment variable. If unset the
// test is skipped.
func testModelPath(t *testing.T) string {
	t.Helper()
	p := os.Getenv("WHISPER_MODEL_PATH")
	if p == "" {
		t.Skip("WHISPER_MODEL_PATH not set; skipping native whisper test")
	}
	return p
}

func TestNewNative_EmptyPath_ReturnsError(t *testing.T) {
	_, err := whisper.NewNative("")
	if err == nil {
		t.Fatal("expected error for empty model path, got nil")
	}
}

func TestNewNative_InvalidPath_ReturnsError(t *testing.T) {
	_, err := whisper.NewNative("/nonexistent/path/to/model.bin")
	if err == nil {
		t.Fatal("expected error for invalid model path, got nil")
	}
}

func TestNativeTranscribe_CancelledContext_ReturnsError(t *testing.T) {
	modelPath := testModelPath(t)
	p, err := whisper.NewNative(modelPath)
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Transcribe(ctx, stt.Request{Audio: audio.PCM{Samples: make([]float32, 16000), SampleRate: 16000}})
	if err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestNativeTranscribe_SilenceProducesNoWords(t *testing.T) {
	modelPath := testModelPath(t)
	p, err := whisper.NewNative(modelPath, whisper.WithNativeLanguage("en"), whisper.WithNativeThreads(2))
	if err != nil {
		t.Fatalf("NewNative: %v", err)
	}
	defer p.Close()

	tr, err := p.Transcribe(context.Background(), stt.Request{Audio: audio.PCM{Samples: make([]float32, 3*16000), SampleRate: 16000}})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	for i := 1; i < len(tr.Words); i++ {
		if tr.Words[i].Start < tr.Words[i-1].Start {
			t.Errorf("word %d starts before its predecessor", i)
		}
	}
}
