// This file contains the NativeProvider implementation backed by the
// whisper.cpp CGO bindings. The whisper.cpp static library (libwhisper.a)
// and headers (whisper.h) must be available at link time via LIBRARY_PATH
// and C_INCLUDE_PATH environment variables.

package whisper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrWong99/orator/pkg/provider/stt"
	"github.com/MrWong99/orator/pkg/types"
	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

// Compile-time assertion that NativeProvider satisfies stt.Provider.
var _ stt.Provider = (*NativeProvider)(nil)

// NativeProvider implements stt.Provider using whisper.cpp Go bindings
// (CGO), eliminating HTTP overhead entirely. The model is loaded once at
// startup and shared across all requests; each request gets its own context.
type NativeProvider struct {
	model    whisperlib.Model
	language string
	threads  uint
}

// NativeOption is a functional option for configuring a NativeProvider.
type NativeOption func(*NativeProvider)

// WithNativeLanguage sets the BCP-47 language code for transcription
// (e.g., "en", "de", "fr"). Defaults to "en".
func WithNativeLanguage(lang string) NativeOption {
	return func(p *NativeProvider) { p.language = lang }
}

// WithNativeThreads sets the number of CPU threads per inference. Zero keeps
// the whisper.cpp default.
func WithNativeThreads(n uint) NativeOption {
	return func(p *NativeProvider) { p.threads = n }
}

// NewNative creates a NativeProvider that loads the whisper.cpp model from
// the given file path. The caller must call Close when the provider is no
// longer needed.
func NewNative(modelPath string, opts ...NativeOption) (*NativeProvider, error) {
	if modelPath == "" {
		return nil, errors.New("whisper: modelPath must not be empty")
	}
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("whisper: load model %q: %w", modelPath, err)
	}

	p := &NativeProvider{
		model:    model,
		language: defaultLanguage,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Close releases the whisper model. Must be called when the provider is no
// longer needed.
func (p *NativeProvider) Close() error {
	if p.model != nil {
		return p.model.Close()
	}
	return nil
}

// Transcribe runs whisper.cpp over req.Audio with token timestamps enabled
// and one word per segment, so each returned segment is one word.
//
// whisper.cpp's Process is not interruptible; cancellation is observed
// between segments and the call returns ctx.Err() once inference finishes.
func (p *NativeProvider) Transcribe(ctx context.Context, req stt.Request) (stt.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: context already cancelled: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}

	// Create a new whisper context for this inference. Each context is NOT
	// thread-safe, but the model can be shared across goroutines.
	wctx, err := p.model.NewContext()
	if err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: create context: %w", err)
	}

	if err := wctx.SetLanguage(lang); err != nil {
		slog.Warn("whisper: failed to set language, using default", "language", lang, "error", err)
	}
	if p.threads > 0 {
		wctx.SetThreads(p.threads)
	}
	wctx.SetTokenTimestamps(true)
	wctx.SetSplitOnWord(true)
	wctx.SetMaxSegmentLength(1)
	if hint := prompt(req.Keywords); hint != "" {
		wctx.SetInitialPrompt(hint)
	}

	if err := wctx.Process(req.Audio.Samples, nil, nil, nil); err != nil {
		return stt.Transcript{}, fmt.Errorf("whisper: process audio: %w", err)
	}

	var (
		words []types.Word
		parts []string
	)
	for {
		if err := ctx.Err(); err != nil {
			return stt.Transcript{}, err
		}
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stt.Transcript{}, fmt.Errorf("whisper: read segment: %w", err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		words = append(words, types.Word{
			Text:       text,
			Start:      segment.Start,
			End:        segment.End,
			Confidence: segmentConfidence(segment),
		})
	}

	tr := stt.Transcript{
		Text:     strings.Join(parts, " "),
		Words:    words,
		Language: lang,
		Provider: "whisper-native",
	}
	return tr.Normalize(), nil
}

// segmentConfidence averages token probabilities.
func segmentConfidence(seg whisperlib.Segment) float64 {
	if len(seg.Tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range seg.Tokens {
		sum += float64(t.P)
	}
	return sum / float64(len(seg.Tokens))
}
