// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (a local whisper.cpp server or
// model, Deepgram, or the OpenAI audio API) and exposes a uniform batch
// interface: hand over a decoded recording, get back the full text plus one
// timestamped entry per word. Word timings are mandatory: the pause and
// structure analysis downstream depends on them, so a backend that cannot
// produce them must return ErrNoWordTimestamps instead of an empty list.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrWong99/orator/pkg/audio"
)

// ErrNoWordTimestamps is returned when a backend produced text but no word
// timings.
var ErrNoWordTimestamps = errors.New("stt: provider returned no word timestamps")

// Request describes one recording to transcribe.
type Request struct {
	// Audio is the canonical mono buffer produced by ingestion.
	Audio audio.PCM

	// Language is the BCP-47 language tag for recognition (e.g., "en").
	// An empty string lets the provider use its default.
	Language string

	// Keywords is a list of vocabulary hints, typically drawn from the
	// declared topic. Providers without a hinting API ignore it.
	Keywords []KeywordBoost
}

// Provider is the abstraction over any STT backend.
type Provider interface {
	// Transcribe runs recognition over req.Audio and returns the complete
	// transcript. It must honour ctx cancellation and return ctx.Err()
	// (possibly wrapped) when the context ends first.
	Transcribe(ctx context.Context, req Request) (Transcript, error)
}

// StatusError reports a non-success HTTP status from a remote backend.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned HTTP %d", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s: server returned HTTP %d: %s", e.Provider, e.Code, e.Body)
}

// Temporary reports whether retrying the same request could succeed.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code == http.StatusRequestTimeout || e.Code >= 500
}

// IsPermanent reports whether err is a backend rejection that retrying will
// not fix (authentication, malformed request).
func IsPermanent(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && !se.Temporary()
}
